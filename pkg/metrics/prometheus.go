// Package metrics provides Prometheus metrics for the fieldpulse service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBuckets are milliseconds; calculators run in well under a second.
var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250} //nolint:gochecknoglobals // default buckets

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Calculator metrics
	calculations        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec

	// Store metrics
	records *prometheus.GaugeVec

	// Business snapshot gauges, refreshed on every computation
	weightedForecast   prometheus.Gauge
	staleQuotes        prometheus.Gauge
	currentWinRate     prometheus.Gauge
	outstandingAR      prometheus.Gauge
	currentDSO         prometheus.Gauge
	techniciansScored  prometheus.Gauge
	techniciansCoached prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager on a fresh registry with opts applied.
// Call it once at startup, before handlers capture GetRegistry.
func Init(opts ...Option) *Manager {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
	return globalManager
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fieldpulse",
		subsystem:        "insights",
		histogramBuckets: latencyBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.calculations = m.counterVec("calculations_total", "Calculator runs by calculator", "calculator")
	m.calculationDuration = m.histogramVec("calculation_duration_milliseconds", "Calculator run time in milliseconds", "calculator")
	m.cacheHits = m.counterVec("cache_hits_total", "Result cache hits by calculator", "calculator")
	m.cacheMisses = m.counterVec("cache_misses_total", "Result cache misses by calculator", "calculator")

	m.records = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records",
		Help:        "Stored records by kind",
		ConstLabels: m.customLabels,
	}, []string{"kind"})

	m.weightedForecast = m.gauge("pipeline_weighted_forecast", "Probability-weighted value of the open pipeline")
	m.staleQuotes = m.gauge("pipeline_stale_quotes", "Stale drafts and quotes in the last forecast")
	m.currentWinRate = m.gauge("pipeline_win_rate_percent", "Current quote win rate")
	m.outstandingAR = m.gauge("cashflow_outstanding_receivables", "Outstanding accounts receivable")
	m.currentDSO = m.gauge("cashflow_dso_days", "Current days sales outstanding")
	m.techniciansScored = m.gauge("team_technicians_scored", "Technicians in the last performance run")
	m.techniciansCoached = m.gauge("team_technicians_needing_coaching", "Technicians flagged for coaching")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("http_errors_total", "HTTP errors by endpoint and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// RecordCalculation counts one calculator run and its duration.
func (m *Manager) RecordCalculation(calculator string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.calculations.WithLabelValues(calculator).Inc()
	m.calculationDuration.WithLabelValues(calculator).Observe(durationMs)
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Manager) RecordCacheLookup(calculator string, hit bool) {
	if !m.enabled {
		return
	}
	if hit {
		m.cacheHits.WithLabelValues(calculator).Inc()
		return
	}
	m.cacheMisses.WithLabelValues(calculator).Inc()
}

// Global wrappers.

// RecordCalculation counts one calculator run and its duration.
func RecordCalculation(calculator string, durationMs float64) {
	globalManager.RecordCalculation(calculator, durationMs)
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(calculator string, hit bool) {
	globalManager.RecordCacheLookup(calculator, hit)
}

// UpdateRecordCount sets the number of stored records of a kind.
func UpdateRecordCount(kind string, count int) {
	if globalManager.enabled {
		globalManager.records.WithLabelValues(kind).Set(float64(count))
	}
}

// UpdatePipeline publishes the headline numbers of a pipeline forecast.
func UpdatePipeline(weighted float64, stale, winRate int) {
	if !globalManager.enabled {
		return
	}
	globalManager.weightedForecast.Set(weighted)
	globalManager.staleQuotes.Set(float64(stale))
	globalManager.currentWinRate.Set(float64(winRate))
}

// UpdateCashFlow publishes receivables and DSO.
func UpdateCashFlow(outstanding, dso float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.outstandingAR.Set(outstanding)
	globalManager.currentDSO.Set(dso)
}

// UpdateTeam publishes team sizes from a performance run.
func UpdateTeam(scored, coaching int) {
	if !globalManager.enabled {
		return
	}
	globalManager.techniciansScored.Set(float64(scored))
	globalManager.techniciansCoached.Set(float64(coaching))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
