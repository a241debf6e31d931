// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StaleDaysThreshold is the default age after which drafts and quotes are stale.
	StaleDaysThreshold int `koanf:"stale_days_threshold"`

	// EstimatedHoursPerJob and AvailableHoursPerWeek drive technician utilization.
	EstimatedHoursPerJob  float64 `koanf:"estimated_hours_per_job"`
	AvailableHoursPerWeek float64 `koanf:"available_hours_per_week"`

	// CashFlowHorizon is the default projection horizon in days (30, 60 or 90).
	CashFlowHorizon int `koanf:"cashflow_horizon"`

	// WeeklyOutflow is the expected spend per projected week.
	WeeklyOutflow float64 `koanf:"weekly_outflow"`

	// OpeningBalance seeds the cumulative cash position.
	OpeningBalance float64 `koanf:"opening_balance"`

	// PaymentTermsDays applies to invoices without a due date.
	PaymentTermsDays int `koanf:"payment_terms_days"`

	// CacheSize bounds the result cache; zero disables it.
	CacheSize int `koanf:"cache_size"`

	// SeedFile optionally names a JSON or YAML snapshot loaded at startup.
	SeedFile string `koanf:"seed_file"`

	// Metrics configures the Prometheus collectors served on /healthz.
	MetricsEnabled   bool              `koanf:"metrics_enabled"`
	MetricsNamespace string            `koanf:"metrics_namespace"`
	MetricsSubsystem string            `koanf:"metrics_subsystem"`
	MetricsBuckets   []float64         `koanf:"metrics_buckets"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		StaleDaysThreshold:    14,
		EstimatedHoursPerJob:  4,
		AvailableHoursPerWeek: 40,
		CashFlowHorizon:       90,
		WeeklyOutflow:         0,
		OpeningBalance:        0,
		PaymentTermsDays:      30,
		CacheSize:             256,
		MetricsEnabled:        true,
		MetricsNamespace:      "fieldpulse",
		MetricsSubsystem:      "insights",
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StaleDaysThreshold < 0:
		return fmt.Errorf("%w: stale_days_threshold must not be negative", ErrInvalidConfig)
	case c.EstimatedHoursPerJob <= 0:
		return fmt.Errorf("%w: estimated_hours_per_job must be positive", ErrInvalidConfig)
	case c.AvailableHoursPerWeek <= 0:
		return fmt.Errorf("%w: available_hours_per_week must be positive", ErrInvalidConfig)
	case c.CashFlowHorizon <= 0:
		return fmt.Errorf("%w: cashflow_horizon must be positive", ErrInvalidConfig)
	case c.PaymentTermsDays < 0:
		return fmt.Errorf("%w: payment_terms_days must not be negative", ErrInvalidConfig)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: cache_size must not be negative", ErrInvalidConfig)
	case strings.TrimSpace(c.MetricsNamespace) == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
