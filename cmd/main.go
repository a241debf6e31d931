package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/fieldpulse/internal/adapters/cache"
	"github.com/okian/fieldpulse/internal/adapters/http/api"
	"github.com/okian/fieldpulse/internal/adapters/http/swagger"
	repository "github.com/okian/fieldpulse/internal/adapters/repository"
	"github.com/okian/fieldpulse/internal/adapters/snapshot"
	app "github.com/okian/fieldpulse/internal/app"
	"github.com/okian/fieldpulse/internal/config"
	"github.com/okian/fieldpulse/pkg/logger"
	"github.com/okian/fieldpulse/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger format comes from config, so it is not available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(metricsOptions(cfg)...)

	svc := newService(cfg, log)
	if cfg.SeedFile != "" {
		if err := seed(ctx, svc, cfg.SeedFile); err != nil {
			log.Error(ctx, "failed to load seed snapshot", logger.String("path", cfg.SeedFile), logger.Error(err))
			os.Exit(1)
		}
	}

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
}

// newService builds the service from configuration.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(repository.NewMemoryStore(repository.WithLogger(log.Named("store")))),
		app.WithCache(cache.NewResultCache(cache.WithMaxEntries(cfg.CacheSize))),
		app.WithStaleDaysThreshold(cfg.StaleDaysThreshold),
		app.WithHoursModel(cfg.EstimatedHoursPerJob, cfg.AvailableHoursPerWeek),
		app.WithCashFlowDefaults(cfg.CashFlowHorizon, cfg.WeeklyOutflow, cfg.OpeningBalance, cfg.PaymentTermsDays),
	)
}

// metricsOptions maps the metrics_* configuration keys onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	}
}

// seed loads a snapshot file into the service.
func seed(ctx context.Context, svc *app.Service, path string) error {
	f, err := snapshot.Load(path)
	if err != nil {
		return err
	}
	return svc.Load(ctx, f.Snapshot())
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
