package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/fieldpulse/internal/adapters/http/api"
	app "github.com/okian/fieldpulse/internal/app"
	"github.com/okian/fieldpulse/internal/config"
	"github.com/okian/fieldpulse/pkg/logger"
	"github.com/okian/fieldpulse/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewService(t *testing.T) {
	convey.Convey("Given a configuration with a disabled cache", t, func() {
		cfg := config.New()
		cfg.CacheSize = 0
		cfg.CashFlowHorizon = 30
		svc := newService(cfg, logger.Nop())

		convey.Convey("When the cash flow is forecast", func() {
			res := svc.CashFlow(context.Background(), app.CashFlowRequest{})

			convey.Convey("Then configured defaults apply and nothing is cached", func() {
				convey.So(res.Horizon, convey.ShouldEqual, 30)
				convey.So(svc.GetStats(context.Background())["cacheSize"], convey.ShouldEqual, int64(0))
			})
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	convey.Convey("Given metrics settings in the configuration", t, func() {
		cfg := config.New()
		cfg.MetricsNamespace = "fp_test"
		cfg.MetricsLabels = map[string]string{"env": "unit"}
		cfg.MetricsBuckets = []float64{1, 10}
		t.Cleanup(func() { metrics.Init() })

		convey.Convey("When the global metrics are initialised from them", func() {
			metrics.Init(metricsOptions(cfg)...)
			metrics.RecordCalculation(app.CalcPipeline, 2)

			convey.Convey("Then the registry serves the configured names and labels", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "fp_test_insights_calculations_total" {
						found = true
						convey.So(f.GetMetric()[0].GetLabel()[0].GetName(), convey.ShouldEqual, "calculator")
					}
				}
				convey.So(found, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When metrics are disabled", func() {
			cfg.MetricsEnabled = false
			metrics.Init(metricsOptions(cfg)...)
			metrics.RecordCalculation(app.CalcPipeline, 2)

			convey.Convey("Then nothing is recorded", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				for _, f := range families {
					convey.So(f.GetName(), convey.ShouldNotEqual, "fp_test_insights_calculations_total")
				}
			})
		})
	})
}

func TestSeed(t *testing.T) {
	convey.Convey("Given a seed snapshot on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "seed.json")
		content := `{"technicians":[{"id":"t1","name":"Alice","role":"lead","active":true}],
"projects":[{"id":"p1","status":"quoted","date":"2025-06-01T00:00:00Z","quote":{"total":900}}]}`
		convey.So(os.WriteFile(path, []byte(content), 0o600), convey.ShouldBeNil)
		svc := newService(config.New(), logger.Nop())

		convey.Convey("When it is loaded", func() {
			err := seed(context.Background(), svc, path)

			convey.Convey("Then the records are served over HTTP", func() {
				convey.So(err, convey.ShouldBeNil)
				mux := http.NewServeMux()
				api.NewServer(svc).Register(mux)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"projects":1`)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"technicians":1`)
			})
		})

		convey.Convey("When the file does not exist", func() {
			err := seed(context.Background(), svc, filepath.Join(dir, "missing.yaml"))

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then it should update metrics without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And it stops with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			cancel()
			<-done
		})
	})
}
