package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	app "github.com/okian/licmaster/internal/app"
	"github.com/okian/licmaster/internal/config"
	"github.com/okian/licmaster/pkg/logger"
	"github.com/okian/licmaster/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("LICMASTER_ADDR", ":8080")
			_ = os.Setenv("LICMASTER_QUEUE_SIZE", "1000")
			_ = os.Setenv("LICMASTER_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("LICMASTER_ADDR")
				_ = os.Unsetenv("LICMASTER_QUEUE_SIZE")
				_ = os.Unsetenv("LICMASTER_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then a metrics manager should be creatable on its own registry", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When no SQLite path is set", func() {
			svc, err := newService(ctx, cfg, logger.Get())

			convey.Convey("Then the service starts on the memory store", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()
				convey.So(svc.GetStats(ctx).Started, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a SQLite path is set", func() {
			cfg.SQLitePath = filepath.Join(t.TempDir(), "master.db")
			svc, err := newService(ctx, cfg, logger.Get())

			convey.Convey("Then the database is created", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()
				_, statErr := os.Stat(cfg.SQLitePath)
				convey.So(statErr, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the SQLite path cannot be opened", func() {
			cfg.SQLitePath = filepath.Join(t.TempDir(), "missing", "dir", "master.db")
			_, err := newService(ctx, cfg, logger.Get())

			convey.Convey("Then creation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a started service behind the handler", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.MaxPageLimit = 5
		svc := app.New(app.WithWorkerCount(2))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		handler := newHandler(ctx, cfg, svc)

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
			return w
		}

		convey.Convey("Then the landing page, docs and API are all routed", func() {
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the page limit comes from configuration", func() {
			convey.So(get("/master?limit=5").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/master?limit=6").Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When a batch is posted and reconciled", func() {
			body := `{"batch_id":"b1","records":[{"first_name":"Ana","last_name":"Lopez","source_state":"WA","license_date":"2010-02-03","license_active":true}]}`
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusAccepted)

			w = httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reconcile", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			convey.Convey("Then the record is listed as a singleton", func() {
				page := get("/master?view=active")
				convey.So(page.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(page.Body.String(), convey.ShouldContainSubstring, `"match_confidence":"SINGLETON"`)
				convey.So(page.Body.String(), convey.ShouldContainSubstring, `"total":1`)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metric updaters", t, func() {
		convey.Convey("When the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			svc := app.New()

			convey.Convey("Then both return", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
				convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updating once", func() {
			svc := app.New()
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then nothing panics", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(context.Background(), svc) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestReconcileOnStart(t *testing.T) {
	convey.Convey("Given a service with nothing to reconcile", t, func() {
		ctx := context.Background()
		svc := app.New()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then the initial run is skipped without failing", func() {
			convey.So(func() { reconcileOnStart(ctx, svc, logger.Get()) }, convey.ShouldNotPanic)
			convey.So(svc.GetStats(ctx).LastRun, convey.ShouldBeNil)
		})
	})
}
