// Package app assembles the dashboard server: router, middleware
// chain, dataset store, websocket hub and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"vcpulse/internal/config"
	"vcpulse/internal/insights"
	custommw "vcpulse/internal/middleware"
	handlers "vcpulse/internal/transport/http"
	ws "vcpulse/internal/websocket"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Application is the dashboard server container.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Router *chi.Mux
	Server *http.Server
	Store  *insights.Store
	Hub    *ws.Hub
}

// New wires the application from configuration. The dataset is loaded
// eagerly when present; a missing artifact is not fatal, the store
// watcher picks it up once the cleaner publishes it.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	store := insights.NewStore(cfg.DatasetPath(), logger)
	hub := ws.NewHub(logger)

	app := &Application{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Hub:    hub,
	}
	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if err := store.Load(context.Background()); err != nil {
		logger.Warn("dataset not available at startup, waiting for pipeline run",
			slog.String("path", cfg.DatasetPath()),
			slog.String("error", err.Error()))
	}

	return app, nil
}

func (a *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.Metrics)
	r.Use(custommw.RateLimiter(a.Config.Server.RateLimitRPS, a.Config.Server.RateLimitBurst))

	insightsHandler := handlers.NewInsightsHandler(
		a.Store, a.Logger,
		a.Config.Dashboard.TopNDefault,
		a.Config.Dashboard.TopNMax,
		a.Config.Cleaning.TrendYearFloor,
	)
	healthHandler := handlers.NewHealthHandler(a.Store, a.Logger, Version)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/healthz", healthHandler.Routes())
		r.Mount("/", insightsHandler.Routes())
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", a.Hub.ServeWS)

	// Static dashboard page.
	fileServer := http.FileServer(http.Dir(a.Config.Paths.WebDir))
	r.Handle("/*", fileServer)

	return r
}

// Run starts the HTTP server and the dataset watcher, blocking until
// ctx is cancelled, a termination signal arrives or the server fails.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("dashboard server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.Store.Watch(ctx, a.Config.Dashboard.ReloadInterval, func() {
			a.Hub.Broadcast(ws.TypeDatasetReloaded)
		})
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

// shutdown drains the HTTP server and disconnects websocket clients.
func (a *Application) shutdown() error {
	a.Logger.Info("shutting down",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Hub.Close()
	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
