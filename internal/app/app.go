// Package app wires configuration, logging, metrics, the dataset cache and
// the HTTP surface into one runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"enrollscope/internal/analytics"
	"enrollscope/internal/config"
	"enrollscope/internal/dataset"
	"enrollscope/internal/datasource"
	apierrors "enrollscope/internal/errors"
	"enrollscope/internal/infrastructure"
	"enrollscope/internal/middleware"
	"enrollscope/internal/services"
	handlers "enrollscope/internal/transport/http"
	ws "enrollscope/internal/websocket"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Application is the dependency container for the web server.
type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	Metrics    *infrastructure.Metrics
	Router     *chi.Mux
	Server     *http.Server
	DataSource *datasource.Source
	Hub        *ws.Hub
	Analytics  *services.AnalyticsService
	Health     *services.HealthService
}

// NewApplication builds the application from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newApplication(cfg)
}

func newApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("dataset_path", cfg.Dataset.Path),
		slog.String("addr", cfg.Addr()))

	metrics := infrastructure.NewMetrics()

	source := datasource.New(cfg.Dataset.Path, dataset.NewNormalizer(logger), logger, metrics)
	hub := ws.NewHub(logger, metrics)
	source.Subscribe(hub.BroadcastDatasetReloaded)

	analyticsSvc := services.NewAnalyticsService(source, analytics.NewAggregator(logger), logger, metrics)
	healthSvc := services.NewHealthService(source, logger)

	app := &Application{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		DataSource: source,
		Hub:        hub,
		Analytics:  analyticsSvc,
		Health:     healthSvc,
	}
	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:           cfg.Addr(),
		Handler:        app.Router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

// setupRouter assembles the middleware chain and route tree.
func (app *Application) setupRouter() *chi.Mux {
	errHandler := apierrors.NewErrorHandler(app.Logger, false)

	analyticsHandler := handlers.NewAnalyticsHandler(app.Analytics, errHandler, app.Logger)
	healthHandler := handlers.NewHealthHandler(app.Health)
	wsHandler := handlers.NewWSHandler(app.Hub, app.Config.WebSocket, app.Config.Security.AllowedOrigins, errHandler, app.Logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(app.Logger))
	r.Use(middleware.Recoverer(app.Logger))
	r.Use(middleware.Metrics(app.Metrics))
	if app.Config.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			app.Config.Security.RateLimit.RPS,
			app.Config.Security.RateLimit.Burst,
			app.Logger)
		r.Use(limiter.Handler)
	}

	r.NotFound(errHandler.NotFound)
	r.MethodNotAllowed(errHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/analytics", analyticsHandler.Routes())
		r.Get("/healthz", healthHandler.HandleHealthz)
	})
	r.Method(http.MethodGet, "/metrics", app.Metrics.Handler())
	r.Get("/ws", wsHandler.HandleWS)

	return r
}

// Run starts the hub, the dataset watcher and the HTTP server, and blocks
// until a signal arrives or a component fails. Shutdown is graceful within
// the configured timeout.
func (app *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go app.Hub.Run()
	defer app.Hub.Stop()

	// A missing or corrupt file at startup is not fatal: the health endpoint
	// reports loading and the watcher retries when the file appears.
	if err := app.DataSource.Load(); err != nil {
		app.Logger.Error("initial dataset load failed",
			slog.String("error", err.Error()))
	}

	g, ctx := errgroup.WithContext(ctx)

	if app.Config.Dataset.WatchReload {
		g.Go(func() error {
			err := app.DataSource.Watch(ctx, app.Config.Dataset.ReloadDebounce)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		app.Logger.Info("http server listening", slog.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		app.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()
		return app.Server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	app.Logger.Info("shutdown complete")
	return infrastructure.CloseLogFile()
}
