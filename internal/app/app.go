package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ghgreport/internal/config"
	apierrors "ghgreport/internal/errors"
	"ghgreport/internal/infrastructure"
	custommw "ghgreport/internal/middleware"
	"ghgreport/internal/services"
	handlers "ghgreport/internal/transport/http"
)

const Version = "1.0.0"

// BuildTime is set at compile time via -ldflags
var BuildTime = "unknown"

// Application is the main dependency container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	ReportService *services.ReportService
	Registry      *prometheus.Registry
}

// NewApplication wires configuration, services, routes and the HTTP server
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.Int("port", cfg.Server.Port))

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		ReportService: services.NewReportService(cfg.Assets, logger),
		Registry:      prometheus.NewRegistry(),
	}

	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app.Router = app.setupRouter()
	app.Server = app.createServer()

	return app, nil
}

// setupRouter configures the middleware chain and all routes
func (app *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(app.Logger))
	r.Use(custommw.Recoverer(app.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.NewRequestMetrics(app.Registry).Handler)

	if app.Config.Server.RequestTimeout > 0 {
		r.Use(custommw.Timeout(app.Config.Server.RequestTimeout, app.Logger))
	}

	if app.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: app.Config.Security.AllowedOrigins,
			Logger:         app.Logger,
		}))
	}

	if app.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			app.Config.Security.RateLimit.RPS,
			app.Config.Security.RateLimit.Burst,
			app.Logger)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(app.Logger)
	reportHandler := handlers.NewReportHandler(app.ReportService, app.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(Version, BuildTime, app.Logger)

	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)
	r.Get("/api/version", healthHandler.Version)
	r.Post("/generate-report", reportHandler.GenerateReport)
	r.Post("/generate-workbook", reportHandler.GenerateWorkbook)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleError(w, r, apierrors.ErrNotFound)
	})

	return r
}

// createServer builds the HTTP server with configured timeouts
func (app *Application) createServer() *http.Server {
	return &http.Server{
		Addr:           app.Config.GetAddress(),
		Handler:        app.Router,
		ReadTimeout:    app.Config.Server.ReadTimeout,
		WriteTimeout:   app.Config.Server.WriteTimeout,
		IdleTimeout:    app.Config.Server.IdleTimeout,
		MaxHeaderBytes: app.Config.Server.MaxHeaderBytes,
	}
}

// Start begins serving. Blocks until the listener fails or the server is shut
// down.
func (app *Application) Start() error {
	app.Logger.Info("server listening", slog.String("addr", app.Server.Addr))
	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server within the configured timeout
func (app *Application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	app.Logger.Info("shutting down server",
		slog.Duration("timeout", app.Config.Server.ShutdownTimeout))

	if err := app.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		app.Logger.Warn("failed to close log file", slog.String("error", err.Error()))
	}
	return nil
}

// Run starts the server and blocks until SIGINT or SIGTERM, then shuts down
// gracefully
func (app *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		app.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	if err := app.Stop(); err != nil {
		return err
	}

	select {
	case err := <-errCh:
		return err
	case <-time.After(time.Second):
		return nil
	}
}
