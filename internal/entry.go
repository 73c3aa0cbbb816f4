// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/lectern/internal/api"
	"github.com/starford/lectern/internal/content"
	"github.com/starford/lectern/internal/corpus"
	"github.com/starford/lectern/internal/libraryservice"
	"github.com/starford/lectern/internal/mcpserver"
	"github.com/starford/lectern/internal/quiz"
	"github.com/starford/lectern/internal/secrets"
	"github.com/starford/lectern/internal/sse"
	"github.com/starford/lectern/internal/storage"
	"github.com/starford/lectern/internal/watch"
)

// App holds the wired library components shared by every entry point.
type App struct {
	Config   *Config
	Logger   *slog.Logger
	Registry *storage.Registry
	Service  *libraryservice.Service
	Broker   *sse.Broker

	version string
	logFile io.Closer
}

// NewApp builds the library components from the given options.
func NewApp(opts ...Option) (*App, error) {
	a := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(a)
	}
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := a.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var out io.Writer = a.logOutput
	var logFile io.Closer
	if cfg.App.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.App.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		out, logFile = lj, lj
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Library.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	loader, err := content.NewLoader(cfg.Library.CacheSize)
	if err != nil {
		return nil, err
	}

	registry := storage.NewRegistry(cfg.Library.DataDir, logger)
	broker := sse.NewBroker(2 * time.Second)
	store := secrets.New(cfg.Secrets.Service)
	cache := corpus.NewCache(
		corpus.CandidateDirs(cfg.Library.DataDir, cfg.Library.ResourceDir, cfg.Corpus.ExtraDirs),
		logger,
	)

	svc := libraryservice.New(libraryservice.Deps{
		Registry: registry,
		Loader:   loader,
		Corpus:   cache,
		Secrets:  store,
		Quiz:     quiz.NewGenerator(store, nil, cfg.Quiz.Model, logger),
		Notifier: broker,
		Logger:   logger,
	})

	logger.Debug("Configuration loaded",
		slog.String("data_dir", cfg.Library.DataDir),
		slog.String("registry", registry.Path()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Service:  svc,
		Broker:   broker,
		version:  a.version,
		logFile:  logFile,
	}, nil
}

// Close stops the broker and flushes the log file.
func (a *App) Close() error {
	a.Broker.Close()
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}

// Handler returns the HTTP handler with health checks and the API mounted
// under /api.
func (a *App) Handler() http.Handler {
	cfg := a.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := os.Stat(cfg.Library.DataDir); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"data dir unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(a.Service, a.Logger, cfg.Auth.AuthEnabled(), cfg.Auth.Token, a.Broker))
	return r
}

// Run starts the HTTP server and the library watcher until a shutdown signal
// arrives or ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	app, err := NewApp(opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Config
	logger := app.Logger

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		g.Go(func() error {
			if err := watch.Watch(gCtx, app.Registry, cfg.Watch.Debounce, logger, app.Broker.PublishLibraryChange); err != nil {
				logger.Warn("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the library tools over stdio. Logs go to stderr unless a log
// file is configured, since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := NewApp(append([]Option{WithLogOutput(os.Stderr)}, opts...)...)
	if err != nil {
		return err
	}
	defer app.Close()

	app.Logger.Info("Starting MCP server on stdio")
	return mcpserver.New(app.Service, app.version).ServeStdio()
}
