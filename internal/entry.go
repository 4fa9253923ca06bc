// Package internal provides the main application initialization and
// runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/escalation"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/library"
	"github.com/starford/raido/internal/matcher"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/resolver"
	"github.com/starford/raido/internal/sse"
)

// newLogger initializes the structured JSON logger and installs it as
// the process default.
func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// buildService loads the catalog from the library and wires the
// resolver service over it. Any catalog validation error aborts
// startup: a dangling escalation edge is better caught here than at
// query time.
func buildService(cfg *Config, logger *slog.Logger) (*resolver.Service, library.Provider, *index.DB, error) {
	store, err := library.NewFS(cfg.Library.Path, cfg.Library.Ignore)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init library: %w", err)
	}

	cat, err := catalog.ScanAndLoad(store)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("Catalog loaded",
		slog.Int("skills", cat.Len()),
		slog.Int("documents", len(cat.Documents())))

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init index: %w", err)
	}

	// No broker exists yet at startup, so the initial sync is silent.
	if err := index.Sync(db, store, cat, logger, nil); err != nil {
		logger.Warn("initial index sync failed", slog.String("error", err.Error()))
	}

	return resolver.New(store, db, cat, logger), store, db, nil
}

// Run starts the HTTP server (and library watcher) with the given
// options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("library_path", cfg.Library.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, store, db, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// SSE broker; reload syncs publish per-document index events.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	svc.SetEventSink(broker)

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start library watcher: any settled change rebuilds the catalog.
	if cfg.Library.Watch {
		g.Go(func() error {
			return library.Watch(gCtx, store.Root(), 300*time.Millisecond, logger, func() {
				if err := svc.Reload(gCtx); err != nil {
					logger.Error("catalog reload failed, keeping previous catalog",
						slog.String("error", err.Error()))
					return
				}
				logger.Info("catalog reloaded")
				broker.PublishReload()
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server with the given options. Logging
// goes to stderr so stdout stays clean for the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, _, db, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := mcpserver.New(svc)
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

// Check loads the library catalog and returns its validation error, if
// any. Used by the `check` CLI command to vet a library before serving.
func Check(cfg *Config) (int, int, error) {
	store, err := library.NewFS(cfg.Library.Path, cfg.Library.Ignore)
	if err != nil {
		return 0, 0, err
	}
	cat, err := catalog.ScanAndLoad(store)
	if err != nil {
		return 0, 0, err
	}
	return cat.Len(), len(cat.Documents()), nil
}

// ResolveOnce loads the catalog and resolves a single query without
// touching the document index. Used by the `resolve` CLI command.
func ResolveOnce(cfg *Config, query string, limit int) (*resolver.ResolveResult, error) {
	store, err := library.NewFS(cfg.Library.Path, cfg.Library.Ignore)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.ScanAndLoad(store)
	if err != nil {
		return nil, err
	}

	m := matcher.Match(cat, query, limit)
	res := &resolver.ResolveResult{Query: m.Query, Hits: m.Hits}
	if top := m.TopSkill(); top != "" {
		res.Escalation = escalation.Route(cat, top, query)
	}
	return res, nil
}
