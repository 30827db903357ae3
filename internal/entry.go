// Package internal provides the main application initialization and runtime logic.
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

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/docservice"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
)

// runtime is what every front end needs: a logger, the library and its index.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// open initializes logging, storage and the index and runs the start-up sync.
func (a *application) open() (*runtime, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("library_path", cfg.Library.Path),
		slog.String("extension", cfg.Documents.Extension),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Library.Path, storage.WithExtension(cfg.Documents.Extension))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	start := time.Now()
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Index synced", slog.Duration("took", time.Since(start)))
	}

	return &runtime{cfg: cfg, logger: logger, store: store, db: db}, nil
}

func (rt *runtime) service(n docservice.Notifier) *docservice.Service {
	opts := []docservice.Option{docservice.WithDefaultTOC(rt.cfg.Documents.DefaultTOC)}
	if n != nil {
		opts = append(opts, docservice.WithNotifier(n))
	}
	return docservice.New(rt.store, rt.db, opts...)
}

// Run starts the HTTP server, the SSE broker and the library watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.open()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	cfg, logger := rt.cfg, rt.logger

	broker := sse.NewBroker(cfg.Events.OutlineThrottle)
	defer broker.Close()

	svc := rt.service(broker)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := rt.db.Ping(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Library.Watch {
		g.Go(func() error {
			if err := index.Watch(gCtx, rt.db, rt.store, rt.store.Root(), logger, broker.DocumentChanged); err != nil {
				logger.Warn("watcher disabled", slog.String("error", err.Error()))
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
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := app.open()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if rt.cfg.Library.Watch {
		go func() {
			if err := index.Watch(watchCtx, rt.db, rt.store, rt.store.Root(), rt.logger, nil); err != nil {
				rt.logger.Warn("watcher disabled", slog.String("error", err.Error()))
			}
		}()
	}

	rt.logger.Info("Serving MCP on stdio", slog.String("version", app.version))
	return mcpserver.New(rt.service(nil), app.version).ServeStdio()
}
