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

	"github.com/starford/keepnote/internal/api"
	"github.com/starford/keepnote/internal/auth"
	"github.com/starford/keepnote/internal/categoryservice"
	"github.com/starford/keepnote/internal/noteservice"
	"github.com/starford/keepnote/internal/reminderservice"
	"github.com/starford/keepnote/internal/sse"
	"github.com/starford/keepnote/internal/store"
)

// openStore builds the record store selected by the configuration.
func openStore(ctx context.Context, cfg *StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case StoreDriverSQLite:
		return store.OpenSQLite(cfg.SQLite.Path)
	case StoreDriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return store.OpenMongo(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// newKeySource builds the signing key source from the auth configuration.
func newKeySource(cfg *AuthConfig) (*auth.KeySource, error) {
	if cfg.KeyFile != "" {
		return auth.NewFileKey(cfg.KeyFile)
	}
	return auth.NewStaticKey(cfg.Secret), nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the record store.
	st, err := openStore(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer st.Close()

	// Signing key and token issuer.
	keys, err := newKeySource(&cfg.Auth)
	if err != nil {
		return fmt.Errorf("init signing key: %w", err)
	}
	issuer := auth.NewIssuer(keys, cfg.Auth.TokenTTL)

	// SSE broker for note change events.
	broker := sse.NewBroker()
	defer broker.Close()

	// Build services and router.
	authSvc := auth.NewService(st, issuer)
	noteSvc := noteservice.NewService(st, broker)
	categorySvc := categoryservice.NewService(st)
	reminderSvc := reminderservice.NewService(st)

	h := api.NewHandler(authSvc, noteSvc, categorySvc, reminderSvc)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), issuer, broker)

	// Build chi router.
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

	// Mount API routes under /api/v1.
	r.Mount("/api/v1", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	// Cancel the group on SIGINT/SIGTERM so every goroutine unwinds.
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(signalCtx)

	// Watch the key file for signing key rotation.
	g.Go(func() error {
		return keys.Watch(gCtx, logger)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Drain the HTTP server once shutdown begins.
	g.Go(func() error {
		<-gCtx.Done()
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
