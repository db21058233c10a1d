package main

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/auth"
	"github.com/mmynk/splitopus/internal/config"
	"github.com/mmynk/splitopus/internal/middleware"
	"github.com/mmynk/splitopus/internal/server"
	"github.com/mmynk/splitopus/internal/service"
	"github.com/mmynk/splitopus/internal/storage"
	"github.com/mmynk/splitopus/internal/storage/postgres"
	"github.com/mmynk/splitopus/internal/storage/sqlite"
	"github.com/mmynk/splitopus/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func init() {
	// Amounts travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWith(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	authn, err := newAuthenticator(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	handler := server.NewRouter(server.Services{
		Accounts: service.NewAccountService(store),
		Trips:    service.NewTripService(store),
		Ledger:   service.NewLedgerService(store),
		Drafts:   service.NewDraftService(store, cfg.DraftTTL),
	}, reg,
		metrics.Interceptor(),
		middleware.RequireAuth(authn),
		middleware.LoggingInterceptor(),
	)

	sweeper := service.NewDraftSweeper(store, cfg.DraftTTL, cfg.DraftSweepInterval)
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.H2C(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "storage", cfg.StorageBackend, "auth", cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", cfg.StorageBackend)
		return store, nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", cfg.StorageBackend, "database", cfg.DBPath)
		return store, nil
	}
}

func newAuthenticator(cfg config.Config) (auth.Authenticator, error) {
	switch cfg.AuthMode {
	case config.AuthDev:
		slog.Warn("Running with dev authentication, identities are not verified", "default_account", cfg.DevAccount)
		return auth.DevAuthenticator{DefaultAccountID: cfg.DevAccount, DefaultName: cfg.DevAccount}, nil
	case config.AuthJWT:
		return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
}
