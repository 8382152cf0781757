package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stwalsh4118/asrun/internal/config"
	"github.com/stwalsh4118/asrun/internal/db"
	"github.com/stwalsh4118/asrun/internal/events"
	"github.com/stwalsh4118/asrun/internal/logger"
	"github.com/stwalsh4118/asrun/internal/server"
	"github.com/stwalsh4118/asrun/internal/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", true)
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	if err := run(cfg); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(cfg *config.Config) error {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectionTimeout)
	err = database.Health(pingCtx)
	cancel()
	if err != nil {
		return err
	}

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		return err
	}
	if err := db.RunMigrations(sqlDB); err != nil {
		return err
	}

	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	srv, err := server.New(cfg, database, store, resolver, registry)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.PubSub.Enabled {
		client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		listener := events.NewListener(client, cfg.PubSub.SubscriptionID, srv.IngestService())
		go func() {
			if err := listener.Listen(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Log.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		logger.Log.Error().Err(err).Msg("Background component failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore builds the configured object store behind a circuit breaker
func openStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, func(), error) {
	var (
		store   storage.ObjectStore
		closeFn = func() {}
	)

	switch cfg.Storage.Backend {
	case config.StorageBackendGCS:
		gcs, err := storage.NewGCSStore(ctx, cfg.Storage.GCSEndpoint)
		if err != nil {
			return nil, nil, err
		}
		store = gcs
		closeFn = func() { _ = gcs.Close() }
	default:
		local, err := storage.NewLocalStore(cfg.Storage.LocalRoot)
		if err != nil {
			return nil, nil, err
		}
		store = local
	}

	logger.Log.Info().
		Str("backend", cfg.Storage.Backend).
		Str("default_bucket", cfg.Storage.DefaultBucket).
		Msg("Object store ready")

	return storage.NewBreakerStore(store, cfg.Storage.BreakerThreshold, cfg.Storage.BreakerCooldown), closeFn, nil
}
