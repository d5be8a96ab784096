// Package main provides the snapshot worker entry point.
// It records a balance snapshot for every active wallet at 00:00 UTC daily,
// or once immediately when started with the "run" argument.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wallet-analytics/internal/config"
	"github.com/wallet-analytics/internal/logging"
	"github.com/wallet-analytics/internal/retry"
	"github.com/wallet-analytics/internal/service"
	"github.com/wallet-analytics/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(logging.ParseLogLevel(cfg.Logging.Level), logging.ParseLogFormat(cfg.Logging.Format))
	logger := logging.GetGlobalLogger().WithField("component", "snapshot_worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	logger.Info("Connecting to databases...")

	postgres, err := retry.Connect(ctx, "Postgres", func() (*storage.PostgresDB, error) {
		return storage.NewPostgresDB(&cfg.Database.Postgres)
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	// Tracking invalidates cached analytics; the worker still runs without Redis
	var cache service.ResultCache
	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, cached analytics will expire on TTL")
	} else {
		defer redis.Close()
		cache = storage.NewCacheService(redis, cfg.Cache.TTL)
	}

	walletRepo := storage.NewWalletRepository(postgres)
	history := service.NewBalanceHistoryService(
		walletRepo,
		storage.NewTokenRepository(postgres),
		storage.NewBalanceSnapshotRepository(postgres),
		cache,
	)
	scheduler := service.NewSnapshotScheduler(walletRepo, history)

	// One-time run mode
	if len(os.Args) > 1 && os.Args[1] == "run" {
		logger.Info("Running snapshot immediately...")
		result, err := scheduler.TrackAllActive(ctx)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create snapshots")
		}
		if result.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	if err := scheduler.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start snapshot scheduler")
	}

	<-ctx.Done()
	logger.Info("Shutting down snapshot worker...")
	if err := scheduler.Stop(); err != nil {
		logger.WithError(err).Warn("Snapshot scheduler did not stop cleanly")
	}
	logger.Info("Worker stopped")
}
