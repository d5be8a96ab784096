// Package main provides the API server entry point for the wallet analytics service.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wallet-analytics/internal/api"
	"github.com/wallet-analytics/internal/chain"
	"github.com/wallet-analytics/internal/config"
	"github.com/wallet-analytics/internal/logging"
	"github.com/wallet-analytics/internal/retry"
	"github.com/wallet-analytics/internal/service"
	"github.com/wallet-analytics/internal/storage"
	"github.com/wallet-analytics/internal/types"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logging.InitGlobalLogger(logging.ParseLogLevel(cfg.Logging.Level), logging.ParseLogFormat(cfg.Logging.Format))
	logger := logging.GetGlobalLogger().WithField("component", "server")
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Wallet analytics server starting")

	registry, err := chain.LoadRegistry(cfg.Chains.RegistryPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load chain registry")
	}

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

	clickhouse, err := retry.Connect(ctx, "ClickHouse", func() (*storage.ClickHouseDB, error) {
		return storage.NewClickHouseDB(&cfg.Database.ClickHouse)
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to ClickHouse")
	}
	defer clickhouse.Close()

	redis, err := retry.Connect(ctx, "Redis", func() (*storage.RedisCache, error) {
		return storage.NewRedisCache(&cfg.Database.Redis)
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	// Repositories
	walletRepo := storage.NewWalletRepository(postgres)
	tokenRepo := storage.NewTokenRepository(postgres)
	snapshotRepo := storage.NewBalanceSnapshotRepository(postgres)
	priceRepo := storage.NewPriceHistoryRepository(clickhouse)
	txRepo := storage.NewTransactionRepository(clickhouse)
	cacheService := storage.NewCacheService(redis, cfg.Cache.TTL)

	// Services
	services := api.Services{
		History:        service.NewBalanceHistoryService(walletRepo, tokenRepo, snapshotRepo, cacheService),
		Composition:    service.NewCompositionService(walletRepo, tokenRepo, registry, cacheService),
		ProfitLoss:     service.NewProfitLossService(walletRepo, tokenRepo, snapshotRepo),
		Risk:           service.NewRiskService(walletRepo, tokenRepo, txRepo, priceRepo, registry, cacheService),
		TokenAnalytics: service.NewTokenAnalyticsService(walletRepo, tokenRepo, priceRepo),
	}

	checks := map[string]api.Pinger{
		"postgres":   postgres,
		"clickhouse": clickhouse,
		"redis":      redis,
	}

	comparePeriod, ok := types.ParsePeriod(cfg.Analytics.ComparePeriod)
	if !ok {
		logger.WithField("period", cfg.Analytics.ComparePeriod).Warn("Unsupported compare period, using all")
	}

	serverConfig := &api.ServerConfig{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		RequestsPerSecond:  cfg.RateLimit.RequestsPerSecond,
		Burst:              cfg.RateLimit.Burst,
		DefaultHistoryDays: cfg.Analytics.DefaultHistoryDays,
		MaxHistoryDays:     cfg.Analytics.MaxHistoryDays,
		ComparePeriod:      comparePeriod,
	}
	server := api.NewServer(serverConfig, services, checks)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	healthServer := api.NewHealthServer(checks, 30*time.Second)
	lis, err := net.Listen("tcp", net.JoinHostPort(cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		logger.WithError(err).Fatal("Failed to listen for gRPC")
	}
	go func() {
		if err := healthServer.Serve(ctx, lis); err != nil {
			logger.WithError(err).Error("gRPC health server stopped")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host":      cfg.Server.Host,
		"port":      cfg.Server.Port,
		"grpc_port": cfg.Server.GRPCPort,
	}).Info("Server started successfully")

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	healthServer.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		os.Exit(1)
	}

	logger.Info("Server exited")
}
