package storage

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/wallet-analytics/internal/config"
)

// testContext creates a context with timeout for tests
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testPostgresConfig() *config.PostgresConfig {
	return &config.PostgresConfig{
		Host:           envOr("TEST_POSTGRES_HOST", "localhost"),
		Port:           envOr("TEST_POSTGRES_PORT", "5432"),
		Database:       envOr("TEST_POSTGRES_DB", "wallet_analytics_test"),
		User:           envOr("TEST_POSTGRES_USER", "analytics"),
		Password:       envOr("TEST_POSTGRES_PASSWORD", "analytics_dev_password"),
		MaxConnections: 5,
	}
}

func testClickHouseConfig() *config.ClickHouseConfig {
	return &config.ClickHouseConfig{
		Host:     envOr("TEST_CLICKHOUSE_HOST", "localhost"),
		Port:     envOr("TEST_CLICKHOUSE_PORT", "9000"),
		Database: envOr("TEST_CLICKHOUSE_DB", "default"),
		User:     envOr("TEST_CLICKHOUSE_USER", "default"),
		Password: envOr("TEST_CLICKHOUSE_PASSWORD", ""),
	}
}

// migrationsDir resolves a migrations subdirectory relative to this file
func migrationsDir(t *testing.T, kind string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot resolve test file location")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations", kind)
}

// setupPostgres connects to a test database with migrations applied, or
// skips the test when none is reachable.
func setupPostgres(t *testing.T) *PostgresDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := testPostgresConfig()
	db, err := NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping test - Postgres not available: %v", err)
	}
	t.Cleanup(db.Close)

	if err := RunMigrations(cfg.URL(), migrationsDir(t, "postgres")); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

// setupClickHouse connects to a test ClickHouse with migrations applied, or
// skips the test when none is reachable.
func setupClickHouse(t *testing.T) *ClickHouseDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := NewClickHouseDB(testClickHouseConfig())
	if err != nil {
		t.Skipf("Skipping test - ClickHouse not available: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunClickHouseMigrations(testContext(t), db, migrationsDir(t, "clickhouse")); err != nil {
		t.Fatalf("RunClickHouseMigrations() error = %v", err)
	}
	return db
}
