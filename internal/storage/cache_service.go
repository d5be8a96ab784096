package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService caches computed analytics results as JSON in Redis
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyRisk is for per-wallet risk reports
	CacheKeyRisk CacheKeyType = "risk"
	// CacheKeyCrossChain is for cross-chain aggregates, per user or global
	CacheKeyCrossChain CacheKeyType = "crosschain"
)

// GenerateCacheKey builds <type>:<param1>:<param2>:... with lowercased params
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, string(keyType))
	for _, p := range params {
		parts = append(parts, strings.ToLower(p))
	}
	return strings.Join(parts, ":")
}

// RiskKey returns the cache key of a wallet's risk report
func (c *CacheService) RiskKey(walletID int64) string {
	return c.GenerateCacheKey(CacheKeyRisk, strconv.FormatInt(walletID, 10))
}

// CrossChainKey returns the cache key of a cross-chain aggregate. A nil user
// means all active wallets.
func (c *CacheService) CrossChainKey(userID *int64) string {
	if userID == nil {
		return c.GenerateCacheKey(CacheKeyCrossChain, "all")
	}
	return c.GenerateCacheKey(CacheKeyCrossChain, "user", strconv.FormatInt(*userID, 10))
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with a custom TTL
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.redis.Set(ctx, key, data, ttl)
}

// Get loads a cached value into dest. A miss returns (false, nil).
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}

// InvalidatePattern removes all keys matching a glob pattern, e.g. "crosschain:*"
func (c *CacheService) InvalidatePattern(ctx context.Context, pattern string) error {
	keys, err := c.redis.ScanKeys(ctx, pattern)
	if err != nil {
		return fmt.Errorf("failed to find keys matching pattern: %w", err)
	}
	return c.Invalidate(ctx, keys...)
}

// InvalidateWallet drops every cached result derived from a wallet's state:
// its risk report and all cross-chain aggregates.
func (c *CacheService) InvalidateWallet(ctx context.Context, walletID int64) error {
	if err := c.Invalidate(ctx, c.RiskKey(walletID)); err != nil {
		return fmt.Errorf("failed to invalidate risk cache: %w", err)
	}
	if err := c.InvalidatePattern(ctx, string(CacheKeyCrossChain)+":*"); err != nil {
		return fmt.Errorf("failed to invalidate cross-chain cache: %w", err)
	}
	return nil
}
