package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheService(NewRedisCacheFromClient(client), time.Minute), mr
}

type cachedReport struct {
	WalletID int64   `json:"wallet_id"`
	Score    float64 `json:"score"`
}

func TestCacheService_SetGet(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	t.Run("miss returns false without error", func(t *testing.T) {
		var got cachedReport
		found, err := cache.Get(ctx, cache.RiskKey(1), &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("round trip with TTL", func(t *testing.T) {
		key := cache.RiskKey(1)
		require.NoError(t, cache.Set(ctx, key, cachedReport{WalletID: 1, Score: 64.5}))

		var got cachedReport
		found, err := cache.Get(ctx, key, &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 64.5, got.Score)
		assert.Equal(t, time.Minute, mr.TTL(key))
	})

	t.Run("expired entries miss", func(t *testing.T) {
		key := cache.RiskKey(2)
		require.NoError(t, cache.SetWithTTL(ctx, key, cachedReport{WalletID: 2}, time.Second))
		mr.FastForward(2 * time.Second)

		var got cachedReport
		found, err := cache.Get(ctx, key, &got)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestCacheService_Keys(t *testing.T) {
	cache, _ := setupTestCache(t)
	user := int64(42)

	assert.Equal(t, "risk:9", cache.RiskKey(9))
	assert.Equal(t, "crosschain:all", cache.CrossChainKey(nil))
	assert.Equal(t, "crosschain:user:42", cache.CrossChainKey(&user))
	assert.Equal(t, "risk:abc", cache.GenerateCacheKey(CacheKeyRisk, "ABC"))
}

func TestCacheService_InvalidateWallet(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()
	user := int64(5)

	require.NoError(t, cache.Set(ctx, cache.RiskKey(1), cachedReport{WalletID: 1}))
	require.NoError(t, cache.Set(ctx, cache.RiskKey(2), cachedReport{WalletID: 2}))
	require.NoError(t, cache.Set(ctx, cache.CrossChainKey(nil), map[string]float64{"total": 1}))
	require.NoError(t, cache.Set(ctx, cache.CrossChainKey(&user), map[string]float64{"total": 1}))

	require.NoError(t, cache.InvalidateWallet(ctx, 1))

	assert.False(t, mr.Exists(cache.RiskKey(1)))
	assert.True(t, mr.Exists(cache.RiskKey(2)))
	assert.False(t, mr.Exists(cache.CrossChainKey(nil)))
	assert.False(t, mr.Exists(cache.CrossChainKey(&user)))
}
