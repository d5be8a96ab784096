package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestDelay(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Second, Delay(cfg, 1))
	assert.Equal(t, 2*time.Second, Delay(cfg, 2))
	assert.Equal(t, 8*time.Second, Delay(cfg, 4))
	assert.Equal(t, 30*time.Second, Delay(cfg, 10))
}

func TestWithExponentialBackoff_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	result := WithExponentialBackoff(context.Background(), fastConfig(5), func(ctx context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("not ready")
		}
		return nil
	})

	assert.NoError(t, result.LastError)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, calls)
}

func TestWithExponentialBackoff_GivesUp(t *testing.T) {
	boom := errors.New("refused")
	result := WithExponentialBackoff(context.Background(), fastConfig(3), func(ctx context.Context, attempt int) error {
		return boom
	})

	assert.ErrorIs(t, result.LastError, boom)
	assert.Equal(t, 3, result.Attempts)
}

func TestWithExponentialBackoff_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2}

	result := WithExponentialBackoff(ctx, cfg, func(ctx context.Context, attempt int) error {
		cancel()
		return errors.New("refused")
	})

	assert.ErrorIs(t, result.LastError, context.Canceled)
	assert.Equal(t, 1, result.Attempts)
}

func TestConnect(t *testing.T) {
	attempts := 0
	conn, err := Connect(context.Background(), "postgres", func() (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("starting up")
		}
		return "pool", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "pool", conn)
	assert.Equal(t, 2, attempts)
}
