// Package retry runs startup operations with exponential backoff. The
// analytics engine itself never retries; only process entry points use this
// to wait for backing stores to come up.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wallet-analytics/internal/logging"
)

// Config configures retry behavior
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultConfig returns the startup retry policy: 1s, 2s, 4s, 8s, capped at 30s
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Result describes a finished retry run
type Result struct {
	Attempts      int
	TotalDuration time.Duration
	LastError     error
}

// Func is one attempt; attempt counts from 1
type Func func(ctx context.Context, attempt int) error

// WithExponentialBackoff calls fn until it succeeds, MaxAttempts is reached
// or ctx is done.
func WithExponentialBackoff(ctx context.Context, config Config, fn Func) Result {
	logger := logging.FromContext(ctx)
	start := time.Now()
	var result Result

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		result.Attempts = attempt

		err := fn(ctx, attempt)
		if err == nil {
			result.LastError = nil
			result.TotalDuration = time.Since(start)
			if attempt > 1 {
				logger.WithField("attempts", attempt).Info("Operation succeeded after retry")
			}
			return result
		}
		result.LastError = err

		if attempt == config.MaxAttempts {
			break
		}

		delay := Delay(config, attempt)
		logger.WithFields(map[string]interface{}{
			"attempt":      attempt,
			"max_attempts": config.MaxAttempts,
			"delay":        delay.String(),
		}).WithError(err).Warn("Operation failed, retrying with exponential backoff")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(start)
			return result
		}
	}

	result.TotalDuration = time.Since(start)
	return result
}

// Delay returns the wait after a failed attempt: InitialDelay * Multiplier^(attempt-1), capped at MaxDelay
func Delay(config Config, attempt int) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}

// Connect retries open with the default policy and returns its value
func Connect[T any](ctx context.Context, name string, open func() (T, error)) (T, error) {
	var conn T
	result := WithExponentialBackoff(ctx, DefaultConfig(), func(ctx context.Context, attempt int) error {
		c, err := open()
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if result.LastError != nil {
		var zero T
		return zero, fmt.Errorf("failed to connect to %s after %d attempts: %w", name, result.Attempts, result.LastError)
	}
	return conn, nil
}
