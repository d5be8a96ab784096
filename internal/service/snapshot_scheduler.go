package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wallet-analytics/internal/logging"
)

// SnapshotRunResult summarizes one pass over the active wallets
type SnapshotRunResult struct {
	Total     int
	Succeeded int
	Failed    int
}

// SnapshotScheduler tracks every active wallet once a day at midnight UTC
type SnapshotScheduler struct {
	wallets  WalletRepository
	history  *BalanceHistoryService
	now      func() time.Time
	mu       sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
	running  bool
}

// NewSnapshotScheduler creates a new snapshot scheduler
func NewSnapshotScheduler(wallets WalletRepository, history *BalanceHistoryService) *SnapshotScheduler {
	return &SnapshotScheduler{
		wallets: wallets,
		history: history,
		now:     time.Now,
	}
}

// TrackAllActive records today's snapshot for every active wallet. A wallet
// that fails is logged and counted; only listing the wallets can fail the run.
func (s *SnapshotScheduler) TrackAllActive(ctx context.Context) (SnapshotRunResult, error) {
	logger := logging.FromContext(ctx).WithField("component", "snapshot_scheduler")

	wallets, err := s.wallets.ListActive(ctx, nil)
	if err != nil {
		return SnapshotRunResult{}, fmt.Errorf("failed to list active wallets: %w", err)
	}

	result := SnapshotRunResult{Total: len(wallets)}
	for _, w := range wallets {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if _, err := s.history.Track(ctx, w.ID); err != nil {
			logger.WithField("wallet_id", w.ID).WithError(err).Warn("Failed to track wallet balance")
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	logger.WithFields(map[string]interface{}{
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("Daily snapshot run complete")

	return result, nil
}

// untilNextMidnight returns the wait until the next 00:00 UTC
func untilNextMidnight(now time.Time) time.Duration {
	u := now.UTC()
	next := time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)
	return next.Sub(u)
}

// Start runs TrackAllActive at every midnight UTC until Stop or ctx is done
func (s *SnapshotScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("snapshot scheduler is already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	logger := logging.FromContext(ctx).WithField("component", "snapshot_scheduler")
	wait := untilNextMidnight(s.now())
	logger.Infof("Snapshot scheduler starting, next run in %v", wait.Round(time.Second))

	go func() {
		defer close(s.done)
		timer := time.NewTimer(wait)
		defer timer.Stop()

		for {
			select {
			case <-timer.C:
				if _, err := s.TrackAllActive(ctx); err != nil {
					logger.WithError(err).Error("Daily snapshot run failed")
				}
				timer.Reset(untilNextMidnight(s.now()))
			case <-s.stopChan:
				logger.Info("Snapshot scheduler stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish
func (s *SnapshotScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("snapshot scheduler is not running")
	}
	s.running = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}
