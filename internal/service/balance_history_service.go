package service

import (
	"context"
	"time"

	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/logging"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// BalanceHistoryService records daily balance snapshots and reads them back
// as a gap-filled daily series.
type BalanceHistoryService struct {
	wallets   WalletRepository
	tokens    TokenRepository
	snapshots BalanceSnapshotRepository
	cache     ResultCache
	now       func() time.Time
}

// NewBalanceHistoryService creates a new balance history service
func NewBalanceHistoryService(
	wallets WalletRepository,
	tokens TokenRepository,
	snapshots BalanceSnapshotRepository,
	cache ResultCache,
) *BalanceHistoryService {
	return &BalanceHistoryService{
		wallets:   wallets,
		tokens:    tokens,
		snapshots: snapshots,
		cache:     cache,
		now:       time.Now,
	}
}

// Track upserts today's snapshot from the wallet's current balances. Repeated
// calls on the same UTC day overwrite the same row.
func (s *BalanceHistoryService) Track(ctx context.Context, walletID int64) (*models.BalanceSnapshot, error) {
	logger := logging.FromContext(ctx).WithField("wallet_id", walletID)

	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.ListByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	balances := make(models.TokenAmounts, len(tokens))
	values := make(models.TokenAmounts, len(tokens))
	for _, t := range tokens {
		balances[t.ID] = t.Balance
		values[t.ID] = t.USDValue
	}

	now := s.now().UTC()
	stored, err := s.snapshots.Upsert(ctx, &models.BalanceSnapshot{
		WalletID:       wallet.ID,
		Date:           types.CalendarDate(now),
		NativeBalance:  wallet.NativeBalance,
		USDBalance:     wallet.USDBalance,
		TokenBalances:  balances,
		TokenUSDValues: values,
		LastUpdated:    now,
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateWallet(ctx, walletID); err != nil {
			logger.WithError(apperrors.NewCacheError("invalidate wallet", err)).Warn("Failed to invalidate cached analytics")
		}
	}

	logger.WithFields(map[string]interface{}{
		"date":   stored.Date.Format(types.DateLayout),
		"tokens": len(tokens),
	}).Debug("Balance snapshot tracked")

	return stored, nil
}

// History returns one snapshot per day from today-days through today.
// Days without a stored row reuse the most recent earlier snapshot in the
// window, marked estimated; days before the first stored snapshot are omitted.
func (s *BalanceHistoryService) History(ctx context.Context, walletID int64, days int) ([]*models.BalanceSnapshot, error) {
	if days < 0 {
		return nil, apperrors.NewInvalidInputError("days", "days must be zero or positive")
	}

	if _, err := s.wallets.GetByID(ctx, walletID); err != nil {
		return nil, err
	}

	end := types.CalendarDate(s.now())
	start := end.AddDate(0, 0, -days)

	stored, err := s.snapshots.GetByWalletAndDateRange(ctx, walletID, start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*models.BalanceSnapshot, len(stored))
	for _, snap := range stored {
		byDate[snap.Date.Format(types.DateLayout)] = snap
	}

	return fillDailySeries(byDate, start, end), nil
}

// fillDailySeries walks start..end inclusive, forward-filling missing days
func fillDailySeries(byDate map[string]*models.BalanceSnapshot, start, end time.Time) []*models.BalanceSnapshot {
	var (
		series   []*models.BalanceSnapshot
		lastSeen *models.BalanceSnapshot
	)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if snap, ok := byDate[day.Format(types.DateLayout)]; ok {
			series = append(series, snap)
			lastSeen = snap
			continue
		}
		if lastSeen != nil {
			series = append(series, lastSeen.EstimatedCopy(day))
		}
	}

	if series == nil {
		series = []*models.BalanceSnapshot{}
	}
	return series
}
