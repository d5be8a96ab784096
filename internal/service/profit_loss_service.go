package service

import (
	"context"
	"math"
	"sort"
	"time"

	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/logging"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

const topTokensPerWallet = 3

// ProfitLossService diffs current wallet state against a stored baseline snapshot
type ProfitLossService struct {
	wallets   WalletRepository
	tokens    TokenRepository
	snapshots BalanceSnapshotRepository
	now       func() time.Time
}

// NewProfitLossService creates a new profit/loss service
func NewProfitLossService(wallets WalletRepository, tokens TokenRepository, snapshots BalanceSnapshotRepository) *ProfitLossService {
	return &ProfitLossService{
		wallets:   wallets,
		tokens:    tokens,
		snapshots: snapshots,
		now:       time.Now,
	}
}

type tokenPosition struct {
	symbol   string
	name     string
	balance  float64
	usdValue float64
}

// ProfitLoss computes the change since the period's baseline: the earliest
// snapshot on or after the cutoff, or the earliest overall for PeriodAll.
// Without a baseline the current state is its own baseline and every change
// is zero. Unsupported periods are treated as PeriodAll.
func (s *ProfitLossService) ProfitLoss(ctx context.Context, walletID int64, period types.Period) (*models.ProfitLoss, error) {
	period, _ = types.ParsePeriod(string(period))
	logger := logging.FromContext(ctx).WithField("wallet_id", walletID)

	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.ListByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var onOrAfter *time.Time
	if cutoff, ok := period.Cutoff(now); ok {
		day := types.CalendarDate(cutoff)
		onOrAfter = &day
	}

	baseline, err := s.snapshots.GetEarliest(ctx, walletID, onOrAfter)
	if err != nil {
		return nil, err
	}

	current := make(map[int64]tokenPosition, len(tokens))
	order := make([]int64, 0, len(tokens))
	for _, t := range tokens {
		current[t.ID] = tokenPosition{symbol: t.Symbol, name: t.Name, balance: t.Balance, usdValue: t.USDValue}
		order = append(order, t.ID)
	}

	result := &models.ProfitLoss{
		WalletID:    wallet.ID,
		Address:     wallet.Address,
		Chain:       wallet.Chain,
		Period:      period,
		CurrentDate: now,
	}

	historicalNative, historicalUSD := wallet.NativeBalance, wallet.USDBalance
	historical := current
	if baseline != nil {
		date := baseline.Date
		result.HistoricalDate = &date
		historicalNative, historicalUSD = baseline.NativeBalance, baseline.USDBalance

		historical = make(map[int64]tokenPosition, len(baseline.TokenBalances))
		for id, balance := range baseline.TokenBalances {
			historical[id] = tokenPosition{balance: balance, usdValue: baseline.TokenUSDValues.Get(id)}
		}
		for id, usd := range baseline.TokenUSDValues {
			if _, ok := historical[id]; !ok {
				historical[id] = tokenPosition{usdValue: usd}
			}
		}
	}

	result.Native = valueChange(wallet.NativeBalance, historicalNative)
	result.USD = valueChange(wallet.USDBalance, historicalUSD)

	// Tokens only present in the baseline were sold off since; their metadata
	// comes from the token table.
	var departed []int64
	for id := range historical {
		if _, ok := current[id]; !ok {
			departed = append(departed, id)
		}
	}
	sort.Slice(departed, func(i, j int) bool { return departed[i] < departed[j] })
	for _, id := range departed {
		pos := historical[id]
		if t, err := s.tokens.GetByID(ctx, id); err == nil {
			pos.symbol, pos.name = t.Symbol, t.Name
			historical[id] = pos
		} else {
			logger.WithField("token_id", id).WithError(err).Warn("Token metadata unavailable for baseline holding")
		}
		order = append(order, id)
	}

	result.Tokens = make([]models.TokenChange, 0, len(order))
	for _, id := range order {
		cur, then := current[id], historical[id]
		meta := cur
		if _, held := current[id]; !held {
			meta = then
		}
		balance := valueChange(cur.balance, then.balance)
		usd := valueChange(cur.usdValue, then.usdValue)
		result.Tokens = append(result.Tokens, models.TokenChange{
			ID:                id,
			Symbol:            meta.symbol,
			Name:              meta.name,
			CurrentBalance:    cur.balance,
			HistoricalBalance: then.balance,
			BalanceChange:     balance.Change,
			BalanceChangePct:  balance.ChangePct,
			CurrentUSD:        cur.usdValue,
			HistoricalUSD:     then.usdValue,
			USDChange:         usd.Change,
			USDChangePct:      usd.ChangePct,
		})
	}
	sort.SliceStable(result.Tokens, func(i, j int) bool {
		return math.Abs(result.Tokens[i].USDChange) > math.Abs(result.Tokens[j].USDChange)
	})

	return result, nil
}

func valueChange(current, historical float64) models.ValueChange {
	return models.ValueChange{
		Current:    current,
		Historical: historical,
		Change:     current - historical,
		ChangePct:  percentChange(current, historical),
	}
}

// Compare runs ProfitLoss for every wallet and ranks them by USD change
// percentage. A wallet whose computation fails is logged and listed in
// Failures without aborting the batch.
func (s *ProfitLossService) Compare(ctx context.Context, walletIDs []int64, period types.Period) (*models.Comparison, error) {
	if len(walletIDs) == 0 {
		return nil, apperrors.NewInvalidInputError("wallet_ids", "At least one wallet ID is required")
	}
	period, _ = types.ParsePeriod(string(period))
	logger := logging.FromContext(ctx)

	comparison := &models.Comparison{
		Period:  period,
		Wallets: make([]models.WalletPerformance, 0, len(walletIDs)),
	}

	var best, worst *models.WalletPerformance
	allMissing := true
	seen := make(map[int64]struct{}, len(walletIDs))
	for _, id := range walletIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		pl, err := s.ProfitLoss(ctx, id, period)
		if err != nil {
			logger.WithField("wallet_id", id).WithError(err).Warn("Skipping wallet in comparison")
			comparison.Failures = append(comparison.Failures, models.ItemFailure{WalletID: id, Error: err.Error()})
			allMissing = allMissing && apperrors.IsNotFound(err)
			continue
		}
		allMissing = false

		top := pl.Tokens
		if len(top) > topTokensPerWallet {
			top = top[:topTokensPerWallet]
		}
		perf := models.WalletPerformance{
			ID:            pl.WalletID,
			Address:       pl.Address,
			Chain:         pl.Chain,
			CurrentUSD:    pl.USD.Current,
			HistoricalUSD: pl.USD.Historical,
			USDChange:     pl.USD.Change,
			USDChangePct:  pl.USD.ChangePct,
			TopTokens:     top,
		}
		comparison.Wallets = append(comparison.Wallets, perf)
		comparison.CombinedProfitLoss += perf.USDChange

		if best == nil || perf.USDChangePct > best.USDChangePct {
			p := perf
			best = &p
		}
		if worst == nil || perf.USDChangePct < worst.USDChangePct {
			p := perf
			worst = &p
		}
	}

	if allMissing {
		notFound := apperrors.NewNotFoundError("wallets", walletIDs)
		notFound.Message = "No valid wallets found"
		return nil, notFound
	}

	sort.SliceStable(comparison.Wallets, func(i, j int) bool {
		return comparison.Wallets[i].USDChangePct > comparison.Wallets[j].USDChangePct
	})
	comparison.BestPerformer = best
	comparison.WorstPerformer = worst

	return comparison, nil
}
