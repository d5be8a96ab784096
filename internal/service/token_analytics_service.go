package service

import (
	"context"
	"sort"
	"time"

	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/logging"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

const (
	metricsWindowDays = 30
	volumeWindow      = 7
)

// TokenAnalyticsService derives price statistics for tokens and wallets
type TokenAnalyticsService struct {
	wallets WalletRepository
	tokens  TokenRepository
	prices  PriceHistoryRepository
	now     func() time.Time
}

// NewTokenAnalyticsService creates a new token analytics service
func NewTokenAnalyticsService(wallets WalletRepository, tokens TokenRepository, prices PriceHistoryRepository) *TokenAnalyticsService {
	return &TokenAnalyticsService{
		wallets: wallets,
		tokens:  tokens,
		prices:  prices,
		now:     time.Now,
	}
}

// TokenMetrics computes 30-day price statistics for a token and records a
// new all-time high when the history exceeds the stored one.
func (s *TokenAnalyticsService) TokenMetrics(ctx context.Context, tokenID int64) (*models.TokenMetrics, error) {
	logger := logging.FromContext(ctx).WithField("token_id", tokenID)

	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	points, err := s.prices.GetRange(ctx, tokenID, now.AddDate(0, 0, -metricsWindowDays), now)
	if err != nil {
		logger.WithError(apperrors.NewPartialDataError("price history", err)).Warn("Token metrics limited to stored fields")
		points = nil
	}

	metrics := &models.TokenMetrics{
		TokenID:         token.ID,
		Symbol:          token.Symbol,
		CurrentPrice:    token.CurrentPrice,
		Price24hChange:  token.Price24hChange,
		AllTimeHigh:     token.AllTimeHigh,
		AllTimeHighDate: token.AllTimeHighDate,
		DataPoints:      len(points),
	}
	if len(points) == 0 {
		return metrics, nil
	}

	var storedATH float64
	if token.AllTimeHigh != nil {
		storedATH = *token.AllTimeHigh
	}
	ath, athDate := storedATH, token.AllTimeHighDate
	for _, p := range points {
		if p.Price > ath {
			ath = p.Price
			at := p.Timestamp
			athDate = &at
		}
	}
	if ath > storedATH {
		if err := s.tokens.UpdateAllTimeHigh(ctx, token.ID, ath, *athDate); err != nil {
			logger.WithError(err).Warn("Failed to record all-time high")
		}
	}
	metrics.AllTimeHigh = &ath
	metrics.AllTimeHighDate = athDate

	athChange := percentChange(token.CurrentPrice, ath)
	metrics.AllTimeHighChange = &athChange

	var change7d float64
	for _, p := range points {
		if now.Sub(p.Timestamp) < 8*24*time.Hour {
			change7d = percentChange(token.CurrentPrice, p.Price)
			break
		}
	}
	metrics.Price7dChange = &change7d

	change30d := percentChange(token.CurrentPrice, points[0].Price)
	metrics.Price30dChange = &change30d

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	volatility := populationStdDev(periodReturns(prices)) * 100
	metrics.Volatility30d = &volatility

	recent := points
	if len(recent) > volumeWindow {
		recent = recent[len(recent)-volumeWindow:]
	}
	var volume float64
	for _, p := range recent {
		if p.Volume24h != nil {
			volume += *p.Volume24h
		}
	}
	avgVolume := volume / float64(len(recent))
	metrics.AvgVolume7d = &avgVolume

	return metrics, nil
}

// TokenPerformance reports how each held token's value moved since the
// period's first recorded price. PeriodAll reports current values only.
func (s *TokenAnalyticsService) TokenPerformance(ctx context.Context, walletID int64, period types.Period) (*models.TokenPerformanceReport, error) {
	period, _ = types.ParsePeriod(string(period))
	logger := logging.FromContext(ctx).WithField("wallet_id", walletID)

	if _, err := s.wallets.GetByID(ctx, walletID); err != nil {
		return nil, err
	}

	tokens, err := s.tokens.ListByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	cutoff, hasCutoff := period.Cutoff(now)

	report := &models.TokenPerformanceReport{
		WalletID: walletID,
		Period:   period,
		Tokens:   []models.TokenPerformance{},
	}

	for _, t := range tokens {
		if t.Balance <= 0 || t.USDValue <= 0 {
			continue
		}

		perf := models.TokenPerformance{
			ID:             t.ID,
			Symbol:         t.Symbol,
			Name:           t.Name,
			Balance:        t.Balance,
			Price:          t.CurrentPrice,
			Price24hChange: t.Price24hChange,
			Value:          t.USDValue,
		}

		if hasCutoff {
			points, err := s.prices.GetRange(ctx, t.ID, cutoff, now)
			if err != nil {
				logger.WithField("token_id", t.ID).
					WithError(apperrors.NewPartialDataError("price history", err)).
					Warn("Token performance without start price")
			}
			if len(points) > 0 {
				start := points[0].Price
				startValue := t.Balance * start
				perf.StartPrice = &start
				perf.ValueChange = t.USDValue - startValue
				perf.ValueChangePct = percentChange(t.USDValue, startValue)
			}
		}

		report.TotalValue += perf.Value
		report.TotalValueChange += perf.ValueChange
		report.Tokens = append(report.Tokens, perf)
	}

	if report.TotalValue > 0 {
		for i := range report.Tokens {
			report.Tokens[i].PercentageOfPortfolio = percentOf(report.Tokens[i].Value, report.TotalValue)
		}
		report.TotalValueChangePct = percentChange(report.TotalValue, report.TotalValue-report.TotalValueChange)
	}

	sort.SliceStable(report.Tokens, func(i, j int) bool { return report.Tokens[i].Value > report.Tokens[j].Value })

	return report, nil
}
