package service

import (
	"context"
	"time"

	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/logging"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// RiskService assesses wallet risk from holdings, transactions and price history
type RiskService struct {
	wallets      WalletRepository
	tokens       TokenRepository
	transactions TransactionRepository
	prices       PriceHistoryRepository
	oracle       PriceOracle
	cache        ResultCache
	now          func() time.Time
}

// NewRiskService creates a new risk service
func NewRiskService(
	wallets WalletRepository,
	tokens TokenRepository,
	transactions TransactionRepository,
	prices PriceHistoryRepository,
	oracle PriceOracle,
	cache ResultCache,
) *RiskService {
	return &RiskService{
		wallets:      wallets,
		tokens:       tokens,
		transactions: transactions,
		prices:       prices,
		oracle:       oracle,
		cache:        cache,
		now:          time.Now,
	}
}

// Assess computes the four sub-scores, the weighted overall score, the risk
// level and rule-based findings. Missing price history or a failing price
// oracle degrade the affected sub-score to its fallback instead of failing.
func (s *RiskService) Assess(ctx context.Context, walletID int64) (*models.RiskReport, error) {
	logger := logging.FromContext(ctx).WithField("wallet_id", walletID)

	if s.cache != nil {
		var cached models.RiskReport
		found, err := s.cache.Get(ctx, s.cache.RiskKey(walletID), &cached)
		if err != nil {
			logger.WithError(apperrors.NewCacheError("get risk report", err)).Warn("Cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.ListByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	since := now.AddDate(0, 0, -riskWindowDays)

	txs, err := s.transactions.ListByWallet(ctx, walletID, since)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list transactions", err)
	}

	tokenUSD := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		tokenUSD = append(tokenUSD, t.USDValue)
	}

	scores := models.RiskScores{
		Diversification: DiversificationScore(wallet.USDBalance, tokenUSD),
		Activity:        ActivityScore(txs, now),
		Volatility:      VolatilityScore(wallet.USDBalance, s.volatilityInputs(ctx, logger, tokens, since, now)),
		GasEfficiency:   GasEfficiencyScore(wallet.Chain, recentSends(txs, since), s.nativePrice(ctx, logger, wallet.Chain)),
	}

	overall := OverallScore(scores)
	factors, recs := Findings(scores, wallet.USDBalance, tokens)

	report := &models.RiskReport{
		WalletID:        wallet.ID,
		Address:         wallet.Address,
		Chain:           wallet.Chain,
		OverallScore:    overall,
		RiskLevel:       types.ClassifyRisk(overall),
		Scores:          scores,
		RiskFactors:     factors,
		Recommendations: recs,
		AssessedAt:      now,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.RiskKey(walletID), report); err != nil {
			logger.WithError(apperrors.NewCacheError("set risk report", err)).Warn("Cache write failed")
		}
	}

	return report, nil
}

func (s *RiskService) volatilityInputs(ctx context.Context, logger *logging.Logger, tokens []*models.Token, since, now time.Time) []TokenVolatilityInput {
	inputs := make([]TokenVolatilityInput, 0, len(tokens))
	for _, t := range tokens {
		in := TokenVolatilityInput{Symbol: t.Symbol, USDValue: t.USDValue}
		if t.USDValue > 0 {
			points, err := s.prices.GetRange(ctx, t.ID, since, now)
			if err != nil {
				logger.WithField("token_id", t.ID).
					WithError(apperrors.NewPartialDataError("price history", err)).
					Warn("Using fallback volatility")
			}
			for _, p := range points {
				in.Prices = append(in.Prices, p.Price)
			}
		}
		inputs = append(inputs, in)
	}
	return inputs
}

func (s *RiskService) nativePrice(ctx context.Context, logger *logging.Logger, c types.ChainID) float64 {
	price, err := s.oracle.NativeUSDPrice(ctx, c)
	if err != nil {
		logger.WithField("chain", c).
			WithError(apperrors.NewPartialDataError("native price", err)).
			Warn("Gas cost share unavailable")
		return 0
	}
	return price
}

func recentSends(txs []models.Transaction, since time.Time) []models.Transaction {
	var sends []models.Transaction
	for _, tx := range txs {
		if tx.Type == types.TxTypeSend && !tx.Timestamp.Before(since) {
			sends = append(sends, tx)
		}
	}
	return sends
}
