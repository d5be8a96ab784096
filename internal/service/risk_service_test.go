package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

type riskFixture struct {
	svc    *RiskService
	prices *fakePriceRepo
	txs    *fakeTxRepo
	oracle *fakeOracle
	cache  *fakeCache
}

func newRiskFixture() *riskFixture {
	f := &riskFixture{
		prices: newFakePriceRepo(),
		txs:    &fakeTxRepo{txs: make(map[int64][]models.Transaction)},
		oracle: &fakeOracle{},
		cache:  newFakeCache(),
	}
	wallets := newFakeWalletRepo(newWallet(1, types.ChainEthereum, 0.66, 1000))
	tokens := newFakeTokenRepo(newToken(10, 1, "LINK", 50, 1000))
	f.svc = NewRiskService(wallets, tokens, f.txs, f.prices, f.oracle, f.cache)
	f.svc.now = fixedClock
	return f
}

func TestRiskService_Assess(t *testing.T) {
	f := newRiskFixture()

	report, err := f.svc.Assess(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.WalletID)
	assert.Equal(t, types.ChainEthereum, report.Chain)
	assert.InDelta(t, 64.5, report.OverallScore, 1e-9)
	assert.Equal(t, types.RiskMedium, report.RiskLevel)
	assert.Equal(t, testNow, report.AssessedAt)
	assert.Len(t, report.RiskFactors, 2)
	assert.Len(t, report.Recommendations, 2)
}

func TestRiskService_CachesReportUntilInvalidated(t *testing.T) {
	f := newRiskFixture()
	ctx := context.Background()

	first, err := f.svc.Assess(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)

	// a new transaction would change the score, but the cached report wins
	f.txs.txs[1] = []models.Transaction{{WalletID: 1, Timestamp: testNow, Type: types.TxTypeReceive}}
	second, err := f.svc.Assess(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, 1, f.cache.sets)

	require.NoError(t, f.cache.InvalidateWallet(ctx, 1))
	third, err := f.svc.Assess(ctx, 1)
	require.NoError(t, err)
	assert.Greater(t, third.Scores.Activity, 0.0)
	assert.Equal(t, 2, f.cache.sets)
}

func TestRiskService_CacheReadFailureStillAssesses(t *testing.T) {
	f := newRiskFixture()
	f.cache.getErr = errors.New("connection refused")

	report, err := f.svc.Assess(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 64.5, report.OverallScore, 1e-9)
}

func TestRiskService_WithoutCache(t *testing.T) {
	f := newRiskFixture()
	f.svc.cache = nil

	_, err := f.svc.Assess(context.Background(), 1)
	require.NoError(t, err)
}

func TestRiskService_PriceHistoryFailureUsesFallback(t *testing.T) {
	f := newRiskFixture()
	f.prices.errs[10] = errors.New("clickhouse down")

	report, err := f.svc.Assess(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 65.0, report.Scores.Volatility, 1e-9)
}

func TestRiskService_UsesPriceHistory(t *testing.T) {
	f := newRiskFixture()
	f.prices.daily(10, testNow, 10, 10, 10, 10, 10, 10, 10)

	report, err := f.svc.Assess(context.Background(), 1)
	require.NoError(t, err)
	// flat history: 0% on the token, 10% on native
	assert.Equal(t, 100.0, report.Scores.Volatility)
}

func TestRiskService_OracleFailureDropsGasCostShare(t *testing.T) {
	f := newRiskFixture()
	wei := uint64(20_000_000_000)
	gas, usd := 0.01, 100.0
	f.txs.txs[1] = []models.Transaction{{
		WalletID:      1,
		Timestamp:     testNow.AddDate(0, 0, -1),
		Type:          types.TxTypeSend,
		GasPriceWei:   &wei,
		GasCostNative: &gas,
		USDValue:      &usd,
	}}

	withPrice, err := f.svc.Assess(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 60.0, withPrice.Scores.GasEfficiency)

	f.cache = newFakeCache()
	f.svc.cache = f.cache
	f.oracle.err = errors.New("no price")
	withoutPrice, err := f.svc.Assess(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, withoutPrice.Scores.GasEfficiency)
}

func TestRiskService_Errors(t *testing.T) {
	f := newRiskFixture()
	ctx := context.Background()

	_, err := f.svc.Assess(ctx, 404)
	assert.True(t, apperrors.IsNotFound(err))

	f.txs.err = errors.New("timeout")
	_, err = f.svc.Assess(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryDatabase, apperrors.Categorize(err).Category)
}
