package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wallet-analytics/internal/errors"
	"github.com/wallet-analytics/internal/types"
)

func newTokenAnalyticsFixture() (*TokenAnalyticsService, *fakeTokenRepo, *fakePriceRepo) {
	link := newToken(10, 1, "LINK", 10, 120)
	link.CurrentPrice = 12
	link.Price24hChange = 1.5
	link.AllTimeHigh = ptr(20.0)
	link.AllTimeHighDate = ptr(day(2025, 12, 1))

	usdc := newToken(11, 1, "USDC", 100, 100)
	usdc.CurrentPrice = 1

	wallets := newFakeWalletRepo(newWallet(1, types.ChainEthereum, 0, 0))
	tokens := newFakeTokenRepo(
		link,
		usdc,
		newToken(12, 1, "DUST", 0, 0),
		newToken(13, 1, "NOPRICE", 5, 0),
	)

	prices := newFakePriceRepo()
	prices.daily(10, testNow, 8, 9, 10, 25, 10, 10, 10, 10, 10, 12)
	prices.daily(11, testNow, 1, 1)

	svc := NewTokenAnalyticsService(wallets, tokens, prices)
	svc.now = fixedClock
	return svc, tokens, prices
}

func TestTokenMetrics(t *testing.T) {
	svc, tokens, prices := newTokenAnalyticsFixture()
	for i := 3; i < 10; i++ {
		if i == 5 {
			continue
		}
		prices.points[10][i].Volume24h = ptr(float64(i))
	}

	m, err := svc.TokenMetrics(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, "LINK", m.Symbol)
	assert.Equal(t, 12.0, m.CurrentPrice)
	assert.Equal(t, 1.5, m.Price24hChange)
	assert.Equal(t, 10, m.DataPoints)

	require.NotNil(t, m.Price7dChange)
	assert.InDelta(t, 20.0, *m.Price7dChange, 1e-9)
	require.NotNil(t, m.Price30dChange)
	assert.InDelta(t, 50.0, *m.Price30dChange, 1e-9)
	require.NotNil(t, m.Volatility30d)
	assert.Greater(t, *m.Volatility30d, 0.0)
	require.NotNil(t, m.AvgVolume7d)
	assert.InDelta(t, 37.0/7, *m.AvgVolume7d, 1e-9)

	require.NotNil(t, m.AllTimeHigh)
	assert.Equal(t, 25.0, *m.AllTimeHigh)
	assert.True(t, m.AllTimeHighDate.Equal(testNow.AddDate(0, 0, -6)))
	require.NotNil(t, m.AllTimeHighChange)
	assert.InDelta(t, -52.0, *m.AllTimeHighChange, 1e-9)

	require.Len(t, tokens.athUpdates, 1)
	assert.Equal(t, int64(10), tokens.athUpdates[0].id)
	assert.Equal(t, 25.0, tokens.athUpdates[0].price)
}

func TestTokenMetrics_StoredHighIsKept(t *testing.T) {
	svc, tokens, _ := newTokenAnalyticsFixture()
	tokens.tokens[10].AllTimeHigh = ptr(30.0)

	m, err := svc.TokenMetrics(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 30.0, *m.AllTimeHigh)
	assert.True(t, m.AllTimeHighDate.Equal(day(2025, 12, 1)))
	assert.InDelta(t, -60.0, *m.AllTimeHighChange, 1e-9)
	assert.Empty(t, tokens.athUpdates)
}

func TestTokenMetrics_WithoutHistory(t *testing.T) {
	svc, _, prices := newTokenAnalyticsFixture()
	prices.errs[10] = errors.New("clickhouse down")

	for _, id := range []int64{10, 13} {
		m, err := svc.TokenMetrics(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 0, m.DataPoints)
		assert.Nil(t, m.Price7dChange)
		assert.Nil(t, m.Price30dChange)
		assert.Nil(t, m.Volatility30d)
		assert.Nil(t, m.AvgVolume7d)
		assert.Nil(t, m.AllTimeHighChange)
	}

	_, err := svc.TokenMetrics(context.Background(), 404)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTokenPerformance(t *testing.T) {
	svc, _, _ := newTokenAnalyticsFixture()

	report, err := svc.TokenPerformance(context.Background(), 1, types.Period7d)
	require.NoError(t, err)

	assert.Equal(t, types.Period7d, report.Period)
	require.Len(t, report.Tokens, 2, "zero balance and zero value tokens are skipped")
	assert.Equal(t, 220.0, report.TotalValue)
	assert.InDelta(t, 20.0, report.TotalValueChange, 1e-9)
	assert.InDelta(t, 10.0, report.TotalValueChangePct, 1e-9)

	link := report.Tokens[0]
	assert.Equal(t, "LINK", link.Symbol)
	require.NotNil(t, link.StartPrice)
	assert.Equal(t, 10.0, *link.StartPrice)
	assert.InDelta(t, 20.0, link.ValueChange, 1e-9)
	assert.InDelta(t, 20.0, link.ValueChangePct, 1e-9)
	assert.InDelta(t, 120.0/220*100, link.PercentageOfPortfolio, 1e-9)

	usdc := report.Tokens[1]
	assert.Equal(t, "USDC", usdc.Symbol)
	assert.InDelta(t, 0.0, usdc.ValueChange, 1e-9)
}

func TestTokenPerformance_AllPeriodHasNoBaseline(t *testing.T) {
	svc, _, _ := newTokenAnalyticsFixture()

	report, err := svc.TokenPerformance(context.Background(), 1, types.PeriodAll)
	require.NoError(t, err)

	assert.Equal(t, 220.0, report.TotalValue)
	assert.Equal(t, 0.0, report.TotalValueChange)
	assert.Equal(t, 0.0, report.TotalValueChangePct)
	for _, tok := range report.Tokens {
		assert.Nil(t, tok.StartPrice)
	}
}

func TestTokenPerformance_Errors(t *testing.T) {
	svc, _, _ := newTokenAnalyticsFixture()

	_, err := svc.TokenPerformance(context.Background(), 404, types.Period7d)
	assert.True(t, apperrors.IsNotFound(err))

	empty := NewTokenAnalyticsService(newFakeWalletRepo(newWallet(2, types.ChainPolygon, 0, 0)), newFakeTokenRepo(), newFakePriceRepo())
	report, err := empty.TokenPerformance(context.Background(), 2, types.Period30d)
	require.NoError(t, err)
	assert.NotNil(t, report.Tokens)
	assert.Empty(t, report.Tokens)
}
