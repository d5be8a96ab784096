package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

func TestNewClickHouseDB(t *testing.T) {
	db := setupClickHouse(t)
	assert.NotNil(t, db.Conn())
	assert.NoError(t, db.Ping(testContext(t)))
}

func TestPriceHistoryRepository_GetRange(t *testing.T) {
	db := setupClickHouse(t)
	repo := NewPriceHistoryRepository(db)
	ctx := testContext(t)

	tokenID := time.Now().UnixNano() % 1_000_000_000
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	vol := 5000.0
	require.NoError(t, repo.InsertBatch(ctx, []models.PricePoint{
		{TokenID: tokenID, Timestamp: base.AddDate(0, 0, 2), Price: 1.2, Volume24h: &vol},
		{TokenID: tokenID, Timestamp: base, Price: 1.0},
		{TokenID: tokenID, Timestamp: base.AddDate(0, 0, 10), Price: 2.0},
	}))

	points, err := repo.GetRange(ctx, tokenID, base, base.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1.0, points[0].Price)
	assert.Nil(t, points[0].Volume24h)
	require.NotNil(t, points[1].Volume24h)
	assert.Equal(t, vol, *points[1].Volume24h)
}

func TestTransactionRepository_ListByWallet(t *testing.T) {
	db := setupClickHouse(t)
	repo := NewTransactionRepository(db)
	ctx := testContext(t)

	walletID := time.Now().UnixNano() % 1_000_000_000
	now := time.Now().UTC().Truncate(time.Millisecond)
	gasPrice := uint64(25_000_000_000)
	gasCost := 0.0005

	require.NoError(t, repo.InsertBatch(ctx, []models.Transaction{
		{WalletID: walletID, Chain: types.ChainEthereum, TxHash: "0xOLD", Timestamp: now.AddDate(0, 0, -40), Type: types.TxTypeSend, Status: "success"},
		{WalletID: walletID, Chain: types.ChainEthereum, TxHash: "0xAB", Timestamp: now.Add(-time.Hour),
			GasPriceWei: &gasPrice, GasCostNative: &gasCost, Type: types.TxTypeSend, Status: "success"},
	}))

	txs, err := repo.ListByWallet(ctx, walletID, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "0xab", txs[0].TxHash)
	assert.Equal(t, types.TxTypeSend, txs[0].Type)
	require.NotNil(t, txs[0].GasPriceWei)
	assert.Equal(t, gasPrice, *txs[0].GasPriceWei)
	assert.Nil(t, txs[0].TokenID)
}
