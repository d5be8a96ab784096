package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

// TransactionRepository reads and appends wallet transactions in ClickHouse
type TransactionRepository struct {
	db *ClickHouseDB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *ClickHouseDB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByWallet returns a wallet's transactions at or after since, oldest first
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID int64, since time.Time) ([]models.Transaction, error) {
	query := `
		SELECT wallet_id, token_id, chain, tx_hash, block_number, timestamp,
			from_address, to_address, amount, usd_value,
			gas_used, gas_price_wei, gas_cost_native, tx_type, status
		FROM wallet_transactions
		WHERE wallet_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`

	rows, err := r.db.Conn().Query(ctx, query, uint64(walletID), since.UTC()) // #nosec G115 - ids are positive
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var walletIDRaw uint64
		var tokenIDRaw *uint64
		var chain, txType string

		if err := rows.Scan(
			&walletIDRaw, &tokenIDRaw, &chain, &tx.TxHash, &tx.BlockNumber, &tx.Timestamp,
			&tx.From, &tx.To, &tx.Amount, &tx.USDValue,
			&tx.GasUsed, &tx.GasPriceWei, &tx.GasCostNative, &txType, &tx.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.WalletID = int64(walletIDRaw) // #nosec G115
		if tokenIDRaw != nil {
			id := int64(*tokenIDRaw) // #nosec G115
			tx.TokenID = &id
		}
		tx.Chain = types.NormalizeChainID(chain)
		tx.Type = types.TransactionType(strings.ToLower(txType))
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// InsertBatch appends transactions
func (r *TransactionRepository) InsertBatch(ctx context.Context, txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	batch, err := r.db.Conn().PrepareBatch(ctx, `
		INSERT INTO wallet_transactions (
			wallet_id, token_id, chain, tx_hash, block_number, timestamp,
			from_address, to_address, amount, usd_value,
			gas_used, gas_price_wei, gas_cost_native, tx_type, status
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, tx := range txs {
		var tokenID *uint64
		if tx.TokenID != nil {
			id := uint64(*tx.TokenID) // #nosec G115
			tokenID = &id
		}
		if err := batch.Append(
			uint64(tx.WalletID), tokenID, string(tx.Chain), strings.ToLower(tx.TxHash), tx.BlockNumber, tx.Timestamp.UTC(), // #nosec G115
			strings.ToLower(tx.From), strings.ToLower(tx.To), tx.Amount, tx.USDValue,
			tx.GasUsed, tx.GasPriceWei, tx.GasCostNative, string(tx.Type), tx.Status,
		); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	return batch.Send()
}
