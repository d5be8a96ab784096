package models

import (
	"time"

	"github.com/wallet-analytics/internal/types"
)

// Transaction is a wallet-scoped transfer stored in ClickHouse. A nil TokenID
// marks a native-currency transfer.
type Transaction struct {
	WalletID      int64                 `json:"wallet_id" ch:"wallet_id"`
	TokenID       *int64                `json:"token_id,omitempty" ch:"token_id"`
	Chain         types.ChainID         `json:"chain" ch:"chain"`
	TxHash        string                `json:"tx_hash" ch:"tx_hash"`
	BlockNumber   uint64                `json:"block_number" ch:"block_number"`
	Timestamp     time.Time             `json:"timestamp" ch:"timestamp"`
	From          string                `json:"from_address" ch:"from_address"`
	To            string                `json:"to_address" ch:"to_address"`
	Amount        float64               `json:"amount" ch:"amount"`
	USDValue      *float64              `json:"usd_value,omitempty" ch:"usd_value"`
	GasUsed       *uint64               `json:"gas_used,omitempty" ch:"gas_used"`
	GasPriceWei   *uint64               `json:"gas_price,omitempty" ch:"gas_price_wei"`
	GasCostNative *float64              `json:"gas_cost_native,omitempty" ch:"gas_cost_native"`
	Type          types.TransactionType `json:"tx_type" ch:"tx_type"`
	Status        string                `json:"status" ch:"status"`
}
