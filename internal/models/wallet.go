package models

import (
	"time"

	"github.com/wallet-analytics/internal/types"
)

// Wallet is a tracked on-chain account. Balance fields are refreshed by an
// external collaborator; the analytics engine only reads them.
type Wallet struct {
	ID            int64         `json:"id" db:"id"`
	UserID        *int64        `json:"user_id,omitempty" db:"user_id"`
	Address       string        `json:"address" db:"address"`
	Chain         types.ChainID `json:"chain" db:"chain"`
	NativeBalance float64       `json:"native_balance" db:"native_balance"`
	USDBalance    float64       `json:"usd_balance" db:"usd_balance"`
	IsActive      bool          `json:"is_active" db:"is_active"`
	LastUpdated   time.Time     `json:"last_updated" db:"last_updated"`
}

// ChainInfo is static metadata about a supported chain
type ChainInfo struct {
	Name           types.ChainID `json:"name" yaml:"name"`
	ChainID        int64         `json:"chain_id" yaml:"chain_id"`
	CurrencySymbol string        `json:"currency_symbol" yaml:"currency_symbol"`
	NativeUSDPrice float64       `json:"native_usd_price" yaml:"native_usd_price"`
}
