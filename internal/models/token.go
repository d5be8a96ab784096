package models

import (
	"time"

	"github.com/wallet-analytics/internal/types"
)

// Token is a wallet-scoped ERC-20 style holding
type Token struct {
	ID              int64         `json:"id" db:"id"`
	WalletID        int64         `json:"wallet_id" db:"wallet_id"`
	Chain           types.ChainID `json:"chain" db:"chain"`
	Address         string        `json:"address" db:"address"`
	Symbol          string        `json:"symbol" db:"symbol"`
	Name            string        `json:"name" db:"name"`
	Decimals        int           `json:"decimals" db:"decimals"`
	Balance         float64       `json:"balance" db:"balance"`
	USDValue        float64       `json:"usd_value" db:"usd_value"`
	CurrentPrice    float64       `json:"current_price" db:"current_price"`
	Price24hChange  float64       `json:"price_24h_change" db:"price_24h_change"`
	AllTimeHigh     *float64      `json:"all_time_high,omitempty" db:"all_time_high"`
	AllTimeHighDate *time.Time    `json:"all_time_high_date,omitempty" db:"all_time_high_date"`
	LastUpdated     time.Time     `json:"last_updated" db:"last_updated"`
}

// PricePoint is one entry of a token's append-only price history
type PricePoint struct {
	TokenID   int64     `json:"token_id" ch:"token_id"`
	Timestamp time.Time `json:"timestamp" ch:"timestamp"`
	Price     float64   `json:"price" ch:"price"`
	Volume24h *float64  `json:"volume_24h,omitempty" ch:"volume_24h"`
	MarketCap *float64  `json:"market_cap,omitempty" ch:"market_cap"`
}
