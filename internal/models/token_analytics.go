package models

import (
	"time"

	"github.com/wallet-analytics/internal/types"
)

// TokenMetrics are price statistics derived from a token's recent history.
// History-derived fields are nil when no price points exist.
type TokenMetrics struct {
	TokenID           int64      `json:"token_id"`
	Symbol            string     `json:"symbol"`
	CurrentPrice      float64    `json:"current_price"`
	Price24hChange    float64    `json:"price_24h_change"`
	Price7dChange     *float64   `json:"price_7d_change,omitempty"`
	Price30dChange    *float64   `json:"price_30d_change,omitempty"`
	Volatility30d     *float64   `json:"volatility_30d,omitempty"`
	AvgVolume7d       *float64   `json:"avg_volume_7d,omitempty"`
	AllTimeHigh       *float64   `json:"all_time_high,omitempty"`
	AllTimeHighDate   *time.Time `json:"all_time_high_date,omitempty"`
	AllTimeHighChange *float64   `json:"all_time_high_change,omitempty"`
	DataPoints        int        `json:"data_points"`
}

// TokenPerformanceReport is the value change of a wallet's tokens over a period
type TokenPerformanceReport struct {
	WalletID            int64              `json:"wallet_id"`
	Period              types.Period       `json:"period"`
	TotalValue          float64            `json:"total_value"`
	TotalValueChange    float64            `json:"total_value_change"`
	TotalValueChangePct float64            `json:"total_value_change_pct"`
	Tokens              []TokenPerformance `json:"tokens"`
}

// TokenPerformance is one token's line in a TokenPerformanceReport
type TokenPerformance struct {
	ID                    int64    `json:"id"`
	Symbol                string   `json:"symbol"`
	Name                  string   `json:"name"`
	Balance               float64  `json:"balance"`
	Price                 float64  `json:"price"`
	Price24hChange        float64  `json:"price_24h_change"`
	Value                 float64  `json:"value"`
	StartPrice            *float64 `json:"start_price,omitempty"`
	ValueChange           float64  `json:"value_change"`
	ValueChangePct        float64  `json:"value_change_pct"`
	PercentageOfPortfolio float64  `json:"percentage_of_portfolio"`
}
