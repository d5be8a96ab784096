package models

import (
	"time"

	"github.com/wallet-analytics/internal/types"
)

// ValueChange compares a current and a historical amount
type ValueChange struct {
	Current    float64 `json:"current"`
	Historical float64 `json:"historical"`
	Change     float64 `json:"change"`
	ChangePct  float64 `json:"change_pct"`
}

// ProfitLoss is a wallet's change against a historical baseline snapshot
type ProfitLoss struct {
	WalletID       int64         `json:"wallet_id"`
	Address        string        `json:"address"`
	Chain          types.ChainID `json:"chain"`
	Period         types.Period  `json:"period"`
	CurrentDate    time.Time     `json:"current_date"`
	HistoricalDate *time.Time    `json:"historical_date,omitempty"`
	Native         ValueChange   `json:"native"`
	USD            ValueChange   `json:"usd"`
	Tokens         []TokenChange `json:"tokens"`
}

// TokenChange is one token's balance and value change within a ProfitLoss
type TokenChange struct {
	ID                int64   `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	CurrentBalance    float64 `json:"current_balance"`
	HistoricalBalance float64 `json:"historical_balance"`
	BalanceChange     float64 `json:"balance_change"`
	BalanceChangePct  float64 `json:"balance_change_pct"`
	CurrentUSD        float64 `json:"current_usd"`
	HistoricalUSD     float64 `json:"historical_usd"`
	USDChange         float64 `json:"usd_change"`
	USDChangePct      float64 `json:"usd_change_pct"`
}

// Comparison ranks wallets by percentage USD change over one period
type Comparison struct {
	Period             types.Period        `json:"period"`
	Wallets            []WalletPerformance `json:"wallets"`
	CombinedProfitLoss float64             `json:"combined_profit_loss"`
	BestPerformer      *WalletPerformance  `json:"best_performer,omitempty"`
	WorstPerformer     *WalletPerformance  `json:"worst_performer,omitempty"`
	Failures           []ItemFailure       `json:"failures,omitempty"`
}

// WalletPerformance summarizes one wallet within a Comparison
type WalletPerformance struct {
	ID            int64         `json:"id"`
	Address       string        `json:"address"`
	Chain         types.ChainID `json:"chain"`
	CurrentUSD    float64       `json:"current_usd"`
	HistoricalUSD float64       `json:"historical_usd"`
	USDChange     float64       `json:"usd_change"`
	USDChangePct  float64       `json:"usd_change_pct"`
	TopTokens     []TokenChange `json:"top_tokens"`
}
