package models

import (
	"time"

	"github.com/wallet-analytics/internal/types"
)

// RiskScores holds the four sub-scores, each in [0,100]
type RiskScores struct {
	Diversification float64 `json:"diversification"`
	Activity        float64 `json:"activity"`
	Volatility      float64 `json:"volatility"`
	GasEfficiency   float64 `json:"gas_efficiency"`
}

// RiskFactor is a detected risk condition
type RiskFactor struct {
	Type        string         `json:"type"`
	Severity    types.Severity `json:"severity"`
	Description string         `json:"description"`
}

// Recommendation is a suggested action derived from the scores
type Recommendation struct {
	Type        string         `json:"type"`
	Priority    types.Priority `json:"priority"`
	Description string         `json:"description"`
}

// RiskReport is the result of a wallet risk assessment
type RiskReport struct {
	WalletID        int64            `json:"wallet_id"`
	Address         string           `json:"address"`
	Chain           types.ChainID    `json:"chain"`
	OverallScore    float64          `json:"overall_score"`
	RiskLevel       types.RiskLevel  `json:"risk_level"`
	Scores          RiskScores       `json:"scores"`
	RiskFactors     []RiskFactor     `json:"risk_factors"`
	Recommendations []Recommendation `json:"recommendations"`
	AssessedAt      time.Time        `json:"assessed_at"`
}
