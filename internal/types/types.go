// Package types provides common type definitions for the wallet analytics engine.
package types

import (
	"strings"
	"time"
)

// ChainID represents supported blockchain networks
type ChainID string

const (
	// ChainEthereum represents the Ethereum mainnet
	ChainEthereum ChainID = "ethereum"
	// ChainPolygon represents the Polygon network
	ChainPolygon ChainID = "polygon"
	// ChainArbitrum represents the Arbitrum network
	ChainArbitrum ChainID = "arbitrum"
	// ChainOptimism represents the Optimism network
	ChainOptimism ChainID = "optimism"
	// ChainBase represents the Base network
	ChainBase ChainID = "base"
	// ChainBNB represents the BNB Chain (BSC)
	ChainBNB ChainID = "bnb"
)

var chainAliases = map[string]ChainID{
	"eth":     ChainEthereum,
	"mainnet": ChainEthereum,
	"matic":   ChainPolygon,
	"arb":     ChainArbitrum,
	"op":      ChainOptimism,
	"bsc":     ChainBNB,
	"binance": ChainBNB,
}

// NormalizeChainID lowercases a chain tag and resolves common aliases.
// Unknown chains are returned lowercased rather than rejected.
func NormalizeChainID(chain string) ChainID {
	c := strings.ToLower(strings.TrimSpace(chain))
	if alias, ok := chainAliases[c]; ok {
		return alias
	}
	return ChainID(c)
}

// TransactionType represents the direction of a wallet transaction
type TransactionType string

const (
	// TxTypeSend is an outgoing transaction, the only kind that pays gas
	TxTypeSend TransactionType = "send"
	// TxTypeReceive is an incoming transaction
	TxTypeReceive TransactionType = "receive"
)

// Period selects the historical baseline window for profit/loss
type Period string

const (
	Period24h Period = "24h"
	Period7d  Period = "7d"
	Period30d Period = "30d"
	PeriodAll Period = "all"
)

// ParsePeriod maps a raw period string onto a Period. Unsupported values
// fall back to PeriodAll and report ok=false.
func ParsePeriod(raw string) (Period, bool) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case Period24h, Period7d, Period30d, PeriodAll:
		return p, true
	default:
		return PeriodAll, false
	}
}

// Cutoff returns the start of the period relative to now. PeriodAll has no cutoff.
func (p Period) Cutoff(now time.Time) (time.Time, bool) {
	switch p {
	case Period24h:
		return now.AddDate(0, 0, -1), true
	case Period7d:
		return now.AddDate(0, 0, -7), true
	case Period30d:
		return now.AddDate(0, 0, -30), true
	default:
		return time.Time{}, false
	}
}

// RiskLevel classifies an overall risk score
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// ClassifyRisk maps an overall score in [0,100] to a risk level.
// Band lower bounds are inclusive.
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 60:
		return RiskMedium
	case score >= 40:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// Severity of a detected risk factor
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Priority of a recommendation
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// CalendarDate truncates t to midnight UTC of its calendar day.
func CalendarDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return e.Message
}
