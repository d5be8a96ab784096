package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wallet-analytics/internal/chain"
	"github.com/wallet-analytics/internal/models"
	"github.com/wallet-analytics/internal/types"
)

const (
	riskWindowDays         = 30
	minVolatilityPoints    = 7
	noTokenDiversification = 20.0
	noTokenVolatility      = 80.0
	noValueVolatility      = 50.0
	noSendsGasEfficiency   = 50.0
	stableVolatilityPct    = 1.0
	defaultVolatilityPct   = 15.0
	nativeVolatilityPct    = 10.0
)

// Sub-score weights of the overall score
const (
	weightDiversification = 0.4
	weightActivity        = 0.2
	weightVolatility      = 0.3
	weightGasEfficiency   = 0.1
)

// DiversificationScore maps the Herfindahl-Hirschman index of USD value
// shares, native balance included as one asset, onto [0,100]. A wallet with
// no tokens scores 20.
func DiversificationScore(nativeUSD float64, tokenUSD []float64) float64 {
	if len(tokenUSD) == 0 {
		return noTokenDiversification
	}

	total := nativeUSD
	for _, v := range tokenUSD {
		total += v
	}
	if total <= 0 {
		return 0
	}

	share := nativeUSD / total
	hhi := share * share * 10000
	for _, v := range tokenUSD {
		share = v / total
		hhi += share * share * 10000
	}

	minHHI := 10000 / float64(len(tokenUSD)+1)
	switch {
	case hhi >= 10000:
		return 0
	case hhi <= minHHI:
		return 100
	default:
		return clamp(100*(10000-hhi)/(10000-minHHI), 0, 100)
	}
}

// ActivityScore rates the last 30 days of transactions by distinct active
// UTC days and average transactions per day (5/day saturates).
func ActivityScore(txs []models.Transaction, now time.Time) float64 {
	if len(txs) == 0 {
		return 0
	}

	since := now.AddDate(0, 0, -riskWindowDays)
	days := make(map[string]struct{})
	count := 0
	for _, tx := range txs {
		if tx.Timestamp.Before(since) {
			continue
		}
		count++
		days[tx.Timestamp.UTC().Format(types.DateLayout)] = struct{}{}
	}

	daysScore := math.Min(100, float64(len(days))/riskWindowDays*100)
	frequencyScore := math.Min(100, float64(count)/riskWindowDays*20)
	return daysScore*0.6 + frequencyScore*0.4
}

// TokenVolatilityInput is one held token's value and recent prices, oldest first
type TokenVolatilityInput struct {
	Symbol   string
	USDValue float64
	Prices   []float64
}

// looksStable is the fallback heuristic for tokens without enough history
func looksStable(symbol string) bool {
	s := strings.ToLower(symbol)
	return strings.Contains(s, "usd") || strings.Contains(s, "dai")
}

// WeightedVolatility returns the USD-weighted average volatility in percent
// and the value it was weighted over.
func WeightedVolatility(nativeUSD float64, tokens []TokenVolatilityInput) (float64, float64) {
	var total, weighted float64
	for _, t := range tokens {
		if t.USDValue <= 0 {
			continue
		}
		total += t.USDValue

		if len(t.Prices) >= minVolatilityPoints {
			// a token whose history yields no returns adds value but no volatility
			if returns := periodReturns(t.Prices); len(returns) > 0 {
				weighted += populationStdDev(returns) * 100 * t.USDValue
			}
			continue
		}
		if looksStable(t.Symbol) {
			weighted += stableVolatilityPct * t.USDValue
		} else {
			weighted += defaultVolatilityPct * t.USDValue
		}
	}

	if nativeUSD > 0 {
		total += nativeUSD
		weighted += nativeVolatilityPct * nativeUSD
	}

	if total <= 0 {
		return 0, 0
	}
	return weighted / total, total
}

// VolatilityScore maps weighted volatility onto [0,100], higher meaning calmer
func VolatilityScore(nativeUSD float64, tokens []TokenVolatilityInput) float64 {
	if len(tokens) == 0 {
		return noTokenVolatility
	}

	v, total := WeightedVolatility(nativeUSD, tokens)
	if total <= 0 {
		return noValueVolatility
	}
	return volatilityBand(v)
}

func volatilityBand(v float64) float64 {
	switch {
	case v <= 5:
		return 100
	case v <= 15:
		return 80 - (v-5)*2
	case v <= 30:
		return 60 - (v-15)*2
	default:
		return math.Max(0, 30-(v-30)*0.5)
	}
}

// GasEfficiencyScore averages a gas price sub-score and a gas cost share
// sub-score over outgoing transactions. sends must already be limited to the
// scoring window. nativeUSDPrice of 0 disables the cost share.
func GasEfficiencyScore(c types.ChainID, sends []models.Transaction, nativeUSDPrice float64) float64 {
	if len(sends) == 0 {
		return noSendsGasEfficiency
	}

	var totalGwei, totalGasNative, totalValueUSD float64
	for _, tx := range sends {
		if tx.GasPriceWei != nil {
			totalGwei += chain.WeiToGwei(*tx.GasPriceWei)
		}
		if tx.GasCostNative != nil {
			totalGasNative += *tx.GasCostNative
		}
		if tx.USDValue != nil {
			totalValueUSD += *tx.USDValue
		}
	}
	avgGwei := totalGwei / float64(len(sends))

	var costPct float64
	if totalValueUSD > 0 {
		costPct = totalGasNative * nativeUSDPrice / totalValueUSD * 100
	}

	return gasPriceBand(c, avgGwei)*0.5 + gasCostBand(costPct)*0.5
}

func gasPriceBand(c types.ChainID, gwei float64) float64 {
	limits := [4]float64{10, 30, 50, 100}
	if c == types.ChainEthereum {
		limits = [4]float64{30, 60, 100, 150}
	}
	return stepBand(gwei, limits)
}

func gasCostBand(pct float64) float64 {
	return stepBand(pct, [4]float64{0.5, 1, 3, 10})
}

// stepBand scores 100/80/60/40 for values up to each limit, else 20
func stepBand(v float64, limits [4]float64) float64 {
	for i, limit := range limits {
		if v <= limit {
			return 100 - float64(i)*20
		}
	}
	return 20
}

// OverallScore combines the sub-scores with fixed weights
func OverallScore(s models.RiskScores) float64 {
	return s.Diversification*weightDiversification +
		s.Activity*weightActivity +
		s.Volatility*weightVolatility +
		s.GasEfficiency*weightGasEfficiency
}

func isStablecoin(symbol string) bool {
	s := strings.ToLower(symbol)
	for _, marker := range []string{"usd", "dai", "usdc", "usdt"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// Findings derives risk factors and recommendations from the scores and the
// wallet's holdings.
func Findings(scores models.RiskScores, nativeUSD float64, tokens []*models.Token) ([]models.RiskFactor, []models.Recommendation) {
	factors := []models.RiskFactor{}
	recs := []models.Recommendation{}

	factor := func(kind string, sev types.Severity, desc string) {
		factors = append(factors, models.RiskFactor{Type: kind, Severity: sev, Description: desc})
	}
	recommend := func(kind string, prio types.Priority, desc string) {
		recs = append(recs, models.Recommendation{Type: kind, Priority: prio, Description: desc})
	}

	switch {
	case scores.Diversification < 40:
		factor("diversification", types.SeverityHigh, "Portfolio lacks diversification")
		recommend("diversification", types.PriorityHigh, "Consider diversifying your portfolio across more assets to reduce risk")
	case scores.Diversification < 60:
		factor("diversification", types.SeverityMedium, "Portfolio moderately concentrated")
		recommend("diversification", types.PriorityMedium, "Consider adding more diverse assets to your portfolio")
	}

	total := nativeUSD
	for _, t := range tokens {
		total += t.USDValue
	}
	if total > 0 {
		for _, t := range tokens {
			concentration := t.USDValue / total * 100
			switch {
			case concentration > 50:
				factor("concentration", types.SeverityHigh, fmt.Sprintf("High concentration (%.1f%%) in %s", concentration, t.Symbol))
				recommend("rebalance", types.PriorityHigh, fmt.Sprintf("Consider reducing exposure to %s to decrease portfolio risk", t.Symbol))
			case concentration > 30:
				factor("concentration", types.SeverityMedium, fmt.Sprintf("Significant concentration (%.1f%%) in %s", concentration, t.Symbol))
			}
		}
	}

	if scores.Activity < 20 {
		factor("activity", types.SeverityLow, "Wallet shows low activity")
		recommend("activity", types.PriorityLow, "Consider implementing more regular trading or rebalancing")
	}

	switch {
	case scores.Volatility < 40:
		factor("volatility", types.SeverityHigh, "Portfolio has high volatility")
		recommend("volatility", types.PriorityHigh, "Consider adding more stable assets to reduce portfolio volatility")
	case scores.Volatility < 60:
		factor("volatility", types.SeverityMedium, "Portfolio has moderate volatility")
	}

	if scores.GasEfficiency < 40 {
		factor("gas", types.SeverityMedium, "High gas costs relative to transaction values")
		recommend("gas", types.PriorityMedium, "Consider optimizing transaction timing or batching transactions to reduce gas costs")
	}

	hasStable := false
	var stableUSD float64
	for _, t := range tokens {
		if isStablecoin(t.Symbol) {
			hasStable = true
			stableUSD += t.USDValue
		}
	}
	switch {
	case !hasStable && len(tokens) > 0:
		recommend("allocation", types.PriorityMedium, "Consider adding stablecoins to your portfolio for reduced volatility")
	case percentOf(stableUSD, total) < 10 && total > 1000:
		recommend("allocation", types.PriorityLow, "Consider increasing stablecoin allocation for better risk management")
	}

	return factors, recs
}
