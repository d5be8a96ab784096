package service

import "math"

// percentChange returns the change from historical to current in percent,
// or 0 when historical is not positive.
func percentChange(current, historical float64) float64 {
	if historical <= 0 {
		return 0
	}
	return (current - historical) / historical * 100
}

// percentOf returns part as a percentage of total, or 0 when total is not positive.
func percentOf(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// periodReturns computes point-to-point returns, skipping points whose
// previous price is not positive.
func periodReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] > 0 {
			returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
		}
	}
	return returns
}

// populationStdDev is the standard deviation with divisor n
func populationStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(xs)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
