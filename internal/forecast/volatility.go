package forecast

import "math"

// defaultVolatility is returned when the series is too short to measure
// returns. Short series are tolerated here rather than rejected because the
// engine has already validated history sufficiency upstream.
const defaultVolatility = 0.1

// EstimateVolatility computes the population standard deviation of simple
// period-over-period returns r_i = (p_i - p_{i-1}) / p_{i-1}. Prices must be
// chronological and strictly positive; positivity is validated at the engine
// boundary so this stays a total function over valid input.
func EstimateVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return defaultVolatility
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance)
}
