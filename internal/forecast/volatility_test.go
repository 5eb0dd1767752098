package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateVolatility_ConstantSeriesIsZero(t *testing.T) {
	assert.Equal(t, 0.0, EstimateVolatility([]float64{10, 10, 10, 10}))
}

func TestEstimateVolatility_ShortSeriesUsesDefault(t *testing.T) {
	assert.Equal(t, defaultVolatility, EstimateVolatility(nil))
	assert.Equal(t, defaultVolatility, EstimateVolatility([]float64{42}))
}

func TestEstimateVolatility_HandComputed(t *testing.T) {
	// Returns are [0.2, -0.1], mean 0.05, population variance
	// (0.15^2 + 0.15^2)/2 = 0.0225, std dev 0.15.
	vol := EstimateVolatility([]float64{10, 12, 10.8})
	assert.InDelta(t, 0.15, vol, 1e-12)
}

func TestEstimateVolatility_TwoPointSeries(t *testing.T) {
	// A single return has zero dispersion around its own mean.
	assert.Equal(t, 0.0, EstimateVolatility([]float64{10, 11}))
}
