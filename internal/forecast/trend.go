package forecast

import (
	"github.com/tradecast/tradecast/internal/models"
)

// EstimateTrend computes the ordinary least squares slope of price against
// elapsed days since the first observation. The result is price change per
// calendar day. Points must be ordered by timestamp; spacing may be irregular.
func EstimateTrend(points []models.PricePoint) (float64, error) {
	if len(points) < 2 {
		return 0, ErrInsufficientData
	}

	t0 := points[0].Timestamp
	n := float64(len(points))

	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		x := p.Timestamp.Sub(t0).Hours() / 24.0
		y := p.Price
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		// Every observation carries the same timestamp.
		return 0, ErrInsufficientVariance
	}

	return (n*sumXY - sumX*sumY) / denom, nil
}
