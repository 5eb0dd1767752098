package forecast

import (
	"github.com/tradecast/tradecast/internal/models"
)

// defaultImpactConfidence is assumed when a risk factor carries no confidence
// estimate.
const defaultImpactConfidence = 50.0

// AggregateRiskImpact blends qualitative risk factors into one signed
// fraction of expected price impact: the confidence-weighted average of each
// factor's directional impact percentage. An empty list or zero total weight
// yields 0. The average is clamped to [-1, 1]; individual factor inputs are
// bounded percentages, so the clamp only bites on malformed registry data.
func AggregateRiskImpact(factors []models.RiskFactor) float64 {
	if len(factors) == 0 {
		return 0
	}

	var weighted, totalWeight float64
	for _, f := range factors {
		var pct float64
		if f.ImpactPercentage != nil {
			pct = *f.ImpactPercentage
		}
		conf := defaultImpactConfidence
		if f.ImpactConfidence != nil {
			conf = *f.ImpactConfidence
		}

		impact := pct / 100.0
		if f.ImpactDirection != models.ImpactIncrease {
			impact = -impact
		}

		weight := conf / 100.0
		weighted += impact * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	return clamp(weighted/totalWeight, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
