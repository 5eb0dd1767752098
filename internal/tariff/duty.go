package tariff

import (
	"fmt"

	"github.com/tradecast/tradecast/internal/models"
)

// Merchandise processing fee schedule: a fraction of customs value bounded by
// a floor and a cap.
const (
	mpfRate = 0.003464
	mpfMin  = 31.67
	mpfMax  = 614.35
)

// DutyInput describes one import entry to assess.
type DutyInput struct {
	CustomsValue float64 // declared value in the rate's currency
	Quantity     float64 // in the rate's specific unit
	Rate         models.TariffRate
}

// DutyResult breaks an assessment into its components.
type DutyResult struct {
	AdValoremDuty float64 `json:"ad_valorem_duty"`
	SpecificDuty  float64 `json:"specific_duty"`
	ProcessingFee float64 `json:"processing_fee"`
	TotalDuty     float64 `json:"total_duty"`
	EffectiveRate float64 `json:"effective_rate"` // total as % of customs value
}

// ComputeDuty applies the rate schedule to an entry: ad valorem duty on the
// customs value, specific duty on the quantity, plus the processing fee.
func ComputeDuty(in DutyInput) (DutyResult, error) {
	if in.CustomsValue < 0 {
		return DutyResult{}, fmt.Errorf("customs value must be non-negative, got %.2f", in.CustomsValue)
	}
	if in.Quantity < 0 {
		return DutyResult{}, fmt.Errorf("quantity must be non-negative, got %.2f", in.Quantity)
	}

	adValorem := in.CustomsValue * in.Rate.AdValoremRate / 100.0
	specific := in.Quantity * in.Rate.SpecificAmount

	fee := in.CustomsValue * mpfRate
	if fee < mpfMin {
		fee = mpfMin
	}
	if fee > mpfMax {
		fee = mpfMax
	}

	result := DutyResult{
		AdValoremDuty: adValorem,
		SpecificDuty:  specific,
		ProcessingFee: fee,
		TotalDuty:     adValorem + specific + fee,
	}
	if in.CustomsValue > 0 {
		result.EffectiveRate = result.TotalDuty / in.CustomsValue * 100.0
	}
	return result, nil
}
