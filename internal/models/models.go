package models

import "time"

// ImpactDirection classifies which way a risk factor is expected to push prices.
type ImpactDirection string

const (
	ImpactIncrease ImpactDirection = "increase"
	ImpactDecrease ImpactDirection = "decrease"
	ImpactUnknown  ImpactDirection = "unknown"
)

// PricePoint is a single observed price for a commodity. Points are immutable
// once recorded and are ordered by timestamp for all forecasting computations.
type PricePoint struct {
	CommodityID string    `json:"commodity_id" db:"commodity_id"`
	Timestamp   time.Time `json:"timestamp" db:"ts"`
	Price       float64   `json:"price" db:"price"`
	Currency    string    `json:"currency" db:"currency"`
	Unit        string    `json:"unit" db:"unit"`
}

// RiskFactor is a qualitative signal sourced from the risk registry: a weather
// event, supply disruption, or manually entered alert. Severity runs 1-5.
// ImpactPercentage and ImpactConfidence are optional 0-100 estimates.
type RiskFactor struct {
	ID               int64           `json:"id,omitempty" db:"id"`
	CommodityID      string          `json:"commodity_id" db:"commodity_id"`
	Title            string          `json:"title" db:"title"`
	Severity         int             `json:"severity" db:"severity"`
	ImpactDirection  ImpactDirection `json:"impact_direction" db:"impact_direction"`
	ImpactPercentage *float64        `json:"impact_percentage,omitempty" db:"impact_percentage"`
	ImpactConfidence *float64        `json:"impact_confidence,omitempty" db:"impact_confidence"`
	Description      string          `json:"description" db:"description"`
	Active           bool            `json:"active" db:"active"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty" db:"expires_at"`
}

// ConfidenceInterval is the symmetric price band around a point prediction.
// Lower is floored at zero, so the band is not guaranteed symmetric near zero.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// FactorExplanation is one human-readable contributor to a forecast.
// Impact lies in [-1, 1].
type FactorExplanation struct {
	Name        string  `json:"name"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

// Forecast is a probabilistic price estimate for one (commodity, horizon)
// pair. Forecasts are never mutated after creation; a recompute inserts a new
// row that supersedes the old one by created_at.
type Forecast struct {
	ID                 int64               `json:"id,omitempty" db:"id"`
	CommodityID        string              `json:"commodity_id" db:"commodity_id"`
	Horizon            string              `json:"horizon" db:"horizon"`
	TargetDate         time.Time           `json:"target_date" db:"target_date"`
	PredictedPrice     float64             `json:"predicted_price" db:"predicted_price"`
	ConfidenceInterval ConfidenceInterval  `json:"confidence_interval"`
	ConfidenceScore    int                 `json:"confidence_score" db:"confidence_score"`
	Factors            []FactorExplanation `json:"factors"`
	ModelVersion       string              `json:"model_version" db:"model_version"`
	Currency           string              `json:"currency" db:"currency"`
	Unit               string              `json:"unit" db:"unit"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
}

// HSCode is a Harmonized System classification entry. Chapter is the leading
// two digits of the code.
type HSCode struct {
	Code        string    `json:"code" db:"code"`
	Description string    `json:"description" db:"description"`
	Chapter     string    `json:"chapter" db:"chapter"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TariffRate is a duty schedule entry for an HS code and origin country.
// AdValoremRate is a percentage of customs value; SpecificAmount is charged
// per SpecificUnit of quantity.
type TariffRate struct {
	HSCode         string     `json:"hs_code" db:"hs_code"`
	OriginCountry  string     `json:"origin_country" db:"origin_country"`
	AdValoremRate  float64    `json:"ad_valorem_rate" db:"ad_valorem_rate"`
	SpecificAmount float64    `json:"specific_amount" db:"specific_amount"`
	SpecificUnit   string     `json:"specific_unit" db:"specific_unit"`
	EffectiveFrom  time.Time  `json:"effective_from" db:"effective_from"`
	EffectiveTo    *time.Time `json:"effective_to,omitempty" db:"effective_to"`
}
