package forecast

import (
	"strings"
	"time"
)

// SeasonalityModel maps a commodity and forecast lead time to a small
// seasonal price adjustment expressed as a fraction of the latest price.
// Implementations are expected to stay within [-0.05, 0.03].
type SeasonalityModel interface {
	// Adjustment returns the seasonal fraction for the month horizonDays
	// ahead of now. Non-seasonal commodities return exactly 0.
	Adjustment(commodityID string, horizonDays int, now time.Time) float64

	// Agricultural reports whether the commodity belongs to the seasonal
	// (agricultural) classification.
	Agricultural(commodityID string) bool
}

// Harvest-cycle adjustments. The month buckets encode a Southern Hemisphere
// bias: harvest-season discount in Jan-Mar, off-season premium in Jun-Aug.
const (
	harvestDiscount  = -0.05
	offSeasonPremium = 0.03
)

// HarvestSeasonality is the built-in seasonality model. Commodities whose HS
// code starts with an agricultural chapter prefix get the harvest-cycle
// adjustment; everything else gets zero.
type HarvestSeasonality struct {
	agriPrefixes []string
	byMonth      map[time.Month]float64
}

// DefaultAgriculturalPrefixes covers HS chapters 01-24: live animals through
// prepared foodstuffs.
func DefaultAgriculturalPrefixes() []string {
	prefixes := make([]string, 0, 24)
	for ch := 1; ch <= 24; ch++ {
		prefixes = append(prefixes, chapterPrefix(ch))
	}
	return prefixes
}

func chapterPrefix(ch int) string {
	if ch < 10 {
		return "0" + string(rune('0'+ch))
	}
	return string(rune('0'+ch/10)) + string(rune('0'+ch%10))
}

// NewHarvestSeasonality builds the model with the given agricultural chapter
// prefixes. The month buckets are fixed.
func NewHarvestSeasonality(agriPrefixes []string) *HarvestSeasonality {
	return &HarvestSeasonality{
		agriPrefixes: append([]string(nil), agriPrefixes...),
		byMonth: map[time.Month]float64{
			time.January:  harvestDiscount,
			time.February: harvestDiscount,
			time.March:    harvestDiscount,
			time.June:     offSeasonPremium,
			time.July:     offSeasonPremium,
			time.August:   offSeasonPremium,
		},
	}
}

// Agricultural reports whether the commodity's HS code falls in an
// agricultural chapter.
func (s *HarvestSeasonality) Agricultural(commodityID string) bool {
	for _, p := range s.agriPrefixes {
		if strings.HasPrefix(commodityID, p) {
			return true
		}
	}
	return false
}

// Adjustment projects the current month forward by horizonDays/30 whole
// months, wraps modulo 12, and returns the bucket adjustment for that month.
func (s *HarvestSeasonality) Adjustment(commodityID string, horizonDays int, now time.Time) float64 {
	if !s.Agricultural(commodityID) {
		return 0
	}
	month := (int(now.Month()) - 1 + horizonDays/30) % 12
	return s.byMonth[time.Month(month+1)]
}
