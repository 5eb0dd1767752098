package forecast

import "time"

// Recognized forecast horizon tokens.
const (
	HorizonDay      = "1d"
	HorizonWeek     = "1w"
	HorizonMonth    = "1m"
	HorizonQuarter  = "3m"
	HorizonHalfYear = "6m"
	HorizonYear     = "1y"
)

// HorizonTable maps horizon tokens to lead times and cache-staleness
// thresholds. Tables are built once at startup and passed by reference into
// the engine; they are never mutated afterwards.
type HorizonTable struct {
	days             map[string]int
	staleness        map[string]time.Duration
	defaultDays      int
	defaultStaleness time.Duration
}

// DefaultHorizonTable returns the standard horizon configuration: six buckets
// from one day to one year, with shorter horizons going stale faster.
func DefaultHorizonTable() *HorizonTable {
	return &HorizonTable{
		days: map[string]int{
			HorizonDay:      1,
			HorizonWeek:     7,
			HorizonMonth:    30,
			HorizonQuarter:  90,
			HorizonHalfYear: 180,
			HorizonYear:     365,
		},
		staleness: map[string]time.Duration{
			HorizonDay:      6 * time.Hour,
			HorizonWeek:     12 * time.Hour,
			HorizonMonth:    24 * time.Hour,
			HorizonQuarter:  48 * time.Hour,
			HorizonHalfYear: 48 * time.Hour,
			HorizonYear:     72 * time.Hour,
		},
		defaultDays:      30,
		defaultStaleness: 24 * time.Hour,
	}
}

// Days returns the lead time in calendar days for a horizon token.
// Unrecognized tokens fall back to the 30-day bucket; that fallback is a
// documented compatibility behavior, not an error.
func (t *HorizonTable) Days(horizon string) int {
	if d, ok := t.days[horizon]; ok {
		return d
	}
	return t.defaultDays
}

// Staleness returns how old a cached forecast for this horizon may be before
// it must be recomputed.
func (t *HorizonTable) Staleness(horizon string) time.Duration {
	if d, ok := t.staleness[horizon]; ok {
		return d
	}
	return t.defaultStaleness
}

// Stale reports whether a forecast created at createdAt should be recomputed
// as of now. Callers treat a missing forecast as always stale.
func (t *HorizonTable) Stale(horizon string, createdAt, now time.Time) bool {
	return now.Sub(createdAt) > t.Staleness(horizon)
}

// Tokens returns the recognized horizon tokens in lead-time order.
func (t *HorizonTable) Tokens() []string {
	return []string{HorizonDay, HorizonWeek, HorizonMonth, HorizonQuarter, HorizonHalfYear, HorizonYear}
}
