package engine

import (
	"math"
	"time"
)

// DefaultHalfLifeDays is the decay half-life used when callers don't
// override it.
const DefaultHalfLifeDays = 1.0

const secondsPerDay = 86400.0

// DecayWeight maps a memory's creation time to a relevance weight in [0, 1]:
// 1.0 at creation, 0.5 after one half-life, approaching 0 over time. Age is
// measured in fractional days, so a memory created hours ago decays
// measurably.
//
// The second return reports a degraded result: an unparsable timestamp or a
// non-positive half-life falls back to 1.0 (unknown-age memories are treated
// as maximally fresh rather than failing the caller). A negative age — clock
// skew or a future-dated entry — also yields 1.0, but is not degraded: the
// weight simply never exceeds the undecayed maximum.
func DecayWeight(createdAt string, now time.Time, halfLifeDays float64) (float64, bool) {
	if halfLifeDays <= 0 {
		return 1.0, true
	}

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return 1.0, true
	}

	ageDays := now.Sub(created).Seconds() / secondsPerDay
	if ageDays < 0 {
		return 1.0, false
	}

	w := math.Pow(0.5, ageDays/halfLifeDays)
	return math.Min(1.0, math.Max(0.0, w)), false
}
