package engine

import (
	"sort"
	"time"

	"github.com/leavenlabs/leaven/internal/store"
)

// RankedMemory pairs a stored entry with its decay weight as of a specific
// query time. Degraded mirrors the DecayWeight fallback flag.
type RankedMemory struct {
	Entry    store.MemoryEntry `json:"entry"`
	Weight   float64           `json:"weight"`
	Degraded bool              `json:"degraded,omitempty"`
}

// RankMemories computes a decay weight for every entry and returns them
// sorted by descending weight. Ties keep the original insertion order.
// Weights are derived from "now" on every call and never cached.
func RankMemories(entries []store.MemoryEntry, now time.Time, halfLifeDays float64) []RankedMemory {
	ranked := make([]RankedMemory, len(entries))
	for i, e := range entries {
		w, degraded := DecayWeight(e.CreatedAt, now, halfLifeDays)
		ranked[i] = RankedMemory{Entry: e, Weight: w, Degraded: degraded}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})
	return ranked
}

// ContextOpts controls context assembly. Zero values mean "no floor" and
// "no cap"; a zero half-life falls back to the engine's configured one.
type ContextOpts struct {
	HalfLifeDays float64
	MinWeight    float64
	MaxEntries   int
}

// filterRanked applies the min-weight floor and entry cap to an already
// ranked slice.
func filterRanked(ranked []RankedMemory, opts ContextOpts) []RankedMemory {
	if opts.MinWeight > 0 {
		kept := ranked[:0]
		for _, r := range ranked {
			if r.Weight >= opts.MinWeight {
				kept = append(kept, r)
			}
		}
		ranked = kept
	}
	if opts.MaxEntries > 0 && len(ranked) > opts.MaxEntries {
		ranked = ranked[:opts.MaxEntries]
	}
	return ranked
}
