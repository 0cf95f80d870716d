package agreement

import (
	"github.com/intercoder-data/naics.report/internal/coding"
)

// CoderCount is one bucket of the identification distribution: how many
// services were identified by exactly Coders coders.
type CoderCount struct {
	Coders   int     `json:"coders"`
	Services int     `json:"services"`
	Pct      float64 `json:"pct"`
}

// RoundOverlap is the identification overlap distribution for one round.
// Counts always spans 1..N coders, ascending, even when a bucket is empty.
type RoundOverlap struct {
	Round         int          `json:"round"`
	TotalServices int          `json:"total_services"`
	Counts        []CoderCount `json:"counts"`
}

// Identification reports, per round, how many (contract, service) groups were
// identified by one coder, by two, and so on up to the full panel. Full
// overlap means every coder independently noticed the same service.
func Identification(ds *coding.Dataset, key ServiceKey) []RoundOverlap {
	panel := len(ds.Coders())
	if panel == 0 {
		return nil
	}
	groups := collectGroups(ds, key)

	byRound := make(map[int][]int)
	for _, g := range groups {
		byRound[g.Round] = append(byRound[g.Round], len(g.Coders))
	}

	var out []RoundOverlap
	for _, round := range ds.Rounds() {
		sizes := byRound[round]
		ro := RoundOverlap{Round: round, TotalServices: len(sizes)}
		tally := make(map[int]int)
		for _, n := range sizes {
			tally[n]++
		}
		for k := 1; k <= panel; k++ {
			c := CoderCount{Coders: k, Services: tally[k]}
			if ro.TotalServices > 0 {
				c.Pct = float64(tally[k]) / float64(ro.TotalServices) * 100
			}
			ro.Counts = append(ro.Counts, c)
		}
		out = append(out, ro)
	}
	return out
}
