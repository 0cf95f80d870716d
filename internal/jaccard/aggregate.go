package jaccard

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// DifficultyMean is the mean of per-contract Jaccard means within one
// difficulty tier.
type DifficultyMean struct {
	Difficulty coding.Difficulty `json:"difficulty"`
	Mean       stats.Interval    `json:"mean"`
	Contracts  int               `json:"contracts"`
	NoData     bool              `json:"no_data,omitempty"`
}

// RoundMean is the mean of per-contract Jaccard means within one round.
type RoundMean struct {
	Round     int            `json:"round"`
	Mean      stats.Interval `json:"mean"`
	Contracts int            `json:"contracts"`
	NoData    bool           `json:"no_data,omitempty"`
}

// ByDifficulty aggregates contract summaries per difficulty tier. The
// observation unit is one contract's mean score, so the interval reflects
// contract-to-contract spread.
func (c *Calculator) ByDifficulty(summaries []ContractSummary) []DifficultyMean {
	units := make(map[coding.Difficulty][]float64)
	for _, s := range summaries {
		if s.NoData {
			continue
		}
		units[s.Difficulty] = append(units[s.Difficulty], s.Mean)
	}

	var out []DifficultyMean
	for _, diff := range coding.Difficulties {
		dm := DifficultyMean{Difficulty: diff, Contracts: len(units[diff])}
		interval, err := c.Estimator.MeanInterval(units[diff])
		if err != nil {
			dm.NoData = true
		} else {
			dm.Mean = interval
		}
		out = append(out, dm)
	}
	return out
}

// ByRound aggregates contract summaries per round, ascending.
func (c *Calculator) ByRound(summaries []ContractSummary) []RoundMean {
	units := make(map[int][]float64)
	for _, s := range summaries {
		if s.NoData {
			continue
		}
		units[s.Round] = append(units[s.Round], s.Mean)
	}
	rounds := make([]int, 0, len(units))
	for round := range units {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)

	var out []RoundMean
	for _, round := range rounds {
		rm := RoundMean{Round: round, Contracts: len(units[round])}
		interval, err := c.Estimator.MeanInterval(units[round])
		if err != nil {
			rm.NoData = true
		} else {
			rm.Mean = interval
		}
		out = append(out, rm)
	}
	return out
}

// PairMean is one coder pair's mean similarity across all contracts where
// both appear.
type PairMean struct {
	CoderA    string         `json:"coder_a"`
	CoderB    string         `json:"coder_b"`
	Mean      stats.Interval `json:"mean"`
	Contracts int            `json:"contracts"`
}

// PairMeans aggregates each coder pair's scores across contracts, sorted by
// coder names.
func (c *Calculator) PairMeans(summaries []ContractSummary) []PairMean {
	type pairKey struct{ a, b string }
	units := make(map[pairKey][]float64)
	for _, s := range summaries {
		for _, p := range s.Pairs {
			k := pairKey{a: p.CoderA, b: p.CoderB}
			units[k] = append(units[k], p.Score)
		}
	}

	keys := make([]pairKey, 0, len(units))
	for k := range units {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	out := make([]PairMean, 0, len(keys))
	for _, k := range keys {
		pm := PairMean{CoderA: k.a, CoderB: k.b, Contracts: len(units[k])}
		if interval, err := c.Estimator.MeanInterval(units[k]); err == nil {
			pm.Mean = interval
		}
		out = append(out, pm)
	}
	return out
}
