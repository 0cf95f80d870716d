// Package jaccard scores whole-code-set overlap between coder pairs.
//
// Where classification agreement asks about one service at a time, Jaccard
// compares everything two coders assigned across a contract. It is the
// coarser signal: two coders can disagree service by service yet still cover
// similar code territory overall.
package jaccard

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/naics"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// Similarity is |A∩B| / |A∪B|. Two empty sets are identical, so they score
// 1; exactly one empty set scores 0.
func Similarity(a, b naics.CodeSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := len(a.Intersect(b))
	union := len(a.Union(b))
	return float64(inter) / float64(union)
}

// PairScore is one coder pair's similarity within a contract.
type PairScore struct {
	CoderA string  `json:"coder_a"`
	CoderB string  `json:"coder_b"`
	Score  float64 `json:"score"`
}

// ContractSummary aggregates pair similarities within one contract. NoData
// marks contracts coded by fewer than two coders, which have no pairs to
// compare.
type ContractSummary struct {
	Contract   string            `json:"contract"`
	Difficulty coding.Difficulty `json:"difficulty"`
	Round      int               `json:"round"`
	Mean       float64           `json:"mean"`
	Min        float64           `json:"min"`
	Pairs      []PairScore       `json:"pairs"`
	NoData     bool              `json:"no_data,omitempty"`
}

// Calculator computes Jaccard aggregates under one bootstrap configuration.
type Calculator struct {
	Estimator stats.Estimator
}

// NewCalculator returns a Calculator using the given estimator for interval
// aggregation.
func NewCalculator(est stats.Estimator) *Calculator {
	return &Calculator{Estimator: est}
}

// PerContract scores every coder pair in every contract, sorted by contract.
// Each coder's set is the union of all codes they assigned anywhere in the
// contract; coders whose rows were all missing contribute an empty set.
func (c *Calculator) PerContract(ds *coding.Dataset) []ContractSummary {
	var out []ContractSummary
	for _, contract := range ds.Contracts() {
		sets := ds.ContractCodeSets(contract)
		coders := make([]string, 0, len(sets))
		for coder := range sets {
			coders = append(coders, coder)
		}
		sort.Strings(coders)

		summary := ContractSummary{
			Contract:   contract,
			Difficulty: ds.ContractDifficulty(contract),
			Round:      ds.ContractRound(contract),
		}
		if len(coders) < 2 {
			summary.NoData = true
			out = append(out, summary)
			continue
		}

		var scores []float64
		for i := 0; i < len(coders); i++ {
			for j := i + 1; j < len(coders); j++ {
				score := Similarity(sets[coders[i]], sets[coders[j]])
				summary.Pairs = append(summary.Pairs, PairScore{
					CoderA: coders[i],
					CoderB: coders[j],
					Score:  score,
				})
				scores = append(scores, score)
			}
		}
		summary.Mean = stats.Mean(scores)
		summary.Min = stats.Min(scores)
		out = append(out, summary)
	}
	return out
}
