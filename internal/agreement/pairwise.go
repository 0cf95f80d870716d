package agreement

import (
	"fmt"
	"sort"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// PairSummary is the agreement rate between one coder pair across every
// overlapping service where both supplied valid codes.
type PairSummary struct {
	CoderA string         `json:"coder_a"`
	CoderB string         `json:"coder_b"`
	Rate   stats.Interval `json:"rate"`
	N      int            `json:"n"`
}

// Pair formats the pair label used in report tables.
func (p PairSummary) Pair() string {
	return fmt.Sprintf("%s-%s", p.CoderA, p.CoderB)
}

// Pairwise computes per-pair agreement over the overlapping services. For
// each group, every unordered pair of coded coders contributes one outcome:
// agreement when their code sets are equal. Pairs are returned sorted by
// coder names.
func (c *Calculator) Pairwise(ds *coding.Dataset, key ServiceKey) []PairSummary {
	type pairKey struct{ a, b string }
	outcomes := make(map[pairKey][]float64)

	for _, g := range c.Overlaps(ds, key) {
		coders := g.CodedCoders()
		for i := 0; i < len(coders); i++ {
			for j := i + 1; j < len(coders); j++ {
				k := pairKey{a: coders[i], b: coders[j]}
				agreed := 0.0
				if g.Codes[coders[i]].Equal(g.Codes[coders[j]]) {
					agreed = 1
				}
				outcomes[k] = append(outcomes[k], agreed)
			}
		}
	}

	keys := make([]pairKey, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	out := make([]PairSummary, 0, len(keys))
	for _, k := range keys {
		units := outcomes[k]
		ps := PairSummary{CoderA: k.a, CoderB: k.b, N: len(units)}
		if interval, err := c.Estimator.MeanInterval(units); err == nil {
			ps.Rate = interval
		}
		out = append(out, ps)
	}
	return out
}
