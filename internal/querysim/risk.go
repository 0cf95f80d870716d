package querysim

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/coding"
)

// CategoryRisk weights a category's average miss rate by how often its
// queries actually hit, so a bad rate on a rarely-matched category does not
// outrank a moderate rate on a heavily-matched one.
type CategoryRisk struct {
	Category  string  `json:"category"`
	AvgMiss   float64 `json:"avg_miss_rate"`
	UnionHits int     `json:"union_hits"`
	Score     float64 `json:"risk_score"`
}

// CategoryRisks scores the categories, highest risk first. Score is the
// average miss rate in percent times union hits, divided by 100.
func CategoryRisks(categories []CategoryStat) []CategoryRisk {
	out := make([]CategoryRisk, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryRisk{
			Category:  c.Category,
			AvgMiss:   c.Avg,
			UnionHits: c.UnionHits,
			Score:     c.Avg * float64(c.UnionHits) / 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// HighRiskCell is a category and difficulty combination whose average miss
// rate crossed the reporting threshold.
type HighRiskCell struct {
	Category   string            `json:"category"`
	Difficulty coding.Difficulty `json:"difficulty"`
	MissRate   float64           `json:"miss_rate"`
	UnionHits  int               `json:"union_hits"`
}

// HighRisk flags category and difficulty combinations above thresholdPct,
// worst first. Only Medium and Hard tiers are scanned; Easy contracts sit at
// or near zero and flagging them adds noise without signal.
func (a *Analyzer) HighRisk(res *Results, thresholdPct float64) []HighRiskCell {
	var out []HighRiskCell
	for _, category := range res.Catalog.CategoryNames() {
		for _, diff := range []coding.Difficulty{coding.DifficultyMedium, coding.DifficultyHard} {
			c, d := category, diff
			rows := filterOutcomes(res.Outcomes, func(o Outcome) bool {
				return o.Category == c && o.Difficulty == d
			})
			stat, ok := a.rateRows(res.Coders, rows)
			if !ok {
				continue
			}
			if stat.avg > thresholdPct {
				out = append(out, HighRiskCell{
					Category:   c,
					Difficulty: d,
					MissRate:   stat.avg,
					UnionHits:  stat.unionHits,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MissRate > out[j].MissRate })
	return out
}
