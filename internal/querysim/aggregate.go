package querysim

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// Analyzer aggregates simulation results into the reporting tables. Rates
// are expressed in percent throughout, matching the report surface.
type Analyzer struct {
	Estimator stats.Estimator
}

// NewAnalyzer returns an Analyzer using the given estimator.
func NewAnalyzer(est stats.Estimator) *Analyzer {
	return &Analyzer{Estimator: est}
}

// Overview is the headline simulation accounting.
type Overview struct {
	Scenarios   int     `json:"scenarios"`
	Contracts   int     `json:"contracts"`
	Rows        int     `json:"rows"`
	UnionHits   int     `json:"union_hits"`
	UnionHitPct float64 `json:"union_hit_pct"`
}

// Overview tallies the simulation as a whole.
func (a *Analyzer) Overview(res *Results) Overview {
	o := Overview{Scenarios: res.Catalog.NumScenarios(), Rows: len(res.Outcomes)}
	contracts := make(map[string]bool)
	for _, out := range res.Outcomes {
		contracts[out.Contract] = true
		if out.UnionHit {
			o.UnionHits++
		}
	}
	o.Contracts = len(contracts)
	if o.Rows > 0 {
		o.UnionHitPct = float64(o.UnionHits) / float64(o.Rows) * 100
	}
	return o
}

// CoderStat is one coder's overall retrieval performance. MissRate is
// percent of all union-hit rows this coder individually failed; CI bounds
// are percent as well.
type CoderStat struct {
	Coder    string         `json:"coder"`
	Hits     int            `json:"hits"`
	Misses   int            `json:"misses"`
	MissRate float64        `json:"miss_rate"`
	CI       stats.Interval `json:"ci"`
	NoData   bool           `json:"no_data,omitempty"`
}

// PerCoder computes each coder's overall hit and miss tallies, sorted by
// coder name.
func (a *Analyzer) PerCoder(res *Results) []CoderStat {
	unionHits := 0
	for _, o := range res.Outcomes {
		if o.UnionHit {
			unionHits++
		}
	}

	out := make([]CoderStat, 0, len(res.Coders))
	for _, coder := range res.Coders {
		cs := CoderStat{Coder: coder}
		var indicators []float64
		for _, o := range res.Outcomes {
			if _, present := o.Hits[coder]; !present {
				continue
			}
			if o.Hits[coder] {
				cs.Hits++
			}
			if o.Misses[coder] {
				cs.Misses++
			}
			if o.UnionHit {
				if o.Misses[coder] {
					indicators = append(indicators, 1)
				} else {
					indicators = append(indicators, 0)
				}
			}
		}
		if unionHits > 0 {
			cs.MissRate = float64(cs.Misses) / float64(unionHits) * 100
		}
		if interval, err := a.Estimator.MeanInterval(indicators); err == nil {
			cs.CI = interval.Scale(100)
		} else {
			cs.NoData = true
		}
		out = append(out, cs)
	}
	return out
}

// AvgMissRate is the mean of the per-coder overall miss rates, in percent.
func AvgMissRate(coders []CoderStat) float64 {
	rates := make([]float64, len(coders))
	for i, c := range coders {
		rates[i] = c.MissRate
	}
	return stats.Mean(rates)
}

// CategoryStat aggregates one query category. PerCoder maps coder to miss
// rate percent within the category; the summary columns are computed over
// those per-coder rates. CI is a pooled bootstrap over every coder's
// union-hit miss indicators in the category.
type CategoryStat struct {
	Category  string             `json:"category"`
	NQueries  int                `json:"n_queries"`
	UnionHits int                `json:"union_hits"`
	PerCoder  map[string]float64 `json:"per_coder"`
	Avg       float64            `json:"avg_miss_rate"`
	Max       float64            `json:"max_miss_rate"`
	Min       float64            `json:"min_miss_rate"`
	Range     float64            `json:"miss_rate_range"`
	CI        stats.Interval     `json:"ci"`
}

// ByCategory aggregates per query category, worst average first. Categories
// whose scenarios never union-hit are omitted: with nothing findable there
// is no denominator to rate coders against.
func (a *Analyzer) ByCategory(res *Results) []CategoryStat {
	var out []CategoryStat
	for _, category := range res.Catalog.CategoryNames() {
		rows := filterOutcomes(res.Outcomes, func(o Outcome) bool { return o.Category == category })
		stat, ok := a.rateRows(res.Coders, rows)
		if !ok {
			continue
		}
		cs := CategoryStat{
			Category:  category,
			NQueries:  res.Catalog.ScenarioCount(category),
			UnionHits: stat.unionHits,
			PerCoder:  stat.perCoder,
			Avg:       stat.avg,
			Max:       stat.max,
			Min:       stat.min,
			Range:     stat.max - stat.min,
			CI:        stat.ci,
		}
		out = append(out, cs)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Avg > out[j].Avg })
	return out
}

// DifficultyStat aggregates one contract difficulty tier.
type DifficultyStat struct {
	Difficulty coding.Difficulty  `json:"difficulty"`
	NContracts int                `json:"n_contracts"`
	UnionHits  int                `json:"union_hits"`
	PerCoder   map[string]float64 `json:"per_coder"`
	Avg        float64            `json:"avg_miss_rate"`
	CI         stats.Interval     `json:"ci"`
}

// ByDifficulty aggregates per difficulty tier in Easy, Medium, Hard order,
// omitting tiers with no union hits.
func (a *Analyzer) ByDifficulty(res *Results) []DifficultyStat {
	var out []DifficultyStat
	for _, diff := range coding.Difficulties {
		d := diff
		rows := filterOutcomes(res.Outcomes, func(o Outcome) bool { return o.Difficulty == d })
		stat, ok := a.rateRows(res.Coders, rows)
		if !ok {
			continue
		}
		contracts := make(map[string]bool)
		for _, o := range rows {
			contracts[o.Contract] = true
		}
		out = append(out, DifficultyStat{
			Difficulty: d,
			NContracts: len(contracts),
			UnionHits:  stat.unionHits,
			PerCoder:   stat.perCoder,
			Avg:        stat.avg,
			CI:         stat.ci,
		})
	}
	return out
}

// CategoryDifficultyStat is one cell of the category by difficulty grid.
type CategoryDifficultyStat struct {
	Category   string            `json:"category"`
	Difficulty coding.Difficulty `json:"difficulty"`
	UnionHits  int               `json:"union_hits"`
	Avg        float64           `json:"avg_miss_rate"`
}

// CategoryByDifficulty crosses category with difficulty, in catalog and tier
// order, omitting cells with no union hits.
func (a *Analyzer) CategoryByDifficulty(res *Results) []CategoryDifficultyStat {
	var out []CategoryDifficultyStat
	for _, category := range res.Catalog.CategoryNames() {
		for _, diff := range coding.Difficulties {
			c, d := category, diff
			rows := filterOutcomes(res.Outcomes, func(o Outcome) bool {
				return o.Category == c && o.Difficulty == d
			})
			stat, ok := a.rateRows(res.Coders, rows)
			if !ok {
				continue
			}
			out = append(out, CategoryDifficultyStat{
				Category:   c,
				Difficulty: d,
				UnionHits:  stat.unionHits,
				Avg:        stat.avg,
			})
		}
	}
	return out
}

// CoderCategoryStat is one cell of the coder by category grid.
type CoderCategoryStat struct {
	Category  string  `json:"category"`
	Coder     string  `json:"coder"`
	UnionHits int     `json:"union_hits"`
	Misses    int     `json:"misses"`
	MissRate  float64 `json:"miss_rate"`
}

// CoderByCategory crosses each coder with each category, in catalog then
// coder order, omitting categories with no union hits.
func (a *Analyzer) CoderByCategory(res *Results) []CoderCategoryStat {
	var out []CoderCategoryStat
	for _, category := range res.Catalog.CategoryNames() {
		c := category
		rows := filterOutcomes(res.Outcomes, func(o Outcome) bool { return o.Category == c })
		unionHits := 0
		for _, o := range rows {
			if o.UnionHit {
				unionHits++
			}
		}
		if unionHits == 0 {
			continue
		}
		for _, coder := range res.Coders {
			misses := 0
			for _, o := range rows {
				if o.Misses[coder] {
					misses++
				}
			}
			out = append(out, CoderCategoryStat{
				Category:  c,
				Coder:     coder,
				UnionHits: unionHits,
				Misses:    misses,
				MissRate:  float64(misses) / float64(unionHits) * 100,
			})
		}
	}
	return out
}

// WorstPerformer names the weakest coder in one category.
type WorstPerformer struct {
	Category string  `json:"category"`
	Coder    string  `json:"coder"`
	MissRate float64 `json:"miss_rate"`
}

// WorstPerformers picks, per category, the coder with the highest nonzero
// miss rate. Ties go to the first coder in sort order. Categories where
// every coder scores zero produce no row.
func WorstPerformers(cells []CoderCategoryStat) []WorstPerformer {
	order := []string{}
	best := make(map[string]WorstPerformer)
	for _, cell := range cells {
		w, seen := best[cell.Category]
		if !seen {
			order = append(order, cell.Category)
		}
		if !seen || cell.MissRate > w.MissRate {
			best[cell.Category] = WorstPerformer{
				Category: cell.Category,
				Coder:    cell.Coder,
				MissRate: cell.MissRate,
			}
		}
	}
	var out []WorstPerformer
	for _, category := range order {
		if w := best[category]; w.MissRate > 0 {
			out = append(out, w)
		}
	}
	return out
}

// ContractStat aggregates one contract across all scenarios. Spread is the
// population standard deviation of the per-coder rates, showing how unevenly
// the coders covered the contract.
type ContractStat struct {
	Contract   string             `json:"contract"`
	Difficulty coding.Difficulty  `json:"difficulty"`
	UnionHits  int                `json:"union_hits"`
	PerCoder   map[string]float64 `json:"per_coder"`
	Avg        float64            `json:"avg_miss_rate"`
	Max        float64            `json:"max_miss_rate"`
	Spread     float64            `json:"coder_spread"`
}

// ByContract aggregates per contract, worst average first, omitting
// contracts with no union hits.
func (a *Analyzer) ByContract(res *Results) []ContractStat {
	contracts := []string{}
	seen := make(map[string]bool)
	for _, o := range res.Outcomes {
		if !seen[o.Contract] {
			seen[o.Contract] = true
			contracts = append(contracts, o.Contract)
		}
	}

	var out []ContractStat
	for _, contract := range contracts {
		ct := contract
		rows := filterOutcomes(res.Outcomes, func(o Outcome) bool { return o.Contract == ct })
		unionHits := 0
		for _, o := range rows {
			if o.UnionHit {
				unionHits++
			}
		}
		if unionHits == 0 {
			continue
		}

		perCoder := make(map[string]float64)
		var rates []float64
		for _, coder := range res.Coders {
			if _, present := rows[0].Hits[coder]; !present {
				continue
			}
			misses := 0
			for _, o := range rows {
				if o.Misses[coder] {
					misses++
				}
			}
			rate := float64(misses) / float64(unionHits) * 100
			perCoder[coder] = rate
			rates = append(rates, rate)
		}

		out = append(out, ContractStat{
			Contract:   ct,
			Difficulty: rows[0].Difficulty,
			UnionHits:  unionHits,
			PerCoder:   perCoder,
			Avg:        stats.Mean(rates),
			Max:        stats.Max(rates),
			Spread:     stats.PopStdDev(rates),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Avg > out[j].Avg })
	return out
}

// ScenarioStat aggregates one scenario across all contracts.
type ScenarioStat struct {
	Scenario  string  `json:"scenario"`
	Category  string  `json:"category"`
	UnionHits int     `json:"union_hits"`
	Avg       float64 `json:"avg_miss_rate"`
	Max       float64 `json:"max_miss_rate"`
}

// ByScenario aggregates per scenario, worst average first, omitting
// scenarios that never union-hit.
func (a *Analyzer) ByScenario(res *Results) []ScenarioStat {
	var out []ScenarioStat
	for _, e := range res.Catalog.Entries() {
		name := e.Scenario.Name
		rows := filterOutcomes(res.Outcomes, func(o Outcome) bool { return o.Scenario == name })
		stat, ok := a.rateRows(res.Coders, rows)
		if !ok {
			continue
		}
		out = append(out, ScenarioStat{
			Scenario:  name,
			Category:  e.Category,
			UnionHits: stat.unionHits,
			Avg:       stat.avg,
			Max:       stat.max,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Avg > out[j].Avg })
	return out
}

// rowRates is the shared per-grouping computation: per-coder miss rates over
// the grouping's union hits, their summary moments, and the pooled CI.
type rowRates struct {
	unionHits int
	perCoder  map[string]float64
	avg, max  float64
	min       float64
	ci        stats.Interval
}

// rateRows computes rowRates for a slice of outcome rows. ok is false when
// the rows contain no union hits, which leaves nothing to rate against.
func (a *Analyzer) rateRows(coders []string, rows []Outcome) (rowRates, bool) {
	unionHits := 0
	for _, o := range rows {
		if o.UnionHit {
			unionHits++
		}
	}
	if unionHits == 0 {
		return rowRates{}, false
	}

	r := rowRates{unionHits: unionHits, perCoder: make(map[string]float64)}
	var rates []float64
	var pooled []float64
	for _, coder := range coders {
		misses := 0
		participated := false
		for _, o := range rows {
			if _, present := o.Hits[coder]; !present {
				continue
			}
			participated = true
			if o.Misses[coder] {
				misses++
			}
			if o.UnionHit {
				if o.Misses[coder] {
					pooled = append(pooled, 1)
				} else {
					pooled = append(pooled, 0)
				}
			}
		}
		if !participated {
			continue
		}
		rate := float64(misses) / float64(unionHits) * 100
		r.perCoder[coder] = rate
		rates = append(rates, rate)
	}

	r.avg = stats.Mean(rates)
	r.max = stats.Max(rates)
	r.min = stats.Min(rates)
	if interval, err := a.Estimator.MeanInterval(pooled); err == nil {
		r.ci = interval.Scale(100)
	}
	return r, true
}

func filterOutcomes(outcomes []Outcome, keep func(Outcome) bool) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
