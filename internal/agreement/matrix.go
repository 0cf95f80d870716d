package agreement

import (
	"fmt"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// Summary is the classification agreement measurement for one segment of the
// data. The headline Rate counts only unanimous groups; MajorityShare adds
// groups where a strict majority of coders matched.
type Summary struct {
	Segment       string         `json:"segment"`
	Rate          stats.Interval `json:"rate"`
	N             int            `json:"n"`
	Agreements    int            `json:"agreements"`
	Majority      int            `json:"majority"`
	MajorityShare float64        `json:"majority_share"`
	NoData        bool           `json:"no_data,omitempty"`
}

// Rate computes the agreement summary over the comparable groups in the
// slice. A segment with zero comparable groups reports NoData rather than a
// zero rate.
func (c *Calculator) Rate(segment string, groups []Group) Summary {
	var indicators []float64
	agreements := 0
	majority := 0
	for i := range groups {
		outcome, ok := groups[i].Outcome()
		if !ok {
			continue
		}
		switch outcome {
		case OutcomeUnanimous:
			agreements++
			indicators = append(indicators, 1)
		case OutcomeMajority:
			majority++
			indicators = append(indicators, 0)
		default:
			indicators = append(indicators, 0)
		}
	}

	s := Summary{Segment: segment, N: len(indicators), Agreements: agreements, Majority: majority}
	if s.N == 0 {
		s.NoData = true
		return s
	}
	interval, err := c.Estimator.MeanInterval(indicators)
	if err != nil {
		s.NoData = true
		return s
	}
	s.Rate = interval
	s.MajorityShare = float64(agreements+majority) / float64(s.N)
	return s
}

// Matrix computes agreement summaries for every reporting segment: overall,
// per round, per difficulty, and round crossed with difficulty. Segments with
// no comparable overlapping services are kept and flagged NoData.
func (c *Calculator) Matrix(ds *coding.Dataset, key ServiceKey) []Summary {
	groups := c.Overlaps(ds, key)
	rounds := ds.Rounds()

	out := []Summary{c.Rate("Overall", groups)}
	for _, round := range rounds {
		out = append(out, c.Rate(fmt.Sprintf("Round %d", round), filterGroups(groups, func(g Group) bool {
			return g.Round == round
		})))
	}
	for _, diff := range coding.Difficulties {
		d := diff
		out = append(out, c.Rate(string(d), filterGroups(groups, func(g Group) bool {
			return g.Difficulty == d
		})))
	}
	for _, round := range rounds {
		for _, diff := range coding.Difficulties {
			r, d := round, diff
			out = append(out, c.Rate(fmt.Sprintf("R%d %s", r, d), filterGroups(groups, func(g Group) bool {
				return g.Round == r && g.Difficulty == d
			})))
		}
	}
	return out
}

func filterGroups(groups []Group, keep func(Group) bool) []Group {
	var out []Group
	for _, g := range groups {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}

// Comparison holds the same agreement measurement computed under raw and
// normalized service names. Normalization typically merges name variants, so
// the overlapping-service counts differ as well as the rates.
type Comparison struct {
	Before         Summary `json:"before"`
	After          Summary `json:"after"`
	ImprovementPP  float64 `json:"improvement_pp"`
	OverlapsBefore int     `json:"overlaps_before"`
	OverlapsAfter  int     `json:"overlaps_after"`
}

// CompareNormalization measures how much canonical naming changes the
// apparent agreement rate. ImprovementPP is after minus before, in
// percentage points.
func (c *Calculator) CompareNormalization(ds *coding.Dataset) Comparison {
	beforeGroups := c.Overlaps(ds, RawService)
	afterGroups := c.Overlaps(ds, NormalizedService)

	comp := Comparison{
		Before:         c.Rate("Raw names", beforeGroups),
		After:          c.Rate("Normalized", afterGroups),
		OverlapsBefore: len(beforeGroups),
		OverlapsAfter:  len(afterGroups),
	}
	if !comp.Before.NoData && !comp.After.NoData {
		comp.ImprovementPP = (comp.After.Rate.Point - comp.Before.Rate.Point) * 100
	}
	return comp
}
