package coding

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/naics"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// CoderProfile is one coder's usage distribution over 2-digit sector
// prefixes, in percent of that coder's coded rows. The prefix of a row is
// taken from its primary (first) code.
type CoderProfile struct {
	Coder     string             `json:"coder"`
	Rows      int                `json:"rows"`
	PrefixPct map[string]float64 `json:"prefix_pct"`
}

// ProfileSet holds every coder's profile plus the overall prefix totals used
// to rank prefixes.
type ProfileSet struct {
	Coders []CoderProfile `json:"coders"`
	Totals map[string]int `json:"totals"`
}

// Profiles computes per-coder prefix usage over all eligible records.
func Profiles(d *Dataset) *ProfileSet {
	perCoder := make(map[string]map[string]int)
	totals := make(map[string]int)

	for _, r := range d.Records {
		if !r.Eligible() {
			continue
		}
		prefix := naics.Sector(r.Codes.Primary())
		if prefix == "" {
			continue
		}
		if perCoder[r.Coder] == nil {
			perCoder[r.Coder] = make(map[string]int)
		}
		perCoder[r.Coder][prefix]++
		totals[prefix]++
	}

	coders := make([]string, 0, len(perCoder))
	for c := range perCoder {
		coders = append(coders, c)
	}
	sort.Strings(coders)

	set := &ProfileSet{Totals: totals}
	for _, c := range coders {
		counts := perCoder[c]
		rows := 0
		for _, n := range counts {
			rows += n
		}
		pct := make(map[string]float64, len(counts))
		for prefix, n := range counts {
			pct[prefix] = float64(n) / float64(rows) * 100
		}
		set.Coders = append(set.Coders, CoderProfile{Coder: c, Rows: rows, PrefixPct: pct})
	}
	return set
}

// TopPrefixes returns the k most used prefixes across all coders, by total
// row count, ties broken lexicographically.
func (p *ProfileSet) TopPrefixes(k int) []string {
	prefixes := make([]string, 0, len(p.Totals))
	for prefix := range p.Totals {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if p.Totals[prefixes[i]] != p.Totals[prefixes[j]] {
			return p.Totals[prefixes[i]] > p.Totals[prefixes[j]]
		}
		return prefixes[i] < prefixes[j]
	})
	if k > 0 && len(prefixes) > k {
		prefixes = prefixes[:k]
	}
	return prefixes
}

// Tendency flags a coder whose usage of a prefix deviates from the
// cross-coder mean by more than the threshold, in percentage points.
type Tendency struct {
	Coder     string  `json:"coder"`
	Prefix    string  `json:"prefix"`
	Pct       float64 `json:"pct"`
	GroupMean float64 `json:"group_mean"`
	DeltaPP   float64 `json:"delta_pp"`
	Favors    bool    `json:"favors"`
}

// Tendencies scans the given prefixes for systematic per-coder deviation.
func (p *ProfileSet) Tendencies(prefixes []string, thresholdPP float64) []Tendency {
	var out []Tendency
	for _, prefix := range prefixes {
		vals := make([]float64, len(p.Coders))
		for i, c := range p.Coders {
			vals[i] = c.PrefixPct[prefix]
		}
		mean := stats.Mean(vals)
		for i, c := range p.Coders {
			delta := vals[i] - mean
			if delta > thresholdPP || delta < -thresholdPP {
				out = append(out, Tendency{
					Coder:     c.Coder,
					Prefix:    prefix,
					Pct:       vals[i],
					GroupMean: mean,
					DeltaPP:   delta,
					Favors:    delta > 0,
				})
			}
		}
	}
	return out
}
