// Package agreement measures inter-coder agreement on service identification
// and classification.
//
// The two stages are distinct. Identification asks whether coders noticed the
// same service in a contract at all; classification asks whether the coders
// who did notice it assigned the same code set. Classification agreement is
// only defined over overlapping services, i.e. services identified by at
// least two coders for the same contract and round.
package agreement

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/naics"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// DefaultMinCoders is the identification threshold for an overlapping
// service.
const DefaultMinCoders = 2

// ServiceKey selects the service name a record is grouped under. Grouping by
// RawService and NormalizedService side by side shows how much apparent
// disagreement is naming variance rather than real classification conflict.
type ServiceKey func(coding.Record) string

// RawService groups records by the service name exactly as the coder wrote it.
func RawService(r coding.Record) string { return r.ServiceRaw }

// NormalizedService groups records by canonical service name.
func NormalizedService(r coding.Record) string { return r.Service() }

// Group is one service identified within one contract and round, with every
// coder who identified it and each coder's combined code set for it.
//
// Coders lists all identifying coders, including those whose only records
// were missing codes. Codes holds per-coder unions of validly coded records;
// a coder present in Coders but absent from a comparison had no usable codes.
type Group struct {
	Contract   string
	Round      int
	Difficulty coding.Difficulty
	Service    string
	Coders     []string
	Codes      map[string]naics.CodeSet
}

// CodedCoders returns the identifying coders that contributed at least one
// valid code, sorted.
func (g *Group) CodedCoders() []string {
	out := make([]string, 0, len(g.Codes))
	for coder, codes := range g.Codes {
		if len(codes) > 0 {
			out = append(out, coder)
		}
	}
	sort.Strings(out)
	return out
}

// Comparable reports whether the group supports a classification comparison,
// which needs valid code sets from at least two coders.
func (g *Group) Comparable() bool {
	return len(g.CodedCoders()) >= 2
}

// Outcome classifies one overlapping service's code-set comparison.
type Outcome string

const (
	// OutcomeUnanimous means every coded coder assigned an identical code set.
	OutcomeUnanimous Outcome = "Unanimous"
	// OutcomeMajority means more than half of the coded coders share one
	// identical code set, but not all of them.
	OutcomeMajority Outcome = "Majority"
	// OutcomeSplit means no code set reaches a majority.
	OutcomeSplit Outcome = "Split"
)

// Outcome evaluates the group's comparison. ok is false when the group is not
// comparable, which callers must treat as no data rather than disagreement.
func (g *Group) Outcome() (outcome Outcome, ok bool) {
	coders := g.CodedCoders()
	if len(coders) < 2 {
		return "", false
	}

	// Tally equality classes over the coders' sets.
	var classes []naics.CodeSet
	var tallies []int
	for _, coder := range coders {
		set := g.Codes[coder]
		found := false
		for i, class := range classes {
			if class.Equal(set) {
				tallies[i]++
				found = true
				break
			}
		}
		if !found {
			classes = append(classes, set)
			tallies = append(tallies, 1)
		}
	}

	if len(classes) == 1 {
		return OutcomeUnanimous, true
	}
	maxTally := 0
	for _, t := range tallies {
		if t > maxTally {
			maxTally = t
		}
	}
	if maxTally*2 > len(coders) {
		return OutcomeMajority, true
	}
	return OutcomeSplit, true
}

// Calculator computes agreement statistics under one configuration.
type Calculator struct {
	MinCoders int
	Estimator stats.Estimator
}

// NewCalculator returns a Calculator. minCoders below 2 falls back to
// DefaultMinCoders.
func NewCalculator(minCoders int, est stats.Estimator) *Calculator {
	if minCoders < 2 {
		minCoders = DefaultMinCoders
	}
	return &Calculator{MinCoders: minCoders, Estimator: est}
}

// Overlaps groups the dataset's records by (contract, round, service) and
// returns the groups identified by at least MinCoders distinct coders,
// sorted by contract, round, then service.
//
// Identification counts every record, including missing-code rows: a coder
// who named the service but supplied no code still identified it. Only
// validly coded records contribute to the per-coder code sets.
func (c *Calculator) Overlaps(ds *coding.Dataset, key ServiceKey) []Group {
	var out []Group
	for _, g := range collectGroups(ds, key) {
		if len(g.Coders) >= c.MinCoders {
			out = append(out, g)
		}
	}
	return out
}

// collectGroups builds every (contract, round, service) group regardless of
// coder count, sorted by contract, round, then service.
func collectGroups(ds *coding.Dataset, key ServiceKey) []Group {
	type groupKey struct {
		contract string
		round    int
		service  string
	}
	byKey := make(map[groupKey]*Group)

	for _, r := range ds.Records {
		service := key(r)
		if service == "" {
			continue
		}
		k := groupKey{contract: r.Contract, round: r.Round, service: service}
		g, ok := byKey[k]
		if !ok {
			g = &Group{
				Contract:   r.Contract,
				Round:      r.Round,
				Difficulty: r.Difficulty,
				Service:    service,
				Codes:      make(map[string]naics.CodeSet),
			}
			byKey[k] = g
		}
		if !containsString(g.Coders, r.Coder) {
			g.Coders = append(g.Coders, r.Coder)
		}
		if r.Eligible() {
			g.Codes[r.Coder] = appendCodes(g.Codes[r.Coder], r.Codes)
		}
	}

	out := make([]Group, 0, len(byKey))
	for _, g := range byKey {
		sort.Strings(g.Coders)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Contract != b.Contract {
			return a.Contract < b.Contract
		}
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.Service < b.Service
	})
	return out
}

// appendCodes merges src into dst preserving first-occurrence order.
func appendCodes(dst, src naics.CodeSet) naics.CodeSet {
	for _, code := range src {
		if !dst.Contains(code) {
			dst = append(dst, code)
		}
	}
	return dst
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
