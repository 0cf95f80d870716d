package agreement

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/naics"
)

// Category labels why a disagreement likely happened, judged from the
// 2-digit sector prefixes of the coders' primary codes.
type Category string

const (
	// CategoryGranularity covers disagreements within one sector: coders
	// picked the same industry at different code depths.
	CategoryGranularity Category = "Granularity (same prefix)"
	// CategoryConstructionAdmin is the recurring 23 vs 56 confusion between
	// construction work and facilities-support services.
	CategoryConstructionAdmin Category = "Construction vs Admin (23/56)"
	// CategoryUtilitiesConstruction is the 22 vs 23 confusion between
	// operating a utility and building one.
	CategoryUtilitiesConstruction Category = "Utilities vs Construction (22/23)"
	// CategoryProfessionalPublic is the 54 vs 92 confusion between
	// professional services and public administration.
	CategoryProfessionalPublic Category = "Professional vs Public Admin (54/92)"
	// CategoryOther is any remaining cross-sector disagreement.
	CategoryOther Category = "Other substantive"
)

// Disagreement is one overlapping service whose coders did not reach a
// unanimous code set, annotated for diagnosis.
type Disagreement struct {
	Contract   string                   `json:"contract"`
	Round      int                      `json:"round"`
	Difficulty coding.Difficulty        `json:"difficulty"`
	Service    string                   `json:"service"`
	Outcome    Outcome                  `json:"outcome"`
	Coders     []string                 `json:"coders"`
	Codes      map[string]naics.CodeSet `json:"codes"`
	Prefixes   []string                 `json:"prefixes"`
	SamePrefix bool                     `json:"same_prefix"`
	Category   Category                 `json:"category"`
}

// Disagreements extracts every non-unanimous comparable group, annotated with
// its primary-code prefixes and category. Prefixes come from each coded
// coder's primary code, so a coder's secondary codes never mask where their
// headline classification landed.
func (c *Calculator) Disagreements(ds *coding.Dataset, key ServiceKey) []Disagreement {
	var out []Disagreement
	for _, g := range c.Overlaps(ds, key) {
		outcome, ok := g.Outcome()
		if !ok || outcome == OutcomeUnanimous {
			continue
		}

		prefixSet := make(map[string]bool)
		for _, coder := range g.CodedCoders() {
			if p := naics.Sector(g.Codes[coder].Primary()); p != "" {
				prefixSet[p] = true
			}
		}
		prefixes := make([]string, 0, len(prefixSet))
		for p := range prefixSet {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)

		d := Disagreement{
			Contract:   g.Contract,
			Round:      g.Round,
			Difficulty: g.Difficulty,
			Service:    g.Service,
			Outcome:    outcome,
			Coders:     g.CodedCoders(),
			Codes:      g.Codes,
			Prefixes:   prefixes,
			SamePrefix: len(prefixes) == 1,
		}
		d.Category = categorize(d)
		out = append(out, d)
	}
	return out
}

// categorize assigns the diagnosis category from the prefix pattern. The
// named sector confusions require exactly the two sectors in question, so a
// three-way split lands in CategoryOther unless it involves 54 and 92, which
// the source data shows bleeding into mixed splits as well.
func categorize(d Disagreement) Category {
	if d.SamePrefix {
		return CategoryGranularity
	}
	has := func(p string) bool {
		for _, x := range d.Prefixes {
			if x == p {
				return true
			}
		}
		return false
	}
	switch {
	case len(d.Prefixes) == 2 && has("23") && has("56"):
		return CategoryConstructionAdmin
	case len(d.Prefixes) == 2 && has("22") && has("23"):
		return CategoryUtilitiesConstruction
	case has("54") && has("92"):
		return CategoryProfessionalPublic
	default:
		return CategoryOther
	}
}

// CategoryCount is one row of the disagreement taxonomy distribution.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Pct      float64  `json:"pct"`
}

// TaxonomyReport summarizes the disagreement categories. Granularity
// disagreements stay within a sector and carry low retrieval impact; the
// Substantive count is everything else.
type TaxonomyReport struct {
	Total       int             `json:"total"`
	Categories  []CategoryCount `json:"categories"`
	Granularity int             `json:"granularity"`
	Substantive int             `json:"substantive"`
}

// Taxonomy tabulates the category distribution, most common first, ties
// broken by category name.
func Taxonomy(disagreements []Disagreement) TaxonomyReport {
	report := TaxonomyReport{Total: len(disagreements)}
	if report.Total == 0 {
		return report
	}

	tally := make(map[Category]int)
	for _, d := range disagreements {
		tally[d.Category]++
	}
	for cat, count := range tally {
		report.Categories = append(report.Categories, CategoryCount{
			Category: cat,
			Count:    count,
			Pct:      float64(count) / float64(report.Total) * 100,
		})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		a, b := report.Categories[i], report.Categories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})

	report.Granularity = tally[CategoryGranularity]
	report.Substantive = report.Total - report.Granularity
	return report
}

// ConfusionPair counts how often two sector prefixes appeared on opposite
// sides of a disagreement.
type ConfusionPair struct {
	PrefixA string `json:"prefix_a"`
	PrefixB string `json:"prefix_b"`
	NameA   string `json:"name_a"`
	NameB   string `json:"name_b"`
	Count   int    `json:"count"`
}

// Confusion tabulates cross-sector confusion pairs over the disagreements,
// most frequent first, ties broken by prefix order.
func Confusion(disagreements []Disagreement) []ConfusionPair {
	type pairKey struct{ a, b string }
	tally := make(map[pairKey]int)

	for _, d := range disagreements {
		for i := 0; i < len(d.Prefixes); i++ {
			for j := i + 1; j < len(d.Prefixes); j++ {
				tally[pairKey{a: d.Prefixes[i], b: d.Prefixes[j]}]++
			}
		}
	}

	out := make([]ConfusionPair, 0, len(tally))
	for k, count := range tally {
		out = append(out, ConfusionPair{
			PrefixA: k.a,
			PrefixB: k.b,
			NameA:   naics.SectorName(k.a),
			NameB:   naics.SectorName(k.b),
			Count:   count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].PrefixA != out[j].PrefixA {
			return out[i].PrefixA < out[j].PrefixA
		}
		return out[i].PrefixB < out[j].PrefixB
	})
	return out
}
