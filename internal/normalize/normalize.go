// Package normalize folds raw service-name variants into canonical services.
//
// Two mechanisms combine: an explicit override table for variants that are
// semantically equivalent but lexically distant, and transitive-closure
// clustering over a Levenshtein similarity graph for close spellings. The
// result is a pure raw → canonical lookup table built once per analysis run.
package normalize

import (
	"sort"
)

// DefaultThreshold is the similarity ratio at or above which two raw names
// are treated as variants of the same service.
const DefaultThreshold = 0.7

// Normalizer builds canonical-name tables from observed raw names.
type Normalizer struct {
	threshold float64
	overrides Overrides
}

// New returns a Normalizer using the given override table and similarity
// threshold. A threshold outside (0, 1] falls back to DefaultThreshold.
func New(overrides Overrides, threshold float64) *Normalizer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Normalizer{threshold: threshold, overrides: overrides}
}

// Fit builds the lookup table for one run. counts maps each distinct raw name
// to its occurrence count across all records; counts drive canonical election
// inside discovered clusters.
//
// Names covered by the override table are mapped unconditionally and do not
// participate in similarity clustering. The remaining names are grouped into
// connected components of the similarity graph: if A~B and B~C score at or
// above the threshold, all three join one cluster. Comparison is pairwise and
// quadratic in the number of distinct names, which stays small in practice.
func (n *Normalizer) Fit(counts map[string]int) (*Table, error) {
	if err := n.overrides.Validate(); err != nil {
		return nil, err
	}
	mapping := n.overrides.mapping()

	free := make([]string, 0, len(counts))
	for name := range counts {
		if _, ok := mapping[nameKey(name)]; !ok {
			free = append(free, name)
		}
	}
	sort.Strings(free)

	// Connected components by frontier expansion. Sorted input plus
	// deterministic election makes the outcome independent of map order.
	labels := make([]int, len(free))
	clusterID := 0
	for i := range free {
		if labels[i] != 0 {
			continue
		}
		clusterID++
		labels[i] = clusterID
		frontier := []int{i}
		for len(frontier) > 0 {
			j := frontier[0]
			frontier = frontier[1:]
			for k := range free {
				if labels[k] != 0 {
					continue
				}
				if Ratio(free[j], free[k]) >= n.threshold {
					labels[k] = clusterID
					frontier = append(frontier, k)
				}
			}
		}
	}

	members := make(map[int][]string)
	for i, name := range free {
		members[labels[i]] = append(members[labels[i]], name)
	}
	for _, names := range members {
		canonical := electCanonical(names, counts)
		for _, name := range names {
			mapping[nameKey(name)] = canonical
		}
	}

	t := &Table{mapping: mapping, clusters: make(map[string][]string)}
	for name := range counts {
		canonical := t.Canonical(name)
		t.clusters[canonical] = append(t.clusters[canonical], name)
	}
	for canonical := range t.clusters {
		sort.Strings(t.clusters[canonical])
	}
	t.stats = Stats{
		RawUnique:        len(counts),
		NormalizedUnique: len(t.clusters),
	}
	t.stats.Merged = t.stats.RawUnique - t.stats.NormalizedUnique
	return t, nil
}

// electCanonical picks the cluster representative: most frequent raw
// occurrence, ties broken by shortest string, then lexicographic order.
func electCanonical(names []string, counts map[string]int) string {
	best := names[0]
	for _, name := range names[1:] {
		switch {
		case counts[name] > counts[best]:
			best = name
		case counts[name] < counts[best]:
		case len(name) < len(best):
			best = name
		case len(name) > len(best):
		case name < best:
			best = name
		}
	}
	return best
}

// Table is the fitted raw → canonical lookup for one run.
type Table struct {
	mapping  map[string]string
	clusters map[string][]string
	stats    Stats
}

// Canonical resolves a raw name to its canonical service name. Lookup ignores
// surrounding whitespace and casing. Unknown names pass through unchanged, so
// the function is total and idempotent.
func (t *Table) Canonical(name string) string {
	if canonical, ok := t.mapping[nameKey(name)]; ok {
		return canonical
	}
	return name
}

// Service is one canonical grouping with the observed raw names it absorbed.
type Service struct {
	Canonical string   `json:"canonical"`
	Members   []string `json:"members"`
}

// Services lists the canonical groupings built from the observed names,
// sorted by canonical name. Members are sorted within each grouping.
func (t *Table) Services() []Service {
	out := make([]Service, 0, len(t.clusters))
	for canonical, members := range t.clusters {
		out = append(out, Service{Canonical: canonical, Members: members})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

// Merges lists only the groupings that folded two or more raw names together.
func (t *Table) Merges() []Service {
	var out []Service
	for _, s := range t.Services() {
		if len(s.Members) > 1 {
			out = append(out, s)
		}
	}
	return out
}

// Stats summarizes how much the table collapsed the raw vocabulary.
type Stats struct {
	RawUnique        int `json:"raw_unique"`
	NormalizedUnique int `json:"normalized_unique"`
	Merged           int `json:"merged"`
}

// Stats returns the collapse summary for the fitted table.
func (t *Table) Stats() Stats {
	return t.stats
}

// Pair is one similar name pair found by SimilarPairs.
type Pair struct {
	A, B  string
	Ratio float64
}

// SimilarPairs reports every unordered name pair scoring at or above the
// threshold, sorted by descending ratio and then by name. Useful for auditing
// what the clustering will link before committing to a threshold.
func SimilarPairs(names []string, threshold float64) []Pair {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var out []Pair
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			r := Ratio(sorted[i], sorted[j])
			if r >= threshold {
				out = append(out, Pair{A: sorted[i], B: sorted[j], Ratio: r})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ratio != out[j].Ratio {
			return out[i].Ratio > out[j].Ratio
		}
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
