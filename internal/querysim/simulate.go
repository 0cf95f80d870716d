package querysim

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/naics"
)

// Outcome is one (contract, scenario) simulation row. UnionHit means the
// combined codes of every coder satisfy the scenario; Misses marks the
// coders who individually fail a union-hit scenario. Misses stays empty when
// the union itself fails, since nothing findable was lost.
type Outcome struct {
	Contract   string            `json:"contract"`
	Difficulty coding.Difficulty `json:"difficulty"`
	Round      int               `json:"round"`
	Category   string            `json:"category"`
	Scenario   string            `json:"scenario"`
	UnionHit   bool              `json:"union_hit"`
	Hits       map[string]bool   `json:"hits"`
	Misses     map[string]bool   `json:"misses"`
}

// Results bundles the simulation rows with the catalog and coder panel the
// aggregations need.
type Results struct {
	Outcomes []Outcome
	Coders   []string
	Catalog  *Catalog
}

// Simulator replays one catalog against a dataset.
type Simulator struct {
	Catalog *Catalog
}

// NewSimulator returns a Simulator over the given catalog.
func NewSimulator(catalog *Catalog) *Simulator {
	return &Simulator{Catalog: catalog}
}

// Run tests every scenario against every contract. Rows come out in
// deterministic order: contracts sorted, scenarios in catalog order. A coder
// with no records in a contract appears in neither Hits nor Misses for that
// contract's rows and contributes nothing to its statistics.
func (s *Simulator) Run(ds *coding.Dataset) *Results {
	res := &Results{Coders: ds.Coders(), Catalog: s.Catalog}
	entries := s.Catalog.Entries()

	for _, contract := range ds.Contracts() {
		sets := ds.ContractCodeSets(contract)
		coders := make([]string, 0, len(sets))
		for coder := range sets {
			coders = append(coders, coder)
		}
		sort.Strings(coders)

		var union naics.CodeSet
		for _, coder := range coders {
			union = union.Union(sets[coder])
		}

		difficulty := ds.ContractDifficulty(contract)
		round := ds.ContractRound(contract)

		for _, e := range entries {
			o := Outcome{
				Contract:   contract,
				Difficulty: difficulty,
				Round:      round,
				Category:   e.Category,
				Scenario:   e.Scenario.Name,
				UnionHit:   e.Scenario.Matches(union),
				Hits:       make(map[string]bool, len(coders)),
				Misses:     make(map[string]bool, len(coders)),
			}
			for _, coder := range coders {
				hit := e.Scenario.Matches(sets[coder])
				o.Hits[coder] = hit
				o.Misses[coder] = o.UnionHit && !hit
			}
			res.Outcomes = append(res.Outcomes, o)
		}
	}
	return res
}
