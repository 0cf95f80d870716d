package coding

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/naics"
)

// Dataset is the full record set for one analysis run plus the data-quality
// tallies accumulated while loading it. Filtered views share the records but
// not the quality report, which always describes the whole input.
type Dataset struct {
	Records []Record
	Quality Quality
}

// NewDataset wraps records without copying them.
func NewDataset(records []Record) *Dataset {
	return &Dataset{Records: records}
}

// Coders returns the sorted distinct coder IDs.
func (d *Dataset) Coders() []string {
	return d.distinct(func(r Record) string { return r.Coder })
}

// Contracts returns the sorted distinct contract IDs.
func (d *Dataset) Contracts() []string {
	return d.distinct(func(r Record) string { return r.Contract })
}

func (d *Dataset) distinct(key func(Record) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Records {
		if k := key(r); !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Rounds returns the sorted distinct round numbers.
func (d *Dataset) Rounds() []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range d.Records {
		if !seen[r.Round] {
			seen[r.Round] = true
			out = append(out, r.Round)
		}
	}
	sort.Ints(out)
	return out
}

// ServiceCounts tallies raw service-name occurrences across all records.
// The normalizer elects cluster canonicals by these counts.
func (d *Dataset) ServiceCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range d.Records {
		counts[r.ServiceRaw]++
	}
	return counts
}

// ServiceNames returns the sorted distinct raw service names.
func (d *Dataset) ServiceNames() []string {
	return d.distinct(func(r Record) string { return r.ServiceRaw })
}

// FilterRound returns a view holding only the given round's records.
func (d *Dataset) FilterRound(round int) *Dataset {
	return d.filter(func(r Record) bool { return r.Round == round })
}

// FilterDifficulty returns a view holding only the given tier's records.
func (d *Dataset) FilterDifficulty(diff Difficulty) *Dataset {
	return d.filter(func(r Record) bool { return r.Difficulty == diff })
}

func (d *Dataset) filter(keep func(Record) bool) *Dataset {
	var out []Record
	for _, r := range d.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &Dataset{Records: out}
}

// ContractDifficulty returns the difficulty tier of a contract, taken from
// its first record. Difficulty is a contract-level attribute.
func (d *Dataset) ContractDifficulty(contract string) Difficulty {
	for _, r := range d.Records {
		if r.Contract == contract {
			return r.Difficulty
		}
	}
	return ""
}

// ContractRound returns the round of a contract, taken from its first record.
func (d *Dataset) ContractRound(contract string) int {
	for _, r := range d.Records {
		if r.Contract == contract {
			return r.Round
		}
	}
	return 0
}

// ContractCodeSets builds, for one contract, each coder's union of codes
// across every eligible record in that contract. This is the whole-contract
// view consumed by the Jaccard calculator and the query simulator.
func (d *Dataset) ContractCodeSets(contract string) map[string]naics.CodeSet {
	sets := make(map[string]naics.CodeSet)
	for _, r := range d.Records {
		if r.Contract != contract {
			continue
		}
		if _, ok := sets[r.Coder]; !ok {
			sets[r.Coder] = naics.CodeSet{}
		}
		if r.Eligible() {
			sets[r.Coder] = sets[r.Coder].Union(r.Codes)
		}
	}
	return sets
}

// SetNormalized attaches canonical service names to every record. The
// canonical function is total: unknown names pass through unchanged.
func (d *Dataset) SetNormalized(canonical func(string) string) {
	for i := range d.Records {
		d.Records[i].ServiceNormalized = canonical(d.Records[i].ServiceRaw)
	}
}
