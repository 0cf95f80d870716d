package agreement

import (
	"sort"

	"github.com/intercoder-data/naics.report/internal/coding"
)

// ServiceConsistency records whether one service received the same primary
// code everywhere it appears.
type ServiceConsistency struct {
	Service      string   `json:"service"`
	Contracts    []string `json:"contracts"`
	PrimaryCodes []string `json:"primary_codes"`
	Consistent   bool     `json:"consistent"`
}

// ConsistencyReport covers the services that appear in two or more
// contracts. Services are sorted by name.
type ConsistencyReport struct {
	Services   []ServiceConsistency `json:"services"`
	Total      int                  `json:"total"`
	Consistent int                  `json:"consistent"`
}

// ConsistentPct is the share of multi-contract services coded consistently,
// in percent. Zero when there are no multi-contract services.
func (r ConsistencyReport) ConsistentPct() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Consistent) / float64(r.Total) * 100
}

// Inconsistent returns the inconsistent services, widest code spread first,
// ties broken by name. These are the handbook-guidance candidates.
func (r ConsistencyReport) Inconsistent() []ServiceConsistency {
	var out []ServiceConsistency
	for _, s := range r.Services {
		if !s.Consistent {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].PrimaryCodes) != len(out[j].PrimaryCodes) {
			return len(out[i].PrimaryCodes) > len(out[j].PrimaryCodes)
		}
		return out[i].Service < out[j].Service
	})
	return out
}

// Consistency checks whether each service receives the same primary code
// across contracts. A service counts as consistent when exactly one distinct
// primary code appears over all of its validly coded records.
func Consistency(ds *coding.Dataset, key ServiceKey) ConsistencyReport {
	type acc struct {
		contracts map[string]bool
		primaries map[string]bool
	}
	byService := make(map[string]*acc)

	for _, r := range ds.Records {
		service := key(r)
		if service == "" {
			continue
		}
		a, ok := byService[service]
		if !ok {
			a = &acc{contracts: make(map[string]bool), primaries: make(map[string]bool)}
			byService[service] = a
		}
		a.contracts[r.Contract] = true
		if r.Eligible() {
			if p := r.Codes.Primary(); p != "" {
				a.primaries[p] = true
			}
		}
	}

	var report ConsistencyReport
	names := make([]string, 0, len(byService))
	for name := range byService {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a := byService[name]
		if len(a.contracts) < 2 {
			continue
		}
		sc := ServiceConsistency{
			Service:      name,
			Contracts:    sortedKeys(a.contracts),
			PrimaryCodes: sortedKeys(a.primaries),
		}
		sc.Consistent = len(sc.PrimaryCodes) == 1
		report.Services = append(report.Services, sc)
		report.Total++
		if sc.Consistent {
			report.Consistent++
		}
	}
	return report
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
