package normalize

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overrides maps a canonical service name to the raw variants that should be
// folded into it. The canonical name itself always maps to itself, so it does
// not need to be repeated in its own variant list.
//
// Overrides are an explicit input to the Normalizer, passed per run. Nothing
// in this package mutates or caches a shared table.
type Overrides map[string][]string

// DefaultOverrides returns the built-in equivalence table for recurring
// service-name variants seen in municipal contract corpora. The automatic
// similarity clustering catches close spellings; these entries fold together
// names that describe the same service but are too far apart in edit distance.
func DefaultOverrides() Overrides {
	return Overrides{
		"Equipment operator": {
			"Heavy equipment operator",
			"Motor equipment operator",
			"Senior heavy equipment operator",
		},
		"Mechanic": {
			"Mechanic II",
		},
		"Groundskeeper": {
			"Groundskeeping",
		},
		"Fire protection": {
			"Fire prevention",
		},
		"Sewage treatment": {
			"Sewage related",
		},
		"Road maintenance": {
			"Highway and road maintenance",
			"Road related",
		},
		"Traffic control": {
			"Traffic control crew",
			"Traffic maintenance",
			"Traffic and vegetation control",
			"Traffic and vegetation control mechanic",
		},
		"Truck driver": {
			"Truck driver apprentice",
		},
		"Building maintenance": {
			"Building and grounds maintenance",
		},
		"Parks maintenance": {
			"Park maintenance",
			"Parks and landscaping",
		},
		"Sewer maintenance": {
			"Sewer repair",
			"Sewer line maintenance",
		},
		"Recreation": {
			"Recreation programs",
			"Recreation and lifeguards",
		},
		"Surveying": {
			"Land surveyor",
			"County surveyor",
		},
	}
}

// LoadOverrides reads an override table from a YAML file of the form
//
//	Canonical name:
//	  - variant one
//	  - variant two
//
// The result is validated before it is returned.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("overrides %s: %w", path, err)
	}
	return o, nil
}

// Validate rejects tables where one variant is claimed by two canonical names,
// or where a variant is itself listed as a canonical elsewhere. Either would
// make the raw → canonical mapping ambiguous.
func (o Overrides) Validate() error {
	claimed := make(map[string]string)
	for canonical := range o {
		key := nameKey(canonical)
		if prev, ok := claimed[key]; ok && prev != canonical {
			return fmt.Errorf("variant %q claimed by both %q and %q", canonical, prev, canonical)
		}
		claimed[key] = canonical
	}
	for canonical, variants := range o {
		for _, v := range variants {
			key := nameKey(v)
			if prev, ok := claimed[key]; ok && prev != canonical {
				return fmt.Errorf("variant %q claimed by both %q and %q", v, prev, canonical)
			}
			claimed[key] = canonical
		}
	}
	return nil
}

// mapping expands the table into a flat lookup of variant key → canonical
// name, including each canonical's self entry.
func (o Overrides) mapping() map[string]string {
	m := make(map[string]string, len(o)*2)
	for canonical, variants := range o {
		m[nameKey(canonical)] = canonical
		for _, v := range variants {
			m[nameKey(v)] = canonical
		}
	}
	return m
}

// Canonicals returns the canonical names in the table, sorted.
func (o Overrides) Canonicals() []string {
	out := make([]string, 0, len(o))
	for canonical := range o {
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}

// nameKey is the lookup key for a raw name: trimmed and lowercased, so that
// whitespace and casing artifacts in source data resolve to the same entry.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
