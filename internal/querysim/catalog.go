// Package querysim estimates how classification disagreement propagates into
// retrieval failure.
//
// The simulation replays a catalog of realistic search queries against each
// coder's per-contract code sets. A query that at least one coder's codes
// would satisfy is findable in principle; every coder who individually fails
// it represents a contract that a single-coder production pipeline would have
// lost.
package querysim

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/intercoder-data/naics.report/internal/naics"
)

// Scenario is one retrieval query: a name plus the code patterns a searcher
// might use. A pattern is an exact code or a prefix; patterns are OR'd.
type Scenario struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Matches reports whether any code in the set satisfies any pattern. Prefix
// equality on the leading digits: pattern "237" matches code "237310".
func (s Scenario) Matches(codes naics.CodeSet) bool {
	for _, code := range codes {
		for _, pattern := range s.Patterns {
			if strings.HasPrefix(code, pattern) {
				return true
			}
		}
	}
	return false
}

// Category groups scenarios that represent the same kind of search need.
type Category struct {
	Name      string     `yaml:"category"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Catalog is the ordered query catalog for one simulation run. Order matters
// only for reporting: results keep catalog order so tables are stable.
type Catalog struct {
	Categories []Category
}

// Entry is one scenario with its category attached, for flat iteration.
type Entry struct {
	Category string
	Scenario Scenario
}

// Entries flattens the catalog in order.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, cat := range c.Categories {
		for _, s := range cat.Scenarios {
			out = append(out, Entry{Category: cat.Name, Scenario: s})
		}
	}
	return out
}

// CategoryNames returns the category names in catalog order.
func (c *Catalog) CategoryNames() []string {
	out := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		out[i] = cat.Name
	}
	return out
}

// NumScenarios counts the scenarios across all categories.
func (c *Catalog) NumScenarios() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Scenarios)
	}
	return n
}

// ScenarioCount returns the scenario count for one category, 0 if absent.
func (c *Catalog) ScenarioCount(category string) int {
	for _, cat := range c.Categories {
		if cat.Name == category {
			return len(cat.Scenarios)
		}
	}
	return 0
}

// Validate rejects catalogs with duplicate scenario names, empty pattern
// lists, or patterns that are not 2-6 digit code prefixes.
func (c *Catalog) Validate() error {
	seen := make(map[string]string)
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		for _, s := range cat.Scenarios {
			if s.Name == "" {
				return fmt.Errorf("category %s: scenario with empty name", cat.Name)
			}
			if prev, ok := seen[s.Name]; ok {
				return fmt.Errorf("scenario %q appears in both %s and %s", s.Name, prev, cat.Name)
			}
			seen[s.Name] = cat.Name
			if len(s.Patterns) == 0 {
				return fmt.Errorf("scenario %q has no patterns", s.Name)
			}
			for _, p := range s.Patterns {
				if !naics.Valid(p) {
					return fmt.Errorf("scenario %q: invalid pattern %q", s.Name, p)
				}
			}
		}
	}
	return nil
}

// LoadCatalog reads a catalog from a YAML file shaped as an ordered list:
//
//	- category: Construction
//	  scenarios:
//	    - name: road_maintenance
//	      patterns: ["237310", "237"]
//
// The result is validated before it is returned.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var categories []Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	c := &Catalog{Categories: categories}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog of municipal-service search
// scenarios, grouped into eight categories.
func DefaultCatalog() *Catalog {
	return &Catalog{Categories: []Category{
		{Name: "Construction", Scenarios: []Scenario{
			{Name: "road_maintenance", Patterns: []string{"237310", "237"}},
			{Name: "highway_construction", Patterns: []string{"237310"}},
			{Name: "commercial_building", Patterns: []string{"236220", "236"}},
			{Name: "utility_line_construction", Patterns: []string{"237110", "237130"}},
			{Name: "specialty_trades", Patterns: []string{"238210", "238220", "238350", "238320", "238990"}},
			{Name: "infrastructure_general", Patterns: []string{"237"}},
		}},
		{Name: "Public Admin", Scenarios: []Scenario{
			{Name: "police_services", Patterns: []string{"922120"}},
			{Name: "fire_protection", Patterns: []string{"922160"}},
			{Name: "corrections", Patterns: []string{"922140"}},
			{Name: "administrative_executive", Patterns: []string{"921130", "921190", "921110"}},
			{Name: "courts_legal", Patterns: []string{"922110", "922130"}},
			{Name: "public_safety_broad", Patterns: []string{"922"}},
			{Name: "environmental_programs", Patterns: []string{"924120", "925120", "925110"}},
			{Name: "justice_system", Patterns: []string{"922110", "922140", "922150"}},
			{Name: "regulatory_inspection", Patterns: []string{"926150", "926120"}},
		}},
		{Name: "Support Services", Scenarios: []Scenario{
			{Name: "facilities_support", Patterns: []string{"561210", "561211"}},
			{Name: "landscaping_services", Patterns: []string{"561730", "567130"}},
			{Name: "security_services", Patterns: []string{"561612", "561710"}},
			{Name: "waste_collection", Patterns: []string{"562111", "562920"}},
			{Name: "office_admin", Patterns: []string{"561110"}},
			{Name: "janitorial_custodial", Patterns: []string{"561720"}},
			{Name: "support_services_broad", Patterns: []string{"561"}},
		}},
		{Name: "Utilities", Scenarios: []Scenario{
			{Name: "water_supply", Patterns: []string{"221310"}},
			{Name: "sewage_treatment", Patterns: []string{"221320"}},
			{Name: "utilities_broad", Patterns: []string{"221"}},
		}},
		{Name: "Professional", Scenarios: []Scenario{
			{Name: "engineering_civil", Patterns: []string{"541330", "541320"}},
			{Name: "surveying_mapping", Patterns: []string{"541370"}},
			{Name: "computer_services", Patterns: []string{"541512", "541513", "541519"}},
			{Name: "building_inspection", Patterns: []string{"541350"}},
			{Name: "professional_broad", Patterns: []string{"541"}},
		}},
		{Name: "Recreation", Scenarios: []Scenario{
			{Name: "fitness_recreation", Patterns: []string{"713940", "713910"}},
			{Name: "nature_parks", Patterns: []string{"712190"}},
			{Name: "recreation_broad", Patterns: []string{"71"}},
		}},
		{Name: "Repair", Scenarios: []Scenario{
			{Name: "auto_repair", Patterns: []string{"811111", "811310"}},
			{Name: "personal_services", Patterns: []string{"812220", "812910"}},
			{Name: "repair_broad", Patterns: []string{"81"}},
		}},
		{Name: "Transportation", Scenarios: []Scenario{
			{Name: "towing_services", Patterns: []string{"488410"}},
			{Name: "traffic_management", Patterns: []string{"488490"}},
			{Name: "transportation_broad", Patterns: []string{"488"}},
		}},
	}}
}
