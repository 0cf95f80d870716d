// Package naics parses and validates NAICS classification codes.
//
// Codes arrive as semicolon-delimited raw strings ("237310;238350") and are
// parsed exactly once, at ingestion, into an ordered duplicate-free CodeSet.
// Downstream packages never re-split raw strings.
package naics

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// MalformedCodeError describes a raw code token that failed validation. The
// offending record is excluded from set-based computation and surfaced in the
// data-quality report; it never aborts a run.
type MalformedCodeError struct {
	Token  string
	Reason string
}

func (e *MalformedCodeError) Error() string {
	return fmt.Sprintf("malformed NAICS code %q: %s", e.Token, e.Reason)
}

// CodeSet is an ordered, duplicate-free sequence of NAICS code strings.
// Order is first-occurrence order from the raw field.
type CodeSet []string

// ParseCodeSet splits a semicolon-delimited raw code field into a CodeSet.
// A blank or whitespace-only field reports missing=true with no error.
// A non-empty field with an empty, non-numeric, or wrong-length token
// returns a *MalformedCodeError.
func ParseCodeSet(raw string) (codes CodeSet, missing bool, err error) {
	if strings.TrimSpace(raw) == "" {
		return nil, true, nil
	}
	seen := make(map[string]bool)
	for _, token := range strings.Split(raw, ";") {
		token = strings.TrimSpace(token)
		if err := validateToken(token); err != nil {
			return nil, false, err
		}
		if !seen[token] {
			seen[token] = true
			codes = append(codes, token)
		}
	}
	return codes, false, nil
}

func validateToken(token string) error {
	if token == "" {
		return &MalformedCodeError{Token: token, Reason: "empty token"}
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return &MalformedCodeError{Token: token, Reason: "non-numeric"}
		}
	}
	if len(token) < 2 || len(token) > 6 {
		return &MalformedCodeError{Token: token, Reason: fmt.Sprintf("length %d outside 2-6", len(token))}
	}
	return nil
}

// Valid reports whether a single code string passes digit/length validation.
func Valid(code string) bool {
	return validateToken(strings.TrimSpace(code)) == nil
}

// Contains reports whether the set holds the exact code.
func (s CodeSet) Contains(code string) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

// Equal reports order-independent set equality.
func (s CodeSet) Equal(other CodeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for _, c := range s {
		if !other.Contains(c) {
			return false
		}
	}
	return true
}

// Union returns the sorted union of both sets.
func (s CodeSet) Union(other CodeSet) CodeSet {
	seen := make(map[string]bool, len(s)+len(other))
	for _, c := range s {
		seen[c] = true
	}
	for _, c := range other {
		seen[c] = true
	}
	out := make(CodeSet, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the sorted intersection of both sets.
func (s CodeSet) Intersect(other CodeSet) CodeSet {
	var out CodeSet
	for _, c := range s {
		if other.Contains(c) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Sorted returns a sorted copy, leaving the receiver untouched.
func (s CodeSet) Sorted() CodeSet {
	out := make(CodeSet, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}

// Primary returns the first code in raw-field order, or "" for an empty set.
// Cross-contract consistency compares primary codes only.
func (s CodeSet) Primary() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Sector returns the 2-digit sector prefix of a code, or "" when the code is
// shorter than two characters.
func Sector(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}

// sectorNames maps every valid 2-digit NAICS sector to its title.
var sectorNames = map[string]string{
	"11": "Agriculture, Forestry, Fishing and Hunting",
	"21": "Mining, Quarrying, and Oil and Gas Extraction",
	"22": "Utilities",
	"23": "Construction",
	"31": "Manufacturing",
	"32": "Manufacturing",
	"33": "Manufacturing",
	"42": "Wholesale Trade",
	"44": "Retail Trade",
	"45": "Retail Trade",
	"48": "Transportation and Warehousing",
	"49": "Transportation and Warehousing",
	"51": "Information",
	"52": "Finance and Insurance",
	"53": "Real Estate and Rental and Leasing",
	"54": "Professional, Scientific, and Technical Services",
	"55": "Management of Companies and Enterprises",
	"56": "Administrative and Support",
	"61": "Educational Services",
	"62": "Health Care and Social Assistance",
	"71": "Arts, Entertainment, and Recreation",
	"72": "Accommodation and Food Services",
	"81": "Other Services (except Public Administration)",
	"92": "Public Administration",
}

// SectorName returns the official sector title for a 2-digit prefix, or ""
// when the prefix is not a NAICS sector.
func SectorName(prefix string) string {
	return sectorNames[prefix]
}

// KnownSector reports whether the code's leading two digits form a valid
// NAICS sector. Codes with unknown sectors are flagged for data quality but
// still participate in computation.
func KnownSector(code string) bool {
	_, ok := sectorNames[Sector(code)]
	return ok
}
