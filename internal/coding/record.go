// Package coding holds the record model shared by every analysis stage: one
// Record per (contract, coder, round, service) row, grouped into an immutable
// in-memory Dataset.
package coding

import (
	"fmt"
	"strings"

	"github.com/intercoder-data/naics.report/internal/naics"
)

// Difficulty is the contract difficulty tier assigned during sampling.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists the valid tiers in report order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether the difficulty is one of the known tiers.
func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// ParseDifficulty converts a raw field value, tolerating case and padding.
func ParseDifficulty(s string) (Difficulty, error) {
	trimmed := strings.TrimSpace(s)
	for _, v := range Difficulties {
		if strings.EqualFold(trimmed, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Record is one coded row: a coder asserting that a service exists in a
// contract and assigning it a set of NAICS codes. Records are created once at
// ingestion and never mutated afterwards, except to attach the normalized
// service name.
type Record struct {
	Contract          string
	Difficulty        Difficulty
	Round             int
	Coder             string
	ServiceRaw        string
	ServiceNormalized string
	Codes             naics.CodeSet
	Missing           bool
}

// Service returns the normalized name when normalization has run, falling
// back to the raw name.
func (r Record) Service() string {
	if r.ServiceNormalized != "" {
		return r.ServiceNormalized
	}
	return r.ServiceRaw
}

// Eligible reports whether the record participates in set-based computation.
// Missing-code rows are counted for data quality but never compared.
func (r Record) Eligible() bool {
	return !r.Missing && len(r.Codes) > 0
}
