package agreement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intercoder-data/naics.report/internal/coding"
)

// TestDisagreements covers extraction and category assignment.
func TestDisagreements(t *testing.T) {
	t.Parallel()
	ds := coding.NewDataset([]coding.Record{
		// Same sector, different depth: granularity.
		rec("C1", coding.DifficultyEasy, 1, "alice", "Road maintenance", "237310"),
		rec("C1", coding.DifficultyEasy, 1, "bob", "Road maintenance", "237990"),
		// Construction vs facilities support.
		rec("C2", coding.DifficultyMedium, 1, "alice", "Building maintenance", "236220"),
		rec("C2", coding.DifficultyMedium, 1, "bob", "Building maintenance", "561210"),
		// Utilities vs construction.
		rec("C3", coding.DifficultyMedium, 1, "alice", "Sewer maintenance", "221320"),
		rec("C3", coding.DifficultyMedium, 1, "bob", "Sewer maintenance", "237110"),
		// Professional vs public administration.
		rec("C4", coding.DifficultyHard, 2, "alice", "Engineering", "541330"),
		rec("C4", coding.DifficultyHard, 2, "bob", "Engineering", "921130"),
		// Neither named confusion.
		rec("C5", coding.DifficultyHard, 2, "alice", "Recreation", "713940"),
		rec("C5", coding.DifficultyHard, 2, "bob", "Recreation", "488410"),
		// Unanimous, must not appear.
		rec("C6", coding.DifficultyEasy, 1, "alice", "Surveying", "541370"),
		rec("C6", coding.DifficultyEasy, 1, "bob", "Surveying", "541370"),
	})

	disagreements := newTestCalculator().Disagreements(ds, RawService)
	require.Len(t, disagreements, 5)

	byService := make(map[string]Disagreement)
	for _, d := range disagreements {
		byService[d.Service] = d
	}

	road := byService["Road maintenance"]
	assert.True(t, road.SamePrefix)
	assert.Equal(t, CategoryGranularity, road.Category)
	assert.Equal(t, []string{"23"}, road.Prefixes)

	building := byService["Building maintenance"]
	assert.Equal(t, CategoryConstructionAdmin, building.Category)
	assert.Equal(t, []string{"23", "56"}, building.Prefixes)

	sewer := byService["Sewer maintenance"]
	assert.Equal(t, CategoryUtilitiesConstruction, sewer.Category)

	engineering := byService["Engineering"]
	assert.Equal(t, CategoryProfessionalPublic, engineering.Category)

	recreation := byService["Recreation"]
	assert.Equal(t, CategoryOther, recreation.Category)
	assert.Equal(t, OutcomeSplit, recreation.Outcome)
}

// TestDisagreementsUsePrimaryCode: secondary codes do not add prefixes.
func TestDisagreementsUsePrimaryCode(t *testing.T) {
	t.Parallel()
	ds := coding.NewDataset([]coding.Record{
		rec("C1", coding.DifficultyEasy, 1, "alice", "Road maintenance", "237310", "922120"),
		rec("C1", coding.DifficultyEasy, 1, "bob", "Road maintenance", "237990"),
	})

	disagreements := newTestCalculator().Disagreements(ds, RawService)
	require.Len(t, disagreements, 1)
	assert.Equal(t, []string{"23"}, disagreements[0].Prefixes)
	assert.Equal(t, CategoryGranularity, disagreements[0].Category)
}

// TestTaxonomy checks the distribution and the substantive split.
func TestTaxonomy(t *testing.T) {
	t.Parallel()

	disagreements := []Disagreement{
		{Category: CategoryGranularity},
		{Category: CategoryGranularity},
		{Category: CategoryGranularity},
		{Category: CategoryConstructionAdmin},
		{Category: CategoryOther},
	}
	report := Taxonomy(disagreements)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.Granularity)
	assert.Equal(t, 2, report.Substantive)
	require.NotEmpty(t, report.Categories)
	assert.Equal(t, CategoryGranularity, report.Categories[0].Category)
	assert.Equal(t, 3, report.Categories[0].Count)
	assert.InDelta(t, 60.0, report.Categories[0].Pct, 1e-9)
}

func TestTaxonomyEmpty(t *testing.T) {
	t.Parallel()
	report := Taxonomy(nil)
	assert.Zero(t, report.Total)
	assert.Empty(t, report.Categories)
}

// TestConfusion checks pair tallies and ordering.
func TestConfusion(t *testing.T) {
	t.Parallel()

	disagreements := []Disagreement{
		{Prefixes: []string{"23", "56"}},
		{Prefixes: []string{"23", "56"}},
		{Prefixes: []string{"22", "23"}},
		{Prefixes: []string{"22", "23", "56"}},
	}
	pairs := Confusion(disagreements)
	require.NotEmpty(t, pairs)

	assert.Equal(t, "23", pairs[0].PrefixA)
	assert.Equal(t, "56", pairs[0].PrefixB)
	assert.Equal(t, 3, pairs[0].Count)
	assert.Equal(t, "Construction", pairs[0].NameA)

	// The three-way split contributes all three of its pairs.
	byPair := make(map[string]int)
	for _, p := range pairs {
		byPair[p.PrefixA+"-"+p.PrefixB] = p.Count
	}
	assert.Equal(t, 2, byPair["22-23"])
	assert.Equal(t, 1, byPair["22-56"])
}

// TestConsistency covers the cross-contract primary-code check.
func TestConsistency(t *testing.T) {
	t.Parallel()
	ds := coding.NewDataset([]coding.Record{
		// Same primary everywhere: consistent.
		rec("C1", coding.DifficultyEasy, 1, "alice", "Road maintenance", "237310"),
		rec("C2", coding.DifficultyEasy, 1, "bob", "Road maintenance", "237310", "238990"),
		// Different primaries across contracts: inconsistent.
		rec("C1", coding.DifficultyEasy, 1, "bob", "Mechanic", "811111"),
		rec("C3", coding.DifficultyHard, 2, "carol", "Mechanic", "811310"),
		// Only one contract: out of scope.
		rec("C1", coding.DifficultyEasy, 1, "carol", "Surveying", "541370"),
	})

	report := Consistency(ds, RawService)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Consistent)
	assert.InDelta(t, 50.0, report.ConsistentPct(), 1e-9)

	inconsistent := report.Inconsistent()
	require.Len(t, inconsistent, 1)
	assert.Equal(t, "Mechanic", inconsistent[0].Service)
	assert.Equal(t, []string{"811111", "811310"}, inconsistent[0].PrimaryCodes)
	assert.Equal(t, []string{"C1", "C3"}, inconsistent[0].Contracts)
}

func TestConsistencyEmpty(t *testing.T) {
	t.Parallel()
	report := Consistency(coding.NewDataset(nil), RawService)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.ConsistentPct())
}
