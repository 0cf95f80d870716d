package agreement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/naics"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// rec builds a coding record for tests. No codes marks the row missing.
func rec(contract string, diff coding.Difficulty, round int, coder, service string, codes ...string) coding.Record {
	r := coding.Record{
		Contract:   contract,
		Difficulty: diff,
		Round:      round,
		Coder:      coder,
		ServiceRaw: service,
	}
	if len(codes) == 0 {
		r.Missing = true
	} else {
		r.Codes = naics.CodeSet(codes)
	}
	return r
}

func newTestCalculator() *Calculator {
	return NewCalculator(2, stats.DefaultEstimator())
}

// TestOverlaps covers grouping, the distinct-coder threshold, and missing-row
// identification.
func TestOverlaps(t *testing.T) {
	t.Parallel()

	t.Run("groups by contract round and service", func(t *testing.T) {
		t.Parallel()
		ds := coding.NewDataset([]coding.Record{
			rec("C1", coding.DifficultyEasy, 1, "bob", "Road maintenance", "237310"),
			rec("C1", coding.DifficultyEasy, 1, "alice", "Road maintenance", "237310", "237"),
			rec("C1", coding.DifficultyEasy, 1, "alice", "Road maintenance", "238990"),
			rec("C2", coding.DifficultyHard, 2, "alice", "Road maintenance", "237310"),
		})

		groups := newTestCalculator().Overlaps(ds, RawService)
		require.Len(t, groups, 1)

		g := groups[0]
		assert.Equal(t, "C1", g.Contract)
		assert.Equal(t, []string{"alice", "bob"}, g.Coders)
		// alice's two rows merge into one set preserving first occurrence
		assert.Equal(t, naics.CodeSet{"237310", "237", "238990"}, g.Codes["alice"])
		assert.Equal(t, naics.CodeSet{"237310"}, g.Codes["bob"])
	})

	t.Run("one coder twice is not an overlap", func(t *testing.T) {
		t.Parallel()
		ds := coding.NewDataset([]coding.Record{
			rec("C1", coding.DifficultyEasy, 1, "alice", "Mechanic", "811111"),
			rec("C1", coding.DifficultyEasy, 1, "alice", "Mechanic", "811310"),
		})
		assert.Empty(t, newTestCalculator().Overlaps(ds, RawService))
	})

	t.Run("missing rows identify but do not code", func(t *testing.T) {
		t.Parallel()
		ds := coding.NewDataset([]coding.Record{
			rec("C1", coding.DifficultyEasy, 1, "alice", "Mechanic", "811111"),
			rec("C1", coding.DifficultyEasy, 1, "bob", "Mechanic"),
		})

		groups := newTestCalculator().Overlaps(ds, RawService)
		require.Len(t, groups, 1)
		assert.Equal(t, []string{"alice", "bob"}, groups[0].Coders)
		assert.False(t, groups[0].Comparable())
	})
}

// TestGroupOutcome covers the unanimity ladder over coded coders.
func TestGroupOutcome(t *testing.T) {
	t.Parallel()

	group := func(codes map[string]naics.CodeSet) Group {
		return Group{Contract: "C1", Service: "Mechanic", Codes: codes}
	}

	t.Run("unanimous is order independent", func(t *testing.T) {
		t.Parallel()
		g := group(map[string]naics.CodeSet{
			"alice": {"237310", "922120"},
			"bob":   {"922120", "237310"},
		})
		outcome, ok := g.Outcome()
		require.True(t, ok)
		assert.Equal(t, OutcomeUnanimous, outcome)
	})

	t.Run("two of three is majority", func(t *testing.T) {
		t.Parallel()
		g := group(map[string]naics.CodeSet{
			"alice": {"237310"},
			"bob":   {"237310"},
			"carol": {"561730"},
		})
		outcome, ok := g.Outcome()
		require.True(t, ok)
		assert.Equal(t, OutcomeMajority, outcome)
	})

	t.Run("all distinct is split", func(t *testing.T) {
		t.Parallel()
		g := group(map[string]naics.CodeSet{
			"alice": {"237310"},
			"bob":   {"922120"},
			"carol": {"561730"},
		})
		outcome, ok := g.Outcome()
		require.True(t, ok)
		assert.Equal(t, OutcomeSplit, outcome)
	})

	t.Run("one coded coder is not comparable", func(t *testing.T) {
		t.Parallel()
		g := group(map[string]naics.CodeSet{"alice": {"237310"}})
		_, ok := g.Outcome()
		assert.False(t, ok)
	})
}

// TestRate covers the headline rate, majority share, and no-data handling.
func TestRate(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator()

	t.Run("all unanimous scores one", func(t *testing.T) {
		t.Parallel()
		groups := []Group{
			{Codes: map[string]naics.CodeSet{"a": {"237310"}, "b": {"237310"}}},
			{Codes: map[string]naics.CodeSet{"a": {"922120"}, "b": {"922120"}}},
		}
		s := calc.Rate("Overall", groups)
		require.False(t, s.NoData)
		assert.Equal(t, 2, s.N)
		assert.Equal(t, 2, s.Agreements)
		assert.InDelta(t, 1.0, s.Rate.Point, 1e-9)
		assert.InDelta(t, 1.0, s.MajorityShare, 1e-9)
	})

	t.Run("majority counts toward share not rate", func(t *testing.T) {
		t.Parallel()
		groups := []Group{
			{Codes: map[string]naics.CodeSet{"a": {"237310"}, "b": {"237310"}}},
			{Codes: map[string]naics.CodeSet{"a": {"237310"}, "b": {"237310"}, "c": {"561730"}}},
		}
		s := calc.Rate("Overall", groups)
		require.False(t, s.NoData)
		assert.Equal(t, 2, s.N)
		assert.Equal(t, 1, s.Agreements)
		assert.Equal(t, 1, s.Majority)
		assert.InDelta(t, 0.5, s.Rate.Point, 1e-9)
		assert.InDelta(t, 1.0, s.MajorityShare, 1e-9)
	})

	t.Run("rate stays within zero and one", func(t *testing.T) {
		t.Parallel()
		groups := []Group{
			{Codes: map[string]naics.CodeSet{"a": {"237310"}, "b": {"561730"}}},
			{Codes: map[string]naics.CodeSet{"a": {"237310"}, "b": {"237310"}}},
		}
		s := calc.Rate("Overall", groups)
		require.False(t, s.NoData)
		assert.GreaterOrEqual(t, s.Rate.Point, 0.0)
		assert.LessOrEqual(t, s.Rate.Point, 1.0)
		assert.GreaterOrEqual(t, s.Rate.Lower, 0.0)
		assert.LessOrEqual(t, s.Rate.Upper, 1.0)
	})

	t.Run("no comparable groups reports no data", func(t *testing.T) {
		t.Parallel()
		s := calc.Rate("Hard", nil)
		assert.True(t, s.NoData)
		assert.Zero(t, s.N)
	})
}

// TestAgreementIgnoresNonIdentifyingCoder: a third coder who never mentions
// the service has no effect on the pair that did.
func TestAgreementIgnoresNonIdentifyingCoder(t *testing.T) {
	t.Parallel()
	ds := coding.NewDataset([]coding.Record{
		rec("C1", coding.DifficultyEasy, 1, "alice", "Road maintenance", "237310"),
		rec("C1", coding.DifficultyEasy, 1, "bob", "Road maintenance", "237310"),
		rec("C1", coding.DifficultyEasy, 1, "carol", "Groundskeeper", "561730"),
	})

	calc := newTestCalculator()
	groups := calc.Overlaps(ds, RawService)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"alice", "bob"}, groups[0].Coders)

	s := calc.Rate("Overall", groups)
	assert.Equal(t, 1, s.N)
	assert.Equal(t, 1, s.Agreements)
	assert.InDelta(t, 1.0, s.Rate.Point, 1e-9)
}

// TestMatrix checks segment enumeration and empty-segment flagging.
func TestMatrix(t *testing.T) {
	t.Parallel()
	ds := coding.NewDataset([]coding.Record{
		rec("C1", coding.DifficultyEasy, 1, "alice", "Mechanic", "811111"),
		rec("C1", coding.DifficultyEasy, 1, "bob", "Mechanic", "811111"),
		rec("C2", coding.DifficultyHard, 2, "alice", "Recreation", "713940"),
		rec("C2", coding.DifficultyHard, 2, "bob", "Recreation", "712190"),
	})

	matrix := newTestCalculator().Matrix(ds, RawService)

	bySegment := make(map[string]Summary)
	for _, s := range matrix {
		bySegment[s.Segment] = s
	}

	overall := bySegment["Overall"]
	require.False(t, overall.NoData)
	assert.Equal(t, 2, overall.N)
	assert.InDelta(t, 0.5, overall.Rate.Point, 1e-9)

	assert.InDelta(t, 1.0, bySegment["Round 1"].Rate.Point, 1e-9)
	assert.InDelta(t, 0.0, bySegment["Round 2"].Rate.Point, 1e-9)
	assert.InDelta(t, 1.0, bySegment["Easy"].Rate.Point, 1e-9)
	assert.InDelta(t, 0.0, bySegment["Hard"].Rate.Point, 1e-9)

	// No Medium contracts anywhere, so the segment is flagged, not zero.
	assert.True(t, bySegment["Medium"].NoData)
	assert.True(t, bySegment["R1 Hard"].NoData)
	assert.False(t, bySegment["R1 Easy"].NoData)
}

// TestCompareNormalization: folding name variants both creates overlaps and
// moves the rate.
func TestCompareNormalization(t *testing.T) {
	t.Parallel()
	ds := coding.NewDataset([]coding.Record{
		// Same service under two raw names, identical codes: only visible
		// as an overlap after normalization.
		rec("C1", coding.DifficultyEasy, 1, "alice", "Road maintenance", "237310"),
		rec("C1", coding.DifficultyEasy, 1, "bob", "Road related", "237310"),
		// Exact raw-name overlap with a real disagreement.
		rec("C2", coding.DifficultyMedium, 1, "alice", "Mechanic", "811111"),
		rec("C2", coding.DifficultyMedium, 1, "bob", "Mechanic", "811310"),
	})
	ds.SetNormalized(func(name string) string {
		if name == "Road related" {
			return "Road maintenance"
		}
		return name
	})

	comp := newTestCalculator().CompareNormalization(ds)

	assert.Equal(t, 1, comp.OverlapsBefore)
	assert.Equal(t, 2, comp.OverlapsAfter)
	require.False(t, comp.Before.NoData)
	require.False(t, comp.After.NoData)
	assert.InDelta(t, 0.0, comp.Before.Rate.Point, 1e-9)
	assert.InDelta(t, 0.5, comp.After.Rate.Point, 1e-9)
	assert.InDelta(t, 50.0, comp.ImprovementPP, 1e-9)
}

// TestIdentification checks the per-round coder-count distribution.
func TestIdentification(t *testing.T) {
	t.Parallel()
	ds := coding.NewDataset([]coding.Record{
		rec("C1", coding.DifficultyEasy, 1, "alice", "Road maintenance", "237310"),
		rec("C1", coding.DifficultyEasy, 1, "bob", "Road maintenance", "237310"),
		rec("C1", coding.DifficultyEasy, 1, "carol", "Road maintenance", "237"),
		rec("C1", coding.DifficultyEasy, 1, "alice", "Surveying", "541370"),
		rec("C2", coding.DifficultyHard, 2, "bob", "Recreation", "713940"),
		rec("C2", coding.DifficultyHard, 2, "carol", "Recreation", "713940"),
	})

	rounds := Identification(ds, RawService)
	require.Len(t, rounds, 2)

	r1 := rounds[0]
	assert.Equal(t, 1, r1.Round)
	assert.Equal(t, 2, r1.TotalServices)
	require.Len(t, r1.Counts, 3)
	assert.Equal(t, 1, r1.Counts[0].Services) // one service seen by 1 coder
	assert.Equal(t, 0, r1.Counts[1].Services)
	assert.Equal(t, 1, r1.Counts[2].Services) // one service seen by all 3
	assert.InDelta(t, 50.0, r1.Counts[2].Pct, 1e-9)

	r2 := rounds[1]
	assert.Equal(t, 2, r2.Round)
	assert.Equal(t, 1, r2.TotalServices)
	assert.Equal(t, 1, r2.Counts[1].Services) // the 2-coder bucket
}

// TestPairwise checks per-pair outcome accumulation.
func TestPairwise(t *testing.T) {
	t.Parallel()
	ds := coding.NewDataset([]coding.Record{
		rec("C1", coding.DifficultyEasy, 1, "alice", "Mechanic", "811111"),
		rec("C1", coding.DifficultyEasy, 1, "bob", "Mechanic", "811111"),
		rec("C1", coding.DifficultyEasy, 1, "carol", "Mechanic", "811310"),
		rec("C2", coding.DifficultyEasy, 1, "alice", "Surveying", "541370"),
		rec("C2", coding.DifficultyEasy, 1, "bob", "Surveying", "541330"),
	})

	pairs := newTestCalculator().Pairwise(ds, RawService)
	require.Len(t, pairs, 3)

	byPair := make(map[string]PairSummary)
	for _, p := range pairs {
		byPair[p.Pair()] = p
	}

	ab := byPair["alice-bob"]
	assert.Equal(t, 2, ab.N)
	assert.InDelta(t, 0.5, ab.Rate.Point, 1e-9)

	ac := byPair["alice-carol"]
	assert.Equal(t, 1, ac.N)
	assert.InDelta(t, 0.0, ac.Rate.Point, 1e-9)

	bc := byPair["bob-carol"]
	assert.Equal(t, 1, bc.N)
	assert.InDelta(t, 0.0, bc.Rate.Point, 1e-9)
}
