package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/intercoder-data/naics.report/internal/agreement"
	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/jaccard"
	"github.com/intercoder-data/naics.report/internal/querysim"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// summaryFixture is assembled by hand so every rendered line is predictable.
func summaryFixture() *Results {
	return &Results{
		RunID:     "8e6c9442-9f0a-4c4e-9be1-5b9ce0a1d2f3",
		StartedAt: time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC),
		Quality: coding.Quality{
			TotalRows: 10, KeptRows: 9, MissingCodes: 1,
			MalformedRows: []coding.ParseIssue{{Row: 3, Reason: "non-integer round"}},
		},
		Identification: []agreement.RoundOverlap{
			{Round: 1, TotalServices: 20, Counts: []agreement.CoderCount{
				{Coders: 1, Services: 8, Pct: 40},
				{Coders: 2, Services: 5, Pct: 25},
				{Coders: 3, Services: 7, Pct: 35},
			}},
		},
		AgreementNormalized: []agreement.Summary{
			{Segment: "Overall", Rate: stats.Interval{Point: 0.125, Lower: 0.05, Upper: 0.20, N: 48},
				N: 48, MajorityShare: 0.4583},
		},
		NormalizationImpact: agreement.Comparison{
			OverlapsBefore: 40, OverlapsAfter: 48, ImprovementPP: 6.2,
		},
		JaccardContracts: []jaccard.ContractSummary{
			{Contract: "K-1", Mean: 0.4},
			{Contract: "K-2", Mean: 0.6},
			{Contract: "K-3", NoData: true},
		},
		Consistency: agreement.ConsistencyReport{
			Total: 11, Consistent: 7,
			Services: []agreement.ServiceConsistency{
				{Service: "Snow removal", PrimaryCodes: []string{"237310", "488490"}},
			},
		},
		QueryOverview: querysim.Overview{Scenarios: 2, Contracts: 3, Rows: 6, UnionHits: 4, UnionHitPct: 66.67},
		AvgMissRate:   28.1,
		QueryCoders: []querysim.CoderStat{
			{Coder: "alice", MissRate: 12.5},
			{Coder: "bob", MissRate: 45},
			{Coder: "carol", MissRate: 20},
		},
		QueryCategories: []querysim.CategoryStat{
			{Category: "Public Admin", Avg: 38.2},
			{Category: "Construction", Avg: 5.1},
		},
		QueryDifficulty: []querysim.DifficultyStat{
			{Difficulty: coding.DifficultyEasy, Avg: 10},
			{Difficulty: coding.DifficultyHard, Avg: 41},
		},
		HighRisk: []querysim.HighRiskCell{
			{Category: "Public Admin", Difficulty: coding.DifficultyHard, MissRate: 55},
		},
	}
}

func TestSummaryRendersEverySection(t *testing.T) {
	got := Summary(summaryFixture())

	wantLines := []string{
		"NAICS INTERCODER RELIABILITY REPORT",
		"Run:     8e6c9442-9f0a-4c4e-9be1-5b9ce0a1d2f3",
		"Records: 9 kept of 10 (1 malformed, 1 missing codes)",
		"Round 1 full-panel identification: 35.0% of 20 services",
		"Classification agreement (overall): 12.5% [5.0%, 20.0%] (n=48)",
		"+6.2pp (40 -> 48 overlaps)",
		"Mean pairwise Jaccard:              0.500 over 2 contracts",
		"Cross-contract consistency:         63.6% of 11 multi-contract services",
		"Union hit rate: 66.7% of 6 scenario-contract pairs",
		"Average single-coder miss rate: 28.1%",
		"Best coder:  alice (12.5% miss rate)",
		"Worst coder: bob (45.0% miss rate)",
		"Category:   Public Admin (38.2% avg miss)",
		"Lowest:     Construction (5.1% avg miss)",
		"Difficulty: Hard (41.0% avg miss)",
		"High-risk combinations (>20% miss rate):",
		"- Public Admin + Hard: 55.0%",
		"1. Prioritize handbook updates for: Public Admin",
		"2. Consider dual-coding for Hard contracts",
		"3. Targeted training for bob (highest miss rate)",
		"4. Low-risk categories (Construction) suitable for single-coder production",
		`5. Add handbook guidance for "Snow removal" (coded 2 different ways)`,
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\n\nfull text:\n%s", want, got)
		}
	}
}

func TestSummaryEmptyResults(t *testing.T) {
	got := Summary(&Results{})

	if !strings.Contains(got, "NAICS INTERCODER RELIABILITY REPORT") {
		t.Error("summary missing title")
	}
	for _, absent := range []string{"QUERY SIMULATION", "HIGHEST RISK", "RECOMMENDATIONS"} {
		if strings.Contains(got, absent) {
			t.Errorf("empty results rendered %s section:\n%s", absent, got)
		}
	}
}

func TestSummarySkipsNoDataJaccard(t *testing.T) {
	res := &Results{
		JaccardContracts: []jaccard.ContractSummary{{Contract: "K-1", NoData: true}},
	}
	if got := Summary(res); strings.Contains(got, "Jaccard") {
		t.Errorf("all-NoData contracts still rendered a Jaccard line:\n%s", got)
	}
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	if err := WriteSummary(path, summaryFixture()); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(data), "RECOMMENDATIONS") {
		t.Error("written summary missing recommendations")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	res := runFixture(t)
	path := filepath.Join(t.TempDir(), "results.json")

	if err := WriteJSON(path, res); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}

	var back Results
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal results: %v", err)
	}
	if back.RunID != res.RunID {
		t.Errorf("RunID = %q, want %q", back.RunID, res.RunID)
	}
	if diff := cmp.Diff(res.QueryCoders, back.QueryCoders); diff != "" {
		t.Errorf("query coder stats changed in round trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(res.Quality, back.Quality); diff != "" {
		t.Errorf("quality changed in round trip (-want +got):\n%s", diff)
	}
}

func TestWriteJSONBadPath(t *testing.T) {
	res := &Results{}
	err := WriteJSON(filepath.Join(t.TempDir(), "missing", "results.json"), res)
	if err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}
