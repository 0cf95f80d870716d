package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/intercoder-data/naics.report/internal/agreement"
	"github.com/intercoder-data/naics.report/internal/querysim"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// WriteJSON dumps the complete results to one JSON file.
func WriteJSON(path string, res *Results) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteSummary writes the plain-text executive summary.
func WriteSummary(path string, res *Results) error {
	if err := os.WriteFile(path, []byte(Summary(res)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

const rule = "======================================================================"

// Summary renders the executive summary: the handful of numbers a study
// lead needs, then the recommendations the numbers support. Sections with
// no data are skipped rather than filled with zeros.
func Summary(res *Results) string {
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "NAICS INTERCODER RELIABILITY REPORT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Run:     %s\n", res.RunID)
	fmt.Fprintf(&b, "Started: %s\n", res.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Records: %d kept of %d (%d malformed, %d missing codes)\n",
		res.Quality.KeptRows, res.Quality.TotalRows,
		res.Quality.MalformedCount(), res.Quality.MissingCodes)

	writeKeyMetrics(&b, res)
	writeQuerySection(&b, res)
	writeRiskSection(&b, res)
	writeRecommendations(&b, res)

	return b.String()
}

func writeKeyMetrics(b *strings.Builder, res *Results) {
	fmt.Fprintln(b, "\nKEY METRICS")

	for _, ro := range res.Identification {
		if len(ro.Counts) == 0 || ro.TotalServices == 0 {
			continue
		}
		full := ro.Counts[len(ro.Counts)-1]
		fmt.Fprintf(b, "  Round %d full-panel identification: %.1f%% of %d services\n",
			ro.Round, full.Pct, ro.TotalServices)
	}

	if s, ok := findSegment(res.AgreementNormalized, "Overall"); ok && !s.NoData {
		fmt.Fprintf(b, "  Classification agreement (overall): %.1f%% [%.1f%%, %.1f%%] (n=%d)\n",
			s.Rate.Point*100, s.Rate.Lower*100, s.Rate.Upper*100, s.N)
		fmt.Fprintf(b, "  Majority-or-better share:           %.1f%%\n", s.MajorityShare*100)
	}
	if res.NormalizationImpact.OverlapsBefore > 0 {
		fmt.Fprintf(b, "  Normalization impact:               %+.1fpp (%d -> %d overlaps)\n",
			res.NormalizationImpact.ImprovementPP,
			res.NormalizationImpact.OverlapsBefore, res.NormalizationImpact.OverlapsAfter)
	}

	var jaccardMeans []float64
	for _, c := range res.JaccardContracts {
		if !c.NoData {
			jaccardMeans = append(jaccardMeans, c.Mean)
		}
	}
	if len(jaccardMeans) > 0 {
		fmt.Fprintf(b, "  Mean pairwise Jaccard:              %.3f over %d contracts\n",
			stats.Mean(jaccardMeans), len(jaccardMeans))
	}

	if res.Consistency.Total > 0 {
		fmt.Fprintf(b, "  Cross-contract consistency:         %.1f%% of %d multi-contract services\n",
			res.Consistency.ConsistentPct(), res.Consistency.Total)
	}
}

func writeQuerySection(b *strings.Builder, res *Results) {
	o := res.QueryOverview
	if o.Rows == 0 {
		return
	}
	fmt.Fprintln(b, "\nQUERY SIMULATION")
	fmt.Fprintf(b, "  Union hit rate: %.1f%% of %d scenario-contract pairs\n", o.UnionHitPct, o.Rows)
	fmt.Fprintf(b, "  Average single-coder miss rate: %.1f%%\n", res.AvgMissRate)

	if best, worst, ok := coderExtremes(res); ok {
		fmt.Fprintf(b, "  Best coder:  %s (%.1f%% miss rate)\n", best.Coder, best.MissRate)
		fmt.Fprintf(b, "  Worst coder: %s (%.1f%% miss rate)\n", worst.Coder, worst.MissRate)
	}
}

func writeRiskSection(b *strings.Builder, res *Results) {
	if len(res.QueryCategories) == 0 && len(res.HighRisk) == 0 {
		return
	}
	fmt.Fprintln(b, "\nHIGHEST RISK")

	if len(res.QueryCategories) > 0 {
		worst := res.QueryCategories[0]
		best := res.QueryCategories[len(res.QueryCategories)-1]
		fmt.Fprintf(b, "  Category:   %s (%.1f%% avg miss)\n", worst.Category, worst.Avg)
		fmt.Fprintf(b, "  Lowest:     %s (%.1f%% avg miss)\n", best.Category, best.Avg)
	}
	if d, ok := worstDifficulty(res); ok {
		fmt.Fprintf(b, "  Difficulty: %s (%.1f%% avg miss)\n", d.Difficulty, d.Avg)
	}

	if len(res.HighRisk) > 0 {
		threshold := 20.0
		if res.Config != nil {
			threshold = res.Config.GetHighRiskThresholdPct()
		}
		fmt.Fprintf(b, "  High-risk combinations (>%.0f%% miss rate):\n", threshold)
		for i, cell := range res.HighRisk {
			if i == 5 {
				fmt.Fprintf(b, "    ... and %d more\n", len(res.HighRisk)-5)
				break
			}
			fmt.Fprintf(b, "    - %s + %s: %.1f%%\n", cell.Category, cell.Difficulty, cell.MissRate)
		}
	}
}

func writeRecommendations(b *strings.Builder, res *Results) {
	var recs []string

	if len(res.QueryCategories) > 0 {
		recs = append(recs, fmt.Sprintf("Prioritize handbook updates for: %s", res.QueryCategories[0].Category))
	}
	if d, ok := worstDifficulty(res); ok {
		recs = append(recs, fmt.Sprintf("Consider dual-coding for %s contracts", d.Difficulty))
	}
	if _, worst, ok := coderExtremes(res); ok && worst.MissRate > 0 {
		recs = append(recs, fmt.Sprintf("Targeted training for %s (highest miss rate)", worst.Coder))
	}
	if len(res.QueryCategories) > 1 {
		best := res.QueryCategories[len(res.QueryCategories)-1]
		recs = append(recs, fmt.Sprintf("Low-risk categories (%s) suitable for single-coder production", best.Category))
	}
	if incons := res.Consistency.Inconsistent(); len(incons) > 0 {
		recs = append(recs, fmt.Sprintf("Add handbook guidance for %q (coded %d different ways)",
			incons[0].Service, len(incons[0].PrimaryCodes)))
	}

	if len(recs) == 0 {
		return
	}
	fmt.Fprintln(b, "\nRECOMMENDATIONS")
	for i, rec := range recs {
		fmt.Fprintf(b, "  %d. %s\n", i+1, rec)
	}
}

func findSegment(summaries []agreement.Summary, segment string) (agreement.Summary, bool) {
	for _, s := range summaries {
		if s.Segment == segment {
			return s, true
		}
	}
	return agreement.Summary{}, false
}

func coderExtremes(res *Results) (best, worst querysim.CoderStat, ok bool) {
	for _, c := range res.QueryCoders {
		if c.NoData {
			continue
		}
		if !ok {
			best, worst, ok = c, c, true
			continue
		}
		if c.MissRate < best.MissRate {
			best = c
		}
		if c.MissRate > worst.MissRate {
			worst = c
		}
	}
	return best, worst, ok
}

func worstDifficulty(res *Results) (querysim.DifficultyStat, bool) {
	var out querysim.DifficultyStat
	found := false
	for _, d := range res.QueryDifficulty {
		if !found || d.Avg > out.Avg {
			out = d
			found = true
		}
	}
	return out, found
}
