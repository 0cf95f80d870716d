package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/intercoder-data/naics.report/internal/agreement"
	"github.com/intercoder-data/naics.report/internal/monitoring"
	"github.com/intercoder-data/naics.report/internal/naics"
	"github.com/intercoder-data/naics.report/internal/stats"
)

// WriteCSVs writes one CSV file per result table into dir, creating the
// directory if needed. Agreement and Jaccard tables carry fractions; query
// simulation tables carry percentages, matching how each surface is read.
func WriteCSVs(dir string, res *Results) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"normalization_merges.csv", mergeHeader, mergeRows(res)},
		{"identification.csv", identificationHeader, identificationRows(res)},
		{"agreement_raw.csv", agreementHeader, agreementRows(res.AgreementRaw)},
		{"agreement_normalized.csv", agreementHeader, agreementRows(res.AgreementNormalized)},
		{"normalization_impact.csv", impactHeader, impactRows(res)},
		{"pairwise_agreement.csv", pairwiseHeader, pairwiseRows(res)},
		{"disagreements.csv", disagreementHeader, disagreementRows(res)},
		{"disagreement_taxonomy.csv", taxonomyHeader, taxonomyRows(res)},
		{"prefix_confusion.csv", confusionHeader, confusionRows(res)},
		{"consistency.csv", consistencyHeader, consistencyRows(res)},
		{"jaccard_contracts.csv", jacContractHeader, jacContractRows(res)},
		{"jaccard_by_difficulty.csv", jacDifficultyHeader, jacDifficultyRows(res)},
		{"jaccard_by_round.csv", jacRoundHeader, jacRoundRows(res)},
		{"jaccard_pairs.csv", jacPairHeader, jacPairRows(res)},
		{"coder_profiles.csv", profileHeader, profileRows(res)},
		{"coder_tendencies.csv", tendencyHeader, tendencyRows(res)},
		{"query_overview.csv", queryOverviewHeader, queryOverviewRows(res)},
		{"query_per_coder.csv", queryCoderHeader, queryCoderRows(res)},
		{"query_by_category.csv", queryCategoryHeader, queryCategoryRows(res)},
		{"query_by_difficulty.csv", queryDifficultyHeader, queryDifficultyRows(res)},
		{"query_category_difficulty.csv", queryCatDiffHeader, queryCatDiffRows(res)},
		{"query_coder_category.csv", queryCoderCatHeader, queryCoderCatRows(res)},
		{"query_worst_performers.csv", worstHeader, worstRows(res)},
		{"query_by_contract.csv", queryContractHeader, queryContractRows(res)},
		{"query_by_scenario.csv", queryScenarioHeader, queryScenarioRows(res)},
		{"query_risk.csv", riskHeader, riskRows(res)},
		{"query_high_risk.csv", highRiskHeader, highRiskRows(res)},
		{"data_quality.csv", qualityHeader, qualityRows(res)},
	}

	for _, tbl := range tables {
		if err := writeTable(dir, tbl.name, tbl.header, tbl.rows); err != nil {
			return err
		}
	}
	monitoring.Stagef("report", "wrote %d CSV tables to %s", len(tables), dir)
	return nil
}

func writeTable(dir, name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	w := csv.NewWriter(f)
	w.Write(header)
	for _, row := range rows {
		w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

func f4(v float64) string { return fmt.Sprintf("%.4f", v) }
func f2(v float64) string { return fmt.Sprintf("%.2f", v) }
func itoa(v int) string   { return strconv.Itoa(v) }

// interval4 renders a fraction interval, blank when the grouping had no data.
func interval4(iv stats.Interval, noData bool) (point, lower, upper string) {
	if noData {
		return "", "", ""
	}
	return f4(iv.Point), f4(iv.Lower), f4(iv.Upper)
}

// interval2 renders a percent interval, blank when the grouping had no data.
func interval2(iv stats.Interval, noData bool) (point, lower, upper string) {
	if noData {
		return "", "", ""
	}
	return f2(iv.Point), f2(iv.Lower), f2(iv.Upper)
}

var mergeHeader = []string{"canonical", "members", "member_count"}

func mergeRows(res *Results) [][]string {
	var rows [][]string
	for _, m := range res.Merges {
		rows = append(rows, []string{m.Canonical, strings.Join(m.Members, "; "), itoa(len(m.Members))})
	}
	return rows
}

var identificationHeader = []string{"round", "coders", "services", "pct"}

func identificationRows(res *Results) [][]string {
	var rows [][]string
	for _, ro := range res.Identification {
		for _, c := range ro.Counts {
			rows = append(rows, []string{itoa(ro.Round), itoa(c.Coders), itoa(c.Services), f2(c.Pct)})
		}
	}
	return rows
}

var agreementHeader = []string{"segment", "n", "agreements", "majority", "majority_share", "rate", "ci_lower", "ci_upper", "no_data"}

func agreementRows(summaries []agreement.Summary) [][]string {
	var rows [][]string
	for _, s := range summaries {
		point, lower, upper := interval4(s.Rate, s.NoData)
		rows = append(rows, []string{
			s.Segment, itoa(s.N), itoa(s.Agreements), itoa(s.Majority),
			f4(s.MajorityShare), point, lower, upper, strconv.FormatBool(s.NoData),
		})
	}
	return rows
}

var impactHeader = []string{"overlaps_before", "overlaps_after", "rate_before", "rate_after", "improvement_pp"}

func impactRows(res *Results) [][]string {
	c := res.NormalizationImpact
	before, _, _ := interval4(c.Before.Rate, c.Before.NoData)
	after, _, _ := interval4(c.After.Rate, c.After.NoData)
	return [][]string{{
		itoa(c.OverlapsBefore), itoa(c.OverlapsAfter), before, after, f2(c.ImprovementPP),
	}}
}

var pairwiseHeader = []string{"pair", "coder_a", "coder_b", "n", "rate", "ci_lower", "ci_upper"}

func pairwiseRows(res *Results) [][]string {
	var rows [][]string
	for _, p := range res.Pairwise {
		point, lower, upper := interval4(p.Rate, false)
		rows = append(rows, []string{p.Pair(), p.CoderA, p.CoderB, itoa(p.N), point, lower, upper})
	}
	return rows
}

var disagreementHeader = []string{"contract", "round", "difficulty", "service", "outcome", "category", "same_prefix", "prefixes", "codes"}

func disagreementRows(res *Results) [][]string {
	var rows [][]string
	for _, d := range res.Disagreements {
		codes := make([]string, 0, len(d.Coders))
		for _, coder := range d.Coders {
			codes = append(codes, coder+"="+strings.Join(d.Codes[coder], "|"))
		}
		rows = append(rows, []string{
			d.Contract, itoa(d.Round), string(d.Difficulty), d.Service, string(d.Outcome),
			string(d.Category), strconv.FormatBool(d.SamePrefix),
			strings.Join(d.Prefixes, "; "), strings.Join(codes, "; "),
		})
	}
	return rows
}

var taxonomyHeader = []string{"category", "count", "pct"}

func taxonomyRows(res *Results) [][]string {
	var rows [][]string
	for _, c := range res.Taxonomy.Categories {
		rows = append(rows, []string{string(c.Category), itoa(c.Count), f2(c.Pct)})
	}
	return rows
}

var confusionHeader = []string{"prefix_a", "sector_a", "prefix_b", "sector_b", "count"}

func confusionRows(res *Results) [][]string {
	var rows [][]string
	for _, p := range res.Confusion {
		rows = append(rows, []string{p.PrefixA, p.NameA, p.PrefixB, p.NameB, itoa(p.Count)})
	}
	return rows
}

var consistencyHeader = []string{"service", "n_contracts", "contracts", "n_primary_codes", "primary_codes", "consistent"}

func consistencyRows(res *Results) [][]string {
	var rows [][]string
	for _, s := range res.Consistency.Services {
		rows = append(rows, []string{
			s.Service, itoa(len(s.Contracts)), strings.Join(s.Contracts, "; "),
			itoa(len(s.PrimaryCodes)), strings.Join(s.PrimaryCodes, "; "),
			strconv.FormatBool(s.Consistent),
		})
	}
	return rows
}

var jacContractHeader = []string{"contract", "difficulty", "round", "mean", "min", "pairs", "no_data"}

func jacContractRows(res *Results) [][]string {
	var rows [][]string
	for _, c := range res.JaccardContracts {
		mean, min := "", ""
		if !c.NoData {
			mean, min = f4(c.Mean), f4(c.Min)
		}
		pairs := make([]string, 0, len(c.Pairs))
		for _, p := range c.Pairs {
			pairs = append(pairs, fmt.Sprintf("%s-%s=%.4f", p.CoderA, p.CoderB, p.Score))
		}
		rows = append(rows, []string{
			c.Contract, string(c.Difficulty), itoa(c.Round), mean, min,
			strings.Join(pairs, "; "), strconv.FormatBool(c.NoData),
		})
	}
	return rows
}

var jacDifficultyHeader = []string{"difficulty", "contracts", "mean", "ci_lower", "ci_upper", "no_data"}

func jacDifficultyRows(res *Results) [][]string {
	var rows [][]string
	for _, d := range res.JaccardByDifficulty {
		point, lower, upper := interval4(d.Mean, d.NoData)
		rows = append(rows, []string{
			string(d.Difficulty), itoa(d.Contracts), point, lower, upper, strconv.FormatBool(d.NoData),
		})
	}
	return rows
}

var jacRoundHeader = []string{"round", "contracts", "mean", "ci_lower", "ci_upper", "no_data"}

func jacRoundRows(res *Results) [][]string {
	var rows [][]string
	for _, r := range res.JaccardByRound {
		point, lower, upper := interval4(r.Mean, r.NoData)
		rows = append(rows, []string{
			itoa(r.Round), itoa(r.Contracts), point, lower, upper, strconv.FormatBool(r.NoData),
		})
	}
	return rows
}

var jacPairHeader = []string{"coder_a", "coder_b", "contracts", "mean", "ci_lower", "ci_upper"}

func jacPairRows(res *Results) [][]string {
	var rows [][]string
	for _, p := range res.JaccardPairs {
		point, lower, upper := interval4(p.Mean, false)
		rows = append(rows, []string{p.CoderA, p.CoderB, itoa(p.Contracts), point, lower, upper})
	}
	return rows
}

var profileHeader = []string{"coder", "rows", "prefix", "sector", "pct"}

func profileRows(res *Results) [][]string {
	var rows [][]string
	if res.Profiles == nil {
		return rows
	}
	for _, p := range res.Profiles.Coders {
		prefixes := make([]string, 0, len(p.PrefixPct))
		for prefix := range p.PrefixPct {
			prefixes = append(prefixes, prefix)
		}
		sort.Strings(prefixes)
		for _, prefix := range prefixes {
			rows = append(rows, []string{
				p.Coder, itoa(p.Rows), prefix, naics.SectorName(prefix), f2(p.PrefixPct[prefix]),
			})
		}
	}
	return rows
}

var tendencyHeader = []string{"coder", "prefix", "sector", "pct", "group_mean", "delta_pp", "direction"}

func tendencyRows(res *Results) [][]string {
	var rows [][]string
	for _, t := range res.Tendencies {
		direction := "underuses"
		if t.Favors {
			direction = "favors"
		}
		rows = append(rows, []string{
			t.Coder, t.Prefix, naics.SectorName(t.Prefix),
			f2(t.Pct), f2(t.GroupMean), f2(t.DeltaPP), direction,
		})
	}
	return rows
}

var queryOverviewHeader = []string{"scenarios", "contracts", "rows", "union_hits", "union_hit_pct"}

func queryOverviewRows(res *Results) [][]string {
	o := res.QueryOverview
	return [][]string{{itoa(o.Scenarios), itoa(o.Contracts), itoa(o.Rows), itoa(o.UnionHits), f2(o.UnionHitPct)}}
}

var queryCoderHeader = []string{"coder", "hits", "misses", "miss_rate_pct", "ci_lower", "ci_upper", "no_data"}

func queryCoderRows(res *Results) [][]string {
	var rows [][]string
	for _, c := range res.QueryCoders {
		_, lower, upper := interval2(c.CI, c.NoData)
		rows = append(rows, []string{
			c.Coder, itoa(c.Hits), itoa(c.Misses), f2(c.MissRate), lower, upper, strconv.FormatBool(c.NoData),
		})
	}
	return rows
}

var queryCategoryHeader = []string{"category", "n_queries", "union_hits", "avg_miss_pct", "max_miss_pct", "min_miss_pct", "range_pp", "ci_lower", "ci_upper"}

func queryCategoryRows(res *Results) [][]string {
	var rows [][]string
	for _, c := range res.QueryCategories {
		_, lower, upper := interval2(c.CI, false)
		rows = append(rows, []string{
			c.Category, itoa(c.NQueries), itoa(c.UnionHits),
			f2(c.Avg), f2(c.Max), f2(c.Min), f2(c.Range), lower, upper,
		})
	}
	return rows
}

var queryDifficultyHeader = []string{"difficulty", "n_contracts", "union_hits", "avg_miss_pct", "ci_lower", "ci_upper"}

func queryDifficultyRows(res *Results) [][]string {
	var rows [][]string
	for _, d := range res.QueryDifficulty {
		_, lower, upper := interval2(d.CI, false)
		rows = append(rows, []string{
			string(d.Difficulty), itoa(d.NContracts), itoa(d.UnionHits), f2(d.Avg), lower, upper,
		})
	}
	return rows
}

var queryCatDiffHeader = []string{"category", "difficulty", "union_hits", "avg_miss_pct"}

func queryCatDiffRows(res *Results) [][]string {
	var rows [][]string
	for _, c := range res.QueryCategoryDifficulty {
		rows = append(rows, []string{c.Category, string(c.Difficulty), itoa(c.UnionHits), f2(c.Avg)})
	}
	return rows
}

var queryCoderCatHeader = []string{"category", "coder", "union_hits", "misses", "miss_rate_pct"}

func queryCoderCatRows(res *Results) [][]string {
	var rows [][]string
	for _, c := range res.QueryCoderCategory {
		rows = append(rows, []string{c.Category, c.Coder, itoa(c.UnionHits), itoa(c.Misses), f2(c.MissRate)})
	}
	return rows
}

var worstHeader = []string{"category", "coder", "miss_rate_pct"}

func worstRows(res *Results) [][]string {
	var rows [][]string
	for _, w := range res.WorstPerformers {
		rows = append(rows, []string{w.Category, w.Coder, f2(w.MissRate)})
	}
	return rows
}

var queryContractHeader = []string{"contract", "difficulty", "union_hits", "avg_miss_pct", "max_miss_pct", "coder_spread"}

func queryContractRows(res *Results) [][]string {
	var rows [][]string
	for _, c := range res.QueryContracts {
		rows = append(rows, []string{
			c.Contract, string(c.Difficulty), itoa(c.UnionHits), f2(c.Avg), f2(c.Max), f2(c.Spread),
		})
	}
	return rows
}

var queryScenarioHeader = []string{"scenario", "category", "union_hits", "avg_miss_pct", "max_miss_pct"}

func queryScenarioRows(res *Results) [][]string {
	var rows [][]string
	for _, s := range res.QueryScenarios {
		rows = append(rows, []string{s.Scenario, s.Category, itoa(s.UnionHits), f2(s.Avg), f2(s.Max)})
	}
	return rows
}

var riskHeader = []string{"category", "avg_miss_pct", "union_hits", "risk_score"}

func riskRows(res *Results) [][]string {
	var rows [][]string
	for _, r := range res.Risks {
		rows = append(rows, []string{r.Category, f2(r.AvgMiss), itoa(r.UnionHits), f2(r.Score)})
	}
	return rows
}

var highRiskHeader = []string{"category", "difficulty", "miss_rate_pct", "union_hits"}

func highRiskRows(res *Results) [][]string {
	var rows [][]string
	for _, h := range res.HighRisk {
		rows = append(rows, []string{h.Category, string(h.Difficulty), f2(h.MissRate), itoa(h.UnionHits)})
	}
	return rows
}

var qualityHeader = []string{"row", "contract", "coder", "service", "token", "reason"}

func qualityRows(res *Results) [][]string {
	var rows [][]string
	for _, issue := range res.Quality.MalformedRows {
		rows = append(rows, []string{
			itoa(issue.Row), issue.Contract, issue.Coder, issue.Service, issue.Token, issue.Reason,
		})
	}
	return rows
}
