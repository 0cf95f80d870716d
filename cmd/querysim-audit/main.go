// querysim-audit replays a query catalog against a coded contract CSV and
// dumps the raw per-row outcomes the full report aggregates away. Use it to
// spot-check a new catalog before wiring it into a report run.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/intercoder-data/naics.report/internal/ingest"
	"github.com/intercoder-data/naics.report/internal/querysim"
	"github.com/intercoder-data/naics.report/internal/stats"
)

func main() {
	input := flag.String("input", "", "Input CSV of coded contract rows (required)")
	queries := flag.String("queries", "", "YAML query catalog (built-in when omitted)")
	output := flag.String("output", "", "Per-row outcome CSV (defaults to querysim-<timestamp>.csv)")
	category := flag.String("category", "", "Limit the replay to one catalog category")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		log.Fatal("input CSV is required")
	}

	catalog := querysim.DefaultCatalog()
	if *queries != "" {
		var err error
		catalog, err = querysim.LoadCatalog(*queries)
		if err != nil {
			log.Fatalf("failed to load query catalog: %v", err)
		}
	}
	if *category != "" {
		catalog = filterCategory(catalog, *category)
		if len(catalog.Categories) == 0 {
			log.Fatalf("category %q not in catalog", *category)
		}
	}

	ds, err := ingest.Load(*input)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *input, err)
	}

	res := querysim.NewSimulator(catalog).Run(ds)
	log.Printf("replayed %d scenarios against %d contracts (%d rows)",
		catalog.NumScenarios(), len(ds.Contracts()), len(res.Outcomes))

	filename := *output
	if filename == "" {
		filename = fmt.Sprintf("querysim-%s.csv", time.Now().Format("20060102-150405"))
	}
	if err := writeOutcomes(filename, res); err != nil {
		log.Fatalf("failed to write outcomes: %v", err)
	}
	log.Printf("wrote per-row outcomes to %s", filename)

	printSummary(res)
}

func filterCategory(catalog *querysim.Catalog, name string) *querysim.Catalog {
	out := &querysim.Catalog{}
	for _, cat := range catalog.Categories {
		if strings.EqualFold(cat.Name, name) {
			out.Categories = append(out.Categories, cat)
		}
	}
	return out
}

func writeOutcomes(filename string, res *querysim.Results) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{"contract", "difficulty", "round", "category", "scenario", "union_hit", "hit_coders", "missed_coders"})
	for _, o := range res.Outcomes {
		w.Write([]string{
			o.Contract,
			string(o.Difficulty),
			strconv.Itoa(o.Round),
			o.Category,
			o.Scenario,
			strconv.FormatBool(o.UnionHit),
			strings.Join(trueKeys(o.Hits), "|"),
			strings.Join(trueKeys(o.Misses), "|"),
		})
	}
	w.Flush()
	return w.Error()
}

func trueKeys(m map[string]bool) []string {
	var out []string
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func printSummary(res *querysim.Results) {
	qa := querysim.NewAnalyzer(stats.DefaultEstimator())

	fmt.Printf("\n%-24s %9s %11s %9s\n", "CATEGORY", "QUERIES", "UNION HITS", "AVG MISS")
	for _, c := range qa.ByCategory(res) {
		fmt.Printf("%-24s %9d %11d %8.1f%%\n", c.Category, c.NQueries, c.UnionHits, c.Avg)
	}

	fmt.Printf("\n%-24s %9s %11s %9s\n", "CODER", "HITS", "MISSES", "MISS RATE")
	for _, c := range qa.PerCoder(res) {
		if c.NoData {
			fmt.Printf("%-24s %9s %11s %9s\n", c.Coder, "-", "-", "-")
			continue
		}
		fmt.Printf("%-24s %9d %11d %8.1f%%\n", c.Coder, c.Hits, c.Misses, c.MissRate)
	}
}
