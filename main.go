package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/intercoder-data/naics.report/internal/config"
	"github.com/intercoder-data/naics.report/internal/ingest"
	"github.com/intercoder-data/naics.report/internal/monitoring"
	"github.com/intercoder-data/naics.report/internal/normalize"
	"github.com/intercoder-data/naics.report/internal/querysim"
	"github.com/intercoder-data/naics.report/internal/report"
	"github.com/intercoder-data/naics.report/internal/version"
)

func main() {
	input := flag.String("input", "", "Input CSV of coded contract rows (required)")
	outDir := flag.String("out", "report_out", "Output directory for CSV tables, summary, and JSON dump")
	configPath := flag.String("config", "", "JSON config file (defaults apply when omitted)")
	overridesPath := flag.String("overrides", "", "YAML service-name override catalog (built-in when omitted)")
	queriesPath := flag.String("queries", "", "YAML query catalog (built-in when omitted)")
	seed := flag.Int64("seed", 0, "Bootstrap seed override; 0 keeps the configured seed")
	quiet := flag.Bool("quiet", false, "Suppress progress logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *input == "" {
		flag.Usage()
		log.Fatal("input CSV is required")
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *seed != 0 {
		cfg.BootstrapSeed = seed
	}

	// Flags win over config file paths; both fall back to the built-ins.
	overrides := normalize.Overrides(nil)
	if path := firstOf(*overridesPath, cfg.GetOverridesPath()); path != "" {
		var err error
		overrides, err = normalize.LoadOverrides(path)
		if err != nil {
			log.Fatalf("failed to load overrides: %v", err)
		}
	}
	var catalog *querysim.Catalog
	if path := firstOf(*queriesPath, cfg.GetCatalogPath()); path != "" {
		var err error
		catalog, err = querysim.LoadCatalog(path)
		if err != nil {
			log.Fatalf("failed to load query catalog: %v", err)
		}
	}

	ds, err := ingest.Load(*input)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *input, err)
	}

	res, err := report.AnalyzeWith(ds, cfg, overrides, catalog)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	if err := report.WriteCSVs(*outDir, res); err != nil {
		log.Fatalf("failed to write tables: %v", err)
	}
	if err := report.WriteJSON(filepath.Join(*outDir, "results.json"), res); err != nil {
		log.Fatalf("failed to write results JSON: %v", err)
	}
	summaryPath := filepath.Join(*outDir, "summary.txt")
	if err := report.WriteSummary(summaryPath, res); err != nil {
		log.Fatalf("failed to write summary: %v", err)
	}

	fmt.Print(report.Summary(res))
	monitoring.Stagef("report", "run %s complete, outputs in %s", res.RunID, *outDir)
}

// firstOf returns the first non-empty path.
func firstOf(paths ...string) string {
	for _, p := range paths {
		if p != "" {
			return p
		}
	}
	return ""
}
