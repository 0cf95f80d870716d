// Package report orchestrates a full analysis run and serializes its results.
// The engine packages stay pure; everything that touches the filesystem or
// assembles cross-package output lives here.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/intercoder-data/naics.report/internal/agreement"
	"github.com/intercoder-data/naics.report/internal/coding"
	"github.com/intercoder-data/naics.report/internal/config"
	"github.com/intercoder-data/naics.report/internal/jaccard"
	"github.com/intercoder-data/naics.report/internal/monitoring"
	"github.com/intercoder-data/naics.report/internal/normalize"
	"github.com/intercoder-data/naics.report/internal/querysim"
)

// Results is the complete output of one analysis run. Every table the CSV
// and summary writers emit is carried here, so a single JSON dump preserves
// the whole run.
type Results struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Config     *config.Config `json:"config"`

	Normalization normalize.Stats     `json:"normalization"`
	Merges        []normalize.Service `json:"merges"`

	Identification      []agreement.RoundOverlap    `json:"identification"`
	AgreementRaw        []agreement.Summary         `json:"agreement_raw"`
	AgreementNormalized []agreement.Summary         `json:"agreement_normalized"`
	NormalizationImpact agreement.Comparison        `json:"normalization_impact"`
	Pairwise            []agreement.PairSummary     `json:"pairwise_agreement"`
	Disagreements       []agreement.Disagreement    `json:"disagreements"`
	Taxonomy            agreement.TaxonomyReport    `json:"disagreement_taxonomy"`
	Confusion           []agreement.ConfusionPair   `json:"prefix_confusion"`
	Consistency         agreement.ConsistencyReport `json:"cross_contract_consistency"`

	JaccardContracts    []jaccard.ContractSummary `json:"jaccard_per_contract"`
	JaccardByDifficulty []jaccard.DifficultyMean  `json:"jaccard_by_difficulty"`
	JaccardByRound      []jaccard.RoundMean       `json:"jaccard_by_round"`
	JaccardPairs        []jaccard.PairMean        `json:"jaccard_pair_means"`

	Profiles   *coding.ProfileSet `json:"coder_profiles"`
	Tendencies []coding.Tendency  `json:"coder_tendencies"`

	QueryOverview           querysim.Overview                 `json:"query_overview"`
	QueryCoders             []querysim.CoderStat              `json:"query_per_coder"`
	AvgMissRate             float64                           `json:"avg_miss_rate"`
	QueryCategories         []querysim.CategoryStat           `json:"query_by_category"`
	QueryDifficulty         []querysim.DifficultyStat         `json:"query_by_difficulty"`
	QueryCategoryDifficulty []querysim.CategoryDifficultyStat `json:"query_category_difficulty"`
	QueryCoderCategory      []querysim.CoderCategoryStat      `json:"query_coder_category"`
	WorstPerformers         []querysim.WorstPerformer         `json:"query_worst_performers"`
	QueryContracts          []querysim.ContractStat           `json:"query_by_contract"`
	QueryScenarios          []querysim.ScenarioStat           `json:"query_by_scenario"`
	Risks                   []querysim.CategoryRisk           `json:"category_risks"`
	HighRisk                []querysim.HighRiskCell           `json:"high_risk"`

	Quality coding.Quality `json:"data_quality"`
}

// Analyze runs the full pipeline with the built-in override and query
// catalogs.
func Analyze(ds *coding.Dataset, cfg *config.Config) (*Results, error) {
	return AnalyzeWith(ds, cfg, nil, nil)
}

// AnalyzeWith runs the full pipeline with explicit catalogs. A nil overrides
// map or catalog selects the built-in one. The dataset's ServiceNormalized
// fields are populated as a side effect; everything else is read-only.
func AnalyzeWith(ds *coding.Dataset, cfg *config.Config, overrides normalize.Overrides, catalog *querysim.Catalog) (*Results, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if overrides == nil {
		overrides = normalize.DefaultOverrides()
	}
	if catalog == nil {
		catalog = querysim.DefaultCatalog()
	}

	res := &Results{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Config:    cfg,
		Quality:   ds.Quality,
	}
	monitoring.Stagef("analysis", "run %s: %d records, %d contracts, %d coders",
		res.RunID, len(ds.Records), len(ds.Contracts()), len(ds.Coders()))

	// Stage 1: service-name normalization. A bad override catalog is a
	// configuration error and aborts the run.
	normalizer := normalize.New(overrides, cfg.GetSimilarityThreshold())
	table, err := normalizer.Fit(ds.ServiceCounts())
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	ds.SetNormalized(table.Canonical)
	res.Normalization = table.Stats()
	res.Merges = table.Merges()
	monitoring.Stagef("analysis", "normalized %d raw services to %d (%d merged)",
		res.Normalization.RawUnique, res.Normalization.NormalizedUnique, res.Normalization.Merged)

	// Stage 2: identification and classification agreement.
	est := cfg.Estimator()
	calc := agreement.NewCalculator(cfg.GetMinCoders(), est)
	res.Identification = agreement.Identification(ds, agreement.NormalizedService)
	res.AgreementRaw = calc.Matrix(ds, agreement.RawService)
	res.AgreementNormalized = calc.Matrix(ds, agreement.NormalizedService)
	res.NormalizationImpact = calc.CompareNormalization(ds)
	res.Pairwise = calc.Pairwise(ds, agreement.NormalizedService)

	// Stage 3: disagreement structure.
	res.Disagreements = calc.Disagreements(ds, agreement.NormalizedService)
	res.Taxonomy = agreement.Taxonomy(res.Disagreements)
	res.Confusion = agreement.Confusion(res.Disagreements)
	res.Consistency = agreement.Consistency(ds, agreement.NormalizedService)
	monitoring.Stagef("analysis", "agreement done: %d overlaps, %d disagreements",
		len(calc.Overlaps(ds, agreement.NormalizedService)), res.Taxonomy.Total)

	// Stage 4: Jaccard similarity.
	jc := jaccard.NewCalculator(est)
	res.JaccardContracts = jc.PerContract(ds)
	res.JaccardByDifficulty = jc.ByDifficulty(res.JaccardContracts)
	res.JaccardByRound = jc.ByRound(res.JaccardContracts)
	res.JaccardPairs = jc.PairMeans(res.JaccardContracts)

	// Stage 5: coder profiles.
	res.Profiles = coding.Profiles(ds)
	res.Tendencies = res.Profiles.Tendencies(
		res.Profiles.TopPrefixes(cfg.GetProfileTopK()), cfg.GetTendencyThresholdPP())

	// Stage 6: query simulation and risk.
	qres := querysim.NewSimulator(catalog).Run(ds)
	qa := querysim.NewAnalyzer(est)
	res.QueryOverview = qa.Overview(qres)
	res.QueryCoders = qa.PerCoder(qres)
	res.AvgMissRate = querysim.AvgMissRate(res.QueryCoders)
	res.QueryCategories = qa.ByCategory(qres)
	res.QueryDifficulty = qa.ByDifficulty(qres)
	res.QueryCategoryDifficulty = qa.CategoryByDifficulty(qres)
	res.QueryCoderCategory = qa.CoderByCategory(qres)
	res.WorstPerformers = querysim.WorstPerformers(res.QueryCoderCategory)
	res.QueryContracts = qa.ByContract(qres)
	res.QueryScenarios = qa.ByScenario(qres)
	res.Risks = querysim.CategoryRisks(res.QueryCategories)
	res.HighRisk = qa.HighRisk(qres, cfg.GetHighRiskThresholdPct())
	monitoring.Stagef("analysis", "query simulation: %d rows, %.1f%% union hit, avg miss %.1f%%",
		res.QueryOverview.Rows, res.QueryOverview.UnionHitPct, res.AvgMissRate)

	res.FinishedAt = time.Now()
	return res, nil
}
