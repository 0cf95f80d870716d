package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/intercoder-data/naics.report/internal/stats"
)

// Config is the engine configuration for one analysis run. All fields are
// pointers so a partial JSON file overrides only what it names; the Get*
// accessors supply the defaults for everything else. The configuration is
// immutable once a run starts.
type Config struct {
	// Normalization params
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	OverridesPath       *string  `json:"overrides_path,omitempty"`

	// Agreement params
	MinCoders *int `json:"min_coders,omitempty"`

	// Bootstrap params
	BootstrapIterations *int     `json:"bootstrap_iterations,omitempty"`
	BootstrapSeed       *int64   `json:"bootstrap_seed,omitempty"`
	Confidence          *float64 `json:"confidence,omitempty"`

	// Query simulation params
	CatalogPath          *string  `json:"catalog_path,omitempty"`
	HighRiskThresholdPct *float64 `json:"high_risk_threshold_pct,omitempty"`

	// Coder profile params
	ProfileTopK         *int     `json:"profile_top_k,omitempty"`
	TendencyThresholdPP *float64 `json:"tendency_threshold_pp,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// DefaultConfig returns a Config with every field explicitly set to its
// default value. Serializing it produces a complete template an analyst can
// edit.
func DefaultConfig() *Config {
	return &Config{
		SimilarityThreshold:  ptrFloat64(0.7),
		OverridesPath:        ptrString(""),
		MinCoders:            ptrInt(2),
		BootstrapIterations:  ptrInt(1000),
		BootstrapSeed:        ptrInt64(42),
		Confidence:           ptrFloat64(0.95),
		CatalogPath:          ptrString(""),
		HighRiskThresholdPct: ptrFloat64(20),
		ProfileTopK:          ptrInt(5),
		TendencyThresholdPP:  ptrFloat64(5),
	}
}

// LoadConfig loads a Config from a JSON file. Fields omitted from the file
// keep their defaults, so partial configs are safe. The file must have a
// .json extension and stay under the size cap.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that any set values fall in their legal ranges.
func (c *Config) Validate() error {
	if c.SimilarityThreshold != nil {
		if *c.SimilarityThreshold <= 0 || *c.SimilarityThreshold > 1 {
			return fmt.Errorf("similarity_threshold must be in (0, 1], got %f", *c.SimilarityThreshold)
		}
	}

	if c.MinCoders != nil {
		if *c.MinCoders < 2 {
			return fmt.Errorf("min_coders must be at least 2, got %d", *c.MinCoders)
		}
	}

	if c.BootstrapIterations != nil {
		if *c.BootstrapIterations < 1000 || *c.BootstrapIterations > 10000 {
			return fmt.Errorf("bootstrap_iterations must be between 1000 and 10000, got %d", *c.BootstrapIterations)
		}
	}

	if c.Confidence != nil {
		if *c.Confidence <= 0 || *c.Confidence >= 1 {
			return fmt.Errorf("confidence must be in (0, 1), got %f", *c.Confidence)
		}
	}

	if c.HighRiskThresholdPct != nil {
		if *c.HighRiskThresholdPct < 0 || *c.HighRiskThresholdPct > 100 {
			return fmt.Errorf("high_risk_threshold_pct must be between 0 and 100, got %f", *c.HighRiskThresholdPct)
		}
	}

	if c.ProfileTopK != nil {
		if *c.ProfileTopK < 1 {
			return fmt.Errorf("profile_top_k must be positive, got %d", *c.ProfileTopK)
		}
	}

	if c.TendencyThresholdPP != nil {
		if *c.TendencyThresholdPP < 0 {
			return fmt.Errorf("tendency_threshold_pp must be non-negative, got %f", *c.TendencyThresholdPP)
		}
	}

	return nil
}

// GetSimilarityThreshold returns the similarity_threshold value or the default.
func (c *Config) GetSimilarityThreshold() float64 {
	if c.SimilarityThreshold == nil {
		return 0.7
	}
	return *c.SimilarityThreshold
}

// GetOverridesPath returns the overrides_path value or "" for the built-in
// override catalog.
func (c *Config) GetOverridesPath() string {
	if c.OverridesPath == nil {
		return ""
	}
	return *c.OverridesPath
}

// GetMinCoders returns the min_coders value or the default.
func (c *Config) GetMinCoders() int {
	if c.MinCoders == nil {
		return 2
	}
	return *c.MinCoders
}

// GetBootstrapIterations returns the bootstrap_iterations value or the default.
func (c *Config) GetBootstrapIterations() int {
	if c.BootstrapIterations == nil {
		return 1000
	}
	return *c.BootstrapIterations
}

// GetBootstrapSeed returns the bootstrap_seed value or the default.
func (c *Config) GetBootstrapSeed() int64 {
	if c.BootstrapSeed == nil {
		return 42
	}
	return *c.BootstrapSeed
}

// GetConfidence returns the confidence value or the default.
func (c *Config) GetConfidence() float64 {
	if c.Confidence == nil {
		return 0.95
	}
	return *c.Confidence
}

// GetCatalogPath returns the catalog_path value or "" for the built-in
// query catalog.
func (c *Config) GetCatalogPath() string {
	if c.CatalogPath == nil {
		return ""
	}
	return *c.CatalogPath
}

// GetHighRiskThresholdPct returns the high_risk_threshold_pct value or the default.
func (c *Config) GetHighRiskThresholdPct() float64 {
	if c.HighRiskThresholdPct == nil {
		return 20
	}
	return *c.HighRiskThresholdPct
}

// GetProfileTopK returns the profile_top_k value or the default.
func (c *Config) GetProfileTopK() int {
	if c.ProfileTopK == nil {
		return 5
	}
	return *c.ProfileTopK
}

// GetTendencyThresholdPP returns the tendency_threshold_pp value or the default.
func (c *Config) GetTendencyThresholdPP() float64 {
	if c.TendencyThresholdPP == nil {
		return 5
	}
	return *c.TendencyThresholdPP
}

// Estimator builds the bootstrap estimator the configuration describes.
func (c *Config) Estimator() stats.Estimator {
	return stats.Estimator{
		Iterations: c.GetBootstrapIterations(),
		Seed:       c.GetBootstrapSeed(),
		Confidence: c.GetConfidence(),
	}
}
