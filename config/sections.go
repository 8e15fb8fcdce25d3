package config

import "fmt"

// DataConfig locates the pipeline inputs and outputs on disk.
type DataConfig struct {
	// RawCSV is the semicolon separated session export to ingest.
	RawCSV string `json:"raw_csv"`
	// CleanDir receives the cleaned session dump.
	CleanDir string `json:"clean_dir"`
	// FeaturesDir receives the derived feature table.
	FeaturesDir string `json:"features_dir"`
	// ModelsDir receives trained model artifacts.
	ModelsDir string `json:"models_dir"`
	// ReportsDir receives per-run metrics records.
	ReportsDir string `json:"reports_dir"`
}

// SetDefaults applies the conventional data layout.
func (c *DataConfig) SetDefaults() {
	if c.CleanDir == "" {
		c.CleanDir = "data/clean"
	}
	if c.FeaturesDir == "" {
		c.FeaturesDir = "data/features"
	}
	if c.ModelsDir == "" {
		c.ModelsDir = "models"
	}
	if c.ReportsDir == "" {
		c.ReportsDir = "reports"
	}
}

// Validate checks mandatory fields.
func (c DataConfig) Validate() error {
	if c.RawCSV == "" {
		return fmt.Errorf("data: raw_csv is required")
	}
	return nil
}

// TrainingConfig selects the candidate models and the holdout window.
type TrainingConfig struct {
	// Models lists the candidates to train, in promotion tie-break order.
	Models []string `json:"models"`
	// TestHours is the size of the trailing holdout window.
	TestHours int `json:"test_hours"`
	// RidgeLambda is the L2 penalty for the ridge candidate. A pointer so
	// an explicit zero (plain least squares) is distinguishable from unset.
	RidgeLambda *float64 `json:"ridge_lambda"`
}

// SetDefaults applies the standard candidate set and a 30 day holdout.
func (c *TrainingConfig) SetDefaults() {
	if len(c.Models) == 0 {
		c.Models = []string{"lr", "ridge", "naive"}
	}
	if c.TestHours == 0 {
		c.TestHours = 720
	}
	if c.RidgeLambda == nil {
		lambda := 1.0
		c.RidgeLambda = &lambda
	}
}

// Validate checks the model names and window size.
func (c TrainingConfig) Validate() error {
	for _, m := range c.Models {
		switch m {
		case "lr", "ridge", "naive":
		default:
			return fmt.Errorf("training: unknown model %q", m)
		}
	}
	if c.TestHours <= 0 {
		return fmt.Errorf("training: test_hours must be positive")
	}
	if c.RidgeLambda != nil && *c.RidgeLambda < 0 {
		return fmt.Errorf("training: ridge_lambda must not be negative")
	}
	return nil
}

// RegistryConfig selects the promotion log backend.
type RegistryConfig struct {
	// Backend selects the registry store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the registry store.
	Path string `json:"path"`
}

// SetDefaults applies the JSONL backend.
func (c *RegistryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "registry.jsonl"
	}
}

// Validate checks mandatory fields.
func (c RegistryConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("registry: unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("registry: path is required")
	}
	return nil
}

// ServingConfig configures the prediction HTTP server.
type ServingConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies the standard listen address.
func (c *ServingConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
}
