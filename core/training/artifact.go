package training

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kilianp07/evdemand/core/features"
)

// Artifact is the persisted form of a fitted model. All candidates share the
// linear form, so a single JSON document carries any of them together with
// the feature column order it was fitted on.
type Artifact struct {
	ModelName    string    `json:"model_name"`
	Columns      []string  `json:"columns"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// SaveArtifact writes the fitted model to path.
func SaveArtifact(path string, m *LinearModel) error {
	a := Artifact{
		ModelName:    m.ModelName,
		Columns:      features.Columns,
		Intercept:    m.Intercept,
		Coefficients: m.Coef,
	}
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadArtifact reads a fitted model back from path. The artifact's column
// order must match the current feature schema; a model trained against a
// different schema must never serve predictions.
func LoadArtifact(path string) (*LinearModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	if len(a.Columns) != len(features.Columns) {
		return nil, fmt.Errorf("model artifact %s has %d columns, expected %d", path, len(a.Columns), len(features.Columns))
	}
	for i, c := range a.Columns {
		if c != features.Columns[i] {
			return nil, fmt.Errorf("model artifact %s column %d is %q, expected %q", path, i, c, features.Columns[i])
		}
	}
	return &LinearModel{ModelName: a.ModelName, Intercept: a.Intercept, Coef: a.Coefficients}, nil
}
