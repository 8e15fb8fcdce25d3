// Package serving exposes the production model behind a strict feature
// schema. Batches whose columns do not exactly match the training schema are
// rejected before any prediction is attempted.
package serving

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kilianp07/evdemand/core/features"
)

// ErrSchemaMismatch indicates a batch does not carry exactly the expected
// feature columns.
var ErrSchemaMismatch = errors.New("serving: feature columns do not match expected schema")

// Schema guards the fixed predictor column contract shared with training.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema returns the schema for the current feature column set.
func NewSchema() Schema {
	idx := make(map[string]int, len(features.Columns))
	for i, c := range features.Columns {
		idx[c] = i
	}
	return Schema{columns: features.Columns, index: idx}
}

// Columns returns the expected column names in order.
func (s Schema) Columns() []string { return s.columns }

// Validate checks that every row carries exactly the expected columns.
func (s Schema) Validate(batch []map[string]float64) error {
	for i, row := range batch {
		if len(row) != len(s.columns) {
			return fmt.Errorf("%w: row %d has %d columns, expected %d (%s)",
				ErrSchemaMismatch, i, len(row), len(s.columns), s.describe(row))
		}
		for c := range row {
			if _, ok := s.index[c]; !ok {
				return fmt.Errorf("%w: row %d has unexpected column %q", ErrSchemaMismatch, i, c)
			}
		}
	}
	return nil
}

// Matrix validates the batch and orders each row into the fixed column
// layout consumed by the model.
func (s Schema) Matrix(batch []map[string]float64) ([][]float64, error) {
	if err := s.Validate(batch); err != nil {
		return nil, err
	}
	out := make([][]float64, len(batch))
	for i, row := range batch {
		vec := make([]float64, len(s.columns))
		for c, v := range row {
			vec[s.index[c]] = v
		}
		out[i] = vec
	}
	return out, nil
}

func (s Schema) describe(row map[string]float64) string {
	var missing []string
	for _, c := range s.columns {
		if _, ok := row[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return "extra columns present"
	}
	return "missing " + strings.Join(missing, ", ")
}
