// Package training fits candidate regressors on the hourly feature table
// and evaluates them on a time-ordered holdout. The regressors themselves
// are deliberately simple; the interesting contracts are the leakage-safe
// split and the immutable per-run metrics record.
package training

import (
	"errors"
	"fmt"
)

// Model is a fitted regressor over the fixed feature column order.
type Model interface {
	Name() string
	// Predict returns one prediction per row. Rows must follow the
	// feature column order the model was fitted on.
	Predict(rows [][]float64) []float64
}

// Trainer fits a Model on a feature matrix.
type Trainer interface {
	Name() string
	Fit(x [][]float64, y []float64) (Model, error)
}

// ErrEmptyTrainingSet indicates Fit was called without observations.
var ErrEmptyTrainingSet = errors.New("training: empty training set")

// NewTrainer returns the trainer registered under the given name.
func NewTrainer(name string, opts Options) (Trainer, error) {
	switch name {
	case "lr":
		return Linear{}, nil
	case "ridge":
		return Ridge{Lambda: opts.RidgeLambda}, nil
	case "naive":
		return SeasonalNaive{}, nil
	default:
		return nil, fmt.Errorf("training: unknown model type %q", name)
	}
}

// Options carries trainer hyperparameters from configuration.
type Options struct {
	RidgeLambda float64
}
