package training

import (
	"fmt"

	"github.com/kilianp07/evdemand/core/features"
)

// SeasonalNaive predicts last week's realized value (the lag_168 predictor).
// It is the floor any trained candidate has to beat.
type SeasonalNaive struct{}

func (SeasonalNaive) Name() string { return "naive" }

// Fit produces a linear form with a single unit coefficient on lag_168,
// so the baseline shares the artifact format of the real candidates.
func (SeasonalNaive) Fit(x [][]float64, y []float64) (Model, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, ErrEmptyTrainingSet
	}
	idx := -1
	for i, c := range features.Columns {
		if c == "lag_168" {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(x[0]) {
		return nil, fmt.Errorf("training: feature matrix has no lag_168 column")
	}
	coef := make([]float64, len(x[0]))
	coef[idx] = 1
	return &LinearModel{ModelName: "naive", Coef: coef}, nil
}
