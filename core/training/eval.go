package training

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics holds the evaluation scores of one run.
type Metrics struct {
	MAE  float64
	RMSE float64
	R2   float64
}

// ErrNoObservations indicates Evaluate was called with empty or mismatched
// inputs.
var ErrNoObservations = errors.New("training: no observations to evaluate")

// Evaluate scores predictions against actuals.
func Evaluate(actual, predicted []float64) (Metrics, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return Metrics{}, ErrNoObservations
	}
	var absSum, sqSum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		absSum += math.Abs(d)
		sqSum += d * d
	}
	n := float64(len(actual))
	return Metrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
		R2:   stat.RSquaredFrom(predicted, actual, nil),
	}, nil
}
