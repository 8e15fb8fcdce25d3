package training

import (
	"fmt"

	"github.com/kilianp07/evdemand/core/features"
)

// Split is a time-ordered train/test partition of the feature table. The
// test set is always the most recent block, never a random sample, so the
// evaluation mirrors how the model is used: predicting the future from the
// past.
type Split struct {
	XTrain [][]float64
	YTrain []float64
	XTest  [][]float64
	YTest  []float64
}

// SplitByTime holds out the trailing testHours rows.
func SplitByTime(rows []features.Row, testHours int) (Split, error) {
	if testHours <= 0 {
		return Split{}, fmt.Errorf("training: test_hours must be positive, got %d", testHours)
	}
	if len(rows) <= testHours {
		return Split{}, fmt.Errorf("training: %d feature rows cannot hold out %d test hours", len(rows), testHours)
	}
	cut := len(rows) - testHours

	s := Split{
		XTrain: make([][]float64, 0, cut),
		YTrain: make([]float64, 0, cut),
		XTest:  make([][]float64, 0, testHours),
		YTest:  make([]float64, 0, testHours),
	}
	for i, r := range rows {
		if i < cut {
			s.XTrain = append(s.XTrain, r.Vector())
			s.YTrain = append(s.YTrain, r.TotalKWh)
		} else {
			s.XTest = append(s.XTest, r.Vector())
			s.YTest = append(s.YTest, r.TotalKWh)
		}
	}
	return s, nil
}
