// Package registry tracks evaluated training runs and the single production
// pointer consumed by the serving boundary. The registry itself is an
// append-only log of promotion events; "current production" is the latest
// valid entry, which keeps history auditable and readers safe while a
// promotion is in flight.
package registry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// TrainingRunMetrics is the immutable evaluation record of one training run.
type TrainingRunMetrics struct {
	ModelPath string  `json:"model_path"`
	ModelName string  `json:"model_name"`
	TestData  string  `json:"test_data"`
	MAE       float64 `json:"mae"`
	RMSE      float64 `json:"rmse"`
	R2        float64 `json:"r2"`
	// MetricsPath is filled by the store when the record is read back.
	MetricsPath string `json:"metrics_path,omitempty"`
}

// Validate rejects partial records before they can reach the registry.
func (m TrainingRunMetrics) Validate() error {
	if m.ModelName == "" {
		return errors.New("registry: metrics record missing model_name")
	}
	if m.ModelPath == "" {
		return errors.New("registry: metrics record missing model_path")
	}
	for _, v := range []struct {
		name  string
		value float64
	}{{"mae", m.MAE}, {"rmse", m.RMSE}, {"r2", m.R2}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("registry: metrics record has non-finite %s", v.name)
		}
	}
	if m.MAE < 0 || m.RMSE < 0 {
		return errors.New("registry: metrics record has negative error score")
	}
	return nil
}

// ProductionMetrics is the score block of a registry entry.
type ProductionMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

// Entry is the production pointer consumed by the serving boundary.
// ModelPath holds the artifact filename only; the directory is resolved by
// the consumer.
type Entry struct {
	ModelName   string            `json:"model_name"`
	ModelPath   string            `json:"model_path"`
	Metrics     ProductionMetrics `json:"metrics"`
	TestData    string            `json:"test_data"`
	MetricsPath string            `json:"metrics_path"`
}

// PromotionEvent is one append-only registry log record.
type PromotionEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Production Entry     `json:"production"`
}
