package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/evdemand/core/features"
	"github.com/kilianp07/evdemand/core/logger"
	"github.com/kilianp07/evdemand/core/registry"
)

// RunConfig parameterizes one training run.
type RunConfig struct {
	ModelType string
	TestHours int
	Options   Options
	ModelsDir string
	// TestData is recorded in the metrics record so the evaluation stays
	// reproducible.
	TestData string
}

// Run fits the configured trainer on the feature table, evaluates it on the
// trailing holdout, persists the artifact and returns the metrics record.
// Runs are independent of each other: each produces its own artifact and
// record keyed by model type, timestamp and a run id, so several model types
// may train concurrently.
func Run(ctx context.Context, cfg RunConfig, rows []features.Row, store registry.MetricsStore, log logger.Logger) (registry.TrainingRunMetrics, error) {
	trainer, err := NewTrainer(cfg.ModelType, cfg.Options)
	if err != nil {
		return registry.TrainingRunMetrics{}, err
	}

	split, err := SplitByTime(rows, cfg.TestHours)
	if err != nil {
		return registry.TrainingRunMetrics{}, err
	}

	model, err := trainer.Fit(split.XTrain, split.YTrain)
	if err != nil {
		return registry.TrainingRunMetrics{}, fmt.Errorf("fit %s: %w", cfg.ModelType, err)
	}

	scores, err := Evaluate(split.YTest, model.Predict(split.XTest))
	if err != nil {
		return registry.TrainingRunMetrics{}, err
	}

	lm, ok := model.(*LinearModel)
	if !ok {
		return registry.TrainingRunMetrics{}, fmt.Errorf("model %s has no persistable form", model.Name())
	}
	if err := os.MkdirAll(cfg.ModelsDir, 0o755); err != nil {
		return registry.TrainingRunMetrics{}, err
	}
	runID := uuid.NewString()[:8]
	name := fmt.Sprintf("%s_model_%s_%s.json", cfg.ModelType, time.Now().UTC().Format("20060102_1504"), runID)
	path := filepath.Join(cfg.ModelsDir, name)
	if err := SaveArtifact(path, lm); err != nil {
		return registry.TrainingRunMetrics{}, fmt.Errorf("save artifact: %w", err)
	}

	rec := registry.TrainingRunMetrics{
		ModelPath: path,
		ModelName: cfg.ModelType,
		TestData:  cfg.TestData,
		MAE:       scores.MAE,
		RMSE:      scores.RMSE,
		R2:        scores.R2,
	}
	if err := store.Put(ctx, rec); err != nil {
		return registry.TrainingRunMetrics{}, fmt.Errorf("persist metrics record: %w", err)
	}
	if log != nil {
		log.Infof("trained %s: mae=%.4f rmse=%.4f r2=%.4f", cfg.ModelType, scores.MAE, scores.RMSE, scores.R2)
	}
	return rec, nil
}
