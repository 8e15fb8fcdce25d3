// Package metrics defines the observability events emitted by the pipeline
// and the sink interface infra adapters implement.
package metrics

import "time"

// CleaningEvent summarises one cleaning pass over raw sessions.
type CleaningEvent struct {
	Total      int
	Imputed    int
	Reconciled int
	Excluded   int
}

// FeatureEvent summarises one feature derivation pass.
type FeatureEvent struct {
	Rows    int
	Dropped int
}

// TrainingEvent records the evaluation of one training run.
type TrainingEvent struct {
	Model string
	MAE   float64
	RMSE  float64
	R2    float64
	Time  time.Time
}

// PromotionEvent records a registry promotion.
type PromotionEvent struct {
	Model string
	MAE   float64
	Time  time.Time
}

// Sink records pipeline events for observability purposes.
type Sink interface {
	RecordCleaning(ev CleaningEvent) error
	RecordFeatures(ev FeatureEvent) error
	RecordTraining(ev TrainingEvent) error
	RecordPromotion(ev PromotionEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordCleaning(CleaningEvent) error   { return nil }
func (NopSink) RecordFeatures(FeatureEvent) error    { return nil }
func (NopSink) RecordTraining(TrainingEvent) error   { return nil }
func (NopSink) RecordPromotion(PromotionEvent) error { return nil }
