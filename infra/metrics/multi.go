package metrics

import (
	coremetrics "github.com/kilianp07/evdemand/core/metrics"
)

// MultiSink fans events out to several sinks. The first error wins but every
// sink still receives the event.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink builds a sink over the given backends.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) each(fn func(coremetrics.Sink) error) error {
	var first error
	for _, s := range m.sinks {
		if err := fn(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiSink) RecordCleaning(ev coremetrics.CleaningEvent) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordCleaning(ev) })
}

func (m *MultiSink) RecordFeatures(ev coremetrics.FeatureEvent) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordFeatures(ev) })
}

func (m *MultiSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordTraining(ev) })
}

func (m *MultiSink) RecordPromotion(ev coremetrics.PromotionEvent) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordPromotion(ev) })
}
