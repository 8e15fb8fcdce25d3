// Package metrics provides the sink adapters recording pipeline events to
// Prometheus and InfluxDB.
package metrics

import (
	coremetrics "github.com/kilianp07/evdemand/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records pipeline events in Prometheus metrics.
type PromSink struct {
	sessions   *prometheus.CounterVec
	rows       *prometheus.CounterVec
	runs       *prometheus.CounterVec
	promotions *prometheus.CounterVec
	lastScore  *prometheus.GaugeVec
}

// NewPromSink registers pipeline metrics on the default Prometheus
// registerer. The Prometheus server should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_sessions_total",
		Help: "Sessions seen by the cleaner, by outcome",
	}, []string{"outcome"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_feature_rows_total",
		Help: "Feature rows derived, by outcome",
	}, []string{"outcome"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_training_runs_total",
		Help: "Completed training runs",
	}, []string{"model"})
	promotions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_promotions_total",
		Help: "Registry promotions",
	}, []string{"model"})
	lastScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "training_last_score",
		Help: "Scores of the most recent run per model",
	}, []string{"model", "metric"})

	for _, c := range []prometheus.Collector{sessions, rows, runs, promotions, lastScore} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{sessions: sessions, rows: rows, runs: runs, promotions: promotions, lastScore: lastScore}, nil
}

// RecordCleaning increments the session counters per outcome.
func (s *PromSink) RecordCleaning(ev coremetrics.CleaningEvent) error {
	kept := ev.Total - ev.Excluded
	s.sessions.WithLabelValues("kept").Add(float64(kept))
	s.sessions.WithLabelValues("excluded").Add(float64(ev.Excluded))
	s.sessions.WithLabelValues("imputed").Add(float64(ev.Imputed))
	s.sessions.WithLabelValues("reconciled").Add(float64(ev.Reconciled))
	return nil
}

// RecordFeatures increments the feature row counters.
func (s *PromSink) RecordFeatures(ev coremetrics.FeatureEvent) error {
	s.rows.WithLabelValues("kept").Add(float64(ev.Rows))
	s.rows.WithLabelValues("dropped").Add(float64(ev.Dropped))
	return nil
}

// RecordTraining counts the run and exposes its scores.
func (s *PromSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	s.runs.WithLabelValues(ev.Model).Inc()
	s.lastScore.WithLabelValues(ev.Model, "mae").Set(ev.MAE)
	s.lastScore.WithLabelValues(ev.Model, "rmse").Set(ev.RMSE)
	s.lastScore.WithLabelValues(ev.Model, "r2").Set(ev.R2)
	return nil
}

// RecordPromotion counts the promotion.
func (s *PromSink) RecordPromotion(ev coremetrics.PromotionEvent) error {
	s.promotions.WithLabelValues(ev.Model).Inc()
	return nil
}
