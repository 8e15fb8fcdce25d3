package metrics

import (
	"context"
	"net/http"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/evdemand/core/logger"
	coremetrics "github.com/kilianp07/evdemand/core/metrics"
)

// InfluxSink writes pipeline events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config, log logger.Logger) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      log,
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing Influx never blocks a
// pipeline run.
func NewInfluxSinkWithFallback(cfg coremetrics.Config, log logger.Logger) coremetrics.Sink {
	sink := NewInfluxSink(cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if log != nil {
			if err != nil {
				log.Errorf("influx health check error: %v", err)
			} else {
				log.Errorf("influx health status: %s", health.Status)
			}
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) writePoint(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCleaning writes a cleaning summary point.
func (s *InfluxSink) RecordCleaning(ev coremetrics.CleaningEvent) error {
	p := write.NewPointWithMeasurement("cleaning_pass").
		AddField("total", ev.Total).
		AddField("imputed", ev.Imputed).
		AddField("reconciled", ev.Reconciled).
		AddField("excluded", ev.Excluded).
		SetTime(time.Now())
	return s.writePoint(p)
}

// RecordFeatures writes a derivation summary point.
func (s *InfluxSink) RecordFeatures(ev coremetrics.FeatureEvent) error {
	p := write.NewPointWithMeasurement("feature_derivation").
		AddField("rows", ev.Rows).
		AddField("dropped", ev.Dropped).
		SetTime(time.Now())
	return s.writePoint(p)
}

// RecordTraining writes the run scores.
func (s *InfluxSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	p := write.NewPointWithMeasurement("training_run").
		AddTag("model", ev.Model).
		AddField("mae", ev.MAE).
		AddField("rmse", ev.RMSE).
		AddField("r2", ev.R2).
		SetTime(ev.Time)
	return s.writePoint(p)
}

// RecordPromotion writes the promotion event.
func (s *InfluxSink) RecordPromotion(ev coremetrics.PromotionEvent) error {
	p := write.NewPointWithMeasurement("registry_promotion").
		AddTag("model", ev.Model).
		AddField("mae", ev.MAE).
		SetTime(ev.Time)
	return s.writePoint(p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
