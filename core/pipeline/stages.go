package pipeline

import (
	"context"
	"time"

	"github.com/kilianp07/evdemand/core/aggregate"
	"github.com/kilianp07/evdemand/core/clean"
	"github.com/kilianp07/evdemand/core/features"
	"github.com/kilianp07/evdemand/core/logger"
	coremetrics "github.com/kilianp07/evdemand/core/metrics"
	"github.com/kilianp07/evdemand/core/model"
	"github.com/kilianp07/evdemand/core/registry"
	"github.com/kilianp07/evdemand/core/training"
)

// SessionSource loads raw sessions from wherever they live. I/O stays in
// the collaborator; the stages only see tables.
type SessionSource interface {
	Load(ctx context.Context) ([]model.Session, error)
}

// FeatureWriter persists the derived feature table.
type FeatureWriter interface {
	Save(ctx context.Context, rows []features.Row) (path string, err error)
}

// SessionDump persists the cleaned session table.
type SessionDump interface {
	Save(ctx context.Context, sessions []model.Session) (path string, err error)
}

// LoadStage reads raw sessions into the state.
type LoadStage struct {
	Source SessionSource
}

func (LoadStage) Name() string { return "load" }

func (s LoadStage) Run(ctx context.Context, st *State) error {
	sessions, err := s.Source.Load(ctx)
	if err != nil {
		return err
	}
	st.RawSessions = sessions
	return nil
}

// CleanStage repairs the raw sessions and optionally persists the result.
type CleanStage struct {
	Cleaner *clean.Cleaner
	Writer  SessionDump
	Sink    coremetrics.Sink
}

func (CleanStage) Name() string { return "clean" }

func (s CleanStage) Run(ctx context.Context, st *State) error {
	cleaned, rep, err := s.Cleaner.Clean(st.RawSessions)
	if err != nil {
		return err
	}
	st.CleanSessions = cleaned
	st.CleanReport = rep
	if s.Writer != nil {
		path, err := s.Writer.Save(ctx, cleaned)
		if err != nil {
			return err
		}
		st.CleanPath = path
	}
	if s.Sink != nil {
		return s.Sink.RecordCleaning(coremetrics.CleaningEvent{
			Total:      rep.Total,
			Imputed:    rep.Imputed,
			Reconciled: rep.Reconciled,
			Excluded:   rep.Excluded,
		})
	}
	return nil
}

// AggregateStage buckets cleaned sessions by hour.
type AggregateStage struct{}

func (AggregateStage) Name() string { return "aggregate" }

func (AggregateStage) Run(_ context.Context, st *State) error {
	st.Buckets = aggregate.Aggregate(st.CleanSessions)
	return nil
}

// DeriveStage computes the feature table and optionally persists it.
type DeriveStage struct {
	Writer FeatureWriter
	Sink   coremetrics.Sink
}

func (DeriveStage) Name() string { return "derive" }

func (s DeriveStage) Run(ctx context.Context, st *State) error {
	rows, err := features.Derive(st.Buckets)
	if err != nil {
		return err
	}
	st.Features = rows
	if s.Sink != nil {
		dropped := 0
		if len(st.Buckets) > 0 {
			gridHours := int(st.Buckets[len(st.Buckets)-1].Hour.Sub(st.Buckets[0].Hour)/time.Hour) + 1
			dropped = gridHours - len(rows)
		}
		if err := s.Sink.RecordFeatures(coremetrics.FeatureEvent{Rows: len(rows), Dropped: dropped}); err != nil {
			return err
		}
	}
	if s.Writer != nil {
		path, err := s.Writer.Save(ctx, rows)
		if err != nil {
			return err
		}
		st.FeaturesPath = path
	}
	return nil
}

// TrainStage trains every configured model type on the derived features.
// Each run is independent and produces its own metrics record.
type TrainStage struct {
	Models    []string
	TestHours int
	Options   training.Options
	ModelsDir string
	Store     registry.MetricsStore
	Sink      coremetrics.Sink
	Log       logger.Logger
}

func (TrainStage) Name() string { return "train" }

func (s TrainStage) Run(ctx context.Context, st *State) error {
	for _, m := range s.Models {
		cfg := training.RunConfig{
			ModelType: m,
			TestHours: s.TestHours,
			Options:   s.Options,
			ModelsDir: s.ModelsDir,
			TestData:  st.FeaturesPath,
		}
		rec, err := training.Run(ctx, cfg, st.Features, s.Store, s.Log)
		if err != nil {
			return err
		}
		st.Runs = append(st.Runs, rec)
		if s.Sink != nil {
			if err := s.Sink.RecordTraining(coremetrics.TrainingEvent{
				Model: rec.ModelName,
				MAE:   rec.MAE,
				RMSE:  rec.RMSE,
				R2:    rec.R2,
				Time:  time.Now().UTC(),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// PromoteStage selects and promotes the best evaluated candidate.
type PromoteStage struct {
	Selector *registry.Selector
	Sink     coremetrics.Sink
}

func (PromoteStage) Name() string { return "promote" }

func (s PromoteStage) Run(ctx context.Context, st *State) error {
	entry, err := s.Selector.Promote(ctx)
	if err != nil {
		return err
	}
	st.Production = &entry
	if s.Sink != nil {
		return s.Sink.RecordPromotion(coremetrics.PromotionEvent{
			Model: entry.ModelName,
			MAE:   entry.Metrics.MAE,
			Time:  time.Now().UTC(),
		})
	}
	return nil
}
