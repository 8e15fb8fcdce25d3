// Package app assembles the pipeline and serving components from the
// configuration.
package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/evdemand/api"
	"github.com/kilianp07/evdemand/config"
	"github.com/kilianp07/evdemand/core/clean"
	coremetrics "github.com/kilianp07/evdemand/core/metrics"
	"github.com/kilianp07/evdemand/core/pipeline"
	"github.com/kilianp07/evdemand/core/registry"
	"github.com/kilianp07/evdemand/core/serving"
	"github.com/kilianp07/evdemand/core/training"
	"github.com/kilianp07/evdemand/infra/csv"
	"github.com/kilianp07/evdemand/infra/logger"
	"github.com/kilianp07/evdemand/infra/metrics"
	"github.com/kilianp07/evdemand/infra/notify"
	"github.com/kilianp07/evdemand/infra/store"
	"github.com/kilianp07/evdemand/internal/eventbus"
)

// Service owns the wired components for one process. A Service backs either
// a batch pipeline run or the prediction server, depending on which entry
// point is used.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	sink      coremetrics.Sink
	metrics   registry.MetricsStore
	registry  registry.PromotionLog
	announcer *notify.Announcer
	bus       *eventbus.Bus[pipeline.Event]

	promEnabled bool
	promPort    string
}

// New builds a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics, logger.New("influx_sink")))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	ms, err := store.NewDirMetricsStore(cfg.Data.ReportsDir)
	if err != nil {
		return nil, fmt.Errorf("metrics store: %w", err)
	}

	var reg registry.PromotionLog
	switch cfg.Registry.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Registry.Path)
		if err != nil {
			return nil, fmt.Errorf("registry store: %w", err)
		}
		reg = s
	default:
		s, err := store.NewJSONLRegistry(cfg.Registry.Path)
		if err != nil {
			return nil, fmt.Errorf("registry store: %w", err)
		}
		reg = s
	}

	var announcer *notify.Announcer
	if cfg.Notify.Enabled {
		announcer, err = notify.NewAnnouncer(cfg.Notify, logger.New("notify"))
		if err != nil {
			return nil, fmt.Errorf("announcer: %w", err)
		}
	}

	return &Service{
		cfg:         cfg,
		log:         logg,
		sink:        sink,
		metrics:     ms,
		registry:    reg,
		announcer:   announcer,
		bus:         eventbus.New[pipeline.Event](),
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Bus exposes the stage event bus for observers.
func (s *Service) Bus() *eventbus.Bus[pipeline.Event] { return s.bus }

// Registry exposes the promotion log.
func (s *Service) Registry() registry.PromotionLog { return s.registry }

// runner builds the stage graph covered by the given stage names.
func (s *Service) runner(stages ...pipeline.Stage) *pipeline.Runner {
	return pipeline.NewRunner(s.log, s.bus, stages...)
}

func (s *Service) loadStage() pipeline.Stage {
	return pipeline.LoadStage{Source: csv.Reader{Path: s.cfg.Data.RawCSV, Log: logger.New("csv_reader")}}
}

func (s *Service) cleanStage() pipeline.Stage {
	return pipeline.CleanStage{
		Cleaner: clean.New(logger.New("cleaner")),
		Writer:  csv.SessionWriter{Dir: s.cfg.Data.CleanDir},
		Sink:    s.sink,
	}
}

func (s *Service) deriveStage() pipeline.Stage {
	return pipeline.DeriveStage{
		Writer: csv.FeatureWriter{Dir: s.cfg.Data.FeaturesDir},
		Sink:   s.sink,
	}
}

func (s *Service) trainStage() pipeline.Stage {
	return pipeline.TrainStage{
		Models:    s.cfg.Training.Models,
		TestHours: s.cfg.Training.TestHours,
		Options:   training.Options{RidgeLambda: *s.cfg.Training.RidgeLambda},
		ModelsDir: s.cfg.Data.ModelsDir,
		Store:     s.metrics,
		Sink:      s.sink,
		Log:       logger.New("training"),
	}
}

func (s *Service) promoteStage() pipeline.Stage {
	return pipeline.PromoteStage{
		Selector: registry.NewSelector(s.metrics, s.registry, logger.New("registry")),
		Sink:     s.sink,
	}
}

// RunPipeline executes the full batch graph: load, clean, aggregate, derive,
// train and promote.
func (s *Service) RunPipeline(ctx context.Context) (*pipeline.State, error) {
	s.startPromServer(ctx)
	st, err := s.runner(
		s.loadStage(),
		s.cleanStage(),
		pipeline.AggregateStage{},
		s.deriveStage(),
		s.trainStage(),
		s.promoteStage(),
	).Run(ctx)
	if err != nil {
		return nil, err
	}
	s.announce(st)
	return st, nil
}

// RunIngest loads and cleans the raw export, persisting the repaired table.
func (s *Service) RunIngest(ctx context.Context) (*pipeline.State, error) {
	return s.runner(
		s.loadStage(),
		s.cleanStage(),
	).Run(ctx)
}

// RunFeatures executes the derivation graph only, leaving the registry
// untouched.
func (s *Service) RunFeatures(ctx context.Context) (*pipeline.State, error) {
	return s.runner(
		s.loadStage(),
		s.cleanStage(),
		pipeline.AggregateStage{},
		s.deriveStage(),
	).Run(ctx)
}

// RunTraining executes derivation plus training without promotion.
func (s *Service) RunTraining(ctx context.Context) (*pipeline.State, error) {
	s.startPromServer(ctx)
	return s.runner(
		s.loadStage(),
		s.cleanStage(),
		pipeline.AggregateStage{},
		s.deriveStage(),
		s.trainStage(),
	).Run(ctx)
}

// RunPromotion promotes the best candidate from the existing metrics records.
func (s *Service) RunPromotion(ctx context.Context) (*pipeline.State, error) {
	st, err := s.runner(s.promoteStage()).Run(ctx)
	if err != nil {
		return nil, err
	}
	s.announce(st)
	return st, nil
}

// Serve runs the prediction HTTP server until the context is cancelled.
func (s *Service) Serve(ctx context.Context) error {
	s.startPromServer(ctx)
	pred, err := serving.NewPredictor(ctx, serving.Loader{
		Registry:  s.registry,
		ModelsDir: s.cfg.Data.ModelsDir,
	}, logger.New("serving"))
	if err != nil {
		return err
	}
	mux := api.NewMux(pred, s.registry, logger.New("api"))
	return api.Serve(ctx, s.cfg.Serving.Addr, mux, s.log)
}

func (s *Service) startPromServer(ctx context.Context) {
	if s.promEnabled {
		metrics.StartPromServer(ctx, s.promPort, s.log)
	}
}

func (s *Service) announce(st *pipeline.State) {
	if s.announcer == nil || st.Production == nil {
		return
	}
	history, err := s.registry.History(context.Background())
	if err != nil || len(history) == 0 {
		s.log.Warnf("promotion announced without event context: %v", err)
		return
	}
	if err := s.announcer.Announce(history[len(history)-1]); err != nil {
		s.log.Errorf("announce promotion: %v", err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.announcer != nil {
		s.announcer.Close()
	}
	s.bus.Close()
	return s.registry.Close()
}
