// Package pipeline runs the batch derivation and training stages as an
// in-process task graph with typed inputs and outputs. Stages share a State
// value; each stage reads what its predecessors produced and a failure halts
// the run with the failing stage attached to the error.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/evdemand/core/clean"
	"github.com/kilianp07/evdemand/core/features"
	"github.com/kilianp07/evdemand/core/logger"
	"github.com/kilianp07/evdemand/core/model"
	"github.com/kilianp07/evdemand/core/registry"
	"github.com/kilianp07/evdemand/internal/eventbus"
)

// State carries typed artifacts between stages within one run. A run that
// fails mid-way discards its state; partial results are never persisted as
// a registry update.
type State struct {
	RawSessions   []model.Session
	CleanSessions []model.Session
	CleanReport   clean.Report
	CleanPath     string
	Buckets       []model.HourlyBucket
	Features      []features.Row
	FeaturesPath  string
	Runs          []registry.TrainingRunMetrics
	Production    *registry.Entry
}

// Stage is one unit of the task graph.
type Stage interface {
	Name() string
	Run(ctx context.Context, st *State) error
}

// StageError wraps a failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Event is published after each stage finishes.
type Event struct {
	Stage    string
	Duration time.Duration
	Err      error
}

// Runner executes stages sequentially.
type Runner struct {
	stages []Stage
	bus    *eventbus.Bus[Event]
	log    logger.Logger
}

// NewRunner creates a Runner. The bus may be nil when nobody observes stage
// events.
func NewRunner(log logger.Logger, bus *eventbus.Bus[Event], stages ...Stage) *Runner {
	return &Runner{stages: stages, bus: bus, log: log}
}

// Run executes all stages in order, stopping at the first failure.
func (r *Runner) Run(ctx context.Context) (*State, error) {
	st := &State{}
	for _, stage := range r.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		err := stage.Run(ctx, st)
		if r.bus != nil {
			r.bus.Publish(Event{Stage: stage.Name(), Duration: time.Since(start), Err: err})
		}
		if err != nil {
			return nil, &StageError{Stage: stage.Name(), Err: err}
		}
		if r.log != nil {
			r.log.Infof("stage %s completed in %s", stage.Name(), time.Since(start).Round(time.Millisecond))
		}
	}
	return st, nil
}
