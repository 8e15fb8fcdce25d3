package registry

import (
	"context"
	"errors"
)

// ErrNoCandidates indicates promotion was attempted with zero metrics
// records. The registry is left untouched.
var ErrNoCandidates = errors.New("registry: no training metrics records found")

// ErrNoProduction indicates no model has ever been promoted.
var ErrNoProduction = errors.New("registry: no production model promoted")

// MetricsStore persists one TrainingRunMetrics record per training run.
// List returns records in the store's enumeration order, which is also the
// tie-break order during promotion.
type MetricsStore interface {
	Put(ctx context.Context, rec TrainingRunMetrics) error
	List(ctx context.Context) ([]TrainingRunMetrics, error)
}

// PromotionLog is the append-only registry. Append must be serialized by the
// implementation: promotion performs a scan-then-append on one shared
// resource, and concurrent writers from separate processes additionally
// require external serialization (one promoter per registry).
type PromotionLog interface {
	Append(ctx context.Context, ev PromotionEvent) error
	// Current returns the latest valid promotion, or ErrNoProduction.
	Current(ctx context.Context) (Entry, error)
	History(ctx context.Context) ([]PromotionEvent, error)
	Close() error
}
