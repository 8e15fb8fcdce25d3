package registry

import (
	"context"
	"path/filepath"
	"time"

	"github.com/kilianp07/evdemand/core/logger"
)

// Selector promotes the best evaluated candidate to production.
type Selector struct {
	store MetricsStore
	reg   PromotionLog
	log   logger.Logger
	now   func() time.Time
}

// NewSelector creates a Selector reading candidates from store and writing
// promotions to reg.
func NewSelector(store MetricsStore, reg PromotionLog, log logger.Logger) *Selector {
	return &Selector{store: store, reg: reg, log: log, now: time.Now}
}

// Promote scans all persisted metrics records, selects the one with minimum
// MAE (ties broken by enumeration order) and appends a promotion event.
// With zero usable records it returns ErrNoCandidates and the registry is
// not mutated. Partial records are skipped with a warning, never promoted.
func (s *Selector) Promote(ctx context.Context) (Entry, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return Entry{}, err
	}

	best := -1
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			if s.log != nil {
				s.log.Warnf("skipping metrics record %s: %v", rec.MetricsPath, err)
			}
			continue
		}
		if best < 0 || rec.MAE < records[best].MAE {
			best = i
		}
	}
	if best < 0 {
		return Entry{}, ErrNoCandidates
	}

	rec := records[best]
	entry := Entry{
		ModelName: rec.ModelName,
		ModelPath: filepath.Base(rec.ModelPath),
		Metrics: ProductionMetrics{
			MAE:  rec.MAE,
			RMSE: rec.RMSE,
			R2:   rec.R2,
		},
		TestData:    rec.TestData,
		MetricsPath: rec.MetricsPath,
	}
	if err := s.reg.Append(ctx, PromotionEvent{Timestamp: s.now().UTC(), Production: entry}); err != nil {
		return Entry{}, err
	}
	if s.log != nil {
		s.log.Infof("promoted %s (mae=%.4f) to production", entry.ModelName, entry.Metrics.MAE)
	}
	return entry, nil
}
