package registry

import (
	"context"
	"sync"
)

// MemoryStore keeps metrics records and promotions in memory for tests or
// lightweight usage.
type MemoryStore struct {
	mu      sync.Mutex
	records []TrainingRunMetrics
	events  []PromotionEvent
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Put appends the record in arrival order.
func (s *MemoryStore) Put(_ context.Context, rec TrainingRunMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// List returns records in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]TrainingRunMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TrainingRunMetrics, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Append records the promotion event.
func (s *MemoryStore) Append(_ context.Context, ev PromotionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Current returns the latest promotion.
func (s *MemoryStore) Current(_ context.Context) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return Entry{}, ErrNoProduction
	}
	return s.events[len(s.events)-1].Production, nil
}

// History returns all promotion events in order.
func (s *MemoryStore) History(_ context.Context) ([]PromotionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PromotionEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
