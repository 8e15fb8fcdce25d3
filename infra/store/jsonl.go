// Package store provides the persistence backends for training run metrics
// and the registry promotion log.
package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/evdemand/core/registry"
)

// JSONLRegistry stores promotion events as an append-only JSONL file. The
// in-process mutex serializes writers within one process; running several
// promoters against the same file requires external serialization.
type JSONLRegistry struct {
	path string
	mu   sync.Mutex
}

// NewJSONLRegistry opens or creates the registry file.
func NewJSONLRegistry(path string) (*JSONLRegistry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLRegistry{path: path}, nil
}

// Append writes one promotion event.
func (s *JSONLRegistry) Append(_ context.Context, ev registry.PromotionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(ev)
}

// Current returns the latest valid promotion. Truncated or malformed lines
// are skipped so a crashed writer cannot take readers down with it.
func (s *JSONLRegistry) Current(ctx context.Context) (registry.Entry, error) {
	events, err := s.History(ctx)
	if err != nil {
		return registry.Entry{}, err
	}
	if len(events) == 0 {
		return registry.Entry{}, registry.ErrNoProduction
	}
	return events[len(events)-1].Production, nil
}

// History returns all valid promotion events in append order.
func (s *JSONLRegistry) History(_ context.Context) ([]registry.PromotionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var events []registry.PromotionEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev registry.PromotionEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		if ev.Production.ModelName == "" || ev.Production.ModelPath == "" {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Close is a no-op; the file is opened per operation.
func (s *JSONLRegistry) Close() error { return nil }

// DirMetricsStore persists one metrics JSON file per training run under a
// directory. List enumerates files in name order, which is the promotion
// tie-break order.
type DirMetricsStore struct {
	dir string
}

// NewDirMetricsStore ensures the directory exists.
func NewDirMetricsStore(dir string) (*DirMetricsStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirMetricsStore{dir: dir}, nil
}

// Put writes the record to its own file, keyed by model name, timestamp and
// a run id so concurrent runs never collide.
func (s *DirMetricsStore) Put(_ context.Context, rec registry.TrainingRunMetrics) error {
	rec.MetricsPath = ""
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s_%s_%s_metrics.json",
		rec.ModelName, time.Now().UTC().Format("20060102_150405"), uuid.NewString()[:8])
	return os.WriteFile(filepath.Join(s.dir, name), b, 0o644)
}

// List loads every metrics record, filling MetricsPath with the source file.
func (s *DirMetricsStore) List(_ context.Context) ([]registry.TrainingRunMetrics, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*_metrics.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var records []registry.TrainingRunMetrics
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var rec registry.TrainingRunMetrics
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("decode metrics record %s: %w", p, err)
		}
		rec.MetricsPath = p
		records = append(records, rec)
	}
	return records, nil
}
