package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evdemand/core/registry"
)

func sampleEvent(name string, mae float64) registry.PromotionEvent {
	return registry.PromotionEvent{
		Timestamp: time.Date(2019, 5, 1, 12, 0, 0, 0, time.UTC),
		Production: registry.Entry{
			ModelName: name,
			ModelPath: name + "_model.json",
			Metrics:   registry.ProductionMetrics{MAE: mae, RMSE: mae * 1.2, R2: 0.9},
			TestData:  "features.csv",
		},
	}
}

func TestJSONLRegistryAppendCurrentHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.jsonl")
	reg, err := NewJSONLRegistry(path)
	require.NoError(t, err)

	_, err = reg.Current(ctx)
	assert.ErrorIs(t, err, registry.ErrNoProduction)

	require.NoError(t, reg.Append(ctx, sampleEvent("lr", 2.0)))
	require.NoError(t, reg.Append(ctx, sampleEvent("ridge", 1.5)))

	current, err := reg.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ridge", current.ModelName)
	assert.InDelta(t, 1.5, current.Metrics.MAE, 1e-9)

	history, err := reg.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "lr", history[0].Production.ModelName)
}

func TestJSONLRegistrySkipsCorruptLines(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.jsonl")
	reg, err := NewJSONLRegistry(path)
	require.NoError(t, err)
	require.NoError(t, reg.Append(ctx, sampleEvent("lr", 2.0)))

	// Simulate a crashed writer leaving a truncated line.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"timestamp":"2019-05-01T1`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	current, err := reg.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lr", current.ModelName)
}

func TestDirMetricsStorePutList(t *testing.T) {
	ctx := context.Background()
	s, err := NewDirMetricsStore(t.TempDir())
	require.NoError(t, err)

	rec := registry.TrainingRunMetrics{
		ModelPath: "/models/lr_model.json",
		ModelName: "lr",
		TestData:  "features.csv",
		MAE:       1.1,
		RMSE:      1.4,
		R2:        0.85,
	}
	require.NoError(t, s.Put(ctx, rec))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "lr", records[0].ModelName)
	assert.InDelta(t, 1.1, records[0].MAE, 1e-9)
	assert.NotEmpty(t, records[0].MetricsPath)
	assert.FileExists(t, records[0].MetricsPath)
}

func TestDirMetricsStoreEmpty(t *testing.T) {
	s, err := NewDirMetricsStore(t.TempDir())
	require.NoError(t, err)
	records, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Current(ctx)
	assert.ErrorIs(t, err, registry.ErrNoProduction)

	require.NoError(t, s.Put(ctx, registry.TrainingRunMetrics{
		ModelPath: "lr_model.json", ModelName: "lr", MAE: 2, RMSE: 2.4, R2: 0.7,
	}))
	require.NoError(t, s.Put(ctx, registry.TrainingRunMetrics{
		ModelPath: "ridge_model.json", ModelName: "ridge", MAE: 1.5, RMSE: 1.9, R2: 0.8,
	}))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "lr", records[0].ModelName, "list order is insertion order")

	require.NoError(t, s.Append(ctx, sampleEvent("ridge", 1.5)))
	current, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ridge", current.ModelName)

	history, err := s.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSelectorWorksAgainstJSONLBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ms, err := NewDirMetricsStore(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	reg, err := NewJSONLRegistry(filepath.Join(dir, "registry.jsonl"))
	require.NoError(t, err)

	for _, c := range []struct {
		name string
		mae  float64
	}{{"lr", 2.1}, {"ridge", 1.4}, {"naive", 1.9}} {
		require.NoError(t, ms.Put(ctx, registry.TrainingRunMetrics{
			ModelPath: "/models/" + c.name + "_model.json",
			ModelName: c.name,
			MAE:       c.mae, RMSE: c.mae * 1.2, R2: 0.8,
		}))
	}

	entry, err := registry.NewSelector(ms, reg, nil).Promote(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ridge", entry.ModelName)
	assert.NotEmpty(t, entry.MetricsPath)

	current, err := reg.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, entry, current)
}
