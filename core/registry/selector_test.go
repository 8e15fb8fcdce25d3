package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name string, mae float64) TrainingRunMetrics {
	return TrainingRunMetrics{
		ModelPath: "/models/" + name + "_model.json",
		ModelName: name,
		TestData:  "/data/features/features.csv",
		MAE:       mae,
		RMSE:      mae * 1.3,
		R2:        0.8,
	}
}

func TestPromoteSelectsMinimumMAE(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, rec("lr", 2.1)))
	require.NoError(t, store.Put(ctx, rec("ridge", 1.4)))
	require.NoError(t, store.Put(ctx, rec("naive", 1.9)))

	entry, err := NewSelector(store, store, nil).Promote(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ridge", entry.ModelName)
	assert.InDelta(t, 1.4, entry.Metrics.MAE, 1e-9)
	assert.Equal(t, "ridge_model.json", entry.ModelPath, "model_path must be a filename only")

	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, entry, current)
}

func TestPromoteTieBrokenByEnumerationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, rec("first", 1.4)))
	require.NoError(t, store.Put(ctx, rec("second", 1.4)))

	entry, err := NewSelector(store, store, nil).Promote(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", entry.ModelName)
}

func TestPromoteEmptyStoreFailsWithoutMutation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Seed an existing production pointer.
	require.NoError(t, store.Append(ctx, PromotionEvent{Production: Entry{ModelName: "old"}}))

	_, err := NewSelector(store, store, nil).Promote(ctx)
	assert.ErrorIs(t, err, ErrNoCandidates)

	current, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", current.ModelName)

	history, err := store.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPromoteSkipsPartialRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	bad := rec("broken", 0.1)
	bad.ModelPath = ""
	require.NoError(t, store.Put(ctx, bad))
	require.NoError(t, store.Put(ctx, rec("lr", 2.0)))

	entry, err := NewSelector(store, store, nil).Promote(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lr", entry.ModelName)
}

func TestPromoteAllPartialFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	bad := rec("broken", 0.1)
	bad.ModelName = ""
	require.NoError(t, store.Put(ctx, bad))

	_, err := NewSelector(store, store, nil).Promote(ctx)
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = store.Current(ctx)
	assert.ErrorIs(t, err, ErrNoProduction)
}

func TestValidateRejectsNonFinite(t *testing.T) {
	r := rec("lr", 1.0)
	require.NoError(t, r.Validate())

	nan := rec("lr", 1.0)
	nan.R2 = nanValue()
	assert.Error(t, nan.Validate())

	neg := rec("lr", -1.0)
	assert.Error(t, neg.Validate())
}

func nanValue() float64 {
	z := 0.0
	return z / z
}
