package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evdemand/core/features"
	"github.com/kilianp07/evdemand/core/registry"
	"github.com/kilianp07/evdemand/core/serving"
	"github.com/kilianp07/evdemand/core/training"
	infralogger "github.com/kilianp07/evdemand/infra/logger"
)

func setup(t *testing.T) (*serving.Predictor, *registry.MemoryStore, string) {
	t.Helper()
	dir := t.TempDir()
	coef := make([]float64, len(features.Columns))
	coef[0] = 2 // n_sessions_lag1
	m := &training.LinearModel{ModelName: "lr", Intercept: 1, Coef: coef}
	require.NoError(t, training.SaveArtifact(filepath.Join(dir, "lr_model.json"), m))

	store := registry.NewMemoryStore()
	require.NoError(t, store.Append(context.Background(), registry.PromotionEvent{
		Production: registry.Entry{ModelName: "lr", ModelPath: "lr_model.json"},
	}))

	pred, err := serving.NewPredictor(context.Background(), serving.Loader{
		Registry: store, ModelsDir: dir,
	}, infralogger.NopLogger{})
	require.NoError(t, err)
	return pred, store, dir
}

func fullRow(v float64) map[string]float64 {
	row := make(map[string]float64, len(features.Columns))
	for _, c := range features.Columns {
		row[c] = v
	}
	return row
}

func TestHealthReportsProductionModel(t *testing.T) {
	pred, _, _ := setup(t)
	rr := httptest.NewRecorder()
	NewHealthHandler(pred).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "lr", out["model"])
}

func TestPredictReturnsTaggedPredictions(t *testing.T) {
	pred, _, _ := setup(t)
	row := fullRow(0)
	row["n_sessions_lag1"] = 3
	body, err := json.Marshal(predictRequest{Instances: []map[string]float64{row}})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(string(body)))
	NewPredictHandler(pred, infralogger.NopLogger{}).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp serving.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "lr", resp.ModelName)
	require.Len(t, resp.Predictions, 1)
	assert.InDelta(t, 7, resp.Predictions[0], 1e-9)
}

func TestPredictRejectsSchemaMismatch(t *testing.T) {
	pred, _, _ := setup(t)
	row := fullRow(0)
	delete(row, "lag_168")
	body, _ := json.Marshal(predictRequest{Instances: []map[string]float64{row}})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(string(body)))
	NewPredictHandler(pred, infralogger.NopLogger{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "lag_168")
}

func TestPredictRejectsBadBody(t *testing.T) {
	pred, _, _ := setup(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("{not json"))
	NewPredictHandler(pred, infralogger.NopLogger{}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"instances": []}`))
	NewPredictHandler(pred, infralogger.NopLogger{}).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPredictRejectsGet(t *testing.T) {
	pred, _, _ := setup(t)
	rr := httptest.NewRecorder()
	NewPredictHandler(pred, infralogger.NopLogger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/predict", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRegistryListsHistory(t *testing.T) {
	pred, store, _ := setup(t)
	_ = pred
	rr := httptest.NewRecorder()
	NewRegistryHandler(store).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/registry", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var out struct {
		Current registry.Entry            `json:"current"`
		History []registry.PromotionEvent `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "lr", out.Current.ModelName)
	require.Len(t, out.History, 1)
}

func TestRegistryEmptyLog(t *testing.T) {
	rr := httptest.NewRecorder()
	NewRegistryHandler(registry.NewMemoryStore()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/registry", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var out struct {
		Current registry.Entry `json:"current"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Empty(t, out.Current.ModelName)
}

func TestReloadSwapsModel(t *testing.T) {
	pred, store, dir := setup(t)

	coef := make([]float64, len(features.Columns))
	m := &training.LinearModel{ModelName: "ridge", Intercept: 5, Coef: coef}
	require.NoError(t, training.SaveArtifact(filepath.Join(dir, "ridge_model.json"), m))
	require.NoError(t, store.Append(context.Background(), registry.PromotionEvent{
		Production: registry.Entry{ModelName: "ridge", ModelPath: "ridge_model.json"},
	}))

	rr := httptest.NewRecorder()
	NewReloadHandler(pred, infralogger.NopLogger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/reload", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "ridge", out["model"])
}
