// Package api exposes the prediction service and registry over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/evdemand/core/logger"
	"github.com/kilianp07/evdemand/core/registry"
	"github.com/kilianp07/evdemand/core/serving"
)

type predictRequest struct {
	Instances []map[string]float64 `json:"instances"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// NewHealthHandler reports service liveness and the production model in use.
func NewHealthHandler(pred *serving.Predictor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		entry := pred.Production()
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"model":  entry.ModelName,
		})
	})
}

// NewPredictHandler serves batch predictions via POST /predict. A batch whose
// columns do not match the training schema is rejected with 422 before the
// model runs.
func NewPredictHandler(pred *serving.Predictor, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
		if len(req.Instances) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "instances must not be empty"})
			return
		}
		resp, err := pred.Predict(req.Instances)
		if err != nil {
			if errors.Is(err, serving.ErrSchemaMismatch) {
				writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
				return
			}
			log.Errorf("predict: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// NewRegistryHandler exposes the current production entry and the promotion
// history via GET /registry.
func NewRegistryHandler(reg registry.PromotionLog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		history, err := reg.History(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		current, err := reg.Current(r.Context())
		if err != nil && !errors.Is(err, registry.ErrNoProduction) {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Current registry.Entry            `json:"current"`
			History []registry.PromotionEvent `json:"history"`
		}{Current: current, History: history})
	})
}

// NewReloadHandler swaps in the latest production model via POST /reload.
func NewReloadHandler(pred *serving.Predictor, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := pred.Reload(r.Context()); err != nil {
			log.Errorf("reload: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		entry := pred.Production()
		writeJSON(w, http.StatusOK, map[string]string{"model": entry.ModelName})
	})
}

// NewMux wires all handlers onto one mux.
func NewMux(pred *serving.Predictor, reg registry.PromotionLog, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/health", NewHealthHandler(pred))
	mux.Handle("/predict", NewPredictHandler(pred, log))
	mux.Handle("/registry", NewRegistryHandler(reg))
	mux.Handle("/reload", NewReloadHandler(pred, log))
	return mux
}

// Serve runs the HTTP server until the context is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, log logger.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Infof("prediction server listening on %s", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
