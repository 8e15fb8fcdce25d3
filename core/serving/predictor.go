package serving

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/kilianp07/evdemand/core/logger"
	"github.com/kilianp07/evdemand/core/registry"
	"github.com/kilianp07/evdemand/core/training"
)

// Response is one prediction batch result, tagged with the production model
// that produced it.
type Response struct {
	ModelName   string    `json:"model_name"`
	Predictions []float64 `json:"predictions"`
}

// Loader resolves the current production artifact from the registry. The
// registry entry carries the artifact filename only; the models directory is
// resolved here, at the consumer.
type Loader struct {
	Registry  registry.PromotionLog
	ModelsDir string
}

// LoadProduction reads the registry and loads the production model.
func (l Loader) LoadProduction(ctx context.Context) (training.Model, registry.Entry, error) {
	entry, err := l.Registry.Current(ctx)
	if err != nil {
		return nil, registry.Entry{}, err
	}
	model, err := training.LoadArtifact(filepath.Join(l.ModelsDir, entry.ModelPath))
	if err != nil {
		return nil, registry.Entry{}, fmt.Errorf("load production model: %w", err)
	}
	return model, entry, nil
}

// Predictor serves predictions with the current production model. Reload is
// safe to call while predictions are in flight.
type Predictor struct {
	loader Loader
	schema Schema
	log    logger.Logger

	mu    sync.RWMutex
	model training.Model
	entry registry.Entry
}

// NewPredictor loads the production model and returns a ready Predictor.
func NewPredictor(ctx context.Context, loader Loader, log logger.Logger) (*Predictor, error) {
	p := &Predictor{loader: loader, schema: NewSchema(), log: log}
	if err := p.Reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the registry and swaps in the current production model.
func (p *Predictor) Reload(ctx context.Context) error {
	model, entry, err := p.loader.LoadProduction(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.model = model
	p.entry = entry
	p.mu.Unlock()
	if p.log != nil {
		p.log.Infof("serving production model %s (%s)", entry.ModelName, entry.ModelPath)
	}
	return nil
}

// Production returns the registry entry currently being served.
func (p *Predictor) Production() registry.Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entry
}

// Predict validates the batch against the schema and returns one prediction
// per row. A schema mismatch is rejected before the model is invoked.
func (p *Predictor) Predict(batch []map[string]float64) (Response, error) {
	matrix, err := p.schema.Matrix(batch)
	if err != nil {
		return Response{}, err
	}
	p.mu.RLock()
	model := p.model
	name := p.entry.ModelName
	p.mu.RUnlock()
	return Response{ModelName: name, Predictions: model.Predict(matrix)}, nil
}
