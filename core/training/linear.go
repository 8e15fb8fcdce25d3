package training

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Linear fits an ordinary least squares regression with an intercept.
type Linear struct{}

func (Linear) Name() string { return "lr" }

// Fit solves the least squares problem via QR decomposition.
func (Linear) Fit(x [][]float64, y []float64) (Model, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, ErrEmptyTrainingSet
	}
	n := len(x)
	p := len(x[0])

	a := mat.NewDense(n, p+1, nil)
	b := mat.NewDense(n, 1, nil)
	for i, row := range x {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
		b.Set(i, 0, y[i])
	}

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, b); err != nil {
		// A near-constant predictor makes the system ill-conditioned but
		// still solvable; only a hard failure aborts the fit.
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("solve least squares: %w", err)
		}
	}

	coef := make([]float64, p)
	for j := 0; j < p; j++ {
		coef[j] = sol.At(j+1, 0)
	}
	return &LinearModel{ModelName: "lr", Intercept: sol.At(0, 0), Coef: coef}, nil
}

// LinearModel predicts with a fitted linear form. Ridge and the seasonal
// baseline reuse it, so one artifact format covers every candidate.
type LinearModel struct {
	ModelName string
	Intercept float64
	Coef      []float64
}

func (m *LinearModel) Name() string { return m.ModelName }

func (m *LinearModel) Predict(rows [][]float64) []float64 {
	preds := make([]float64, len(rows))
	for i, row := range rows {
		v := m.Intercept
		for j, c := range m.Coef {
			if j < len(row) {
				v += c * row[j]
			}
		}
		preds[i] = v
	}
	return preds
}
