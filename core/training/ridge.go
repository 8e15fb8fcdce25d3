package training

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ridge fits an L2-regularized linear regression. The intercept is not
// penalized.
type Ridge struct {
	Lambda float64
}

func (Ridge) Name() string { return "ridge" }

// Fit solves the normal equations (XᵀX + λI)β = Xᵀy.
func (r Ridge) Fit(x [][]float64, y []float64) (Model, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, ErrEmptyTrainingSet
	}
	lambda := r.Lambda
	if lambda < 0 {
		return nil, fmt.Errorf("training: negative ridge lambda %v", lambda)
	}
	n := len(x)
	p := len(x[0])

	a := mat.NewDense(n, p+1, nil)
	b := mat.NewVecDense(n, nil)
	for i, row := range x {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
		b.SetVec(i, y[i])
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	for j := 1; j <= p; j++ {
		ata.Set(j, j, ata.At(j, j)+lambda)
	}
	var aty mat.VecDense
	aty.MulVec(a.T(), b)

	var sol mat.VecDense
	if err := sol.SolveVec(&ata, &aty); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("solve ridge system: %w", err)
		}
	}

	coef := make([]float64, p)
	for j := 0; j < p; j++ {
		coef[j] = sol.AtVec(j + 1)
	}
	return &LinearModel{ModelName: "ridge", Intercept: sol.AtVec(0), Coef: coef}, nil
}
