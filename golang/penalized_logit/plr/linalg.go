package plr

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// epsilon is the float64 machine epsilon.
var epsilon = math.Nextafter(1, 2) - 1

//linearPredictor computes u = X·beta.
func linearPredictor(x *mat.Dense, beta []float64) []float64 {
	u := mat.NewVecDense(Height(x), nil)
	u.MulVec(x, mat.NewVecDense(len(beta), cloneVector(beta)))
	return u.RawVector().Data
}

//solveNewtonStep solves H·d = grad. The caller subtracts d from the coefficients.
func solveNewtonStep(hess mat.Symmetric, grad []float64) ([]float64, error) {
	var lu mat.LU
	lu.Factorize(hess)
	if cond := lu.Cond(); math.IsNaN(cond) || cond > mat.ConditionTolerance {
		return nil, errors.Wrapf(ErrSingularHessian, "condition number %g", cond)
	}

	step := mat.NewVecDense(len(grad), nil)
	if err := lu.SolveVecTo(step, false, mat.NewVecDense(len(grad), cloneVector(grad))); err != nil {
		return nil, errors.Wrap(ErrSingularHessian, err.Error())
	}
	direction := step.RawVector().Data
	if !allFinite(direction) {
		return nil, errors.Wrap(ErrSingularHessian, "non-finite newton direction")
	}
	return direction, nil
}

//isNegativeDefinite tests h through the Cholesky factorization of -h.
func isNegativeDefinite(h mat.Symmetric) bool {
	neg := mat.NewSymDense(h.SymmetricDim(), nil)
	neg.ScaleSym(-1, h)
	var chol mat.Cholesky
	return chol.Factorize(neg)
}

//extremeEigenvalues returns the largest eigenvalue of h and its spectral radius.
func extremeEigenvalues(h mat.Symmetric) (largest, radius float64, err error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(h, false); !ok {
		return 0, 0, errors.Wrap(ErrNonFinite, "eigen decomposition of the hessian did not converge")
	}
	values := eig.Values(nil)
	largest = values[len(values)-1]
	radius = math.Max(math.Abs(values[0]), math.Abs(largest))
	return
}

//shiftDiagonal returns a copy of h - lambda·I.
func shiftDiagonal(h mat.Symmetric, lambda float64) *mat.SymDense {
	n := h.SymmetricDim()
	shifted := mat.NewSymDense(n, nil)
	shifted.CopySym(h)
	for ind := 0; ind < n; ind++ {
		shifted.SetSym(ind, ind, shifted.At(ind, ind)-lambda)
	}
	return shifted
}
