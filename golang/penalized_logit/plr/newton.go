package plr

import (
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	MethodNewton = "newton"
	MethodDamped = "damped_newton"
	MethodLasso  = "lasso"
)

//NewtonParams collect arguments of the Newton optimizers.
//A nil Start means the zero vector.
type NewtonParams struct {
	Start   []float64
	Tol     float64
	MaxIter int
	Logger  *log.Logger
}

//stepRule returns the direction d of the update beta - d together with the diagonal
//shift that was applied to the hessian.
type stepRule func(hess *mat.SymDense, grad []float64) (direction []float64, shift float64, err error)

//FitNewton maximizes the logistic log-likelihood with undamped Newton-Raphson steps
//beta ← beta - H⁻¹·grad. It stops when two consecutive log-likelihoods differ by at most
//Tol or after MaxIter steps. A singular hessian aborts the fit with ErrSingularHessian.
func FitNewton(lm LMatrix, params NewtonParams) (*Result, error) {
	return newtonLoop(lm, params, MethodNewton, undampedStep)
}

func undampedStep(hess *mat.SymDense, grad []float64) ([]float64, float64, error) {
	direction, err := solveNewtonStep(hess, grad)
	return direction, 0, err
}

func newtonLoop(lm LMatrix, params NewtonParams, method string, rule stepRule) (*Result, error) {
	ev, err := NewEvaluator(lm)
	if err != nil {
		return nil, err
	}
	if err = checkTolerance(params.Tol, params.MaxIter); err != nil {
		return nil, err
	}
	beta, err := checkStart(params.Start, ev.p)
	if err != nil {
		return nil, err
	}

	result := &Result{Method: method, Description: lm.description()}
	current, err := ev.Evaluate(beta)
	if err != nil {
		return result.fail(beta, current.LogLik, newFitError(method, 0, -1, err))
	}
	result.record(0, current.LogLik, 0, beta)

	for iter := 1; iter <= params.MaxIter; iter++ {
		direction, shift, err := rule(current.Hess, current.Grad)
		if err != nil {
			return result.fail(beta, current.LogLik, newFitError(method, iter, -1, err))
		}

		next := cloneVector(beta)
		floats.Sub(next, direction)
		evaluation, err := ev.Evaluate(next)
		if err != nil {
			return result.fail(beta, current.LogLik, newFitError(method, iter, -1, err))
		}

		delta := math.Abs(evaluation.LogLik - current.LogLik)
		beta, current = next, evaluation
		result.record(iter, current.LogLik, shift, beta)
		logf(params.Logger, "%s iteration %d: loglik = %.12g, delta = %.3g, shift = %g", method, iter, current.LogLik, delta, shift)

		if delta <= params.Tol {
			return result.finish(StatusConverged, beta, current.LogLik), nil
		}
	}

	logf(params.Logger, "%s: no convergence after %d iterations", method, params.MaxIter)
	return result.finish(StatusMaxIterReached, beta, current.LogLik), nil
}
