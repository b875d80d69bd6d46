package plr

import (
	"log"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

//DegeneratePolicy selects what coordinate descent does with a column whose weighted
//sum of squares is zero.
type DegeneratePolicy int

const (
	//DegenerateZero sets the coefficient to zero and reports the column in Result.Degenerate.
	DegenerateZero DegeneratePolicy = iota
	//DegenerateHold keeps the previous value and reports the column in Result.Degenerate.
	DegenerateHold
	//DegenerateFail aborts the fit with ErrDegenerateCoordinate.
	DegenerateFail
)

//NoIntercept as LassoParams.Intercept penalizes every coefficient.
const NoIntercept = -1

//LassoParams collect arguments of the coordinate descent solver.
//Intercept is the index of the unpenalized column, 0 by default.
type LassoParams struct {
	Start      []float64
	Lambda     float64
	Tol        float64
	MaxIter    int
	Intercept  int
	Degenerate DegeneratePolicy
	Logger     *log.Logger
}

func (params LassoParams) validate(p int) error {
	if math.IsNaN(params.Lambda) || math.IsInf(params.Lambda, 0) || params.Lambda < 0 {
		return invalidParams("lambda must be a non-negative number, got %g", params.Lambda)
	}
	if params.Intercept < NoIntercept || params.Intercept >= p {
		return invalidParams("intercept index %d is out of [-1, %d)", params.Intercept, p)
	}
	if params.Degenerate < DegenerateZero || params.Degenerate > DegenerateFail {
		return invalidParams("unknown degenerate policy %d", params.Degenerate)
	}
	return checkTolerance(params.Tol, params.MaxIter)
}

//SoftThreshold is sign(v)·max(|v| - gamma, 0).
func SoftThreshold(v, gamma float64) float64 {
	switch {
	case v > gamma:
		return v - gamma
	case v < -gamma:
		return v + gamma
	default:
		return 0
	}
}

//FitLasso fits L1-penalized logistic regression by IRLS with cyclic coordinate descent.
//Each outer cycle linearizes the likelihood at the current coefficients and sweeps the
//coordinates in ascending order:
//
//	r   = z - X·beta + x_k·beta_k
//	val = Σ wᵢ xᵢₖ rᵢ
//	beta_k = S(val, λ) / Σ wᵢ xᵢₖ²
//
//The intercept column takes val / Σ wᵢ xᵢₖ² without thresholding. The run stops when the
//euclidean norm of the change of beta over one cycle drops below Tol.
func FitLasso(lm LMatrix, params LassoParams) (*Result, error) {
	n, p, err := lm.validatedDimensions()
	if err != nil {
		return nil, err
	}
	if err = params.validate(p); err != nil {
		return nil, err
	}
	beta, err := checkStart(params.Start, p)
	if err != nil {
		return nil, err
	}

	x, y := lm.Features, lm.response()
	cols := columns(x)
	result := &Result{Method: MethodLasso, Lambda: params.Lambda, Description: lm.description()}

	wq := working(x, y, beta)
	objective := lassoObjective(wq, wq.Eta, beta, params.Lambda, params.Intercept, n)
	result.record(0, objective, 0, beta)

	degenerate := make([]bool, p)
	sweep := NewRange(0, p, 1)

	for iter := 1; iter <= params.MaxIter; iter++ {
		previous := cloneVector(beta)
		wq = working(x, y, beta)
		fit := cloneVector(wq.Eta)

		for sweep.Reset(); sweep.HasNext(); {
			k := sweep.GetNext()
			column := cols[k]

			norm := 0.0
			val := 0.0
			for i, xik := range column {
				norm += wq.Weight[i] * xik * xik
				val += wq.Weight[i] * xik * (wq.Response[i] - fit[i] + xik*beta[k])
			}

			var updated float64
			switch {
			case norm == 0 && params.Degenerate == DegenerateFail:
				err = errors.Wrapf(ErrDegenerateCoordinate, "zero weighted sum of squares in column %d", k)
				return result.fail(previous, objective, newFitError(MethodLasso, iter, k, err))
			case norm == 0 && params.Degenerate == DegenerateHold:
				degenerate[k] = true
				continue
			case norm == 0:
				degenerate[k] = true
				updated = 0
			case k == params.Intercept:
				updated = val / norm
			default:
				updated = SoftThreshold(val, params.Lambda) / norm
			}

			if delta := updated - beta[k]; delta != 0 {
				floats.AddScaled(fit, delta, column)
				beta[k] = updated
			}
		}

		objective = lassoObjective(wq, fit, beta, params.Lambda, params.Intercept, n)
		if math.IsNaN(objective) || math.IsInf(objective, 0) || !allFinite(beta) {
			err = errors.Wrapf(ErrNonFinite, "objective %g", objective)
			return result.fail(previous, result.Trace[len(result.Trace)-1].Value, newFitError(MethodLasso, iter, -1, err))
		}
		result.record(iter, objective, 0, beta)

		change := floats.Distance(beta, previous, 2)
		logf(params.Logger, "%s lambda %g iteration %d: objective = %.12g, change = %.3g", MethodLasso, params.Lambda, iter, objective, change)

		if change < params.Tol {
			result.Degenerate = flagged(degenerate)
			return result.finish(StatusConverged, beta, objective), nil
		}
	}

	logf(params.Logger, "%s lambda %g: no convergence after %d iterations", MethodLasso, params.Lambda, params.MaxIter)
	result.Degenerate = flagged(degenerate)
	return result.finish(StatusMaxIterReached, beta, objective), nil
}

//lassoObjective is (1/2n)·Σ wᵢ(zᵢ - fitᵢ)² + λ·Σ|beta_j| with the intercept left out of the penalty.
func lassoObjective(wq Working, fit, beta []float64, lambda float64, intercept, n int) float64 {
	loss := 0.0
	for i, w := range wq.Weight {
		d := wq.Response[i] - fit[i]
		loss += w * d * d
	}
	penalty := 0.0
	for j, b := range beta {
		if j != intercept {
			penalty += math.Abs(b)
		}
	}
	return loss/(2*float64(n)) + lambda*penalty
}

func flagged(flags []bool) (indices []int) {
	for ind, flag := range flags {
		if flag {
			indices = append(indices, ind)
		}
	}
	return
}
