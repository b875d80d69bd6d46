package plr

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultDampingStep     = 1.0
	DefaultMaxDampingSteps = 64
	DefaultMaxShift        = 1e8

	// eigenvalues above -ndToleranceFactor·p·ε·max(1, ρ(H)) are treated as non-negative
	ndToleranceFactor = 1e3
)

//DampedParams extend NewtonParams with the bounds of the damping search.
//A non-positive DampingStep and negative MaxDampingSteps or MaxShift select the defaults.
//MaxDampingSteps 0 keeps the eigenvalue candidate without escalation, MaxShift 0 forbids damping.
type DampedParams struct {
	NewtonParams
	DampingStep     float64
	MaxDampingSteps int
	MaxShift        float64
}

//NewDampedParams wraps newton with the default damping bounds.
func NewDampedParams(newton NewtonParams) DampedParams {
	return DampedParams{
		NewtonParams:    newton,
		DampingStep:     DefaultDampingStep,
		MaxDampingSteps: DefaultMaxDampingSteps,
		MaxShift:        DefaultMaxShift,
	}
}

func (params DampedParams) withDefaults() (DampedParams, error) {
	if params.DampingStep <= 0 {
		params.DampingStep = DefaultDampingStep
	}
	if params.MaxDampingSteps < 0 {
		params.MaxDampingSteps = DefaultMaxDampingSteps
	}
	if params.MaxShift < 0 {
		params.MaxShift = DefaultMaxShift
	}
	switch {
	case math.IsNaN(params.DampingStep) || math.IsInf(params.DampingStep, 0):
		return params, invalidParams("damping step must be finite, got %g", params.DampingStep)
	case math.IsNaN(params.MaxShift):
		return params, invalidParams("max shift must not be NaN")
	}
	return params, nil
}

//FitDampedNewton runs Newton iterations on the damped hessian H - λI, where λ is the
//smallest non-negative multiple of DampingStep that makes it negative definite. Every
//step is therefore an ascent direction of the log-likelihood. The stopping rule is the
//one of FitNewton.
func FitDampedNewton(lm LMatrix, params DampedParams) (*Result, error) {
	params, err := params.withDefaults()
	if err != nil {
		return nil, err
	}

	rule := func(hess *mat.SymDense, grad []float64) ([]float64, float64, error) {
		shift, err := dampingShift(hess, params.DampingStep, params.MaxDampingSteps, params.MaxShift)
		if err != nil {
			return nil, 0, err
		}
		direction, err := solveNewtonStep(shiftDiagonal(hess, shift), grad)
		return direction, shift, err
	}
	return newtonLoop(lm, params.NewtonParams, MethodDamped, rule)
}

//dampingShift picks the shift from the largest eigenvalue of hess, rounded up to the step
//grid, and confirms it with a Cholesky factorization. Failed confirmations raise the shift
//by one step at most maxSteps times.
func dampingShift(hess *mat.SymDense, step float64, maxSteps int, maxShift float64) (float64, error) {
	largest, radius, err := extremeEigenvalues(hess)
	if err != nil {
		return 0, err
	}
	tolerance := float64(hess.SymmetricDim()) * epsilon * ndToleranceFactor * math.Max(1, radius)

	shift := 0.0
	if largest >= -tolerance {
		shift = (math.Floor((largest+tolerance)/step) + 1) * step
	}

	for attempt := 0; attempt <= maxSteps; attempt++ {
		if shift > maxShift {
			return 0, errors.Wrapf(ErrDampingExhausted, "required shift %g exceeds %g", shift, maxShift)
		}
		if isNegativeDefinite(shiftDiagonal(hess, shift)) {
			return shift, nil
		}
		shift += step
	}
	return 0, errors.Wrapf(ErrDampingExhausted, "hessian is not negative definite after %d shift increments", maxSteps)
}
