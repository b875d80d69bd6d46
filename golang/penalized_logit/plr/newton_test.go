package plr

import (
	"bytes"
	"errors"
	"log"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitNewtonDebugData(t *testing.T) {
	lm := GenerateDebugData(t)
	result, err := FitNewton(lm, NewtonParams{Tol: 1e-12, MaxIter: 50})
	require.NoError(t, err)

	assert.True(t, result.Converged())
	assert.Equal(t, MethodNewton, result.Method)
	assert.InDeltaSlice(t, []float64{-0.30836771755688697, 1.2334708702275483}, result.Coefficients, 1e-9)
	assert.InDelta(t, -3.2215881954877323, result.Value, 1e-10)
	assert.Len(t, result.Trace, 6)
	assert.Equal(t, 5, result.Iterations)

	start := result.Trace[0]
	assert.Equal(t, 0, start.Iteration)
	assert.Equal(t, []float64{0, 0}, start.Coefficients)
	assert.InDelta(t, -6*math.Ln2, start.Value, 1e-12)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, result.Coefficients, last.Coefficients)
	assert.Equal(t, result.Value, last.Value)
}

func TestFitNewtonSparseData(t *testing.T) {
	lm := GenerateSparseData(t, 400, 7)
	result, err := FitNewton(lm, NewtonParams{Tol: 1e-10, MaxIter: 50})
	require.NoError(t, err)

	assert.True(t, result.Converged())
	assert.Len(t, result.Trace, 7)
	assert.InDeltaSlice(t, []float64{
		-0.03181079108590088,
		-0.05801664683537659,
		2.132911561725246,
		0.09000803500499895,
	}, result.Coefficients, 1e-7)

	evaluation, err := Evaluate(lm.Features, lm.response(), result.Coefficients)
	require.NoError(t, err)
	for _, g := range evaluation.Grad {
		assert.InDelta(t, 0, g, 1e-6)
	}
}

func TestFitNewtonStartIsCopied(t *testing.T) {
	lm := GenerateDebugData(t)
	start := []float64{0.1, 0.2}
	result, err := FitNewton(lm, NewtonParams{Start: start, Tol: 1e-12, MaxIter: 50})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.1, 0.2}, start)
	assert.Equal(t, start, result.Trace[0].Coefficients)
	assert.InDeltaSlice(t, []float64{-0.30836771755688697, 1.2334708702275483}, result.Coefficients, 1e-9)
}

func TestFitNewtonDeterministic(t *testing.T) {
	lm := GenerateSparseData(t, 400, 7)
	first, err := FitNewton(lm, NewtonParams{Tol: 1e-10, MaxIter: 50})
	require.NoError(t, err)
	second, err := FitNewton(lm, NewtonParams{Tol: 1e-10, MaxIter: 50})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFitNewtonMaxIter(t *testing.T) {
	lm := GenerateSparseData(t, 400, 7)

	result, err := FitNewton(lm, NewtonParams{Tol: 1e-10, MaxIter: 2})
	require.NoError(t, err)
	assert.Equal(t, StatusMaxIterReached, result.Status)
	assert.Len(t, result.Trace, 3)
	assert.Equal(t, 2, result.Iterations)

	result, err = FitNewton(lm, NewtonParams{Tol: 1e-10})
	require.NoError(t, err)
	assert.Equal(t, StatusMaxIterReached, result.Status)
	assert.Len(t, result.Trace, 1)
	assert.Equal(t, []float64{0, 0, 0, 0}, result.Coefficients)
}

func TestFitNewtonSeparableData(t *testing.T) {
	lm := GenerateSeparableData(t)
	result, err := FitNewton(lm, NewtonParams{Tol: 1e-20, MaxIter: 100})
	require.Error(t, err)
	require.NotNil(t, result)

	assert.True(t, errors.Is(err, ErrSingularHessian))
	assert.Equal(t, StatusFailed, result.Status)
	assert.Len(t, result.Trace, 40)

	var fitErr *FitError
	require.True(t, errors.As(err, &fitErr))
	assert.Equal(t, MethodNewton, fitErr.Method)
	assert.Equal(t, 40, fitErr.Iteration)
	assert.Equal(t, -1, fitErr.Coordinate)
	assert.Equal(t, result.Trace[len(result.Trace)-1].Coefficients, result.Coefficients)
}

func TestFitNewtonInvalidInput(t *testing.T) {
	lm := GenerateDebugData(t)

	_, err := FitNewton(lm, NewtonParams{Start: []float64{0, 0, 0}, Tol: 1e-6, MaxIter: 10})
	assert.True(t, errors.Is(err, ErrDimensionMismatch))

	_, err = FitNewton(lm, NewtonParams{Tol: -1, MaxIter: 10})
	assert.True(t, errors.Is(err, ErrInvalidParams))

	_, err = FitNewton(lm, NewtonParams{Tol: 1e-6, MaxIter: -1})
	assert.True(t, errors.Is(err, ErrInvalidParams))

	_, err = FitNewton(lm, NewtonParams{Start: []float64{math.NaN(), 0}, Tol: 1e-6, MaxIter: 10})
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestFitNewtonLogger(t *testing.T) {
	var buf bytes.Buffer
	lm := GenerateDebugData(t)
	_, err := FitNewton(lm, NewtonParams{Tol: 1e-12, MaxIter: 50, Logger: log.New(&buf, "", 0)})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "newton iteration 1: loglik =")
}
