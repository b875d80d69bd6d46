package plr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func diag(values ...float64) *mat.SymDense {
	result := mat.NewSymDense(len(values), nil)
	for ind, val := range values {
		result.SetSym(ind, ind, val)
	}
	return result
}

func TestSolveNewtonStep(t *testing.T) {
	hess := mat.NewSymDense(2, []float64{
		-2.0, 0.5,
		0.5, -1.0,
	})
	grad := []float64{1, 2}

	direction, err := solveNewtonStep(hess, grad)
	require.NoError(t, err)

	var check mat.VecDense
	check.MulVec(hess, mat.NewVecDense(2, direction))
	assert.InDeltaSlice(t, grad, check.RawVector().Data, 1e-12)
	assert.InDeltaSlice(t, []float64{-2 / 1.75, -4.5 / 1.75}, direction, 1e-12)
}

func TestSolveNewtonStepSingular(t *testing.T) {
	hess := mat.NewSymDense(2, []float64{
		1, 1,
		1, 1,
	})
	_, err := solveNewtonStep(hess, []float64{1, 0})
	assert.True(t, errors.Is(err, ErrSingularHessian))

	_, err = solveNewtonStep(diag(0, 0), []float64{0, 0})
	assert.True(t, errors.Is(err, ErrSingularHessian))
}

func TestIsNegativeDefinite(t *testing.T) {
	assert.True(t, isNegativeDefinite(diag(-1, -0.5)))
	assert.False(t, isNegativeDefinite(diag(-1, 0)))
	assert.False(t, isNegativeDefinite(diag(-1, 2)))
	assert.True(t, isNegativeDefinite(mat.NewSymDense(2, []float64{
		-2, 1,
		1, -2,
	})))
}

func TestExtremeEigenvalues(t *testing.T) {
	largest, radius, err := extremeEigenvalues(diag(-5, 0.5, -1))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, largest, 1e-12)
	assert.InDelta(t, 5, radius, 1e-12)
}

func TestShiftDiagonal(t *testing.T) {
	hess := mat.NewSymDense(2, []float64{
		-2, 1,
		1, -3,
	})
	shifted := shiftDiagonal(hess, 1.5)
	assert.Equal(t, -3.5, shifted.At(0, 0))
	assert.Equal(t, -4.5, shifted.At(1, 1))
	assert.Equal(t, 1.0, shifted.At(0, 1))
	assert.Equal(t, -2.0, hess.At(0, 0))
}

func TestDampingShift(t *testing.T) {
	for _, tc := range []struct {
		name     string
		hess     *mat.SymDense
		step     float64
		expected float64
	}{
		{"negative definite", diag(-1, -2), 1, 0},
		{"one positive eigenvalue", diag(0.5, -2), 1, 1},
		{"rounded up to the grid", diag(2.3, -1), 1, 3},
		{"zero matrix", diag(0, 0), 1, 1},
		{"fractional step", diag(0.5, -2), 0.25, 0.75},
	} {
		t.Run(tc.name, func(t *testing.T) {
			shift, err := dampingShift(tc.hess, tc.step, DefaultMaxDampingSteps, DefaultMaxShift)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, shift, 1e-12)
			assert.True(t, isNegativeDefinite(shiftDiagonal(tc.hess, shift)))
		})
	}
}

func TestDampingShiftExhausted(t *testing.T) {
	_, err := dampingShift(diag(1e9, -1), 1, DefaultMaxDampingSteps, DefaultMaxShift)
	assert.True(t, errors.Is(err, ErrDampingExhausted))

	_, err = dampingShift(diag(3.5, -1), 1, DefaultMaxDampingSteps, 2)
	assert.True(t, errors.Is(err, ErrDampingExhausted))
}
