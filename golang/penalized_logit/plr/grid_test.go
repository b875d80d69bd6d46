package plr

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countTask struct {
	counter *int64
}

func (task countTask) Execute() {
	atomic.AddInt64(task.counter, 1)
}

func TestPool(t *testing.T) {
	var counter int64
	pool := NewPool(3)
	for ind := 0; ind < 100; ind++ {
		pool.AddTask(countTask{&counter})
	}
	pool.Close()
	pool.WaitAll()
	assert.Equal(t, int64(100), counter)
}

func TestFitLassoGridMatchesSequential(t *testing.T) {
	lm := GenerateSparseData(t, 400, 7)
	lambdas := []float64{80, 40, 20, 10, 5, 1, 0}
	base := LassoParams{Tol: 1e-8, MaxIter: 500}

	results, err := FitLassoGrid(lm, lambdas, base, 4)
	require.NoError(t, err)
	require.Len(t, results, len(lambdas))

	for ind, lambda := range lambdas {
		params := base
		params.Lambda = lambda
		expected, err := FitLasso(lm, params)
		require.NoError(t, err)
		assert.Equal(t, lambda, results[ind].Lambda)
		assert.Equal(t, expected.Coefficients, results[ind].Coefficients)
		assert.Equal(t, len(expected.Trace), len(results[ind].Trace))
	}

	sequential, err := FitLassoGrid(lm, lambdas, base, 1)
	require.NoError(t, err)
	for ind := range lambdas {
		assert.Equal(t, sequential[ind].Coefficients, results[ind].Coefficients)
	}
}

func TestFitLassoGridErrors(t *testing.T) {
	lm := GenerateDebugData(t)

	_, err := FitLassoGrid(lm, nil, LassoParams{Tol: 1e-6, MaxIter: 10}, 2)
	assert.True(t, errors.Is(err, ErrInvalidParams))

	results, err := FitLassoGrid(lm, []float64{1, -1}, LassoParams{Tol: 1e-6, MaxIter: 10}, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParams))
	assert.Contains(t, err.Error(), "lambda -1")
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
}
