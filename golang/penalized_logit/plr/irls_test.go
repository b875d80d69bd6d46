package plr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestWorkingQuantitiesAtZero(t *testing.T) {
	lm := GenerateDebugData(t)
	y := lm.response()
	wq, err := WorkingQuantities(lm.Features, y, []float64{0, 0})
	require.NoError(t, err)

	for i := range y {
		assert.Equal(t, 0.0, wq.Eta[i])
		assert.Equal(t, 0.5, wq.Prob[i])
		assert.Equal(t, 0.25, wq.Weight[i])
		assert.Equal(t, 4*(y[i]-0.5), wq.Response[i])
	}
}

func TestWorkingQuantitiesWeightFloor(t *testing.T) {
	features := mat.NewDense(3, 2, []float64{
		1, 20,
		1, -20,
		1, 0.5,
	})
	y := []float64{1, 1, 0}
	wq, err := WorkingQuantities(features, y, []float64{0, 1})
	require.NoError(t, err)

	assert.Equal(t, WeightFloor, wq.Weight[0])
	assert.Equal(t, WeightFloor, wq.Weight[1])
	p := Sigmoid(0.5)
	assert.InDelta(t, p*(1-p), wq.Weight[2], 1e-15)

	for i := range y {
		assert.InDelta(t, wq.Eta[i]+(y[i]-wq.Prob[i])/wq.Weight[i], wq.Response[i], 1e-9)
	}
	assert.InDelta(t, -20+(1-Sigmoid(-20))/WeightFloor, wq.Response[1], 1e-6)
}

func TestWorkingQuantitiesDimensions(t *testing.T) {
	lm := GenerateDebugData(t)
	_, err := WorkingQuantities(lm.Features, []float64{0, 1}, []float64{0, 0})
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	_, err = WorkingQuantities(lm.Features, lm.response(), []float64{0})
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}
