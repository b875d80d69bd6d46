package plr

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// lcg is a 64-bit linear congruential generator, so synthetic data sets are identical
// on every platform and Go release.
type lcg struct {
	state uint64
}

func (r *lcg) next() float64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return float64(r.state>>11) / float64(1<<53)
}

//GenerateSparseData draws three uniform features on [-2, 2] and labels from
//σ(0 + 0·x1 + 2·x2 + 0·x3). The intercept column comes first.
func GenerateSparseData(t *testing.T, n int, seed uint64) LMatrix {
	r := &lcg{seed}
	features := mat.NewDense(n, 4, nil)
	labels := make([]float64, n)
	for p := 0; p < n; p++ {
		features.Set(p, 0, 1)
		for q := 1; q <= 3; q++ {
			features.Set(p, q, 4*r.next()-2)
		}
		if r.next() < Sigmoid(2*features.At(p, 2)) {
			labels[p] = 1
		}
	}
	lm, err := NewLMatrixFromLabels(features, labels)
	require.NoError(t, err)
	return lm
}

//GenerateSeparableData returns an intercept column and two features where the sign of
//the first feature decides the label.
func GenerateSeparableData(t *testing.T) LMatrix {
	x1 := []float64{-3, -2.5, -2, -1.5, -1, -0.5, 0.5, 1, 1.5, 2, 2.5, 3}
	x2 := []float64{0.3, -1.2, 0.8, -0.4, 1.5, -0.9, 1.1, -0.7, 0.2, -1.4, 0.6, -0.1}
	features := mat.NewDense(len(x1), 3, nil)
	labels := make([]float64, len(x1))
	for p := range x1 {
		features.SetRow(p, []float64{1, x1[p], x2[p]})
		if x1[p] > 0 {
			labels[p] = 1
		}
	}
	lm, err := NewLMatrixFromLabels(features, labels)
	require.NoError(t, err)
	return lm
}

//GenerateDebugData is a small overlapping data set for hand-checked arithmetic.
func GenerateDebugData(t *testing.T) LMatrix {
	features := mat.NewDense(6, 2, []float64{
		1, -1.5,
		1, -0.5,
		1, 0.0,
		1, 0.5,
		1, 1.0,
		1, 2.0,
	})
	lm, err := NewLMatrixFromLabels(features, []float64{0, 1, 0, 0, 1, 1})
	require.NoError(t, err)
	return lm
}
