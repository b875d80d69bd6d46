package plr

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//WeightFloor replaces the working weight p(1-p) when p is within WeightFloor of 0 or 1.
const WeightFloor = 1e-5

//Working holds the IRLS linearization of the log-likelihood around a coefficient vector.
type Working struct {
	Eta      []float64 // linear predictor X·beta
	Prob     []float64
	Weight   []float64
	Response []float64 // z = eta + (y - p)/w
}

//WorkingQuantities computes the working probabilities, weights and response at beta.
func WorkingQuantities(x *mat.Dense, y []float64, beta []float64) (Working, error) {
	h, w := x.Dims()
	if len(y) != h {
		return Working{}, errors.Wrapf(ErrDimensionMismatch, "%d labels for %d observations", len(y), h)
	}
	if len(beta) != w {
		return Working{}, errors.Wrapf(ErrDimensionMismatch, "coefficients length %d, design matrix width %d", len(beta), w)
	}
	return working(x, y, beta), nil
}

func working(x *mat.Dense, y []float64, beta []float64) (wq Working) {
	wq.Eta = linearPredictor(x, beta)
	n := len(wq.Eta)
	wq.Prob = make([]float64, n)
	wq.Weight = make([]float64, n)
	wq.Response = make([]float64, n)

	for i, eta := range wq.Eta {
		p := Sigmoid(eta)
		w := p * (1 - p)
		if p < WeightFloor || p > 1-WeightFloor {
			w = WeightFloor
		}
		wq.Prob[i] = p
		wq.Weight[i] = w
		wq.Response[i] = eta + (y[i]-p)/w
	}
	return
}
