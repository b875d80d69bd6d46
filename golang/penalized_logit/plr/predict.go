package plr

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//PredictProba returns the n x 1 column of probabilities σ(X·beta).
func PredictProba(x *mat.Dense, beta []float64) (prediction *mat.Dense, err error) {
	h, w := x.Dims()
	if len(beta) != w {
		return nil, errors.Wrapf(ErrDimensionMismatch, "coefficients length %d, design matrix width %d", len(beta), w)
	}
	u := linearPredictor(x, beta)
	prediction = mat.NewDense(h, 1, nil)
	for p, val := range u {
		prediction.Set(p, 0, Sigmoid(val))
	}
	return
}

//Predict labels an observation as 1 when its probability is at least threshold.
func Predict(x *mat.Dense, beta []float64, threshold float64) (*mat.Dense, error) {
	prediction, err := PredictProba(x, beta)
	if err != nil {
		return nil, err
	}
	prediction.Apply(func(_, _ int, v float64) float64 {
		if v >= threshold {
			return 1
		}
		return 0
	}, prediction)
	return prediction, nil
}

//Accuracy is the share of observations labeled correctly at the 0.5 threshold.
func Accuracy(lm LMatrix, beta []float64) (float64, error) {
	n, _, err := lm.validatedDimensions()
	if err != nil {
		return 0, err
	}
	labels, err := Predict(lm.Features, beta, 0.5)
	if err != nil {
		return 0, err
	}
	hits := 0
	for p := 0; p < n; p++ {
		if labels.At(p, 0) == lm.Target.At(p, 0) {
			hits++
		}
	}
	return float64(hits) / float64(n), nil
}

//Logloss is the mean negative log-likelihood of beta on lm.
func Logloss(lm LMatrix, beta []float64) (float64, error) {
	n, p, err := lm.validatedDimensions()
	if err != nil {
		return 0, err
	}
	if len(beta) != p {
		return 0, errors.Wrapf(ErrDimensionMismatch, "coefficients length %d, design matrix width %d", len(beta), p)
	}
	u := linearPredictor(lm.Features, beta)
	y := lm.response()
	terms := make([]float64, n)
	for i, ui := range u {
		terms[i] = Softplus(ui) - y[i]*ui
	}
	return floats.Sum(terms) / float64(n), nil
}
