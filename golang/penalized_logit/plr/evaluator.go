package plr

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

//Evaluation holds the logistic log-likelihood and its derivatives at one coefficient vector.
type Evaluation struct {
	LogLik float64
	Grad   []float64
	Hess   *mat.SymDense
	Prob   []float64
}

//Evaluator computes log-likelihood, gradient and hessian for a fixed data set.
//The outer products x_i·x_iᵀ are computed once and shared by all evaluations.
type Evaluator struct {
	features *mat.Dense
	target   []float64
	n, p     int
	outer    *tensor.Dense
}

//NewEvaluator validates the data set and prepares the outer products cache.
func NewEvaluator(lm LMatrix) (*Evaluator, error) {
	n, p, err := lm.validatedDimensions()
	if err != nil {
		return nil, err
	}
	outer := outerProducts(lm.Features)
	return &Evaluator{
		features: lm.Features,
		target:   lm.response(),
		n:        n,
		p:        p,
		outer:    outer,
	}, nil
}

//Evaluate is the one-shot form of Evaluator.Evaluate.
func Evaluate(x *mat.Dense, y []float64, beta []float64) (Evaluation, error) {
	lm, err := NewLMatrixFromLabels(x, y)
	if err != nil {
		return Evaluation{}, err
	}
	ev, err := NewEvaluator(lm)
	if err != nil {
		return Evaluation{}, err
	}
	return ev.Evaluate(beta)
}

//Dims returns the number of observations and the number of coefficients.
func (ev *Evaluator) Dims() (n, p int) {
	return ev.n, ev.p
}

//Evaluate computes
//
//	loglik = Σ yᵢuᵢ - log(1 + exp(uᵢ))
//	grad   = Xᵀ(y - p)
//	hess   = -Σ pᵢ(1 - pᵢ) xᵢxᵢᵀ
//
//with u = X·beta and p = σ(u). The returned evaluation is filled even when the
//log-likelihood is not finite, in which case ErrNonFinite is returned as well.
func (ev *Evaluator) Evaluate(beta []float64) (Evaluation, error) {
	if len(beta) != ev.p {
		return Evaluation{}, errors.Wrapf(ErrDimensionMismatch, "coefficients length %d, design matrix width %d", len(beta), ev.p)
	}

	u := linearPredictor(ev.features, beta)
	prob := make([]float64, ev.n)
	residual := make([]float64, ev.n)
	hessData := make([]float64, ev.p*ev.p)

	logLik := 0.0
	for i, ui := range u {
		prob[i] = Sigmoid(ui)
		residual[i] = ev.target[i] - prob[i]
		logLik += ev.target[i]*ui - Softplus(ui)

		w := prob[i] * (1 - prob[i])
		if w == 0 {
			continue
		}
		product, err := ev.outerProduct(i)
		if err != nil {
			return Evaluation{}, err
		}
		floats.AddScaled(hessData, -w, product)
	}

	grad := mat.NewVecDense(ev.p, nil)
	grad.MulVec(ev.features.T(), mat.NewVecDense(ev.n, residual))

	evaluation := Evaluation{
		LogLik: logLik,
		Grad:   grad.RawVector().Data,
		Hess:   mat.NewSymDense(ev.p, hessData),
		Prob:   prob,
	}
	if math.IsNaN(logLik) || math.IsInf(logLik, 0) || !allFinite(evaluation.Grad) {
		return evaluation, errors.Wrapf(ErrNonFinite, "log-likelihood %g", logLik)
	}
	return evaluation, nil
}

//outerProduct returns the p x p block x_i·x_iᵀ of the cache in row-major order.
func (ev *Evaluator) outerProduct(i int) ([]float64, error) {
	view, err := ev.outer.Slice(tensor.S(i))
	if err != nil {
		return nil, errors.Wrapf(err, "outer product of observation %d", i)
	}
	switch data := view.Data().(type) {
	case []float64:
		return data[:ev.p*ev.p], nil
	case float64:
		return []float64{data}, nil
	default:
		return nil, errors.Errorf("outer product of observation %d has type %T", i, data)
	}
}

//outerProducts allocates the n x p x p tensor of per-observation outer products.
func outerProducts(features *mat.Dense) (outer *tensor.Dense) {
	h, w := features.Dims()
	outer = tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(h, w, w))
	for p := 0; p < h; p++ {
		for q := 0; q < w; q++ {
			for r := 0; r < w; r++ {
				HandleError(outer.SetAt(features.At(p, q)*features.At(p, r), p, q, r))
			}
		}
	}
	return
}

//Sigmoid is the logistic function evaluated without overflow for either sign of u.
func Sigmoid(u float64) float64 {
	if u >= 0 {
		return 1 / (1 + math.Exp(-u))
	}
	e := math.Exp(u)
	return e / (1 + e)
}

//Softplus computes log(1 + exp(u)) as max(u, 0) + log1p(exp(-|u|)).
func Softplus(u float64) float64 {
	return math.Max(u, 0) + math.Log1p(math.Exp(-math.Abs(u)))
}
