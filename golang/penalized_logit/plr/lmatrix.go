package plr

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

//LMatrix contains the design matrix and the binary response of a logistic model.
//Features already carry the intercept column; standardization happens upstream.
type LMatrix struct {
	Features    *mat.Dense
	Target      *mat.Dense
	Description *string
}

//NewLMatrix wraps features and a column of labels and checks that they fit together.
func NewLMatrix(features, target *mat.Dense) (lm LMatrix, err error) {
	lm = LMatrix{Features: features, Target: target}
	_, _, err = lm.validatedDimensions()
	return
}

//NewLMatrixFromLabels builds an LMatrix from a plain label slice.
func NewLMatrixFromLabels(features *mat.Dense, labels []float64) (LMatrix, error) {
	if len(labels) == 0 {
		return LMatrix{}, errors.Wrap(ErrDimensionMismatch, "empty target")
	}
	return NewLMatrix(features, mat.NewDense(len(labels), 1, cloneVector(labels)))
}

//SetDescription sets a description for an LMatrix object
func (lm *LMatrix) SetDescription(description string) {
	lm.Description = &description
}

func (lm LMatrix) description() string {
	if lm.Description == nil {
		return ""
	}
	return *lm.Description
}

//ReadLMatrix reads the features and the target from npy files. When addIntercept is set
//a column of ones is prepended to the features.
func ReadLMatrix(fileNameFeatures, fileNameTarget string, addIntercept bool) (lm LMatrix, err error) {
	log.Print("\ttry to load features <", fileNameFeatures, ">")
	features, err := ReadNpy(fileNameFeatures)
	if err != nil {
		return
	}
	if addIntercept {
		features = WithIntercept(features)
	}
	log.Print("\ttry to load target <", fileNameTarget, ">")
	target, err := ReadNpy(fileNameTarget)
	if err != nil {
		return
	}
	return NewLMatrix(features, target)
}

//ReadNpy reads the content of npy file. The array has to be two dimensional.
func ReadNpy(fileName string) (denseMat *mat.Dense, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer closeInto(f, &err)

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading npy header of %s", fileName)
	}

	denseMat = &mat.Dense{}
	if err = r.Read(denseMat); err != nil {
		return nil, errors.Wrapf(err, "reading npy data of %s", fileName)
	}
	return
}

//WriteNpy stores a matrix in npy format.
func WriteNpy(fileName string, m mat.Matrix) error {
	dst, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err = npyio.Write(dst, m); err != nil {
		_ = dst.Close()
		return errors.Wrapf(err, "writing %s", fileName)
	}
	return dst.Close()
}

//WithIntercept returns a copy of x with a leading column of ones.
func WithIntercept(x mat.Matrix) *mat.Dense {
	h, w := x.Dims()
	result := mat.NewDense(h, w+1, nil)
	for p := 0; p < h; p++ {
		result.Set(p, 0, 1)
		for q := 0; q < w; q++ {
			result.Set(p, q+1, x.At(p, q))
		}
	}
	return result
}

//Subset selects the given rows.
func (lm LMatrix) Subset(rows []int) LMatrix {
	w := Width(lm.Features)
	features := mat.NewDense(len(rows), w, nil)
	target := mat.NewDense(len(rows), 1, nil)
	for ind, p := range rows {
		features.SetRow(ind, lm.Features.RawRowView(p))
		target.Set(ind, 0, lm.Target.At(p, 0))
	}
	return LMatrix{Features: features, Target: target, Description: lm.Description}
}

//SplitFold holds out every row p with p % folds == fold and keeps the rest for training.
func (lm LMatrix) SplitFold(folds, fold int) (train, holdout LMatrix, err error) {
	if lm.Features == nil || lm.Target == nil {
		err = errors.Wrap(ErrDimensionMismatch, "nil features or target")
		return
	}
	h := Height(lm.Features)
	if folds < 2 || folds > h {
		err = invalidParams("folds must be between 2 and %d, got %d", h, folds)
		return
	}
	if fold < 0 || fold >= folds {
		err = invalidParams("fold must be in [0, %d), got %d", folds, fold)
		return
	}

	var trainRows, holdoutRows []int
	for p := 0; p < h; p++ {
		if p%folds == fold {
			holdoutRows = append(holdoutRows, p)
		} else {
			trainRows = append(trainRows, p)
		}
	}
	train, holdout = lm.Subset(trainRows), lm.Subset(holdoutRows)
	holdout.SetDescription(fmt.Sprintf("fold %d of %d", fold, folds))
	return
}

//validatedDimensions checks the consistency of the features and the target and returns
//the number of observations n and the number of coefficients p.
func (lm LMatrix) validatedDimensions() (n, p int, err error) {
	if lm.Features == nil || lm.Target == nil {
		return 0, 0, errors.Wrap(ErrDimensionMismatch, "nil features or target")
	}
	n, p = lm.Features.Dims()
	if n == 0 || p == 0 {
		return n, p, errors.Wrapf(ErrDimensionMismatch, "empty design matrix %dx%d", n, p)
	}
	targetH, targetW := lm.Target.Dims()
	if targetH != n {
		return n, p, errors.Wrapf(ErrDimensionMismatch, "the target height %d is not equal to the features height %d", targetH, n)
	}
	if targetW != 1 {
		return n, p, errors.Wrapf(ErrDimensionMismatch, "the width of target should be 1 not %d", targetW)
	}
	for ind := 0; ind < n; ind++ {
		if v := lm.Target.At(ind, 0); v != 0 && v != 1 {
			return n, p, errors.Wrapf(ErrNonBinaryTarget, "target[%d] = %g", ind, v)
		}
		if !allFinite(lm.Features.RawRowView(ind)) {
			return n, p, errors.Wrapf(ErrNonFinite, "features row %d", ind)
		}
	}
	return n, p, nil
}

//response returns a copy of the labels as a slice.
func (lm LMatrix) response() []float64 {
	return mat.Col(nil, 0, lm.Target)
}

func checkStart(start []float64, p int) ([]float64, error) {
	if start == nil {
		return make([]float64, p), nil
	}
	if len(start) != p {
		return nil, errors.Wrapf(ErrDimensionMismatch, "start has %d coefficients, design matrix has %d columns", len(start), p)
	}
	if !allFinite(start) {
		return nil, errors.Wrap(ErrNonFinite, "start coefficients")
	}
	return cloneVector(start), nil
}

func checkTolerance(tol float64, maxIter int) error {
	if math.IsNaN(tol) || tol < 0 {
		return invalidParams("tolerance must be non-negative, got %g", tol)
	}
	if maxIter < 0 {
		return invalidParams("max iterations must be non-negative, got %d", maxIter)
	}
	return nil
}
