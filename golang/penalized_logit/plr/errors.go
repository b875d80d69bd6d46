package plr

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	//ErrSingularHessian is returned when the Newton system can not be solved at an iterate.
	ErrSingularHessian = errors.New("plr: hessian is singular")

	//ErrDampingExhausted is returned when no admissible diagonal shift makes the hessian negative definite.
	ErrDampingExhausted = errors.New("plr: damping search exhausted")

	//ErrDegenerateCoordinate is returned for a column with zero weighted sum of squares
	//when the solver is asked to fail on it.
	ErrDegenerateCoordinate = errors.New("plr: degenerate coordinate")

	ErrDimensionMismatch = errors.New("plr: dimension mismatch")
	ErrNonBinaryTarget   = errors.New("plr: target values must be 0 or 1")
	ErrInvalidParams     = errors.New("plr: invalid parameters")
	ErrNonFinite         = errors.New("plr: non-finite value")
)

//FitError reports where inside an optimizer a failure happened.
//Coordinate is -1 when the failure is not tied to a single coefficient.
type FitError struct {
	Method     string
	Iteration  int
	Coordinate int
	Err        error
}

func (e *FitError) Error() string {
	if e.Coordinate >= 0 {
		return fmt.Sprintf("%s: iteration %d, coordinate %d: %v", e.Method, e.Iteration, e.Coordinate, e.Err)
	}
	return fmt.Sprintf("%s: iteration %d: %v", e.Method, e.Iteration, e.Err)
}

func (e *FitError) Unwrap() error {
	return e.Err
}

func newFitError(method string, iteration, coordinate int, err error) *FitError {
	return &FitError{
		Method:     method,
		Iteration:  iteration,
		Coordinate: coordinate,
		Err:        err,
	}
}

func invalidParams(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidParams, format, args...)
}
