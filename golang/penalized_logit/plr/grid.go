package plr

import (
	"github.com/pkg/errors"
)

//TaskFitLasso fits one lambda of a grid and stores the outcome at its index.
type TaskFitLasso struct {
	results []*Result
	errs    []error
	index   int
	fitFunc func(int) (*Result, error)
}

//Execute runs the fit.
func (task *TaskFitLasso) Execute() {
	task.results[task.index], task.errs[task.index] = task.fitFunc(task.index)
}

//FitLassoGrid solves the lasso problem independently for every lambda, on threadsNum
//goroutines. Every solve starts from its own copy of base.Start, so the results do not
//depend on scheduling and match sequential calls of FitLasso. The first error in grid
//order is returned together with all results.
func FitLassoGrid(lm LMatrix, lambdas []float64, base LassoParams, threadsNum int) ([]*Result, error) {
	if len(lambdas) == 0 {
		return nil, invalidParams("empty lambda grid")
	}
	if _, _, err := lm.validatedDimensions(); err != nil {
		return nil, err
	}

	results := make([]*Result, len(lambdas))
	errs := make([]error, len(lambdas))

	fitFunc := func(ind int) (*Result, error) {
		params := base
		params.Lambda = lambdas[ind]
		params.Start = cloneVector(base.Start)
		return FitLasso(lm, params)
	}

	if threadsNum <= 1 {
		for ind := range lambdas {
			results[ind], errs[ind] = fitFunc(ind)
		}
	} else {
		taskPool := NewPool(threadsNum)
		for ind := range lambdas {
			taskPool.AddTask(&TaskFitLasso{results, errs, ind, fitFunc})
		}
		taskPool.Close()
		taskPool.WaitAll()
	}

	for ind, err := range errs {
		if err != nil {
			return results, errors.Wrapf(err, "lambda %g", lambdas[ind])
		}
	}
	return results, nil
}
