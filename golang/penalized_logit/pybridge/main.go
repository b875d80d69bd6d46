// SPDX-License-Identifier: Apache-2.0

package main

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"io"
	"log"
	"sync"
	"unsafe"

	"github.com/tarstars/penalized_logit/golang/penalized_logit/plr"
	"gonum.org/v1/gonum/mat"
)

var (
	handleMu   sync.Mutex
	nextHandle uint64 = 1
	results           = make(map[uint64]*plr.Result)

	lastErrorMu sync.Mutex
	lastError   string

	logSilenceOnce sync.Once
)

func setLastError(err error) {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func getLastError() string {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	return lastError
}

func storeResult(r *plr.Result) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle := nextHandle
	results[handle] = r
	nextHandle++
	return handle
}

func fetchResult(handle uint64) (*plr.Result, error) {
	handleMu.Lock()
	defer handleMu.Unlock()
	result, ok := results[handle]
	if !ok {
		return nil, errors.New("invalid result handle")
	}
	return result, nil
}

//export FreeResult
func FreeResult(handle C.ulonglong) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(results, uint64(handle))
}

func copyFloatSlice(ptr *C.double, length int) ([]float64, error) {
	if length < 0 {
		return nil, errors.New("negative length")
	}
	if length == 0 {
		return nil, nil
	}
	if ptr == nil {
		return nil, errors.New("null pointer for non-empty slice")
	}
	src := unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length)
	dst := make([]float64, length)
	copy(dst, src)
	return dst, nil
}

func sliceFromPtr(ptr *C.double, length int) ([]float64, error) {
	if length < 0 {
		return nil, errors.New("negative length")
	}
	if length == 0 {
		return nil, nil
	}
	if ptr == nil {
		return nil, errors.New("null pointer for non-empty slice")
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length), nil
}

func buildDense(ptr *C.double, rows, cols C.int) (*mat.Dense, error) {
	r := int(rows)
	c := int(cols)
	if r <= 0 || c <= 0 {
		return nil, errors.New("invalid matrix dimensions")
	}
	data, err := copyFloatSlice(ptr, r*c)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(r, c, data), nil
}

//buildProblem copies the row-major features and the labels supplied by the caller.
//A null start pointer selects the zero vector.
func buildProblem(featuresPtr *C.double, rows, cols C.int, targetPtr, startPtr *C.double) (lm plr.LMatrix, start []float64, err error) {
	logSilenceOnce.Do(func() {
		log.SetOutput(io.Discard)
	})

	features, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		return
	}
	target, err := buildDense(targetPtr, rows, 1)
	if err != nil {
		return
	}
	if lm, err = plr.NewLMatrix(features, target); err != nil {
		return
	}
	if startPtr != nil {
		start, err = copyFloatSlice(startPtr, int(cols))
	}
	return
}

//finishFit stores the result even when the optimizer failed, so the caller can inspect
//the trace up to the failure. The error is reported through GetLastError.
func finishFit(result *plr.Result, err error) C.ulonglong {
	setLastError(err)
	if result == nil {
		return 0
	}
	return C.ulonglong(storeResult(result))
}

//export FitNewton
func FitNewton(
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	targetPtr *C.double,
	startPtr *C.double,
	tol C.double,
	maxIter C.int,
) C.ulonglong {
	setLastError(nil)
	lm, start, err := buildProblem(featuresPtr, rows, cols, targetPtr, startPtr)
	if err != nil {
		setLastError(err)
		return 0
	}
	return finishFit(plr.FitNewton(lm, plr.NewtonParams{
		Start:   start,
		Tol:     float64(tol),
		MaxIter: int(maxIter),
	}))
}

//FitDampedNewton takes the damping bounds of plr.DampedParams, negative values select the defaults.
//
//export FitDampedNewton
func FitDampedNewton(
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	targetPtr *C.double,
	startPtr *C.double,
	tol C.double,
	maxIter C.int,
	dampingStep C.double,
	maxDampingSteps C.int,
	maxShift C.double,
) C.ulonglong {
	setLastError(nil)
	lm, start, err := buildProblem(featuresPtr, rows, cols, targetPtr, startPtr)
	if err != nil {
		setLastError(err)
		return 0
	}
	return finishFit(plr.FitDampedNewton(lm, plr.DampedParams{
		NewtonParams: plr.NewtonParams{
			Start:   start,
			Tol:     float64(tol),
			MaxIter: int(maxIter),
		},
		DampingStep:     float64(dampingStep),
		MaxDampingSteps: int(maxDampingSteps),
		MaxShift:        float64(maxShift),
	}))
}

func lassoParams(start []float64, lambda, tol C.double, maxIter, intercept, degenerate C.int) plr.LassoParams {
	return plr.LassoParams{
		Start:      start,
		Lambda:     float64(lambda),
		Tol:        float64(tol),
		MaxIter:    int(maxIter),
		Intercept:  int(intercept),
		Degenerate: plr.DegeneratePolicy(degenerate),
	}
}

//export FitLasso
func FitLasso(
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	targetPtr *C.double,
	startPtr *C.double,
	lambda C.double,
	tol C.double,
	maxIter C.int,
	intercept C.int,
	degenerate C.int,
) C.ulonglong {
	setLastError(nil)
	lm, start, err := buildProblem(featuresPtr, rows, cols, targetPtr, startPtr)
	if err != nil {
		setLastError(err)
		return 0
	}
	return finishFit(plr.FitLasso(lm, lassoParams(start, lambda, tol, maxIter, intercept, degenerate)))
}

//export FitLassoGrid
func FitLassoGrid(
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	targetPtr *C.double,
	startPtr *C.double,
	lambdasPtr *C.double,
	lambdasNum C.int,
	tol C.double,
	maxIter C.int,
	intercept C.int,
	degenerate C.int,
	threadsNum C.int,
	handlesPtr *C.ulonglong,
) C.int {
	setLastError(nil)
	lm, start, err := buildProblem(featuresPtr, rows, cols, targetPtr, startPtr)
	if err != nil {
		setLastError(err)
		return 1
	}
	lambdas, err := copyFloatSlice(lambdasPtr, int(lambdasNum))
	if err != nil {
		setLastError(err)
		return 2
	}
	if handlesPtr == nil {
		setLastError(errors.New("null pointer for handles"))
		return 3
	}

	fitted, err := plr.FitLassoGrid(lm, lambdas, lassoParams(start, 0, tol, maxIter, intercept, degenerate), int(threadsNum))
	handles := unsafe.Slice((*C.ulonglong)(unsafe.Pointer(handlesPtr)), len(lambdas))
	for ind := range handles {
		handles[ind] = 0
		if ind < len(fitted) && fitted[ind] != nil {
			handles[ind] = C.ulonglong(storeResult(fitted[ind]))
		}
	}
	if err != nil {
		setLastError(err)
		return 4
	}
	return 0
}

//export ResultStatus
func ResultStatus(handle C.ulonglong) C.int {
	setLastError(nil)
	result, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return -1
	}
	return C.int(result.Status)
}

//export ResultIterations
func ResultIterations(handle C.ulonglong) C.int {
	setLastError(nil)
	result, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return -1
	}
	return C.int(result.Iterations)
}

//export ResultCoefficients
func ResultCoefficients(handle C.ulonglong, outputPtr *C.double, length C.int) C.int {
	setLastError(nil)
	result, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if int(length) != len(result.Coefficients) {
		setLastError(errors.New("output length does not match the number of coefficients"))
		return 2
	}
	outSlice, err := sliceFromPtr(outputPtr, int(length))
	if err != nil {
		setLastError(err)
		return 3
	}
	copy(outSlice, result.Coefficients)
	return 0
}

//export ResultTraceLength
func ResultTraceLength(handle C.ulonglong) C.int {
	setLastError(nil)
	result, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return -1
	}
	return C.int(len(result.Trace))
}

//export ResultTraceValues
func ResultTraceValues(handle C.ulonglong, outputPtr *C.double, length C.int) C.int {
	setLastError(nil)
	result, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	values := result.Trace.Values()
	if int(length) != len(values) {
		setLastError(errors.New("output length does not match the trace length"))
		return 2
	}
	outSlice, err := sliceFromPtr(outputPtr, int(length))
	if err != nil {
		setLastError(err)
		return 3
	}
	copy(outSlice, values)
	return 0
}

//export PredictProba
func PredictProba(
	handle C.ulonglong,
	featuresPtr *C.double,
	rows C.int,
	cols C.int,
	outputPtr *C.double,
) C.int {
	setLastError(nil)
	result, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}

	features, err := buildDense(featuresPtr, rows, cols)
	if err != nil {
		setLastError(err)
		return 2
	}

	prediction, err := plr.PredictProba(features, result.Coefficients)
	if err != nil {
		setLastError(err)
		return 3
	}

	outSlice, err := sliceFromPtr(outputPtr, int(rows))
	if err != nil {
		setLastError(err)
		return 4
	}
	copy(outSlice, prediction.RawMatrix().Data)
	return 0
}

//export SaveResult
func SaveResult(handle C.ulonglong, path *C.char) C.int {
	setLastError(nil)
	result, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if err = result.Save(C.GoString(path)); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export DumpTrace
func DumpTrace(handle C.ulonglong, path *C.char) C.int {
	setLastError(nil)
	result, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if err = result.DumpTrace(C.GoString(path)); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export LoadResult
func LoadResult(path *C.char) C.ulonglong {
	setLastError(nil)
	result, err := plr.LoadResult(C.GoString(path))
	if err != nil {
		setLastError(err)
		return 0
	}
	return C.ulonglong(storeResult(&result))
}

//export GetLastError
func GetLastError() *C.char {
	errStr := getLastError()
	if errStr == "" {
		return nil
	}
	return C.CString(errStr)
}

//export FreeCString
func FreeCString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

func main() {}
