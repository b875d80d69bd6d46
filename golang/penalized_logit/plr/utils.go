package plr

import (
	"gonum.org/v1/gonum/mat"
	"io"
	"log"
	"math"
)

//HandleError panics with a logged message when err is not nil.
func HandleError(err error) {
	if err != nil {
		log.Panic(err)
	}
}

//Height returns the number of rows of a matrix.
func Height(m mat.Matrix) int {
	h, _ := m.Dims()
	return h
}

//Width returns the number of columns of a matrix.
func Width(m mat.Matrix) int {
	_, w := m.Dims()
	return w
}

//closeInto closes c and stores its error in err unless err already holds one.
func closeInto(c io.Closer, err *error) {
	if closeErr := c.Close(); *err == nil {
		*err = closeErr
	}
}

func cloneVector(v []float64) []float64 {
	return append([]float64(nil), v...)
}

func allFinite(v []float64) bool {
	for _, val := range v {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return false
		}
	}
	return true
}

//columns extracts the columns of a matrix so coordinate updates can walk them as slices.
func columns(m *mat.Dense) [][]float64 {
	_, w := m.Dims()
	result := make([][]float64, w)
	for q := 0; q < w; q++ {
		result[q] = mat.Col(nil, q, m)
	}
	return result
}

func logf(logger *log.Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
