package plr

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

//Status is the terminal state of an optimizer run.
type Status int

const (
	StatusRunning Status = iota
	StatusConverged
	StatusMaxIterReached
	StatusFailed
)

var statusNames = map[Status]string{
	StatusRunning:        "running",
	StatusConverged:      "converged",
	StatusMaxIterReached: "max_iter_reached",
	StatusFailed:         "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

//TraceRecord is the state after one iteration. Value is the log-likelihood for the Newton
//optimizers and the penalized working objective for coordinate descent. Shift is the
//diagonal damping applied to the step that produced the record.
type TraceRecord struct {
	Iteration    int
	Value        float64
	Shift        float64 `json:",omitempty"`
	Coefficients []float64
}

//Trace is the ordered list of iteration records. Record 0 is the starting point.
type Trace []TraceRecord

//Values returns the objective (or log-likelihood) column of the trace.
func (trace Trace) Values() []float64 {
	values := make([]float64, len(trace))
	for ind, record := range trace {
		values[ind] = record.Value
	}
	return values
}

//Matrix lays the trace out as rows of iteration, value, shift and the coefficients.
func (trace Trace) Matrix() *mat.Dense {
	if len(trace) == 0 {
		return nil
	}
	w := len(trace[0].Coefficients)
	result := mat.NewDense(len(trace), w+3, nil)
	for p, record := range trace {
		result.Set(p, 0, float64(record.Iteration))
		result.Set(p, 1, record.Value)
		result.Set(p, 2, record.Shift)
		for q, val := range record.Coefficients {
			result.Set(p, q+3, val)
		}
	}
	return result
}

//Result is the outcome of one optimizer call. Coefficients are the final iterate; when
//Status is StatusFailed they are the last iterate at which the model could be evaluated.
type Result struct {
	Method       string
	Lambda       float64 `json:",omitempty"`
	Coefficients []float64
	Value        float64
	Iterations   int
	Status       Status
	Degenerate   []int `json:",omitempty"`
	Trace        Trace
	Description  string `json:",omitempty"`
}

//Converged reports whether the run stopped on its tolerance.
func (r *Result) Converged() bool {
	return r.Status == StatusConverged
}

func (r *Result) record(iteration int, value, shift float64, beta []float64) {
	r.Trace = append(r.Trace, TraceRecord{
		Iteration:    iteration,
		Value:        value,
		Shift:        shift,
		Coefficients: cloneVector(beta),
	})
}

func (r *Result) finish(status Status, beta []float64, value float64) *Result {
	r.Status = status
	r.Coefficients = cloneVector(beta)
	r.Value = value
	if len(r.Trace) > 0 {
		r.Iterations = r.Trace[len(r.Trace)-1].Iteration
	}
	return r
}

//fail marks the run as failed at the last usable iterate and returns the error unchanged.
func (r *Result) fail(beta []float64, value float64, err error) (*Result, error) {
	r.finish(StatusFailed, beta, value)
	return r, err
}

//Save writes the result as indented JSON.
func (r Result) Save(filename string) error {
	dest, err := os.Create(filename)
	if err != nil {
		return err
	}

	resultByteRepr, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		_ = dest.Close()
		return err
	}
	if _, err = dest.Write(resultByteRepr); err != nil {
		_ = dest.Close()
		return err
	}
	return dest.Close()
}

//LoadResult reads a result stored by Save.
func LoadResult(filename string) (result Result, err error) {
	source, err := os.Open(filename)
	if err != nil {
		return
	}
	defer closeInto(source, &err)

	err = json.NewDecoder(source).Decode(&result)
	return
}

//DumpTrace writes Trace.Matrix in npy format.
func (r Result) DumpTrace(filename string) error {
	traceMatrix := r.Trace.Matrix()
	if traceMatrix == nil {
		return fmt.Errorf("empty trace for %s", r.Method)
	}
	return WriteNpy(filename, traceMatrix)
}
