package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/tarstars/penalized_logit/golang/penalized_logit/plr"
	"gonum.org/v1/gonum/mat"
)

func decodeConfig(srcConfig string, out interface{}) {
	file, err := os.Open(srcConfig)
	plr.HandleError(err)
	defer func() { plr.HandleError(file.Close()) }()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	plr.HandleError(decoder.Decode(out))
}

type TestConfig struct {
	Description        string `json:"description"`
	FileNameTestData   string `json:"filename_test_features"`
	FileNameTestTarget string `json:"filename_test_target"`
}

type DataConfig struct {
	FileNameTrainData   string       `json:"filename_train_features"`
	FileNameTrainTarget string       `json:"filename_train_target"`
	AddIntercept        bool         `json:"add_intercept"`
	Tests               []TestConfig `json:"tests"`
	Folds               int          `json:"folds"`
	Fold                int          `json:"fold"`
	FileNameResult      string       `json:"filename_result"`
	FileNameTrace       string       `json:"filename_trace"`
	Verbose             bool         `json:"verbose"`
}

type NewtonConfig struct {
	DataConfig
	Start   []float64 `json:"start"`
	Tol     float64   `json:"tol"`
	MaxIter int       `json:"max_iter"`
}

type DampedConfig struct {
	NewtonConfig
	DampingStep     float64 `json:"damping_step"`
	MaxDampingSteps int     `json:"max_damping_steps"`
	MaxShift        float64 `json:"max_shift"`
}

type LassoConfig struct {
	DataConfig
	Start      []float64 `json:"start"`
	Lambda     float64   `json:"lambda"`
	Tol        float64   `json:"tol"`
	MaxIter    int       `json:"max_iter"`
	Intercept  int       `json:"intercept"`
	Degenerate string    `json:"degenerate"`
}

type GridConfig struct {
	LassoConfig
	Lambdas    []float64 `json:"lambdas"`
	ThreadsNum int       `json:"threads_num"`
}

type PredictConfig struct {
	FileNameData       string  `json:"filename_features"`
	AddIntercept       bool    `json:"add_intercept"`
	FileNameResult     string  `json:"filename_result"`
	FileNamePrediction string  `json:"filename_prediction"`
	Threshold          float64 `json:"threshold"`
}

var degeneratePolicies = map[string]plr.DegeneratePolicy{
	"":     plr.DegenerateZero,
	"zero": plr.DegenerateZero,
	"hold": plr.DegenerateHold,
	"fail": plr.DegenerateFail,
}

func (config DataConfig) logger() *log.Logger {
	if !config.Verbose {
		return nil
	}
	return log.Default()
}

//readData loads the train set and the test sets. With folds set, the rows of the given
//fold are moved from the train set into an extra test set.
func (config DataConfig) readData() (train plr.LMatrix, tests []plr.LMatrix) {
	train, err := plr.ReadLMatrix(config.FileNameTrainData, config.FileNameTrainTarget, config.AddIntercept)
	plr.HandleError(err)
	train.SetDescription("train")

	for _, testConfig := range config.Tests {
		lm, err := plr.ReadLMatrix(testConfig.FileNameTestData, testConfig.FileNameTestTarget, config.AddIntercept)
		plr.HandleError(err)
		lm.SetDescription(testConfig.Description)
		tests = append(tests, lm)
	}

	if config.Folds > 0 {
		var holdout plr.LMatrix
		train, holdout, err = train.SplitFold(config.Folds, config.Fold)
		plr.HandleError(err)
		log.Printf("holding out %s: %d train rows, %d holdout rows", *holdout.Description, plr.Height(train.Features), plr.Height(holdout.Features))
		tests = append(tests, holdout)
	}
	return
}

//report prints the quality of the fitted coefficients on the train and test sets and stores the result.
func (config DataConfig) report(result *plr.Result, fitErr error, train plr.LMatrix, tests []plr.LMatrix) {
	if fitErr != nil {
		log.Print("fit failed: ", fitErr)
	}
	if result == nil {
		os.Exit(1)
	}
	log.Printf("%s: status %s after %d iterations, value %.10g", result.Method, result.Status, result.Iterations, result.Value)
	log.Print("coefficients: ", result.Coefficients)

	for _, lm := range append([]plr.LMatrix{train}, tests...) {
		accuracy, err := plr.Accuracy(lm, result.Coefficients)
		plr.HandleError(err)
		logloss, err := plr.Logloss(lm, result.Coefficients)
		plr.HandleError(err)
		description := "test"
		if lm.Description != nil {
			description = *lm.Description
		}
		log.Printf("\t%s: accuracy = %.4f logloss = %.6f", description, accuracy, logloss)
	}

	if config.FileNameResult != "" {
		plr.HandleError(result.Save(config.FileNameResult))
	}
	if config.FileNameTrace != "" {
		plr.HandleError(result.DumpTrace(config.FileNameTrace))
	}
}

func newton(srcConfig string) {
	var newtonConfig NewtonConfig
	decodeConfig(srcConfig, &newtonConfig)

	train, tests := newtonConfig.readData()

	result, err := plr.FitNewton(train, plr.NewtonParams{
		Start:   newtonConfig.Start,
		Tol:     newtonConfig.Tol,
		MaxIter: newtonConfig.MaxIter,
		Logger:  newtonConfig.logger(),
	})
	newtonConfig.report(result, err, train, tests)
}

func damped(srcConfig string) {
	dampedConfig := DampedConfig{
		DampingStep:     plr.DefaultDampingStep,
		MaxDampingSteps: plr.DefaultMaxDampingSteps,
		MaxShift:        plr.DefaultMaxShift,
	}
	decodeConfig(srcConfig, &dampedConfig)

	train, tests := dampedConfig.readData()

	result, err := plr.FitDampedNewton(train, plr.DampedParams{
		NewtonParams: plr.NewtonParams{
			Start:   dampedConfig.Start,
			Tol:     dampedConfig.Tol,
			MaxIter: dampedConfig.MaxIter,
			Logger:  dampedConfig.logger(),
		},
		DampingStep:     dampedConfig.DampingStep,
		MaxDampingSteps: dampedConfig.MaxDampingSteps,
		MaxShift:        dampedConfig.MaxShift,
	})
	dampedConfig.report(result, err, train, tests)
}

func (config LassoConfig) params() plr.LassoParams {
	policy, ok := degeneratePolicies[config.Degenerate]
	if !ok {
		log.Panicf("unknown degenerate policy %q, use zero, hold or fail", config.Degenerate)
	}
	return plr.LassoParams{
		Start:      config.Start,
		Lambda:     config.Lambda,
		Tol:        config.Tol,
		MaxIter:    config.MaxIter,
		Intercept:  config.Intercept,
		Degenerate: policy,
		Logger:     config.logger(),
	}
}

func lasso(srcConfig string) {
	var lassoConfig LassoConfig
	decodeConfig(srcConfig, &lassoConfig)

	train, tests := lassoConfig.readData()

	result, err := plr.FitLasso(train, lassoConfig.params())
	if err == nil && len(result.Degenerate) > 0 {
		log.Print("degenerate columns: ", result.Degenerate)
	}
	lassoConfig.report(result, err, train, tests)
}

//grid fits the whole regularization path. Results and traces are stored with the
//lambda index appended to the configured file names.
func grid(srcConfig string) {
	var gridConfig GridConfig
	decodeConfig(srcConfig, &gridConfig)

	train, tests := gridConfig.readData()

	results, err := plr.FitLassoGrid(train, gridConfig.Lambdas, gridConfig.params(), gridConfig.ThreadsNum)
	if err != nil {
		log.Print("grid fit failed: ", err)
	}
	for ind, result := range results {
		if result == nil {
			continue
		}
		log.Printf("lambda #%d = %g", ind, result.Lambda)
		config := gridConfig.DataConfig
		if config.FileNameResult != "" {
			config.FileNameResult = fmt.Sprintf("%s.%03d", config.FileNameResult, ind)
		}
		if config.FileNameTrace != "" {
			config.FileNameTrace = fmt.Sprintf("%s.%03d", config.FileNameTrace, ind)
		}
		config.report(result, nil, train, tests)
	}
}

func predict(srcConfig string) {
	var predictConfig PredictConfig
	decodeConfig(srcConfig, &predictConfig)

	features, err := plr.ReadNpy(predictConfig.FileNameData)
	plr.HandleError(err)
	if predictConfig.AddIntercept {
		features = plr.WithIntercept(features)
	}

	result, err := plr.LoadResult(predictConfig.FileNameResult)
	plr.HandleError(err)

	var prediction *mat.Dense
	if predictConfig.Threshold > 0 {
		prediction, err = plr.Predict(features, result.Coefficients, predictConfig.Threshold)
	} else {
		prediction, err = plr.PredictProba(features, result.Coefficients)
	}
	plr.HandleError(err)
	plr.HandleError(plr.WriteNpy(predictConfig.FileNamePrediction, prediction))

	h := plr.Height(prediction)
	log.Printf("%d predictions written to %s", h, predictConfig.FileNamePrediction)
}

func main() {
	runMode := flag.String("mode", "lasso", "you can select either 'newton', 'damped', 'lasso', 'grid' or 'predict' modes")
	config := flag.String("config", "plr_config.json", "a config file for the run of the program")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")

	flag.Parse()

	run, ok := map[string]func(string){
		"newton":  newton,
		"damped":  damped,
		"lasso":   lasso,
		"grid":    grid,
		"predict": predict,
	}[*runMode]
	if !ok {
		log.Fatalf("unknown mode %q", *runMode)
	}
	run(*config)

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		plr.HandleError(err)
		defer func() { plr.HandleError(f.Close()) }()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
