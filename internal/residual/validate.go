package residual

import (
	"fmt"
	"math"

	"github.com/jadaunkg/horizon/internal/core"
)

// SplitIndex returns the chronological train/test boundary for n rows at the
// given training fraction. Deterministic: the same n and fraction always
// give the same boundary. Rows before the boundary train, rows at and after
// it test; never split randomly, residual autocorrelation makes a random
// split optimistic.
func SplitIndex(n int, fraction float64) int {
	return int(float64(n) * fraction)
}

// MinTrainRows is the smallest training partition a rolling-origin scheme
// with the given fold count can evaluate: folds+1 contiguous blocks of at
// least two rows each.
func MinTrainRows(folds int) int {
	return 2 * (folds + 1)
}

// CheckTrainSize validates the training partition against the CV scheme
func CheckTrainSize(n, folds int) error {
	if min := MinTrainRows(folds); n < min {
		return core.WrapError(core.ErrInsufficientTrainingData,
			fmt.Errorf("got %d training rows, need %d for %d-fold validation", n, min, folds))
	}
	return nil
}

// CVResult summarizes one rolling-origin cross-validation run
type CVResult struct {
	FoldScores []float64 // negative MAPE per fold
	Mean       float64
	Std        float64
}

// CrossValidate estimates out-of-sample error with rolling-origin
// (expanding window) cross-validation: the rows are cut into folds+1
// contiguous blocks, and fold k trains on blocks [0, k] and scores block
// k+1 by negative mean-absolute-percentage-error. The estimate is advisory;
// callers log it but it never gates the final fit. Fold evaluation order
// does not affect the reported mean.
func CrossValidate(rows [][]float64, targets []float64, folds int, cfg Config) (*CVResult, error) {
	n := len(rows)
	if err := CheckTrainSize(n, folds); err != nil {
		return nil, err
	}

	res := &CVResult{FoldScores: make([]float64, folds)}
	blockSize := n / (folds + 1)

	for k := 0; k < folds; k++ {
		trainEnd := (k + 1) * blockSize
		testEnd := trainEnd + blockSize
		if k == folds-1 {
			testEnd = n
		}

		model, err := Train(rows[:trainEnd], targets[:trainEnd], cfg)
		if err != nil {
			return nil, err
		}

		pred := model.PredictAll(rows[trainEnd:testEnd])
		res.FoldScores[k] = -mape(targets[trainEnd:testEnd], pred)
	}

	var sum float64
	for _, s := range res.FoldScores {
		sum += s
	}
	res.Mean = sum / float64(folds)

	var variance float64
	for _, s := range res.FoldScores {
		variance += (s - res.Mean) * (s - res.Mean)
	}
	res.Std = math.Sqrt(variance / float64(folds))

	return res, nil
}
