// Package residual implements Stage B: a gradient-boosted ensemble of
// regression trees, trained on engineered features to predict the trend
// model's residual error. Hyperparameters are fixed by configuration and
// never tuned here.
package residual

import (
	"fmt"
	"math/rand"

	"github.com/jadaunkg/horizon/internal/core"
)

// stopTol is the minimum validation-loss improvement that resets the
// early-stopping patience counter.
const stopTol = 1e-4

// Config holds the fixed gradient boosting hyperparameters
type Config struct {
	Estimators         int
	LearningRate       float64
	MaxDepth           int
	Subsample          float64
	ValidationFraction float64
	Patience           int
	Seed               int64
}

// Model is a fitted residual-correction model: a robust scaler plus a
// boosted tree ensemble.
type Model struct {
	scaler     *RobustScaler
	trees      []*treeNode
	base       float64
	shrinkage  float64
	importance []float64
}

// Train fits the ensemble on the training rows. The scaler is fit on these
// rows only; callers must pass the chronological training partition, never a
// random shuffle.
func Train(rows [][]float64, targets []float64, cfg Config) (*Model, error) {
	n := len(rows)
	if n < 2 {
		return nil, core.WrapError(core.ErrInsufficientTrainingData,
			fmt.Errorf("got %d training rows, need at least 2", n))
	}
	if len(targets) != n {
		return nil, core.WrapError(core.ErrFitFailed,
			fmt.Errorf("got %d targets for %d rows", len(targets), n))
	}

	scaler, err := FitScaler(rows)
	if err != nil {
		return nil, err
	}
	x := scaler.TransformAll(rows)

	// Hold out a time-ordered tail for early stopping
	valStart := n
	if cfg.Patience > 0 && cfg.ValidationFraction > 0 {
		valStart = n - int(float64(n)*cfg.ValidationFraction)
		if valStart < 2 {
			valStart = n
		}
	}

	dim := len(rows[0])
	m := &Model{
		scaler:     scaler,
		shrinkage:  cfg.LearningRate,
		importance: make([]float64, dim),
	}

	var baseSum float64
	for i := 0; i < valStart; i++ {
		baseSum += targets[i]
	}
	m.base = baseSum / float64(valStart)

	pred := make([]float64, n)
	grad := make([]float64, valStart)
	for i := range pred {
		pred[i] = m.base
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	sampleSize := int(float64(valStart) * cfg.Subsample)
	if sampleSize < 1 {
		sampleSize = 1
	}

	bestVal := valScore(targets, pred, valStart, n)
	bestRound := 0
	stale := 0

	for round := 0; round < cfg.Estimators; round++ {
		// Squared-error gradient: residual of the current ensemble
		for i := 0; i < valStart; i++ {
			grad[i] = targets[i] - pred[i]
		}

		idx := subsample(rng, valStart, sampleSize)
		tree := buildTree(x, grad, idx, cfg.MaxDepth, m.importance)
		m.trees = append(m.trees, tree)

		for i := range pred {
			pred[i] += m.shrinkage * tree.predict(x[i])
		}

		if valStart < n {
			score := valScore(targets, pred, valStart, n)
			if score < bestVal-stopTol {
				bestVal = score
				bestRound = len(m.trees)
				stale = 0
			} else {
				stale++
				if stale >= cfg.Patience {
					m.trees = m.trees[:bestRound]
					break
				}
			}
		}
	}

	normalize(m.importance)
	return m, nil
}

// Predict returns the predicted residual correction for one unscaled
// feature row.
func (m *Model) Predict(row []float64) float64 {
	x := m.scaler.Transform(row)
	out := m.base
	for _, tree := range m.trees {
		out += m.shrinkage * tree.predict(x)
	}
	return out
}

// PredictAll predicts a batch of rows
func (m *Model) PredictAll(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = m.Predict(row)
	}
	return out
}

// Rounds returns the number of boosting rounds kept after early stopping
func (m *Model) Rounds() int {
	return len(m.trees)
}

// Importance reports each feature's share of the total squared-error
// reduction across all splits, in feature-vector order. Sums to 1 when any
// split occurred.
func (m *Model) Importance() []float64 {
	out := make([]float64, len(m.importance))
	copy(out, m.importance)
	return out
}

func valScore(targets, pred []float64, from, to int) float64 {
	if from >= to {
		return 0
	}
	var sse float64
	for i := from; i < to; i++ {
		d := targets[i] - pred[i]
		sse += d * d
	}
	return sse / float64(to-from)
}

// subsample draws size distinct indices from [0, n)
func subsample(rng *rand.Rand, n, size int) []int {
	if size >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	perm := rng.Perm(n)[:size]
	return perm
}

func normalize(xs []float64) {
	var total float64
	for _, v := range xs {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range xs {
		xs[i] /= total
	}
}
