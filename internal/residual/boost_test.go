package residual

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Estimators:         200,
		LearningRate:       0.1,
		MaxDepth:           3,
		Subsample:          1.0,
		ValidationFraction: 0.2,
		Patience:           15,
		Seed:               42,
	}
}

// stepData returns rows whose target is a step function of the first feature
func stepData(n int) ([][]float64, []float64) {
	rows := make([][]float64, n)
	targets := make([]float64, n)
	for i := range rows {
		rows[i] = []float64{float64(i), math.Mod(float64(i), 7)}
		if i < n/2 {
			targets[i] = -5
		} else {
			targets[i] = 5
		}
	}
	return rows, targets
}

func TestTrain_LearnsStepFunction(t *testing.T) {
	rows, targets := stepData(100)

	m, err := Train(rows, targets, testConfig())
	require.NoError(t, err)

	for _, i := range []int{5, 20, 45} {
		assert.InDelta(t, -5, m.Predict(rows[i]), 1.0, "row %d", i)
	}
	for _, i := range []int{55, 70, 95} {
		assert.InDelta(t, 5, m.Predict(rows[i]), 1.0, "row %d", i)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	rows, targets := stepData(80)

	m1, err := Train(rows, targets, testConfig())
	require.NoError(t, err)
	m2, err := Train(rows, targets, testConfig())
	require.NoError(t, err)

	for i := range rows {
		assert.Equal(t, m1.Predict(rows[i]), m2.Predict(rows[i]), "row %d", i)
	}
}

func TestTrain_EarlyStoppingBoundsRounds(t *testing.T) {
	rows, targets := stepData(100)

	cfg := testConfig()
	m, err := Train(rows, targets, cfg)
	require.NoError(t, err)

	// A step function is learned in a handful of rounds; patience should
	// cut the ensemble well short of the cap
	assert.Less(t, m.Rounds(), cfg.Estimators)
}

func TestTrain_ImportanceSumsToOne(t *testing.T) {
	rows, targets := stepData(100)

	m, err := Train(rows, targets, testConfig())
	require.NoError(t, err)

	imp := m.Importance()
	require.Len(t, imp, 2)

	var total float64
	for _, v := range imp {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	// The step depends only on feature 0
	assert.Greater(t, imp[0], imp[1])
}

func TestTrain_Subsampling(t *testing.T) {
	rows, targets := stepData(100)

	cfg := testConfig()
	cfg.Subsample = 0.5
	m, err := Train(rows, targets, cfg)
	require.NoError(t, err)

	// Still learns the step, just from random halves of the data
	assert.InDelta(t, -5, m.Predict(rows[10]), 2.0)
	assert.InDelta(t, 5, m.Predict(rows[90]), 2.0)
}

func TestTrain_TooFewRows(t *testing.T) {
	_, err := Train([][]float64{{1}}, []float64{1}, testConfig())
	require.Error(t, err)
}

func TestTrain_LengthMismatch(t *testing.T) {
	_, err := Train([][]float64{{1}, {2}}, []float64{1}, testConfig())
	require.Error(t, err)
}
