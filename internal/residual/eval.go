package residual

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics holds the Stage B evaluation summary. Reporting output only,
// never a control-flow input.
type Metrics struct {
	MSE  float64
	MAPE float64
	R2   float64
}

// Evaluate scores predictions against actual values
func Evaluate(actual, predicted []float64) Metrics {
	var sse float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sse += d * d
	}

	return Metrics{
		MSE:  sse / float64(len(actual)),
		MAPE: mape(actual, predicted),
		R2:   stat.RSquaredFrom(predicted, actual, nil),
	}
}

// mape is the mean absolute percentage error. Terms with a near-zero actual
// are skipped rather than allowed to blow up the mean.
func mape(actual, predicted []float64) float64 {
	const eps = 1e-12
	var sum float64
	var n int
	for i := range actual {
		if math.Abs(actual[i]) < eps {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
