package indicator

import "gonum.org/v1/gonum/stat"

// Returns calculates period-over-period relative changes.
// Returns slice of length: len(prices) - 1
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			out[i-1] = prices[i]/prices[i-1] - 1
		}
	}
	return out
}

// TrailingMean calculates the moving average over a trailing window.
// The window expands until it fills, so the output has the same length as
// the input and early values average the available history.
func TrailingMean(xs []float64, window int) []float64 {
	if window < 1 || len(xs) == 0 {
		return []float64{}
	}
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		sum += x
		n := i + 1
		if n > window {
			sum -= xs[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// TrailingStd calculates the sample standard deviation over a trailing
// window, expanding until the window fills. Positions with fewer than two
// observations report zero.
func TrailingStd(xs []float64, window int) []float64 {
	if window < 2 || len(xs) == 0 {
		return []float64{}
	}
	out := make([]float64, len(xs))
	for i := range xs {
		lo := i + 1 - window
		if lo < 0 {
			lo = 0
		}
		if i-lo+1 < 2 {
			continue
		}
		out[i] = stat.StdDev(xs[lo:i+1], nil)
	}
	return out
}

// Lag shifts the series back by k periods. The first k positions are
// reported as zero; callers drop rows without enough history rather than
// trusting them.
func Lag(xs []float64, k int) []float64 {
	out := make([]float64, len(xs))
	for i := k; i < len(xs); i++ {
		out[i] = xs[i-k]
	}
	return out
}

// Momentum calculates the relative change versus k periods prior.
// Positions without enough history report zero.
func Momentum(prices []float64, k int) []float64 {
	out := make([]float64, len(prices))
	for i := k; i < len(prices); i++ {
		if prices[i-k] != 0 {
			out[i] = prices[i]/prices[i-k] - 1
		}
	}
	return out
}
