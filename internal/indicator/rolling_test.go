package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReturns(t *testing.T) {
	prices := []float64{100, 110, 99}

	got := Returns(prices)

	// [0] = 110/100 - 1 = 0.10
	// [1] = 99/110 - 1 = -0.10
	want := []float64{0.10, -0.10}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i, w := range want {
		if !almostEqual(got[i], w) {
			t.Errorf("returns[%d]: got %v, want %v", i, got[i], w)
		}
	}
}

func TestReturns_TooShort(t *testing.T) {
	if got := Returns([]float64{100}); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestTrailingMean(t *testing.T) {
	xs := []float64{10, 20, 30, 40}

	got := TrailingMean(xs, 3)

	// Expanding: [0]=10, [1]=15, [2]=20, then rolling: [3]=(20+30+40)/3=30
	want := []float64{10, 15, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i, w := range want {
		if !almostEqual(got[i], w) {
			t.Errorf("mean[%d]: got %v, want %v", i, got[i], w)
		}
	}
}

func TestTrailingStd(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	got := TrailingStd(xs, len(xs))

	if got[0] != 0 {
		t.Errorf("single observation should report zero, got %v", got[0])
	}
	// Sample std of the full series
	if !almostEqual(got[len(got)-1], 2.138089935299395) {
		t.Errorf("full-window std: got %v", got[len(got)-1])
	}
}

func TestTrailingStd_ConstantSeries(t *testing.T) {
	xs := []float64{5, 5, 5, 5, 5}
	for i, v := range TrailingStd(xs, 3) {
		if v != 0 {
			t.Errorf("constant series std[%d] should be zero, got %v", i, v)
		}
	}
}

func TestLag(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}

	got := Lag(xs, 2)

	want := []float64{0, 0, 1, 2, 3}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("lag[%d]: got %v, want %v", i, got[i], w)
		}
	}
}

func TestMomentum(t *testing.T) {
	xs := []float64{100, 100, 100, 120}

	got := Momentum(xs, 3)

	if got[2] != 0 {
		t.Errorf("insufficient history should report zero, got %v", got[2])
	}
	if !almostEqual(got[3], 0.2) {
		t.Errorf("momentum[3]: got %v, want 0.2", got[3])
	}
}
