package report

import (
	"strings"
	"testing"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
	"github.com/jadaunkg/horizon/internal/pipeline"
	"github.com/jadaunkg/horizon/internal/residual"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Symbol:      "TSLA",
		RunID:       "run-42",
		GeneratedAt: day(2025, 6, 1),
		Merged: []core.MergedRecord{
			{Date: day(2025, 1, 1), Close: 100},
			{Date: day(2025, 1, 2), Close: 102},
			{Date: day(2025, 1, 3), Close: 101},
		},
		Future: []core.TrendPoint{
			{Date: day(2025, 6, 2), Value: 110, Lower: 105, Upper: 115},
			{Date: day(2025, 6, 3), Value: 111, Lower: 106, Upper: 116},
		},
		TestScores: &residual.Metrics{MSE: 4, MAPE: 0.0215, R2: 0.9132},
		CV:         &residual.CVResult{Mean: -0.0321},
		Importance: []pipeline.FeatureWeight{
			{Name: "momentum_14", Weight: 0.42},
			{Name: "close_lag_7", Weight: 0.31},
		},
		ActualMonthly: []core.MonthlyAggregate{
			{Period: "2025-01", Low: 100, Average: 101, High: 102},
		},
		ForecastMonthly: []core.MonthlyAggregate{
			{Period: "2025-06", Low: 105, Average: 110.5, High: 116},
		},
	}
}

func TestRender(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	html, err := r.Render(sampleResult(), "Tesla")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(html)

	for _, want := range []string{
		"Tesla (TSLA)",
		"run-42",
		"2.15%",       // test MAPE
		"0.9132",      // test R2
		"2025-06",     // forecast month
		"momentum_14", // importance table
		"<svg",        // inline chart
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "Residual correction was skipped") {
		t.Error("trend-only warning should not render for a full run")
	}
}

func TestRender_TrendOnly(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	res := sampleResult()
	res.TrendOnly = true
	res.TestScores = nil
	res.CV = nil
	res.Importance = nil

	html, err := r.Render(res, "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(html)

	if !strings.Contains(out, "Residual correction was skipped") {
		t.Error("expected trend-only warning")
	}
	// Name falls back to the symbol
	if !strings.Contains(out, "TSLA (TSLA)") {
		t.Error("expected symbol fallback title")
	}
	if strings.Contains(out, "Test MAPE") {
		t.Error("score cards should be omitted without test scores")
	}
}

func TestPriceChart(t *testing.T) {
	res := sampleResult()
	svg := string(priceChart(res.Merged, res.Future))

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("malformed svg: %.60s", svg)
	}
	if !strings.Contains(svg, "<polygon") {
		t.Error("expected forecast band polygon")
	}
	if got := strings.Count(svg, "<polyline"); got != 2 {
		t.Errorf("expected 2 polylines, got %d", got)
	}
}

func TestPriceChart_Empty(t *testing.T) {
	if svg := priceChart(nil, nil); svg != "" {
		t.Errorf("expected empty chart, got %q", svg)
	}
	// A single day has no horizontal span to scale against
	one := []core.MergedRecord{{Date: day(2025, 1, 1), Close: 100}}
	if svg := priceChart(one, nil); svg != "" {
		t.Errorf("expected empty chart for single point, got %q", svg)
	}
}
