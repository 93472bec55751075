package feature

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
)

func constantRecords(n int) []core.MergedRecord {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]core.MergedRecord, n)
	for i := range records {
		records[i] = core.MergedRecord{
			Date:         start.AddDate(0, 0, i),
			Open:         100,
			High:         100,
			Low:          100,
			Close:        100,
			Volume:       1000,
			InterestRate: 2.5,
			EquityIndex:  4000,
		}
	}
	return records
}

func trendingRecords(n int) []core.MergedRecord {
	records := constantRecords(n)
	for i := range records {
		records[i].Close = 100 + float64(i)
		records[i].Volume = 1000 + 10*float64(i)
	}
	return records
}

func TestCheckQuality_ConstantScenario(t *testing.T) {
	records := constantRecords(40)

	if err := CheckQuality(records, 30, 900); err != nil {
		t.Fatalf("40 rows of volume 1000 should pass both gates: %v", err)
	}
}

func TestCheckQuality_TooFewRows(t *testing.T) {
	err := CheckQuality(constantRecords(20), 30, 900)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected InsufficientData, got %v", err)
	}
}

func TestCheckQuality_LowLiquidity(t *testing.T) {
	records := constantRecords(40)
	for i := range records {
		records[i].Volume = 100
	}

	err := CheckQuality(records, 30, 900)
	if !errors.Is(err, core.ErrLowLiquidity) {
		t.Fatalf("expected LowLiquidity, got %v", err)
	}
}

func TestDerive_DropsExactlyMaxLag(t *testing.T) {
	records := constantRecords(40)

	feats := Derive(records)

	// 40 rows minus the 14-period momentum lag
	if len(feats) != 26 {
		t.Fatalf("expected 26 feature rows, got %d", len(feats))
	}
	if !feats[0].Date.Equal(records[MaxLag].Date) {
		t.Errorf("first feature row should be record %d's date", MaxLag)
	}
}

func TestDerive_ChronologicalOrder(t *testing.T) {
	feats := Derive(trendingRecords(50))

	for i := 1; i < len(feats); i++ {
		if !feats[i].Date.After(feats[i-1].Date) {
			t.Fatalf("output order broken at %d", i)
		}
	}
}

func TestDerive_ConstantSeriesValues(t *testing.T) {
	feats := Derive(constantRecords(40))

	f := feats[0]
	if f.Momentum14 != 0 {
		t.Errorf("constant series momentum should be 0, got %v", f.Momentum14)
	}
	if f.Volatility7 != 0 || f.Volatility30 != 0 {
		t.Errorf("constant series volatility should be 0, got %v / %v", f.Volatility7, f.Volatility30)
	}
	if f.CloseLag7 != 100 || f.CloseLag14 != 100 {
		t.Errorf("lagged closes should be 100, got %v / %v", f.CloseLag7, f.CloseLag14)
	}
	if math.Abs(f.IndexRelative-100.0/4000.0) > 1e-12 {
		t.Errorf("index relative: got %v", f.IndexRelative)
	}
	if math.Abs(f.MarketCapProxy-100.0*1000.0/4000.0) > 1e-12 {
		t.Errorf("market cap proxy: got %v", f.MarketCapProxy)
	}
	if f.InterestRateMA30 != 2.5 || f.EquityIndexMA30 != 4000 {
		t.Errorf("macro MAs: got %v / %v", f.InterestRateMA30, f.EquityIndexMA30)
	}
}

func TestDerive_NoLookAhead(t *testing.T) {
	records := trendingRecords(60)
	feats := Derive(records)

	// Perturbing the future must not change an earlier row's features
	cut := 30
	truncated := Derive(records[:cut+1+MaxLag])

	for i := 0; i < len(truncated); i++ {
		if feats[i] != truncated[i] {
			t.Fatalf("row %d depends on future data", i)
		}
	}
}

func TestDerive_LaggedValues(t *testing.T) {
	records := trendingRecords(30)
	feats := Derive(records)

	// Record i has close 100+i; feature row 0 is record 14
	f := feats[0]
	if f.CloseLag7 != 100+14-7 {
		t.Errorf("close lag 7: got %v, want %v", f.CloseLag7, 107.0)
	}
	if f.CloseLag14 != 100 {
		t.Errorf("close lag 14: got %v, want 100", f.CloseLag14)
	}

	wantMomentum := (100.0+14)/100.0 - 1
	if math.Abs(f.Momentum14-wantMomentum) > 1e-12 {
		t.Errorf("momentum: got %v, want %v", f.Momentum14, wantMomentum)
	}
}

func TestDerive_TooShort(t *testing.T) {
	if feats := Derive(constantRecords(14)); feats != nil {
		t.Errorf("expected nil for series shorter than the lag window, got %d rows", len(feats))
	}
}
