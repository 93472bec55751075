package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jadaunkg/horizon/internal/align"
	"github.com/jadaunkg/horizon/internal/core"
)

type fakeCollector struct {
	history map[string][]core.Bar
	err     error
}

func (f *fakeCollector) Name() string { return "fake" }

func (f *fakeCollector) History(_ context.Context, symbol string, _, _ time.Time) ([]core.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history[symbol], nil
}

func bars(start time.Time, closes ...float64) []core.Bar {
	out := make([]core.Bar, len(closes))
	for i, c := range closes {
		out[i] = core.Bar{
			Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1,
			Close: c, Volume: 1000,
		}
	}
	return out
}

func TestGather(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &fakeCollector{history: map[string][]core.Bar{
		"TSLA":  bars(start, 100, 101, 102, 103),
		"^GSPC": bars(start, 4000, 4010, 4020, 4030),
		"^TNX":  bars(start, 4.1, 4.2, 4.3, 4.4),
	}}

	in, err := Gather(context.Background(), c, "TSLA", "^GSPC", "^TNX", start, start.AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}

	if in.Asset.Len() != 4 {
		t.Errorf("expected 4 asset rows, got %d", in.Asset.Len())
	}
	if in.Macro.Len() != 4 {
		t.Errorf("expected 4 macro rows, got %d", in.Macro.Len())
	}
	if got := in.Macro.Columns[align.ColEquityIndex][0]; got != 4000 {
		t.Errorf("expected equity index 4000, got %f", got)
	}
	if got := in.Macro.Columns[align.ColInterestRate][3]; got != 4.4 {
		t.Errorf("expected interest rate 4.4, got %f", got)
	}
}

func TestGather_MacroGapCarry(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := bars(start, 4.1, 4.2, 4.3, 4.4)
	// Yield observed only on the first and last day
	rate = []core.Bar{rate[0], rate[3]}

	c := &fakeCollector{history: map[string][]core.Bar{
		"TSLA":  bars(start, 100, 101, 102, 103),
		"^GSPC": bars(start, 4000, 4010, 4020, 4030),
		"^TNX":  rate,
	}}

	in, err := Gather(context.Background(), c, "TSLA", "^GSPC", "^TNX", start, start.AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}

	if in.Macro.Len() != 4 {
		t.Fatalf("expected 4 macro rows, got %d", in.Macro.Len())
	}
	// Days without a yield observation carry the last seen value
	rates := in.Macro.Columns[align.ColInterestRate]
	if rates[1] != 4.1 || rates[2] != 4.1 {
		t.Errorf("expected carried rate 4.1, got %f and %f", rates[1], rates[2])
	}
	if rates[3] != 4.4 {
		t.Errorf("expected rate 4.4 on last day, got %f", rates[3])
	}
}

func TestGather_LeadingGapDropped(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// Index starts two days after the yield series
	index := bars(start.AddDate(0, 0, 2), 4020, 4030)

	c := &fakeCollector{history: map[string][]core.Bar{
		"TSLA":  bars(start, 100, 101, 102, 103),
		"^GSPC": index,
		"^TNX":  bars(start, 4.1, 4.2, 4.3, 4.4),
	}}

	in, err := Gather(context.Background(), c, "TSLA", "^GSPC", "^TNX", start, start.AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}
	if in.Macro.Len() != 2 {
		t.Errorf("expected 2 macro rows after dropping leading gap, got %d", in.Macro.Len())
	}
}

func TestGather_FetchError(t *testing.T) {
	c := &fakeCollector{err: errors.New("boom")}
	_, err := Gather(context.Background(), c, "TSLA", "^GSPC", "^TNX", time.Now().AddDate(-1, 0, 0), time.Now())
	if !errors.Is(err, core.ErrCollectorFailed) {
		t.Errorf("expected ErrCollectorFailed, got %v", err)
	}
}

func TestGather_NoBars(t *testing.T) {
	c := &fakeCollector{history: map[string][]core.Bar{}}
	_, err := Gather(context.Background(), c, "TSLA", "^GSPC", "^TNX", time.Now().AddDate(-1, 0, 0), time.Now())
	if !errors.Is(err, core.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestAssetSeries_SkipsInvalidBars(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := bars(start, 100, 101)
	b = append(b, core.Bar{Date: start.AddDate(0, 0, 2)}) // zero close

	s := AssetSeries(b)
	if s.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", s.Len())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	c := &fakeCollector{}
	r.Register(c)

	got, err := r.Get("fake")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != c {
		t.Error("Get returned a different collector")
	}

	if _, err := r.Get("missing"); !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid for unknown provider, got %v", err)
	}

	if names := r.Names(); len(names) != 1 || names[0] != "fake" {
		t.Errorf("unexpected names: %v", names)
	}
}
