// Package collector fetches raw daily market data and shapes it into the
// series the aligner consumes.
package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jadaunkg/horizon/internal/align"
	"github.com/jadaunkg/horizon/internal/core"
)

// Collector fetches daily history for one symbol
type Collector interface {
	Name() string
	History(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error)
}

// Input is the raw material for one forecast run
type Input struct {
	Asset *align.Series
	Macro *align.Series
}

// Gather fetches the asset bars plus the macro proxy closes and assembles
// them into aligner input. The equity index and interest rate series are
// joined on the union of their dates, each column carrying its last
// observed value across the other's gaps.
func Gather(ctx context.Context, c Collector, symbol, indexSymbol, rateSymbol string, start, end time.Time) (*Input, error) {
	bars, err := c.History(ctx, symbol, start, end)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("history for %s: %w", symbol, err))
	}
	if len(bars) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no bars for %s", symbol))
	}

	indexBars, err := c.History(ctx, indexSymbol, start, end)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("history for %s: %w", indexSymbol, err))
	}
	rateBars, err := c.History(ctx, rateSymbol, start, end)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("history for %s: %w", rateSymbol, err))
	}

	macro := macroSeries(indexBars, rateBars)
	if macro.Len() == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("no macro rows for %s/%s", indexSymbol, rateSymbol))
	}

	return &Input{Asset: AssetSeries(bars), Macro: macro}, nil
}

// AssetSeries converts bars into an aligner series, dropping invalid rows
func AssetSeries(bars []core.Bar) *align.Series {
	s := align.NewSeries(align.ColOpen, align.ColHigh, align.ColLow, align.ColClose, align.ColVolume)
	for _, b := range bars {
		if !b.IsValid() {
			continue
		}
		s.AddRow(b.Date, map[string]float64{
			align.ColOpen:   b.Open,
			align.ColHigh:   b.High,
			align.ColLow:    b.Low,
			align.ColClose:  b.Close,
			align.ColVolume: b.Volume,
		})
	}
	return s
}

func macroSeries(indexBars, rateBars []core.Bar) *align.Series {
	points := macroJoin(indexBars, rateBars)
	s := align.NewSeries(align.ColInterestRate, align.ColEquityIndex)
	for _, p := range points {
		s.AddRow(p.Date, map[string]float64{
			align.ColInterestRate: p.InterestRate,
			align.ColEquityIndex:  p.EquityIndex,
		})
	}
	return s
}

// macroJoin merges the two proxy closes on the union of their dates. Rows
// before both series have a first observation are dropped.
func macroJoin(indexBars, rateBars []core.Bar) []core.MacroPoint {
	index := closeByDay(indexBars)
	rate := closeByDay(rateBars)

	seen := make(map[time.Time]struct{}, len(index)+len(rate))
	dates := make([]time.Time, 0, len(index)+len(rate))
	for d := range index {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}
	for d := range rate {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var (
		out              []core.MacroPoint
		lastIndex        float64
		lastRate         float64
		haveIdx, haveRat bool
	)
	for _, d := range dates {
		if v, ok := index[d]; ok {
			lastIndex, haveIdx = v, true
		}
		if v, ok := rate[d]; ok {
			lastRate, haveRat = v, true
		}
		if !haveIdx || !haveRat {
			continue
		}
		out = append(out, core.MacroPoint{Date: d, InterestRate: lastRate, EquityIndex: lastIndex})
	}
	return out
}

func closeByDay(bars []core.Bar) map[time.Time]float64 {
	out := make(map[time.Time]float64, len(bars))
	for _, b := range bars {
		if !b.IsValid() {
			continue
		}
		out[core.Day(b.Date)] = b.Close
	}
	return out
}
