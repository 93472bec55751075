// Package align reconciles two date-indexed series of unequal coverage and
// frequency into a single gap-free daily table.
package align

import (
	"fmt"
	"sort"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
)

// Column names recognized in input series
const (
	ColOpen         = "open"
	ColHigh         = "high"
	ColLow          = "low"
	ColClose        = "close"
	ColVolume       = "volume"
	ColInterestRate = "interest_rate"
	ColEquityIndex  = "equity_index"
)

// assetColumns are required in the asset series, macroColumns in the macro
// series. Checked after the merge so the error names the merged-table column.
var (
	assetColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}
	macroColumns = []string{ColInterestRate, ColEquityIndex}
)

// Series is a date-indexed table with one or more numeric columns, the shape
// external data collaborators hand to the core. Dates may be irregular and
// gapped before alignment.
type Series struct {
	Dates   []time.Time
	Columns map[string][]float64
}

// NewSeries creates an empty series with the given columns
func NewSeries(columns ...string) *Series {
	s := &Series{Columns: make(map[string][]float64, len(columns))}
	for _, c := range columns {
		s.Columns[c] = nil
	}
	return s
}

// AddRow appends one dated observation. Missing columns are an error at
// alignment time, not here.
func (s *Series) AddRow(date time.Time, values map[string]float64) {
	s.Dates = append(s.Dates, core.Day(date))
	for col := range s.Columns {
		s.Columns[col] = append(s.Columns[col], values[col])
	}
}

// Len returns the number of rows
func (s *Series) Len() int {
	return len(s.Dates)
}

// normalize sorts rows chronologically, collapses duplicate dates keeping the
// last observation, and strips time-of-day components.
func (s *Series) normalize() *Series {
	idx := make([]int, len(s.Dates))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return core.Day(s.Dates[idx[a]]).Before(core.Day(s.Dates[idx[b]]))
	})

	out := &Series{Columns: make(map[string][]float64, len(s.Columns))}
	for _, i := range idx {
		d := core.Day(s.Dates[i])
		if n := len(out.Dates); n > 0 && out.Dates[n-1].Equal(d) {
			// Duplicate date: overwrite with the later observation
			for col, vals := range s.Columns {
				out.Columns[col][n-1] = vals[i]
			}
			continue
		}
		out.Dates = append(out.Dates, d)
		for col, vals := range s.Columns {
			out.Columns[col] = append(out.Columns[col], vals[i])
		}
	}
	return out
}

// reindex projects the series onto the daily calendar [start, end], carrying
// the last known value into gaps (forward fill) and covering any gap before
// the first observation with it (backward fill). Stale values are reused
// across non-trading days on purpose; this is not an interpolation.
func (s *Series) reindex(start, end time.Time) *Series {
	days := int(end.Sub(start).Hours()/24) + 1
	out := &Series{
		Dates:   make([]time.Time, days),
		Columns: make(map[string][]float64, len(s.Columns)),
	}
	for col := range s.Columns {
		out.Columns[col] = make([]float64, days)
	}

	// Index of first observation at or after start
	next := sort.Search(len(s.Dates), func(i int) bool {
		return !s.Dates[i].Before(start)
	})
	// Seed the carry with the observation preceding start, if any,
	// otherwise with the first observation (backward fill).
	carry := next - 1
	if carry < 0 {
		carry = next
	}

	d := start
	for i := 0; i < days; i++ {
		for next < len(s.Dates) && !s.Dates[next].After(d) {
			carry = next
			next++
		}
		out.Dates[i] = d
		for col, vals := range s.Columns {
			out.Columns[col][i] = vals[carry]
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

// Merge aligns the asset and macro series onto a shared daily calendar and
// joins them into one MergedRecord per day. The join is nearest-date with
// exact dates preferred; once both sides are daily and gap-free that
// degenerates to an identity join on date.
func Merge(asset, macro *Series, minRows int) ([]core.MergedRecord, error) {
	if asset.Len() == 0 || macro.Len() == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("asset rows: %d, macro rows: %d", asset.Len(), macro.Len()))
	}

	a := asset.normalize()
	m := macro.normalize()

	start := maxTime(a.Dates[0], m.Dates[0])
	end := minTime(a.Dates[len(a.Dates)-1], m.Dates[len(m.Dates)-1])
	if start.After(end) {
		return nil, core.WrapError(core.ErrInsufficientOverlap,
			fmt.Errorf("asset covers %s..%s, macro covers %s..%s",
				fmtDay(a.Dates[0]), fmtDay(a.Dates[len(a.Dates)-1]),
				fmtDay(m.Dates[0]), fmtDay(m.Dates[len(m.Dates)-1])))
	}

	a = a.reindex(start, end)
	m = m.reindex(start, end)

	for _, col := range assetColumns {
		if _, ok := a.Columns[col]; !ok {
			return nil, core.WrapError(core.ErrMissingColumn,
				fmt.Errorf("asset column %q absent after merge", col))
		}
	}
	for _, col := range macroColumns {
		if _, ok := m.Columns[col]; !ok {
			return nil, core.WrapError(core.ErrMissingColumn,
				fmt.Errorf("macro column %q absent after merge", col))
		}
	}

	merged := make([]core.MergedRecord, len(a.Dates))
	for i, d := range a.Dates {
		merged[i] = core.MergedRecord{
			Date:         d,
			Open:         a.Columns[ColOpen][i],
			High:         a.Columns[ColHigh][i],
			Low:          a.Columns[ColLow][i],
			Close:        a.Columns[ColClose][i],
			Volume:       a.Columns[ColVolume][i],
			InterestRate: m.Columns[ColInterestRate][i],
			EquityIndex:  m.Columns[ColEquityIndex][i],
		}
	}

	if len(merged) < minRows {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("got %d merged rows, need %d", len(merged), minRows))
	}

	return merged, nil
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func fmtDay(t time.Time) string {
	return t.Format("2006-01-02")
}
