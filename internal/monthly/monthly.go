// Package monthly reduces daily actuals and forecasts into calendar-month
// summary tables for reporting.
package monthly

import (
	"sort"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
)

const (
	// Trailing months of actuals included in the report
	actualMonths = 8
	// Forecast months reported
	forecastMonths = 12
)

func period(t time.Time) string {
	return t.Format("2006-01")
}

// Actuals aggregates the trailing eight months of the close series into
// per-month averages, oldest first. Grouping is by calendar month, so input
// row order does not matter.
func Actuals(records []core.MergedRecord) []core.MonthlyAggregate {
	if len(records) == 0 {
		return nil
	}

	last := records[0].Date
	for _, r := range records {
		if r.Date.After(last) {
			last = r.Date
		}
	}
	cutoff := last.AddDate(0, -actualMonths, 0)

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		if r.Date.Before(cutoff) {
			continue
		}
		p := period(r.Date)
		sums[p] += r.Close
		counts[p]++
	}

	out := make([]core.MonthlyAggregate, 0, len(sums))
	for p, sum := range sums {
		avg := sum / float64(counts[p])
		out = append(out, core.MonthlyAggregate{Period: p, Low: avg, Average: avg, High: avg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// Forecast aggregates forecast points on or after the last actual date into
// {min lower, mean central, max upper} per month, truncated to the first
// twelve months. The first forecast month is overwritten with the last
// actual monthly average, anchoring the forecast to the last known data
// point; this is a continuity patch, not a model output.
func Forecast(points []core.TrendPoint, lastActualDate time.Time, actuals []core.MonthlyAggregate) []core.MonthlyAggregate {
	type bucket struct {
		low, high float64
		sum       float64
		count     int
	}

	buckets := map[string]*bucket{}
	for _, p := range points {
		if p.Date.Before(lastActualDate) {
			continue
		}
		key := period(p.Date)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{low: p.Lower, high: p.Upper}
			buckets[key] = b
		}
		if p.Lower < b.low {
			b.low = p.Lower
		}
		if p.Upper > b.high {
			b.high = p.Upper
		}
		b.sum += p.Value
		b.count++
	}

	out := make([]core.MonthlyAggregate, 0, len(buckets))
	for key, b := range buckets {
		out = append(out, core.MonthlyAggregate{
			Period:  key,
			Low:     b.low,
			Average: b.sum / float64(b.count),
			High:    b.high,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })

	if len(out) > forecastMonths {
		out = out[:forecastMonths]
	}

	if len(out) > 0 && len(actuals) > 0 {
		anchor := actuals[len(actuals)-1].Average
		out[0].Low = anchor
		out[0].Average = anchor
		out[0].High = anchor
	}

	return out
}
