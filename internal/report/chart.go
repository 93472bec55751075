package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
)

const (
	chartWidth  = 880.0
	chartHeight = 320.0
	chartPad    = 10.0
)

// priceChart draws the historical closes and the forecast band as an
// inline SVG. Returns an empty string when there is nothing to plot.
func priceChart(merged []core.MergedRecord, future []core.TrendPoint) template.HTML {
	if len(merged) == 0 {
		return ""
	}

	first := merged[0].Date
	last := merged[len(merged)-1].Date
	if len(future) > 0 {
		last = future[len(future)-1].Date
	}
	span := last.Sub(first).Hours()
	if span <= 0 {
		return ""
	}

	lo, hi := merged[0].Close, merged[0].Close
	for _, r := range merged {
		lo, hi = minmax(lo, hi, r.Close)
	}
	for _, p := range future {
		lo, hi = minmax(lo, hi, p.Lower)
		lo, hi = minmax(lo, hi, p.Upper)
	}
	if hi == lo {
		hi = lo + 1
	}

	x := func(d time.Time) float64 {
		return chartPad + (chartWidth-2*chartPad)*d.Sub(first).Hours()/span
	}
	y := func(v float64) float64 {
		return chartHeight - chartPad - (chartHeight-2*chartPad)*(v-lo)/(hi-lo)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %.0f %.0f" xmlns="http://www.w3.org/2000/svg">`,
		chartWidth, chartHeight)

	if len(future) > 0 {
		// Band polygon walks the upper bound forward and the lower back
		b.WriteString(`<polygon fill="#cfe3f7" stroke="none" points="`)
		for _, p := range future {
			fmt.Fprintf(&b, "%.1f,%.1f ", x(p.Date), y(p.Upper))
		}
		for i := len(future) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "%.1f,%.1f ", x(future[i].Date), y(future[i].Lower))
		}
		b.WriteString(`"/>`)

		b.WriteString(`<polyline fill="none" stroke="#1f6fc4" stroke-width="1.5" points="`)
		for _, p := range future {
			fmt.Fprintf(&b, "%.1f,%.1f ", x(p.Date), y(p.Value))
		}
		b.WriteString(`"/>`)
	}

	b.WriteString(`<polyline fill="none" stroke="#333" stroke-width="1" points="`)
	for _, r := range merged {
		fmt.Fprintf(&b, "%.1f,%.1f ", x(r.Date), y(r.Close))
	}
	b.WriteString(`"/>`)

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

func minmax(lo, hi, v float64) (float64, float64) {
	if v < lo {
		lo = v
	}
	if v > hi {
		hi = v
	}
	return lo, hi
}
