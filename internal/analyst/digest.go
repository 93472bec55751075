package analyst

import (
	"fmt"
	"strings"

	"github.com/jadaunkg/horizon/internal/pipeline"
)

// Digest renders a run result as plain text a language model can reason
// about. Only numbers already present in the result appear in the output.
func Digest(res *pipeline.Result, name string) string {
	if name == "" {
		name = res.Symbol
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Instrument: %s (%s)\n", name, res.Symbol)

	if n := len(res.Merged); n > 0 {
		last := res.Merged[n-1]
		fmt.Fprintf(&b, "Last close: %.2f on %s\n", last.Close, last.Date.Format("2006-01-02"))
	}
	if n := len(res.Future); n > 0 {
		first, last := res.Future[0], res.Future[n-1]
		fmt.Fprintf(&b, "Forecast: %d days, ending %s\n", n, last.Date.Format("2006-01-02"))
		fmt.Fprintf(&b, "Forecast start: %.2f (band %.2f to %.2f)\n", first.Value, first.Lower, first.Upper)
		fmt.Fprintf(&b, "Forecast end: %.2f (band %.2f to %.2f)\n", last.Value, last.Lower, last.Upper)
	}

	if res.TrendOnly {
		b.WriteString("Note: residual correction was skipped; this is a trend-only forecast with no accuracy measurement.\n")
	}
	if res.TestScores != nil {
		fmt.Fprintf(&b, "Held-out accuracy: MAPE %.2f%%, R2 %.4f\n",
			res.TestScores.MAPE*100, res.TestScores.R2)
	}
	if res.CV != nil {
		fmt.Fprintf(&b, "Cross-validation mean score (negative MAPE): %.4f\n", res.CV.Mean)
	}

	if len(res.Importance) > 0 {
		b.WriteString("Top feature weights:\n")
		for i, fw := range res.Importance {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "  %s: %.1f%%\n", fw.Name, fw.Weight*100)
		}
	}

	if len(res.ForecastMonthly) > 0 {
		b.WriteString("Monthly forecast (low / average / high):\n")
		for _, m := range res.ForecastMonthly {
			fmt.Fprintf(&b, "  %s: %.2f / %.2f / %.2f\n", m.Period, m.Low, m.Average, m.High)
		}
	}

	return b.String()
}
