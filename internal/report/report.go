// Package report renders a self-contained HTML summary of one forecast run.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
	"github.com/jadaunkg/horizon/internal/pipeline"
)

//go:embed templates/report.html
var templateFS embed.FS

// Renderer turns run results into HTML reports
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded report template
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return nil, core.WrapError(core.ErrReportFailed,
			fmt.Errorf("parsing report template: %w", err))
	}
	return &Renderer{tmpl: tmpl}, nil
}

type reportData struct {
	Symbol      string
	Name        string
	RunID       string
	GeneratedAt string
	TrendOnly   bool

	LastClose    string
	LastDate     string
	HorizonDays  int
	HorizonEnd   string
	TestMAPE     string
	TestR2       string
	CVMean       string
	HasScores    bool
	Importance   []importanceRow
	ActualRows   []core.MonthlyAggregate
	ForecastRows []core.MonthlyAggregate
	Chart        template.HTML
}

type importanceRow struct {
	Name    string
	Percent string
}

// Render produces the HTML report for one run. The display name falls back
// to the symbol when empty.
func (r *Renderer) Render(res *pipeline.Result, name string) ([]byte, error) {
	if name == "" {
		name = res.Symbol
	}

	data := reportData{
		Symbol:      res.Symbol,
		Name:        name,
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt.Format(time.RFC1123),
		TrendOnly:   res.TrendOnly,
		HorizonDays: len(res.Future),

		ActualRows:   res.ActualMonthly,
		ForecastRows: res.ForecastMonthly,
		Chart:        priceChart(res.Merged, res.Future),
	}

	if n := len(res.Merged); n > 0 {
		last := res.Merged[n-1]
		data.LastClose = fmt.Sprintf("%.2f", last.Close)
		data.LastDate = last.Date.Format("2006-01-02")
	}
	if n := len(res.Future); n > 0 {
		data.HorizonEnd = res.Future[n-1].Date.Format("2006-01-02")
	}
	if res.TestScores != nil {
		data.HasScores = true
		data.TestMAPE = fmt.Sprintf("%.2f%%", res.TestScores.MAPE*100)
		data.TestR2 = fmt.Sprintf("%.4f", res.TestScores.R2)
	}
	if res.CV != nil {
		data.CVMean = fmt.Sprintf("%.4f", res.CV.Mean)
	}
	for _, fw := range res.Importance {
		data.Importance = append(data.Importance, importanceRow{
			Name:    fw.Name,
			Percent: fmt.Sprintf("%.1f%%", fw.Weight*100),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, core.WrapError(core.ErrReportFailed,
			fmt.Errorf("executing report template: %w", err))
	}
	return buf.Bytes(), nil
}
