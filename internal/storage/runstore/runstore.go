// Package runstore persists forecast run artifacts and maintains a
// queryable index of completed runs on top of an archive backend.
package runstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
	"github.com/jadaunkg/horizon/internal/pipeline"
	"github.com/jadaunkg/horizon/internal/storage/archive"
)

const dateLayout = "2006-01-02"

// Store writes run artifacts into an archive backend
type Store struct {
	backend archive.Storage
}

// New creates a run store over the given backend
func New(backend archive.Storage) *Store {
	return &Store{backend: backend}
}

func runDir(symbol, runID string) string {
	return path.Join("runs", symbol, runID)
}

// SaveRun persists all artifacts of one completed run: the merged and
// feature tables, the forecast, the test-partition hybrid series, monthly
// aggregates, and a JSON summary. The index entry is appended last so a
// listed run always has its artifacts in place.
func (s *Store) SaveRun(ctx context.Context, res *pipeline.Result) error {
	dir := runDir(res.Symbol, res.RunID)

	artifacts := []struct {
		name string
		data func() ([]byte, error)
	}{
		{"merged.csv", func() ([]byte, error) { return mergedCSV(res.Merged), nil }},
		{"features.csv", func() ([]byte, error) { return featureCSV(res.Features), nil }},
		{"forecast.csv", func() ([]byte, error) { return trendCSV(res.Future), nil }},
		{"hybrid.csv", func() ([]byte, error) { return hybridCSV(res.Hybrid), nil }},
		{"monthly.json", func() ([]byte, error) { return monthlyJSON(res) }},
		{"summary.json", func() ([]byte, error) { return summaryJSON(res) }},
	}

	for _, a := range artifacts {
		data, err := a.data()
		if err != nil {
			return core.WrapError(core.ErrStorageFailed,
				fmt.Errorf("encoding %s: %w", a.name, err))
		}
		if err := s.backend.Write(ctx, path.Join(dir, a.name), data); err != nil {
			return fmt.Errorf("writing %s: %w", a.name, err)
		}
	}

	return s.appendIndex(ctx, entryFor(res))
}

// SaveReport stores a rendered report alongside the run's other artifacts
func (s *Store) SaveReport(ctx context.Context, symbol, runID string, html []byte) error {
	return s.backend.Write(ctx, path.Join(runDir(symbol, runID), "report.html"), html)
}

// SaveCommentary stores generated analyst commentary for a run
func (s *Store) SaveCommentary(ctx context.Context, symbol, runID, text string) error {
	return s.backend.Write(ctx, path.Join(runDir(symbol, runID), "commentary.txt"), []byte(text))
}

// ReadReport retrieves a stored report for a run
func (s *Store) ReadReport(ctx context.Context, symbol, runID string) ([]byte, error) {
	return s.backend.Read(ctx, path.Join(runDir(symbol, runID), "report.html"))
}

func mergedCSV(records []core.MergedRecord) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"date", "open", "high", "low", "close", "volume", "interest_rate", "equity_index"})
	for _, r := range records {
		w.Write([]string{
			r.Date.Format(dateLayout),
			num(r.Open), num(r.High), num(r.Low), num(r.Close),
			num(r.Volume), num(r.InterestRate), num(r.EquityIndex),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func featureCSV(records []core.FeatureRecord) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := append([]string{"date", "close"}, core.FeatureNames...)
	w.Write(header)
	for _, r := range records {
		row := []string{r.Date.Format(dateLayout), num(r.Close)}
		for _, v := range r.Vector() {
			row = append(row, num(v))
		}
		w.Write(row)
	}
	w.Flush()
	return buf.Bytes()
}

func trendCSV(points []core.TrendPoint) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"date", "value", "lower", "upper"})
	for _, p := range points {
		w.Write([]string{p.Date.Format(dateLayout), num(p.Value), num(p.Lower), num(p.Upper)})
	}
	w.Flush()
	return buf.Bytes()
}

func hybridCSV(points []core.HybridPoint) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"date", "trend", "correction", "value"})
	for _, p := range points {
		w.Write([]string{p.Date.Format(dateLayout), num(p.Trend), num(p.Correction), num(p.Value)})
	}
	w.Flush()
	return buf.Bytes()
}

func monthlyJSON(res *pipeline.Result) ([]byte, error) {
	return json.MarshalIndent(struct {
		Actual   []core.MonthlyAggregate `json:"actual"`
		Forecast []core.MonthlyAggregate `json:"forecast"`
	}{res.ActualMonthly, res.ForecastMonthly}, "", "  ")
}

type summary struct {
	Symbol      string                   `json:"symbol"`
	RunID       string                   `json:"run_id"`
	GeneratedAt time.Time                `json:"generated_at"`
	TrendOnly   bool                     `json:"trend_only"`
	SplitDate   string                   `json:"split_date,omitempty"`
	CVMean      *float64                 `json:"cv_mean,omitempty"`
	CVStd       *float64                 `json:"cv_std,omitempty"`
	TestMAPE    *float64                 `json:"test_mape,omitempty"`
	TestR2      *float64                 `json:"test_r2,omitempty"`
	Importance  []pipeline.FeatureWeight `json:"importance,omitempty"`
}

func summaryJSON(res *pipeline.Result) ([]byte, error) {
	s := summary{
		Symbol:      res.Symbol,
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
		TrendOnly:   res.TrendOnly,
		Importance:  res.Importance,
	}
	if !res.SplitDate.IsZero() {
		s.SplitDate = res.SplitDate.Format(dateLayout)
	}
	if res.CV != nil {
		s.CVMean, s.CVStd = &res.CV.Mean, &res.CV.Std
	}
	if res.TestScores != nil {
		s.TestMAPE, s.TestR2 = &res.TestScores.MAPE, &res.TestScores.R2
	}
	return json.MarshalIndent(s, "", "  ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
