package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
	"github.com/jadaunkg/horizon/internal/pipeline"
)

const indexPath = "runs/index.json"

// Entry is one row of the run index
type Entry struct {
	Symbol      string    `json:"symbol"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	TrendOnly   bool      `json:"trend_only"`
	TestMAPE    float64   `json:"test_mape"`
	TestR2      float64   `json:"test_r2"`
}

// ListFilter narrows an index query
type ListFilter struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

func entryFor(res *pipeline.Result) Entry {
	e := Entry{
		Symbol:      res.Symbol,
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
		TrendOnly:   res.TrendOnly,
	}
	if res.TestScores != nil {
		e.TestMAPE = res.TestScores.MAPE
		e.TestR2 = res.TestScores.R2
	}
	return e
}

func (s *Store) appendIndex(ctx context.Context, e Entry) error {
	entries, err := s.readIndex(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, e)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return s.backend.Write(ctx, indexPath, data)
}

func (s *Store) readIndex(ctx context.Context) ([]Entry, error) {
	exists, err := s.backend.Exists(ctx, indexPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	data, err := s.backend.Read(ctx, indexPath)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return entries, nil
}

// ListRuns returns index entries matching the filter, newest first
func (s *Store) ListRuns(ctx context.Context, filter ListFilter) ([]Entry, error) {
	entries, err := s.readIndex(ctx)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if filter.Symbol != "" && e.Symbol != filter.Symbol {
			continue
		}
		if !filter.From.IsZero() && e.GeneratedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.GeneratedAt.After(filter.To) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// LatestRun returns the most recent run for the symbol
func (s *Store) LatestRun(ctx context.Context, symbol string) (*Entry, error) {
	entries, err := s.ListRuns(ctx, ListFilter{Symbol: symbol, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, core.WrapError(core.ErrNoData, errors.New("no runs recorded for "+symbol))
	}
	return &entries[0], nil
}
