package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jadaunkg/horizon/internal/config"
	"github.com/jadaunkg/horizon/internal/core"
	"github.com/jadaunkg/horizon/internal/pipeline"
	"github.com/jadaunkg/horizon/internal/residual"
	"github.com/jadaunkg/horizon/internal/storage/archive"
	"github.com/jadaunkg/horizon/internal/storage/runstore"
	"go.uber.org/zap"
)

func testServer(t *testing.T) (*Server, *runstore.Store) {
	t.Helper()
	backend, err := archive.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	store := runstore.New(backend)
	s, err := New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, store, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, store
}

func seedRun(t *testing.T, store *runstore.Store, symbol, runID string) {
	t.Helper()
	res := &pipeline.Result{
		Symbol:      symbol,
		RunID:       runID,
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TestScores:  &residual.Metrics{MAPE: 0.02, R2: 0.9},
	}
	if err := store.SaveRun(context.Background(), res); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := store.SaveReport(context.Background(), symbol, runID, []byte("<html>report for "+symbol+"</html>")); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRuns(t *testing.T) {
	s, store := testServer(t)
	seedRun(t, store, "TSLA", "run-1")
	seedRun(t, store, "MSFT", "run-2")

	rec := get(t, s, "/api/runs")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data []runstore.Entry `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Data) != 2 {
		t.Errorf("expected 2 entries, got %d", len(body.Data))
	}

	rec = get(t, s, "/api/runs?symbol=TSLA")
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Symbol != "TSLA" {
		t.Errorf("unexpected filtered entries: %+v", body.Data)
	}
}

func TestRuns_BadLimit(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s, "/api/runs?limit=zero")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), core.ErrConfigInvalid.Code) {
		t.Errorf("expected error code in body: %s", rec.Body.String())
	}
}

func TestLatest(t *testing.T) {
	s, store := testServer(t)
	seedRun(t, store, "TSLA", "run-1")

	rec := get(t, s, "/api/runs/latest?symbol=TSLA")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = get(t, s, "/api/runs/latest?symbol=GOOG")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown symbol, got %d", rec.Code)
	}

	rec = get(t, s, "/api/runs/latest")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without symbol, got %d", rec.Code)
	}
}

func TestReport(t *testing.T) {
	s, store := testServer(t)
	seedRun(t, store, "TSLA", "run-1")

	rec := get(t, s, "/reports/TSLA/run-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "report for TSLA") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type: %s", ct)
	}

	rec = get(t, s, "/reports/TSLA/run-missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing report, got %d", rec.Code)
	}
}

func TestIndexPage(t *testing.T) {
	s, store := testServer(t)
	seedRun(t, store, "TSLA", "run-1")

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "/reports/TSLA/run-1") {
		t.Errorf("expected report link in index: %s", body)
	}
	if !strings.Contains(body, "2.00%") {
		t.Errorf("expected formatted MAPE in index: %s", body)
	}
}
