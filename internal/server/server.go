// Package server exposes completed forecast runs over HTTP: a JSON API for
// the run index and the stored HTML reports themselves.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/jadaunkg/horizon/internal/config"
	"github.com/jadaunkg/horizon/internal/core"
	"github.com/jadaunkg/horizon/internal/storage/runstore"
	"go.uber.org/zap"
)

// Server serves the run browser
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
	store      *runstore.Store
	index      *template.Template
}

// New creates the run browser server over a run store
func New(cfg config.ServerConfig, store *runstore.Store, log *zap.Logger) (*Server, error) {
	tmpl, err := template.New("index").Funcs(template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
	}).Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log:   log,
		store: store,
		index: tmpl,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/runs/latest", s.handleLatest)
	mux.HandleFunc("GET /reports/{symbol}/{run}", s.handleReport)

	return s, nil
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	s.log.Info("starting run browser", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down run browser")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("invalid limit: %s", v)))
			return
		}
		limit = n
	}

	entries, err := s.store.ListRuns(r.Context(), runstore.ListFilter{
		Symbol: r.URL.Query().Get("symbol"),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, core.WrapError(core.ErrConfigMissing,
			errors.New("symbol query parameter required")))
		return
	}

	entry, err := s.store.LatestRun(r.Context(), symbol)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrNoData) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	symbol, run := r.PathValue("symbol"), r.PathValue("run")

	html, err := s.store.ReadReport(r.Context(), symbol, run)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrStorageFailed) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListRuns(r.Context(), runstore.ListFilter{Limit: 50})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, entries); err != nil {
		s.log.Error("rendering index", zap.Error(err))
	}
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Horizon Runs</title>
  <style>
    body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 32px; color: #222; }
    table { border-collapse: collapse; }
    th, td { border: 1px solid #ddd; padding: 6px 14px; }
    th { background: #f5f5f5; text-align: left; }
  </style>
</head>
<body>
  <h1>Forecast runs</h1>
  {{if not .}}<p>No runs recorded.</p>{{else}}
  <table>
    <tr><th>Symbol</th><th>Generated</th><th>Mode</th><th>Test MAPE</th><th>Report</th></tr>
    {{range .}}
    <tr>
      <td>{{.Symbol}}</td>
      <td>{{.GeneratedAt.Format "2006-01-02 15:04"}}</td>
      <td>{{if .TrendOnly}}trend only{{else}}hybrid{{end}}</td>
      <td>{{if .TrendOnly}}-{{else}}{{pct .TestMAPE}}{{end}}</td>
      <td><a href="/reports/{{.Symbol}}/{{.RunID}}">view</a></td>
    </tr>
    {{end}}
  </table>
  {{end}}
</body>
</html>
`
