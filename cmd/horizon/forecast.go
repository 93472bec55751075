package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jadaunkg/horizon/internal/analyst"
	"github.com/jadaunkg/horizon/internal/analyst/factory"
	"github.com/jadaunkg/horizon/internal/collector"
	"github.com/jadaunkg/horizon/internal/collector/yahoo"
	"github.com/jadaunkg/horizon/internal/config"
	"github.com/jadaunkg/horizon/internal/core"
	"github.com/jadaunkg/horizon/internal/logger"
	"github.com/jadaunkg/horizon/internal/metrics"
	"github.com/jadaunkg/horizon/internal/pipeline"
	"github.com/jadaunkg/horizon/internal/report"
	"github.com/jadaunkg/horizon/internal/storage/archive"
	"github.com/jadaunkg/horizon/internal/storage/runstore"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	forecastSymbol string
	forecastFrom   string
	forecastTo     string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Fetch data and run the forecast pipeline",
	Long: `Fetch price history and macro proxies for the configured instruments,
run the hybrid forecast pipeline, and persist artifacts and reports.`,
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&forecastSymbol, "symbol", "", "run only this configured symbol")
	forecastCmd.Flags().StringVar(&forecastFrom, "from", "", "history start date YYYY-MM-DD (default: 10 years back)")
	forecastCmd.Flags().StringVar(&forecastTo, "to", "", "history end date YYYY-MM-DD (default: today)")

	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	from, to, err := historyRange()
	if err != nil {
		return err
	}

	instruments := cfg.Instruments
	if forecastSymbol != "" {
		instruments = nil
		for _, inst := range cfg.Instruments {
			if inst.Symbol == forecastSymbol {
				instruments = []config.InstrumentConfig{inst}
				break
			}
		}
		if len(instruments) == 0 {
			return fmt.Errorf("symbol %s is not configured", forecastSymbol)
		}
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		stop := serveMetrics(cfg.Metrics, reg, log)
		defer stop()
	}

	providers := collector.NewRegistry()
	providers.Register(yahoo.New(cfg.Collector.Timeout))
	provider, err := providers.Get(cfg.Collector.Provider)
	if err != nil {
		return err
	}

	backend, err := archive.Open(cfg.Storage)
	if err != nil {
		return err
	}
	store := runstore.New(backend)

	var renderer *report.Renderer
	if cfg.Report.Enabled {
		if renderer, err = report.NewRenderer(); err != nil {
			return err
		}
	}

	var commentator *analyst.Analyst
	if cfg.Analyst.Enabled {
		p, err := factory.New(cfg.Analyst)
		if err != nil {
			return err
		}
		commentator = analyst.New(p)
	}

	pipe := pipeline.New(cfg, log, reg)
	ctx := cmd.Context()

	var succeeded int
	for _, inst := range instruments {
		if err := forecastOne(ctx, cfg, inst, provider, pipe, store, renderer, commentator, from, to, log); err != nil {
			log.Error("instrument failed",
				zap.String("symbol", inst.Symbol),
				zap.Error(err))
			continue
		}
		succeeded++
	}

	if succeeded == 0 {
		return fmt.Errorf("all %d instrument runs failed", len(instruments))
	}
	log.Info("forecast batch complete",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(instruments)-succeeded))
	return nil
}

func forecastOne(
	ctx context.Context,
	cfg *config.Config,
	inst config.InstrumentConfig,
	provider collector.Collector,
	pipe *pipeline.Pipeline,
	store *runstore.Store,
	renderer *report.Renderer,
	commentator *analyst.Analyst,
	from, to time.Time,
	log *zap.Logger,
) error {
	in, err := collector.Gather(ctx, provider, inst.Symbol, cfg.Data.IndexSymbol, cfg.Data.RateSymbol, from, to)
	if err != nil {
		return err
	}
	if in.Asset.Len() < cfg.Data.MinRawRows {
		return core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("got %d raw rows for %s, need %d", in.Asset.Len(), inst.Symbol, cfg.Data.MinRawRows))
	}

	res, err := pipe.Run(inst, in.Asset, in.Macro)
	if err != nil {
		return err
	}

	if err := store.SaveRun(ctx, res); err != nil {
		return err
	}

	if renderer != nil {
		html, err := renderer.Render(res, inst.Name)
		if err != nil {
			return err
		}
		if err := store.SaveReport(ctx, res.Symbol, res.RunID, html); err != nil {
			return err
		}
		if cfg.Report.OutputDir != "" {
			if err := writeLocalReport(cfg.Report.OutputDir, res, html); err != nil {
				return err
			}
		}
	}

	if commentator != nil {
		// Commentary is best effort; the run's artifacts are already saved
		text, err := commentator.Commentary(ctx, res, inst.Name)
		if err != nil {
			log.Warn("commentary failed", zap.String("symbol", inst.Symbol), zap.Error(err))
		} else if err := store.SaveCommentary(ctx, res.Symbol, res.RunID, text); err != nil {
			log.Warn("saving commentary failed", zap.String("symbol", inst.Symbol), zap.Error(err))
		}
	}

	return nil
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func historyRange() (time.Time, time.Time, error) {
	to := time.Now().UTC()
	if forecastTo != "" {
		var err error
		if to, err = time.Parse("2006-01-02", forecastTo); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date (expected YYYY-MM-DD): %w", err)
		}
	}

	from := to.AddDate(-10, 0, 0)
	if forecastFrom != "" {
		var err error
		if from, err = time.Parse("2006-01-02", forecastFrom); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date (expected YYYY-MM-DD): %w", err)
		}
	}

	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}
	return from, to, nil
}

func serveMetrics(cfg config.MetricsConfig, reg *metrics.Registry, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", zap.Error(err))
		}
	}()
	log.Info("metrics listener started", zap.String("addr", cfg.Addr), zap.String("path", cfg.Path))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}
}

func writeLocalReport(dir string, res *pipeline.Result, html []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	name := fmt.Sprintf("%s-%s.html", res.Symbol, res.GeneratedAt.Format("2006-01-02"))
	return os.WriteFile(filepath.Join(dir, name), html, 0o644)
}
