// Package pipeline orchestrates one instrument's forecast run: align,
// derive features, fit the trend decomposition, correct its residuals, and
// aggregate monthly summaries. Stages run synchronously; each stage fully
// consumes its predecessor's output and hands the next an immutable view.
// The run is all-or-nothing per instrument: on any fatal error no partial
// artifact is returned.
package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jadaunkg/horizon/internal/align"
	"github.com/jadaunkg/horizon/internal/config"
	"github.com/jadaunkg/horizon/internal/core"
	"github.com/jadaunkg/horizon/internal/feature"
	"github.com/jadaunkg/horizon/internal/logger"
	"github.com/jadaunkg/horizon/internal/metrics"
	"github.com/jadaunkg/horizon/internal/monthly"
	"github.com/jadaunkg/horizon/internal/residual"
	"github.com/jadaunkg/horizon/internal/trend"
	"go.uber.org/zap"
)

// FeatureWeight is one entry of the importance ranking
type FeatureWeight struct {
	Name   string
	Weight float64
}

// Result is the complete output of one instrument's run
type Result struct {
	Symbol      string
	RunID       string
	GeneratedAt time.Time

	Merged   []core.MergedRecord
	Features []core.FeatureRecord

	Trend  []core.TrendPoint  // historical fit
	Future []core.TrendPoint  // horizon forecast, hybrid-corrected unless TrendOnly
	Hybrid []core.HybridPoint // test partition

	// TrendOnly marks a run whose Stage B was skipped for lack of
	// training data. Explicit so downstream consumers can distinguish a
	// degraded forecast from a full hybrid one.
	TrendOnly bool

	SplitDate  time.Time
	CV         *residual.CVResult
	TestScores *residual.Metrics
	Importance []FeatureWeight

	ActualMonthly   []core.MonthlyAggregate
	ForecastMonthly []core.MonthlyAggregate
}

// Pipeline runs forecasts for configured instruments
type Pipeline struct {
	cfg *config.Config
	log *zap.Logger
	reg *metrics.Registry
}

// New creates a pipeline. The metrics registry may be nil.
func New(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, log: log, reg: reg}
}

// Run executes the full forecast pipeline for one instrument over the given
// raw input series.
func (p *Pipeline) Run(inst config.InstrumentConfig, asset, macro *align.Series) (*Result, error) {
	runID := uuid.NewString()
	log := logger.ForRun(p.log, runID, inst.Symbol)
	started := time.Now()

	res, err := p.run(inst, asset, macro, runID, log)
	elapsed := time.Since(started).Seconds()
	if p.reg != nil {
		status := "success"
		if err != nil {
			status = "error"
		} else if res.TrendOnly {
			status = "trend_only"
		}
		p.reg.RecordRun(inst.Symbol, status, elapsed)
	}
	if err != nil {
		log.Error("pipeline run failed", zap.Error(err))
		return nil, err
	}
	log.Info("pipeline run complete",
		zap.Float64("seconds", elapsed),
		zap.Bool("trend_only", res.TrendOnly))
	return res, nil
}

func (p *Pipeline) run(inst config.InstrumentConfig, asset, macro *align.Series, runID string, log *zap.Logger) (*Result, error) {
	res := &Result{
		Symbol:      inst.Symbol,
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
	}

	// Stage: align
	stageStart := time.Now()
	merged, err := align.Merge(asset, macro, p.cfg.Data.MinMergedRows)
	if err != nil {
		return nil, err
	}
	if err := feature.CheckQuality(merged, p.cfg.Data.MinMergedRows, p.cfg.Data.MinAvgVolume); err != nil {
		return nil, err
	}
	res.Merged = merged
	p.recordStage("align", stageStart)
	log.Info("series aligned",
		zap.Int("rows", len(merged)),
		zap.Time("start", merged[0].Date),
		zap.Time("end", merged[len(merged)-1].Date))

	// Stage: features
	stageStart = time.Now()
	feats := feature.Derive(merged)
	if len(feats) == 0 {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("got %d merged rows, need more than %d to derive features",
				len(merged), feature.MaxLag))
	}
	res.Features = feats
	p.recordStage("features", stageStart)
	log.Info("features derived", zap.Int("rows", len(feats)))

	// Stage A: trend decomposition
	stageStart = time.Now()
	adj, err := adjustment(inst)
	if err != nil {
		return nil, err
	}
	model, err := trend.Fit(feats, adj, trend.Config{
		CapMultiplier: p.cfg.Forecast.CapMultiplier,
		SeasonalOrder: p.cfg.Forecast.SeasonalOrder,
	})
	if err != nil {
		return nil, err
	}
	res.Trend = model.Historical(feats)
	future := model.Horizon(p.cfg.Forecast.Horizon)
	p.recordStage("trend", stageStart)
	log.Info("trend model fitted",
		zap.Float64("cap", model.Cap()),
		zap.Int("horizon", len(future)))

	// Stage B: residual correction
	stageStart = time.Now()
	if err := p.correct(res, feats, model, future, adj, log); err != nil {
		return nil, err
	}
	p.recordStage("residual", stageStart)

	// Stage: monthly aggregation
	stageStart = time.Now()
	res.ActualMonthly = monthly.Actuals(merged)
	lastDate := merged[len(merged)-1].Date
	res.ForecastMonthly = monthly.Forecast(res.Future, lastDate, res.ActualMonthly)
	p.recordStage("monthly", stageStart)

	return res, nil
}

// correct runs the Stage B split, advisory cross-validation, final fit, and
// hybrid composition. On an InsufficientTrainingData error it either aborts
// the run or, when the caller tolerates partial results, flags the result
// as trend-only.
func (p *Pipeline) correct(res *Result, feats []core.FeatureRecord, model *trend.Model, future []core.TrendPoint, adj *trend.Adjustment, log *zap.Logger) error {
	rows := make([][]float64, len(feats))
	for i, f := range feats {
		rows[i] = f.Vector()
	}
	targets := trend.Residuals(feats, res.Trend, adj)

	splitIdx := residual.SplitIndex(len(feats), p.cfg.Forecast.SplitFraction)
	if err := residual.CheckTrainSize(splitIdx, p.cfg.Forecast.CVFolds); err != nil {
		if !p.cfg.Forecast.AllowTrendOnly {
			return err
		}
		log.Warn("residual model skipped, reporting trend-only forecast", zap.Error(err))
		res.TrendOnly = true
		res.Future = future
		return nil
	}
	res.SplitDate = feats[splitIdx].Date

	trainRows, trainTargets := rows[:splitIdx], targets[:splitIdx]

	// Advisory generalization estimate; logged, never a gate
	cv, err := residual.CrossValidate(trainRows, trainTargets, p.cfg.Forecast.CVFolds, p.boostConfig())
	if err != nil {
		return err
	}
	res.CV = cv
	log.Info("cross-validation",
		zap.Float64("neg_mape_mean", cv.Mean),
		zap.Float64("neg_mape_std", cv.Std))
	if p.reg != nil {
		p.reg.SetCVScore(res.Symbol, cv.Mean)
	}

	booster, err := residual.Train(trainRows, trainTargets, p.boostConfig())
	if err != nil {
		return err
	}
	if p.reg != nil {
		p.reg.SetBoostRounds(res.Symbol, booster.Rounds())
	}

	// Hybrid forecast on the test partition: trend plus predicted residual
	actual := make([]float64, 0, len(feats)-splitIdx)
	predicted := make([]float64, 0, len(feats)-splitIdx)
	res.Hybrid = make([]core.HybridPoint, 0, len(feats)-splitIdx)
	for i := splitIdx; i < len(feats); i++ {
		corr := booster.Predict(rows[i])
		point := core.HybridPoint{
			Date:       feats[i].Date,
			Trend:      res.Trend[i].Value,
			Correction: corr,
			Value:      res.Trend[i].Value + corr,
		}
		res.Hybrid = append(res.Hybrid, point)
		actual = append(actual, trend.AdjustedClose(feats[i], adj))
		predicted = append(predicted, point.Value)
	}

	scores := residual.Evaluate(actual, predicted)
	res.TestScores = &scores
	log.Info("hybrid model performance",
		zap.Float64("mse", scores.MSE),
		zap.Float64("mape", scores.MAPE),
		zap.Float64("r2", scores.R2))
	if p.reg != nil {
		p.reg.SetTestMetrics(res.Symbol, scores.MAPE, scores.R2)
	}

	res.Importance = rankImportance(booster.Importance())
	for _, fw := range res.Importance {
		log.Info("feature importance",
			zap.String("feature", fw.Name),
			zap.Float64("weight", fw.Weight))
	}

	// Future correction reuses the last observed feature vector; future
	// feature values are unobserved
	lastCorr := booster.Predict(rows[len(rows)-1])
	res.Future = make([]core.TrendPoint, len(future))
	for i, pt := range future {
		res.Future[i] = core.TrendPoint{
			Date:  pt.Date,
			Value: clampFloor(pt.Value + lastCorr),
			Lower: clampFloor(pt.Lower + lastCorr),
			Upper: clampFloor(pt.Upper + lastCorr),
		}
	}
	return nil
}

func (p *Pipeline) boostConfig() residual.Config {
	return residual.Config{
		Estimators:         p.cfg.Boost.Estimators,
		LearningRate:       p.cfg.Boost.LearningRate,
		MaxDepth:           p.cfg.Boost.MaxDepth,
		Subsample:          p.cfg.Boost.Subsample,
		ValidationFraction: p.cfg.Boost.ValidationFraction,
		Patience:           p.cfg.Boost.Patience,
		Seed:               p.cfg.Boost.Seed,
	}
}

func (p *Pipeline) recordStage(stage string, started time.Time) {
	if p.reg != nil {
		p.reg.RecordStage(stage, time.Since(started).Seconds())
	}
}

func adjustment(inst config.InstrumentConfig) (*trend.Adjustment, error) {
	if inst.Adjustment == nil {
		return nil, nil
	}
	cutoff, err := inst.Adjustment.CutoffTime()
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("instrument %s adjustment cutoff: %w", inst.Symbol, err))
	}
	return &trend.Adjustment{Cutoff: cutoff, Multiplier: inst.Adjustment.Multiplier}, nil
}

func rankImportance(weights []float64) []FeatureWeight {
	out := make([]FeatureWeight, len(weights))
	for i, w := range weights {
		out[i] = FeatureWeight{Name: core.FeatureNames[i], Weight: w}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

func clampFloor(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
