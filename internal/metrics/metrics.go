package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// Pipeline metrics
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	stageDuration *prometheus.HistogramVec

	// Model quality metrics
	cvScore     *prometheus.GaugeVec
	testMAPE    *prometheus.GaugeVec
	testR2      *prometheus.GaugeVec
	boostRounds *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "horizon_runs_total",
				Help: "Total number of forecast pipeline runs",
			},
			[]string{"symbol", "status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "horizon_run_duration_seconds",
				Help:    "Full pipeline run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "horizon_stage_duration_seconds",
				Help:    "Per-stage duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		cvScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "horizon_cv_neg_mape",
				Help: "Rolling-origin cross-validation mean score (negative MAPE)",
			},
			[]string{"symbol"},
		),
		testMAPE: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "horizon_test_mape",
				Help: "Hybrid forecast MAPE on the held-out test partition",
			},
			[]string{"symbol"},
		),
		testR2: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "horizon_test_r2",
				Help: "Hybrid forecast coefficient of determination on the test partition",
			},
			[]string{"symbol"},
		),
		boostRounds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "horizon_boost_rounds",
				Help: "Boosting rounds kept after early stopping",
			},
			[]string{"symbol"},
		),
	}

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.stageDuration)
	reg.MustRegister(r.cvScore)
	reg.MustRegister(r.testMAPE)
	reg.MustRegister(r.testR2)
	reg.MustRegister(r.boostRounds)

	return r
}

// RecordRun records a pipeline run completion.
func (r *Registry) RecordRun(symbol, status string, duration float64) {
	r.runsTotal.WithLabelValues(symbol, status).Inc()
	r.runDuration.Observe(duration)
}

// RecordStage records one stage's duration.
func (r *Registry) RecordStage(stage string, duration float64) {
	r.stageDuration.WithLabelValues(stage).Observe(duration)
}

// SetCVScore records the advisory cross-validation score.
func (r *Registry) SetCVScore(symbol string, score float64) {
	r.cvScore.WithLabelValues(symbol).Set(score)
}

// SetTestMetrics records the hybrid model's test-partition quality.
func (r *Registry) SetTestMetrics(symbol string, mape, r2 float64) {
	r.testMAPE.WithLabelValues(symbol).Set(mape)
	r.testR2.WithLabelValues(symbol).Set(r2)
}

// SetBoostRounds records the fitted ensemble size.
func (r *Registry) SetBoostRounds(symbol string, rounds int) {
	r.boostRounds.WithLabelValues(symbol).Set(float64(rounds))
}
