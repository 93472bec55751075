// Package trend fits the Stage A decomposition: saturating logistic growth
// bounded by an explicit price cap, yearly seasonality that is multiplicative
// in level, and linear exogenous regressor effects. The series is mapped into
// logit space relative to the cap, solved by least squares, and mapped back,
// so forecasts can never leave the (floor, cap) band.
package trend

import (
	"fmt"
	"math"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	yearDays = 365.25
	// Band width in logit-space standard deviations (~95%)
	bandZ = 1.96
	// Transform guard: closes are clamped this close to the floor/cap
	// before the logit
	transformEps = 1e-6
)

// Config holds Stage A settings
type Config struct {
	CapMultiplier float64
	SeasonalOrder int
}

// Adjustment rescales closes strictly before Cutoff by Multiplier, correcting
// a known structural discontinuity such as a share split. Configured per
// instrument, never inferred from data.
type Adjustment struct {
	Cutoff     time.Time
	Multiplier float64
}

// Model is a fitted Stage A decomposition
type Model struct {
	cap   float64
	coef  *mat.VecDense
	sigma float64

	order  int
	origin time.Time

	// Regressor standardization, fit-time statistics
	regMean []float64
	regStd  []float64
	// Last observed regressor values, reused on the future horizon
	lastRegs []float64

	dates []time.Time
}

// regressors extracts the exogenous regressor vector for one record:
// the two macro fields plus the momentum signal present in the feature set.
func regressors(r core.FeatureRecord) []float64 {
	return []float64{r.EquityIndex, r.InterestRate, r.Momentum14}
}

const numRegressors = 3

// Fit fits the decomposition to the feature table's close series. The
// optional adjustment is applied before the cap is computed so the fitted
// series is continuous across the discontinuity.
func Fit(records []core.FeatureRecord, adj *Adjustment, cfg Config) (*Model, error) {
	n := len(records)
	if n < 2 {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("got %d rows, need at least 2 to fit a trend", n))
	}

	closes := make([]float64, n)
	regs := make([][]float64, n)
	var maxClose float64
	for i, r := range records {
		y := r.Close
		if adj != nil && r.Date.Before(adj.Cutoff) {
			y *= adj.Multiplier
		}
		closes[i] = y
		if y > maxClose {
			maxClose = y
		}
		regs[i] = regressors(r)
	}
	if maxClose <= 0 {
		return nil, core.WrapError(core.ErrFitFailed,
			fmt.Errorf("non-positive close series, max %f", maxClose))
	}

	priceCap := maxClose * cfg.CapMultiplier

	m := &Model{
		cap:     priceCap,
		origin:  records[0].Date,
		regMean: make([]float64, numRegressors),
		regStd:  make([]float64, numRegressors),
		dates:   make([]time.Time, n),
	}
	for i, r := range records {
		m.dates[i] = r.Date
	}

	// Shrink the seasonal order on short series so the system stays
	// over-determined
	m.order = cfg.SeasonalOrder
	if maxOrder := (n - numRegressors - 7) / 2; m.order > maxOrder {
		m.order = maxOrder
	}
	if m.order < 0 {
		m.order = 0
	}

	col := make([]float64, n)
	for j := 0; j < numRegressors; j++ {
		for i := range regs {
			col[i] = regs[i][j]
		}
		m.regMean[j] = stat.Mean(col, nil)
		m.regStd[j] = stat.StdDev(col, nil)
		if m.regStd[j] == 0 || math.IsNaN(m.regStd[j]) {
			m.regStd[j] = 1
		}
	}
	m.lastRegs = regs[n-1]

	cols := m.designWidth()
	x := mat.NewDense(n, cols, nil)
	z := mat.NewVecDense(n, nil)
	for i := range records {
		x.SetRow(i, m.designRow(records[i].Date, regs[i]))
		z.SetVec(i, m.toLogit(closes[i]))
	}

	coef := mat.NewVecDense(cols, nil)
	if err := coef.SolveVec(x, z); err != nil {
		// An ill-conditioned system still yields a usable least-squares
		// solution; only a hard failure aborts the fit
		if _, ok := err.(mat.Condition); !ok {
			return nil, core.WrapError(core.ErrFitFailed,
				fmt.Errorf("least squares: %w", err))
		}
	}
	m.coef = coef

	// Logit-space residual spread drives the uncertainty band
	resid := make([]float64, n)
	var pred mat.VecDense
	pred.MulVec(x, coef)
	for i := 0; i < n; i++ {
		resid[i] = z.AtVec(i) - pred.AtVec(i)
	}
	m.sigma = stat.StdDev(resid, nil)
	if math.IsNaN(m.sigma) {
		m.sigma = 0
	}

	return m, nil
}

// Cap returns the fitted price ceiling
func (m *Model) Cap() float64 {
	return m.cap
}

func (m *Model) designWidth() int {
	return 2 + 2*m.order + numRegressors
}

func (m *Model) designRow(date time.Time, regs []float64) []float64 {
	row := make([]float64, 0, m.designWidth())
	row = append(row, 1, date.Sub(m.origin).Hours()/24/yearDays)

	yday := float64(date.YearDay())
	for k := 1; k <= m.order; k++ {
		angle := 2 * math.Pi * float64(k) * yday / yearDays
		row = append(row, math.Sin(angle), math.Cos(angle))
	}

	for j, v := range regs {
		row = append(row, (v-m.regMean[j])/m.regStd[j])
	}
	return row
}

func (m *Model) toLogit(y float64) float64 {
	lo := m.cap * transformEps
	hi := m.cap * (1 - transformEps)
	if y < lo {
		y = lo
	}
	if y > hi {
		y = hi
	}
	return math.Log(y / (m.cap - y))
}

func (m *Model) fromLogit(z float64) float64 {
	y := m.cap / (1 + math.Exp(-z))
	// Explicit clamp; the inverse transform already bounds the value
	if y < 0 {
		y = 0
	}
	if y > m.cap {
		y = m.cap
	}
	return y
}

func (m *Model) predictAt(date time.Time, regs []float64) core.TrendPoint {
	row := mat.NewVecDense(m.designWidth(), m.designRow(date, regs))
	z := mat.Dot(row, m.coef)
	return core.TrendPoint{
		Date:  date,
		Value: m.fromLogit(z),
		Lower: m.fromLogit(z - bandZ*m.sigma),
		Upper: m.fromLogit(z + bandZ*m.sigma),
	}
}

// Historical returns the fitted forecast for every training date, in order
func (m *Model) Historical(records []core.FeatureRecord) []core.TrendPoint {
	out := make([]core.TrendPoint, len(records))
	for i, r := range records {
		out[i] = m.predictAt(r.Date, regressors(r))
	}
	return out
}

// Horizon forecasts n future daily periods past the last training date.
// Regressors are held constant at their last observed values; macro
// conditions are assumed static over the horizon.
func (m *Model) Horizon(n int) []core.TrendPoint {
	last := m.dates[len(m.dates)-1]
	out := make([]core.TrendPoint, n)
	for i := 0; i < n; i++ {
		out[i] = m.predictAt(last.AddDate(0, 0, i+1), m.lastRegs)
	}
	return out
}

// AdjustedClose returns the record's close in the same price space the
// model was fitted in, applying the adjustment rule when one is configured.
func AdjustedClose(r core.FeatureRecord, adj *Adjustment) float64 {
	if adj != nil && r.Date.Before(adj.Cutoff) {
		return r.Close * adj.Multiplier
	}
	return r.Close
}

// Residuals extracts the Stage B training target: actual close minus the
// Stage A central forecast, per date. The adjustment must match the one the
// model was fitted with so both series live in the same price space.
func Residuals(records []core.FeatureRecord, fitted []core.TrendPoint, adj *Adjustment) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = AdjustedClose(r, adj) - fitted[i].Value
	}
	return out
}
