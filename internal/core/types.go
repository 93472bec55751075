package core

import "time"

// Bar represents one daily OHLCV record for an asset
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IsValid checks if the bar has required fields
func (b Bar) IsValid() bool {
	return !b.Date.IsZero() && b.Close > 0
}

// MacroPoint represents one daily macroeconomic observation
type MacroPoint struct {
	Date         time.Time
	InterestRate float64
	EquityIndex  float64
}

// MergedRecord is one gap-free daily row combining asset and macro fields.
// Produced by the aligner; every field is populated.
type MergedRecord struct {
	Date         time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	InterestRate float64
	EquityIndex  float64
}

// FeatureRecord is a MergedRecord augmented with derived features.
// Rows whose derivation window cannot be computed are dropped upstream.
type FeatureRecord struct {
	MergedRecord

	Momentum14       float64
	Volatility7      float64
	Volatility30     float64
	CloseLag7        float64
	CloseLag14       float64
	IndexRelative    float64
	MarketCapProxy   float64
	InterestRateMA30 float64
	EquityIndexMA30  float64
}

// FeatureNames lists the model feature columns in vector order.
var FeatureNames = []string{
	"index_relative",
	"volatility_7",
	"volatility_30",
	"close_lag_7",
	"close_lag_14",
	"interest_rate_ma30",
	"momentum_14",
	"market_cap_proxy",
}

// Vector returns the feature values in FeatureNames order
func (f FeatureRecord) Vector() []float64 {
	return []float64{
		f.IndexRelative,
		f.Volatility7,
		f.Volatility30,
		f.CloseLag7,
		f.CloseLag14,
		f.InterestRateMA30,
		f.Momentum14,
		f.MarketCapProxy,
	}
}

// TrendPoint is one date of the Stage A forecast with its uncertainty band
type TrendPoint struct {
	Date  time.Time
	Value float64
	Lower float64
	Upper float64
}

// HybridPoint is one date of the combined forecast: trend value plus the
// predicted residual correction
type HybridPoint struct {
	Date       time.Time
	Trend      float64
	Correction float64
	Value      float64
}

// MonthlyAggregate is one calendar month of summary statistics.
// Actual aggregates populate Average only; forecast aggregates carry all three.
type MonthlyAggregate struct {
	Period  string // "2006-01"
	Low     float64
	Average float64
	High    float64
}

// Day normalizes a timestamp to a naive calendar date (UTC midnight)
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
