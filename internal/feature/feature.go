// Package feature derives the model inputs from the merged daily table.
// Every derivation uses current-and-past values only.
package feature

import (
	"fmt"

	"github.com/jadaunkg/horizon/internal/core"
	"github.com/jadaunkg/horizon/internal/indicator"
	"gonum.org/v1/gonum/stat"
)

const (
	momentumWindow = 14
	volShortWindow = 7
	volLongWindow  = 30
	macroMAWindow  = 30

	// MaxLag is the longest hard lag requirement. The first MaxLag records
	// cannot be derived and are dropped, never defaulted; rolling windows
	// expand over available history and force no additional drops.
	MaxLag = momentumWindow
)

// CheckQuality enforces the minimum-row and liquidity gates on a merged
// table before any modeling.
func CheckQuality(records []core.MergedRecord, minRows int, minAvgVolume float64) error {
	if len(records) < minRows {
		return core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("got %d rows, need %d", len(records), minRows))
	}

	volumes := make([]float64, len(records))
	for i, r := range records {
		volumes[i] = r.Volume
	}
	if avg := stat.Mean(volumes, nil); avg < minAvgVolume {
		return core.WrapError(core.ErrLowLiquidity,
			fmt.Errorf("average volume %.0f below threshold %.0f", avg, minAvgVolume))
	}

	return nil
}

// Derive computes the engineered features for each record with enough
// history. Output preserves input chronological order and is exactly
// len(records) - MaxLag rows.
func Derive(records []core.MergedRecord) []core.FeatureRecord {
	n := len(records)
	if n <= MaxLag {
		return nil
	}

	closes := make([]float64, n)
	rates := make([]float64, n)
	indexes := make([]float64, n)
	for i, r := range records {
		closes[i] = r.Close
		rates[i] = r.InterestRate
		indexes[i] = r.EquityIndex
	}

	returns := indicator.Returns(closes)
	volShort := indicator.TrailingStd(returns, volShortWindow)
	volLong := indicator.TrailingStd(returns, volLongWindow)
	momentum := indicator.Momentum(closes, momentumWindow)
	lag7 := indicator.Lag(closes, 7)
	lag14 := indicator.Lag(closes, 14)
	rateMA := indicator.TrailingMean(rates, macroMAWindow)
	indexMA := indicator.TrailingMean(indexes, macroMAWindow)

	out := make([]core.FeatureRecord, 0, n-MaxLag)
	for i := MaxLag; i < n; i++ {
		rec := core.FeatureRecord{
			MergedRecord: records[i],
			Momentum14:   momentum[i],
			// Return at record i is returns[i-1]
			Volatility7:      volShort[i-1],
			Volatility30:     volLong[i-1],
			CloseLag7:        lag7[i],
			CloseLag14:       lag14[i],
			InterestRateMA30: rateMA[i],
			EquityIndexMA30:  indexMA[i],
		}
		if records[i].EquityIndex != 0 {
			rec.IndexRelative = records[i].Close / records[i].EquityIndex
			rec.MarketCapProxy = records[i].Close * records[i].Volume / records[i].EquityIndex
		}
		out = append(out, rec)
	}
	return out
}
