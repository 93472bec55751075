package residual

import (
	"fmt"
	"sort"

	"github.com/jadaunkg/horizon/internal/core"
	"gonum.org/v1/gonum/stat"
)

// RobustScaler centers features on the median and scales by the
// interquartile range, so outlier rows cannot dominate the scale.
// Fit only on the training partition.
type RobustScaler struct {
	center []float64
	scale  []float64
}

// FitScaler computes per-feature median and IQR from the rows
func FitScaler(rows [][]float64) (*RobustScaler, error) {
	if len(rows) == 0 {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("got 0 rows, scaler needs at least 1"))
	}

	dim := len(rows[0])
	s := &RobustScaler{
		center: make([]float64, dim),
		scale:  make([]float64, dim),
	}

	col := make([]float64, len(rows))
	for j := 0; j < dim; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		sort.Float64s(col)
		s.center[j] = stat.Quantile(0.5, stat.Empirical, col, nil)
		iqr := stat.Quantile(0.75, stat.Empirical, col, nil) -
			stat.Quantile(0.25, stat.Empirical, col, nil)
		if iqr == 0 {
			iqr = 1
		}
		s.scale[j] = iqr
	}
	return s, nil
}

// Transform scales one row without mutating it
func (s *RobustScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.center[j]) / s.scale[j]
	}
	return out
}

// TransformAll scales a batch of rows
func (s *RobustScaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}
