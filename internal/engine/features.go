package engine

import (
	"math"

	"climatology/internal/domain"
	"climatology/internal/matrix"
)

const (
	// WindowSize is the autoregressive lag depth: each sample sees the
	// seven preceding scaled temperatures.
	WindowSize = 7

	// FeatureSize is the feature row length: bias, sin, cos, plus the lags.
	FeatureSize = 3 + WindowSize

	// yearLength is the mean tropical year used for the cyclical encoding,
	// so day 366 lands just past a full period instead of wrapping early.
	yearLength = 365.25
)

// LagBuffer holds the WindowSize most recent scaled temperatures, index 0
// most recent. It is a value type: Shift returns a new buffer, which keeps
// the forecast transition function pure.
type LagBuffer [WindowSize]float64

// Shift returns a new buffer with v prepended and the oldest entry dropped.
func (b LagBuffer) Shift(v float64) LagBuffer {
	var out LagBuffer
	out[0] = v
	copy(out[1:], b[:WindowSize-1])
	return out
}

// SeedLags builds the initial forecast buffer from the tail of a scaled
// training series: the last value becomes the most recent lag. The series
// must hold at least WindowSize values; the trainer guarantees that by
// failing earlier on short input.
func SeedLags(scaled []float64) LagBuffer {
	var b LagBuffer
	n := len(scaled)
	for i := 0; i < WindowSize; i++ {
		b[i] = scaled[n-1-i]
	}
	return b
}

// FeatureRow builds the model input for one day: [1, sin θ, cos θ,
// lag1..lag7] with θ = 2π·doy/365.25. The sin/cos pair encodes day-of-year
// without a discontinuity at the year boundary.
func FeatureRow(dayOfYear int, lags LagBuffer) []float64 {
	theta := 2 * math.Pi * float64(dayOfYear) / yearLength

	row := make([]float64, 0, FeatureSize)
	row = append(row, 1, math.Sin(theta), math.Cos(theta))
	row = append(row, lags[:]...)
	return row
}

// BuildTrainingSet pairs every record past the lag window with its target:
// sample i uses record i's day-of-year, the seven preceding scaled values as
// lags, and scaled value i as target. Records must be chronologically sorted
// and scaled must align with them. A series of WindowSize or fewer records
// yields an empty set, which the trainer reports as insufficient data.
func BuildTrainingSet(records []domain.DailyRecord, scaled []float64) (matrix.Dense, []float64) {
	n := len(records)
	if n <= WindowSize {
		return matrix.Dense{}, nil
	}

	x := make(matrix.Dense, 0, n-WindowSize)
	y := make([]float64, 0, n-WindowSize)

	for i := WindowSize; i < n; i++ {
		var lags LagBuffer
		for k := 0; k < WindowSize; k++ {
			lags[k] = scaled[i-1-k]
		}
		x = append(x, FeatureRow(records[i].DayOfYear, lags))
		y = append(y, scaled[i])
	}
	return x, y
}
