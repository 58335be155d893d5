package engine

// Scaler is a fitted [0,1] min-max normalization. The only way to obtain one
// is FitScaler, so a Scaler in hand is always valid; there is no unfitted
// state to guard against at runtime.
type Scaler struct {
	min, max float64
}

// FitScaler records the range of values. A degenerate range (all values
// equal, or no values) is widened by 1.0 so that Transform never divides by
// zero.
func FitScaler(values []float64) Scaler {
	if len(values) == 0 {
		return Scaler{min: 0, max: 1}
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		max = min + 1
	}
	return Scaler{min: min, max: max}
}

// Transform maps v linearly onto the fitted range. Values outside the fitted
// range map outside [0,1]; extrapolation is legal.
func (s Scaler) Transform(v float64) float64 {
	return (v - s.min) / (s.max - s.min)
}

// TransformAll maps a whole series, returning a new slice.
func (s Scaler) TransformAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Transform(v)
	}
	return out
}

// Inverse is the exact algebraic inverse of Transform.
func (s Scaler) Inverse(scaled float64) float64 {
	return scaled*(s.max-s.min) + s.min
}
