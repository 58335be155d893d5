package engine

import (
	"errors"
	"fmt"

	"climatology/internal/matrix"
)

// ErrInsufficientData indicates a training set with zero samples: fewer than
// WindowSize+1 records survived parsing. Distinct from the singularity
// fallback, which is a degraded success.
var ErrInsufficientData = errors.New("insufficient training data")

// Weights is the trained coefficient vector, aligned with FeatureRow.
type Weights [FeatureSize]float64

// Predict returns the dot product of the weights with a feature row.
func (w Weights) Predict(features []float64) float64 {
	var sum float64
	for i, f := range features {
		sum += w[i] * f
	}
	return sum
}

// TrainResult carries the fitted weights and whether the degraded fallback
// was used, so downstream consumers can distinguish a real fit from the
// mean-predicting substitute.
type TrainResult struct {
	Weights  Weights
	Samples  int
	Fallback bool
	Reason   string // set when Fallback is true
}

// fallbackWeights predicts the scaled midpoint regardless of input,
// equivalent to "predict the mean" after inverse scaling.
func fallbackWeights() Weights {
	var w Weights
	w[0] = 0.5
	return w
}

// Train solves the normal equation w = (XᵗX)⁻¹Xᵗy.
//
// An empty training set returns ErrInsufficientData. A singular normal
// matrix does not fail the build: the documented fallback weights are
// substituted and the result is flagged. Any other kernel error is a
// programming error and is returned as-is.
func Train(x matrix.Dense, y []float64) (TrainResult, error) {
	if x.Rows() == 0 || len(y) == 0 {
		return TrainResult{}, fmt.Errorf("%w: need more than %d records", ErrInsufficientData, WindowSize)
	}

	xt := matrix.Transpose(x)

	xtx, err := matrix.Mul(xt, x)
	if err != nil {
		return TrainResult{}, fmt.Errorf("normal matrix: %w", err)
	}

	inv, err := matrix.Inverse(xtx)
	if errors.Is(err, matrix.ErrSingular) {
		return TrainResult{
			Weights:  fallbackWeights(),
			Samples:  len(y),
			Fallback: true,
			Reason:   "singular normal matrix, substituting midpoint weights",
		}, nil
	}
	if err != nil {
		return TrainResult{}, fmt.Errorf("invert normal matrix: %w", err)
	}

	xty, err := matrix.MulVec(xt, y)
	if err != nil {
		return TrainResult{}, fmt.Errorf("moment vector: %w", err)
	}

	solved, err := matrix.MulVec(inv, xty)
	if err != nil {
		return TrainResult{}, fmt.Errorf("solve weights: %w", err)
	}

	var w Weights
	copy(w[:], solved)
	return TrainResult{Weights: w, Samples: len(y)}, nil
}
