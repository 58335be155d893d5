package engine

const (
	// biasBandLow and biasBandHigh bound the suspect range: a raw series
	// whose mean falls strictly inside (-5, 15) is assumed to carry the
	// range-vs-temperature field confusion seen in POWER exports and is
	// shifted up by biasOffset. The thresholds are calibrated against that
	// dataset and are deliberately not extended beyond it.
	biasBandLow  = -5.0
	biasBandHigh = 15.0
	biasOffset   = 20.0
)

// CorrectTempBias applies the flat calibration offset when the arithmetic
// mean of the raw temperatures falls strictly inside the suspect band.
// Returns the (possibly corrected) series as a new slice and whether the
// correction was applied, so the decision is visible to callers and logs.
func CorrectTempBias(values []float64) ([]float64, bool) {
	out := make([]float64, len(values))
	copy(out, values)
	if len(values) == 0 {
		return out, false
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	if mean <= biasBandLow || mean >= biasBandHigh {
		return out, false
	}
	for i := range out {
		out[i] += biasOffset
	}
	return out, true
}
