package domain

import (
	"math"
	"math/rand/v2"
)

const (
	// tempPerLatDegree is the heuristic cooling rate: ~0.75°C colder per
	// degree of latitude moved away from the equator.
	tempPerLatDegree = 0.75

	// polarLatitude is the absolute latitude above which the flat polar
	// penalty applies.
	polarLatitude = 60.0

	// polarPenalty is the additional cooling applied above polarLatitude.
	polarPenalty = 5.0
)

// Relocate returns a copy of records perturbed to approximate the series at
// targetLat instead of baseLat.
//
// Temperatures shift by -0.75°C per degree of absolute latitude gained, plus
// a seasonal-correlated noise term 0.5*sin(0.1*doy) + U(-0.75, 0.75), minus
// a flat 5°C above 60° absolute latitude. Precipitation is scaled
// independently per record by U(0.8, 1.2). The perturbation is bounded but
// non-deterministic; pass a seeded rng for reproducible output.
func Relocate(records []DailyRecord, baseLat, targetLat float64, rng *rand.Rand) []DailyRecord {
	latDiff := math.Abs(targetLat) - math.Abs(baseLat)
	tempShift := -tempPerLatDegree * latDiff
	polar := math.Abs(targetLat) > polarLatitude

	out := make([]DailyRecord, len(records))
	for i, rec := range records {
		noise := 0.5*math.Sin(0.1*float64(rec.DayOfYear)) + uniform(rng, -0.75, 0.75)
		rec.TempRange += tempShift + noise
		if polar {
			rec.TempRange -= polarPenalty
		}
		rec.Precip *= uniform(rng, 0.8, 1.2)
		out[i] = rec
	}
	return out
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
