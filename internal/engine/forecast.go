package engine

import (
	"errors"

	"climatology/internal/domain"
)

// CalendarDays is the number of distinct day-of-year values, leap day
// included. A successful forecast always produces exactly this many entries.
const CalendarDays = 366

// ErrIncompleteClimatology indicates a forecast that produced fewer than 366
// days. It cannot happen through Forecast itself; the pipeline checks for it
// as a fatal invariant before publishing.
var ErrIncompleteClimatology = errors.New("model training produced no usable output")

// PrecipAverage is the empirical precipitation mean for one calendar day.
type PrecipAverage struct {
	Mean    float64
	Samples int
}

// AggregatePrecip averages historical precipitation by day-of-year across
// all years. Days with no samples are absent from the map.
func AggregatePrecip(records []domain.DailyRecord) map[int]PrecipAverage {
	totals := make(map[int]float64)
	counts := make(map[int]int)
	for _, rec := range records {
		totals[rec.DayOfYear] += rec.Precip
		counts[rec.DayOfYear]++
	}

	out := make(map[int]PrecipAverage, len(counts))
	for doy, n := range counts {
		out[doy] = PrecipAverage{Mean: totals[doy] / float64(n), Samples: n}
	}
	return out
}

// Forecast rolls the fitted model generatively across day-of-year 1..366.
//
// Each step predicts the scaled temperature from the current lag buffer,
// then shifts its own prediction into the buffer for the next step, so every
// day past the seed depends on synthetic history rather than observations.
// Predictions are inverse-transformed back to °C; precipitation comes from
// the independent historical averages, with zero for days never observed.
// The result always holds exactly CalendarDays entries keyed 1..366.
func Forecast(w Weights, scaler Scaler, seed LagBuffer, precip map[int]PrecipAverage) map[int]domain.ClimatologyDay {
	clim := make(map[int]domain.ClimatologyDay, CalendarDays)
	lags := seed

	for doy := 1; doy <= CalendarDays; doy++ {
		scaled := w.Predict(FeatureRow(doy, lags))
		lags = lags.Shift(scaled)

		day := domain.ClimatologyDay{
			DayOfYear: doy,
			AvgTemp:   scaler.Inverse(scaled),
		}
		if p, ok := precip[doy]; ok {
			day.AvgPrecip = p.Mean
			day.SampleCount = p.Samples
		}
		clim[doy] = day
	}
	return clim
}

// ForecastWindow walks forward from startDay, wrapping 367 back to 1, and
// collects up to numDays entries in calendar order. Days missing from the
// map are skipped, not substituted, so the result may be shorter than
// numDays. Out-of-range start days are wrapped into 1..366 first.
func ForecastWindow(clim map[int]domain.ClimatologyDay, startDay, numDays int) []domain.ClimatologyDay {
	if numDays <= 0 {
		return nil
	}

	day := ((startDay-1)%CalendarDays + CalendarDays) % CalendarDays
	out := make([]domain.ClimatologyDay, 0, numDays)
	for i := 0; i < numDays; i++ {
		if d, ok := clim[day+1]; ok {
			out = append(out, d)
		}
		day = (day + 1) % CalendarDays
	}
	return out
}
