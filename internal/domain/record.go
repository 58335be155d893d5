package domain

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// headerSentinel marks the end of the free-form header region in a POWER
// export. Everything before it is ignored; everything after is data.
const headerSentinel = "-END HEADER-"

// ErrNoRecords indicates that parsing produced no usable records. ParseRecords
// itself never fails; callers that require data wrap this error.
var ErrNoRecords = errors.New("no valid records in input")

// DailyRecord is one day of observations. Records are immutable once parsed;
// transforms return copies.
type DailyRecord struct {
	Year      int     `json:"year"`
	DayOfYear int     `json:"day_of_year"` // 1-366
	TempRange float64 `json:"temp_range"`  // °C
	Precip    float64 `json:"precip"`      // mm/day, >= 0
}

// ClimatologyDay is one entry of the engine's output: the expected
// temperature and empirical precipitation average for a calendar day.
type ClimatologyDay struct {
	DayOfYear   int     `json:"day_of_year"`
	AvgTemp     float64 `json:"avg_temp"`
	AvgPrecip   float64 `json:"avg_precip"`
	SampleCount int     `json:"sample_count"`
}

// ParseRecords extracts daily records from a raw POWER-format export.
//
// Lines before the "-END HEADER-" sentinel are skipped; if the sentinel never
// appears, the result is empty. After the sentinel, blank lines and repeated
// "YEAR,DOY,..." column headers are skipped, and each remaining line is split
// on commas and tabs. Lines with fewer than four fields or unparseable
// numeric fields are dropped silently. The returned slice is in input order,
// not chronological order.
func ParseRecords(text string) []DailyRecord {
	records := []DailyRecord{}
	inData := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !inData {
			inData = line == headerSentinel
			continue
		}
		if line == "" {
			continue
		}

		fields := splitDelimited(line)
		if len(fields) >= 2 && fields[0] == "YEAR" && fields[1] == "DOY" {
			continue
		}

		rec, ok := parseDataLine(fields)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	return records
}

// splitDelimited splits a data line on commas and tabs, trimming each field.
// Empty fields are kept so that column positions stay stable.
func splitDelimited(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == '\t'
	})
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// parseDataLine converts one split data row into a DailyRecord. Returns
// ok=false for rows that are malformed, non-finite, or out of range.
func parseDataLine(fields []string) (DailyRecord, bool) {
	if len(fields) < 4 {
		return DailyRecord{}, false
	}

	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return DailyRecord{}, false
	}
	doy, err := strconv.Atoi(fields[1])
	if err != nil || doy < 1 || doy > 366 {
		return DailyRecord{}, false
	}
	tempRange, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || !isFinite(tempRange) {
		return DailyRecord{}, false
	}
	precip, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || !isFinite(precip) || precip < 0 {
		return DailyRecord{}, false
	}

	return DailyRecord{
		Year:      year,
		DayOfYear: doy,
		TempRange: tempRange,
		Precip:    precip,
	}, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SortChronological orders records in place by (year, day-of-year).
func SortChronological(records []DailyRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		return records[i].DayOfYear < records[j].DayOfYear
	})
}

// TempRanges copies the temperature column out of a record series.
func TempRanges(records []DailyRecord) []float64 {
	temps := make([]float64, len(records))
	for i, rec := range records {
		temps[i] = rec.TempRange
	}
	return temps
}
