// Package domain models daily weather observation data and the pure
// transforms applied to it before modeling.
//
// # Data Source
//
// Observation series originate from NASA POWER daily point exports
// (https://power.larc.nasa.gov/). An export is a single UTF-8 text blob: a
// free-form header region terminated by the sentinel line "-END HEADER-",
// followed by delimited data rows:
//
//	YEAR,DOY,TEMP_RANGE,PRECTOTCORR
//	2019,1,11.54,0.12
//	2019,2,9.87,0.00
//
// Rows may be comma- or tab-delimited, and the column-header line may repeat
// inside the data region when exports are concatenated. How the blob was
// obtained (paste box, file upload, Kafka message) is the adapters' concern;
// this package only ever sees the text.
//
// # Field Conventions
//
//	YEAR         four-digit calendar year
//	DOY          day-of-year, 1-366 (366 only in leap years)
//	TEMP_RANGE   daily temperature value in °C
//	PRECTOTCORR  bias-corrected total precipitation in mm/day
//
// Rows whose numeric fields fail to parse, or parse to non-finite values,
// are dropped rather than reported: POWER exports routinely contain fill
// values and truncated trailing lines, and a partial series is still a
// usable series. An empty result is valid and must be checked by the caller
// (see ErrNoRecords).
//
// # Relocation
//
// Relocate approximates a series at a different latitude with a bounded
// heuristic perturbation. It is deliberately non-physical: the contract is
// plausible, bounded output, not meteorology. Its randomness is injected so
// callers can make runs reproducible.
package domain
