// Package domain models district-level NDVI (Normalized Difference Vegetation
// Index) observations and the derived views the dashboard renders.
//
// # Data Source
//
// Observations come from a pre-processed CSV produced upstream from satellite
// imagery, one row per district per month. The header is a fixed contract with
// the data producer:
//
//	Date, District, NDVI Value, Long Term Average NDVI,
//	NDVI Anomaly in Percentage (%), Number of Pixels
//
// # Coercion Rules
//
// Dates:
//
//	"2020-01" and "2020-01-02" are parsed directly; anything else goes through
//	a general date parser. Values that cannot be parsed become the zero time,
//	which is treated as null everywhere (never matches a date filter, never
//	lands in a month bucket).
//
// Numbers:
//
//	Plain decimal text, surrounding whitespace ignored. Empty, unparsable,
//	NaN and infinite values become nil.
//
// Validity:
//
//	NDVI is bounded to [-1, 1]. Rows whose NDVI is null or outside the bounds
//	are dropped at load time, never clamped. Long-term average, anomaly and
//	pixel count are kept even when null.
//
// Districts:
//
//	Labels are accepted verbatim. Matching is exact and case-sensitive; no
//	trimming or canonicalisation is applied.
//
// # Derived Values
//
// Summary statistics (avg, max, min of NDVI) are rounded to three decimal
// places. An empty selection has no statistics at all; callers present it as
// "no data" rather than a number. The seasonal profile pools every row of the
// table by calendar month and deliberately ignores the district and date
// filters.
package domain
