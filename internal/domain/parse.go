package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Row rejection reasons. Rows failing these checks are dropped from the table.
var (
	ErrMissingNDVI    = errors.New("ndvi value missing or not numeric")
	ErrNDVIOutOfRange = errors.New("ndvi value outside [-1, 1]")
)

// Drop reasons used as metric labels.
const (
	DropReasonMissing    = "missing"
	DropReasonOutOfRange = "out_of_range"
)

// DropReason maps a ParseRecord rejection to its metric label.
func DropReason(err error) string {
	switch {
	case errors.Is(err, ErrNDVIOutOfRange):
		return DropReasonOutOfRange
	default:
		return DropReasonMissing
	}
}

// directLayouts are tried before falling back to the general parser; the
// dataset is monthly so these cover nearly every row.
var directLayouts = []string{"2006-01", "2006-01-02"}

// ParseDate coerces a date cell to a UTC calendar date. ok is false when the
// value cannot be parsed, in which case the cell is treated as null.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range directLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDay(t), true
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return truncateToDay(t), true
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseNumber coerces a numeric cell. Empty, unparsable, NaN and infinite
// values return nil.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseRecord coerces a raw CSV row into an Observation. nullFields lists the
// columns whose cells became null. A non-nil error means the row must be
// dropped; the observation is still returned for diagnostics.
func ParseRecord(rec RawRecord) (obs Observation, nullFields []string, err error) {
	obs.District = rec.District

	if d, ok := ParseDate(rec.Date); ok {
		obs.Date = d
	} else {
		nullFields = append(nullFields, ColumnDate)
	}

	obs.LongTermAverage = ParseNumber(rec.LongTermAverage)
	if obs.LongTermAverage == nil {
		nullFields = append(nullFields, ColumnLongTermAverage)
	}
	obs.AnomalyPercent = ParseNumber(rec.AnomalyPercent)
	if obs.AnomalyPercent == nil {
		nullFields = append(nullFields, ColumnAnomalyPercent)
	}
	obs.PixelCount = ParseNumber(rec.PixelCount)
	if obs.PixelCount == nil {
		nullFields = append(nullFields, ColumnPixelCount)
	}

	ndvi := ParseNumber(rec.NDVI)
	if ndvi == nil {
		nullFields = append(nullFields, ColumnNDVI)
		return obs, nullFields, fmt.Errorf("district %q date %q: %w", rec.District, rec.Date, ErrMissingNDVI)
	}
	obs.NDVI = *ndvi
	if obs.NDVI < MinNDVI || obs.NDVI > MaxNDVI {
		return obs, nullFields, fmt.Errorf("district %q date %q value %g: %w", rec.District, rec.Date, obs.NDVI, ErrNDVIOutOfRange)
	}
	return obs, nullFields, nil
}
