package domain

import (
	"errors"
	"math"
	"time"
)

// ErrNoData marks an empty selection. Statistics and charts are undefined for it.
var ErrNoData = errors.New("no data for selection")

// Filter selects one district over an inclusive date range.
type Filter struct {
	District string
	Start    time.Time
	End      time.Time
}

// Matches reports whether an observation satisfies the filter. Rows with a
// null date never match.
func (f Filter) Matches(o Observation) bool {
	if o.District != f.District || !o.HasDate() {
		return false
	}
	return !o.Date.Before(f.Start) && !o.Date.After(f.End)
}

// View is the subsequence of a table matching a Filter, in table order.
type View struct {
	Filter Filter
	Rows   []Observation
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.Rows) }

// Empty reports whether the selection matched nothing.
func (v View) Empty() bool { return len(v.Rows) == 0 }

// Summary holds NDVI statistics for a view, rounded to three decimals.
// All statistic fields are nil when the view is empty.
type Summary struct {
	Count int      `json:"count"`
	Avg   *float64 `json:"avg"`
	Max   *float64 `json:"max"`
	Min   *float64 `json:"min"`
}

// NoData reports whether the summary has no statistics.
func (s Summary) NoData() bool { return s.Count == 0 }

// Derive filters the table and summarises the result. The table is not modified.
func Derive(t *Table, district string, start, end time.Time) (View, Summary) {
	f := Filter{District: district, Start: truncateToDay(start), End: truncateToDay(end)}
	v := View{Filter: f}
	t.Each(func(o Observation) {
		if f.Matches(o) {
			v.Rows = append(v.Rows, o)
		}
	})
	return v, Summarize(v)
}

// Summarize computes avg, max and min NDVI over a view.
func Summarize(v View) Summary {
	s := Summary{Count: len(v.Rows)}
	if s.NoData() {
		return s
	}
	sum := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, o := range v.Rows {
		sum += o.NDVI
		lo = math.Min(lo, o.NDVI)
		hi = math.Max(hi, o.NDVI)
	}
	avg := Round3(sum / float64(len(v.Rows)))
	hi, lo = Round3(hi), Round3(lo)
	s.Avg, s.Max, s.Min = &avg, &hi, &lo
	return s
}

// Round3 rounds to three decimal places, half away from zero.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// Delta directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// DeltaIndicator is the signed difference of a statistic from the average.
type DeltaIndicator struct {
	Value     float64 `json:"value"`
	Direction string  `json:"direction"`
}

// Delta returns value-avg rounded to three decimals with its direction.
func Delta(value, avg float64) DeltaIndicator {
	d := Round3(value - avg)
	switch {
	case d > 0:
		return DeltaIndicator{Value: d, Direction: DirectionUp}
	case d < 0:
		return DeltaIndicator{Value: d, Direction: DirectionDown}
	default:
		return DeltaIndicator{Value: 0, Direction: DirectionFlat}
	}
}

// Deltas returns the max and min deltas for a summary. ok is false for an
// empty summary.
func (s Summary) Deltas() (maxDelta, minDelta DeltaIndicator, ok bool) {
	if s.NoData() {
		return DeltaIndicator{}, DeltaIndicator{}, false
	}
	return Delta(*s.Max, *s.Avg), Delta(*s.Min, *s.Avg), true
}
