package domain

import (
	"sort"
	"time"
)

// CSV column names agreed with the upstream data producer.
const (
	ColumnDate            = "Date"
	ColumnDistrict        = "District"
	ColumnNDVI            = "NDVI Value"
	ColumnLongTermAverage = "Long Term Average NDVI"
	ColumnAnomalyPercent  = "NDVI Anomaly in Percentage (%)"
	ColumnPixelCount      = "Number of Pixels"
)

// Columns lists the required header columns in their canonical order.
var Columns = []string{
	ColumnDate,
	ColumnDistrict,
	ColumnNDVI,
	ColumnLongTermAverage,
	ColumnAnomalyPercent,
	ColumnPixelCount,
}

// NDVI bounds. Values outside this closed interval are physically invalid.
const (
	MinNDVI = -1.0
	MaxNDVI = 1.0
)

// RawRecord holds one CSV row as text, keyed by column name.
type RawRecord struct {
	Date            string
	District        string
	NDVI            string
	LongTermAverage string
	AnomalyPercent  string
	PixelCount      string
}

// Observation is one district/month row after type coercion.
// A zero Date and nil pointers are null markers.
type Observation struct {
	District        string
	Date            time.Time
	NDVI            float64
	LongTermAverage *float64
	AnomalyPercent  *float64
	PixelCount      *float64
}

// HasDate reports whether the date cell was parsed successfully.
func (o Observation) HasDate() bool { return !o.Date.IsZero() }

// clone returns o with its optional cells copied, so the result shares no
// memory with o.
func (o Observation) clone() Observation {
	o.LongTermAverage = clonePtr(o.LongTermAverage)
	o.AnomalyPercent = clonePtr(o.AnomalyPercent)
	o.PixelCount = clonePtr(o.PixelCount)
	return o
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Table is the immutable set of valid observations.
type Table struct {
	rows []Observation
}

// NewTable deep-copies rows into a new Table.
func NewTable(rows []Observation) *Table {
	return &Table{rows: cloneRows(rows)}
}

func cloneRows(rows []Observation) []Observation {
	cp := make([]Observation, len(rows))
	for i, o := range rows {
		cp[i] = o.clone()
	}
	return cp
}

// Len returns the number of observations.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a deep copy of all observations in load order.
func (t *Table) Rows() []Observation {
	if t == nil {
		return nil
	}
	return cloneRows(t.rows)
}

// Each calls fn with a copy of every observation in load order.
func (t *Table) Each(fn func(Observation)) {
	if t == nil {
		return
	}
	for _, o := range t.rows {
		fn(o.clone())
	}
}

// Districts returns the distinct district labels in ascending order.
func (t *Table) Districts() []string {
	seen := make(map[string]struct{})
	t.Each(func(o Observation) {
		seen[o.District] = struct{}{}
	})
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// HasDistrict reports whether any observation carries the exact label.
func (t *Table) HasDistrict(district string) bool {
	found := false
	t.Each(func(o Observation) {
		if o.District == district {
			found = true
		}
	})
	return found
}

// DateRange returns the earliest and latest non-null dates. ok is false when
// no observation has a date.
func (t *Table) DateRange() (first, last time.Time, ok bool) {
	t.Each(func(o Observation) {
		if !o.HasDate() {
			return
		}
		if !ok || o.Date.Before(first) {
			first = o.Date
		}
		if !ok || o.Date.After(last) {
			last = o.Date
		}
		ok = true
	})
	return first, last, ok
}
