package domain

import (
	"errors"
	"time"
)

// ErrUnknownChart is returned for a chart ID that BuildCharts does not produce.
var ErrUnknownChart = errors.New("unknown chart")

// Chart IDs.
const (
	ChartNDVIOverTime = "ndvi-over-time"
	ChartNDVIvsLTA    = "ndvi-vs-lta"
	ChartAnomaly      = "anomaly"
	ChartPixelCount   = "pixel-count"
	ChartSeasonal     = "seasonal"
	ChartScatter      = "ndvi-lta-scatter"
)

// ChartIDs lists every chart in display order.
var ChartIDs = []string{
	ChartNDVIOverTime,
	ChartNDVIvsLTA,
	ChartAnomaly,
	ChartPixelCount,
	ChartSeasonal,
	ChartScatter,
}

// ChartKind is the primary mark of a chart or series.
type ChartKind string

const (
	KindLine    ChartKind = "line"
	KindBar     ChartKind = "bar"
	KindScatter ChartKind = "scatter"
)

// AxisType describes how X values are carried in a series.
type AxisType string

const (
	AxisTime     AxisType = "time"
	AxisCategory AxisType = "category"
	AxisNumber   AxisType = "number"
)

// Fixed series colours, keyed by series name so the same series keeps its
// colour across charts.
var SeriesColors = map[string]string{
	ColumnNDVI:            "#2e7d32",
	ColumnLongTermAverage: "#ef6c00",
	ColumnAnomalyPercent:  "#1565c0",
	ColumnPixelCount:      "#6a1b9a",
	"Monthly Mean NDVI":   "#00897b",
	"Trend":               "#c62828",
}

// Series is one named set of points. Exactly one of Times, X or Labels is set,
// matching the chart's XAxis.
type Series struct {
	Name   string      `json:"name"`
	Kind   ChartKind   `json:"kind"`
	Color  string      `json:"color"`
	Times  []time.Time `json:"times,omitempty"`
	X      []float64   `json:"x,omitempty"`
	Labels []string    `json:"labels,omitempty"`
	Y      []float64   `json:"y"`
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Y) }

// ChartSpec is a declarative chart handed to a renderer.
type ChartSpec struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	XField string    `json:"x_field"`
	XAxis  AxisType  `json:"x_axis"`
	YLabel string    `json:"y_label"`
	Series []Series  `json:"series"`
	Empty  bool      `json:"empty"`
}

// BuildCharts derives all chart specs. Every chart but the seasonal one uses
// the filtered view; the seasonal chart always uses the whole table.
func BuildCharts(v View, t *Table) []ChartSpec {
	return []ChartSpec{
		ndviOverTime(v),
		ndviVsLTA(v),
		anomalyBars(v),
		pixelCount(v),
		seasonalBars(Seasonal(t)),
		ndviScatter(v),
	}
}

// BuildChart derives a single chart spec by ID.
func BuildChart(id string, v View, t *Table) (ChartSpec, error) {
	switch id {
	case ChartNDVIOverTime:
		return ndviOverTime(v), nil
	case ChartNDVIvsLTA:
		return ndviVsLTA(v), nil
	case ChartAnomaly:
		return anomalyBars(v), nil
	case ChartPixelCount:
		return pixelCount(v), nil
	case ChartSeasonal:
		return seasonalBars(Seasonal(t)), nil
	case ChartScatter:
		return ndviScatter(v), nil
	default:
		return ChartSpec{}, ErrUnknownChart
	}
}

func timeSeries(v View, name string, kind ChartKind, value func(Observation) *float64) Series {
	s := Series{Name: name, Kind: kind, Color: SeriesColors[name]}
	for _, o := range v.Rows {
		y := value(o)
		if y == nil {
			continue
		}
		s.Times = append(s.Times, o.Date)
		s.Y = append(s.Y, *y)
	}
	return s
}

func ndvi(o Observation) *float64            { return &o.NDVI }
func longTermAverage(o Observation) *float64 { return o.LongTermAverage }
func anomaly(o Observation) *float64         { return o.AnomalyPercent }
func pixels(o Observation) *float64          { return o.PixelCount }

func finish(c ChartSpec) ChartSpec {
	c.Empty = true
	for _, s := range c.Series {
		if s.Len() > 0 {
			c.Empty = false
		}
	}
	return c
}

func ndviOverTime(v View) ChartSpec {
	return finish(ChartSpec{
		ID:     ChartNDVIOverTime,
		Title:  "NDVI Over Time",
		Kind:   KindLine,
		XField: ColumnDate,
		XAxis:  AxisTime,
		YLabel: ColumnNDVI,
		Series: []Series{timeSeries(v, ColumnNDVI, KindLine, ndvi)},
	})
}

func ndviVsLTA(v View) ChartSpec {
	return finish(ChartSpec{
		ID:     ChartNDVIvsLTA,
		Title:  "NDVI vs Long Term Average",
		Kind:   KindLine,
		XField: ColumnDate,
		XAxis:  AxisTime,
		YLabel: "NDVI",
		Series: []Series{
			timeSeries(v, ColumnNDVI, KindLine, ndvi),
			timeSeries(v, ColumnLongTermAverage, KindLine, longTermAverage),
		},
	})
}

func anomalyBars(v View) ChartSpec {
	return finish(ChartSpec{
		ID:     ChartAnomaly,
		Title:  "NDVI Anomaly (%)",
		Kind:   KindBar,
		XField: ColumnDate,
		XAxis:  AxisTime,
		YLabel: ColumnAnomalyPercent,
		Series: []Series{timeSeries(v, ColumnAnomalyPercent, KindBar, anomaly)},
	})
}

func pixelCount(v View) ChartSpec {
	return finish(ChartSpec{
		ID:     ChartPixelCount,
		Title:  "Number of Pixels Over Time",
		Kind:   KindLine,
		XField: ColumnDate,
		XAxis:  AxisTime,
		YLabel: ColumnPixelCount,
		Series: []Series{timeSeries(v, ColumnPixelCount, KindLine, pixels)},
	})
}

func seasonalBars(p SeasonalProfile) ChartSpec {
	s := Series{Name: "Monthly Mean NDVI", Kind: KindBar, Color: SeriesColors["Monthly Mean NDVI"]}
	for _, m := range p.Months {
		s.Labels = append(s.Labels, m.Label)
		s.Y = append(s.Y, m.Mean)
	}
	return finish(ChartSpec{
		ID:     ChartSeasonal,
		Title:  "Average NDVI by Month (all districts, all years)",
		Kind:   KindBar,
		XField: "Month",
		XAxis:  AxisCategory,
		YLabel: ColumnNDVI,
		Series: []Series{s},
	})
}

func ndviScatter(v View) ChartSpec {
	points := Series{Name: ColumnLongTermAverage, Kind: KindScatter, Color: SeriesColors[ColumnLongTermAverage]}
	for _, o := range v.Rows {
		if o.LongTermAverage == nil {
			continue
		}
		points.X = append(points.X, o.NDVI)
		points.Y = append(points.Y, *o.LongTermAverage)
	}
	c := ChartSpec{
		ID:     ChartScatter,
		Title:  "NDVI vs Long Term Average (with trend)",
		Kind:   KindScatter,
		XField: ColumnNDVI,
		XAxis:  AxisNumber,
		YLabel: ColumnLongTermAverage,
		Series: []Series{points},
	}
	if tr, ok := FitTrend(v.Rows); ok {
		c.Series = append(c.Series, Series{
			Name:  "Trend",
			Kind:  KindLine,
			Color: SeriesColors["Trend"],
			X:     []float64{tr.MinX, tr.MaxX},
			Y:     []float64{tr.At(tr.MinX), tr.At(tr.MaxX)},
		})
	}
	return finish(c)
}
