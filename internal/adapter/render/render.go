// Package render draws domain chart specs as PNG images with go-chart.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default image size in pixels.
const (
	DefaultWidth  = 960
	DefaultHeight = 420
)

const (
	monthLayout = "2006-01"
	padRatio    = 0.05
	barSpacing  = 4
	day         = 24 * time.Hour
)

// Renderer turns chart specs into PNG images of a fixed size.
type Renderer struct {
	width  int
	height int
}

// New creates a Renderer. Non-positive dimensions fall back to the defaults.
func New(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height}
}

// PNG writes spec to w. An empty chart yields domain.ErrNoData and writes
// nothing.
func (r *Renderer) PNG(w io.Writer, spec domain.ChartSpec) error {
	if spec.Empty {
		return domain.ErrNoData
	}
	var err error
	switch {
	case spec.Kind == domain.KindBar:
		err = r.bars(spec).Render(chart.PNG, w)
	case spec.XAxis == domain.AxisTime:
		err = r.timeChart(spec).Render(chart.PNG, w)
	case spec.XAxis == domain.AxisNumber:
		err = r.xyChart(spec).Render(chart.PNG, w)
	default:
		return fmt.Errorf("render %s: unsupported axis %q", spec.ID, spec.XAxis)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return nil
}

func (r *Renderer) background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

func (r *Renderer) timeChart(spec domain.ChartSpec) chart.Chart {
	var (
		series     []chart.Series
		ys         []float64
		first, end time.Time
	)
	for _, s := range spec.Series {
		if s.Len() == 0 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name:    s.Name,
			XValues: s.Times,
			YValues: s.Y,
			Style:   lineStyle(s.Color),
		})
		ys = append(ys, s.Y...)
		for _, t := range s.Times {
			if first.IsZero() || t.Before(first) {
				first = t
			}
			if t.After(end) {
				end = t
			}
		}
	}
	// A single month still needs a non-zero span to draw.
	if !end.After(first) {
		first, end = first.Add(-15*day), end.Add(15*day)
	}

	c := chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: r.background(),
		XAxis: chart.XAxis{
			Name:           spec.XField,
			ValueFormatter: chart.TimeValueFormatterWithFormat(monthLayout),
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(first),
				Max: chart.TimeToFloat64(end),
			},
		},
		YAxis:  chart.YAxis{Name: spec.YLabel, Range: valueRange(ys, false)},
		Series: series,
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return c
}

func (r *Renderer) xyChart(spec domain.ChartSpec) chart.Chart {
	var series []chart.Series
	var xs, ys []float64
	for _, s := range spec.Series {
		if s.Len() == 0 {
			continue
		}
		style := lineStyle(s.Color)
		if s.Kind == domain.KindScatter {
			style = pointStyle(s.Color)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: s.X,
			YValues: s.Y,
			Style:   style,
		})
		xs = append(xs, s.X...)
		ys = append(ys, s.Y...)
	}

	c := chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: r.background(),
		XAxis:      chart.XAxis{Name: spec.XField, Range: valueRange(xs, false)},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: valueRange(ys, false)},
		Series:     series,
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return c
}

func (r *Renderer) bars(spec domain.ChartSpec) chart.BarChart {
	var values []chart.Value
	var ys []float64
	for _, s := range spec.Series {
		color := hexColor(s.Color)
		for i, y := range s.Y {
			values = append(values, chart.Value{
				Label: barLabel(s, i),
				Value: y,
				Style: chart.Style{FillColor: color, StrokeColor: color},
			})
			ys = append(ys, y)
		}
	}

	width := (r.width-64)/max(len(values), 1) - barSpacing
	return chart.BarChart{
		Title:        spec.Title,
		Width:        r.width,
		Height:       r.height,
		Background:   r.background(),
		BarWidth:     max(width, 2),
		BarSpacing:   barSpacing,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis:        chart.YAxis{Name: spec.YLabel, Range: valueRange(ys, true)},
		Bars:         values,
	}
}

func barLabel(s domain.Series, i int) string {
	switch {
	case i < len(s.Labels):
		return s.Labels[i]
	case i < len(s.Times):
		return s.Times[i].Format(monthLayout)
	case i < len(s.X):
		return chart.FloatValueFormatter(s.X[i])
	}
	return ""
}

// valueRange pads the data extent by a few percent. withZero anchors bar
// charts at the baseline.
func valueRange(vs []float64, withZero bool) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo, hi = min(lo, v), max(hi, v)
	}
	if len(vs) == 0 {
		lo, hi = 0, 1
	}
	if withZero {
		lo, hi = min(lo, 0), max(hi, 0)
	}
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(hi), 1)
	}
	pad := span * padRatio
	if withZero && lo == 0 {
		return &chart.ContinuousRange{Min: 0, Max: hi + pad}
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func lineStyle(hex string) chart.Style {
	color := hexColor(hex)
	return chart.Style{
		StrokeColor: color,
		StrokeWidth: 2,
		DotColor:    color,
		DotWidth:    3,
	}
}

// pointStyle renders points only, with no connecting line.
func pointStyle(hex string) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    4,
		DotColor:    hexColor(hex),
	}
}

func hexColor(hex string) drawing.Color {
	if hex == "" {
		return chart.ColorAlternateGray
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
