package domain

// Trend is an ordinary least-squares line y = Slope*x + Intercept, fitted with
// NDVI as x and the long-term average as y.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Points    int     `json:"points"`
	MinX      float64 `json:"min_x"`
	MaxX      float64 `json:"max_x"`
}

// At evaluates the trend line at x.
func (tr Trend) At(x float64) float64 { return tr.Slope*x + tr.Intercept }

// FitTrend fits long-term average NDVI on NDVI over rows where both are
// present. ok is false with fewer than two points or when every NDVI value is
// identical.
func FitTrend(rows []Observation) (Trend, bool) {
	var xs, ys []float64
	for _, o := range rows {
		if o.LongTermAverage == nil {
			continue
		}
		xs = append(xs, o.NDVI)
		ys = append(ys, *o.LongTermAverage)
	}
	n := float64(len(xs))
	if len(xs) < 2 {
		return Trend{}, false
	}

	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var sxx, sxy float64
	tr := Trend{Points: len(xs), MinX: xs[0], MaxX: xs[0]}
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
		tr.MinX = min(tr.MinX, xs[i])
		tr.MaxX = max(tr.MaxX, xs[i])
	}
	if sxx == 0 {
		return Trend{}, false
	}
	tr.Slope = sxy / sxx
	tr.Intercept = meanY - tr.Slope*meanX
	return tr, true
}
