package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withLTA(o Observation, lta float64) Observation {
	o.LongTermAverage = &lta
	return o
}

func TestFitTrend_ExactLine(t *testing.T) {
	rows := []Observation{
		withLTA(obs("A", month(2020, time.January), 0.1), 0.3),
		withLTA(obs("A", month(2020, time.February), 0.2), 0.5),
		withLTA(obs("A", month(2020, time.March), 0.4), 0.9),
	}

	tr, ok := FitTrend(rows)

	require.True(t, ok)
	assert.Equal(t, 3, tr.Points)
	assert.InDelta(t, 2.0, tr.Slope, 1e-9)
	assert.InDelta(t, 0.1, tr.Intercept, 1e-9)
	assert.InDelta(t, 0.1, tr.MinX, 1e-12)
	assert.InDelta(t, 0.4, tr.MaxX, 1e-12)
	assert.InDelta(t, 0.7, tr.At(0.3), 1e-9)
}

func TestFitTrend_SkipsMissingLTA(t *testing.T) {
	rows := []Observation{
		withLTA(obs("A", month(2020, time.January), 0.1), 0.1),
		obs("A", month(2020, time.February), 0.9),
		withLTA(obs("A", month(2020, time.March), 0.3), 0.3),
	}

	tr, ok := FitTrend(rows)

	require.True(t, ok)
	assert.Equal(t, 2, tr.Points)
	assert.InDelta(t, 1.0, tr.Slope, 1e-9)
	assert.InDelta(t, 0.0, tr.Intercept, 1e-9)
}

func TestFitTrend_Degenerate(t *testing.T) {
	_, ok := FitTrend(nil)
	assert.False(t, ok)

	_, ok = FitTrend([]Observation{withLTA(obs("A", month(2020, time.January), 0.1), 0.2)})
	assert.False(t, ok, "single point")

	_, ok = FitTrend([]Observation{
		withLTA(obs("A", month(2020, time.January), 0.5), 0.2),
		withLTA(obs("A", month(2020, time.February), 0.5), 0.4),
	})
	assert.False(t, ok, "zero variance in x")
}
