package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func obs(district string, date time.Time, ndvi float64) Observation {
	return Observation{District: district, Date: date, NDVI: ndvi}
}

func sampleTable() *Table {
	return NewTable([]Observation{
		obs("A", month(2020, time.January), 0.5),
		obs("A", month(2020, time.February), 0.3),
		obs("A", month(2020, time.March), 0.7),
		obs("B", month(2020, time.January), 0.2),
		obs("a", month(2020, time.January), 0.9),
		obs("A", time.Time{}, 0.1),
	})
}

func TestDerive_ExampleScenario(t *testing.T) {
	table := NewTable([]Observation{
		obs("A", month(2020, time.January), 0.5),
		obs("B", month(2020, time.January), 0.2),
	})

	view, summary := Derive(table, "A", month(2020, time.January), time.Date(2020, time.January, 31, 0, 0, 0, 0, time.UTC))

	require.Equal(t, 1, view.Len())
	require.False(t, summary.NoData())
	assert.InDelta(t, 0.5, *summary.Avg, 1e-12)
	assert.InDelta(t, 0.5, *summary.Max, 1e-12)
	assert.InDelta(t, 0.5, *summary.Min, 1e-12)
}

func TestDerive_FilterCorrectness(t *testing.T) {
	table := sampleTable()
	start, end := month(2020, time.January), month(2020, time.February)

	view, _ := Derive(table, "A", start, end)

	for _, o := range view.Rows {
		assert.Equal(t, "A", o.District)
		assert.False(t, o.Date.Before(start))
		assert.False(t, o.Date.After(end))
	}

	var want []Observation
	table.Each(func(o Observation) {
		if o.District == "A" && o.HasDate() && !o.Date.Before(start) && !o.Date.After(end) {
			want = append(want, o)
		}
	})
	if diff := cmp.Diff(want, view.Rows); diff != "" {
		t.Fatalf("filtered rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDerive_InclusiveBounds(t *testing.T) {
	table := sampleTable()

	view, summary := Derive(table, "A", month(2020, time.February), month(2020, time.February))

	require.Equal(t, 1, view.Len())
	assert.InDelta(t, 0.3, *summary.Avg, 1e-12)
}

func TestDerive_CaseSensitiveDistrict(t *testing.T) {
	table := sampleTable()

	view, _ := Derive(table, "a", month(2020, time.January), month(2020, time.December))

	require.Equal(t, 1, view.Len())
	assert.InDelta(t, 0.9, view.Rows[0].NDVI, 1e-12)
}

func TestDerive_NullDateNeverMatches(t *testing.T) {
	table := sampleTable()

	view, _ := Derive(table, "A", time.Time{}, month(2030, time.January))

	for _, o := range view.Rows {
		assert.True(t, o.HasDate())
	}
	assert.Equal(t, 3, view.Len())
}

func TestDerive_SummaryConsistency(t *testing.T) {
	table := sampleTable()

	_, summary := Derive(table, "A", month(2019, time.January), month(2021, time.January))

	require.False(t, summary.NoData())
	assert.Equal(t, 3, summary.Count)
	assert.LessOrEqual(t, *summary.Min, *summary.Avg)
	assert.LessOrEqual(t, *summary.Avg, *summary.Max)
	assert.InDelta(t, 0.5, *summary.Avg, 1e-12)
	assert.InDelta(t, 0.7, *summary.Max, 1e-12)
	assert.InDelta(t, 0.3, *summary.Min, 1e-12)
}

func TestDerive_RoundsToThreeDecimals(t *testing.T) {
	table := NewTable([]Observation{
		obs("A", month(2020, time.January), 0.1234),
		obs("A", month(2020, time.February), 0.2),
		obs("A", month(2020, time.March), 0.3),
	})

	_, summary := Derive(table, "A", month(2020, time.January), month(2020, time.March))

	assert.InDelta(t, 0.208, *summary.Avg, 1e-12)
	assert.InDelta(t, 0.123, *summary.Min, 1e-12)
}

func TestDerive_EmptySelection(t *testing.T) {
	table := sampleTable()

	tests := []struct {
		name     string
		district string
		start    time.Time
		end      time.Time
	}{
		{"range outside data", "A", month(2030, time.January), month(2030, time.December)},
		{"unknown district", "Z", month(2020, time.January), month(2020, time.December)},
		{"inverted range", "A", month(2020, time.March), month(2020, time.January)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, summary := Derive(table, tt.district, tt.start, tt.end)
			assert.True(t, view.Empty())
			assert.True(t, summary.NoData())
			assert.Nil(t, summary.Avg)
			assert.Nil(t, summary.Max)
			assert.Nil(t, summary.Min)

			_, _, ok := summary.Deltas()
			assert.False(t, ok)
		})
	}
}

func TestDerive_DoesNotMutateTable(t *testing.T) {
	table := sampleTable()
	before := table.Rows()

	view, _ := Derive(table, "A", month(2020, time.January), month(2020, time.December))
	view.Rows[0].NDVI = -0.99

	if diff := cmp.Diff(before, table.Rows()); diff != "" {
		t.Fatalf("table mutated (-before +after):\n%s", diff)
	}
}

func TestTable_OptionalCellsAreIsolated(t *testing.T) {
	rows := []Observation{withLTA(obs("A", month(2020, time.January), 0.5), 0.4)}
	table := NewTable(rows)

	*rows[0].LongTermAverage = 0.1
	*table.Rows()[0].LongTermAverage = 0.2
	view, _ := Derive(table, "A", month(2020, time.January), month(2020, time.January))
	require.Equal(t, 1, view.Len())
	*view.Rows[0].LongTermAverage = 0.3

	got := table.Rows()[0].LongTermAverage
	require.NotNil(t, got)
	assert.InDelta(t, 0.4, *got, 0)
}

func TestDelta(t *testing.T) {
	assert.Equal(t, DeltaIndicator{Value: 0.2, Direction: DirectionUp}, Delta(0.7, 0.5))
	assert.Equal(t, DeltaIndicator{Value: -0.2, Direction: DirectionDown}, Delta(0.3, 0.5))
	assert.Equal(t, DeltaIndicator{Value: 0, Direction: DirectionFlat}, Delta(0.5, 0.5))
}

func TestSummary_Deltas(t *testing.T) {
	_, summary := Derive(sampleTable(), "A", month(2020, time.January), month(2020, time.March))

	maxDelta, minDelta, ok := summary.Deltas()
	require.True(t, ok)
	assert.Equal(t, DirectionUp, maxDelta.Direction)
	assert.InDelta(t, 0.2, maxDelta.Value, 1e-12)
	assert.Equal(t, DirectionDown, minDelta.Direction)
	assert.InDelta(t, -0.2, minDelta.Value, 1e-12)
}

func TestTable_DistrictsSortedAndDistinct(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "a"}, sampleTable().Districts())
}

func TestTable_DateRange(t *testing.T) {
	first, last, ok := sampleTable().DateRange()
	require.True(t, ok)
	assert.Equal(t, month(2020, time.January), first)
	assert.Equal(t, month(2020, time.March), last)

	_, _, ok = NewTable(nil).DateRange()
	assert.False(t, ok)
}

func TestTable_HasDistrict(t *testing.T) {
	table := sampleTable()
	assert.True(t, table.HasDistrict("B"))
	assert.False(t, table.HasDistrict("b"))
}
