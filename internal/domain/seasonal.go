package domain

import "time"

// MonthlyNDVI is the pooled NDVI mean for one calendar month across all years
// and districts.
type MonthlyNDVI struct {
	Month time.Month `json:"month"`
	Label string     `json:"label"`
	Mean  float64    `json:"mean"`
	Count int        `json:"count"`
}

// SeasonalProfile is the month-of-year aggregation over the whole table.
type SeasonalProfile struct {
	InputRows int           `json:"input_rows"`
	Months    []MonthlyNDVI `json:"months"`
}

// Seasonal pools every observation in the table by calendar month. It ignores
// any district or date filter. Rows with a null date count towards InputRows
// but not towards a month. Months with no rows are omitted.
func Seasonal(t *Table) SeasonalProfile {
	var sums [12]float64
	var counts [12]int
	p := SeasonalProfile{}
	t.Each(func(o Observation) {
		p.InputRows++
		if !o.HasDate() {
			return
		}
		i := int(o.Date.Month()) - 1
		sums[i] += o.NDVI
		counts[i]++
	})
	for i := range 12 {
		if counts[i] == 0 {
			continue
		}
		m := time.Month(i + 1)
		p.Months = append(p.Months, MonthlyNDVI{
			Month: m,
			Label: m.String()[:3],
			Mean:  Round3(sums[i] / float64(counts[i])),
			Count: counts[i],
		})
	}
	return p
}
