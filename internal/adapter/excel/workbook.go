// Package excel exports the current dashboard selection as an XLSX workbook.
package excel

import (
	"fmt"
	"time"

	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SheetObservations = "Observations"
	SheetSummary      = "Summary"
	SheetSeasonal     = "Seasonal"
)

const dateLayout = "2006-01-02"

// Report is everything written to one workbook.
type Report struct {
	Title       string
	View        domain.View
	Summary     domain.Summary
	Seasonal    domain.SeasonalProfile
	GeneratedAt time.Time
}

// Workbook renders r as XLSX bytes.
func Workbook(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetDocProps(&excelize.DocProperties{
		Title:   r.Title,
		Subject: "NDVI export",
		Creator: "ndvi-dashboard",
		Description: fmt.Sprintf("%s, %s to %s", r.View.Filter.District,
			r.View.Filter.Start.Format(dateLayout), r.View.Filter.End.Format(dateLayout)),
		Created: r.GeneratedAt.UTC().Format(time.RFC3339),
	})

	if err := f.SetSheetName("Sheet1", SheetObservations); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}
	if err := writeObservations(f, r.View); err != nil {
		return nil, fmt.Errorf("observations sheet: %w", err)
	}
	if err := writeSummary(f, r); err != nil {
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeSeasonal(f, r.Seasonal); err != nil {
		return nil, fmt.Errorf("seasonal sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeObservations(f *excelize.File, v domain.View) error {
	if err := writeRow(f, SheetObservations, 1, toCells(domain.Columns)); err != nil {
		return err
	}
	for i, o := range v.Rows {
		date := ""
		if o.HasDate() {
			date = o.Date.Format(dateLayout)
		}
		row := []any{date, o.District, o.NDVI, o.LongTermAverage, o.AnomalyPercent, o.PixelCount}
		if err := writeRow(f, SheetObservations, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetObservations, "A", "F", 18)
}

func writeSummary(f *excelize.File, r Report) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}
	rows := [][]any{
		{"Title", r.Title},
		{"District", r.View.Filter.District},
		{"Start", r.View.Filter.Start.Format(dateLayout)},
		{"End", r.View.Filter.End.Format(dateLayout)},
		{"Rows", r.Summary.Count},
		{"Average NDVI", r.Summary.Avg},
		{"Max NDVI", r.Summary.Max},
		{"Min NDVI", r.Summary.Min},
	}
	if maxDelta, minDelta, ok := r.Summary.Deltas(); ok {
		rows = append(rows,
			[]any{"Max vs Average", maxDelta.Value},
			[]any{"Min vs Average", minDelta.Value},
		)
	}
	rows = append(rows, []any{"Generated", r.GeneratedAt.UTC().Format(time.RFC3339)})

	for i, row := range rows {
		if err := writeRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "B", 22)
}

func writeSeasonal(f *excelize.File, p domain.SeasonalProfile) error {
	if _, err := f.NewSheet(SheetSeasonal); err != nil {
		return err
	}
	if err := writeRow(f, SheetSeasonal, 1, []any{"Month", "Mean NDVI", "Observations"}); err != nil {
		return err
	}
	for i, m := range p.Months {
		if err := writeRow(f, SheetSeasonal, i+2, []any{m.Label, m.Mean, m.Count}); err != nil {
			return err
		}
	}
	return nil
}

// writeRow writes values left to right starting at column A. Nil pointers
// leave the cell blank.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		if p, ok := v.(*float64); ok {
			if p == nil {
				continue
			}
			v = *p
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
