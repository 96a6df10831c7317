package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
)

var (
	// ErrDatasetUnavailable means the dataset file could not be read. Nothing
	// can be rendered without it.
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	// ErrMissingColumn means the header lacks one of the agreed column names.
	ErrMissingColumn = errors.New("missing required column")
)

// LoadStats summarises one pass over the dataset file.
type LoadStats struct {
	RowsRead          int
	RowsKept          int
	DroppedMissing    int
	DroppedOutOfRange int
	NullCells         map[string]int
	Checksum          string
}

// LoadFile reads and coerces the CSV at path.
func LoadFile(path string) (*domain.Table, LoadStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return LoadBytes(data)
}

// LoadBytes coerces CSV content into a table. The result depends only on the
// bytes, so identical input always yields an equal table.
func LoadBytes(data []byte) (*domain.Table, LoadStats, error) {
	table, stats, err := Parse(bytes.NewReader(data))
	stats.Checksum = checksum(data)
	return table, stats, err
}

// Parse reads CSV rows, coerces each cell, and keeps rows whose NDVI is
// present and within bounds. Malformed cells never fail the load.
func Parse(r io.Reader) (*domain.Table, LoadStats, error) {
	stats := LoadStats{NullCells: make(map[string]int)}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, fmt.Errorf("read header: %w: file is empty", ErrMissingColumn)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	idx, err := indexColumns(header)
	if err != nil {
		return nil, stats, err
	}

	var rows []domain.Observation
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", stats.RowsRead+1, err)
		}
		stats.RowsRead++

		obs, nulls, err := domain.ParseRecord(idx.record(record))
		for _, col := range nulls {
			stats.NullCells[col]++
		}
		if err != nil {
			switch domain.DropReason(err) {
			case domain.DropReasonOutOfRange:
				stats.DroppedOutOfRange++
			default:
				stats.DroppedMissing++
			}
			continue
		}
		rows = append(rows, obs)
	}

	stats.RowsKept = len(rows)
	return domain.NewTable(rows), stats, nil
}

// columnIndex maps each required column to its position in the header.
type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		idx[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range domain.Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func (idx columnIndex) cell(record []string, col string) string {
	i := idx[col]
	if i >= len(record) {
		return ""
	}
	return record[i]
}

func (idx columnIndex) record(record []string) domain.RawRecord {
	return domain.RawRecord{
		Date:            idx.cell(record, domain.ColumnDate),
		District:        idx.cell(record, domain.ColumnDistrict),
		NDVI:            idx.cell(record, domain.ColumnNDVI),
		LongTermAverage: idx.cell(record, domain.ColumnLongTermAverage),
		AnomalyPercent:  idx.cell(record, domain.ColumnAnomalyPercent),
		PixelCount:      idx.cell(record, domain.ColumnPixelCount),
	}
}
