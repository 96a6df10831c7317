// Command validate runs data-quality checks over an NDVI CSV using the same
// loader as the dashboard. It reports row accounting, bounds, null coverage,
// and per-district date coverage.
//
// Usage:
//
//	go run ./cmd/validate -data data/processed_lka_ndvi_data.csv -max-null-ratio 0.1
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
	"github.com/couchcryptid/ndvi-dashboard/internal/pipeline"
)

const monthLayout = "2006-01"

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "data/processed_lka_ndvi_data.csv", "path to the NDVI CSV")
	maxNullRatio := flag.Float64("max-null-ratio", 0.1, "maximum share of null cells allowed per column")
	flag.Parse()

	os.Exit(run(os.Stdout, *dataPath, *maxNullRatio))
}

func run(w io.Writer, path string, maxNullRatio float64) int {
	fmt.Fprintln(w, "=== NDVI Data Quality Report ===")
	fmt.Fprintln(w)

	table, stats, err := pipeline.LoadFile(path)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}

	fmt.Fprintf(w, "File:      %s\n", path)
	fmt.Fprintf(w, "Checksum:  %s\n", stats.Checksum)
	fmt.Fprintf(w, "Rows:      %d read, %d kept\n", stats.RowsRead, stats.RowsKept)
	fmt.Fprintf(w, "Dropped:   %d missing NDVI, %d out of range\n", stats.DroppedMissing, stats.DroppedOutOfRange)
	if first, last, ok := table.DateRange(); ok {
		fmt.Fprintf(w, "Dates:     %s to %s\n", first.Format(monthLayout), last.Format(monthLayout))
	}
	fmt.Fprintln(w, "Null cells:")
	for _, col := range domain.Columns {
		fmt.Fprintf(w, "  %-34s %d\n", col, stats.NullCells[col])
	}
	fmt.Fprintln(w)

	phases := []*phase{
		checkAccounting(stats),
		checkBounds(table),
		checkNulls(stats, maxNullRatio),
		checkCoverage(table),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Row accounting ──

func checkAccounting(stats pipeline.LoadStats) *phase {
	p := &phase{name: "Phase 1: Row accounting"}
	if got := stats.RowsKept + stats.DroppedMissing + stats.DroppedOutOfRange; got != stats.RowsRead {
		p.errorf("kept+dropped = %d, rows read = %d", got, stats.RowsRead)
	}
	if stats.RowsKept == 0 {
		p.errorf("no valid observations")
	}
	return p
}

// ── Phase 2: NDVI bounds ──

func checkBounds(table *domain.Table) *phase {
	p := &phase{name: "Phase 2: NDVI bounds"}
	table.Each(func(o domain.Observation) {
		if o.NDVI < domain.MinNDVI || o.NDVI > domain.MaxNDVI {
			p.errorf("%s %s: NDVI %g outside [%g, %g]", o.District, o.Date.Format(monthLayout), o.NDVI, domain.MinNDVI, domain.MaxNDVI)
		}
	})
	return p
}

// ── Phase 3: Null coverage ──

func checkNulls(stats pipeline.LoadStats, maxRatio float64) *phase {
	p := &phase{name: "Phase 3: Null coverage"}
	if stats.RowsRead == 0 {
		return p
	}
	for _, col := range domain.Columns {
		ratio := float64(stats.NullCells[col]) / float64(stats.RowsRead)
		if ratio > maxRatio {
			p.errorf("%s: %.1f%% null (limit %.1f%%)", col, ratio*100, maxRatio*100)
		}
	}
	return p
}

// ── Phase 4: District coverage ──

// checkCoverage flags districts with no dated rows and gaps in the monthly
// series, since the time charts would silently interpolate across them.
func checkCoverage(table *domain.Table) *phase {
	p := &phase{name: "Phase 4: District coverage"}

	months := make(map[string]map[time.Time]struct{})
	for _, d := range table.Districts() {
		months[d] = make(map[time.Time]struct{})
	}
	table.Each(func(o domain.Observation) {
		if o.HasDate() {
			months[o.District][time.Date(o.Date.Year(), o.Date.Month(), 1, 0, 0, 0, 0, time.UTC)] = struct{}{}
		}
	})

	for _, d := range table.Districts() {
		seen := months[d]
		if len(seen) == 0 {
			p.errorf("%s: no dated observations", d)
			continue
		}
		sorted := make([]time.Time, 0, len(seen))
		for m := range seen {
			sorted = append(sorted, m)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
		for m := sorted[0]; m.Before(sorted[len(sorted)-1]); m = m.AddDate(0, 1, 0) {
			if _, ok := seen[m]; !ok {
				p.errorf("%s: missing %s", d, m.Format(monthLayout))
			}
		}
	}
	return p
}
