// Command genmock writes a deterministic mock NDVI CSV for demos and test
// fixtures. Each district gets a seasonal NDVI curve around its own baseline,
// and a controlled share of cells is blanked, garbled, or pushed out of range
// so the loader's coercion paths are exercised.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock_lka_ndvi.csv -months 72 -bad-ratio 0.02
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
	"github.com/couchcryptid/ndvi-dashboard/internal/pipeline"
)

// Administrative districts of Sri Lanka.
var districts = []string{
	"Ampara", "Anuradhapura", "Badulla", "Batticaloa", "Colombo",
	"Galle", "Gampaha", "Hambantota", "Jaffna", "Kalutara",
	"Kandy", "Kegalle", "Kilinochchi", "Kurunegala", "Mannar",
	"Matale", "Matara", "Monaragala", "Mullaitivu", "Nuwara Eliya",
	"Polonnaruwa", "Puttalam", "Ratnapura", "Trincomalee", "Vavuniya",
}

type options struct {
	start     time.Time
	months    int
	seed      uint64
	badRatio  float64
	districts []string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock_lka_ndvi.csv", "output CSV path")
	start := flag.String("start", "2018-01", "first month (YYYY-MM)")
	months := flag.Int("months", 72, "number of months per district")
	seed := flag.Uint64("seed", 42, "random seed")
	badRatio := flag.Float64("bad-ratio", 0.02, "share of rows with a corrupted cell")
	flag.Parse()

	first, err := time.Parse("2006-01", *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	n, err := generate(f, options{start: first, months: *months, seed: *seed, badRatio: *badRatio, districts: districts})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d rows to %s", n, *out)

	// Load the result back through the real pipeline so the summary matches
	// what the dashboard will see.
	_, stats, err := pipeline.LoadFile(*out)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", *out, err)
	}
	log.Printf("kept %d, dropped %d missing NDVI, %d out of range",
		stats.RowsKept, stats.DroppedMissing, stats.DroppedOutOfRange)
	for _, col := range domain.Columns {
		if c := stats.NullCells[col]; c > 0 {
			log.Printf("  null %s: %d", col, c)
		}
	}
	return nil
}

// generate writes the header and len(districts)*months rows. It returns the
// number of data rows written.
func generate(w io.Writer, opts options) (int, error) {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)

	if err := cw.Write(domain.Columns); err != nil {
		return 0, err
	}

	rows := 0
	for di, district := range opts.districts {
		baseline := 0.35 + 0.3*float64(di)/float64(max(len(opts.districts)-1, 1))
		pixels := 800 + rng.IntN(2400)

		for m := range opts.months {
			date := opts.start.AddDate(0, m, 0)
			season := 0.12 * math.Sin(2*math.Pi*float64(date.Month()-1)/12)
			lta := baseline + season
			ndvi := lta + rng.NormFloat64()*0.05
			anomaly := (ndvi - lta) / lta * 100

			record := []string{
				date.Format("2006-01"),
				district,
				formatFloat(ndvi, 4),
				formatFloat(lta, 4),
				formatFloat(anomaly, 2),
				strconv.Itoa(pixels - rng.IntN(40)),
			}
			if rng.Float64() < opts.badRatio {
				corrupt(rng, record)
			}
			if err := cw.Write(record); err != nil {
				return rows, err
			}
			rows++
		}
	}

	cw.Flush()
	return rows, cw.Error()
}

// corrupt damages one cell the way real exports tend to.
func corrupt(rng *rand.Rand, record []string) {
	switch rng.IntN(5) {
	case 0:
		record[2] = ""
	case 1:
		record[2] = "n/a"
	case 2:
		record[2] = formatFloat(1+rng.Float64(), 3)
	case 3:
		record[0] = "not-a-date"
	default:
		record[3+rng.IntN(3)] = ""
	}
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
