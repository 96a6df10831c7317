package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const header = "Date,District,NDVI Value,Long Term Average NDVI,NDVI Anomaly in Percentage (%),Number of Pixels\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ndvi.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Passes(t *testing.T) {
	path := writeCSV(t, header+
		"2020-01,Kandy,0.5,0.4,25,100\n"+
		"2020-02,Kandy,0.6,0.4,50,100\n"+
		"2020-01,Galle,0.2,0.3,-33,90\n")

	var out bytes.Buffer
	code := run(&out, path, 0.1)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "Rows:      3 read, 3 kept")
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_ReportsNullsAndGaps(t *testing.T) {
	path := writeCSV(t, header+
		"2020-01,Kandy,0.5,,25,100\n"+
		"2020-04,Kandy,0.6,,50,100\n"+
		"2020-02,Kandy,1.7,0.4,,100\n")

	var out bytes.Buffer
	code := run(&out, path, 0.1)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Dropped:   0 missing NDVI, 1 out of range")
	assert.Contains(t, out.String(), "Long Term Average NDVI: 66.7% null")
	assert.Contains(t, out.String(), "Kandy: missing 2020-02")
	assert.Contains(t, out.String(), "Kandy: missing 2020-03")
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, filepath.Join(t.TempDir(), "absent.csv"), 0.1)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL: dataset unavailable")
}
