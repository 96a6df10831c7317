package domain

import "time"

// DatasetLoaded describes a successful (re)load of the observation table.
// It is served by the dataset info endpoint and published to subscribers.
type DatasetLoaded struct {
	Path              string         `json:"path"`
	Checksum          string         `json:"checksum"`
	RowsRead          int            `json:"rows_read"`
	RowsKept          int            `json:"rows_kept"`
	DroppedMissing    int            `json:"dropped_missing_ndvi"`
	DroppedOutOfRange int            `json:"dropped_out_of_range"`
	NullCells         map[string]int `json:"null_cells,omitempty"`
	Districts         int            `json:"districts"`
	FirstDate         *time.Time     `json:"first_date,omitempty"`
	LastDate          *time.Time     `json:"last_date,omitempty"`
	LoadedAt          time.Time      `json:"loaded_at"`
}
