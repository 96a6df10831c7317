package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
	"github.com/couchcryptid/ndvi-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Notifier receives an event after every successful (re)load. Events are
// delivered in load order while the Dataset lock is held, so implementations
// must not call back into the Dataset.
type Notifier interface {
	NotifyDatasetLoaded(ctx context.Context, event domain.DatasetLoaded) error
}

// Dataset memoizes the loaded table for the lifetime of the process and
// reloads it only when the underlying file changes.
type Dataset struct {
	path     string
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	notifier Notifier
	ready    atomic.Bool

	mu    sync.Mutex
	table *domain.Table
	info  domain.DatasetLoaded
	fp    fingerprint
}

// fingerprint is the cheap change check done before re-reading the file.
type fingerprint struct {
	size    int64
	modTime time.Time
}

func (f fingerprint) equal(o fingerprint) bool {
	return f.size == o.size && f.modTime.Equal(o.modTime)
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithClock sets the time source used for LoadedAt.
func WithClock(c clockwork.Clock) Option {
	return func(d *Dataset) { d.clock = c }
}

// WithNotifier registers a subscriber for dataset-loaded events.
func WithNotifier(n Notifier) Option {
	return func(d *Dataset) { d.notifier = n }
}

// NewDataset creates a Dataset for the CSV at path. Nothing is read until the
// first call to Table.
func NewDataset(path string, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Dataset {
	d := &Dataset{
		path:    path,
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CheckReadiness returns nil once a table has been loaded.
func (d *Dataset) CheckReadiness(_ context.Context) error {
	if !d.ready.Load() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

// Info returns metadata about the current table. ok is false before the
// first successful load.
func (d *Dataset) Info() (domain.DatasetLoaded, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info, d.table != nil
}

// Table returns the memoized table, reloading it if the file changed since
// the last load. Once a table has been loaded, a failed reload keeps serving
// the previous table.
func (d *Dataset) Table(ctx context.Context) (*domain.Table, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	table, event, err := d.refresh()
	if err != nil {
		return nil, err
	}
	if event != nil && d.notifier != nil {
		d.notify(ctx, *event)
	}
	return table, nil
}

// refresh must be called with d.mu held. It returns a non-nil event only when
// a new table was installed.
func (d *Dataset) refresh() (*domain.Table, *domain.DatasetLoaded, error) {
	st, err := os.Stat(d.path)
	if err != nil {
		return d.fallback(fmt.Errorf("%w: %w", ErrDatasetUnavailable, err))
	}
	fp := fingerprint{size: st.Size(), modTime: st.ModTime()}
	if d.table != nil && fp.equal(d.fp) {
		return d.table, nil, nil
	}

	start := d.clock.Now()
	data, err := os.ReadFile(d.path)
	if err != nil {
		return d.fallback(fmt.Errorf("%w: %w", ErrDatasetUnavailable, err))
	}

	if d.table != nil && checksum(data) == d.info.Checksum {
		d.fp = fp
		d.metrics.DatasetLoads.WithLabelValues("unchanged").Inc()
		d.logger.Debug("dataset file touched but content unchanged", "path", d.path)
		return d.table, nil, nil
	}

	table, stats, err := LoadBytes(data)
	if err != nil {
		return d.fallback(fmt.Errorf("load %s: %w", d.path, err))
	}
	d.metrics.DatasetLoadDuration.Observe(d.clock.Since(start).Seconds())

	d.table = table
	d.fp = fp
	d.info = d.describe(table, stats)
	d.ready.Store(true)
	d.record(stats)

	d.logger.Info("dataset loaded",
		"path", d.path,
		"rows_read", stats.RowsRead,
		"rows_kept", stats.RowsKept,
		"dropped_missing_ndvi", stats.DroppedMissing,
		"dropped_out_of_range", stats.DroppedOutOfRange,
		"districts", d.info.Districts,
		"checksum", stats.Checksum,
	)

	event := d.info
	return table, &event, nil
}

// fallback keeps serving the last good table after a reload failure.
func (d *Dataset) fallback(err error) (*domain.Table, *domain.DatasetLoaded, error) {
	d.metrics.DatasetLoads.WithLabelValues("failed").Inc()
	if d.table == nil {
		return nil, nil, err
	}
	d.logger.Error("dataset reload failed, serving previous table", "path", d.path, "error", err)
	return d.table, nil, nil
}

func (d *Dataset) describe(table *domain.Table, stats LoadStats) domain.DatasetLoaded {
	nulls := make(map[string]int, len(stats.NullCells))
	for k, v := range stats.NullCells {
		nulls[k] = v
	}
	info := domain.DatasetLoaded{
		Path:              d.path,
		Checksum:          stats.Checksum,
		RowsRead:          stats.RowsRead,
		RowsKept:          stats.RowsKept,
		DroppedMissing:    stats.DroppedMissing,
		DroppedOutOfRange: stats.DroppedOutOfRange,
		NullCells:         nulls,
		Districts:         len(table.Districts()),
		LoadedAt:          d.clock.Now().UTC(),
	}
	if first, last, ok := table.DateRange(); ok {
		info.FirstDate, info.LastDate = &first, &last
	}
	return info
}

func (d *Dataset) record(stats LoadStats) {
	d.metrics.DatasetLoads.WithLabelValues("loaded").Inc()
	d.metrics.DatasetRows.Set(float64(stats.RowsKept))
	d.metrics.RowsDropped.WithLabelValues(domain.DropReasonMissing).Add(float64(stats.DroppedMissing))
	d.metrics.RowsDropped.WithLabelValues(domain.DropReasonOutOfRange).Add(float64(stats.DroppedOutOfRange))
	for col, n := range stats.NullCells {
		d.metrics.NullCells.WithLabelValues(col).Add(float64(n))
	}
}

func (d *Dataset) notify(ctx context.Context, event domain.DatasetLoaded) {
	if err := d.notifier.NotifyDatasetLoaded(ctx, event); err != nil {
		d.metrics.EventsPublished.WithLabelValues("error").Inc()
		d.logger.Warn("publish dataset event failed", "error", err, "checksum", event.Checksum)
		return
	}
	d.metrics.EventsPublished.WithLabelValues("success").Inc()
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
