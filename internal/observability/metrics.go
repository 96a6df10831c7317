package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Dataset loading metrics.
	DatasetLoads        *prometheus.CounterVec // labels: outcome={loaded,unchanged,failed}
	DatasetRows         prometheus.Gauge
	RowsDropped         *prometheus.CounterVec // labels: reason={missing,out_of_range}
	NullCells           *prometheus.CounterVec // labels: column
	DatasetLoadDuration prometheus.Histogram

	// View and rendering metrics.
	ViewRequests        *prometheus.CounterVec   // labels: outcome={data,empty,bad_request}
	ChartRenderDuration *prometheus.HistogramVec // labels: chart
	Exports             prometheus.Counter

	// Event publishing.
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndvi_dashboard",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ndvi_dashboard",
			Name:      "dataset_rows",
			Help:      "Number of valid observations in the loaded table.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndvi_dashboard",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped at load time by reason.",
		}, []string{"reason"}),
		NullCells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndvi_dashboard",
			Name:      "null_cells_total",
			Help:      "Cells coerced to null at load time by column.",
		}, []string{"column"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ndvi_dashboard",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of reading and coercing the dataset file.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		ViewRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndvi_dashboard",
			Name:      "view_requests_total",
			Help:      "View derivations by outcome.",
		}, []string{"outcome"}),
		ChartRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ndvi_dashboard",
			Name:      "chart_render_duration_seconds",
			Help:      "PNG chart render duration by chart.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"chart"}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ndvi_dashboard",
			Name:      "exports_total",
			Help:      "Spreadsheet exports served.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndvi_dashboard",
			Name:      "dataset_events_published_total",
			Help:      "Dataset-loaded events published by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndvi_dashboard",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndvi_dashboard",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ndvi_dashboard",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ndvi_dashboard",
			Name:      "geocode_enabled",
			Help:      "1 when district geocoding is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetRows,
		m.RowsDropped,
		m.NullCells,
		m.DatasetLoadDuration,
		m.ViewRequests,
		m.ChartRenderDuration,
		m.Exports,
		m.EventsPublished,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetLoads:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ndvi_dashboard", Name: "dataset_loads_total"}, []string{"outcome"}),
		DatasetRows:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ndvi_dashboard", Name: "dataset_rows"}),
		RowsDropped:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ndvi_dashboard", Name: "rows_dropped_total"}, []string{"reason"}),
		NullCells:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ndvi_dashboard", Name: "null_cells_total"}, []string{"column"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ndvi_dashboard", Name: "dataset_load_duration_seconds"}),
		ViewRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ndvi_dashboard", Name: "view_requests_total"}, []string{"outcome"}),
		ChartRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "ndvi_dashboard", Name: "chart_render_duration_seconds"}, []string{"chart"}),
		Exports:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ndvi_dashboard", Name: "exports_total"}),
		EventsPublished:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ndvi_dashboard", Name: "dataset_events_published_total"}, []string{"outcome"}),
		GeocodeRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ndvi_dashboard", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ndvi_dashboard", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ndvi_dashboard", Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ndvi_dashboard", Name: "geocode_enabled"}),
	}
}
