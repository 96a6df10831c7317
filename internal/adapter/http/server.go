package http

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/ndvi-dashboard/internal/adapter/render"
	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
	"github.com/couchcryptid/ndvi-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Dataset supplies the current table to every request.
type Dataset interface {
	ReadinessChecker
	Table(ctx context.Context) (*domain.Table, error)
	Info() (domain.DatasetLoaded, bool)
}

// Server serves the dashboard page, its JSON API, and the health, readiness,
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dataset    Dataset
	renderer   *render.Renderer
	geocoder   domain.Geocoder
	country    string
	title      string
	background string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
	page       *template.Template
}

// Option configures a Server.
type Option func(*Server)

// WithTitle sets the page heading.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// WithBackground serves the image at path behind the page.
func WithBackground(path string) Option {
	return func(s *Server) { s.background = path }
}

// WithGeocoder enables district location lookups restricted to country.
func WithGeocoder(g domain.Geocoder, country string) Option {
	return func(s *Server) {
		s.geocoder = g
		s.country = country
	}
}

// WithRenderer overrides the PNG chart renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Server) { s.renderer = r }
}

// WithClock sets the time source for export timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// NewServer creates the dashboard HTTP server.
func NewServer(addr string, dataset Dataset, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dataset:  dataset,
		renderer: render.New(render.DefaultWidth, render.DefaultHeight),
		title:    "NDVI Dashboard",
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
		logger:   logger,
		page:     template.Must(template.New("page").Funcs(funcMap).Parse(tmplBase + tmplDashboard)),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/districts", s.handleDistricts)
	mux.HandleFunc("GET /api/districts/{district}/location", s.handleLocation)
	mux.HandleFunc("GET /api/dataset", s.handleDataset)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/seasonal", s.handleSeasonal)
	mux.HandleFunc("GET /api/charts", s.handleCharts)
	mux.HandleFunc("GET /api/charts/{id}", s.handleChart)
	mux.HandleFunc("GET /charts/{file}", s.handleChartPNG)
	mux.HandleFunc("GET /export.xlsx", s.handleExport)
	mux.HandleFunc("GET /static/background", s.handleBackground)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(dataset))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
