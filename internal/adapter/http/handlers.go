package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/couchcryptid/ndvi-dashboard/internal/adapter/excel"
	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type observationJSON struct {
	Date            *string  `json:"date"`
	District        string   `json:"district"`
	NDVI            float64  `json:"ndvi"`
	LongTermAverage *float64 `json:"long_term_average"`
	AnomalyPercent  *float64 `json:"anomaly_percent"`
	PixelCount      *float64 `json:"pixel_count"`
}

type deltasJSON struct {
	Max domain.DeltaIndicator `json:"max"`
	Min domain.DeltaIndicator `json:"min"`
}

type viewJSON struct {
	District string            `json:"district"`
	Start    string            `json:"start"`
	End      string            `json:"end"`
	NoData   bool              `json:"no_data"`
	Summary  domain.Summary    `json:"summary"`
	Deltas   *deltasJSON       `json:"deltas"`
	Rows     []observationJSON `json:"rows"`
}

type locationJSON struct {
	District string `json:"district"`
	domain.GeocodingResult
}

func toObservationJSON(o domain.Observation) observationJSON {
	out := observationJSON{
		District:        o.District,
		NDVI:            o.NDVI,
		LongTermAverage: o.LongTermAverage,
		AnomalyPercent:  o.AnomalyPercent,
		PixelCount:      o.PixelCount,
	}
	if o.HasDate() {
		d := o.Date.Format(dateLayout)
		out.Date = &d
	}
	return out
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	table, ok := s.table(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"districts": table.Districts()})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.table(w, r); !ok {
		return
	}
	info, ok := s.dataset.Info()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "dataset unavailable")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	resp := viewJSON{
		District: sel.view.Filter.District,
		Start:    sel.view.Filter.Start.Format(dateLayout),
		End:      sel.view.Filter.End.Format(dateLayout),
		NoData:   sel.summary.NoData(),
		Summary:  sel.summary,
		Rows:     make([]observationJSON, 0, sel.view.Len()),
	}
	if maxDelta, minDelta, ok := sel.summary.Deltas(); ok {
		resp.Deltas = &deltasJSON{Max: maxDelta, Min: minDelta}
	}
	for _, o := range sel.view.Rows {
		resp.Rows = append(resp.Rows, toObservationJSON(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeasonal(w http.ResponseWriter, r *http.Request) {
	table, ok := s.table(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, domain.Seasonal(table))
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"no_data": sel.summary.NoData(),
		"charts":  domain.BuildCharts(sel.view, sel.table),
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	spec, err := domain.BuildChart(r.PathValue("id"), sel.view, sel.table)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	spec, err := domain.BuildChart(id, sel.view, sel.table)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	start := s.clock.Now()
	var buf bytes.Buffer
	err = s.renderer.PNG(&buf, spec)
	s.metrics.ChartRenderDuration.WithLabelValues(id).Observe(s.clock.Since(start).Seconds())
	switch {
	case errors.Is(err, domain.ErrNoData):
		http.Error(w, "no data", http.StatusNotFound)
		return
	case err != nil:
		s.logger.Error("chart render failed", "chart", id, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	data, err := excel.Workbook(excel.Report{
		Title:       s.title,
		View:        sel.view,
		Summary:     sel.summary,
		Seasonal:    domain.Seasonal(sel.table),
		GeneratedAt: s.clock.Now(),
	})
	if err != nil {
		s.logger.Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	s.metrics.Exports.Inc()

	f := sel.view.Filter
	name := fmt.Sprintf("ndvi_%s_%s_%s.xlsx", fileSafe(f.District), f.Start.Format(dateLayout), f.End.Format(dateLayout))
	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	if s.geocoder == nil {
		writeError(w, http.StatusNotFound, "geocoding disabled")
		return
	}
	table, ok := s.table(w, r)
	if !ok {
		return
	}
	district := r.PathValue("district")
	if !table.HasDistrict(district) {
		writeError(w, http.StatusNotFound, "unknown district")
		return
	}

	result, err := s.geocoder.GeocodeDistrict(r.Context(), district, s.country)
	if err != nil {
		writeError(w, http.StatusBadGateway, "geocoding failed")
		return
	}
	if !result.Found() {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, locationJSON{District: district, GeocodingResult: result})
}

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	if s.background == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.background)
}

// fileSafe keeps letters and digits and maps everything else to '-'.
func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, s)
}
