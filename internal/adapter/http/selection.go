package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
)

var errBadDate = errors.New("invalid date")

const dateLayout = "2006-01-02"

// selection is one request's filtered view of the table.
type selection struct {
	table   *domain.Table
	view    domain.View
	summary domain.Summary
}

// parseFilter reads district, start, and end from the query string. Missing
// values default to the first district and the table's full date range.
func parseFilter(q url.Values, t *domain.Table) (domain.Filter, error) {
	var f domain.Filter

	f.District = q.Get("district")
	if f.District == "" {
		if districts := t.Districts(); len(districts) > 0 {
			f.District = districts[0]
		}
	}

	first, last, _ := t.DateRange()
	var err error
	if f.Start, err = parseBound(q, "start", first); err != nil {
		return domain.Filter{}, err
	}
	if f.End, err = parseBound(q, "end", last); err != nil {
		return domain.Filter{}, err
	}
	return f, nil
}

func parseBound(q url.Values, key string, fallback time.Time) (time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, nil
	}
	d, ok := domain.ParseDate(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s=%q", errBadDate, key, raw)
	}
	return d, nil
}

// selection loads the table and derives the request's view. On failure it
// has already written the error response.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (selection, bool) {
	table, ok := s.table(w, r)
	if !ok {
		return selection{}, false
	}
	f, err := parseFilter(r.URL.Query(), table)
	if err != nil {
		s.metrics.ViewRequests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return selection{}, false
	}

	view, summary := domain.Derive(table, f.District, f.Start, f.End)
	if summary.NoData() {
		s.metrics.ViewRequests.WithLabelValues("empty").Inc()
	} else {
		s.metrics.ViewRequests.WithLabelValues("data").Inc()
	}
	return selection{table: table, view: view, summary: summary}, true
}

func (s *Server) table(w http.ResponseWriter, r *http.Request) (*domain.Table, bool) {
	table, err := s.dataset.Table(r.Context())
	if err != nil {
		s.logger.Error("dataset unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "dataset unavailable")
		return nil, false
	}
	return table, true
}

func (sel selection) query() url.Values {
	return url.Values{
		"district": {sel.view.Filter.District},
		"start":    {sel.view.Filter.Start.Format(dateLayout)},
		"end":      {sel.view.Filter.End.Format(dateLayout)},
	}
}
