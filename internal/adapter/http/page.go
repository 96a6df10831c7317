package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
)

var funcMap = template.FuncMap{
	"fmtNDVI": func(v *float64) string {
		if v == nil {
			return "No data"
		}
		return fmt.Sprintf("%.3f", *v)
	},
	"fmtDelta": func(d domain.DeltaIndicator) string {
		return fmt.Sprintf("%+.3f", d.Value)
	},
	"deltaClass": func(d domain.DeltaIndicator) string {
		switch d.Direction {
		case domain.DirectionUp:
			return "ok"
		case domain.DirectionDown:
			return "err"
		default:
			return "dim"
		}
	},
}

type chartCard struct {
	Spec domain.ChartSpec
	Src  template.URL
}

type pageData struct {
	Title      string
	Districts  []string
	District   string
	Start      string
	End        string
	Summary    domain.Summary
	MaxDelta   domain.DeltaIndicator
	MinDelta   domain.DeltaIndicator
	HasDeltas  bool
	Charts     []chartCard
	ExportURL  template.URL
	Background bool
	Geocoding  bool
	Info       domain.DatasetLoaded
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	query := sel.query().Encode()

	data := pageData{
		Title:      s.title,
		Districts:  sel.table.Districts(),
		District:   sel.view.Filter.District,
		Start:      sel.view.Filter.Start.Format(dateLayout),
		End:        sel.view.Filter.End.Format(dateLayout),
		Summary:    sel.summary,
		ExportURL:  template.URL("/export.xlsx?" + query), //nolint:gosec // built from url.Values.Encode
		Background: s.background != "",
		Geocoding:  s.geocoder != nil,
	}
	data.MaxDelta, data.MinDelta, data.HasDeltas = sel.summary.Deltas()
	data.Info, _ = s.dataset.Info()
	for _, spec := range domain.BuildCharts(sel.view, sel.table) {
		data.Charts = append(data.Charts, chartCard{
			Spec: spec,
			Src:  template.URL("/charts/" + spec.ID + ".png?" + query), //nolint:gosec // fixed IDs and encoded query
		})
	}

	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error("template error", "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

const tmplBase = `
{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:system-ui,sans-serif;background:#f4f7f2;color:#1f2a1f;font-size:14px;line-height:1.5}
body.bg{background-image:url(/static/background);background-size:cover;background-attachment:fixed}
nav{background:#1b5e20;color:#fff;padding:10px 16px;display:flex;gap:16px;align-items:center}
nav .brand{font-weight:700;font-size:16px}
nav a{color:#c8e6c9;text-decoration:none}
main{padding:16px;max-width:1200px;margin:0 auto}
h2{font-size:12px;font-weight:600;color:#4e5d4e;text-transform:uppercase;letter-spacing:.06em;margin:16px 0 8px}
.cards{display:flex;gap:12px;flex-wrap:wrap;margin-bottom:16px}
.card{background:#fffffff0;border:1px solid #d0dccf;border-radius:6px;padding:12px 16px;min-width:160px}
.card .val{font-size:24px;font-weight:700}
.card .lbl{font-size:11px;color:#4e5d4e;margin-top:2px}
.card .delta{font-size:12px;font-weight:600}
.ok{color:#2e7d32}
.err{color:#c62828}
.dim{color:#6b7a6b}
.filters{display:flex;gap:8px;flex-wrap:wrap;align-items:center;margin-bottom:12px;background:#fffffff0;padding:8px 12px;border-radius:6px;border:1px solid #d0dccf}
.filters label{font-size:11px;color:#4e5d4e}
.filters select,.filters input{border:1px solid #d0dccf;border-radius:4px;padding:3px 6px;font-size:13px}
.filters button{background:#2e7d32;border:none;color:#fff;padding:4px 12px;border-radius:4px;cursor:pointer}
.charts{display:grid;grid-template-columns:repeat(auto-fill,minmax(520px,1fr));gap:12px}
.section{background:#fffffff0;border:1px solid #d0dccf;border-radius:6px;overflow:hidden}
.section-hdr{padding:8px 12px;border-bottom:1px solid #d0dccf;font-size:11px;font-weight:600;color:#4e5d4e;text-transform:uppercase;letter-spacing:.05em}
.section img{width:100%;display:block}
.empty{padding:48px;text-align:center;color:#6b7a6b}
footer{padding:16px;font-size:11px;color:#6b7a6b;text-align:center}
</style>
</head>
<body{{if .Background}} class="bg"{{end}}>
<nav><span class="brand">{{.Title}}</span><a href="/api/view">API</a><a href="/metrics">Metrics</a></nav>
<main>{{template "content" .}}</main>
<footer>{{if .Info.Checksum}}{{.Info.RowsKept}} observations across {{.Info.Districts}} districts{{end}}</footer>
</body>
</html>{{end}}
`

const tmplDashboard = `
{{define "content"}}
<form class="filters" method="get" action="/">
  <label for="district">District</label>
  <select id="district" name="district">
    {{range .Districts}}<option value="{{.}}"{{if eq . $.District}} selected{{end}}>{{.}}</option>{{end}}
  </select>
  <label for="start">From</label>
  <input id="start" type="date" name="start" value="{{.Start}}">
  <label for="end">To</label>
  <input id="end" type="date" name="end" value="{{.End}}">
  <button type="submit">Apply</button>
  <a href="{{.ExportURL}}">Export to Excel</a>
</form>

<h2>{{.District}}: {{.Start}} to {{.End}}</h2>
<div class="cards">
  <div class="card"><div class="val">{{fmtNDVI .Summary.Avg}}</div><div class="lbl">Average NDVI</div></div>
  <div class="card"><div class="val">{{fmtNDVI .Summary.Max}}</div><div class="lbl">Max NDVI</div>
    {{if .HasDeltas}}<div class="delta {{deltaClass .MaxDelta}}">{{fmtDelta .MaxDelta}}</div>{{end}}</div>
  <div class="card"><div class="val">{{fmtNDVI .Summary.Min}}</div><div class="lbl">Min NDVI</div>
    {{if .HasDeltas}}<div class="delta {{deltaClass .MinDelta}}">{{fmtDelta .MinDelta}}</div>{{end}}</div>
  <div class="card"><div class="val">{{.Summary.Count}}</div><div class="lbl">Observations</div></div>
</div>
{{if .Geocoding}}<p class="dim" id="location" data-district="{{.District}}"></p>
<script>
(function(){
  var el=document.getElementById('location');
  fetch('/api/districts/'+encodeURIComponent(el.dataset.district)+'/location')
    .then(function(r){return r.ok?r.json():null})
    .then(function(l){if(l){el.textContent=l.place_name+' ('+l.lat.toFixed(3)+', '+l.lon.toFixed(3)+')'}});
})();
</script>{{end}}

<div class="charts">
{{range .Charts}}
  <div class="section">
    <div class="section-hdr">{{.Spec.Title}}</div>
    {{if .Spec.Empty}}<div class="empty">No data</div>{{else}}<img src="{{.Src}}" alt="{{.Spec.Title}}">{{end}}
  </div>
{{end}}
</div>
{{end}}
`
