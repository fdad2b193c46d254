package http

import (
	"net/http"
	"net/url"
	"strconv"

	"workboard/internal/core"
	"workboard/internal/dashboard"
	applog "workboard/internal/log"
	"workboard/internal/store"
)

type barRow struct {
	Label string
	Value string
	Width int
}

type indexData struct {
	Loading   bool
	Query     string
	Total     string
	Count     int
	Shown     int
	Entries   []core.WorkEntry
	Daily     []barRow
	Monthly   []barRow
	Companies []string
	Statuses  []core.Status
	ExportURL string
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().BodyString("ok").Write(w)
}

// handleReady answers 503 until the initial entries are loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Store().State() != store.StateReady {
		ServiceUnavailableError("loading", 1).Write(w)
		return
	}
	NewResponse().BodyString("ready").Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.templates == nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	q := filterQuery(r)
	sum := s.svc.Summary(ctx)
	entries := s.svc.List(ctx, q)

	data := indexData{
		Loading:   s.svc.Store().State() != store.StateReady,
		Query:     q,
		Total:     core.FormatINR(sum.Total),
		Count:     sum.Count,
		Shown:     len(entries),
		Entries:   entries,
		Daily:     dailyBars(sum.Daily),
		Monthly:   monthlyBars(sum.Monthly),
		Companies: core.Companies,
		Statuses:  core.Statuses(),
		ExportURL: "/export.csv",
	}
	if q != "" {
		data.ExportURL += "?q=" + url.QueryEscape(q)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Dashboard template execution failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender)
	}
}

func dailyBars(days []dashboard.DayCount) []barRow {
	max := 0
	for _, d := range days {
		if d.Count > max {
			max = d.Count
		}
	}
	out := make([]barRow, len(days))
	for i, d := range days {
		out[i] = barRow{Label: d.Label, Value: strconv.Itoa(d.Count), Width: percent(int64(d.Count), int64(max))}
	}
	return out
}

func monthlyBars(months []dashboard.MonthTotal) []barRow {
	var max int64
	for _, m := range months {
		if m.Total.Cents > max {
			max = m.Total.Cents
		}
	}
	out := make([]barRow, len(months))
	for i, m := range months {
		out[i] = barRow{Label: m.Label, Value: core.FormatINR(m.Total), Width: percent(m.Total.Cents, max)}
	}
	return out
}

// percent scales v against max, keeping tiny non-zero bars visible.
func percent(v, max int64) int {
	if max <= 0 || v <= 0 {
		return 0
	}
	width := int((v*100 + max/2) / max)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}
