package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"salesdash/internal/amqp"
	"salesdash/internal/analytics"
	"salesdash/internal/core"
	"salesdash/internal/export"
	"salesdash/internal/log"
	"salesdash/internal/report"
)

var errNoStore = errors.New("records not loaded")

// DashboardResponse is the body of the dashboard and session endpoints.
type DashboardResponse struct {
	Filters   core.FilterSpec     `json:"filters"`
	Version   *uint64             `json:"version,omitempty"`
	Dashboard analytics.Dashboard `json:"dashboard"`
	Summary   report.Summary      `json:"summary"`
	KPIs      []report.KPI        `json:"kpis"`
	Shares    []report.Share      `json:"categoryShares"`
	Cached    bool                `json:"cached"`
}

// EnqueueRequest is the body of POST /api/exports.
type EnqueueRequest struct {
	Format  string           `json:"format"`
	Filters *core.FilterSpec `json:"filters,omitempty"`
}

// EnqueueResponse acknowledges a queued export job.
type EnqueueResponse struct {
	JobID       string        `json:"jobId"`
	Format      export.Format `json:"format"`
	Status      string        `json:"status"`
	RequestedAt time.Time     `json:"requestedAt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady is 200 once a store is installed, 503 before.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if store := s.Store(); store != nil {
		checks["store"] = map[string]any{
			"status":    "ok",
			"records":   store.Len(),
			"loaded_at": store.LoadedAt().UTC().Format(time.RFC3339),
		}
	} else {
		checks["store"] = map[string]any{"status": "not_loaded"}
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	if s.dashCache != nil {
		checks["cache"] = s.dashCache.Stats()
	} else {
		checks["cache"] = "disabled"
	}
	if s.publisher != nil {
		checks["export_queue"] = "configured"
	} else {
		checks["export_queue"] = "not_configured"
	}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics exposes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()
	limitMetrics := s.rateLimiter.GetMetrics()
	secMetrics := s.detector.GetMetrics()

	var buf bytes.Buffer
	metric := func(name, help, kind string, v int64) {
		fmt.Fprintf(&buf, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", name, help, name, kind, name, v)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "Average response time", "gauge", traceMetrics.AverageResponseTime)
	metric("rate_limit_rejected_total", "Requests rejected by the rate limiter", "counter", limitMetrics.Rejected)
	metric("rate_limit_active_clients", "Clients tracked by the rate limiter", "gauge", limitMetrics.ClientCount)
	metric("security_suspicious_requests_total", "Requests matching a probe pattern", "counter", secMetrics.SuspiciousRequests)
	if s.dashCache != nil {
		st := s.dashCache.Stats()
		metric("dashboard_cache_hits_total", "Dashboard cache hits", "counter", st.Hits)
		metric("dashboard_cache_misses_total", "Dashboard cache misses", "counter", st.Misses)
		metric("dashboard_cache_entries", "Dashboard cache entries", "gauge", int64(st.Size))
	}
	if store := s.Store(); store != nil {
		metric("sales_records_loaded", "Records in the served store", "gauge", int64(store.Len()))
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	spec, err := ParseFilterSpec(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	resp, err := s.dashboardFor(r, spec)
	if err != nil {
		writeError(w, r, log.OpAggreg, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	store := s.Store()
	if store == nil {
		ServiceUnavailableError(errNoStore.Error()).Write(w)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Options(store.All()))
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	if r.Method == http.MethodGet {
		spec, version := s.session.Current()
		s.writeSessionView(w, r, spec, version)
		return
	}

	var body core.FilterSpec
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	spec, err := normalizeSpec(body)
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}
	spec, version, err := s.session.Replace(spec)
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Filter state replaced",
		log.FieldComponent, log.ComponentSession,
		log.FieldFilterKey, spec.DataKey(),
		log.FieldActiveFilters, core.ActiveFilterCount(spec))
	s.writeSessionView(w, r, spec, version)
}

func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	var action core.Action
	if err := decodeJSON(r, &action); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	spec, version, err := s.session.Apply(action)
	if err != nil {
		writeError(w, r, log.OpApply, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Filter action applied",
		log.FieldComponent, log.ComponentSession,
		log.FieldAction, string(action.Type),
		log.FieldFilterKey, spec.DataKey(),
		log.FieldActiveFilters, core.ActiveFilterCount(spec))
	s.writeSessionView(w, r, spec, version)
}

func (s *Server) writeSessionView(w http.ResponseWriter, r *http.Request, spec core.FilterSpec, version uint64) {
	resp, err := s.dashboardFor(r, spec)
	if err != nil {
		writeError(w, r, log.OpAggreg, err)
		return
	}
	resp.Version = &version
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) dashboardFor(r *http.Request, spec core.FilterSpec) (*DashboardResponse, error) {
	store := s.Store()
	if store == nil {
		return nil, errNoStore
	}

	var (
		view   analytics.Dashboard
		cached bool
	)
	if s.dashCache != nil {
		view, cached = s.dashCache.Get(store.All(), store.LoadedAt(), spec)
	} else {
		view = analytics.BuildDashboard(store.All(), spec)
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogDashboard(r.Context(), spec.DataKey(), view.ActiveFilters, view.RecordCount, view.FilteredCount, cached)

	return &DashboardResponse{
		Filters:   spec,
		Dashboard: view,
		Summary:   report.Summarize(view.Metrics),
		KPIs:      report.KPIs(view.Metrics),
		Shares:    report.Shares(view.Categories),
		Cached:    cached,
	}, nil
}

// handleExport streams the filtered rows as a file download. The file is
// rendered into memory first so a failure still yields a JSON error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	spec, err := ParseFilterSpec(q)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	store := s.Store()
	if store == nil {
		ServiceUnavailableError(errNoStore.Error()).Write(w)
		return
	}

	exporter, err := export.New(format)
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	now := s.now()
	data := export.Build(store.All(), spec, now)

	var buf bytes.Buffer
	if err := exporter.Export(data, &buf); err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	filename := export.Filename(format, now)
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogExportWritten(r.Context(), "", format.String(), filename, len(data.Records))
}

func (s *Server) handleEnqueueExport(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	if s.publisher == nil {
		ServiceUnavailableError("export queue not configured").Write(w)
		return
	}

	var body EnqueueRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	format, err := export.ParseFormat(body.Format)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	spec := core.DefaultFilterSpec()
	if body.Filters != nil {
		spec, err = normalizeSpec(*body.Filters)
		if err != nil {
			writeError(w, r, log.OpValidate, err)
			return
		}
	}

	req := amqp.NewExportRequest(format, spec, "api")
	if err := s.publisher.PublishExportRequest(r.Context(), req); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Failed to enqueue export", err, log.ComponentAMQP, log.OpEnqueue,
			log.NewFields().WithExport(req.JobID, format.String(), ""))
		ServiceUnavailableError("export queue unavailable").Write(w)
		return
	}

	writeJSON(w, http.StatusAccepted, EnqueueResponse{
		JobID:       req.JobID,
		Format:      req.Format,
		Status:      "queued",
		RequestedAt: req.RequestedAt,
	})
}

// normalizeSpec validates a spec decoded from JSON. Absent years mean the
// default years, as with the query string.
func normalizeSpec(f core.FilterSpec) (core.FilterSpec, error) {
	if f.Years == nil {
		f.Years = core.DefaultYears()
	}
	return core.NewFilterSpec(f.Years, f.Categories, f.Regions, f.Products, f.Threshold, f.ChartType)
}
