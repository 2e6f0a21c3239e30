package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/StricklySoft/stricklysoft-reliability/pkg/breaker"
	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/monitor"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/perf"
)

const (
	// healthyScoreFloor is the score below which /healthz reports the
	// process as degraded.
	healthyScoreFloor = 50.0

	// defaultEventLimit caps GET /events when no limit is given.
	defaultEventLimit = 50

	// maxReportAlerts caps the alert history in the diagnostics report.
	maxReportAlerts = 20
)

// Report is the full diagnostics payload served by GET /diagnostics.
// Breakers and Operations are present only when a registry or tracker
// is attached.
type Report struct {
	Metrics    monitor.Metrics                `json:"metrics"`
	Breakers   map[string]breaker.Status      `json:"breakers,omitempty"`
	Operations map[string]perf.OperationStats `json:"operations,omitempty"`
	Alerts     []monitor.Alert                `json:"alerts,omitempty"`
}

// Report assembles the current diagnostics snapshot. It is the same
// payload GET /diagnostics serves, exposed for in-process consumers.
func (s *Server) Report() Report {
	rep := Report{
		Metrics: s.mon.Metrics(),
		Alerts:  s.mon.Alerts(maxReportAlerts),
	}
	if s.reg != nil {
		rep.Breakers = s.reg.BreakerStates()
	}
	if s.tracker != nil {
		rep.Operations = s.tracker.All()
	}
	return rep
}

type healthResponse struct {
	Status      string        `json:"status"`
	HealthScore float64       `json:"health_score"`
	Trend       monitor.Trend `json:"trend"`
}

type eventList struct {
	Count  int                     `json:"count"`
	Events []monitor.EventResponse `json:"events"`
}

type resolveRequest struct {
	Note string `json:"note"`
}

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.mon.Metrics()

	status := "ok"
	code := http.StatusOK
	if m.HealthScore < healthyScoreFloor {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	s.respondJSON(w, code, healthResponse{
		Status:      status,
		HealthScore: m.HealthScore,
		Trend:       m.Trend,
	})
}

// handleDiagnostics serves GET /diagnostics.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.Report())
}

// handleEvents serves GET /events with optional category, severity, and
// limit query parameters.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultEventLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	rawCategory := q.Get("category")
	rawSeverity := q.Get("severity")
	if rawCategory != "" && rawSeverity != "" {
		s.respondError(w, http.StatusBadRequest,
			"category and severity filters are mutually exclusive")
		return
	}

	var events []monitor.Event
	switch {
	case rawCategory != "":
		category := sserr.Category(rawCategory)
		if !category.Valid() {
			s.respondError(w, http.StatusBadRequest,
				fmt.Sprintf("unknown category %q", rawCategory))
			return
		}
		events = s.mon.EventsByCategory(category, limit)
	case rawSeverity != "":
		severity := sserr.Severity(rawSeverity)
		if !severity.Valid() {
			s.respondError(w, http.StatusBadRequest,
				fmt.Sprintf("unknown severity %q", rawSeverity))
			return
		}
		events = s.mon.EventsBySeverity(severity, limit)
	default:
		events = s.mon.RecentEvents(limit)
	}

	out := make([]monitor.EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Response(s.includeInternal))
	}

	s.respondJSON(w, http.StatusOK, eventList{Count: len(out), Events: out})
}

// handleResolve serves POST /events/{id}/resolve. Resolving an already
// resolved event is a no-op that still returns 204.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if _, ok := s.mon.Event(id); !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("event %q not found", id))
		return
	}

	s.mon.Resolve(id, req.Note)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("diag: failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{
		Error:   true,
		Message: message,
		Code:    status,
	})
}
