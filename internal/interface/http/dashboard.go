package http

import (
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/trajectory-hub/student-dashboard/internal/application/query"
	"github.com/trajectory-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy", "version": s.config.Version})
		return
	}
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD
// ══════════════════════════════════════════════════════════════════════════════

// handleGetDashboard returns the last snapshot without touching the backend.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, r, s.deps.Dashboard.Snapshot())
}

// handleReload runs a load and returns its result. This is the retry path
// after a failed load.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Sessions.Session().IsAuthenticated() {
		writeJSONError(w, r, http.StatusUnauthorized, "not_authenticated",
			"No active session; run `dashboard login` first")
		return
	}
	if ok, wait := s.reloadLimiter.Allow(); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		writeJSONError(w, r, http.StatusTooManyRequests, "rate_limited",
			"Too many reloads; wait before retrying")
		return
	}

	snap := s.deps.Dashboard.Load(r.Context())
	if snap.Status == query.StatusError {
		logger.FromContext(r.Context()).Warn("reload failed", zap.Error(snap.Err))
	}
	s.writeSnapshot(w, r, snap)
}

// writeSnapshot renders snap. An error snapshot is answered with 502 and
// still carries the view, so clients get the message and retry hint.
func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, snap query.Snapshot) {
	view := s.deps.Presenter.Build(snap, s.deps.Sessions.Session().User)
	if snap.Status != query.StatusError {
		writeJSON(w, r, http.StatusOK, view)
		return
	}
	writeResponse(w, r, http.StatusBadGateway, view, &APIError{
		Code:    "dashboard_unavailable",
		Message: view.Message,
		Details: view.RetryHint,
	})
}
