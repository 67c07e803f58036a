package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/dashboard"
	"fintrack/internal/log"
)

const dashboardTimeout = 7 * time.Second

func dashboardKey(username, window string) string {
	return username + "|" + window
}

// invalidateDashboards drops every cached dashboard of username.
func (s *Server) invalidateDashboards(username string) {
	s.dashboards.Invalidate(dashboardKey(username, ""))
}

// handleDashboard returns the full dashboard for the start/end window,
// all time when either is missing.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	window, err := parseWindow(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := s.dashboards.Get(dashboardKey(username, window.String()), func() (dashboard.Dashboard, error) {
		// The fill is shared by concurrent callers, so one of them hanging up
		// must not cut it short.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), dashboardTimeout)
		defer cancel()
		d := s.aggregator.Dashboard(ctx, username, window)
		if err := ctx.Err(); err != nil {
			return dashboard.Dashboard{}, err
		}
		return d, nil
	})
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Dashboard computation timed out",
			log.FieldUsername, username, log.FieldError, err)
		ErrorResponse(http.StatusServiceUnavailable, "dashboard temporarily unavailable").Write(w)
		return
	}
	NewResponse().JSON(d).Write(w)
}
