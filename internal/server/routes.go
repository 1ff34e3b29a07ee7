package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/premia/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Auth
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)

	// Income projection
	mux.HandleFunc("/api/income/assumptions", s.handleIncomeAssumptions)
	mux.HandleFunc("/api/income/refresh", s.handleIncomeRefresh)
	mux.HandleFunc("/api/income/projection", s.handleIncomeProjection)
	mux.HandleFunc("/api/income/chart.png", s.handleIncomeChart)

	// Roll monitor
	mux.HandleFunc("/api/monitor/positions", s.handleMonitorPositions)
	mux.HandleFunc("/api/monitor/check/remote", s.handleMonitorRemoteCheck)
	mux.HandleFunc("/api/monitor/check", s.handleMonitorCheck)
	mux.HandleFunc("/api/monitor/alerts/", s.routeMonitorAlerts) // handles {id}/acknowledge
	mux.HandleFunc("/api/monitor/alerts", s.handleMonitorAlerts)
	mux.HandleFunc("/api/ws/alerts", s.handleAlertsWS)
}

// routeMonitorAlerts dispatches /api/monitor/alerts/{id}/{action} to the appropriate handler.
func (s *Server) routeMonitorAlerts(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/monitor/alerts/"
	if r.URL.Path == prefix {
		s.handleMonitorAlerts(w, r)
		return
	}

	if strings.HasSuffix(r.URL.Path, "/acknowledge") {
		id := PathParam(r, prefix, "/acknowledge")
		if !strings.Contains(id, "/") {
			s.handleMonitorAcknowledge(w, r, id)
			return
		}
	}

	WriteError(w, http.StatusNotFound, "Not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	wsClients := 0
	if s.app.AlertHub != nil {
		wsClients = s.app.AlertHub.ClientCount()
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.app.StartupTime).Seconds()),
		"ws_clients":     wsClients,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}
