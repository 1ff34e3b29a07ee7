package server

import (
	"net/http"
	"strconv"

	"github.com/bobmcallan/premia/internal/models"
	"github.com/bobmcallan/premia/internal/sorting"
)

// queryFloat parses an optional float query parameter. Absent means 0.
func queryFloat(r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// handleMonitorPositions handles GET/POST /api/monitor/positions.
func (s *Server) handleMonitorPositions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodPost {
		var req models.NewPosition
		if !DecodeJSON(w, r, &req) {
			return
		}
		p, err := s.app.MonitorService.AddPosition(r.Context(), req)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, p)
		return
	}

	q := r.URL.Query()
	useLive := s.app.Config.Monitor.UseLivePrices
	if raw := q.Get("live"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "live must be true or false")
			return
		}
		useLive = v
	}
	sort := sortState(q, "", sorting.TwoState)

	resp, err := s.app.MonitorService.Positions(r.Context(), useLive, sortRequest(sort))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"positions":         resp.Positions,
		"count":             len(resp.Positions),
		"using_live_prices": resp.UsingLivePrices,
		"price_update_time": resp.PriceUpdateTime,
		"sort":              sort,
	})
}

// handleMonitorCheck handles POST /api/monitor/check.
func (s *Server) handleMonitorCheck(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	threshold, ok := queryFloat(r, "threshold")
	if !ok {
		WriteError(w, http.StatusBadRequest, "threshold must be a number")
		return
	}
	result, err := s.app.MonitorService.Check(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleMonitorRemoteCheck handles GET /api/monitor/check/remote.
func (s *Server) handleMonitorRemoteCheck(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	threshold, ok := queryFloat(r, "threshold")
	if !ok {
		WriteError(w, http.StatusBadRequest, "threshold must be a number")
		return
	}
	result, err := s.app.MonitorService.RemoteCheck(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleMonitorAlerts handles GET /api/monitor/alerts.
func (s *Server) handleMonitorAlerts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = v
	}
	alerts, err := s.app.MonitorService.AlertHistory(r.Context(), limit)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, models.AlertsResponse{Alerts: alerts})
}

// handleMonitorAcknowledge handles POST /api/monitor/alerts/{id}/acknowledge.
func (s *Server) handleMonitorAcknowledge(w http.ResponseWriter, r *http.Request, alertID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	action := models.AckAction(r.URL.Query().Get("action"))
	if err := s.app.MonitorService.Acknowledge(r.Context(), alertID, action); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":       "ok",
		"alert_id":     alertID,
		"action_taken": string(action),
	})
}

// handleAlertsWS handles GET /api/ws/alerts.
func (s *Server) handleAlertsWS(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.AlertHub == nil {
		WriteError(w, http.StatusServiceUnavailable, "Alert stream not running")
		return
	}
	s.app.AlertHub.ServeWS(w, r)
}
