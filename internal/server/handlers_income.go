package server

import (
	"net/http"
	"net/url"

	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/models"
	"github.com/bobmcallan/premia/internal/sorting"
)

// sortState reads the current sort of one table from the query and applies a
// header click when one is present.
func sortState(q url.Values, prefix string, cycle sorting.Cycle) sorting.State {
	state := sorting.State{
		Field:     q.Get(prefix + "sort"),
		Direction: sorting.ParseDirection(q.Get(prefix + "dir")),
	}
	if click := q.Get(prefix + "click"); click != "" {
		state = state.Click(click, cycle)
	}
	if state.Field == "" {
		state.Direction = sorting.None
	}
	return state
}

func sortRequest(st sorting.State) interfaces.SortRequest {
	return interfaces.SortRequest{Field: st.Field, Direction: string(st.Direction)}
}

// projectionResponse carries the projection and the sort state it was built with.
type projectionResponse struct {
	*models.Projection
	Sort struct {
		Symbols  sorting.State `json:"symbols"`
		Holdings sorting.State `json:"holdings"`
	} `json:"sort"`
}

// handleIncomeAssumptions handles GET/PATCH /api/income/assumptions.
func (s *Server) handleIncomeAssumptions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPatch) {
		return
	}

	if r.Method == http.MethodGet {
		a, err := s.app.IncomeService.Assumptions(r.Context())
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, a)
		return
	}

	var patch models.AssumptionsPatch
	if !DecodeJSON(w, r, &patch) {
		return
	}
	a, err := s.app.IncomeService.UpdateAssumptions(r.Context(), patch)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// handleIncomeRefresh handles POST /api/income/refresh.
func (s *Server) handleIncomeRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	proj, err := s.app.IncomeService.Refresh(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, proj)
}

// handleIncomeProjection handles GET /api/income/projection.
func (s *Server) handleIncomeProjection(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	symbolSort := sortState(q, "", sorting.ThreeState)
	holdingSort := sortState(q, "holding_", sorting.ThreeState)

	proj, err := s.app.IncomeService.Projection(r.Context(), sortRequest(symbolSort), sortRequest(holdingSort))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	resp := projectionResponse{Projection: proj}
	resp.Sort.Symbols = symbolSort
	resp.Sort.Holdings = holdingSort
	WriteJSON(w, http.StatusOK, resp)
}

// handleIncomeChart handles GET /api/income/chart.png.
func (s *Server) handleIncomeChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	png, err := s.app.IncomeService.Chart(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
