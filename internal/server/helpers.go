package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/premia/internal/clients/backend"
	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/services/income"
	"github.com/bobmcallan/premia/internal/services/monitor"
)

// ErrorResponse is the standard error format for REST API responses.
// Retryable is set for backend failures the user may simply retry.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code,omitempty"`
	Retryable bool     `json:"retryable,omitempty"`
	Problems  []string `json:"problems,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// PathParam extracts a path parameter from the URL path.
// For a pattern like /api/monitor/alerts/{id}/acknowledge, calling
// PathParam(r, "/api/monitor/alerts/", "/acknowledge") extracts the {id} part.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	// No suffix, return up to the next /
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// writeServiceError maps service and backend errors onto HTTP responses.
// Backend failures are 502 and flagged retryable; the displayed data is untouched.
func writeServiceError(w http.ResponseWriter, logger *common.Logger, err error) {
	var validation *monitor.ValidationError
	var apiErr *backend.APIError

	switch {
	case errors.As(err, &validation):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:    "invalid position",
			Code:     "validation_failed",
			Problems: validation.Problems,
		})
	case errors.Is(err, income.ErrInvalidAssumptions),
		errors.Is(err, monitor.ErrInvalidThreshold),
		errors.Is(err, monitor.ErrInvalidAction),
		errors.Is(err, monitor.ErrMissingAlertID):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "validation_failed")
	case errors.Is(err, income.ErrNoIncome):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "no_income")
	case errors.Is(err, interfaces.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, backend.ErrDataShape):
		logger.Warn().Err(err).Msg("Backend response had an unexpected shape")
		WriteJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:     "backend returned unexpected data",
			Code:      "data_shape_failure",
			Retryable: true,
		})
	case errors.As(err, &apiErr), errors.Is(err, backend.ErrNetwork):
		logger.Warn().Err(err).Msg("Backend request failed")
		WriteJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:     "backend unavailable",
			Code:      "network_failure",
			Retryable: true,
		})
	default:
		logger.Error().Err(err).Msg("Request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
