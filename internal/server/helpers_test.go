package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/services/monitor"
)

func TestPathParam(t *testing.T) {
	tests := []struct {
		path, prefix, suffix, want string
	}{
		{"/api/monitor/alerts/42/acknowledge", "/api/monitor/alerts/", "/acknowledge", "42"},
		{"/api/monitor/alerts/42", "/api/monitor/alerts/", "", "42"},
		{"/api/monitor/alerts/42/x", "/api/monitor/alerts/", "", "42"},
		{"/api/other/42", "/api/monitor/alerts/", "", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if got := PathParam(r, tt.prefix, tt.suffix); got != tt.want {
			t.Errorf("PathParam(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWriteServiceError_Unknown(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, common.NewSilentLogger(), errors.New("disk on fire"))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
}

func TestWriteServiceError_MissingAlertID(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, common.NewSilentLogger(), monitor.ErrMissingAlertID)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestDecodeJSON_NilBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/monitor/positions", nil)
	r.Body = nil
	rr := httptest.NewRecorder()
	var v map[string]interface{}
	if DecodeJSON(rr, r, &v) {
		t.Fatal("expected DecodeJSON to fail")
	}
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}
