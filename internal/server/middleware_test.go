package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/models"
	"github.com/bobmcallan/premia/internal/services/monitor"
)

const testPassword = "correct horse battery staple"

// enableLogin turns the login gate on with a cheap bcrypt hash.
func enableLogin(t *testing.T, s *Server) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	s.app.Config.Auth.Username = "family"
	s.app.Config.Auth.PasswordHash = string(hash)
	s.app.Config.Auth.JWTSecret = "test-secret"
}

func validToken(t *testing.T, s *Server) string {
	t.Helper()
	token, err := signJWT("family", &s.app.Config.Auth, time.Now())
	require.NoError(t, err)
	return token
}

func TestSessionMiddleware_CollectsBackendHeaders(t *testing.T) {
	var got *common.Session
	handler := sessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = common.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/monitor/positions", nil)
	req.Header.Set("X-Backend-Authorization", "Bearer abc")
	req.Header.Set("X-Backend-X-Family-Id", "smith")
	req.Header.Set("X-Request-ID", "not-forwarded")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer abc",
		"X-Family-Id":   "smith",
	}, got.BackendHeaders)
}

func TestSessionMiddleware_NoHeaders(t *testing.T) {
	var got *common.Session
	handler := sessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = common.SessionFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.NotNil(t, got)
	assert.Nil(t, got.BackendHeaders)
	assert.Equal(t, "anonymous", common.ResolveUsername(common.WithSession(t.Context(), got)))
}

func TestCORS_PreflightEchoesRequestedHeaders(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := newRequest(http.MethodOptions, "/api/monitor/positions", "")
	req.Header.Set("Access-Control-Request-Headers", "X-Backend-Authorization")
	rr := serve(s, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "X-Backend-Authorization", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthGate_DisabledPassesThrough(t *testing.T) {
	s, _, _ := newTestServer(t)
	rr := do(t, s, http.MethodGet, "/api/income/assumptions", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthGate_RejectsMissingToken(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableLogin(t, s)

	rr := do(t, s, http.MethodGet, "/api/income/assumptions", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestAuthGate_ExemptPaths(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableLogin(t, s)

	for _, path := range []string{"/api/health", "/api/version"} {
		rr := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestAuthGate_AcceptsValidToken(t *testing.T) {
	s, _, mon := newTestServer(t)
	enableLogin(t, s)

	req := newRequest(http.MethodGet, "/api/monitor/positions", "")
	req.Header.Set("Authorization", "Bearer "+validToken(t, s))
	req.Header.Set("X-Backend-Authorization", "Bearer upstream")
	rr := serve(s, req)
	require.Equal(t, http.StatusOK, rr.Code)

	require.NotNil(t, mon.session)
	assert.Equal(t, "family", mon.session.Username)
	assert.Equal(t, "Bearer upstream", mon.session.BackendHeaders["Authorization"])
}

func TestAuthGate_RejectsWrongSecret(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableLogin(t, s)
	token := validToken(t, s)
	s.app.Config.Auth.JWTSecret = "rotated"

	req := newRequest(http.MethodGet, "/api/income/assumptions", "")
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, serve(s, req).Code)
}

func TestAuthGate_RejectsExpiredToken(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableLogin(t, s)
	token, err := signJWT("family", &s.app.Config.Auth, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	req := newRequest(http.MethodGet, "/api/income/assumptions", "")
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, serve(s, req).Code)
}

func TestAuthGate_QueryTokenOnlyForWebSocket(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableLogin(t, s)

	rr := do(t, s, http.MethodGet, "/api/income/assumptions?token="+validToken(t, s), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogin(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableLogin(t, s)

	rr := do(t, s, http.MethodPost, "/api/auth/login", `{"username":"family","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decodeBody(t, rr, &body)
	require.NotEmpty(t, body.Data.Token)

	_, claims, err := validateJWT(body.Data.Token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, "family", claims["sub"])
	assert.Equal(t, "premia", claims["iss"])
	assert.NotEmpty(t, claims["jti"])
}

func TestLogin_WrongPassword(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableLogin(t, s)

	rr := do(t, s, http.MethodPost, "/api/auth/login", `{"username":"family","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, s, http.MethodPost, "/api/auth/login", `{"username":"stranger","password":"`+testPassword+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogin_LongPasswordTruncatedTo72Bytes(t *testing.T) {
	s, _, _ := newTestServer(t)
	long := strings.Repeat("p", 72)
	hash, err := bcrypt.GenerateFromPassword([]byte(long), bcrypt.MinCost)
	require.NoError(t, err)
	s.app.Config.Auth.PasswordHash = string(hash)

	rr := do(t, s, http.MethodPost, "/api/auth/login", `{"username":"family","password":"`+long+`extra"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogin_DisabledGate(t *testing.T) {
	s, _, _ := newTestServer(t)
	rr := do(t, s, http.MethodPost, "/api/auth/login", `{"username":"family","password":"x"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAlertsWS_QueryTokenAndDelivery(t *testing.T) {
	s, _, _ := newTestServer(t)
	enableLogin(t, s)
	hub := monitor.NewAlertHub(common.NewSilentLogger())
	go hub.Run()
	defer hub.Stop()
	s.app.AlertHub = hub

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws/alerts"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+validToken(t, s), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastAlerts([]models.RollAlert{{Symbol: "AAPL", Urgency: models.UrgencyHigh}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event monitor.AlertEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "roll_alerts", event.Type)
	require.Len(t, event.Alerts, 1)
	assert.Equal(t, "AAPL", event.Alerts[0].Symbol)
}
