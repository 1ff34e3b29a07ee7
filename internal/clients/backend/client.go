// Package backend provides a client for the family finance backend API
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second

	maxErrorBody = 4096
)

var (
	// ErrNetwork marks failures to reach the backend or non-2xx responses.
	ErrNetwork = errors.New("backend unreachable")
	// ErrDataShape marks responses that could not be decoded or lack required fields.
	ErrDataShape = errors.New("unexpected backend response")
)

// Client implements the BackendClient interface
type Client struct {
	baseURL    string
	apiKey     string
	headers    map[string]string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAPIKey sends the key as a bearer token
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithHeaders adds static headers to every request
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new backend client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		headers: make(map[string]string),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig creates a client from the backend config section
func NewClientFromConfig(cfg common.BackendConfig, logger *common.Logger) *Client {
	return NewClient(
		WithBaseURL(cfg.BaseURL),
		WithAPIKey(cfg.APIKey),
		WithHeaders(cfg.Headers),
		WithRateLimit(cfg.RateLimit),
		WithTimeout(cfg.GetTimeout()),
		WithLogger(logger),
	)
}

// APIError represents a non-2xx backend response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Is lets errors.Is(err, ErrNetwork) match HTTP failures too.
func (e *APIError) Is(target error) bool {
	return target == ErrNetwork
}

// do performs a rate-limited request and decodes a JSON response into result.
// result may be nil when the body is not needed.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	// Per-request auth headers from the dashboard session win over static ones.
	for k, v := range common.ResolveBackendHeaders(ctx) {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			Endpoint:   path,
		}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDataShape, path, err)
	}
	return nil
}

func dataShape(path, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrDataShape, path, fmt.Sprintf(format, args...))
}

// IncomeProjection posts the assumptions and returns the options data snapshot
func (c *Client) IncomeProjection(ctx context.Context, a models.PremiumAssumptions) (*models.OptionsData, error) {
	const path = "/income-projection-with-status"

	req := a.Clone()
	var data models.OptionsData
	if err := c.do(ctx, http.MethodPost, path, req, &data); err != nil {
		return nil, err
	}
	if data.Accounts == nil {
		return nil, dataShape(path, "missing accounts")
	}
	for i, acct := range data.Accounts {
		for j, h := range acct.Holdings {
			if h.Symbol == "" {
				return nil, dataShape(path, "account %d holding %d has no symbol", i, j)
			}
			// Projections use options, so a stale sold/unsold split is only logged
			if !h.ContractsConsistent() {
				c.logger.Warn().
					Str("account", acct.AccountID).
					Str("symbol", h.Symbol).
					Int("options", h.Options).
					Int("sold", *h.SoldContracts).
					Int("unsold", *h.UnsoldContracts).
					Msg("Holding sold and unsold contracts do not add up to options")
			}
		}
	}
	return &data, nil
}

type checkResponse struct {
	Success          *bool              `json:"success"`
	Alerts           []models.RollAlert `json:"alerts"`
	PositionsChecked int                `json:"positions_checked"`
	NewAlertsSaved   int                `json:"new_alerts_saved"`
	Message          string             `json:"message"`
}

// CheckRolls asks the backend to evaluate open positions. The threshold is
// given in percent and sent as a fraction.
func (c *Client) CheckRolls(ctx context.Context, thresholdPct float64) (*models.CheckResult, error) {
	fraction := strconv.FormatFloat(thresholdPct/100, 'f', -1, 64)
	path := "/option-monitor/check?profit_threshold=" + url.QueryEscape(fraction)

	var resp checkResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Success == nil {
		return nil, dataShape(path, "missing success")
	}
	alerts := resp.Alerts
	if alerts == nil {
		alerts = []models.RollAlert{}
	}
	return &models.CheckResult{
		Success:            *resp.Success,
		Alerts:             alerts,
		PositionsChecked:   resp.PositionsChecked,
		NewAlertsSaved:     resp.NewAlertsSaved,
		Message:            resp.Message,
		ProfitThresholdPct: thresholdPct,
	}, nil
}

// Positions lists open monitored positions
func (c *Client) Positions(ctx context.Context, useLivePrices bool) (*models.PositionsResponse, error) {
	q := url.Values{}
	q.Set("status", "open")
	q.Set("use_live_prices", strconv.FormatBool(useLivePrices))
	path := "/option-monitor/positions?" + q.Encode()

	var resp models.PositionsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Positions == nil {
		return nil, dataShape(path, "missing positions")
	}
	return &resp, nil
}

// AddPosition creates a monitored position and returns it as stored. The
// backend may answer with the position itself or wrapped as {"position": ...}.
func (c *Client) AddPosition(ctx context.Context, req models.NewPosition) (*models.MonitoredPosition, error) {
	const path = "/option-monitor/positions"

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, req, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Position *models.MonitoredPosition `json:"position"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Position != nil {
		return wrapped.Position, nil
	}

	var p models.MonitoredPosition
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataShape, path, err)
	}
	if p.Symbol == "" {
		return nil, dataShape(path, "created position has no symbol")
	}
	return &p, nil
}

// Alerts returns recent historical alerts
func (c *Client) Alerts(ctx context.Context, limit int) ([]models.AlertRecord, error) {
	path := "/option-monitor/alerts?limit=" + strconv.Itoa(limit)

	var resp models.AlertsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Alerts == nil {
		return nil, dataShape(path, "missing alerts")
	}
	return resp.Alerts, nil
}

// AcknowledgeAlert records the action taken on an alert
func (c *Client) AcknowledgeAlert(ctx context.Context, alertID string, action models.AckAction) error {
	path := fmt.Sprintf("/option-monitor/alerts/%s/acknowledge?action_taken=%s",
		url.PathEscape(alertID), url.QueryEscape(string(action)))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// Ensure Client implements BackendClient
var _ interfaces.BackendClient = (*Client)(nil)
