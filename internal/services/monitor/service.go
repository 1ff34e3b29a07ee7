package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/models"
	"github.com/bobmcallan/premia/internal/sorting"
)

var (
	// ErrInvalidPosition wraps validation failures of a new position.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrInvalidThreshold is returned for a non-positive profit threshold.
	ErrInvalidThreshold = errors.New("profit threshold must be positive")
	// ErrInvalidAction is returned when acknowledging with an unknown action.
	ErrInvalidAction = errors.New("action must be rolled, closed or ignored")
	// ErrMissingAlertID is returned when acknowledging without an alert id.
	ErrMissingAlertID = errors.New("alert id is required")
)

// ValidationError lists every problem found in a new position request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidPosition, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidPosition }

// Service implements MonitorService
type Service struct {
	backend     interfaces.BackendClient
	positions   interfaces.PositionStore
	seen        interfaces.AlertSeenStore
	notifier    interfaces.Notifier
	broadcaster interfaces.AlertBroadcaster
	config      common.MonitorConfig
	logger      *common.Logger
	now         func() time.Time
}

// Option configures the monitor service
type Option func(*Service)

// WithNotifier sends newly seen alerts through n
func WithNotifier(n interfaces.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithBroadcaster pushes newly seen alerts to connected dashboards
func WithBroadcaster(b interfaces.AlertBroadcaster) Option {
	return func(s *Service) { s.broadcaster = b }
}

// WithClock overrides the clock used for days-to-expiry
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new monitor service
func NewService(
	backend interfaces.BackendClient,
	positions interfaces.PositionStore,
	seen interfaces.AlertSeenStore,
	config common.MonitorConfig,
	logger *common.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		backend:   backend,
		positions: positions,
		seen:      seen,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Positions refreshes positions from the backend and returns the sorted client view.
// The price source and update time are the backend's, not the request's.
func (s *Service) Positions(ctx context.Context, useLivePrices bool, sort interfaces.SortRequest) (*models.PositionsResponse, error) {
	resp, err := s.backend.Positions(ctx, useLivePrices)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Position fetch failed, keeping last view")
		return nil, err
	}

	now := s.now()
	annotated := make([]models.MonitoredPosition, 0, len(resp.Positions))
	for _, p := range resp.Positions {
		annotated = append(annotated, Annotate(p, now))
	}
	if err := s.positions.ReplacePositions(ctx, annotated); err != nil {
		return nil, fmt.Errorf("failed to store positions: %w", err)
	}

	view, err := s.positions.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	s.logger.Debug().
		Int("positions", len(view)).
		Bool("live_prices", resp.UsingLivePrices).
		Msg("Monitored positions refreshed")

	return &models.PositionsResponse{
		Positions:       PositionFields.Sort(view, sort.Field, sorting.ParseDirection(sort.Direction)),
		PriceUpdateTime: resp.PriceUpdateTime,
		UsingLivePrices: resp.UsingLivePrices,
	}, nil
}

// Annotate fills gain/loss and days-to-expiry when the backend left them out.
// Gains are from the seller's side: a falling premium is a positive gain.
func Annotate(p models.MonitoredPosition, now time.Time) models.MonitoredPosition {
	if p.DaysToExpiry == nil {
		p.DaysToExpiry = DaysToExpiry(p, now)
	}
	if p.OriginalPremium == nil || p.CurrentPremium == nil {
		return p
	}

	original := decimal.NewFromFloat(*p.OriginalPremium)
	captured := original.Sub(decimal.NewFromFloat(*p.CurrentPremium))

	if p.GainLossPercent == nil && original.IsPositive() {
		pct := captured.Mul(hundred).Div(original).Round(2).InexactFloat64()
		p.GainLossPercent = &pct
	}
	if p.GainLossAmount == nil {
		amount := captured.
			Mul(decimal.NewFromInt(int64(p.Contracts))).
			Mul(decimal.NewFromInt(ContractMultiplier)).
			Round(2).InexactFloat64()
		p.GainLossAmount = &amount
	}
	return p
}

// AddPosition validates and creates a monitored position
func (s *Service) AddPosition(ctx context.Context, req models.NewPosition) (*models.MonitoredPosition, error) {
	req.Normalize()
	if problems := req.Validate(); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	created, err := s.backend.AddPosition(ctx, req)
	if err != nil {
		return nil, err
	}

	p := Annotate(*created, s.now())
	if err := s.positions.PutPosition(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to store position: %w", err)
	}

	s.logger.Info().
		Str("position", p.Key()).
		Str("symbol", p.Symbol).
		Msg("Monitored position added")
	return &p, nil
}

// Check classifies live positions locally and reports alerts not yet seen
// this session. Only the new alerts are notified and broadcast.
func (s *Service) Check(ctx context.Context, thresholdPct float64) (*models.CheckResult, error) {
	threshold, err := s.threshold(thresholdPct)
	if err != nil {
		return nil, err
	}

	resp, err := s.backend.Positions(ctx, s.config.UseLivePrices)
	if err != nil {
		return nil, err
	}

	result, fresh, err := CheckAll(ctx, resp.Positions, threshold, s.seen, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("positions_checked", result.PositionsChecked).
		Int("alerts", len(result.Alerts)).
		Int("new_alerts", result.NewAlertsSaved).
		Float64("threshold_pct", threshold).
		Msg("Roll check complete")

	if len(fresh) > 0 {
		s.deliver(ctx, fresh)
	}
	return result, nil
}

// deliver fans new alerts out. Notification failures are logged, never returned.
func (s *Service) deliver(ctx context.Context, alerts []models.RollAlert) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastAlerts(alerts)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyRollAlerts(ctx, alerts); err != nil {
			s.logger.Warn().Err(err).Int("alerts", len(alerts)).Msg("Roll alert notification failed")
		}
	}
}

// RemoteCheck delegates the roll check to the backend
func (s *Service) RemoteCheck(ctx context.Context, thresholdPct float64) (*models.CheckResult, error) {
	threshold, err := s.threshold(thresholdPct)
	if err != nil {
		return nil, err
	}
	result, err := s.backend.CheckRolls(ctx, threshold)
	if err != nil {
		return nil, err
	}
	if result.ProfitThresholdPct == 0 {
		result.ProfitThresholdPct = threshold
	}
	return result, nil
}

// threshold resolves 0 to the configured default and rejects negatives.
func (s *Service) threshold(pct float64) (float64, error) {
	if pct == 0 {
		pct = s.config.ProfitThresholdPct
	}
	if pct <= 0 {
		return 0, ErrInvalidThreshold
	}
	return pct, nil
}

// AlertHistory returns recent alerts from the backend
func (s *Service) AlertHistory(ctx context.Context, limit int) ([]models.AlertRecord, error) {
	if limit <= 0 {
		limit = s.config.AlertHistoryLimit
	}
	return s.backend.Alerts(ctx, limit)
}

// Acknowledge records the action taken for an alert
func (s *Service) Acknowledge(ctx context.Context, alertID string, action models.AckAction) error {
	if !action.Valid() {
		return ErrInvalidAction
	}
	if strings.TrimSpace(alertID) == "" {
		return ErrMissingAlertID
	}
	if err := s.backend.AcknowledgeAlert(ctx, alertID, action); err != nil {
		return err
	}
	s.logger.Info().Str("alert_id", alertID).Str("action", string(action)).Msg("Alert acknowledged")
	return nil
}

// Ensure Service implements MonitorService
var _ interfaces.MonitorService = (*Service)(nil)
