// Package interfaces defines service contracts for Premia
package interfaces

import (
	"context"

	"github.com/bobmcallan/premia/internal/models"
)

// BackendClient talks to the finance backend API. Every call is independent;
// none is queued behind or cancelled by another.
type BackendClient interface {
	// IncomeProjection posts the assumptions and returns the options data snapshot
	IncomeProjection(ctx context.Context, assumptions models.PremiumAssumptions) (*models.OptionsData, error)

	// CheckRolls asks the backend to evaluate open positions against a threshold (percent)
	CheckRolls(ctx context.Context, thresholdPct float64) (*models.CheckResult, error)

	// Positions lists open monitored positions
	Positions(ctx context.Context, useLivePrices bool) (*models.PositionsResponse, error)

	// AddPosition creates a monitored position and returns it as stored
	AddPosition(ctx context.Context, req models.NewPosition) (*models.MonitoredPosition, error)

	// Alerts returns recent historical alerts
	Alerts(ctx context.Context, limit int) ([]models.AlertRecord, error)

	// AcknowledgeAlert records the action taken on an alert
	AcknowledgeAlert(ctx context.Context, alertID string, action models.AckAction) error
}

// Notifier delivers newly seen roll alerts outside the dashboard.
type Notifier interface {
	NotifyRollAlerts(ctx context.Context, alerts []models.RollAlert) error
}

// AlertBroadcaster pushes roll alerts to connected dashboard sessions.
type AlertBroadcaster interface {
	BroadcastAlerts(alerts []models.RollAlert)
}
