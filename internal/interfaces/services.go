package interfaces

import (
	"context"

	"github.com/bobmcallan/premia/internal/models"
)

// SortRequest names a column and direction ("asc", "desc" or "none").
type SortRequest struct {
	Field     string
	Direction string
}

// IncomeService owns premium assumptions and the options data snapshot
type IncomeService interface {
	// Refresh fetches a fresh snapshot from the backend using the current assumptions
	Refresh(ctx context.Context) (*models.Projection, error)

	// Assumptions returns a copy of the current session assumptions
	Assumptions(ctx context.Context) (models.PremiumAssumptions, error)

	// UpdateAssumptions applies a user edit and returns the resulting assumptions
	UpdateAssumptions(ctx context.Context, patch models.AssumptionsPatch) (models.PremiumAssumptions, error)

	// Projection recomputes all income figures from the last snapshot
	Projection(ctx context.Context, symbolSort, holdingSort SortRequest) (*models.Projection, error)

	// Chart renders yearly income per symbol as PNG
	Chart(ctx context.Context) ([]byte, error)
}

// MonitorService owns monitored positions and roll alerting
type MonitorService interface {
	// Positions refreshes positions from the backend and returns the sorted client view
	// along with the backend's price source and update time
	Positions(ctx context.Context, useLivePrices bool, sort SortRequest) (*models.PositionsResponse, error)

	// AddPosition validates and creates a monitored position
	AddPosition(ctx context.Context, req models.NewPosition) (*models.MonitoredPosition, error)

	// Check classifies live positions locally and reports alerts not yet seen this session
	Check(ctx context.Context, thresholdPct float64) (*models.CheckResult, error)

	// RemoteCheck delegates the roll check to the backend
	RemoteCheck(ctx context.Context, thresholdPct float64) (*models.CheckResult, error)

	// AlertHistory returns recent alerts from the backend
	AlertHistory(ctx context.Context, limit int) ([]models.AlertRecord, error)

	// Acknowledge records the action taken for an alert
	Acknowledge(ctx context.Context, alertID string, action models.AckAction) error
}
