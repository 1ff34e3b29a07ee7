package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/premia/internal/models"
)

// ErrNotFound is returned by stores when a key has no value.
var ErrNotFound = errors.New("not found")

// AssumptionStore persists the session premium assumptions.
type AssumptionStore interface {
	GetAssumptions(ctx context.Context) (*models.PremiumAssumptions, error)
	SaveAssumptions(ctx context.Context, a models.PremiumAssumptions) error
}

// PositionStore holds the client view of monitored positions.
type PositionStore interface {
	// ReplacePositions swaps in the most recently resolved backend listing
	ReplacePositions(ctx context.Context, positions []models.MonitoredPosition) error
	// PutPosition upserts a single position by key
	PutPosition(ctx context.Context, p models.MonitoredPosition) error
	ListPositions(ctx context.Context) ([]models.MonitoredPosition, error)
}

// AlertSeenStore remembers which position/threshold pairs already alerted.
type AlertSeenStore interface {
	// MarkSeen records the key and reports whether it was new
	MarkSeen(ctx context.Context, key string) (bool, error)
}

// SessionStore groups the session stores and their lifecycle.
type SessionStore interface {
	Assumptions() AssumptionStore
	Positions() PositionStore
	SeenAlerts() AlertSeenStore
	Close() error
}
