package monitor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/models"
)

// AlertKey identifies one position at one threshold for session dedup.
func AlertKey(p models.MonitoredPosition, thresholdPct float64) string {
	return p.Key() + "|" + strconv.FormatFloat(thresholdPct, 'f', -1, 64)
}

// CheckAll classifies every position and records which alerts are new to the
// session. It returns the full result and the subset of alerts not seen before.
func CheckAll(
	ctx context.Context,
	positions []models.MonitoredPosition,
	thresholdPct float64,
	seen interfaces.AlertSeenStore,
	now time.Time,
) (*models.CheckResult, []models.RollAlert, error) {
	result := &models.CheckResult{
		Success:            true,
		Alerts:             []models.RollAlert{},
		PositionsChecked:   len(positions),
		ProfitThresholdPct: thresholdPct,
	}
	var fresh []models.RollAlert

	for _, p := range positions {
		alert := Classify(p, thresholdPct, now)
		if alert == nil {
			continue
		}
		result.Alerts = append(result.Alerts, *alert)

		isNew, err := seen.MarkSeen(ctx, AlertKey(p, thresholdPct))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to record alert for %s: %w", p.Key(), err)
		}
		if isNew {
			fresh = append(fresh, *alert)
		}
	}

	result.NewAlertsSaved = len(fresh)
	result.Message = checkMessage(len(result.Alerts), len(fresh), len(positions))
	return result, fresh, nil
}

func checkMessage(alerts, fresh, checked int) string {
	if alerts == 0 {
		return fmt.Sprintf("Checked %d positions, none ready to roll", checked)
	}
	return fmt.Sprintf("Checked %d positions, %d ready to roll (%d new)", checked, alerts, fresh)
}
