// Package monitor evaluates sold option positions for roll opportunities.
package monitor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/premia/internal/models"
)

// Urgency boundaries.
const (
	HighProfitPct    = 90.0
	HighUrgencyDTE   = 2
	MediumUrgencyDTE = 7
)

// ContractMultiplier is the number of shares one option contract represents.
const ContractMultiplier = 100

var hundred = decimal.NewFromInt(100)

// Classify evaluates one position against a profit threshold given in percent.
// It returns nil when the position cannot be evaluated or has not reached the
// threshold. now supplies the date used when the backend did not send
// days_to_expiry.
func Classify(p models.MonitoredPosition, thresholdPct float64, now time.Time) *models.RollAlert {
	if !p.CanMonitor || p.OriginalPremium == nil || p.CurrentPremium == nil {
		return nil
	}

	original := decimal.NewFromFloat(*p.OriginalPremium)
	if !original.IsPositive() {
		return nil
	}
	current := decimal.NewFromFloat(*p.CurrentPremium)
	captured := original.Sub(current)

	pct := captured.Mul(hundred).Div(original)
	if pct.LessThan(decimal.NewFromFloat(thresholdPct)) {
		return nil
	}

	amount := captured.
		Mul(decimal.NewFromInt(int64(p.Contracts))).
		Mul(decimal.NewFromInt(ContractMultiplier)).
		Round(2)

	pctValue := pct.InexactFloat64()
	dte := DaysToExpiry(p, now)
	urgency := UrgencyFor(pctValue, dte)

	return &models.RollAlert{
		PositionID:      p.ID,
		Symbol:          p.Symbol,
		StrikePrice:     p.StrikePrice,
		OptionType:      p.OptionType,
		ExpirationDate:  p.ExpirationDate,
		Contracts:       p.Contracts,
		OriginalPremium: *p.OriginalPremium,
		CurrentPremium:  *p.CurrentPremium,
		ProfitAmount:    amount.InexactFloat64(),
		ProfitPercent:   pct.Round(2).InexactFloat64(),
		DaysToExpiry:    dte,
		Urgency:         urgency,
		Recommendation:  Recommendation(urgency, pctValue, dte),
	}
}

// DaysToExpiry prefers the backend value and otherwise counts whole calendar
// days from now to the expiration date. nil means unknown.
func DaysToExpiry(p models.MonitoredPosition, now time.Time) *int {
	if p.DaysToExpiry != nil {
		d := *p.DaysToExpiry
		return &d
	}
	exp, ok := p.Expiration()
	if !ok {
		return nil
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(exp.Sub(today).Hours() / 24)
	return &days
}

// UrgencyFor tiers an alert that has already crossed its threshold.
// Ties resolve to the higher tier.
func UrgencyFor(profitPct float64, dte *int) models.Urgency {
	switch {
	case profitPct >= HighProfitPct:
		return models.UrgencyHigh
	case dte != nil && *dte <= HighUrgencyDTE:
		return models.UrgencyHigh
	case dte != nil && *dte <= MediumUrgencyDTE:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

// Recommendation picks the advice text for an alert.
func Recommendation(urgency models.Urgency, profitPct float64, dte *int) string {
	switch urgency {
	case models.UrgencyHigh:
		if dte != nil && *dte <= HighUrgencyDTE {
			if *dte <= 0 {
				return "Roll now: expires today"
			}
			return fmt.Sprintf("Roll now: expiring in %d day(s)", *dte)
		}
		return "Roll now: 90%+ of premium captured"
	case models.UrgencyMedium:
		if dte == nil {
			return "Consider rolling: profit target reached"
		}
		return fmt.Sprintf("Consider rolling: profit target reached, %d days to expiry", *dte)
	default:
		return "Monitor: profit target reached, time remains"
	}
}
