package monitor

import (
	"github.com/bobmcallan/premia/internal/models"
	"github.com/bobmcallan/premia/internal/sorting"
)

// PositionFields are the sortable columns of the monitored positions table.
// Premium, gain/loss and days-to-expiry can be missing and sort last.
var PositionFields = sorting.NewRegistry(
	sorting.TextField("symbol", func(p models.MonitoredPosition) string { return p.Symbol }),
	sorting.TextField("option_type", func(p models.MonitoredPosition) string { return string(p.OptionType) }),
	sorting.TextField("expiration_date", func(p models.MonitoredPosition) string { return p.ExpirationDate }),
	sorting.TextField("account_name", func(p models.MonitoredPosition) string { return p.AccountName }),
	sorting.NumberField("strike_price", func(p models.MonitoredPosition) float64 { return p.StrikePrice }),
	sorting.NumberField("contracts", func(p models.MonitoredPosition) float64 { return float64(p.Contracts) }),
	sorting.OptionalNumberField("original_premium", optionalFloat(func(p models.MonitoredPosition) *float64 { return p.OriginalPremium })),
	sorting.OptionalNumberField("current_premium", optionalFloat(func(p models.MonitoredPosition) *float64 { return p.CurrentPremium })),
	sorting.OptionalNumberField("gain_loss_percent", optionalFloat(func(p models.MonitoredPosition) *float64 { return p.GainLossPercent })),
	sorting.OptionalNumberField("gain_loss_amount", optionalFloat(func(p models.MonitoredPosition) *float64 { return p.GainLossAmount })),
	sorting.OptionalNumberField("days_to_expiry", func(p models.MonitoredPosition) (float64, bool) {
		if p.DaysToExpiry == nil {
			return 0, false
		}
		return float64(*p.DaysToExpiry), true
	}),
)

func optionalFloat(get func(models.MonitoredPosition) *float64) func(models.MonitoredPosition) (float64, bool) {
	return func(p models.MonitoredPosition) (float64, bool) {
		v := get(p)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}
