package income

import (
	"github.com/bobmcallan/premia/internal/models"
	"github.com/bobmcallan/premia/internal/sorting"
)

// SymbolFields are the sortable columns of the portfolio symbol table.
// Every numeric column is always present, so no missing-value policy applies.
var SymbolFields = sorting.NewRegistry(
	sorting.TextField("symbol", func(r models.SymbolRow) string { return r.Symbol }),
	sorting.NumberField("shares", func(r models.SymbolRow) float64 { return float64(r.Shares) }),
	sorting.NumberField("price", func(r models.SymbolRow) float64 { return r.Price }),
	sorting.NumberField("value", func(r models.SymbolRow) float64 { return r.Value }),
	sorting.NumberField("options", func(r models.SymbolRow) float64 { return float64(r.Options) }),
	sorting.NumberField("account_count", func(r models.SymbolRow) float64 { return float64(r.AccountCount) }),
	sorting.NumberField("premium", func(r models.SymbolRow) float64 { return r.Premium }),
	sorting.NumberField("weekly_income", func(r models.SymbolRow) float64 { return r.WeeklyIncome }),
	sorting.NumberField("monthly_income", func(r models.SymbolRow) float64 { return r.MonthlyIncome }),
	sorting.NumberField("yearly_income", func(r models.SymbolRow) float64 { return r.YearlyIncome }),
)

// HoldingFields are the sortable columns of each account's holdings table.
var HoldingFields = sorting.NewRegistry(
	sorting.TextField("symbol", func(r models.HoldingRow) string { return r.Symbol }),
	sorting.TextField("utilization_status", func(r models.HoldingRow) string { return string(r.UtilizationStatus) }),
	sorting.NumberField("shares", func(r models.HoldingRow) float64 { return float64(r.Shares) }),
	sorting.NumberField("price", func(r models.HoldingRow) float64 { return r.Price }),
	sorting.NumberField("value", func(r models.HoldingRow) float64 { return r.Value }),
	sorting.NumberField("options", func(r models.HoldingRow) float64 { return float64(r.Options) }),
	sorting.NumberField("premium", func(r models.HoldingRow) float64 { return r.Premium }),
	sorting.NumberField("weekly_income", func(r models.HoldingRow) float64 { return r.WeeklyIncome }),
	sorting.NumberField("monthly_income", func(r models.HoldingRow) float64 { return r.MonthlyIncome }),
	sorting.NumberField("yearly_income", func(r models.HoldingRow) float64 { return r.YearlyIncome }),
	// Holdings without sold/unsold counts sort last.
	sorting.OptionalNumberField("unsold_contracts", func(r models.HoldingRow) (float64, bool) {
		if r.UnsoldContracts == nil {
			return 0, false
		}
		return float64(*r.UnsoldContracts), true
	}),
)
