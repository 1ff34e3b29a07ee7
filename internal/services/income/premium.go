// Package income projects options-selling income from premium assumptions.
package income

import "github.com/bobmcallan/premia/internal/models"

// WeeksPerMonth is the fixed monthly multiplier. It is not calendar accurate
// and does not follow WeeksPerYear; displayed monthly figures depend on it.
const WeeksPerMonth = 4

// EffectivePremium resolves the per-contract weekly premium for src:
// symbol override (even zero), then the entity's stored premium, then the default.
func EffectivePremium(src models.IncomeSource, a models.PremiumAssumptions) (premium float64, overridden bool) {
	if p, ok := a.SymbolPremiums[models.NormalizeSymbol(src.IncomeSymbol())]; ok {
		return p, true
	}
	if stored := src.StoredPremium(); stored != nil {
		return *stored, false
	}
	return a.DefaultPremium, false
}

// IncomeFor projects weekly, monthly and yearly income for one holding or symbol.
func IncomeFor(src models.IncomeSource, a models.PremiumAssumptions) models.IncomeFigures {
	premium, _ := EffectivePremium(src, a)
	weekly := float64(src.ContractsAvailable()) * premium
	return figuresFromWeekly(premium, weekly, a.WeeksPerYear)
}

// figuresFromWeekly derives monthly and yearly from a weekly figure so that
// monthly == 4*weekly and yearly == weeksPerYear*weekly hold exactly.
func figuresFromWeekly(premium, weekly float64, weeksPerYear int) models.IncomeFigures {
	return models.IncomeFigures{
		Premium: premium,
		Weekly:  weekly,
		Monthly: weekly * WeeksPerMonth,
		Yearly:  weekly * float64(weeksPerYear),
	}
}
