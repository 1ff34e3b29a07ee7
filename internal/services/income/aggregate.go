package income

import (
	"slices"
	"time"

	"github.com/bobmcallan/premia/internal/models"
)

// Aggregate recomputes every client-visible total from per-entity data and the
// given assumptions. Backend-supplied totals are ignored. The result depends
// only on the inputs, so repeated calls are bit-identical.
func Aggregate(data *models.OptionsData, a models.PremiumAssumptions, fetchedAt time.Time) *models.Projection {
	proj := &models.Projection{
		Accounts:    []models.AccountRow{},
		Symbols:     []models.SymbolRow{},
		Assumptions: a.Clone(),
		FetchedAt:   fetchedAt,
	}
	if data == nil {
		proj.Totals = portfolioTotals(nil, a)
		return proj
	}

	for _, acct := range data.Accounts {
		proj.Accounts = append(proj.Accounts, accountRow(acct, a))
	}

	symbols := data.Symbols
	if len(symbols) == 0 && len(data.Accounts) > 0 {
		symbols = RollupSymbols(data.Accounts)
	}
	for _, sym := range symbols {
		proj.Symbols = append(proj.Symbols, symbolRow(sym, a))
	}

	proj.Totals = portfolioTotals(proj.Symbols, a)
	return proj
}

func holdingRow(h models.Holding, a models.PremiumAssumptions) models.HoldingRow {
	fig := IncomeFor(h, a)
	return models.HoldingRow{
		Holding:       h,
		Premium:       fig.Premium,
		WeeklyIncome:  fig.Weekly,
		MonthlyIncome: fig.Monthly,
		YearlyIncome:  fig.Yearly,
	}
}

func accountRow(acct models.Account, a models.PremiumAssumptions) models.AccountRow {
	row := models.AccountRow{
		AccountID:   acct.AccountID,
		AccountName: acct.AccountName,
		AccountType: acct.AccountType,
		Holdings:    make([]models.HoldingRow, 0, len(acct.Holdings)),
	}

	weekly := 0.0
	for _, h := range acct.Holdings {
		hr := holdingRow(h, a)
		row.Holdings = append(row.Holdings, hr)
		row.TotalValue += h.Value
		row.TotalShares += h.Shares
		row.TotalOptions += h.Options
		weekly += hr.WeeklyIncome
	}

	// Monthly and yearly come from the summed weekly, not from summing holdings.
	fig := figuresFromWeekly(0, weekly, a.WeeksPerYear)
	row.WeeklyIncome = fig.Weekly
	row.MonthlyIncome = fig.Monthly
	row.YearlyIncome = fig.Yearly
	return row
}

func symbolRow(s models.SymbolSummary, a models.PremiumAssumptions) models.SymbolRow {
	premium, overridden := EffectivePremium(s, a)
	fig := IncomeFor(s, a)
	return models.SymbolRow{
		SymbolSummary: s,
		Premium:       premium,
		Overridden:    overridden,
		WeeklyIncome:  fig.Weekly,
		MonthlyIncome: fig.Monthly,
		YearlyIncome:  fig.Yearly,
	}
}

// portfolioTotals sums at symbol granularity so a symbol held in several
// accounts is counted once.
func portfolioTotals(symbols []models.SymbolRow, a models.PremiumAssumptions) models.PortfolioTotals {
	t := models.PortfolioTotals{WinRatePct: a.WinRatePct()}

	weekly := 0.0
	for _, s := range symbols {
		t.TotalValue += s.Value
		t.TotalShares += s.Shares
		t.TotalOptions += s.Options
		weekly += s.WeeklyIncome
	}

	fig := figuresFromWeekly(0, weekly, a.WeeksPerYear)
	t.WeeklyIncome = fig.Weekly
	t.MonthlyIncome = fig.Monthly
	t.YearlyIncome = fig.Yearly
	t.WeeklyYieldPct = YieldPct(t.WeeklyIncome, t.TotalValue)
	t.YearlyYieldPct = YieldPct(t.YearlyIncome, t.TotalValue)
	return t
}

// YieldPct returns income as a percentage of value, or 0 when value is not positive.
func YieldPct(income, value float64) float64 {
	if value <= 0 {
		return 0
	}
	return 100 * income / value
}

// RollupSymbols builds cross-account symbol summaries from holdings, in order
// of first appearance. Used when the backend sends accounts without symbols.
func RollupSymbols(accounts []models.Account) []models.SymbolSummary {
	index := make(map[string]int)
	var out []models.SymbolSummary

	for _, acct := range accounts {
		for _, h := range acct.Holdings {
			i, ok := index[h.Symbol]
			if !ok {
				i = len(out)
				index[h.Symbol] = i
				out = append(out, models.SymbolSummary{Symbol: h.Symbol, Accounts: []string{}})
			}
			s := &out[i]
			s.Shares += h.Shares
			s.Value += h.Value
			s.Options += h.Options
			if h.Price > 0 {
				s.Price = h.Price
			}
			if s.PremiumPerContract == nil && h.PremiumPerContract != nil {
				p := *h.PremiumPerContract
				s.PremiumPerContract = &p
			}
			if !slices.Contains(s.Accounts, acct.AccountName) {
				s.Accounts = append(s.Accounts, acct.AccountName)
			}
			s.AccountCount = len(s.Accounts)
		}
	}
	return out
}
