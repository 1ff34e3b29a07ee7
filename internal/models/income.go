// Package models defines data structures for Premia
package models

import (
	"strings"
	"time"
)

// UtilizationStatus describes how many of a holding's available contracts are sold.
type UtilizationStatus string

const (
	UtilizationNone    UtilizationStatus = "none"
	UtilizationPartial UtilizationStatus = "partial"
	UtilizationFull    UtilizationStatus = "full"
)

// IncomeSource is anything the premium model can project income for:
// a single holding or a cross-account symbol rollup.
type IncomeSource interface {
	IncomeSymbol() string
	ContractsAvailable() int
	StoredPremium() *float64
}

// Holding is one symbol position inside one account.
// Value is the backend-supplied market value and is trusted over Shares*Price.
type Holding struct {
	Symbol             string            `json:"symbol"`
	Shares             int               `json:"shares"`
	Price              float64           `json:"price"`
	Value              float64           `json:"value"`
	Options            int               `json:"options"` // sellable contracts, floor(shares/100), computed upstream
	PremiumPerContract *float64          `json:"premium_per_contract,omitempty"`
	SoldContracts      *int              `json:"sold_contracts,omitempty"`
	UnsoldContracts    *int              `json:"unsold_contracts,omitempty"`
	UtilizationStatus  UtilizationStatus `json:"utilization_status,omitempty"`
}

func (h Holding) IncomeSymbol() string { return h.Symbol }
func (h Holding) ContractsAvailable() int { return h.Options }
func (h Holding) StoredPremium() *float64 { return h.PremiumPerContract }

// ContractsConsistent reports whether sold + unsold equals options.
// Holdings without both counts are considered consistent.
func (h Holding) ContractsConsistent() bool {
	if h.SoldContracts == nil || h.UnsoldContracts == nil {
		return true
	}
	return *h.SoldContracts+*h.UnsoldContracts == h.Options
}

// Account owns an ordered set of holdings. The Total* fields are whatever the
// backend last sent; projections recompute them from the holdings.
type Account struct {
	AccountID     string    `json:"account_id"`
	AccountName   string    `json:"account_name"`
	AccountType   string    `json:"account_type"` // brokerage, retirement, ira, roth_ira, ...
	Holdings      []Holding `json:"holdings"`
	TotalValue    float64   `json:"total_value,omitempty"`
	TotalShares   int       `json:"total_shares,omitempty"`
	TotalOptions  int       `json:"total_options,omitempty"`
	WeeklyIncome  float64   `json:"weekly_income,omitempty"`
	MonthlyIncome float64   `json:"monthly_income,omitempty"`
	YearlyIncome  float64   `json:"yearly_income,omitempty"`
}

// SymbolSummary rolls up every holding of one symbol across accounts.
type SymbolSummary struct {
	Symbol             string            `json:"symbol"`
	Shares             int               `json:"shares"`
	Price              float64           `json:"price"`
	Value              float64           `json:"value"`
	Options            int               `json:"options"`
	PremiumPerContract *float64          `json:"premium_per_contract,omitempty"`
	SoldContracts      *int              `json:"sold_contracts,omitempty"`
	UnsoldContracts    *int              `json:"unsold_contracts,omitempty"`
	UtilizationStatus  UtilizationStatus `json:"utilization_status,omitempty"`
	AccountCount       int               `json:"account_count"`
	Accounts           []string          `json:"accounts"`
}

func (s SymbolSummary) IncomeSymbol() string { return s.Symbol }
func (s SymbolSummary) ContractsAvailable() int { return s.Options }
func (s SymbolSummary) StoredPremium() *float64 { return s.PremiumPerContract }

// PortfolioSummary is the backend's own portfolio rollup. Kept for display
// comparison only; projections never read it.
type PortfolioSummary struct {
	TotalValue    float64 `json:"total_value"`
	TotalShares   int     `json:"total_shares"`
	TotalOptions  int     `json:"total_options"`
	WeeklyIncome  float64 `json:"weekly_income"`
	MonthlyIncome float64 `json:"monthly_income"`
	YearlyIncome  float64 `json:"yearly_income"`
}

// OptionsData is the payload of POST /income-projection-with-status.
type OptionsData struct {
	Accounts         []Account          `json:"accounts"`
	Symbols          []SymbolSummary    `json:"symbols"`
	PortfolioSummary PortfolioSummary   `json:"portfolio_summary"`
	Params           PremiumAssumptions `json:"params"`
}

// PremiumAssumptions are the user-editable inputs to every income projection.
// SymbolPremiums is sparse: a missing symbol falls back to the entity's own
// premium, then DefaultPremium. A present zero is an explicit override.
type PremiumAssumptions struct {
	DefaultPremium float64            `json:"default_premium"`
	SymbolPremiums map[string]float64 `json:"symbol_premiums"`
	Delta          int                `json:"delta"`
	WeeksPerYear   int                `json:"weeks_per_year"`
}

// WinRatePct is the assumed win rate shown next to delta.
func (a PremiumAssumptions) WinRatePct() int {
	return 100 - a.Delta
}

// Clone returns a deep copy so callers never share the override map.
func (a PremiumAssumptions) Clone() PremiumAssumptions {
	out := a
	out.SymbolPremiums = make(map[string]float64, len(a.SymbolPremiums))
	for k, v := range a.SymbolPremiums {
		out.SymbolPremiums[k] = v
	}
	return out
}

// MergeSymbolPremiums overlays incoming overrides onto the existing map.
// Keys absent from incoming are left untouched.
func (a *PremiumAssumptions) MergeSymbolPremiums(incoming map[string]float64) {
	if len(incoming) == 0 {
		return
	}
	if a.SymbolPremiums == nil {
		a.SymbolPremiums = make(map[string]float64, len(incoming))
	}
	for k, v := range incoming {
		a.SymbolPremiums[NormalizeSymbol(k)] = v
	}
}

// NormalizeSymbol upper-cases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// AssumptionsPatch is a partial user edit. Nil fields are left unchanged.
type AssumptionsPatch struct {
	DefaultPremium *float64           `json:"default_premium,omitempty"`
	SymbolPremiums map[string]float64 `json:"symbol_premiums,omitempty"`
	RemoveSymbols  []string           `json:"remove_symbols,omitempty"`
	Delta          *int               `json:"delta,omitempty"`
	WeeksPerYear   *int               `json:"weeks_per_year,omitempty"`
}

// IncomeFigures is the premium model output for one entity.
type IncomeFigures struct {
	Premium float64 `json:"premium"`
	Weekly  float64 `json:"weekly_income"`
	Monthly float64 `json:"monthly_income"`
	Yearly  float64 `json:"yearly_income"`
}

// HoldingRow is a holding enriched with its projected income.
type HoldingRow struct {
	Holding
	Premium       float64 `json:"effective_premium"`
	WeeklyIncome  float64 `json:"weekly_income"`
	MonthlyIncome float64 `json:"monthly_income"`
	YearlyIncome  float64 `json:"yearly_income"`
}

// AccountRow is an account with recomputed totals.
type AccountRow struct {
	AccountID     string       `json:"account_id"`
	AccountName   string       `json:"account_name"`
	AccountType   string       `json:"account_type"`
	Holdings      []HoldingRow `json:"holdings"`
	TotalValue    float64      `json:"total_value"`
	TotalShares   int          `json:"total_shares"`
	TotalOptions  int          `json:"total_options"`
	WeeklyIncome  float64      `json:"weekly_income"`
	MonthlyIncome float64      `json:"monthly_income"`
	YearlyIncome  float64      `json:"yearly_income"`
}

// SymbolRow is a symbol rollup enriched with its projected income.
type SymbolRow struct {
	SymbolSummary
	Premium       float64 `json:"effective_premium"`
	Overridden    bool    `json:"premium_overridden"`
	WeeklyIncome  float64 `json:"weekly_income"`
	MonthlyIncome float64 `json:"monthly_income"`
	YearlyIncome  float64 `json:"yearly_income"`
}

// PortfolioTotals are the portfolio-level projection figures.
type PortfolioTotals struct {
	TotalValue     float64 `json:"total_value"`
	TotalShares    int     `json:"total_shares"`
	TotalOptions   int     `json:"total_options"`
	WeeklyIncome   float64 `json:"weekly_income"`
	MonthlyIncome  float64 `json:"monthly_income"`
	YearlyIncome   float64 `json:"yearly_income"`
	WeeklyYieldPct float64 `json:"weekly_yield_pct"`
	YearlyYieldPct float64 `json:"yearly_yield_pct"`
	WinRatePct     int     `json:"win_rate_pct"`
}

// Projection is the full recomputed view served to the dashboard.
type Projection struct {
	Accounts    []AccountRow       `json:"accounts"`
	Symbols     []SymbolRow        `json:"symbols"`
	Totals      PortfolioTotals    `json:"totals"`
	Assumptions PremiumAssumptions `json:"assumptions"`
	FetchedAt   time.Time          `json:"fetched_at"`
}
