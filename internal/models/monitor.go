package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OptionType is the right of a sold option.
type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// Valid reports whether the option type is call or put.
func (t OptionType) Valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// Urgency tiers a roll alert.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// AckAction is the outcome recorded when acknowledging an alert.
type AckAction string

const (
	AckRolled  AckAction = "rolled"
	AckClosed  AckAction = "closed"
	AckIgnored AckAction = "ignored"
)

// Valid reports whether the action is one the backend accepts.
func (a AckAction) Valid() bool {
	return a == AckRolled || a == AckClosed || a == AckIgnored
}

// ExpirationLayout is the wire format of option expiration dates.
const ExpirationLayout = "2006-01-02"

// PositionID accepts either a JSON number or string and always marshals as a string.
type PositionID string

func (id *PositionID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = PositionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = PositionID(n.String())
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into position id", string(data))
}

// MonitoredPosition is a sold option position tracked for roll opportunities.
type MonitoredPosition struct {
	ID              PositionID `json:"id"`
	Symbol          string     `json:"symbol"`
	StrikePrice     float64    `json:"strike_price"`
	OptionType      OptionType `json:"option_type"`
	ExpirationDate  string     `json:"expiration_date"`
	Contracts       int        `json:"contracts"`
	OriginalPremium *float64   `json:"original_premium"`
	CurrentPremium  *float64   `json:"current_premium"`
	GainLossPercent *float64   `json:"gain_loss_percent"`
	GainLossAmount  *float64   `json:"gain_loss_amount,omitempty"`
	CanMonitor      bool       `json:"can_monitor"`
	DaysToExpiry    *int       `json:"days_to_expiry"`
	AccountName     string     `json:"account_name,omitempty"`
	Status          string     `json:"status,omitempty"`
}

// Key identifies a position for dedup. Falls back to the contract tuple and
// account when the backend has not assigned an ID, since the same contract can
// be held in more than one account.
func (p MonitoredPosition) Key() string {
	if p.ID != "" {
		return string(p.ID)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		NormalizeSymbol(p.Symbol),
		strconv.FormatFloat(p.StrikePrice, 'f', -1, 64),
		p.OptionType,
		p.ExpirationDate,
		strings.TrimSpace(p.AccountName))
}

// Expiration parses ExpirationDate. ok is false when absent or malformed.
func (p MonitoredPosition) Expiration() (time.Time, bool) {
	if p.ExpirationDate == "" {
		return time.Time{}, false
	}
	// Backends sometimes send a full timestamp; only the date part matters.
	date := p.ExpirationDate
	if len(date) > len(ExpirationLayout) {
		date = date[:len(ExpirationLayout)]
	}
	t, err := time.Parse(ExpirationLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PositionsResponse is the payload of GET /option-monitor/positions.
type PositionsResponse struct {
	Positions       []MonitoredPosition `json:"positions"`
	PriceUpdateTime *string             `json:"price_update_time,omitempty"`
	UsingLivePrices bool                `json:"using_live_prices"`
}

// NewPosition is the request body of POST /option-monitor/positions.
type NewPosition struct {
	Symbol          string     `json:"symbol"`
	StrikePrice     float64    `json:"strike_price"`
	OptionType      OptionType `json:"option_type"`
	ExpirationDate  string     `json:"expiration_date"`
	Contracts       int        `json:"contracts"`
	OriginalPremium float64    `json:"original_premium"`
	AccountName     string     `json:"account_name,omitempty"`
}

// Normalize trims and lower/upper-cases the free-text fields in place.
func (n *NewPosition) Normalize() {
	n.Symbol = NormalizeSymbol(n.Symbol)
	n.OptionType = OptionType(strings.ToLower(strings.TrimSpace(string(n.OptionType))))
	n.ExpirationDate = strings.TrimSpace(n.ExpirationDate)
	n.AccountName = strings.TrimSpace(n.AccountName)
}

// Validate returns the list of problems with the request, empty when valid.
func (n NewPosition) Validate() []string {
	var problems []string
	if n.Symbol == "" {
		problems = append(problems, "symbol is required")
	}
	if n.StrikePrice <= 0 {
		problems = append(problems, "strike_price must be positive")
	}
	if !n.OptionType.Valid() {
		problems = append(problems, "option_type must be call or put")
	}
	if _, err := time.Parse(ExpirationLayout, n.ExpirationDate); err != nil {
		problems = append(problems, "expiration_date must be YYYY-MM-DD")
	}
	if n.Contracts < 1 {
		problems = append(problems, "contracts must be at least 1")
	}
	if n.OriginalPremium < 0 {
		problems = append(problems, "original_premium must not be negative")
	}
	return problems
}

// RollAlert is a derived alert for a position that crossed the profit threshold.
type RollAlert struct {
	PositionID      PositionID `json:"position_id,omitempty"`
	Symbol          string     `json:"symbol"`
	StrikePrice     float64    `json:"strike_price"`
	OptionType      OptionType `json:"option_type"`
	ExpirationDate  string     `json:"expiration_date"`
	Contracts       int        `json:"contracts"`
	OriginalPremium float64    `json:"original_premium"`
	CurrentPremium  float64    `json:"current_premium"`
	ProfitAmount    float64    `json:"profit_amount"`
	ProfitPercent   float64    `json:"profit_percent"`
	DaysToExpiry    *int       `json:"days_to_expiry"`
	Urgency         Urgency    `json:"urgency"`
	Recommendation  string     `json:"recommendation"`
}

// AlertRecord is a historical alert as stored by the backend.
type AlertRecord struct {
	RollAlert
	ID           PositionID `json:"id"`
	Acknowledged bool       `json:"acknowledged"`
	ActionTaken  string     `json:"action_taken,omitempty"`
	CreatedAt    string     `json:"created_at,omitempty"`
}

// AlertsResponse is the payload of GET /option-monitor/alerts.
type AlertsResponse struct {
	Alerts []AlertRecord `json:"alerts"`
}

// CheckResult is the outcome of one roll check, local or remote.
type CheckResult struct {
	Success            bool        `json:"success"`
	Alerts             []RollAlert `json:"alerts"`
	PositionsChecked   int         `json:"positions_checked"`
	NewAlertsSaved     int         `json:"new_alerts_saved"`
	Message            string      `json:"message"`
	ProfitThresholdPct float64     `json:"profit_threshold_pct,omitempty"`
}
