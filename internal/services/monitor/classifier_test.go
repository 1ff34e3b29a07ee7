package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/premia/internal/models"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int { return &v }

var testNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func position(original, current float64, contracts int, dte *int) models.MonitoredPosition {
	return models.MonitoredPosition{
		ID:              "17",
		Symbol:          "AAPL",
		StrikePrice:     180,
		OptionType:      models.OptionTypeCall,
		ExpirationDate:  "2026-03-20",
		Contracts:       contracts,
		OriginalPremium: f64(original),
		CurrentPremium:  f64(current),
		CanMonitor:      true,
		DaysToExpiry:    dte,
	}
}

func TestClassify_ThresholdMet(t *testing.T) {
	alert := Classify(position(4.50, 0.50, 2, intp(10)), 80, testNow)
	require.NotNil(t, alert)

	assert.InDelta(t, 88.89, alert.ProfitPercent, 0.001)
	assert.Equal(t, 800.0, alert.ProfitAmount)
	assert.Equal(t, models.PositionID("17"), alert.PositionID)
	assert.Equal(t, 4.50, alert.OriginalPremium)
	assert.Equal(t, 0.50, alert.CurrentPremium)
	assert.Equal(t, 2, alert.Contracts)
	require.NotNil(t, alert.DaysToExpiry)
	assert.Equal(t, 10, *alert.DaysToExpiry)
	assert.Equal(t, models.UrgencyLow, alert.Urgency)
	assert.Equal(t, "Monitor: profit target reached, time remains", alert.Recommendation)
}

func TestClassify_ThresholdNotMet(t *testing.T) {
	assert.Nil(t, Classify(position(4.50, 1.20, 2, intp(10)), 80, testNow))
}

func TestClassify_ExactlyAtThreshold(t *testing.T) {
	alert := Classify(position(5.00, 1.00, 1, intp(10)), 80, testNow)
	require.NotNil(t, alert)
	assert.Equal(t, 80.0, alert.ProfitPercent)
}

func TestClassify_FailsClosed(t *testing.T) {
	zero := position(0, 0, 1, intp(3))
	assert.Nil(t, Classify(zero, 80, testNow), "zero original premium")

	unmonitored := position(4.50, 0.10, 1, intp(3))
	unmonitored.CanMonitor = false
	assert.Nil(t, Classify(unmonitored, 80, testNow), "can_monitor false")

	noPrice := position(4.50, 0, 1, intp(3))
	noPrice.CurrentPremium = nil
	assert.Nil(t, Classify(noPrice, 80, testNow), "no current premium")

	noOriginal := position(4.50, 0.10, 1, intp(3))
	noOriginal.OriginalPremium = nil
	assert.Nil(t, Classify(noOriginal, 80, testNow), "no original premium")

	loss := position(2.00, 3.00, 1, intp(3))
	assert.Nil(t, Classify(loss, 50, testNow), "position at a loss")
}

func TestClassify_UrgencyTiers(t *testing.T) {
	tests := []struct {
		name           string
		original       float64
		current        float64
		dte            *int
		urgency        models.Urgency
		recommendation string
	}{
		{"high profit with time left", 5.00, 0.25, intp(20), models.UrgencyHigh, "Roll now: 90%+ of premium captured"},
		{"near expiry", 5.00, 0.75, intp(1), models.UrgencyHigh, "Roll now: expiring in 1 day(s)"},
		{"two days counts as near", 5.00, 0.75, intp(2), models.UrgencyHigh, "Roll now: expiring in 2 day(s)"},
		{"expiry day", 5.00, 0.75, intp(0), models.UrgencyHigh, "Roll now: expires today"},
		{"high profit and near expiry", 5.00, 0.25, intp(1), models.UrgencyHigh, "Roll now: expiring in 1 day(s)"},
		{"within a week", 5.00, 0.75, intp(5), models.UrgencyMedium, "Consider rolling: profit target reached, 5 days to expiry"},
		{"seven days", 5.00, 0.75, intp(7), models.UrgencyMedium, "Consider rolling: profit target reached, 7 days to expiry"},
		{"plenty of time", 5.00, 0.75, intp(8), models.UrgencyLow, "Monitor: profit target reached, time remains"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := Classify(position(tt.original, tt.current, 1, tt.dte), 80, testNow)
			require.NotNil(t, alert)
			assert.Equal(t, tt.urgency, alert.Urgency)
			assert.Equal(t, tt.recommendation, alert.Recommendation)
		})
	}
}

func TestClassify_DaysToExpiryFromDate(t *testing.T) {
	p := position(5.00, 0.75, 1, nil)
	p.ExpirationDate = "2026-03-13"

	alert := Classify(p, 80, testNow)
	require.NotNil(t, alert)
	require.NotNil(t, alert.DaysToExpiry)
	assert.Equal(t, 3, *alert.DaysToExpiry)
	assert.Equal(t, models.UrgencyMedium, alert.Urgency)
}

func TestClassify_UnknownExpiryUsesProfitOnly(t *testing.T) {
	p := position(5.00, 0.75, 1, nil)
	p.ExpirationDate = "soon"

	alert := Classify(p, 80, testNow)
	require.NotNil(t, alert)
	assert.Nil(t, alert.DaysToExpiry)
	assert.Equal(t, models.UrgencyLow, alert.Urgency)

	p.CurrentPremium = f64(0.10)
	alert = Classify(p, 80, testNow)
	require.NotNil(t, alert)
	assert.Equal(t, models.UrgencyHigh, alert.Urgency)
	assert.Equal(t, "Roll now: 90%+ of premium captured", alert.Recommendation)
}

func TestClassify_AcceptsAnyPositiveThreshold(t *testing.T) {
	p := position(4.00, 3.00, 3, intp(30))
	alert := Classify(p, 25, testNow)
	require.NotNil(t, alert)
	assert.Equal(t, 25.0, alert.ProfitPercent)
	assert.Equal(t, 300.0, alert.ProfitAmount)

	assert.Nil(t, Classify(p, 25.5, testNow))
}

func TestDaysToExpiry_PrefersBackendValue(t *testing.T) {
	p := position(1, 1, 1, intp(42))
	d := DaysToExpiry(p, testNow)
	require.NotNil(t, d)
	assert.Equal(t, 42, *d)

	// The returned pointer is a copy
	*d = 0
	assert.Equal(t, 42, *p.DaysToExpiry)
}

func TestDaysToExpiry_PastExpirationIsNegative(t *testing.T) {
	p := position(1, 1, 1, nil)
	p.ExpirationDate = "2026-03-08"
	d := DaysToExpiry(p, testNow)
	require.NotNil(t, d)
	assert.Equal(t, -2, *d)
}

func TestRecommendation_MediumWithoutExpiry(t *testing.T) {
	var got string
	require.NotPanics(t, func() { got = Recommendation(models.UrgencyMedium, 85, nil) })
	assert.Equal(t, "Consider rolling: profit target reached", got)

	assert.Equal(t, "Consider rolling: profit target reached, 5 days to expiry",
		Recommendation(models.UrgencyMedium, 85, intp(5)))
}
