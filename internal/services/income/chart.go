package income

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/premia/internal/models"
)

// ErrNoIncome is returned when no symbol has projected income to draw.
var ErrNoIncome = errors.New("no projected income to chart")

// RenderIncomeChart renders a PNG bar chart of projected yearly income per
// symbol. Symbols with no income are left out.
func RenderIncomeChart(symbols []models.SymbolRow) ([]byte, error) {
	bars := make([]chart.Value, 0, len(symbols))
	maxIncome := 0.0
	for _, s := range symbols {
		if s.YearlyIncome <= 0 {
			continue
		}
		bars = append(bars, chart.Value{
			Label: s.Symbol,
			Value: s.YearlyIncome,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
				StrokeColor: drawing.ColorFromHex("1d4ed8"),
				StrokeWidth: 1,
			},
		})
		if s.YearlyIncome > maxIncome {
			maxIncome = s.YearlyIncome
		}
	}
	if len(bars) == 0 {
		return nil, ErrNoIncome
	}

	const barWidth, barSpacing = 40, 20
	width := 900
	if need := len(bars)*(barWidth+barSpacing) + 200; need > width {
		width = need
	}

	graph := chart.BarChart{
		Title:      "Projected Yearly Income",
		Width:      width,
		Height:     400,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxIncome * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.1fk", f/1000)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
