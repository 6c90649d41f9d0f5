package renderer

import (
	"github.com/etnz/mirror"
	"github.com/etnz/mirror/date"
)

// Holding is the view of the positions of a portfolio on a day.
type Holding struct {
	Date date.Date `json:"date"`
	// Valued is set when positions carry a market value.
	Valued        bool                `json:"valued"`
	Positions     []HoldingPosition   `json:"positions"`
	Cash          mirror.Money        `json:"cash"`
	TotalCost     mirror.Money        `json:"totalCost"`
	TotalValue    mirror.Money        `json:"totalValue"`
	TotalRealized mirror.Money        `json:"totalRealized"`
	Diagnostics   []mirror.Diagnostic `json:"-"`
}

// HoldingPosition is one open position.
type HoldingPosition struct {
	Symbol        string          `json:"symbol"`
	Quantity      mirror.Quantity `json:"quantity"`
	AvgCost       mirror.Money    `json:"avgCost"`
	CostBasis     mirror.Money    `json:"costBasis"`
	Price         mirror.Money    `json:"price"`
	MarketValue   mirror.Money    `json:"marketValue"`
	UnrealizedPnL mirror.Money    `json:"unrealizedPnl"`
}

// NewHolding creates the view of positions at cost. Closed positions only count in the
// realized total.
func NewHolding(on date.Date, positions []mirror.Position, cash mirror.Money, diags []mirror.Diagnostic) *Holding {
	h := &Holding{
		Date:          on,
		Cash:          cash,
		TotalCost:     mirror.Dollars(0),
		TotalValue:    mirror.Dollars(0),
		TotalRealized: mirror.Dollars(0),
		Positions:     make([]HoldingPosition, 0, len(positions)),
		Diagnostics:   diags,
	}
	for _, p := range positions {
		h.TotalRealized = h.TotalRealized.Add(p.RealizedPnL)
		if p.Qty.IsZero() {
			continue
		}
		h.TotalCost = h.TotalCost.Add(p.CostBasis)
		h.Positions = append(h.Positions, HoldingPosition{
			Symbol:    p.Symbol,
			Quantity:  p.Qty,
			AvgCost:   p.AvgCostPerShare,
			CostBasis: p.CostBasis,
		})
	}
	return h
}

// NewValuedHolding creates the view of positions at their market value.
func NewValuedHolding(on date.Date, valued []mirror.ValuedPosition, cash mirror.Money, diags []mirror.Diagnostic) *Holding {
	positions := make([]mirror.Position, len(valued))
	for i, v := range valued {
		positions[i] = v.Position
	}
	h := NewHolding(on, positions, cash, diags)
	h.Valued = true

	i := 0
	for _, v := range valued {
		if v.Qty.IsZero() {
			continue
		}
		h.Positions[i].Price = v.SharePrice
		h.Positions[i].MarketValue = v.MarketValue
		h.Positions[i].UnrealizedPnL = v.UnrealizedPnL
		h.TotalValue = h.TotalValue.Add(v.MarketValue)
		i++
	}
	return h
}

const holdingMarkdownTemplate = `# Holding on {{ .Date }}
{{- if .Positions }}

{{ if .Valued -}}
| Symbol | Quantity | Avg. Cost | Cost Basis | Price | Market Value | Unrealized |
|:---|---:|---:|---:|---:|---:|---:|
{{- range .Positions }}
| {{ .Symbol }} | {{ .Quantity }} | {{ .AvgCost }} | {{ .CostBasis }} | {{ .Price }} | {{ .MarketValue }} | {{ signed .UnrealizedPnL }} |
{{- end }}
| **Total** | | | **{{ .TotalCost }}** | | **{{ .TotalValue }}** | |
{{- else -}}
| Symbol | Quantity | Avg. Cost | Cost Basis |
|:---|---:|---:|---:|
{{- range .Positions }}
| {{ .Symbol }} | {{ .Quantity }} | {{ .AvgCost }} | {{ .CostBasis }} |
{{- end }}
| **Total** | | | **{{ .TotalCost }}** |
{{- end }}
{{- else }}

No open position.
{{- end }}

| Cash from corporate actions | Realized Gain |
|---:|---:|
| {{ .Cash }} | {{ signed .TotalRealized }} |
{{ diagnostics .Diagnostics -}}
`

// RenderHolding renders the Holding struct to a markdown string.
func RenderHolding(h *Holding) string {
	return renderTemplate("holding", holdingMarkdownTemplate, h)
}
