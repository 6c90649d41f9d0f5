package renderer

import (
	"github.com/etnz/mirror"
)

// Preview is the view of the orders investing an amount in a portfolio.
type Preview struct {
	Amount      mirror.Money
	Liquidate   bool
	Rows        []PreviewRow
	Total       mirror.Money
	Diagnostics []mirror.Diagnostic
}

// PreviewRow is one order.
type PreviewRow struct {
	Symbol string
	Target string // slice percent, "-" without slice
	Price  mirror.Money
	Order  string
	Before string
	After  string
}

// NewPreview creates the view of orders.
func NewPreview(amount mirror.Money, liquidate bool, orders []mirror.PreviewOrder, diags []mirror.Diagnostic) *Preview {
	p := &Preview{
		Amount:      amount,
		Liquidate:   liquidate,
		Rows:        make([]PreviewRow, 0, len(orders)),
		Total:       mirror.Dollars(0),
		Diagnostics: diags,
	}
	for _, o := range orders {
		row := PreviewRow{Symbol: o.Symbol, Target: "-", Price: o.SharePrice, Before: "-", After: "-"}
		if o.Slice != nil {
			row.Target = o.Slice.Percent.String()
		}
		switch o.Kind {
		case mirror.QuantityOrder:
			row.Order = "sell " + o.Qty.Neg().String() + " shares"
			p.Total = p.Total.Add(o.SharePrice.Mul(o.Qty))
		default:
			row.Order = o.Notional.SignedString()
			row.Before = o.Before.String()
			row.After = o.After.String()
			p.Total = p.Total.Add(o.Notional)
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

const previewMarkdownTemplate = `# Order Preview
{{ if .Liquidate }}
Liquidation of every held position.
{{- else }}
Investing **{{ signed .Amount }}**.
{{- end }}
{{- if .Rows }}

| Symbol | Target | Price | Order | Before | After |
|:---|---:|---:|---:|---:|---:|
{{- range .Rows }}
| {{ .Symbol }} | {{ .Target }} | {{ .Price }} | {{ .Order }} | {{ .Before }} | {{ .After }} |
{{- end }}
| **Total** | | | **{{ signed .Total }}** | | |
{{- else }}

No order to send.
{{- end }}
{{ diagnostics .Diagnostics -}}
`

// RenderPreview renders the Preview struct to a markdown string.
func RenderPreview(p *Preview) string {
	return renderTemplate("preview", previewMarkdownTemplate, p)
}
