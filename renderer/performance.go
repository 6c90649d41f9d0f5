package renderer

import (
	"github.com/etnz/mirror"
	"github.com/etnz/mirror/date"
)

// Performance is the view of the cost and value of a portfolio over days.
type Performance struct {
	From, To  date.Date
	Rows      []PerformanceRow
	Dividends mirror.Money
}

// PerformanceRow is one trading day.
type PerformanceRow struct {
	On    date.Date
	Cost  mirror.Money
	Value mirror.Money
	Gain  mirror.Money
}

// NewPerformance creates the view of a performance series.
func NewPerformance(r date.Range, perf mirror.Performance) *Performance {
	p := &Performance{From: r.From, To: r.To, Dividends: perf.Dividends, Rows: make([]PerformanceRow, len(perf.Points))}
	for i, pt := range perf.Points {
		p.Rows[i] = PerformanceRow{On: pt.On, Cost: pt.Cost, Value: pt.Value, Gain: pt.Value.Sub(pt.Cost)}
	}
	return p
}

const performanceMarkdownTemplate = `# Performance from {{ .From }} to {{ .To }}
{{- if .Rows }}

| Day | Cost | Value | Gain |
|:---|---:|---:|---:|
{{- range .Rows }}
| {{ .On }} | {{ .Cost }} | {{ .Value }} | {{ signed .Gain }} |
{{- end }}
{{- else }}

No priced day in range.
{{- end }}

Dividends: **{{ .Dividends }}**
`

// RenderPerformance renders the Performance struct to a markdown string.
func RenderPerformance(p *Performance) string {
	return renderTemplate("performance", performanceMarkdownTemplate, p)
}
