// Package renderer turns replay, preview and rebalance results into markdown reports.
package renderer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/etnz/mirror"
)

var funcs = template.FuncMap{
	"signed": func(m mirror.Money) string { return m.SignedString() },
	"diagnostics": func(diags []mirror.Diagnostic) string {
		var b strings.Builder
		writeDiagnostics(&b, diags)
		return b.String()
	},
}

// renderTemplate executes the markdown template text on data.
func renderTemplate(name, text string, data any) string {
	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}
