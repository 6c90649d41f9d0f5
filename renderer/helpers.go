package renderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/etnz/mirror"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// writeDiagnostics writes the warnings section, nothing if there is no diagnostic.
func writeDiagnostics(w io.Writer, diags []mirror.Diagnostic) {
	ConditionalBlock(w, func(w io.Writer) bool {
		fmt.Fprintf(w, "\n## Warnings\n\n")
		for _, d := range diags {
			if d.On.IsZero() {
				fmt.Fprintf(w, "- **%s** %s: %s\n", d.Kind, d.Symbol, d.Message)
				continue
			}
			fmt.Fprintf(w, "- **%s** %s on %s: %s\n", d.Kind, d.Symbol, d.On, d.Message)
		}
		return len(diags) > 0
	})
}
