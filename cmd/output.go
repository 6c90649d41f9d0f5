package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// printMarkdown writes a markdown report to stdout in the selected output format.
func printMarkdown(md string) error {
	switch *output {
	case "markdown", "md":
		_, err := fmt.Fprint(stdout, md)
		return err
	case "html":
		return goldmark.New(goldmark.WithExtensions(extension.GFM)).Convert([]byte(md), stdout)
	case "term":
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err != nil {
			return err
		}
		out, err := r.Render(md)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(stdout, out)
		return err
	default:
		return fmt.Errorf("unknown output format %q", *output)
	}
}
