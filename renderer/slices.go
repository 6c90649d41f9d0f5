package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/mirror"
)

// SliceChangesMarkdown renders the slices added, modified and removed by a fund update.
func SliceChangesMarkdown(changes mirror.SliceChanges) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Slice Changes\n\n")
	if len(changes.Added)+len(changes.Modified)+len(changes.Removed) == 0 {
		fmt.Fprintf(&b, "No change, %d slices.\n", len(changes.Slices))
		return b.String()
	}
	section := func(title string, slices []mirror.Slice) {
		ConditionalBlock(&b, func(w io.Writer) bool {
			fmt.Fprintf(w, "## %s\n\n", title)
			fmt.Fprintln(w, "| Symbol | Name | Percent |")
			fmt.Fprintln(w, "|:---|:---|---:|")
			for _, s := range slices {
				fmt.Fprintf(w, "| %s | %s | %s |\n", s.Asset.Symbol, s.Asset.Name, s.Percent)
			}
			fmt.Fprintln(w)
			return len(slices) > 0
		})
	}
	section("Added", changes.Added)
	section("Modified", changes.Modified)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintf(w, "## Removed\n\n")
		fmt.Fprintln(w, "| Symbol | Name | Reason |")
		fmt.Fprintln(w, "|:---|:---|:---|")
		for _, s := range changes.Removed {
			fmt.Fprintf(w, "| %s | %s | %s |\n", s.Asset.Symbol, s.Asset.Name, s.DeletedReason)
		}
		fmt.Fprintln(w)
		return len(changes.Removed) > 0
	})
	fmt.Fprintf(&b, "%d slices.\n", len(changes.Slices))
	return b.String()
}
