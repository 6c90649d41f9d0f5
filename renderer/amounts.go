package renderer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderAmountsMarkdown renders the order amount of each slice next to its weight and value.
func OrderAmountsMarkdown(weights, values, amounts []decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Order Amounts\n\n")
	fmt.Fprintln(&b, "| Slice | Weight | Value | Order | Value After |")
	fmt.Fprintln(&b, "|---:|---:|---:|---:|---:|")

	total := decimal.Zero
	for i := range amounts {
		fmt.Fprintf(&b, "| %d | %s%% | %s | %s | %s |\n",
			i+1,
			weights[i].String(),
			values[i].StringFixed(2),
			signed(amounts[i]),
			values[i].Add(amounts[i]).StringFixed(2),
		)
		total = total.Add(amounts[i])
	}
	fmt.Fprintf(&b, "| **Total** | | | **%s** | |\n", signed(total))
	return b.String()
}

func signed(d decimal.Decimal) string {
	d = d.Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
