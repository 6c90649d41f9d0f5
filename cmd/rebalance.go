package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/mirror"
	"github.com/etnz/mirror/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type rebalanceCmd struct {
	weights string
	values  string
	amount  string
	raw     bool
}

func (*rebalanceCmd) Name() string { return "rebalance" }
func (*rebalanceCmd) Synopsis() string {
	return "compute the order amount of each slice for a cash amount"
}
func (*rebalanceCmd) Usage() string {
	return `mfund rebalance -weights <w1,w2,...> -values <v1,v2,...> [-amount <amount>] [-raw]

  Computes how much to buy (or sell) of each slice so that investing amount (or withdrawing
  it when negative) moves the slices toward their target weights. Weights are percents
  summing to 100. Buy orders below the configured minimum order size are avoided, unless
  -raw is set.

Usage Examples:
$ mfund rebalance -weights 50,50 -values 40,60 -amount 20
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.weights, "weights", "", "Target weight of each slice, in percent, comma separated")
	f.StringVar(&c.values, "values", "", "Current value of each slice, comma separated")
	f.StringVar(&c.amount, "amount", "0", "Amount to invest, negative to withdraw")
	f.BoolVar(&c.raw, "raw", false, "ignore the minimum order size")
}

func parseDecimals(s string) ([]decimal.Decimal, error) {
	items := splitList(s)
	res := make([]decimal.Decimal, len(items))
	for i, item := range items {
		d, err := decimal.NewFromString(item)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", item, err)
		}
		res[i] = d
	}
	return res, nil
}

func (c *rebalanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	weights, err := parseDecimals(c.weights)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -weights: %v\n", err)
		return subcommands.ExitUsageError
	}
	values, err := parseDecimals(c.values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -values: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -amount: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}
	if total := decimal.Sum(decimal.Zero, weights...); !total.Equal(decimal.NewFromInt(100)) {
		log.Warn().Stringer("total", total).Msg("weights do not sum to 100")
	}

	var amounts []decimal.Decimal
	if c.raw {
		amounts, err = mirror.Rebalance(weights, values, amount)
	} else {
		var sizer mirror.Sizer
		if sizer, err = newSizer(cfg); err == nil {
			amounts, err = sizer.OrderAmounts(weights, values, amount)
		}
	}
	if err != nil {
		return failure("%v", err)
	}
	if err := printMarkdown(renderer.OrderAmountsMarkdown(weights, values, amounts)); err != nil {
		return failure("%v", err)
	}
	return subcommands.ExitSuccess
}
