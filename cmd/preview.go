package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/mirror"
	"github.com/etnz/mirror/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type previewCmd struct {
	orders    string
	actions   string
	db        string
	slices    string
	amount    string
	liquidate bool
}

func (*previewCmd) Name() string { return "preview" }
func (*previewCmd) Synopsis() string {
	return "preview the orders investing an amount in the portfolio"
}
func (*previewCmd) Usage() string {
	return `mfund preview -orders <orders.jsonl> -slices <slices.jsonl> -amount <amount> [-actions <actions.jsonl> | -db <prices.sqlite>]
mfund preview -orders <orders.jsonl> -slices <slices.jsonl> -liquidate

  Replays the order history, values the positions at the latest quotes, and displays the
  orders that invest amount (or withdraw it when negative) across the slices. With
  -liquidate, displays the orders selling every held share instead.
`
}

func (c *previewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.orders, "orders", "orders.jsonl", "Order history (JSONL format)")
	f.StringVar(&c.actions, "actions", "", "Corporate actions (JSONL format). Defaults to the price database.")
	f.StringVar(&c.db, "db", "", "Price database. Defaults to the configured one.")
	f.StringVar(&c.slices, "slices", "slices.jsonl", "Slices of the portfolio (JSONL format)")
	f.StringVar(&c.amount, "amount", "0", "Amount to invest, negative to withdraw")
	f.BoolVar(&c.liquidate, "liquidate", false, "sell every held share")
}

func (c *previewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -amount: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}
	slices, err := decodeFile(c.slices, mirror.DecodeSlices)
	if err != nil {
		return failure("loading slices: %v", err)
	}
	orders, err := decodeFile(c.orders, mirror.DecodeOrders)
	if err != nil {
		return failure("loading orders: %v", err)
	}
	source, closeSource, err := actionSource(cfg, log, c.actions, c.db)
	if err != nil {
		return failure("loading corporate actions: %v", err)
	}
	defer closeSource()

	var positions []mirror.Position
	var diags []mirror.Diagnostic
	res, err := newPlayer(cfg, log, source).Playback(ctx, orders)
	switch {
	case err == nil:
		positions, diags = res.Positions, res.Diagnostics
	case errors.Is(err, mirror.ErrEmptyHistory):
		// a new portfolio, everything is to buy
	default:
		return failure("replaying orders: %v", err)
	}

	sizer, err := newSizer(cfg)
	if err != nil {
		return failure("%v", err)
	}
	preview := mirror.Preview{Quotes: newQuotes(cfg, log), Sizer: sizer}
	previewOrders, more, err := preview.Orders(ctx, positions, slices, mirror.Dollars(amount), c.liquidate)
	if err != nil {
		return failure("previewing orders: %v", err)
	}

	md := renderer.RenderPreview(renderer.NewPreview(mirror.Dollars(amount), c.liquidate, previewOrders, append(diags, more...)))
	if err := printMarkdown(md); err != nil {
		return failure("%v", err)
	}
	return subcommands.ExitSuccess
}
