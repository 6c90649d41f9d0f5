package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/mirror"
	"github.com/etnz/mirror/date"
	"github.com/etnz/mirror/renderer"
	"github.com/google/subcommands"
)

type performanceCmd struct {
	orders  string
	actions string
	db      string
	from    string
	to      string
	period  string
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "display the daily cost and value of the portfolio" }
func (*performanceCmd) Usage() string {
	return `mfund performance -orders <orders.jsonl> [-db <prices.sqlite>] [-actions <actions.jsonl>] [-to <date>] [-from <date> | -p <period>]

  Replays the order history and values the held positions at the close of every trading
  day of the range, using the historical prices of the price database. The range ends on
  -to and starts on -from, or one period before -to.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.orders, "orders", "orders.jsonl", "Order history (JSONL format)")
	f.StringVar(&c.actions, "actions", "", "Corporate actions (JSONL format). Defaults to the price database.")
	f.StringVar(&c.db, "db", "", "Price database. Defaults to the configured one.")
	f.StringVar(&c.from, "from", "", "First day of the range.")
	f.StringVar(&c.to, "to", date.Today().String(), "Last day of the range.")
	f.StringVar(&c.period, "p", "monthly", "Length of the range when -from is not set: daily, weekly or monthly.")
}

func (c *performanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to, err := date.Parse(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
		return subcommands.ExitUsageError
	}
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -p: %v\n", err)
		return subcommands.ExitUsageError
	}
	r := date.Trailing(to, period)
	if c.from != "" {
		if r.From, err = date.Parse(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if r.From.After(r.To) {
		fmt.Fprintf(os.Stderr, "Error: empty range %s..%s\n", r.From, r.To)
		return subcommands.ExitUsageError
	}

	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}
	orders, err := decodeFile(c.orders, mirror.DecodeOrders)
	if err != nil {
		return failure("loading orders: %v", err)
	}
	db, err := openPriceDB(cfg, log, c.db)
	if err != nil {
		return failure("opening price database: %v", err)
	}
	defer db.Close()

	var source mirror.ActionSource = db
	if c.actions != "" {
		actions, err := decodeFile(c.actions, mirror.DecodeCorporateActions)
		if err != nil {
			return failure("loading corporate actions: %v", err)
		}
		source = mirror.NewActionStore(mirror.DropSplitDayDividends(actions))
	}

	perf, err := newPlayer(cfg, log, source).Performance(ctx, orders, db, r)
	if err != nil {
		return failure("computing performance: %v", err)
	}
	if err := printMarkdown(renderer.RenderPerformance(renderer.NewPerformance(r, perf))); err != nil {
		return failure("%v", err)
	}
	return subcommands.ExitSuccess
}
