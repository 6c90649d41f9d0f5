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

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	orders      string
	actions     string
	db          string
	date        string
	value       bool
	json        bool
	slices      string
	byPortfolio bool
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the positions replayed from the order history" }
func (*holdingCmd) Usage() string {
	return `mfund holding -orders <orders.jsonl> [-actions <actions.jsonl> | -db <prices.sqlite>] [-d <date>] [-value] [-json]
mfund holding -orders <orders.jsonl> -slices <slices.jsonl> -by-portfolio

  Replays the filled orders and the corporate actions of their symbols, and displays the
  positions at the end of a given day. With -value, positions are valued at the latest quotes.
  With -by-portfolio, orders are split by the portfolio owning their slice, and the latest
  positions of each portfolio are displayed.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.orders, "orders", "orders.jsonl", "Order history (JSONL format)")
	f.StringVar(&c.actions, "actions", "", "Corporate actions (JSONL format). Defaults to the price database.")
	f.StringVar(&c.db, "db", "", "Price database. Defaults to the configured one.")
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the holding.")
	f.BoolVar(&c.value, "value", false, "value positions at the latest quotes")
	f.BoolVar(&c.json, "json", false, "print positions as JSON lines")
	f.StringVar(&c.slices, "slices", "", "Slices of the portfolios (JSONL format), for -by-portfolio")
	f.BoolVar(&c.byPortfolio, "by-portfolio", false, "display one holding per portfolio")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.byPortfolio && c.slices == "" {
		fmt.Fprintln(os.Stderr, "Error: -by-portfolio requires -slices.")
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
	source, closeSource, err := actionSource(cfg, log, c.actions, c.db)
	if err != nil {
		return failure("loading corporate actions: %v", err)
	}
	defer closeSource()
	player := newPlayer(cfg, log, source)

	if c.byPortfolio {
		return c.portfolios(ctx, player, orders)
	}

	res, err := player.Playback(ctx, orders, on)
	if err != nil {
		return failure("replaying orders: %v", err)
	}
	snap := res.Snapshots[0]

	if c.json {
		if err := mirror.EncodePositions(stdout, snap.Positions); err != nil {
			return failure("%v", err)
		}
		return subcommands.ExitSuccess
	}

	h := renderer.NewHolding(on, snap.Positions, snap.Cash, res.Diagnostics)
	if c.value {
		valued, diags, err := mirror.AddMarketValues(ctx, newQuotes(cfg, log), snap.Positions)
		if err != nil {
			return failure("valuing positions: %v", err)
		}
		h = renderer.NewValuedHolding(on, valued, snap.Cash, append(res.Diagnostics, diags...))
	}
	if err := printMarkdown(renderer.RenderHolding(h)); err != nil {
		return failure("%v", err)
	}
	return subcommands.ExitSuccess
}

// portfolios replays each portfolio of the slices file, up to now.
func (c *holdingCmd) portfolios(ctx context.Context, player *mirror.Player, orders []mirror.Order) subcommands.ExitStatus {
	slices, err := decodeFile(c.slices, mirror.DecodeSlices)
	if err != nil {
		return failure("loading slices: %v", err)
	}
	var portfolios []mirror.Portfolio
	index := make(map[string]int)
	for _, s := range slices {
		i, ok := index[s.PortfolioID]
		if !ok {
			i = len(portfolios)
			index[s.PortfolioID] = i
			portfolios = append(portfolios, mirror.Portfolio{ID: s.PortfolioID})
		}
		portfolios[i].SliceIDs = append(portfolios[i].SliceIDs, s.ID)
	}

	results, err := mirror.ReplayPortfolios(ctx, player, orders, portfolios)
	if err != nil {
		return failure("replaying portfolios: %v", err)
	}
	var md string
	for i, res := range results {
		md += fmt.Sprintf("# Portfolio %s\n\n", portfolios[i].ID)
		md += renderer.RenderHolding(renderer.NewHolding(date.Today(), res.Positions, res.Cash, res.Diagnostics)) + "\n"
	}
	if err := printMarkdown(md); err != nil {
		return failure("%v", err)
	}
	return subcommands.ExitSuccess
}
