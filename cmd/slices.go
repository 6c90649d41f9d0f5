package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/mirror"
	"github.com/etnz/mirror/config"
	"github.com/etnz/mirror/renderer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type slicesCmd struct {
	slices       string
	fund         string
	portfolio    string
	nonCompliant string
	orders       string
	actions      string
	db           string
	write        bool
}

func (*slicesCmd) Name() string     { return "slices" }
func (*slicesCmd) Synopsis() string { return "update the slices from the latest fund composition" }
func (*slicesCmd) Usage() string {
	return `mfund slices -slices <slices.jsonl> -fund <fund.jsonl> -portfolio <id> [-non-compliant <id,...>] [-orders <orders.jsonl>] [-w]

  Applies the latest composition of the reference fund to the slices of a portfolio: weights
  are rescaled to sum to 100, slices leaving the fund are deleted (non-compliant when their
  asset ID is listed in -non-compliant), and new assets get a slice.
  With -orders, positions held outside of the fund get a 0% slice. Their asset must be known,
  listed in the fund composition with a 0 weight if needed.
  The updated slices are printed as JSON lines, or written back to the slices file with -w.
`
}

func (c *slicesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.slices, "slices", "slices.jsonl", "Slices of the portfolio (JSONL format). A missing file means no slice yet.")
	f.StringVar(&c.fund, "fund", "", "Latest composition of the reference fund (JSONL format)")
	f.StringVar(&c.portfolio, "portfolio", "", "Portfolio ID of new slices")
	f.StringVar(&c.nonCompliant, "non-compliant", "", "Comma separated asset IDs excluded for compliance")
	f.StringVar(&c.orders, "orders", "", "Order history (JSONL format), to add slices for positions outside the fund")
	f.StringVar(&c.actions, "actions", "", "Corporate actions (JSONL format). Defaults to the price database.")
	f.StringVar(&c.db, "db", "", "Price database. Defaults to the configured one.")
	f.BoolVar(&c.write, "w", false, "write the slices back and print the changes")
}

func (c *slicesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.fund == "" || c.portfolio == "" {
		fmt.Fprintln(os.Stderr, "Error: -fund and -portfolio flags are required.")
		return subcommands.ExitUsageError
	}
	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}

	existing, err := decodeFile(c.slices, mirror.DecodeSlices)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return failure("loading slices: %v", err)
	}
	updates, err := decodeFile(c.fund, mirror.DecodeHoldingUpdates)
	if err != nil {
		return failure("loading fund composition: %v", err)
	}
	changes := mirror.MergeUpdatedHoldings(c.portfolio, existing, updates, splitList(c.nonCompliant), time.Now().UTC())

	if c.orders != "" {
		extra, err := c.outsideFund(ctx, cfg, log, changes.Slices, updates)
		if err != nil {
			return failure("%v", err)
		}
		changes.Slices = append(changes.Slices, extra...)
		changes.Added = append(changes.Added, extra...)
	}

	out := stdout
	if c.write {
		file, err := os.Create(c.slices)
		if err != nil {
			return failure("%v", err)
		}
		defer file.Close()
		out = file
	}
	for _, s := range changes.Slices {
		if err := mirror.EncodeSlice(out, s); err != nil {
			return failure("writing slices: %v", err)
		}
	}
	if c.write {
		if err := printMarkdown(renderer.SliceChangesMarkdown(changes)); err != nil {
			return failure("%v", err)
		}
	}
	return subcommands.ExitSuccess
}

// outsideFund returns 0% slices for the held positions without a slice.
func (c *slicesCmd) outsideFund(ctx context.Context, cfg *config.Config, log zerolog.Logger, slices []mirror.Slice, updates []mirror.HoldingUpdate) ([]mirror.Slice, error) {
	orders, err := decodeFile(c.orders, mirror.DecodeOrders)
	if err != nil {
		return nil, fmt.Errorf("loading orders: %w", err)
	}
	source, closeSource, err := actionSource(cfg, log, c.actions, c.db)
	if err != nil {
		return nil, fmt.Errorf("loading corporate actions: %w", err)
	}
	defer closeSource()
	res, err := newPlayer(cfg, log, source).Playback(ctx, orders)
	if errors.Is(err, mirror.ErrEmptyHistory) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("replaying orders: %w", err)
	}

	assets := make(map[string]mirror.Asset)
	sliced := make(map[string]bool)
	for _, u := range updates {
		assets[u.Asset.Symbol] = u.Asset
	}
	for _, s := range slices {
		assets[s.Asset.Symbol] = s.Asset
		sliced[s.Asset.Symbol] = true
	}
	var outside []mirror.Position
	for _, p := range res.Positions {
		if p.Qty.IsPositive() && !sliced[p.Symbol] {
			outside = append(outside, p)
		}
	}
	return mirror.SlicesForPositions(c.portfolio, outside, assets)
}
