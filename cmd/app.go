// Package cmd implements the mfund command line: replaying a fund copy, previewing the orders
// that invest in it, and following its performance.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/etnz/mirror"
	"github.com/etnz/mirror/config"
	"github.com/etnz/mirror/logger"
	"github.com/etnz/mirror/pricedb"
	"github.com/etnz/mirror/quotes"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&holdingCmd{}, "portfolio")
	c.Register(&performanceCmd{}, "portfolio")
	c.Register(&slicesCmd{}, "portfolio")

	c.Register(&previewCmd{}, "orders")
	c.Register(&rebalanceCmd{}, "orders")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "mirror.toml", "Path to the TOML configuration file. A missing file is ignored.")
	output     = flag.String("output", "term", "Output format: term, markdown or html.")
	verbose    = flag.Bool("v", false, "Log debug messages.")
)

// stdout receives the reports.
var stdout io.Writer = os.Stdout

// setup loads the configuration and builds the process logger.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading configuration %s: %w", *configFile, err)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)
	return cfg, log, nil
}

// failure reports err and returns the failure status.
func failure(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

func decodeFile[T any](path string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	items, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// actionSource returns where corporate actions come from: the actions file when set,
// otherwise the price database. Without either, replays ignore corporate actions.
func actionSource(cfg *config.Config, log zerolog.Logger, actionsFile, dbFile string) (mirror.ActionSource, func(), error) {
	nothing := func() {}
	if actionsFile != "" {
		actions, err := decodeFile(actionsFile, mirror.DecodeCorporateActions)
		if err != nil {
			return nil, nothing, err
		}
		return mirror.NewActionStore(mirror.DropSplitDayDividends(actions)), nothing, nil
	}
	db, err := openPriceDB(cfg, log, dbFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", cfg.PriceDB.Path).Msg("no corporate action source, actions are ignored")
		return nil, nothing, nil
	}
	if err != nil {
		return nil, nothing, err
	}
	return db, func() { db.Close() }, nil
}

// openPriceDB opens dbFile, or the configured database. A missing configured database
// returns fs.ErrNotExist.
func openPriceDB(cfg *config.Config, log zerolog.Logger, dbFile string) (*pricedb.DB, error) {
	path := dbFile
	if path == "" {
		path = cfg.PriceDB.Path
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
	}
	return pricedb.Open(path, log)
}

func newPlayer(cfg *config.Config, log zerolog.Logger, source mirror.ActionSource) *mirror.Player {
	opts := []mirror.Option{mirror.WithLogger(log), mirror.WithConcurrency(cfg.Replay.Concurrency)}
	if source != nil {
		opts = append(opts, mirror.WithActionSource(source))
	}
	return mirror.NewPlayer(opts...)
}

// newQuotes returns FMP backed by Finnhub, or Finnhub alone without an FMP key.
func newQuotes(cfg *config.Config, log zerolog.Logger) mirror.QuoteSource {
	client := &http.Client{Timeout: 20 * time.Second}
	finnhub := quotes.Finnhub{BaseURL: cfg.Finnhub.BaseURL, APIKey: cfg.Finnhub.APIKey, Client: client, Log: log}
	if cfg.FMP.APIKey == "" {
		return finnhub
	}
	fmp := quotes.FMP{BaseURL: cfg.FMP.BaseURL, APIKey: cfg.FMP.APIKey, Client: client, Log: log}
	return quotes.Fallback{Primary: fmp, Secondary: finnhub, Log: log}
}

func newSizer(cfg *config.Config) (mirror.Sizer, error) {
	floor, err := cfg.MinOrderSize()
	if err != nil {
		return mirror.Sizer{}, err
	}
	return mirror.Sizer{MinOrderSize: floor}, nil
}

// splitList splits a comma separated list, ignoring blanks.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
