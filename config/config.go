// Package config defines the configuration of the mfund command line and how it is loaded.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Config is the root configuration. Fields come from a TOML file and are then overridden by
// MIRROR_* environment variables.
type Config struct {
	FMP       FMPConfig       `toml:"fmp"`
	Finnhub   FinnhubConfig   `toml:"finnhub"`
	PriceDB   PriceDBConfig   `toml:"pricedb"`
	Log       LogConfig       `toml:"log"`
	Rebalance RebalanceConfig `toml:"rebalance"`
	Replay    ReplayConfig    `toml:"replay"`
}

// FMPConfig holds the Financial Modeling Prep bulk quote endpoint.
type FMPConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// FinnhubConfig holds the Finnhub single quote endpoint, used for the symbols FMP misses.
type FinnhubConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// PriceDBConfig locates the SQLite database of historical prices and corporate actions.
type PriceDBConfig struct {
	Path string `toml:"path"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// RebalanceConfig tunes order sizing.
type RebalanceConfig struct {
	// MinOrderSize is the smallest buy order, in dollars, as a decimal string.
	MinOrderSize string `toml:"min_order_size"`
}

// ReplayConfig tunes bulk replays.
type ReplayConfig struct {
	Concurrency int `toml:"concurrency"`
}

// Defaults returns the configuration used when no file nor environment variable sets a value.
func Defaults() Config {
	return Config{
		FMP: FMPConfig{
			BaseURL: "https://financialmodelingprep.com",
		},
		Finnhub: FinnhubConfig{
			BaseURL: "https://finnhub.io",
		},
		PriceDB: PriceDBConfig{
			Path: "prices.sqlite",
		},
		Log: LogConfig{
			Level:  "warn",
			Pretty: true,
		},
		Rebalance: RebalanceConfig{
			MinOrderSize: "1",
		},
		Replay: ReplayConfig{
			Concurrency: 8,
		},
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "off": true}

// MinOrderSize returns the parsed minimum order size.
func (c *Config) MinOrderSize() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.Rebalance.MinOrderSize)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rebalance: invalid min_order_size %q: %w", c.Rebalance.MinOrderSize, err)
	}
	return d, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log: unknown level %q (valid: debug, info, warn, error, off)", c.Log.Level))
	}
	if c.FMP.BaseURL == "" {
		errs = append(errs, "fmp: base_url is required")
	}
	if c.Finnhub.BaseURL == "" {
		errs = append(errs, "finnhub: base_url is required")
	}
	if d, err := c.MinOrderSize(); err != nil {
		errs = append(errs, err.Error())
	} else if d.IsNegative() {
		errs = append(errs, "rebalance: min_order_size must not be negative")
	}
	if c.Replay.Concurrency < 1 {
		errs = append(errs, "replay: concurrency must be at least 1")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}
