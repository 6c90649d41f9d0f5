package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads the TOML file at path on top of the defaults, then applies the MIRROR_*
// environment variables, including those of a .env file in the working directory.
//
// A missing file is not an error, and an empty path skips the file. The returned Config has
// not been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides overwrites the fields whose MIRROR_* variable is set.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.FMP.APIKey, "MIRROR_FMP_API_KEY")
	setStr(&cfg.FMP.BaseURL, "MIRROR_FMP_BASE_URL")

	setStr(&cfg.Finnhub.APIKey, "MIRROR_FINNHUB_API_KEY")
	setStr(&cfg.Finnhub.BaseURL, "MIRROR_FINNHUB_BASE_URL")

	setStr(&cfg.PriceDB.Path, "MIRROR_PRICEDB_PATH")

	setStr(&cfg.Log.Level, "MIRROR_LOG_LEVEL")
	setBool(&cfg.Log.Pretty, "MIRROR_LOG_PRETTY")

	setStr(&cfg.Rebalance.MinOrderSize, "MIRROR_MIN_ORDER_SIZE")

	setInt(&cfg.Replay.Concurrency, "MIRROR_REPLAY_CONCURRENCY")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
