package quotes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/mirror"
	"github.com/rs/zerolog"
)

// fmpBatch is the number of symbols asked in a single FMP request.
const fmpBatch = 50

// FMP quotes symbols in bulk from Financial Modeling Prep.
type FMP struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Log     zerolog.Logger
}

// fmpSymbol returns the FMP spelling of a class share symbol (BRK.B is BRK-B).
func fmpSymbol(symbol string) string { return strings.ReplaceAll(symbol, ".", "-") }

// Quotes implements mirror.QuoteSource.
func (f FMP) Quotes(ctx context.Context, symbols []string) (map[string]mirror.Money, error) {
	res := make(map[string]mirror.Money, len(symbols))
	for start := 0; start < len(symbols); start += fmpBatch {
		end := min(start+fmpBatch, len(symbols))
		if err := f.batch(ctx, symbols[start:end], res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (f FMP) batch(ctx context.Context, symbols []string, res map[string]mirror.Money) error {
	// the response only knows the FMP spelling
	requested := make(map[string]string, len(symbols))
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = fmpSymbol(s)
		requested[names[i]] = s
		names[i] = url.PathEscape(names[i])
	}
	addr := fmt.Sprintf("%s/api/v3/quote/%s?apikey=%s",
		strings.TrimSuffix(f.BaseURL, "/"), strings.Join(names, ","), url.QueryEscape(f.APIKey))

	jobj, err := jwget(ctx, clientOrDefault(f.Client), addr, nil)
	if err != nil {
		return fmt.Errorf("fmp quotes: %w", err)
	}
	items, ok := jobj.([]any)
	if !ok {
		return fmt.Errorf("fmp quotes: unexpected payload %T", jobj)
	}
	for _, item := range items {
		jval, err := lookup("$.symbol", item)
		if err != nil {
			f.Log.Debug().Err(err).Msg("fmp quote without symbol")
			continue
		}
		name, _ := jval.(string)
		symbol, ok := requested[name]
		if !ok {
			continue
		}
		p, ok, err := price("$.price", item)
		if err != nil {
			f.Log.Debug().Err(err).Str("symbol", symbol).Msg("fmp quote without price")
			continue
		}
		if ok {
			res[symbol] = p
		}
	}
	f.Log.Debug().Int("asked", len(symbols)).Int("items", len(items)).Msg("fmp quotes")
	return nil
}
