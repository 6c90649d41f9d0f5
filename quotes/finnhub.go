package quotes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/etnz/mirror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// finnhubConcurrency bounds the requests in flight, Finnhub rate limits per second.
const finnhubConcurrency = 4

// Finnhub quotes symbols one at a time from Finnhub.
type Finnhub struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Log     zerolog.Logger
}

// Quote returns the current price of symbol. Finnhub answers unknown symbols with a zero
// price, reported as not found.
func (f Finnhub) Quote(ctx context.Context, symbol string) (mirror.Money, bool, error) {
	addr := fmt.Sprintf("%s/api/v1/quote?symbol=%s", strings.TrimSuffix(f.BaseURL, "/"), url.QueryEscape(symbol))
	header := http.Header{"X-Finnhub-Token": []string{f.APIKey}}
	jobj, err := jwget(ctx, clientOrDefault(f.Client), addr, header)
	if err != nil {
		return mirror.Money{}, false, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	p, ok, err := price("$.c", jobj)
	if err != nil {
		return mirror.Money{}, false, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	return p, ok, nil
}

// Quotes implements mirror.QuoteSource. Symbols that fail are logged and left out.
func (f Finnhub) Quotes(ctx context.Context, symbols []string) (map[string]mirror.Money, error) {
	var mu sync.Mutex
	res := make(map[string]mirror.Money, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(finnhubConcurrency)
	for _, s := range symbols {
		g.Go(func() error {
			p, ok, err := f.Quote(ctx, s)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				f.Log.Warn().Err(err).Str("symbol", s).Msg("finnhub quote failed")
				return nil
			}
			if ok {
				mu.Lock()
				res[s] = p
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
