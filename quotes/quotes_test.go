package quotes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/etnz/mirror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFMPQuotes(t *testing.T) {
	var path, key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.URL.Query().Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"symbol": "AAPL", "price": 189.95, "name": "Apple Inc."},
			{"symbol": "BRK-B", "price": 412.1},
			{"symbol": "ZERO", "price": 0},
			{"symbol": "NULL", "price": null},
			{"symbol": "OTHER", "price": 3}
		]`))
	}))
	defer srv.Close()

	f := FMP{BaseURL: srv.URL + "/", APIKey: "k3y", Client: srv.Client(), Log: zerolog.Nop()}
	got, err := f.Quotes(context.Background(), []string{"AAPL", "BRK.B", "ZERO", "NULL", "MSFT"})
	require.NoError(t, err)

	assert.Equal(t, "/api/v3/quote/AAPL,BRK-B,ZERO,NULL,MSFT", path)
	assert.Equal(t, "k3y", key)
	require.Len(t, got, 2)
	assert.Equal(t, "189.95", got["AAPL"].Decimal().String())
	assert.Equal(t, "412.1", got["BRK.B"].Decimal().String())
	assert.Equal(t, mirror.USD, got["AAPL"].Currency())
}

func TestFMPBatches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	symbols := make([]string, fmpBatch+1)
	for i := range symbols {
		symbols[i] = "S" + strings.Repeat("X", i%5)
	}
	f := FMP{BaseURL: srv.URL, Client: srv.Client(), Log: zerolog.Nop()}
	got, err := f.Quotes(context.Background(), symbols)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.EqualValues(t, 2, calls.Load())
}

func TestFMPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "limit reached", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := FMP{BaseURL: srv.URL, Client: srv.Client(), Log: zerolog.Nop()}
	_, err := f.Quotes(context.Background(), []string{"AAPL"})
	assert.ErrorContains(t, err, "429")
}

func finnhubServer(t *testing.T, prices map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Finnhub-Token") != "tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		symbol := r.URL.Query().Get("symbol")
		if symbol == "BROKEN" {
			w.Write([]byte(`{"error": "oops"}`))
			return
		}
		c, ok := prices[symbol]
		if !ok {
			c = "0"
		}
		w.Write([]byte(`{"c": ` + c + `, "h": 1, "l": 1, "o": 1, "pc": 1, "t": 1700000000}`))
	}))
}

func TestFinnhubQuote(t *testing.T) {
	srv := finnhubServer(t, map[string]string{"AAPL": "190.5"})
	defer srv.Close()
	f := Finnhub{BaseURL: srv.URL, APIKey: "tok", Client: srv.Client(), Log: zerolog.Nop()}

	p, ok, err := f.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "190.5", p.Decimal().String())

	_, ok, err = f.Quote(context.Background(), "UNKNOWN")
	require.NoError(t, err)
	assert.False(t, ok, "a zero price is a missing price")

	_, _, err = f.Quote(context.Background(), "BROKEN")
	assert.Error(t, err)

	f.APIKey = "wrong"
	_, _, err = f.Quote(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "401")
}

func TestFinnhubQuotes(t *testing.T) {
	srv := finnhubServer(t, map[string]string{"AAPL": "190.5", "MSFT": "410"})
	defer srv.Close()
	f := Finnhub{BaseURL: srv.URL, APIKey: "tok", Client: srv.Client(), Log: zerolog.Nop()}

	got, err := f.Quotes(context.Background(), []string{"AAPL", "MSFT", "UNKNOWN", "BROKEN"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, got["MSFT"].Equal(mirror.Dollars(410)))
}

// stubSource is a QuoteSource recording what it was asked.
type stubSource struct {
	prices map[string]mirror.Money
	err    error
	asked  []string
}

func (s *stubSource) Quotes(_ context.Context, symbols []string) (map[string]mirror.Money, error) {
	s.asked = append(s.asked, symbols...)
	if s.err != nil {
		return nil, s.err
	}
	res := make(map[string]mirror.Money)
	for _, sym := range symbols {
		if p, ok := s.prices[sym]; ok {
			res[sym] = p
		}
	}
	return res, nil
}

func TestFallback(t *testing.T) {
	primary := &stubSource{prices: map[string]mirror.Money{"A": mirror.Dollars(1)}}
	secondary := &stubSource{prices: map[string]mirror.Money{"A": mirror.Dollars(9), "B": mirror.Dollars(2)}}
	f := Fallback{Primary: primary, Secondary: secondary, Log: zerolog.Nop()}

	got, err := f.Quotes(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, secondary.asked)
	assert.Len(t, got, 2)
	assert.True(t, got["A"].Equal(mirror.Dollars(1)))
	assert.True(t, got["B"].Equal(mirror.Dollars(2)))
}

func TestFallbackErrors(t *testing.T) {
	down := errors.New("down")

	f := Fallback{
		Primary:   &stubSource{err: down},
		Secondary: &stubSource{prices: map[string]mirror.Money{"A": mirror.Dollars(3)}},
		Log:       zerolog.Nop(),
	}
	got, err := f.Quotes(context.Background(), []string{"A"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	f.Secondary = &stubSource{err: errors.New("also down")}
	_, err = f.Quotes(context.Background(), []string{"A"})
	assert.ErrorIs(t, err, down)

	f.Primary = &stubSource{}
	got, err = f.Quotes(context.Background(), []string{"A"})
	require.NoError(t, err, "a failing secondary only loses the missed symbols")
	assert.Empty(t, got)
}

func TestFallbackFeedsPreview(t *testing.T) {
	f := Fallback{
		Primary:   &stubSource{prices: map[string]mirror.Money{"A": mirror.Dollars(10)}},
		Secondary: &stubSource{},
		Log:       zerolog.Nop(),
	}
	positions := []mirror.Position{{Symbol: "A", Qty: mirror.Q(2)}, {Symbol: "B", Qty: mirror.Q(1)}}
	valued, diags, err := mirror.AddMarketValues(context.Background(), f, positions)
	require.NoError(t, err)
	require.Len(t, valued, 2)
	assert.True(t, valued[0].MarketValue.Equal(mirror.Dollars(20)))
	require.Len(t, diags, 1)
	assert.Equal(t, mirror.MissingPrice, diags[0].Kind)
	assert.Equal(t, "B", diags[0].Symbol)
}
