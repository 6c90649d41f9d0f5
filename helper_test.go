package mirror

import (
	"context"
	"time"

	"github.com/etnz/mirror/date"
	"github.com/shopspring/decimal"
)

// D is a helper for test to create a decimal from a string const.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Ds is a helper for test to create a vector of decimals.
func Ds(values ...string) []decimal.Decimal {
	res := make([]decimal.Decimal, len(values))
	for i, v := range values {
		res[i] = D(v)
	}
	return res
}

// at returns the instant at 15:00 UTC on day.
func at(day string) time.Time { return date.MustParse(day).Time().Add(15 * time.Hour) }

func buy(day, symbol string, qty, price float64) Order {
	return Order{Symbol: symbol, Side: Buy, FilledQty: Q(qty), FilledAvgPrice: Dollars(price), Status: Filled, CreatedAt: at(day)}
}

func sell(day, symbol string, qty, price float64) Order {
	return Order{Symbol: symbol, Side: Sell, FilledQty: Q(qty), FilledAvgPrice: Dollars(price), Status: Filled, CreatedAt: at(day)}
}

func header(day, symbol string) ActionHeader {
	return ActionHeader{ID: symbol + "-" + day, Symbol: symbol, Date: date.MustParse(day)}
}

// fixedClock returns a clock stuck at the end of day.
func fixedClock(day string) func() time.Time {
	return func() time.Time { return date.MustParse(day).Time().Add(23 * time.Hour) }
}

// countingSource records every request made to an ActionStore.
type countingSource struct {
	store    *ActionStore
	requests [][]string
}

func (s *countingSource) ActionsFor(ctx context.Context, symbols []string, since date.Date) ([]CorporateAction, error) {
	s.requests = append(s.requests, symbols)
	return s.store.ActionsFor(ctx, symbols, since)
}

// fixedQuotes is a QuoteSource backed by a map.
type fixedQuotes map[string]float64

func (q fixedQuotes) Quotes(_ context.Context, symbols []string) (map[string]Money, error) {
	res := make(map[string]Money)
	for _, s := range symbols {
		if p, ok := q[s]; ok {
			res[s] = Dollars(p)
		}
	}
	return res, nil
}

// find returns the position of symbol, or false.
func find(positions []Position, symbol string) (Position, bool) {
	for _, p := range positions {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Position{}, false
}
