package pricedb

import (
	"context"
	"fmt"

	"github.com/etnz/mirror"
	"github.com/etnz/mirror/date"
	"github.com/shopspring/decimal"
)

// Closes implements mirror.HistoricalPrices.
func (db *DB) Closes(ctx context.Context, symbols []string, r date.Range) (map[string]*date.History[mirror.Money], error) {
	res := make(map[string]*date.History[mirror.Money])
	if len(symbols) == 0 {
		return res, nil
	}
	placeholders, args := in(symbols)
	args = append(args, r.From.String(), r.To.String())
	rows, err := db.conn.QueryContext(ctx,
		`SELECT symbol, date, close FROM historical_prices
		 WHERE symbol IN `+placeholders+` AND date BETWEEN ? AND ?
		 ORDER BY symbol, date`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying close prices: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var symbol, day, closing string
		if err := rows.Scan(&symbol, &day, &closing); err != nil {
			return nil, fmt.Errorf("reading close price: %w", err)
		}
		on, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("close price of %s: %w", symbol, err)
		}
		px, err := decimal.NewFromString(closing)
		if err != nil {
			return nil, fmt.Errorf("close price of %s on %s: %w", symbol, on, err)
		}
		h, ok := res[symbol]
		if !ok {
			h = new(date.History[mirror.Money])
			res[symbol] = h
		}
		h.Append(on, mirror.Dollars(px))
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading close prices: %w", err)
	}
	db.log.Debug().Int("symbols", len(symbols)).Int("rows", n).Stringer("from", r.From).Stringer("to", r.To).Msg("loaded close prices")
	return res, nil
}
