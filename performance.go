package mirror

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/mirror/date"
)

// HistoricalPrices provides daily close prices.
type HistoricalPrices interface {
	// Closes returns the close prices of symbols over r. Symbols without any price may be left out.
	Closes(ctx context.Context, symbols []string, r date.Range) (map[string]*date.History[Money], error)
}

// PerformancePoint is the value and the cost of the held positions at the close of a day.
type PerformancePoint struct {
	On    date.Date
	Cost  Money
	Value Money
}

// Performance is the actual performance of a portfolio over a range of days.
type Performance struct {
	Points    []PerformancePoint
	Dividends Money // cash received from corporate actions as of the last point
}

// Performance replays orders and values the held positions at every trading day of r.
//
// Days without any price for the held symbols are skipped, they are exchange holidays.
// Held symbols missing a price on an otherwise priced day are valued at 0.
func (p *Player) Performance(ctx context.Context, orders []Order, prices HistoricalPrices, r date.Range) (Performance, error) {
	days := slices.Collect(r.TradingDays())
	res, err := p.Playback(ctx, orders, days...)
	if err != nil {
		return Performance{}, err
	}

	var symbols []string
	seen := make(map[string]bool)
	for _, s := range res.Snapshots {
		for _, pos := range s.Positions {
			if pos.Qty.IsPositive() && !seen[pos.Symbol] {
				seen[pos.Symbol] = true
				symbols = append(symbols, pos.Symbol)
			}
		}
	}
	var closes map[string]*date.History[Money]
	if len(symbols) > 0 {
		closes, err = prices.Closes(ctx, symbols, r)
		if err != nil {
			return Performance{}, fmt.Errorf("loading close prices over %s..%s: %w", r.From, r.To, err)
		}
	}

	log := p.log.With().Str("component", "performance").Logger()
	perf := Performance{Dividends: Dollars(0)}
	for _, s := range res.Snapshots {
		point := PerformancePoint{On: s.On, Cost: Dollars(0), Value: Dollars(0)}
		var held, priced int
		for _, pos := range s.Positions {
			if !pos.Qty.IsPositive() {
				continue
			}
			held++
			point.Cost = point.Cost.Add(pos.CostBasis)
			var px Money
			ok := false
			if h := closes[pos.Symbol]; h != nil {
				px, ok = h.Get(s.On)
			}
			if !ok {
				log.Warn().Str("symbol", pos.Symbol).Stringer("on", s.On).Msg("missing close price")
				continue
			}
			priced++
			point.Value = point.Value.Add(px.Mul(pos.Qty))
		}
		if held == 0 || priced == 0 {
			log.Debug().Stringer("on", s.On).Int("held", held).Msg("no price, skipping day")
			continue
		}
		perf.Points = append(perf.Points, point)
		perf.Dividends = s.Cash
	}
	return perf, nil
}
