package mirror

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// Holding is anything built on a position, like Position or ValuedPosition.
type Holding interface {
	Held() Position
}

// Held returns the position itself.
func (p Position) Held() Position { return p }

// PositionSlice joins a position and the slice of the same asset. At least one of them is set.
type PositionSlice[P Holding] struct {
	Symbol   string
	Position *P     // nil when the asset is not held
	Slice    *Slice // nil when the position is not targeted by any slice
}

// MergePositionsAndSlices joins positions and slices by symbol.
//
// Positions with a slice come first, then positions without a slice (received through a
// corporate action for instance) and last slices without a position (never bought, or sold).
func MergePositionsAndSlices[P Holding](positions []P, slices []Slice) []PositionSlice[P] {
	sliceOf := make(map[string]int, len(slices))
	for i, s := range slices {
		if _, dup := sliceOf[s.Asset.Symbol]; !dup {
			sliceOf[s.Asset.Symbol] = i
		}
	}
	held := make(map[string]bool, len(positions))

	var both, orphans []PositionSlice[P]
	for i := range positions {
		symbol := positions[i].Held().Symbol
		held[symbol] = true
		ps := PositionSlice[P]{Symbol: symbol, Position: &positions[i]}
		if j, ok := sliceOf[symbol]; ok {
			ps.Slice = &slices[j]
			both = append(both, ps)
			continue
		}
		orphans = append(orphans, ps)
	}
	res := make([]PositionSlice[P], 0, len(both)+len(orphans)+len(slices))
	res = append(res, both...)
	res = append(res, orphans...)
	for i, s := range slices {
		if !held[s.Asset.Symbol] {
			res = append(res, PositionSlice[P]{Symbol: s.Asset.Symbol, Slice: &slices[i]})
		}
	}
	return res
}

// OrderKind tells how an order is sized.
type OrderKind int

const (
	// NotionalOrder is sized in dollars.
	NotionalOrder OrderKind = iota
	// QuantityOrder is sized in shares, used to liquidate a position entirely.
	QuantityOrder
)

func (k OrderKind) String() string {
	if k == QuantityOrder {
		return "qty"
	}
	return "notional"
}

// PreviewOrder is the order to send for one asset.
type PreviewOrder struct {
	PositionSlice[Position]
	SharePrice Money
	Kind       OrderKind
	Notional   Money    // signed, for a NotionalOrder
	Qty        Quantity // signed, for a QuantityOrder
	Before     Percent  // allocation of the asset before the order, for a NotionalOrder
	After      Percent  // allocation of the asset after the order, for a NotionalOrder
}

// Preview computes the orders that invest amount in a portfolio.
type Preview struct {
	Quotes QuoteSource
	Sizer  Sizer
}

// Orders returns the orders investing amount (or withdrawing it when negative) across the
// slices, or selling every held share when liquidate is set.
//
// Notional amounts are rounded to the cent, null ones are dropped, and orders come
// by decreasing size. Liquidation orders come by decreasing market value.
// Assets without a quote are valued at 0 and reported as MissingPrice diagnostics.
func (pv Preview) Orders(ctx context.Context, positions []Position, slices []Slice, amount Money, liquidate bool) ([]PreviewOrder, []Diagnostic, error) {
	merged := MergePositionsAndSlices(positions, slices)
	symbols := make([]string, len(merged))
	for i, ps := range merged {
		symbols[i] = ps.Symbol
	}
	prices, diags, err := quote(ctx, pv.Quotes, symbols)
	if err != nil {
		return nil, nil, err
	}
	price := func(symbol string) Money {
		if p, ok := prices[symbol]; ok {
			return p
		}
		return Dollars(0)
	}
	value := func(ps PositionSlice[Position]) Money {
		if ps.Position == nil {
			return Dollars(0)
		}
		return price(ps.Symbol).Mul(ps.Position.Qty)
	}

	if liquidate {
		var orders []PreviewOrder
		for _, ps := range merged {
			if ps.Position == nil || !ps.Position.Qty.IsPositive() {
				continue
			}
			orders = append(orders, PreviewOrder{
				PositionSlice: ps,
				SharePrice:    price(ps.Symbol),
				Kind:          QuantityOrder,
				Qty:           ps.Position.Qty.Neg(),
			})
		}
		sort.SliceStable(orders, func(i, j int) bool {
			return value(orders[i].PositionSlice).GreaterThan(value(orders[j].PositionSlice))
		})
		return orders, diags, nil
	}

	weights := make([]decimal.Decimal, len(merged))
	values := make([]decimal.Decimal, len(merged))
	total := decimal.Zero
	for i, ps := range merged {
		weights[i] = decimal.Zero
		if ps.Slice != nil {
			weights[i] = ps.Slice.Percent.value
		}
		values[i] = value(ps).value
		total = total.Add(values[i])
	}
	amounts, err := pv.Sizer.OrderAmounts(weights, values, amount.value)
	if err != nil {
		return nil, nil, err
	}

	var orders []PreviewOrder
	for i, ps := range merged {
		notional := amounts[i].Round(2)
		if notional.IsZero() {
			continue
		}
		orders = append(orders, PreviewOrder{
			PositionSlice: ps,
			SharePrice:    price(ps.Symbol),
			Kind:          NotionalOrder,
			Notional:      Dollars(notional),
			Before:        percentOf(values[i], total),
			After:         percentOf(values[i].Add(notional), total.Add(amount.value)),
		})
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Notional.value.Abs().GreaterThan(orders[j].Notional.value.Abs())
	})
	return orders, diags, nil
}
