package mirror

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultMinOrderSize is the smallest buy order worth sending to the broker, in dollars.
var DefaultMinOrderSize = decimal.NewFromInt(1)

// Rebalance returns, for each slice, the amount to buy (positive) or sell (negative) to move
// the slice values toward their target weights when amount dollars are added (or removed when
// negative) to the portfolio.
//
// weights are percentages summing to 100. With a zero amount every slice is brought to its
// target. Otherwise only the slices drifting in the direction of amount are traded: the slice
// drifting the most is brought to its target first, then the next one, until amount is spent.
func Rebalance(weights, values []decimal.Decimal, amount decimal.Decimal) ([]decimal.Decimal, error) {
	if len(weights) != len(values) {
		return nil, fmt.Errorf("%d weights for %d values: %w", len(weights), len(values), ErrLengthMismatch)
	}
	total := sum(values).Add(amount)
	diffs := make([]decimal.Decimal, len(weights))
	for i, w := range weights {
		diffs[i] = w.Mul(total).Shift(-2).Sub(values[i])
	}
	if amount.IsZero() {
		return diffs, nil
	}

	buying := amount.IsPositive()
	for i, d := range diffs {
		if buying {
			diffs[i] = decimal.Max(d, decimal.Zero)
		} else {
			diffs[i] = decimal.Min(d, decimal.Zero)
		}
	}
	priority := rank(diffs, func(d decimal.Decimal) decimal.Decimal { return d.Abs() })

	orders := zeros(len(weights))
	remainder := amount
	for _, i := range priority {
		if buying {
			orders[i] = decimal.Min(remainder, diffs[i])
		} else {
			orders[i] = decimal.Max(remainder, diffs[i])
		}
		remainder = remainder.Sub(orders[i])
	}
	return orders, nil
}

// Sizer computes order amounts that respect a minimum order size.
type Sizer struct {
	MinOrderSize decimal.Decimal
}

// CalculateOrderAmounts is Sizer.OrderAmounts with DefaultMinOrderSize.
func CalculateOrderAmounts(weights, values []decimal.Decimal, amount decimal.Decimal) ([]decimal.Decimal, error) {
	return Sizer{MinOrderSize: DefaultMinOrderSize}.OrderAmounts(weights, values, amount)
}

// OrderAmounts returns the Rebalance orders adjusted so that no buy order is below the
// minimum order size.
//
// Sells are never adjusted. For a pure rebalance, small buys are dropped. When investing, as
// many slices as possible are funded: the largest orders are scaled up so that the smallest
// kept one reaches the minimum and their sum is exactly amount. If not even one slice can be
// funded the whole amount goes to the largest order.
func (s Sizer) OrderAmounts(weights, values []decimal.Decimal, amount decimal.Decimal) ([]decimal.Decimal, error) {
	orders, err := Rebalance(weights, values, amount)
	if err != nil {
		return nil, err
	}
	floor := s.MinOrderSize

	switch {
	case amount.IsNegative():
		return orders, nil
	case amount.IsZero():
		for i, o := range orders {
			if o.IsPositive() && o.LessThan(floor) {
				orders[i] = decimal.Zero
			}
		}
		return orders, nil
	}

	priority := rank(orders, func(d decimal.Decimal) decimal.Decimal { return d })
	funded := decimal.Zero // sum of the orders ranked before i
	for i, idx := range priority {
		o := orders[idx]
		if i == 0 && o.LessThan(floor) {
			return allTo(len(orders), priority[0], amount), nil
		}
		if o.IsZero() {
			break
		}
		// scaling the top i+1 orders so that o reaches floor costs floor*sum/o
		needed := floor.Mul(funded.Add(o)).Div(o)
		if needed.GreaterThan(amount) {
			if i == 0 {
				return allTo(len(orders), priority[0], amount), nil
			}
			return scaleTop(orders, priority[:i], funded, amount), nil
		}
		funded = funded.Add(o)
	}
	return orders, nil
}

// scaleTop scales the orders in top so that they sum to amount, and zeroes the others.
// The rounding residue goes to the first order of top.
func scaleTop(orders []decimal.Decimal, top []int, sumTop, amount decimal.Decimal) []decimal.Decimal {
	scaled := zeros(len(orders))
	factor := amount.Div(sumTop)
	total := decimal.Zero
	for _, i := range top {
		scaled[i] = orders[i].Mul(factor)
		total = total.Add(scaled[i])
	}
	scaled[top[0]] = scaled[top[0]].Add(amount.Sub(total))
	return scaled
}

// allTo returns n orders where only the i-th one is set, to amount.
func allTo(n, i int, amount decimal.Decimal) []decimal.Decimal {
	orders := zeros(n)
	orders[i] = amount
	return orders
}

// rank returns the indexes of values sorted by decreasing key. Ties keep their index order.
func rank(values []decimal.Decimal, key func(decimal.Decimal) decimal.Decimal) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return key(values[idx[a]]).GreaterThan(key(values[idx[b]]))
	})
	return idx
}

func sum(values []decimal.Decimal) decimal.Decimal {
	s := decimal.Zero
	for _, v := range values {
		s = s.Add(v)
	}
	return s
}

func zeros(n int) []decimal.Decimal {
	z := make([]decimal.Decimal, n)
	for i := range z {
		z[i] = decimal.Zero
	}
	return z
}
