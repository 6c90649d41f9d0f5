package mirror

import (
	"time"
)

// Side of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderStatus is the broker's status of an order.
type OrderStatus string

const (
	Filled          OrderStatus = "filled"
	PartiallyFilled OrderStatus = "partially_filled"
	Canceled        OrderStatus = "canceled"
	Expired         OrderStatus = "expired"
	Rejected        OrderStatus = "rejected"
)

// Order is a closed broker order, as reported by the broker.
type Order struct {
	ID             string
	Symbol         string
	Side           Side
	FilledQty      Quantity
	FilledAvgPrice Money
	Status         OrderStatus
	CreatedAt      time.Time
	SliceID        string // the slice the order was placed for
}

// executed reports whether the order moved shares at all.
func (o Order) executed() bool {
	if o.Status != Filled && o.Status != PartiallyFilled {
		return false
	}
	return !o.FilledQty.IsZero()
}

// proceeds returns the filled amount in dollars.
func (o Order) proceeds() Money { return o.FilledAvgPrice.Mul(o.FilledQty) }
