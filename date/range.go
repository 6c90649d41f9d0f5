package date

import "iter"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange return the period that contains d.
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Trailing returns the range of the given period that ends on d.
// For instance Trailing(2024-05-15, Monthly) is [2024-04-15, 2024-05-15].
func Trailing(d Date, period Period) Range {
	switch period {
	case Weekly:
		return Range{From: d.Add(-7), To: d}
	case Monthly:
		return Range{From: d.AddMonth(-1), To: d}
	default:
		return Range{From: d, To: d}
	}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days iterates over every day of the range.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// TradingDays iterates over the days of the range that are trading days.
func (r Range) TradingDays() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := range r.Days() {
			if !d.IsTradingDay() {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}
