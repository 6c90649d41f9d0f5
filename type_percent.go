package mirror

import "github.com/shopspring/decimal"

// Percent is an exact percentage, 12.5 meaning 12.5%.
type Percent struct {
	value decimal.Decimal
}

func P[T number](value T) Percent { return Percent{value: newDecimal(value)} }

var hundred = decimal.NewFromInt(100)

// percentOf returns part/whole*100, or 0 when whole is zero.
func percentOf(part, whole decimal.Decimal) Percent {
	if whole.IsZero() {
		return Percent{}
	}
	return Percent{value: part.Div(whole).Mul(hundred)}
}

func (p Percent) Decimal() decimal.Decimal { return p.value }
func (p Percent) Equal(q Percent) bool     { return p.value.Equal(q.value) }
func (p Percent) IsZero() bool             { return p.value.IsZero() }
func (p Percent) Add(q Percent) Percent    { return Percent{value: p.value.Add(q.value)} }
func (p Percent) Sub(q Percent) Percent    { return Percent{value: p.value.Sub(q.value)} }
func (p Percent) Abs() Percent             { return Percent{value: p.value.Abs()} }

func (p Percent) String() string {
	return p.value.StringFixed(2) + "%"
}

func (p Percent) SignedString() string {
	if p.value.Round(2).IsZero() {
		return "-"
	}
	if p.value.IsPositive() {
		return "+" + p.String()
	}
	return p.String()
}

func (p Percent) MarshalJSON() ([]byte, error)  { return p.value.MarshalJSON() }
func (p *Percent) UnmarshalJSON(b []byte) error { return p.value.UnmarshalJSON(b) }
