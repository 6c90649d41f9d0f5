package mirror

import (
	"fmt"

	"github.com/etnz/mirror/date"
)

// ActionKind is the discriminator of a corporate action.
type ActionKind string

const (
	DividendKind     ActionKind = "dividend"
	SplitKind        ActionKind = "split"
	MergerKind       ActionKind = "merger"
	SpinoffKind      ActionKind = "spinoff"
	SymbolChangeKind ActionKind = "symbol_change"
)

// CorporateAction is one of Dividend, Split, Merger, Spinoff or SymbolChange.
//
// The set is closed: every consumer handles all the kinds through an actionVisitor.
type CorporateAction interface {
	Header() ActionHeader
	Kind() ActionKind
	// Validate returns an error wrapping ErrMalformedCorporateAction if a field required
	// by the kind is missing or out of range.
	Validate() error
	accept(v actionVisitor)
}

// actionVisitor must be implemented by anything that switches on the action kind.
// Adding a kind adds a method here, which breaks every visitor until it handles it.
type actionVisitor interface {
	dividend(Dividend)
	split(Split)
	merger(Merger)
	spinoff(Spinoff)
	symbolChange(SymbolChange)
}

// ActionHeader holds the fields common to all corporate actions.
type ActionHeader struct {
	ID     string
	Symbol string
	Date   date.Date // effective date
	ISIN   string    // optional
}

func (h ActionHeader) Header() ActionHeader { return h }

func (h ActionHeader) validate(kind ActionKind) error {
	if h.Symbol == "" {
		return fmt.Errorf("%s %q: missing symbol: %w", kind, h.ID, ErrMalformedCorporateAction)
	}
	if h.Date.IsZero() {
		return fmt.Errorf("%s %s: missing date: %w", kind, h.Symbol, ErrMalformedCorporateAction)
	}
	return nil
}

// malformed wraps ErrMalformedCorporateAction with the action's identity.
func malformed(a CorporateAction, format string, args ...any) error {
	h := a.Header()
	return fmt.Errorf("%s %s on %s: %s: %w", a.Kind(), h.Symbol, h.Date, fmt.Sprintf(format, args...), ErrMalformedCorporateAction)
}

// DividendSubtype tells cash dividends from stock dividends.
type DividendSubtype string

const (
	CashDividend  DividendSubtype = "cash"
	StockDividend DividendSubtype = "stock"
)

// Dividend pays Cash per share held and multiplies the holding by Shares.
// A cash dividend has Shares == 1, a stock dividend has Cash == 0.
type Dividend struct {
	ActionHeader
	Subtype DividendSubtype
	Cash    Money    // per share
	Shares  Quantity // multiplier
}

func (a Dividend) Kind() ActionKind       { return DividendKind }
func (a Dividend) accept(v actionVisitor) { v.dividend(a) }
func (a Dividend) Validate() error {
	if err := a.validate(a.Kind()); err != nil {
		return err
	}
	if a.Cash.IsNegative() {
		return malformed(a, "negative cash %v", a.Cash)
	}
	if !a.Shares.IsPositive() {
		return malformed(a, "non positive shares multiplier %v", a.Shares)
	}
	return nil
}

// Split multiplies the holding by NewRate/OldRate.
type Split struct {
	ActionHeader
	Subtype string // forward, reverse, unit...
	NewRate Quantity
	OldRate Quantity
}

func (a Split) Kind() ActionKind       { return SplitKind }
func (a Split) accept(v actionVisitor) { v.split(a) }
func (a Split) Validate() error {
	if err := a.validate(a.Kind()); err != nil {
		return err
	}
	if !a.NewRate.IsPositive() || !a.OldRate.IsPositive() {
		return malformed(a, "rates must be positive got %v:%v", a.NewRate, a.OldRate)
	}
	return nil
}

// Merger replaces the holding with Shares of NewSymbol per share and Cash per share.
// A delisting or a private acquisition has no NewSymbol.
type Merger struct {
	ActionHeader
	Subtype   string // stock, cash, stock_and_cash
	NewSymbol string // optional
	Cash      Money
	Shares    Quantity
}

func (a Merger) Kind() ActionKind       { return MergerKind }
func (a Merger) accept(v actionVisitor) { v.merger(a) }
func (a Merger) Validate() error {
	if err := a.validate(a.Kind()); err != nil {
		return err
	}
	if a.Cash.IsNegative() || a.Shares.IsNegative() {
		return malformed(a, "negative terms %v and %v shares", a.Cash, a.Shares)
	}
	if a.NewSymbol != "" && a.Shares.IsZero() {
		return malformed(a, "no shares of %s", a.NewSymbol)
	}
	if a.NewSymbol == a.Symbol {
		return malformed(a, "merging into itself")
	}
	return nil
}

// Spinoff credits Shares of NewSymbol per share held, the parent holding is kept.
type Spinoff struct {
	ActionHeader
	NewSymbol string
	Cash      Money
	Shares    Quantity
}

func (a Spinoff) Kind() ActionKind       { return SpinoffKind }
func (a Spinoff) accept(v actionVisitor) { v.spinoff(a) }
func (a Spinoff) Validate() error {
	if err := a.validate(a.Kind()); err != nil {
		return err
	}
	if a.NewSymbol == "" || a.NewSymbol == a.Symbol {
		return malformed(a, "invalid new symbol %q", a.NewSymbol)
	}
	if a.Cash.IsNegative() || !a.Shares.IsPositive() {
		return malformed(a, "invalid terms %v and %v shares", a.Cash, a.Shares)
	}
	return nil
}

// SymbolChange renames the holding.
type SymbolChange struct {
	ActionHeader
	NewSymbol string
}

func (a SymbolChange) Kind() ActionKind       { return SymbolChangeKind }
func (a SymbolChange) accept(v actionVisitor) { v.symbolChange(a) }
func (a SymbolChange) Validate() error {
	if err := a.validate(a.Kind()); err != nil {
		return err
	}
	if a.NewSymbol == "" {
		return malformed(a, "missing new symbol")
	}
	if a.NewSymbol == a.Symbol {
		return malformed(a, "new symbol is unchanged")
	}
	return nil
}

// newSymbolOf returns the symbol an action introduces, if any.
func newSymbolOf(a CorporateAction) string {
	var v newSymbolVisitor
	a.accept(&v)
	return string(v)
}

type newSymbolVisitor string

func (v *newSymbolVisitor) dividend(Dividend)           {}
func (v *newSymbolVisitor) split(Split)                 {}
func (v *newSymbolVisitor) merger(a Merger)             { *v = newSymbolVisitor(a.NewSymbol) }
func (v *newSymbolVisitor) spinoff(a Spinoff)           { *v = newSymbolVisitor(a.NewSymbol) }
func (v *newSymbolVisitor) symbolChange(a SymbolChange) { *v = newSymbolVisitor(a.NewSymbol) }

// DropSplitDayDividends removes dividends that duplicate a split: some providers report a
// split as well as a dividend on the same day whose cash equals the split's new rate.
func DropSplitDayDividends(actions []CorporateAction) []CorporateAction {
	type key struct {
		symbol string
		on     date.Date
	}
	splits := make(map[key]Split)
	for _, a := range actions {
		if s, ok := a.(Split); ok {
			splits[key{s.Symbol, s.Date}] = s
		}
	}
	kept := make([]CorporateAction, 0, len(actions))
	for _, a := range actions {
		if d, ok := a.(Dividend); ok {
			if s, found := splits[key{d.Symbol, d.Date}]; found && d.Cash.Decimal().Equal(s.NewRate.Decimal()) {
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept
}
