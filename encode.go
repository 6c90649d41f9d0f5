package mirror

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/etnz/mirror/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// scanLines calls fn with every non empty line of r and its 1-based number.
func scanLines(r io.Reader, fn func(n int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}
		if err := fn(n, line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading from input: %w", err)
	}
	return nil
}

// orderLine is the JSON form of an Order.
type orderLine struct {
	ID             string              `json:"id,omitempty"`
	Symbol         string              `json:"symbol"`
	Side           Side                `json:"side"`
	FilledQty      decimal.NullDecimal `json:"filledQty"`
	FilledAvgPrice decimal.NullDecimal `json:"filledAvgPrice"`
	Status         OrderStatus         `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	SliceID        string              `json:"sliceId,omitempty"`
}

// DecodeOrders reads orders from a stream of JSONL data.
//
// Quantities and prices of orders that did not fill may be null.
func DecodeOrders(r io.Reader) ([]Order, error) {
	var orders []Order
	err := scanLines(r, func(_ int, line []byte) error {
		var tmp orderLine
		if err := json.Unmarshal(line, &tmp); err != nil {
			return err
		}
		if tmp.Symbol == "" {
			return fmt.Errorf("order %q: missing symbol", tmp.ID)
		}
		if tmp.Side != Buy && tmp.Side != Sell {
			return fmt.Errorf("order %q: unknown side %q", tmp.ID, tmp.Side)
		}
		if tmp.CreatedAt.IsZero() {
			return fmt.Errorf("order %q: missing createdAt", tmp.ID)
		}
		orders = append(orders, Order{
			ID:             tmp.ID,
			Symbol:         tmp.Symbol,
			Side:           tmp.Side,
			FilledQty:      Q(tmp.FilledQty.Decimal),
			FilledAvgPrice: Dollars(tmp.FilledAvgPrice.Decimal),
			Status:         tmp.Status,
			CreatedAt:      tmp.CreatedAt,
			SliceID:        tmp.SliceID,
		})
		return nil
	})
	return orders, err
}

// EncodeOrder writes a single order as a JSON line.
func EncodeOrder(w io.Writer, o Order) error {
	line := orderLine{
		ID:             o.ID,
		Symbol:         o.Symbol,
		Side:           o.Side,
		FilledQty:      decimal.NewNullDecimal(o.FilledQty.value),
		FilledAvgPrice: decimal.NewNullDecimal(o.FilledAvgPrice.value),
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
		SliceID:        o.SliceID,
	}
	return encodeLine(w, line)
}

func encodeLine(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// actionLine is the JSON form of a corporate action, the payload is in details.
type actionLine struct {
	ID      string          `json:"id"`
	Type    ActionKind      `json:"type"`
	Symbol  string          `json:"symbol"`
	Date    date.Date       `json:"date"`
	ISIN    *string         `json:"isin"`
	Details json.RawMessage `json:"details"`
}

// actionDetails holds every payload field of every kind.
type actionDetails struct {
	Subtype   string              `json:"subtype"`
	Cash      decimal.NullDecimal `json:"cash"`
	Shares    decimal.NullDecimal `json:"shares"`
	NewRate   decimal.NullDecimal `json:"newRate"`
	OldRate   decimal.NullDecimal `json:"oldRate"`
	NewSymbol string              `json:"newSymbol"`
}

// NewCorporateAction builds the action of the given kind from its JSON payload.
//
// It returns an error wrapping ErrMalformedCorporateAction if the kind is unknown, if a
// required field is missing, or if the action does not validate.
func NewCorporateAction(kind ActionKind, h ActionHeader, details []byte) (CorporateAction, error) {
	var d actionDetails
	if len(details) > 0 {
		if err := json.Unmarshal(details, &d); err != nil {
			return nil, fmt.Errorf("%s %s: invalid details: %v: %w", kind, h.Symbol, err, ErrMalformedCorporateAction)
		}
	}
	require := func(name string, v decimal.NullDecimal) (decimal.Decimal, error) {
		if !v.Valid {
			return decimal.Zero, fmt.Errorf("%s %s on %s: missing %s: %w", kind, h.Symbol, h.Date, name, ErrMalformedCorporateAction)
		}
		return v.Decimal, nil
	}
	optional := func(v decimal.NullDecimal) decimal.Decimal {
		if !v.Valid {
			return decimal.Zero
		}
		return v.Decimal
	}

	var a CorporateAction
	switch kind {
	case DividendKind:
		cash, err := require("cash", d.Cash)
		if err != nil {
			return nil, err
		}
		shares, err := require("shares", d.Shares)
		if err != nil {
			return nil, err
		}
		a = Dividend{ActionHeader: h, Subtype: DividendSubtype(d.Subtype), Cash: Dollars(cash), Shares: Q(shares)}
	case SplitKind:
		newRate, err := require("newRate", d.NewRate)
		if err != nil {
			return nil, err
		}
		oldRate, err := require("oldRate", d.OldRate)
		if err != nil {
			return nil, err
		}
		a = Split{ActionHeader: h, Subtype: d.Subtype, NewRate: Q(newRate), OldRate: Q(oldRate)}
	case MergerKind:
		cash, err := require("cash", d.Cash)
		if err != nil {
			return nil, err
		}
		a = Merger{ActionHeader: h, Subtype: d.Subtype, NewSymbol: d.NewSymbol, Cash: Dollars(cash), Shares: Q(optional(d.Shares))}
	case SpinoffKind:
		shares, err := require("shares", d.Shares)
		if err != nil {
			return nil, err
		}
		a = Spinoff{ActionHeader: h, NewSymbol: d.NewSymbol, Cash: Dollars(optional(d.Cash)), Shares: Q(shares)}
	case SymbolChangeKind:
		a = SymbolChange{ActionHeader: h, NewSymbol: d.NewSymbol}
	default:
		return nil, fmt.Errorf("unknown corporate action type %q: %w", kind, ErrMalformedCorporateAction)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// DecodeCorporateActions reads corporate actions from a stream of JSONL data.
func DecodeCorporateActions(r io.Reader) ([]CorporateAction, error) {
	var actions []CorporateAction
	err := scanLines(r, func(_ int, line []byte) error {
		var tmp actionLine
		if err := json.Unmarshal(line, &tmp); err != nil {
			return err
		}
		h := ActionHeader{ID: tmp.ID, Symbol: tmp.Symbol, Date: tmp.Date}
		if tmp.ISIN != nil {
			h.ISIN = *tmp.ISIN
		}
		a, err := NewCorporateAction(tmp.Type, h, tmp.Details)
		if err != nil {
			return err
		}
		actions = append(actions, a)
		return nil
	})
	return actions, err
}

// detailsWriter writes the payload of each kind of action.
type detailsWriter struct{ w *jsonObjectWriter }

func (v detailsWriter) dividend(a Dividend) {
	v.w.Optional("subtype", string(a.Subtype)).Append("cash", a.Cash).Append("shares", a.Shares)
}

func (v detailsWriter) split(a Split) {
	v.w.Optional("subtype", a.Subtype).Append("newRate", a.NewRate).Append("oldRate", a.OldRate)
}

func (v detailsWriter) merger(a Merger) {
	v.w.Optional("subtype", a.Subtype).Optional("newSymbol", a.NewSymbol).Append("cash", a.Cash).Append("shares", a.Shares)
}

func (v detailsWriter) spinoff(a Spinoff) {
	v.w.Append("newSymbol", a.NewSymbol).Append("cash", a.Cash).Append("shares", a.Shares)
}

func (v detailsWriter) symbolChange(a SymbolChange) {
	v.w.Append("newSymbol", a.NewSymbol)
}

// ActionDetails returns the JSON payload of a, as read by NewCorporateAction.
func ActionDetails(a CorporateAction) ([]byte, error) {
	var w jsonObjectWriter
	a.accept(detailsWriter{&w})
	return w.MarshalJSON()
}

// EncodeCorporateAction writes a single corporate action as a JSON line.
func EncodeCorporateAction(w io.Writer, a CorporateAction) error {
	h := a.Header()
	var ow jsonObjectWriter
	ow.Optional("id", h.ID).
		Append("type", a.Kind()).
		Append("symbol", h.Symbol).
		Append("date", h.Date).
		Optional("isin", h.ISIN).
		Object("details", func(d *jsonObjectWriter) { a.accept(detailsWriter{d}) })
	b, err := ow.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// sliceLine is the JSON form of a Slice.
type sliceLine struct {
	ID          string `json:"id"`
	PortfolioID string `json:"portfolioId,omitempty"`
	Asset       struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name,omitempty"`
	} `json:"asset"`
	Percent       Percent       `json:"percent"`
	Deleted       bool          `json:"deleted,omitempty"`
	DeletedAt     *time.Time    `json:"deletedAt,omitempty"`
	DeletedReason DeletedReason `json:"deletedReason,omitempty"`
}

// DecodeSlices reads slices from a stream of JSONL data.
func DecodeSlices(r io.Reader) ([]Slice, error) {
	var slices []Slice
	err := scanLines(r, func(_ int, line []byte) error {
		var tmp sliceLine
		if err := json.Unmarshal(line, &tmp); err != nil {
			return err
		}
		if tmp.Asset.Symbol == "" {
			return fmt.Errorf("slice %q: missing asset symbol", tmp.ID)
		}
		s := Slice{
			ID:            tmp.ID,
			PortfolioID:   tmp.PortfolioID,
			Asset:         Asset{ID: tmp.Asset.ID, Symbol: tmp.Asset.Symbol, Name: tmp.Asset.Name},
			Percent:       tmp.Percent,
			Deleted:       tmp.Deleted,
			DeletedReason: tmp.DeletedReason,
		}
		if tmp.DeletedAt != nil {
			s.DeletedAt = *tmp.DeletedAt
		}
		slices = append(slices, s)
		return nil
	})
	return slices, err
}

// EncodeSlice writes a single slice as a JSON line.
func EncodeSlice(w io.Writer, s Slice) error {
	var tmp sliceLine
	tmp.ID, tmp.PortfolioID = s.ID, s.PortfolioID
	tmp.Asset.ID, tmp.Asset.Symbol, tmp.Asset.Name = s.Asset.ID, s.Asset.Symbol, s.Asset.Name
	tmp.Percent, tmp.Deleted, tmp.DeletedReason = s.Percent, s.Deleted, s.DeletedReason
	if !s.DeletedAt.IsZero() {
		tmp.DeletedAt = &s.DeletedAt
	}
	return encodeLine(w, tmp)
}

// EncodePositions writes positions as JSON lines.
func EncodePositions(w io.Writer, positions []Position) error {
	for _, p := range positions {
		var ow jsonObjectWriter
		ow.Append("symbol", p.Symbol).
			Append("qty", p.Qty).
			Append("costBasis", p.CostBasis).
			Append("avgCostPerShare", p.AvgCostPerShare).
			Append("realizedPnl", p.RealizedPnL)
		b, err := ow.MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// holdingUpdateLine is the JSON form of a HoldingUpdate.
type holdingUpdateLine struct {
	Asset struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name,omitempty"`
	} `json:"asset"`
	Percent Percent `json:"percent"`
}

// DecodeHoldingUpdates reads the composition of the reference fund from a stream of JSONL data.
func DecodeHoldingUpdates(r io.Reader) ([]HoldingUpdate, error) {
	var updates []HoldingUpdate
	err := scanLines(r, func(_ int, line []byte) error {
		var tmp holdingUpdateLine
		if err := json.Unmarshal(line, &tmp); err != nil {
			return err
		}
		if tmp.Asset.ID == "" || tmp.Asset.Symbol == "" {
			return fmt.Errorf("fund holding: missing asset id or symbol")
		}
		updates = append(updates, HoldingUpdate{
			Asset:   Asset{ID: tmp.Asset.ID, Symbol: tmp.Asset.Symbol, Name: tmp.Asset.Name},
			Percent: tmp.Percent,
		})
		return nil
	})
	return updates, err
}
