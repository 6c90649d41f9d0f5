package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/mirror/date"
	"github.com/rs/zerolog"
)

// ActionSource provides the corporate actions of a set of symbols.
type ActionSource interface {
	// ActionsFor returns the actions of symbols effective on or after since.
	ActionsFor(ctx context.Context, symbols []string, since date.Date) ([]CorporateAction, error)
}

// Player replays orders and corporate actions into positions.
//
// A Player holds no state between calls and can be shared by concurrent replays.
type Player struct {
	source      ActionSource
	log         zerolog.Logger
	now         func() time.Time
	concurrency int
}

// Option configures a Player.
type Option func(*Player)

// WithActionSource sets where actions of symbols discovered during a replay are fetched.
// Without it, mergers, spinoffs and symbol changes do not pull the new symbol's actions.
func WithActionSource(s ActionSource) Option { return func(p *Player) { p.source = s } }

// WithLogger sets the logger, the default discards everything.
func WithLogger(l zerolog.Logger) Option { return func(p *Player) { p.log = l } }

// WithClock sets the clock used to ignore corporate actions effective in the future.
func WithClock(now func() time.Time) Option { return func(p *Player) { p.now = now } }

// WithConcurrency bounds the number of portfolios ReplayPortfolios replays at once.
func WithConcurrency(n int) Option { return func(p *Player) { p.concurrency = max(n, 1) } }

// NewPlayer returns a Player configured with opts.
func NewPlayer(opts ...Option) *Player {
	p := &Player{log: zerolog.Nop(), now: time.Now, concurrency: 8}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot is the state of the positions at the end of a day.
type Snapshot struct {
	On        date.Date
	Positions []Position // without cash
	Cash      Money
}

// Result of a replay.
type Result struct {
	Positions   []Position // final positions, without cash, in the order they were opened
	Cash        Money      // cash received from corporate actions
	Snapshots   []Snapshot // one per requested day, in chronological order
	Diagnostics []Diagnostic
}

// Playback fetches the corporate actions of the ordered symbols since the first order, and replays them with the orders.
func (p *Player) Playback(ctx context.Context, orders []Order, emitAt ...date.Date) (Result, error) {
	if len(orders) == 0 {
		return Result{}, ErrEmptyHistory
	}
	var symbols []string
	known := make(map[string]bool)
	earliest := orders[0].CreatedAt
	for _, o := range orders {
		if !known[o.Symbol] {
			known[o.Symbol] = true
			symbols = append(symbols, o.Symbol)
		}
		if o.CreatedAt.Before(earliest) {
			earliest = o.CreatedAt
		}
	}

	var actions []CorporateAction
	if p.source != nil {
		var err error
		actions, err = p.source.ActionsFor(ctx, symbols, date.Of(earliest.UTC()))
		if err != nil {
			return Result{}, fmt.Errorf("fetching corporate actions: %w", err)
		}
	}
	return p.Replay(ctx, orders, actions, emitAt...)
}

// Replay merges orders, actions and snapshot requests in a single timeline and replays it
// from an empty position table.
//
// actions are expected to cover every ordered symbol since the first order. Actions of the
// symbols introduced by a merger, a spinoff or a symbol change are fetched from the
// ActionSource, at most once per symbol.
//
// It returns ErrEmptyHistory if there is no order, and an error wrapping
// ErrMalformedCorporateAction as soon as an invalid action is met.
func (p *Player) Replay(ctx context.Context, orders []Order, actions []CorporateAction, emitAt ...date.Date) (Result, error) {
	if len(orders) == 0 {
		return Result{}, ErrEmptyHistory
	}
	r := &replay{
		source: p.source,
		log:    p.log.With().Str("component", "playback").Logger(),
		today:  date.Of(p.now().UTC()),
		book:   newBook(),
		seen:   make(map[string]bool),
	}

	events := make([]event, 0, len(orders)+len(actions)+len(emitAt))
	for _, o := range orders {
		r.seen[o.Symbol] = true
		if o.executed() {
			events = append(events, orderEvent{o})
		}
	}
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return Result{}, err
		}
		events = append(events, actionEvent{a})
	}
	for _, on := range emitAt {
		events = append(events, emitEvent{on})
	}
	r.journal.push(events...)

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		e, ok := r.journal.pop()
		if !ok {
			break
		}
		if err := e.play(r); err != nil {
			return Result{}, err
		}
		if err := r.expand(ctx); err != nil {
			return Result{}, err
		}
	}

	return Result{
		Positions:   r.book.positions(),
		Cash:        r.book.cash,
		Snapshots:   r.snapshots,
		Diagnostics: r.diagnostics,
	}, nil
}

// replay is the state of a single Replay call.
type replay struct {
	source ActionSource
	log    zerolog.Logger
	today  date.Date

	journal     journal
	book        *book
	seen        map[string]bool // symbols whose actions are already in the journal
	pending     []fetchRequest
	snapshots   []Snapshot
	diagnostics []Diagnostic
}

// fetchRequest is a symbol whose actions must be merged in the journal.
type fetchRequest struct {
	symbol string
	since  date.Date
}

// discover queues the fetch of the actions of symbol, unless already done.
func (r *replay) discover(symbol string, since date.Date) {
	if symbol == "" || r.seen[symbol] {
		return
	}
	r.seen[symbol] = true
	r.pending = append(r.pending, fetchRequest{symbol: symbol, since: since})
}

// expand drains the pending fetches into the journal.
func (r *replay) expand(ctx context.Context) error {
	for len(r.pending) > 0 {
		req := r.pending[0]
		r.pending = r.pending[1:]
		if r.source == nil {
			continue
		}
		actions, err := r.source.ActionsFor(ctx, []string{req.symbol}, req.since)
		if err != nil {
			return fmt.Errorf("fetching corporate actions for %s since %s: %w", req.symbol, req.since, err)
		}
		events := make([]event, 0, len(actions))
		for _, a := range actions {
			if err := a.Validate(); err != nil {
				return err
			}
			events = append(events, actionEvent{a})
		}
		r.journal.push(events...)
		r.log.Debug().Str("symbol", req.symbol).Stringer("since", req.since).Int("actions", len(actions)).Msg("merged actions of new symbol")
	}
	return nil
}

func (r *replay) warn(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
	r.log.Warn().Str("kind", d.Kind.String()).Str("symbol", d.Symbol).Stringer("on", d.On).Msg(d.Message)
}

func (e emitEvent) play(r *replay) error {
	r.snapshots = append(r.snapshots, Snapshot{On: e.on, Positions: r.book.positions(), Cash: r.book.cash})
	return nil
}

func (e orderEvent) play(r *replay) error {
	o := e.order
	pos := r.book.upsert(o.Symbol)
	switch o.Side {
	case Buy:
		pos.Qty = pos.Qty.Add(o.FilledQty)
		pos.CostBasis = pos.CostBasis.Add(o.proceeds())
		pos.recomputeAvg()
	case Sell:
		if o.FilledQty.GreaterThan(pos.Qty) {
			r.warn(Diagnostic{
				Kind:    AnomalousSale,
				Symbol:  o.Symbol,
				On:      date.Of(o.CreatedAt.UTC()),
				Message: fmt.Sprintf("selling %v shares out of %v held", o.FilledQty, pos.Qty),
			})
		}
		// no tracked shares means no known cost
		avgCost := Dollars(0)
		if pos.Qty.IsPositive() {
			avgCost = pos.CostBasis.Div(pos.Qty)
		}
		newQty := pos.Qty.Sub(o.FilledQty)
		removed := avgCost.Mul(o.FilledQty)
		if newQty.IsZero() {
			// the whole cost leaves with the last share
			removed = pos.CostBasis
		}
		pos.RealizedPnL = pos.RealizedPnL.Add(o.proceeds().Sub(removed))
		pos.CostBasis = pos.CostBasis.Sub(removed)
		pos.Qty = newQty
		pos.recomputeAvg()
	default:
		return fmt.Errorf("order %q on %s: unknown side %q", o.ID, o.Symbol, o.Side)
	}
	return nil
}

func (e actionEvent) play(r *replay) error {
	h := e.action.Header()
	if h.Date.After(r.today) {
		// left for a later replay
		return nil
	}
	e.action.accept(applier{r})
	r.discover(newSymbolOf(e.action), h.Date)
	return nil
}

// applier applies corporate actions to the book.
type applier struct{ r *replay }

// held returns the position of symbol when shares are held.
func (v applier) held(symbol string) *Position {
	pos := v.r.book.get(symbol)
	if pos == nil || !pos.Qty.IsPositive() {
		return nil
	}
	return pos
}

func (v applier) dividend(a Dividend) {
	pos := v.held(a.Symbol)
	if pos == nil {
		return
	}
	v.r.book.cash = v.r.book.cash.Add(a.Cash.Mul(pos.Qty))
	stock := pos.Qty.Mul(a.Shares.Sub(Q(1)))
	pos.Qty = pos.Qty.Add(stock)
	pos.recomputeAvg()
}

func (v applier) split(a Split) {
	pos := v.held(a.Symbol)
	if pos == nil {
		return
	}
	// multiply before dividing so that 1-for-3 of 9 shares is exactly 3
	pos.Qty = pos.Qty.Mul(a.NewRate).Div(a.OldRate)
	pos.recomputeAvg()
}

func (v applier) merger(a Merger) {
	pos := v.held(a.Symbol)
	if pos == nil {
		return
	}
	qty := pos.Qty
	v.r.book.cash = v.r.book.cash.Add(a.Cash.Mul(qty))
	if a.NewSymbol != "" {
		np := v.r.book.upsert(a.NewSymbol)
		np.Qty = np.Qty.Add(qty.Mul(a.Shares))
		np.recomputeAvg()
	}
	if a.NewSymbol == "" && a.Cash.IsZero() {
		v.r.log.Warn().Str("symbol", a.Symbol).Stringer("on", a.Date).Msg("merger without shares nor cash ignored")
		return
	}
	v.r.book.remove(a.Symbol)
}

func (v applier) spinoff(a Spinoff) {
	pos := v.held(a.Symbol)
	if pos == nil {
		return
	}
	qty := pos.Qty
	v.r.book.cash = v.r.book.cash.Add(a.Cash.Mul(qty))
	// The parent keeps its whole cost basis.
	np := v.r.book.upsert(a.NewSymbol)
	np.Qty = np.Qty.Add(qty.Mul(a.Shares))
	np.recomputeAvg()
}

func (v applier) symbolChange(a SymbolChange) {
	// applies to any tracked quantity, including negative phantom ones
	v.r.book.rename(a.Symbol, a.NewSymbol)
}
