package mirror

// CashSymbol is the reserved symbol for uninvested cash received from corporate actions.
const CashSymbol = "CASH"

// Position is the state of one symbol under the average cost basis method.
type Position struct {
	Symbol          string
	Qty             Quantity
	CostBasis       Money // total for the remaining shares
	AvgCostPerShare Money
	RealizedPnL     Money
}

// recomputeAvg restores AvgCostPerShare == CostBasis / Qty, or 0 when Qty is 0.
func (p *Position) recomputeAvg() {
	if p.Qty.IsZero() {
		p.AvgCostPerShare = Money{cur: p.CostBasis.cur}
		return
	}
	p.AvgCostPerShare = p.CostBasis.Div(p.Qty)
}

// book is the position table of a replay.
//
// It is an ordered map: index maps a symbol to a slot in the arena, slots are never moved so
// renames and merges only rewrite index entries. Removed slots stay as tombstones.
type book struct {
	index map[string]int
	arena []slot
	cash  Money
}

type slot struct {
	pos  Position
	dead bool
}

func newBook() *book {
	return &book{index: make(map[string]int), cash: Dollars(0)}
}

// get returns the position held for symbol, or nil.
func (b *book) get(symbol string) *Position {
	i, ok := b.index[symbol]
	if !ok {
		return nil
	}
	return &b.arena[i].pos
}

// upsert returns the position for symbol, creating an empty one at the end if needed.
func (b *book) upsert(symbol string) *Position {
	if p := b.get(symbol); p != nil {
		return p
	}
	b.index[symbol] = len(b.arena)
	b.arena = append(b.arena, slot{pos: Position{
		Symbol:          symbol,
		CostBasis:       Dollars(0),
		AvgCostPerShare: Dollars(0),
		RealizedPnL:     Dollars(0),
	}})
	return &b.arena[len(b.arena)-1].pos
}

// remove deletes symbol from the table.
func (b *book) remove(symbol string) {
	i, ok := b.index[symbol]
	if !ok {
		return
	}
	b.arena[i].dead = true
	delete(b.index, symbol)
}

// rename moves the position of from under the key to, keeping its slot.
// If to is already held, from is folded into it.
func (b *book) rename(from, to string) {
	i, ok := b.index[from]
	if !ok {
		return
	}
	delete(b.index, from)
	if j, exists := b.index[to]; exists {
		src, dst := &b.arena[i].pos, &b.arena[j].pos
		dst.Qty = dst.Qty.Add(src.Qty)
		dst.CostBasis = dst.CostBasis.Add(src.CostBasis)
		dst.RealizedPnL = dst.RealizedPnL.Add(src.RealizedPnL)
		dst.recomputeAvg()
		b.arena[i].dead = true
		return
	}
	b.index[to] = i
	b.arena[i].pos.Symbol = to
}

// positions returns a copy of the live positions, in the order they were opened.
func (b *book) positions() []Position {
	res := make([]Position, 0, len(b.index))
	for _, s := range b.arena {
		if !s.dead {
			res = append(res, s.pos)
		}
	}
	return res
}
