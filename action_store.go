package mirror

import (
	"context"
	"sort"

	"github.com/etnz/mirror/date"
)

// ActionStore is an in-memory ActionSource.
type ActionStore struct {
	bySymbol map[string][]CorporateAction // sorted by date
}

// NewActionStore indexes actions by symbol.
func NewActionStore(actions []CorporateAction) *ActionStore {
	s := &ActionStore{bySymbol: make(map[string][]CorporateAction)}
	for _, a := range actions {
		sym := a.Header().Symbol
		s.bySymbol[sym] = append(s.bySymbol[sym], a)
	}
	for _, list := range s.bySymbol {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Header().Date.Before(list[j].Header().Date) })
	}
	return s
}

// ActionsFor implements ActionSource.
func (s *ActionStore) ActionsFor(ctx context.Context, symbols []string, since date.Date) ([]CorporateAction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var res []CorporateAction
	for _, sym := range symbols {
		for _, a := range s.bySymbol[sym] {
			if !a.Header().Date.Before(since) {
				res = append(res, a)
			}
		}
	}
	return res, nil
}
