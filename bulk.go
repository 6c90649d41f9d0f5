package mirror

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Portfolio identifies a portfolio by the slices its orders were placed for.
type Portfolio struct {
	ID       string
	SliceIDs []string
}

// ReplayPortfolios replays each portfolio from a shared order history, concurrently.
//
// The number of replays running at once is bounded by WithConcurrency.
// Orders are assigned to portfolios through their SliceID. A portfolio without any order gets
// an empty Result. Results are in the order of portfolios.
func ReplayPortfolios(ctx context.Context, p *Player, orders []Order, portfolios []Portfolio) ([]Result, error) {
	owner := make(map[string]int)
	for i, pf := range portfolios {
		for _, id := range pf.SliceIDs {
			owner[id] = i
		}
	}
	histories := make([][]Order, len(portfolios))
	for _, o := range orders {
		if i, ok := owner[o.SliceID]; ok {
			histories[i] = append(histories[i], o)
		}
	}

	results := make([]Result, len(portfolios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range portfolios {
		g.Go(func() error {
			res, err := p.Playback(ctx, histories[i])
			if errors.Is(err, ErrEmptyHistory) {
				results[i] = Result{Cash: Dollars(0)}
				return nil
			}
			if err != nil {
				return fmt.Errorf("portfolio %s: %w", portfolios[i].ID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
