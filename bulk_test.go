package mirror

import (
	"context"
	"testing"
)

func TestReplayPortfolios(t *testing.T) {
	withSlice := func(o Order, id string) Order {
		o.SliceID = id
		return o
	}
	orders := []Order{
		withSlice(buy("2024-01-02", "A", 1, 10), "s1"),
		withSlice(buy("2024-01-02", "B", 2, 10), "s2"),
		withSlice(buy("2024-01-03", "C", 3, 10), "s3"),
		withSlice(buy("2024-01-03", "D", 4, 10), "unknown"),
	}
	portfolios := []Portfolio{
		{ID: "p1", SliceIDs: []string{"s1", "s2"}},
		{ID: "p2", SliceIDs: []string{"s3"}},
		{ID: "p3", SliceIDs: []string{"s4"}},
	}
	results, err := ReplayPortfolios(context.Background(), NewPlayer(), orders, portfolios)
	if err != nil {
		t.Fatalf("ReplayPortfolios() unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("ReplayPortfolios() = %d results, want 3", len(results))
	}
	if got := symbols(results[0].Positions); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("p1 symbols = %v, want [A B]", got)
	}
	if got := symbols(results[1].Positions); len(got) != 1 || got[0] != "C" {
		t.Errorf("p2 symbols = %v, want [C]", got)
	}
	if len(results[2].Positions) != 0 || !results[2].Cash.IsZero() {
		t.Errorf("p3 = %+v, want an empty result", results[2])
	}
}
