package mirror

import (
	"context"
	"testing"

	"github.com/etnz/mirror/date"
)

// fixedPrices is a HistoricalPrices backed by a map of symbol to day to close.
type fixedPrices map[string]map[string]float64

func (f fixedPrices) Closes(_ context.Context, symbols []string, r date.Range) (map[string]*date.History[Money], error) {
	res := make(map[string]*date.History[Money])
	for _, s := range symbols {
		for day, px := range f[s] {
			on := date.MustParse(day)
			if !r.Contains(on) {
				continue
			}
			if res[s] == nil {
				res[s] = new(date.History[Money])
			}
			res[s].Append(on, Dollars(px))
		}
	}
	return res, nil
}

func TestPerformance(t *testing.T) {
	orders := []Order{
		buy("2024-05-01", "A", 10, 10),
		buy("2024-05-06", "B", 1, 50),
	}
	store := NewActionStore([]CorporateAction{
		Dividend{ActionHeader: header("2024-05-03", "A"), Cash: Dollars(0.1), Shares: Q(1)},
	})
	prices := fixedPrices{
		"A": {"2024-05-02": 11, "2024-05-03": 12, "2024-05-06": 12, "2024-05-07": 13},
		"B": {"2024-05-07": 55},
	}
	p := NewPlayer(WithActionSource(store), WithClock(fixedClock("2024-06-30")))

	// 2024-05-02 is a Thursday, 05-04 and 05-05 are a weekend, 05-08 has no price.
	r := date.Range{From: date.MustParse("2024-05-02"), To: date.MustParse("2024-05-08")}
	perf, err := p.Performance(context.Background(), orders, prices, r)
	if err != nil {
		t.Fatalf("Performance() unexpected error: %v", err)
	}

	want := []struct {
		on          string
		cost, value float64
	}{
		{"2024-05-02", 100, 110},
		{"2024-05-03", 100, 120},
		{"2024-05-06", 150, 120}, // B not priced
		{"2024-05-07", 150, 185},
	}
	if len(perf.Points) != len(want) {
		t.Fatalf("Performance() = %d points, want %d: %+v", len(perf.Points), len(want), perf.Points)
	}
	for i, w := range want {
		got := perf.Points[i]
		if got.On != date.MustParse(w.on) || !got.Cost.Equal(Dollars(w.cost)) || !got.Value.Equal(Dollars(w.value)) {
			t.Errorf("Performance()[%d] = %v cost %v value %v, want %s cost %v value %v", i, got.On, got.Cost, got.Value, w.on, w.cost, w.value)
		}
	}
	if !perf.Dividends.Equal(Dollars(1)) {
		t.Errorf("Performance() dividends = %v, want 1", perf.Dividends)
	}
}
