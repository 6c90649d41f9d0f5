package mirror

import (
	"context"
	"testing"
)

func TestPriceable(t *testing.T) {
	testCases := []struct {
		symbol string
		want   bool
	}{
		{"AAPL", true},
		{"BRK.B", true},
		{CashSymbol, false},
		{"BTCUSD", false},
		{"ETH/USD", false},
		{"USD", true},
	}
	for _, tc := range testCases {
		if got := Priceable(tc.symbol); got != tc.want {
			t.Errorf("Priceable(%q) = %v, want %v", tc.symbol, got, tc.want)
		}
	}
}

func TestAddMarketValues(t *testing.T) {
	positions := []Position{
		{Symbol: "AAPL", Qty: Q(2), CostBasis: Dollars(300)},
		{Symbol: "BTCUSD", Qty: Q(1), CostBasis: Dollars(30000)},
		{Symbol: "GONE", Qty: Q(3), CostBasis: Dollars(30)},
	}
	got, diags, err := AddMarketValues(context.Background(), fixedQuotes{"AAPL": 200}, positions)
	if err != nil {
		t.Fatalf("AddMarketValues() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("AddMarketValues() = %d positions, want 2", len(got))
	}
	if p := got[0]; !p.MarketValue.Equal(Dollars(400)) || !p.UnrealizedPnL.Equal(Dollars(100)) || !p.SharePrice.Equal(Dollars(200)) {
		t.Errorf("AAPL = %+v", p)
	}
	if p := got[1]; !p.MarketValue.IsZero() || !p.UnrealizedPnL.Equal(Dollars(-30)) {
		t.Errorf("GONE = %+v", p)
	}
	if len(diags) != 1 || diags[0].Kind != MissingPrice || diags[0].Symbol != "GONE" {
		t.Errorf("AddMarketValues() diagnostics = %v, want MissingPrice for GONE", diags)
	}
}
