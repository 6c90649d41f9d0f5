package mirror

import (
	"context"
	"fmt"
	"strings"
)

// QuoteSource provides the latest share price of symbols.
type QuoteSource interface {
	// Quotes returns the prices it knows among symbols. Unknown symbols are simply left out.
	Quotes(ctx context.Context, symbols []string) (map[string]Money, error)
}

// Priceable reports whether quote sources can price symbol: cash and crypto pairs (BTCUSD,
// ETH/USD) cannot.
func Priceable(symbol string) bool {
	if symbol == CashSymbol {
		return false
	}
	return !(len(symbol) >= 6 && strings.HasSuffix(symbol, "USD"))
}

// ValuedPosition is a position with its current market value.
type ValuedPosition struct {
	Position
	SharePrice    Money
	MarketValue   Money
	UnrealizedPnL Money
}

// quote fetches the prices of the priceable symbols and reports the missing ones.
func quote(ctx context.Context, quotes QuoteSource, symbols []string) (map[string]Money, []Diagnostic, error) {
	var wanted []string
	seen := make(map[string]bool)
	for _, s := range symbols {
		if Priceable(s) && !seen[s] {
			seen[s] = true
			wanted = append(wanted, s)
		}
	}
	if len(wanted) == 0 {
		return map[string]Money{}, nil, nil
	}
	if quotes == nil {
		diags := make([]Diagnostic, len(wanted))
		for i, s := range wanted {
			diags[i] = Diagnostic{Kind: MissingPrice, Symbol: s, Message: "no quote source, valued at 0"}
		}
		return map[string]Money{}, diags, nil
	}
	prices, err := quotes.Quotes(ctx, wanted)
	if err != nil {
		return nil, nil, fmt.Errorf("quoting %d symbols: %w", len(wanted), err)
	}
	var diags []Diagnostic
	for _, s := range wanted {
		if _, ok := prices[s]; !ok {
			diags = append(diags, Diagnostic{Kind: MissingPrice, Symbol: s, Message: "no quote, valued at 0"})
		}
	}
	return prices, diags, nil
}

// AddMarketValues values the priceable positions at their latest price.
// Positions without a quote are valued at 0 and reported as MissingPrice diagnostics.
func AddMarketValues(ctx context.Context, quotes QuoteSource, positions []Position) ([]ValuedPosition, []Diagnostic, error) {
	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	prices, diags, err := quote(ctx, quotes, symbols)
	if err != nil {
		return nil, nil, err
	}

	valued := make([]ValuedPosition, 0, len(positions))
	for _, p := range positions {
		if !Priceable(p.Symbol) {
			continue
		}
		price := Dollars(0)
		if q, ok := prices[p.Symbol]; ok {
			price = q
		}
		mv := price.Mul(p.Qty)
		valued = append(valued, ValuedPosition{
			Position:      p,
			SharePrice:    price,
			MarketValue:   mv,
			UnrealizedPnL: mv.Sub(p.CostBasis),
		})
	}
	return valued, diags, nil
}
