package quotes

import (
	"context"
	"errors"
	"maps"

	"github.com/etnz/mirror"
	"github.com/rs/zerolog"
)

// Fallback asks Primary first and Secondary for the symbols Primary missed.
//
// A failing source counts as missing every symbol it was asked. Quotes only fails when both
// sources fail.
type Fallback struct {
	Primary   mirror.QuoteSource
	Secondary mirror.QuoteSource
	Log       zerolog.Logger
}

// Quotes implements mirror.QuoteSource.
func (f Fallback) Quotes(ctx context.Context, symbols []string) (map[string]mirror.Money, error) {
	res := make(map[string]mirror.Money, len(symbols))

	first, errPrimary := f.Primary.Quotes(ctx, symbols)
	if errPrimary != nil {
		f.Log.Warn().Err(errPrimary).Msg("primary quote source failed")
	}
	maps.Copy(res, first)

	var missed []string
	for _, s := range symbols {
		if _, ok := res[s]; !ok {
			missed = append(missed, s)
		}
	}
	if len(missed) == 0 || f.Secondary == nil {
		return res, errPrimary
	}

	second, errSecondary := f.Secondary.Quotes(ctx, missed)
	if errSecondary != nil {
		f.Log.Warn().Err(errSecondary).Msg("secondary quote source failed")
		if errPrimary != nil {
			return nil, errors.Join(errPrimary, errSecondary)
		}
		return res, nil
	}
	for _, s := range missed {
		if p, ok := second[s]; ok {
			res[s] = p
		}
	}
	f.Log.Debug().Int("missed", len(missed)).Int("recovered", len(second)).Msg("quote fallback")
	return res, nil
}
