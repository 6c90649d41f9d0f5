package pricedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/etnz/mirror"
	"github.com/etnz/mirror/date"
)

// ActionsFor implements mirror.ActionSource.
//
// A row that does not make a valid action fails the whole call with an error wrapping
// mirror.ErrMalformedCorporateAction.
func (db *DB) ActionsFor(ctx context.Context, symbols []string, since date.Date) ([]mirror.CorporateAction, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	placeholders, args := in(symbols)
	args = append(args, since.String())
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, type, symbol, date, isin, details FROM corporate_actions
		 WHERE symbol IN `+placeholders+` AND date >= ?
		 ORDER BY date, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying corporate actions: %w", err)
	}
	defer rows.Close()

	var actions []mirror.CorporateAction
	for rows.Next() {
		var (
			h       mirror.ActionHeader
			kind    string
			day     string
			isin    sql.NullString
			details string
		)
		if err := rows.Scan(&h.ID, &kind, &h.Symbol, &day, &isin, &details); err != nil {
			return nil, fmt.Errorf("reading corporate action: %w", err)
		}
		if h.Date, err = date.Parse(day); err != nil {
			return nil, fmt.Errorf("corporate action %s: %v: %w", h.ID, err, mirror.ErrMalformedCorporateAction)
		}
		h.ISIN = isin.String
		a, err := mirror.NewCorporateAction(mirror.ActionKind(kind), h, []byte(details))
		if err != nil {
			return nil, fmt.Errorf("corporate action %s: %w", h.ID, err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading corporate actions: %w", err)
	}
	db.log.Debug().Strs("symbols", symbols).Stringer("since", since).Int("actions", len(actions)).Msg("loaded corporate actions")
	return mirror.DropSplitDayDividends(actions), nil
}
