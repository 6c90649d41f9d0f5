package pricedb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/mirror"
	"github.com/etnz/mirror/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a new database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(Schema)
	require.NoError(t, err)
	_, err = conn.Exec(`
		INSERT INTO historical_prices (symbol, date, close) VALUES
			('AAPL', '2024-01-02', '185.64'),
			('AAPL', '2024-01-03', '184.25'),
			('AAPL', '2024-01-08', '185.56'),
			('MSFT', '2024-01-03', '370.6'),
			('GOOG', '2024-01-03', '140.2');
		INSERT INTO corporate_actions (id, type, symbol, date, isin, details) VALUES
			('a1', 'split', 'AAPL', '2024-01-05', 'US0378331005', '{"newRate": 4, "oldRate": 1}'),
			('a2', 'dividend', 'AAPL', '2024-01-05', NULL, '{"cash": 4, "shares": 1}'),
			('a3', 'dividend', 'MSFT', '2024-02-15', NULL, '{"cash": 0.75, "shares": 1}'),
			('a4', 'symbol_change', 'FB', '2022-06-09', NULL, '{"newSymbol": "META"}'),
			('a5', 'spinoff', 'GOOG', '2023-12-01', NULL, '{"newSymbol": "GOOGX", "shares": 0.1}');
	`)
	require.NoError(t, err)
	return New(conn, zerolog.Nop())
}

func TestCloses(t *testing.T) {
	db := setupTestDB(t)
	r := date.Range{From: date.New(2024, 1, 3), To: date.New(2024, 1, 8)}

	got, err := db.Closes(context.Background(), []string{"AAPL", "MSFT", "TSLA"}, r)
	require.NoError(t, err)
	require.Len(t, got, 2)

	aapl := got["AAPL"]
	require.NotNil(t, aapl)
	assert.Equal(t, 2, aapl.Len())
	px, ok := aapl.Get(date.New(2024, 1, 3))
	require.True(t, ok)
	assert.True(t, px.Equal(mirror.Dollars(184.25)))
	_, ok = aapl.Get(date.New(2024, 1, 2))
	assert.False(t, ok, "out of range")

	px, ok = got["MSFT"].Get(date.New(2024, 1, 3))
	require.True(t, ok)
	assert.Equal(t, "370.6", px.Decimal().String())

	got, err = db.Closes(context.Background(), nil, r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestActionsFor(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.ActionsFor(context.Background(), []string{"AAPL", "MSFT"}, date.New(2024, 1, 1))
	require.NoError(t, err)
	// the split day dividend of AAPL is a provider artifact
	require.Len(t, got, 2)

	split, ok := got[0].(mirror.Split)
	require.True(t, ok, "got %T", got[0])
	assert.Equal(t, "a1", split.ID)
	assert.Equal(t, "US0378331005", split.ISIN)
	assert.True(t, split.NewRate.Equal(mirror.Q(4)))

	div, ok := got[1].(mirror.Dividend)
	require.True(t, ok, "got %T", got[1])
	assert.True(t, div.Cash.Equal(mirror.Dollars(0.75)))
	assert.Empty(t, div.ISIN)

	got, err = db.ActionsFor(context.Background(), []string{"GOOG", "FB"}, date.New(2024, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, got, "actions before since are left out")
}

func TestActionsForMalformed(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.conn.Exec(`INSERT INTO corporate_actions (id, type, symbol, date, details)
		VALUES ('bad', 'merger', 'TWTR', '2022-10-27', '{"newSymbol": "X"}')`)
	require.NoError(t, err)

	_, err = db.ActionsFor(context.Background(), []string{"TWTR"}, date.New(2022, 1, 1))
	assert.ErrorIs(t, err, mirror.ErrMalformedCorporateAction)
}

func TestReplayFromDB(t *testing.T) {
	db := setupTestDB(t)
	p := mirror.NewPlayer(
		mirror.WithActionSource(db),
		mirror.WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)
	orders := []mirror.Order{{
		ID: "o1", Symbol: "AAPL", Side: mirror.Buy, Status: mirror.Filled,
		FilledQty: mirror.Q(10), FilledAvgPrice: mirror.Dollars(180),
		CreatedAt: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
	}}

	res, err := p.Playback(context.Background(), orders)
	require.NoError(t, err)
	require.Len(t, res.Positions, 1)
	assert.True(t, res.Positions[0].Qty.Equal(mirror.Q(40)))
	assert.True(t, res.Cash.IsZero())
}

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.sqlite")
	rw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = rw.Exec(Schema)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.conn.Exec(`INSERT INTO historical_prices VALUES ('A', '2024-01-01', '1')`)
	assert.Error(t, err)
}
