package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskbudget/pkg/id"
	"github.com/rustyeddy/riskbudget/risk"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	for _, name := range []string{"deals", "params", "settings", "allocation_runs", "allocation_results"} {
		assert.True(t, found[name], name)
	}
}

func TestSQLiteDeals(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	a, err := j.SaveDeal(ctx, risk.Deal{Pair: " eur/usd ", Open: risk.Float(1.1), StopLoss: risk.Float(1.09)})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "EUR/USD", a.Pair)
	assert.NotZero(t, a.Created)

	b, err := j.SaveDeal(ctx, risk.Deal{ID: "b", Pair: "XAUUSD", TakeProfit: risk.Float(2400)})
	require.NoError(t, err)

	deals, err := j.ListDeals(ctx)
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, a.ID, deals[0].ID)
	assert.Equal(t, "b", deals[1].ID)
	assert.Nil(t, deals[0].TakeProfit)
	assert.Equal(t, 1.09, *deals[0].StopLoss)

	// Update keeps position.
	a.Lots = 0.5
	_, err = j.SaveDeal(ctx, a)
	require.NoError(t, err)
	deals, err = j.ListDeals(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, deals[0].ID)
	assert.Equal(t, 0.5, deals[0].Lots)

	got, err := j.GetDeal(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2400.0, *got.TakeProfit)

	_, err = j.GetDeal(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteDeleteDealDropsParams(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	_, err := j.SaveDeal(ctx, risk.Deal{ID: "x", Pair: "EURUSD"})
	require.NoError(t, err)
	require.NoError(t, j.SaveParams(ctx, "x", risk.Params{ATR: risk.Float(0.004)}))

	require.NoError(t, j.DeleteDeal(ctx, "x"))
	params, err := j.LoadParams(ctx)
	require.NoError(t, err)
	assert.Empty(t, params)

	assert.ErrorIs(t, j.DeleteDeal(ctx, "x"), ErrNotFound)
}

func TestSQLiteParams(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	off := false
	p := risk.Params{Enabled: &off, PriceMode: risk.PriceManual, ManualPrice: risk.Float(1.2345), ATR: risk.Float(0.002)}
	require.NoError(t, j.SaveParams(ctx, "d1", p))

	p.ATR = risk.Float(0.003)
	require.NoError(t, j.SaveParams(ctx, "d1", p))

	got, err := j.LoadParams(ctx)
	require.NoError(t, err)
	require.Contains(t, got, "d1")
	assert.False(t, got["d1"].IsEnabled())
	assert.Equal(t, risk.PriceManual, got["d1"].PriceMode)
	assert.Equal(t, 0.003, *got["d1"].ATR)
	assert.Nil(t, got["d1"].Entry)
}

func TestSQLiteSettings(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	s, err := j.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, risk.DefaultSettings(), s)

	require.NoError(t, j.SaveSettings(ctx, risk.Settings{TotalRisk: 3, MaxRisk: 1.5, UsefulnessShare: 2}))
	s, err = j.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, risk.Settings{TotalRisk: 3, MaxRisk: 1.5, UsefulnessShare: 1}, s)
}

func TestSQLiteSeedSettings(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	seed := risk.Settings{TotalRisk: 5, MaxRisk: 2, UsefulnessShare: 0.5}
	require.NoError(t, j.SeedSettings(ctx, seed))
	require.NoError(t, j.SeedSettings(ctx, risk.DefaultSettings()))

	s, err := j.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed, s)
}

func TestSQLiteCreatedFromID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	dealID := id.NewAt(at)
	require.NoError(t, j.ReplaceDeals(ctx, []risk.Deal{{ID: dealID, Pair: "eurusd"}}))

	d, err := j.GetDeal(ctx, dealID)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), d.Created)
	assert.Equal(t, "EURUSD", d.Pair)
}

func TestSQLiteReplaceDeals(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	_, err := j.SaveDeal(ctx, risk.Deal{ID: "old", Pair: "EURUSD"})
	require.NoError(t, err)
	require.NoError(t, j.SaveParams(ctx, "old", risk.Params{}))
	require.NoError(t, j.SaveParams(ctx, "keep", risk.Params{ATR: risk.Float(1)}))

	require.NoError(t, j.ReplaceDeals(ctx, []risk.Deal{
		{ID: "keep", Pair: "gbpusd"},
		{ID: "new", Pair: "USDJPY"},
	}))

	deals, err := j.ListDeals(ctx)
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, "keep", deals[0].ID)
	assert.Equal(t, "GBPUSD", deals[0].Pair)
	assert.Equal(t, "new", deals[1].ID)

	params, err := j.LoadParams(ctx)
	require.NoError(t, err)
	assert.Len(t, params, 1)
	assert.Contains(t, params, "keep")
}
