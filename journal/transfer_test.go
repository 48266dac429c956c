package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskbudget/risk"
)

func TestParseBundle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		deals   int
		wantErr bool
	}{
		{"bare array", `[{"id":"a","pair":"EURUSD","open":1.1},{"pair":"XAUUSD"}]`, 2, false},
		{"object", `{"type":"riskbudget_v1","deals":[{"id":"a"}],"settings":{"totalRisk":3,"maxRisk":1,"usefulnessShare":0.7}}`, 1, false},
		{"older export", `{"type":"calc_choice_v1","limitUsd":100,"deals":[]}`, 0, false},
		{"no deals", `{"type":"riskbudget_v1"}`, 0, true},
		{"not json", `deals: []`, 0, true},
		{"empty", `   `, 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := ParseBundle([]byte(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadImport)
				return
			}
			require.NoError(t, err)
			assert.Len(t, b.Deals, tt.deals)
		})
	}
}

func TestEnsureIDs(t *testing.T) {
	t.Parallel()

	got := EnsureIDs([]risk.Deal{{ID: "a"}, {}, {ID: "a"}, {ID: "b"}})
	require.Len(t, got, 4)

	assert.Equal(t, "a", got[0].ID)
	assert.NotEmpty(t, got[1].ID)
	assert.NotEqual(t, "a", got[2].ID)
	assert.Equal(t, "b", got[3].ID)

	seen := map[string]bool{}
	for _, d := range got {
		assert.False(t, seen[d.ID], d.ID)
		seen[d.ID] = true
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	t.Parallel()

	src, _ := newTestSQLite(t)
	ctx := context.Background()

	in := `{
	  "deals": [
	    {"id": "eu", "pair": "EUR/USD", "open": 1.1, "sl": 1.095, "tp": 1.11, "created": 1700000000000},
	    {"pair": "XAUUSD", "open": 2300, "sl": 2290, "tp": 2330}
	  ],
	  "params": {"eu": {"atr": 0.005, "priceMode": "manual", "manualPrice": 1.1}},
	  "settings": {"totalRisk": 3, "maxRisk": 1.5, "usefulnessShare": 0.9}
	}`
	n, err := Import(ctx, src, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, src, &buf))

	var b Bundle
	require.NoError(t, json.Unmarshal(buf.Bytes(), &b))
	assert.Equal(t, ExportType, b.Type)
	require.Len(t, b.Deals, 2)
	assert.Equal(t, "eu", b.Deals[0].ID)
	assert.NotEmpty(t, b.Deals[1].ID)
	assert.Equal(t, 0.005, *b.Params["eu"].ATR)
	require.NotNil(t, b.Settings)
	assert.Equal(t, 3.0, b.Settings.TotalRisk)

	dst, _ := newTestSQLite(t)
	n, err = Import(ctx, dst, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	deals, err := dst.ListDeals(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.Deals[1].ID, deals[1].ID)
}

func TestExportEmptyStore(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), j, &buf))
	assert.Contains(t, buf.String(), `"deals": []`)
}
