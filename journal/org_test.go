package journal

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskbudget/risk"
)

func TestFormatPlanOrg(t *testing.T) {
	t.Parallel()

	p := samplePlan("01HZXABCDEF", time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC))
	p.Summary.Note = "no data for 1 trades"
	out := FormatPlanOrg(p)

	assert.True(t, strings.HasPrefix(out, "** Risk plan 2024-06-03T09:30:00Z (01HZXABC)\n"))
	assert.Contains(t, out, ":RUN_ID: 01HZXABCDEF\n")
	assert.Contains(t, out, ":USED_RISK: 2.00\n")
	assert.Contains(t, out, ":NOTE: no data for 1 trades\n")
	assert.Contains(t, out, "| d1 | EUR/USD | 0.7500 | 1.00 | 0.20 | covers usefulness share |")
	assert.Contains(t, out, "| d2 | USDJPY | 0.5000 | 1.00 | n/a | added to satisfy cap limit |")
	assert.Contains(t, out, "| d3 | GBPUSD | 0.0000 | 0.00 | - | disabled |")
}

func TestWritePlanCSV(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	require.NoError(t, WritePlanCSV(&b, samplePlan("R1", time.Now())))

	records, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, planHeader, records[0])
	assert.Equal(t, []string{"d1", "EUR/USD", "true", "0.750000", "1.000000", "true", "covers usefulness share", "0.20", "100.000000"}, records[1])
	assert.Equal(t, "", records[2][7])
}

func TestFormatPublication(t *testing.T) {
	t.Parallel()

	deals := []risk.Deal{
		{ID: "d1", Pair: "EUR/USD", Open: risk.Float(1.1), TakeProfit: risk.Float(1.11), StopLoss: risk.Float(1.095), Created: 20},
		{ID: "d2", Pair: "USDJPY", Open: risk.Float(150), Created: 10},
		{ID: "d3", Pair: "GBPUSD", Created: 5},
	}
	out := FormatPublication(deals, samplePlan("R1", time.Now()))

	want := strings.Join([]string{
		"USDJPY",
		"#1",
		"Entry: 150",
		"TP: -",
		"SL: -",
		"VOL: -",
		"",
		"EUR/USD",
		"#1",
		"Entry: 1.1",
		"TP: 1.11",
		"SL: 1.095",
		"VOL: 0.2",
	}, "\n")
	assert.Equal(t, want, out)
}
