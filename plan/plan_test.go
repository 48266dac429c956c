package plan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskbudget/market"
	"github.com/rustyeddy/riskbudget/risk"
)

func fixtureDeals() []risk.Deal {
	return []risk.Deal{
		{ID: "eu", Pair: "EUR/USD", Open: risk.Float(1.1000), StopLoss: risk.Float(1.0950), TakeProfit: risk.Float(1.1100)},
		{ID: "uj", Pair: "USDJPY", Open: risk.Float(150.00), StopLoss: risk.Float(149.50), TakeProfit: risk.Float(151.50)},
		{ID: "off", Pair: "GBPUSD", Open: risk.Float(1.27), StopLoss: risk.Float(1.26), TakeProfit: risk.Float(1.29)},
	}
}

func fixtureParams() map[string]risk.Params {
	off := false
	return map[string]risk.Params{
		"eu":  {ATR: risk.Float(0.0050)},
		"uj":  {ATR: risk.Float(0.50), PriceMode: risk.PriceManual, ManualPrice: risk.Float(150.00)},
		"off": {Enabled: &off, ATR: risk.Float(0.01)},
	}
}

func TestCompute(t *testing.T) {
	t.Parallel()

	snap := market.NewSnapshot(map[string]float64{"EUR/USD": 1.1000}, []string{"GBPUSD"}, time.Now())
	rates := market.StaticRates{"USD/JPY": 150}

	p := Compute(context.Background(), Input{
		Deals:    fixtureDeals(),
		Params:   fixtureParams(),
		Prices:   snap,
		Settings: risk.Settings{TotalRisk: 2, MaxRisk: 1, UsefulnessShare: 0.8},
		Account:  Account{Deposit: 10000, Currency: "USD"},
	}, rates)

	require.Len(t, p.Rows, 3)
	assert.Equal(t, []string{"GBPUSD"}, p.Missing)

	eu, uj, off := p.Rows[0], p.Rows[1], p.Rows[2]
	assert.Equal(t, "EUR/USD", eu.Pair)
	assert.True(t, eu.Active)
	assert.True(t, uj.Active)
	assert.InDelta(t, 1.0, eu.Risk, 1e-9)
	assert.InDelta(t, 1.0, uj.Risk, 1e-9)

	// 1% of 10000 over a 50 pip stop on a standard lot.
	require.NotNil(t, eu.Lots)
	assert.InDelta(t, 0.2, eu.Lots.Lots, 1e-12)

	// JPY quote converted at 1/150.
	require.NotNil(t, uj.Lots)
	assert.InDelta(t, 0.3, uj.Lots.Lots, 1e-12)

	assert.False(t, off.Active)
	assert.Nil(t, off.Lots)
	assert.Equal(t, risk.StatusDisabled, off.Status)
	assert.InDelta(t, 2.0, p.Summary.UsedRisk, 1e-9)
}

func TestCompute_LotErrorKeepsRow(t *testing.T) {
	t.Parallel()

	deals := fixtureDeals()[1:2]
	params := map[string]risk.Params{"uj": fixtureParams()["uj"]}

	p := Compute(context.Background(), Input{
		Deals:    deals,
		Params:   params,
		Settings: risk.DefaultSettings(),
		Account:  Account{Deposit: 10000, Currency: "USD"},
	}, nil)

	require.Len(t, p.Rows, 1)
	assert.True(t, p.Rows[0].Active)
	assert.Nil(t, p.Rows[0].Lots)
	assert.Contains(t, p.Rows[0].LotError, "JPY")
}

func TestCompute_DealDepositOverridesAccount(t *testing.T) {
	t.Parallel()

	d := fixtureDeals()[0]
	d.Deposit = 5000
	d.DepositCurrency = "usd"

	p := Compute(context.Background(), Input{
		Deals:    []risk.Deal{d},
		Params:   map[string]risk.Params{"eu": {ATR: risk.Float(0.005), PriceMode: risk.PriceManual, ManualPrice: risk.Float(1.1)}},
		Settings: risk.Settings{TotalRisk: 1, MaxRisk: 1, UsefulnessShare: 0.8},
		Account:  Account{Deposit: 10000, Currency: "EUR"},
	}, nil)

	require.NotNil(t, p.Rows[0].Lots)
	assert.InDelta(t, 0.1, p.Rows[0].Lots.Lots, 1e-12)
}

func TestAutoPairs(t *testing.T) {
	t.Parallel()

	got := AutoPairs(fixtureDeals(), fixtureParams())
	assert.Equal(t, []string{"EUR/USD", "GBPUSD"}, got)
}
