package risk

import (
	"testing"
	"time"

	"github.com/rustyeddy/riskbudget/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptySnapshot() market.PriceSnapshot { return market.PriceSnapshot{} }

func boolPtr(b bool) *bool { return &b }

func eurusd(id string) Deal {
	return Deal{
		ID:         id,
		Pair:       " eur/usd ",
		Open:       Float(1.1000),
		StopLoss:   Float(1.0950),
		TakeProfit: Float(1.1100),
	}
}

func TestBuildCandidates_AutoPrice(t *testing.T) {
	t.Parallel()

	snap := market.NewSnapshot(map[string]float64{"EUR/USD": 1.1010}, nil, time.Now())
	params := map[string]Params{"d1": {ATR: Float(0.0050)}}

	got := BuildCandidates([]Deal{eurusd("d1")}, params, snap)
	require.Len(t, got, 1)

	c := got[0]
	assert.Equal(t, "d1", c.ID)
	assert.True(t, c.Enabled)
	assert.True(t, c.Valid)
	assert.Equal(t, PriceAuto, c.PriceMode)
	require.NotNil(t, c.Price)
	assert.InDelta(t, 1.1010, *c.Price, 1e-12)

	// rr 2, danger 1, closeness 0.2
	assert.InDelta(t, 2.0/(4*1.2), c.Weight, 1e-9)
}

func TestBuildCandidates_ManualPriceWins(t *testing.T) {
	t.Parallel()

	snap := market.NewSnapshot(map[string]float64{"EUR/USD": 1.2}, nil, time.Now())
	params := map[string]Params{"d1": {ATR: Float(0.0050), PriceMode: PriceManual, ManualPrice: Float(1.1000)}}

	c := BuildCandidates([]Deal{eurusd("d1")}, params, snap)[0]
	assert.Equal(t, PriceManual, c.PriceMode)
	assert.InDelta(t, 1.1000, *c.Price, 1e-12)
	assert.InDelta(t, 0.0, *c.Metrics.Closeness, 1e-9)
}

func TestBuildCandidates_MissingPriceIsInvalid(t *testing.T) {
	t.Parallel()

	params := map[string]Params{"d1": {ATR: Float(0.0050)}}
	c := BuildCandidates([]Deal{eurusd("d1")}, params, emptySnapshot())[0]

	assert.Nil(t, c.Price)
	assert.False(t, c.Valid)
	assert.Equal(t, 0.0, c.Weight)
}

func TestBuildCandidates_DisabledHasZeroWeight(t *testing.T) {
	t.Parallel()

	params := map[string]Params{"d1": {
		Enabled:     boolPtr(false),
		ATR:         Float(0.0050),
		PriceMode:   PriceManual,
		ManualPrice: Float(1.1),
	}}
	c := BuildCandidates([]Deal{eurusd("d1")}, params, emptySnapshot())[0]

	assert.False(t, c.Enabled)
	assert.True(t, c.Valid)
	assert.Equal(t, 0.0, c.Weight)
}

func TestBuildCandidates_ParamsOverrideDeal(t *testing.T) {
	t.Parallel()

	params := map[string]Params{"deal_0": {
		Entry:       Float(1.1050),
		ATR:         Float(0.0050),
		PriceMode:   PriceManual,
		ManualPrice: Float(1.1050),
	}}
	c := BuildCandidates([]Deal{eurusd("")}, params, emptySnapshot())[0]

	assert.Equal(t, "deal_0", c.ID)
	// risk 0.0100, reward 0.0050
	assert.InDelta(t, 0.5, *c.Metrics.RewardRisk, 1e-9)
}

func TestDefaultParams(t *testing.T) {
	t.Parallel()

	p := DefaultParams(eurusd("d1"), Params{StopLoss: Float(1.09), PriceMode: "bogus"})

	require.NotNil(t, p.Enabled)
	assert.True(t, *p.Enabled)
	assert.Equal(t, PriceAuto, p.PriceMode)
	assert.InDelta(t, 1.1, *p.Entry, 1e-12)
	assert.InDelta(t, 1.09, *p.StopLoss, 1e-12)
	assert.InDelta(t, 1.11, *p.TakeProfit, 1e-12)
	assert.Nil(t, p.ATR)

	off := DefaultParams(eurusd("d1"), Params{Enabled: boolPtr(false)})
	assert.False(t, *off.Enabled)
}

func TestSwitchMode(t *testing.T) {
	t.Parallel()

	snap := market.NewSnapshot(map[string]float64{"EUR/USD": 1.0871}, nil, time.Now())

	p := SwitchMode(Params{}, "eur/usd", PriceManual, snap)
	assert.Equal(t, PriceManual, p.PriceMode)
	require.NotNil(t, p.ManualPrice)
	assert.Equal(t, 1.0871, *p.ManualPrice)

	kept := SwitchMode(Params{ManualPrice: Float(1.2)}, "EUR/USD", PriceManual, snap)
	assert.Equal(t, 1.2, *kept.ManualPrice)

	back := SwitchMode(kept, "EUR/USD", PriceAuto, snap)
	assert.Equal(t, PriceAuto, back.PriceMode)
	assert.Equal(t, 1.2, *back.ManualPrice)

	unpriced := SwitchMode(Params{}, "GER40", PriceManual, snap)
	assert.Nil(t, unpriced.ManualPrice)
}
