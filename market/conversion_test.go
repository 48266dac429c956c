package market

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRates struct {
	rate     float64
	err      error
	called   int
	from, to string
}

func (f *fakeRates) Rate(_ context.Context, from, to string) (float64, error) {
	f.called++
	f.from, f.to = from, to
	return f.rate, f.err
}

func TestQuoteToDepositRate_SameCurrency(t *testing.T) {
	t.Parallel()

	src := &fakeRates{}
	inst, err := Lookup("EURUSD", "USD")
	require.NoError(t, err)

	r, err := QuoteToDepositRate(context.Background(), inst, "usd", src)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)
	assert.Equal(t, 0, src.called)
}

func TestQuoteToDepositRate_StableCoinIsUSD(t *testing.T) {
	t.Parallel()

	inst, err := Lookup("BTCUSDT", "USD")
	require.NoError(t, err)

	r, err := QuoteToDepositRate(context.Background(), inst, "USD", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)
}

func TestQuoteToDepositRate_UsesSource(t *testing.T) {
	t.Parallel()

	src := &fakeRates{rate: 0.0066}
	inst, err := Lookup("USDJPY", "USD")
	require.NoError(t, err)

	r, err := QuoteToDepositRate(context.Background(), inst, "USD", src)
	require.NoError(t, err)
	assert.Equal(t, 0.0066, r)
	assert.Equal(t, "JPY", src.from)
	assert.Equal(t, "USD", src.to)
}

func TestQuoteToDepositRate_Errors(t *testing.T) {
	t.Parallel()

	inst, err := Lookup("USDJPY", "USD")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = QuoteToDepositRate(ctx, inst, "USD", nil)
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = QuoteToDepositRate(ctx, inst, "USD", &fakeRates{err: boom})
	assert.ErrorIs(t, err, boom)

	_, err = QuoteToDepositRate(ctx, inst, "USD", &fakeRates{rate: -1})
	assert.Error(t, err)

	_, err = QuoteToDepositRate(ctx, inst, "", &fakeRates{rate: 1})
	assert.Error(t, err)
}

func TestStaticRates(t *testing.T) {
	t.Parallel()

	rates := StaticRates{"EUR/USD": 1.25}
	ctx := context.Background()

	r, err := rates.Rate(ctx, "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.25, r)

	r, err = rates.Rate(ctx, "usd", "eur")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, r, 1e-12)

	r, err = rates.Rate(ctx, "USDT", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)

	_, err = rates.Rate(ctx, "GBP", "JPY")
	assert.Error(t, err)
}
