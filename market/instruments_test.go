package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pair string
		want Kind
		ok   bool
	}{
		{"EUR/USD", KindFX, true},
		{"usdjpy", KindFX, true},
		{" XAUUSD ", KindMetal, true},
		{"XAG/USD", KindMetal, true},
		{"GER40", KindIndex, true},
		{"BTCUSDT", KindCrypto, true},
		{"ETH/USD", KindCrypto, true},
		{"SBER", KindStock, true},
		{"DOGEUSDT", "", false},
		{"", "", false},
		{"ABCDEFGH", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.pair, func(t *testing.T) {
			t.Parallel()
			got, ok := KindOf(tt.pair)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContractSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100.0, ContractSize("XAUUSD"))
	assert.Equal(t, 5000.0, ContractSize("xag/usd"))
	assert.Equal(t, 1.0, ContractSize("BTCUSDT"))
	assert.Equal(t, 1.0, ContractSize("GAZP"))
	assert.Equal(t, float64(DefaultContractSize), ContractSize("EURUSD"))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pair, dep   string
		base, quote string
		kind        Kind
	}{
		{"EUR/USD", "USD", "EUR", "USD", KindFX},
		{"GBPJPY", "USD", "GBP", "JPY", KindFX},
		{"XAUUSD", "EUR", "XAU", "USD", KindMetal},
		{"BTCUSDT", "USD", "BTC", "USDT", KindCrypto},
		{"GER40", "USD", "GER40", "EUR", KindIndex},
		{"SBER", "rub", "SBER", "RUB", KindStock},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.pair, func(t *testing.T) {
			t.Parallel()
			inst, err := Lookup(tt.pair, tt.dep)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, inst.Kind)
			assert.Equal(t, tt.base, inst.BaseCurrency)
			assert.Equal(t, tt.quote, inst.QuoteCurrency)
			assert.Greater(t, inst.ContractSize, 0.0)
		})
	}

	_, err := Lookup("NOPE", "USD")
	assert.Error(t, err)
}

func TestParseFX(t *testing.T) {
	t.Parallel()

	p, ok := ParseFX("eur/usd")
	require.True(t, ok)
	assert.Equal(t, Pair{Base: "EUR", Quote: "USD"}, p)

	_, ok = ParseFX("EUR/")
	assert.False(t, ok)
	_, ok = ParseFX("EURUS")
	assert.False(t, ok)
}
