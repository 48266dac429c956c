package market

import (
	"context"
	"fmt"
	"strings"
)

// StableCoins are treated as US dollars for conversion purposes.
var StableCoins = map[string]bool{
	"USDT": true,
	"USDC": true,
	"DAI":  true,
	"TUSD": true,
	"USDP": true,
}

// RateSource converts one unit of from into to.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// NormalizeCurrency upper-cases a currency code and folds stable coins into USD.
func NormalizeCurrency(c string) string {
	u := strings.ToUpper(strings.TrimSpace(c))
	if StableCoins[u] {
		return "USD"
	}
	return u
}

// QuoteToDepositRate returns how much deposit currency one unit of the
// instrument's quote currency is worth.
func QuoteToDepositRate(ctx context.Context, inst Instrument, depositCurrency string, rates RateSource) (float64, error) {
	quote := NormalizeCurrency(inst.QuoteCurrency)
	dep := NormalizeCurrency(depositCurrency)
	if quote == "" || dep == "" {
		return 0, fmt.Errorf("missing currency for %s", inst.Name)
	}

	// Case 1: quote currency == deposit currency (EUR/USD on a USD account)
	if quote == dep {
		return 1.0, nil
	}

	// Case 2: anything else goes through the rate source
	if rates == nil {
		return 0, fmt.Errorf("no rate source for %s → %s", quote, dep)
	}
	r, err := rates.Rate(ctx, quote, dep)
	if err != nil {
		return 0, fmt.Errorf("rate %s → %s: %w", quote, dep, err)
	}
	if r <= 0 {
		return 0, fmt.Errorf("rate %s → %s is not positive", quote, dep)
	}
	return r, nil
}

// StaticRates is a fixed table of conversion rates keyed "FROM/TO". The
// inverse direction is derived when only one side is present.
type StaticRates map[string]float64

func (s StaticRates) Rate(_ context.Context, from, to string) (float64, error) {
	from, to = NormalizeCurrency(from), NormalizeCurrency(to)
	if from == to {
		return 1, nil
	}
	if r, ok := s[from+"/"+to]; ok && r > 0 {
		return r, nil
	}
	if r, ok := s[to+"/"+from]; ok && r > 0 {
		return 1 / r, nil
	}
	return 0, fmt.Errorf("no rate for %s/%s", from, to)
}
