package market

import (
	"context"
	"sort"
	"time"
)

// PriceSource fetches the latest price of one symbol.
type PriceSource interface {
	Price(ctx context.Context, pair string) (float64, error)
}

// PriceSnapshot is an immutable set of prices keyed by NormalizePair. The
// zero value is an empty snapshot.
type PriceSnapshot struct {
	prices    map[string]float64
	missing   []string
	updatedAt time.Time
}

// NewSnapshot copies prices so later edits by the caller are not observed.
func NewSnapshot(prices map[string]float64, missing []string, at time.Time) PriceSnapshot {
	p := make(map[string]float64, len(prices))
	for k, v := range prices {
		p[NormalizePair(k)] = v
	}
	m := append([]string(nil), missing...)
	sort.Strings(m)
	return PriceSnapshot{prices: p, missing: m, updatedAt: at}
}

func (s PriceSnapshot) Get(pair string) (float64, bool) {
	v, ok := s.prices[NormalizePair(pair)]
	return v, ok
}

// Prices returns a copy of the price table.
func (s PriceSnapshot) Prices() map[string]float64 {
	out := make(map[string]float64, len(s.prices))
	for k, v := range s.prices {
		out[k] = v
	}
	return out
}

// Missing lists the pairs that were requested but could not be priced.
func (s PriceSnapshot) Missing() []string { return append([]string(nil), s.missing...) }

func (s PriceSnapshot) UpdatedAt() time.Time { return s.updatedAt }

func (s PriceSnapshot) Len() int { return len(s.prices) }
