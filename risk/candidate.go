package risk

import (
	"fmt"

	"github.com/rustyeddy/riskbudget/market"
)

// PriceMode selects where a candidate's current price comes from.
type PriceMode string

const (
	PriceAuto   PriceMode = "auto"
	PriceManual PriceMode = "manual"
)

// Deal is a stored trade idea as entered on the calculator.
type Deal struct {
	ID              string   `json:"id"`
	Pair            string   `json:"pair"`
	Direction       string   `json:"direction,omitempty"`
	Open            *float64 `json:"open"`
	StopLoss        *float64 `json:"sl"`
	TakeProfit      *float64 `json:"tp"`
	Lots            float64  `json:"lots,omitempty"`
	Deposit         float64  `json:"dep,omitempty"`
	DepositCurrency string   `json:"depCur,omitempty"`
	Created         int64    `json:"created,omitempty"` // unix ms
}

// Params are the per-deal knobs the user edits on the allocation screen.
// Entry, StopLoss and TakeProfit override the deal's own prices when set.
type Params struct {
	Enabled     *bool     `json:"enabled,omitempty"`
	PriceMode   PriceMode `json:"priceMode,omitempty"`
	ManualPrice *float64  `json:"manualPrice,omitempty"`
	Entry       *float64  `json:"entry,omitempty"`
	StopLoss    *float64  `json:"sl,omitempty"`
	TakeProfit  *float64  `json:"tp,omitempty"`
	ATR         *float64  `json:"atr,omitempty"`
}

// IsEnabled treats a missing flag as enabled.
func (p Params) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Mode normalizes anything but "manual" to auto.
func (p Params) Mode() PriceMode {
	if p.PriceMode == PriceManual {
		return PriceManual
	}
	return PriceAuto
}

// Candidate is a deal joined with its params, price and derived scores.
type Candidate struct {
	ID        string    `json:"id"`
	Index     int       `json:"index"`
	Pair      string    `json:"pair"`
	Enabled   bool      `json:"enabled"`
	Valid     bool      `json:"valid"`
	Weight    float64   `json:"weight"`
	Metrics   Metrics   `json:"metrics"`
	Price     *float64  `json:"price"`
	PriceMode PriceMode `json:"priceMode"`
}

// DealID returns the deal's id, or a positional fallback for legacy records.
func DealID(d Deal, index int) string {
	if d.ID != "" {
		return d.ID
	}
	return fmt.Sprintf("deal_%d", index)
}

// DefaultParams fills the gaps in existing from the deal itself: enabled by
// default, auto pricing, entry/sl/tp taken from the deal.
func DefaultParams(d Deal, existing Params) Params {
	p := existing
	if p.Enabled == nil {
		on := true
		p.Enabled = &on
	}
	p.PriceMode = p.Mode()
	p.ManualPrice = finite(p.ManualPrice)
	p.ATR = finite(p.ATR)
	if finite(p.Entry) == nil {
		p.Entry = finite(d.Open)
	}
	if finite(p.StopLoss) == nil {
		p.StopLoss = finite(d.StopLoss)
	}
	if finite(p.TakeProfit) == nil {
		p.TakeProfit = finite(d.TakeProfit)
	}
	return p
}

// BuildCandidates resolves prices and scores every deal. Disabled or
// invalid deals always carry a zero weight.
func BuildCandidates(deals []Deal, params map[string]Params, prices market.PriceSnapshot) []Candidate {
	out := make([]Candidate, 0, len(deals))
	for i, d := range deals {
		id := DealID(d, i)
		p := params[id]
		mode := p.Mode()

		var price *float64
		if mode == PriceManual {
			price = finite(p.ManualPrice)
		} else if key := market.NormalizePair(d.Pair); key != "" {
			if v, ok := prices.Get(key); ok {
				price = Float(v)
			}
		}

		m := DeriveMetrics(MetricInputs{
			Entry:      firstFinite(p.Entry, d.Open),
			StopLoss:   firstFinite(p.StopLoss, d.StopLoss),
			TakeProfit: firstFinite(p.TakeProfit, d.TakeProfit),
			Current:    price,
			ATR:        p.ATR,
		})

		c := Candidate{
			ID:        id,
			Index:     i,
			Pair:      d.Pair,
			Enabled:   p.IsEnabled(),
			Valid:     m.Valid,
			Metrics:   m,
			Price:     price,
			PriceMode: mode,
		}
		if c.Enabled && c.Valid {
			c.Weight = WeightOf(m)
		}
		out = append(out, c)
	}
	return out
}

func firstFinite(ps ...*float64) *float64 {
	for _, p := range ps {
		if v := finite(p); v != nil {
			return v
		}
	}
	return nil
}

// SwitchMode changes a deal's price mode. Going manual without a manual
// price seeds it from the snapshot so the candidate keeps its current price.
func SwitchMode(p Params, pair string, mode PriceMode, prices market.PriceSnapshot) Params {
	if mode != PriceManual {
		p.PriceMode = PriceAuto
		return p
	}
	p.PriceMode = PriceManual
	if finite(p.ManualPrice) == nil {
		if v, ok := prices.Get(pair); ok {
			p.ManualPrice = Float(v)
		}
	}
	return p
}
