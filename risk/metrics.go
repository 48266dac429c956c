package risk

import "math"

// MetricInputs are the raw prices for one candidate. Any field may be nil.
type MetricInputs struct {
	Entry      *float64
	StopLoss   *float64
	TakeProfit *float64
	Current    *float64
	ATR        *float64
}

// Metrics holds the three dimensionless scores of a candidate. A nil field
// means the score could not be derived from the inputs.
type Metrics struct {
	RewardRisk *float64 `json:"rr"`
	Danger     *float64 `json:"danger"`
	Closeness  *float64 `json:"closeness"`
	Valid      bool     `json:"valid"`
}

// DeriveMetrics computes reward/risk, danger and closeness.
//
//	rr        = |tp - entry| / |entry - sl|
//	danger    = atr / |entry - sl|
//	closeness = |current - entry| / atr
func DeriveMetrics(in MetricInputs) Metrics {
	entry := finite(in.Entry)
	sl := finite(in.StopLoss)
	tp := finite(in.TakeProfit)
	now := finite(in.Current)
	atr := positive(finite(in.ATR))

	var riskDist, rewardDist *float64
	if entry != nil && sl != nil {
		riskDist = positive(Float(math.Abs(*entry - *sl)))
	}
	if entry != nil && tp != nil {
		rewardDist = positive(Float(math.Abs(*tp - *entry)))
	}

	var m Metrics
	if riskDist != nil && rewardDist != nil {
		m.RewardRisk = Float(*rewardDist / *riskDist)
	}
	if atr != nil && riskDist != nil {
		m.Danger = Float(*atr / *riskDist)
	}
	if atr != nil && entry != nil && now != nil {
		m.Closeness = Float(math.Abs(*now-*entry) / *atr)
	}

	m.Valid = isFinite(m.RewardRisk) && *m.RewardRisk > 0 &&
		isFinite(m.Danger) && *m.Danger >= 0 &&
		isFinite(m.Closeness) && *m.Closeness >= 0
	return m
}

// Float returns a pointer to v. Handy for building optional prices.
func Float(v float64) *float64 {
	return &v
}

func finite(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	return p
}

func positive(p *float64) *float64 {
	if p == nil || *p <= 0 {
		return nil
	}
	return p
}

func isFinite(p *float64) bool {
	return finite(p) != nil
}
