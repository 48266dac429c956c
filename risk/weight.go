package risk

import "math"

// Weight scores a candidate for capital-allocation priority:
//
//	rr / ((1 + danger)^2 * (1 + closeness))
//
// The squared danger term discounts stops that sit inside normal volatility
// much harder than the closeness term discounts late entries. The result is
// always finite and >= 0.
func Weight(rr, danger, closeness float64) float64 {
	if !finiteAll(rr, danger, closeness) {
		return 0
	}
	base := 1 + danger
	closeFactor := 1 + closeness
	if !finiteAll(base, closeFactor) || base <= 0 || closeFactor <= 0 {
		return 0
	}
	penalty := base * base
	if math.IsInf(penalty, 0) || penalty <= 0 {
		return 0
	}
	w := rr / (penalty * closeFactor)
	if !finiteAll(w) || w < 0 {
		return 0
	}
	return w
}

// WeightOf scores derived metrics, returning 0 unless they are valid.
func WeightOf(m Metrics) float64 {
	if !m.Valid {
		return 0
	}
	return Weight(*m.RewardRisk, *m.Danger, *m.Closeness)
}

func finiteAll(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
