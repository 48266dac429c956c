package risk

import (
	"fmt"
	"math"
	"sort"
)

const (
	// Epsilon is the tolerance used for every percentage comparison.
	Epsilon = 1e-9
	// MaxIterations bounds both the redistribution and the expansion loops.
	MaxIterations = 50
)

// Default allocation settings.
const (
	DefaultTotalRisk       = 2.0
	DefaultMaxRisk         = 1.0
	DefaultUsefulnessShare = 0.8
)

// Status explains why a candidate did or did not receive risk.
type Status string

const (
	StatusDisabled     Status = "disabled"
	StatusNoData       Status = "insufficient data"
	StatusZeroWeight   Status = "weight <= 0"
	StatusBudgetZero   Status = "budget is zero"
	StatusUsefulness   Status = "covers usefulness share"
	StatusCapLimit     Status = "added to satisfy cap limit"
	StatusCapPressure  Status = "added due to cap pressure"
	StatusOutsideShare Status = "outside usefulness share"
)

// Summary notes.
const (
	NoteNoTrades      = "no trades"
	NoteBudgetZero    = "risk budget or per-trade cap is zero"
	NoteNoEnabled     = "no enabled trades"
	NoteNoData        = "insufficient data to compute weights"
	NoteZeroWeights   = "all enabled trades have zero weight"
	NoteCapsExhausted = "risk budget could not be fully used because of per-trade caps"
)

// Settings are the user's budget parameters, all in percent of capital
// except UsefulnessShare which is a fraction.
type Settings struct {
	TotalRisk       float64 `json:"totalRisk" yaml:"total_risk"`
	MaxRisk         float64 `json:"maxRisk" yaml:"max_risk"`
	UsefulnessShare float64 `json:"usefulnessShare" yaml:"usefulness_share"`
}

// DefaultSettings returns a 2% budget, 1% cap and 80% usefulness share.
func DefaultSettings() Settings {
	return Settings{
		TotalRisk:       DefaultTotalRisk,
		MaxRisk:         DefaultMaxRisk,
		UsefulnessShare: DefaultUsefulnessShare,
	}
}

// NormalizeSettings replaces non-finite values with defaults and clamps the
// usefulness share into [0, 1].
func NormalizeSettings(s Settings) Settings {
	d := DefaultSettings()
	if !finiteAll(s.TotalRisk) {
		s.TotalRisk = d.TotalRisk
	}
	if !finiteAll(s.MaxRisk) {
		s.MaxRisk = d.MaxRisk
	}
	if !finiteAll(s.UsefulnessShare) {
		s.UsefulnessShare = d.UsefulnessShare
	}
	s.UsefulnessShare = math.Min(math.Max(s.UsefulnessShare, 0), 1)
	return s
}

// Result is the allocation outcome for a single candidate.
type Result struct {
	ID      string   `json:"id"`
	Risk    float64  `json:"risk"`
	Active  bool     `json:"active"`
	Status  Status   `json:"status"`
	Weight  float64  `json:"weight"`
	Enabled bool     `json:"enabled"`
	Price   *float64 `json:"price"`
	Metrics Metrics  `json:"metrics"`
}

// Summary aggregates one allocation run.
type Summary struct {
	TotalRisk    float64 `json:"totalRisk"`
	UsedRisk     float64 `json:"usedRisk"`
	Leftover     float64 `json:"leftover"`
	ActiveCount  int     `json:"activeCount"`
	ActiveWeight float64 `json:"activeWeight"`
	EnabledCount int     `json:"enabledCount"`
	InvalidCount int     `json:"invalidCount"`
	Note         string  `json:"note"`
}

// Allocation is the full output of Allocate. Results follow candidate order.
type Allocation struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

// ByID indexes the results by candidate id.
func (a Allocation) ByID() map[string]Result {
	out := make(map[string]Result, len(a.Results))
	for _, r := range a.Results {
		out[r.ID] = r
	}
	return out
}

// Allocate splits s.TotalRisk across the candidates.
//
// Candidates are ranked by weight and taken greedily until they cover
// UsefulnessShare of the total weight, topped up to the minimum count that
// could absorb the budget under MaxRisk, then water-filled. While the caps
// leave budget unused the next-ranked candidate joins and the fill is rerun.
//
// Allocate is a pure function; degenerate inputs produce zero allocations
// with an explanatory note rather than an error.
func Allocate(cands []Candidate, s Settings) Allocation {
	sum := Summary{
		TotalRisk: s.TotalRisk,
		Leftover:  math.Max(s.TotalRisk, 0),
	}
	for _, c := range cands {
		if c.Enabled {
			sum.EnabledCount++
			if !c.Valid {
				sum.InvalidCount++
			}
		}
	}

	if len(cands) == 0 {
		sum.Note = NoteNoTrades
		return Allocation{Results: []Result{}, Summary: sum}
	}

	if s.TotalRisk <= 0 || s.MaxRisk <= 0 {
		sum.Note = NoteBudgetZero
		return Allocation{Results: zeroResults(cands, func(c Candidate) Status {
			if !c.Enabled {
				return StatusDisabled
			}
			return StatusBudgetZero
		}), Summary: sum}
	}

	if sum.EnabledCount == 0 {
		sum.Note = NoteNoEnabled
		return Allocation{Results: zeroResults(cands, func(Candidate) Status {
			return StatusDisabled
		}), Summary: sum}
	}

	valid := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Enabled && c.Valid && c.Weight > 0 {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		if sum.InvalidCount > 0 {
			sum.Note = NoteNoData
		} else {
			sum.Note = NoteZeroWeights
		}
		return Allocation{Results: zeroResults(cands, baseStatus), Summary: sum}
	}

	// Input order breaks ties.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Weight > valid[j].Weight
	})

	var totalWeight float64
	for _, c := range valid {
		totalWeight += c.Weight
	}
	target := totalWeight * s.UsefulnessShare

	var (
		active []Candidate
		reason = make(map[string]Status, len(valid))
	)
	activate := func(c Candidate, st Status) {
		active = append(active, c)
		reason[c.ID] = st
	}

	var cumulative float64
	for _, c := range valid {
		activate(c, StatusUsefulness)
		cumulative += c.Weight
		if cumulative >= target {
			break
		}
	}

	minDeals := int(math.Ceil(s.TotalRisk / s.MaxRisk))
	if len(active) < minDeals {
		for _, c := range valid {
			if _, ok := reason[c.ID]; ok {
				continue
			}
			activate(c, StatusCapLimit)
			if len(active) >= minDeals {
				break
			}
		}
	}

	var (
		riskByID map[string]float64
		leftover float64
		next     int
	)
	for expansions := 0; expansions < MaxIterations; expansions++ {
		riskByID, leftover = fillCapped(active, s.TotalRisk, s.MaxRisk)
		if leftover <= Epsilon {
			break
		}

		added := false
		for next < len(valid) {
			c := valid[next]
			next++
			if _, ok := reason[c.ID]; !ok {
				activate(c, StatusCapPressure)
				added = true
				break
			}
		}
		if !added {
			break
		}
	}

	for _, c := range active {
		sum.ActiveWeight += c.Weight
		r := riskByID[c.ID]
		sum.UsedRisk += r
		if r > Epsilon {
			sum.ActiveCount++
		}
	}
	sum.Leftover = math.Max(s.TotalRisk-sum.UsedRisk, 0)

	switch {
	case sum.Leftover > Epsilon && len(active) == len(valid):
		sum.Note = NoteCapsExhausted
	case sum.InvalidCount > 0:
		sum.Note = fmt.Sprintf("no data for %d trades", sum.InvalidCount)
	}

	results := make([]Result, len(cands))
	for i, c := range cands {
		st := baseStatus(c)
		if st == StatusOutsideShare {
			if r, ok := reason[c.ID]; ok {
				st = r
			}
		}
		risk := riskByID[c.ID]
		_, inSet := reason[c.ID]
		results[i] = newResult(c, st)
		results[i].Risk = risk
		results[i].Active = inSet && risk > Epsilon
	}
	return Allocation{Results: results, Summary: sum}
}

// fillCapped water-fills budget across set in proportion to weight, never
// letting a single entry exceed limit. It returns the per-id risk and the
// budget that could not be placed.
func fillCapped(set []Candidate, budget, limit float64) (map[string]float64, float64) {
	riskByID := make(map[string]float64, len(set))

	var weightSum float64
	for _, c := range set {
		weightSum += c.Weight
	}
	if weightSum <= 0 {
		return riskByID, budget
	}

	for _, c := range set {
		riskByID[c.ID] = math.Min(budget*(c.Weight/weightSum), limit)
	}
	leftover := budget - total(riskByID)

	for iter := 0; leftover > Epsilon && iter < MaxIterations; iter++ {
		var (
			open    []Candidate
			openSum float64
		)
		for _, c := range set {
			if riskByID[c.ID] < limit-Epsilon {
				open = append(open, c)
				openSum += c.Weight
			}
		}
		if len(open) == 0 || openSum <= 0 {
			break
		}
		for _, c := range open {
			add := leftover * (c.Weight / openSum)
			riskByID[c.ID] = math.Min(riskByID[c.ID]+add, limit)
		}
		leftover = budget - total(riskByID)
	}
	return riskByID, leftover
}

// total sums in a fixed order so repeated runs are bit-identical.
func total(m map[string]float64) float64 {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var s float64
	for _, k := range keys {
		s += m[k]
	}
	return s
}

// baseStatus ranks the reasons a candidate can be excluded regardless of the
// selection outcome.
func baseStatus(c Candidate) Status {
	switch {
	case !c.Enabled:
		return StatusDisabled
	case !c.Valid:
		return StatusNoData
	case c.Weight <= 0:
		return StatusZeroWeight
	default:
		return StatusOutsideShare
	}
}

func zeroResults(cands []Candidate, status func(Candidate) Status) []Result {
	out := make([]Result, len(cands))
	for i, c := range cands {
		out[i] = newResult(c, status(c))
	}
	return out
}

func newResult(c Candidate, st Status) Result {
	return Result{
		ID:      c.ID,
		Status:  st,
		Weight:  c.Weight,
		Enabled: c.Enabled,
		Price:   c.Price,
		Metrics: c.Metrics,
	}
}
