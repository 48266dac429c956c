package journal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rustyeddy/riskbudget/plan"
	"github.com/rustyeddy/riskbudget/risk"
)

// FormatPublication renders the active trades of a plan as a plain text
// post: grouped by pair, numbered per pair by creation time, with entry,
// targets and the sized volume.
func FormatPublication(deals []risk.Deal, p plan.Plan) string {
	rows := make(map[string]plan.Row, len(p.Rows))
	for _, r := range p.Rows {
		rows[r.ID] = r
	}

	type item struct {
		deal risk.Deal
		row  plan.Row
	}
	var active []item
	for i, d := range deals {
		r, ok := rows[risk.DealID(d, i)]
		if !ok || !r.Active {
			continue
		}
		active = append(active, item{deal: d, row: r})
	}
	sort.SliceStable(active, func(a, b int) bool {
		return active[a].deal.Created < active[b].deal.Created
	})

	var (
		order  []string
		byPair = map[string][]item{}
	)
	for _, it := range active {
		pair := it.row.Pair
		if pair == "" {
			pair = "UNNAMED"
		}
		if _, seen := byPair[pair]; !seen {
			order = append(order, pair)
		}
		byPair[pair] = append(byPair[pair], it)
	}

	var lines []string
	for _, pair := range order {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, pair)
		for n, it := range byPair[pair] {
			if n > 0 {
				lines = append(lines, "")
			}
			vol := "-"
			if it.row.Lots != nil {
				vol = strconv.FormatFloat(it.row.Lots.Lots, 'f', -1, 64)
			}
			lines = append(lines,
				fmt.Sprintf("#%d", n+1),
				"Entry: "+value(it.deal.Open),
				"TP: "+value(it.deal.TakeProfit),
				"SL: "+value(it.deal.StopLoss),
				"VOL: "+vol,
			)
		}
	}
	return strings.Join(lines, "\n")
}

func value(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
