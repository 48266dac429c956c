package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/riskbudget/plan"
)

// FormatPlanOrg renders a plan as an Org-mode block: a heading with the run
// summary in a PROPERTIES drawer, then a table of trades.
func FormatPlanOrg(p plan.Plan) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("** Risk plan %s (%s)\n", p.CreatedAt.UTC().Format(time.RFC3339), shortID(p.ID)))
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", p.ID))
	b.WriteString(fmt.Sprintf(":TOTAL_RISK: %.2f\n", p.Summary.TotalRisk))
	b.WriteString(fmt.Sprintf(":MAX_RISK: %.2f\n", p.Settings.MaxRisk))
	b.WriteString(fmt.Sprintf(":USEFULNESS_SHARE: %.2f\n", p.Settings.UsefulnessShare))
	b.WriteString(fmt.Sprintf(":USED_RISK: %.2f\n", p.Summary.UsedRisk))
	b.WriteString(fmt.Sprintf(":LEFTOVER: %.2f\n", p.Summary.Leftover))
	b.WriteString(fmt.Sprintf(":ACTIVE: %d\n", p.Summary.ActiveCount))
	if p.Summary.Note != "" {
		b.WriteString(fmt.Sprintf(":NOTE: %s\n", p.Summary.Note))
	}
	b.WriteString(":END:\n\n")

	b.WriteString("| Deal | Pair | Weight | Risk % | Lots | Status |\n")
	b.WriteString("|------+------+--------+--------+------+--------|\n")
	for _, r := range p.Rows {
		b.WriteString(fmt.Sprintf("| %s | %s | %.4f | %.2f | %s | %s |\n",
			shortID(r.ID), r.Pair, r.Weight, r.Risk, lotsText(r), r.Status))
	}
	return b.String()
}

func lotsText(r plan.Row) string {
	switch {
	case r.Lots != nil:
		return fmt.Sprintf("%.2f", r.Lots.Lots)
	case r.LotError != "":
		return "n/a"
	default:
		return "-"
	}
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
