package journal

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rustyeddy/riskbudget/plan"
)

var planHeader = []string{"deal_id", "pair", "enabled", "weight", "risk_pct", "active", "status", "lots", "actual_risk"}

// WritePlanCSV writes one row per trade.
func WritePlanCSV(w io.Writer, p plan.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(planHeader); err != nil {
		return err
	}
	for _, r := range p.Rows {
		lots, actual := "", ""
		if r.Lots != nil {
			lots = strconv.FormatFloat(r.Lots.Lots, 'f', 2, 64)
			actual = f(r.Lots.ActualRisk)
		}
		err := cw.Write([]string{
			r.ID,
			r.Pair,
			strconv.FormatBool(r.Enabled),
			f(r.Weight),
			f(r.Risk),
			strconv.FormatBool(r.Active),
			string(r.Status),
			lots,
			actual,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
