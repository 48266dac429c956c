package plan

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/riskbudget/market"
	"github.com/rustyeddy/riskbudget/risk"
)

// Account is the default deposit used when a deal carries none of its own.
type Account struct {
	Deposit  float64
	Currency string
	LotStep  float64
}

// Row is one trade in a plan: the allocation result plus its position size.
type Row struct {
	risk.Result
	Pair     string          `json:"pair"`
	Lots     *risk.LotResult `json:"lots,omitempty"`
	LotError string          `json:"lotError,omitempty"`
}

// Plan is the output of one pipeline run.
type Plan struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"createdAt"`
	Settings      risk.Settings `json:"settings"`
	Rows          []Row         `json:"rows"`
	Summary       risk.Summary  `json:"summary"`
	Missing       []string      `json:"missing,omitempty"`
	PricesUpdated time.Time     `json:"pricesUpdated,omitempty"`
}

// Input is everything Compute needs. Nothing in it is fetched.
type Input struct {
	Deals    []risk.Deal
	Params   map[string]risk.Params
	Prices   market.PriceSnapshot
	Settings risk.Settings
	Account  Account
}

// Compute builds candidates, allocates the budget and sizes every active
// trade. Rates are only consulted for lot sizing; a failed conversion
// leaves the row without lots.
func Compute(ctx context.Context, in Input, rates market.RateSource) Plan {
	s := risk.NormalizeSettings(in.Settings)
	cands := risk.BuildCandidates(in.Deals, in.Params, in.Prices)
	alloc := risk.Allocate(cands, s)

	p := Plan{
		Settings:      s,
		Rows:          make([]Row, len(alloc.Results)),
		Summary:       alloc.Summary,
		Missing:       in.Prices.Missing(),
		PricesUpdated: in.Prices.UpdatedAt(),
	}
	for i, r := range alloc.Results {
		d := in.Deals[i]
		row := Row{Result: r, Pair: market.NormalizePair(d.Pair)}
		if r.Active {
			lots, err := sizeRow(ctx, d, in.Params[r.ID], r.Risk, in.Account, rates)
			if err != nil {
				row.LotError = err.Error()
			} else {
				row.Lots = &lots
			}
		}
		p.Rows[i] = row
	}
	return p
}

func sizeRow(ctx context.Context, d risk.Deal, prm risk.Params, riskPct float64, acct Account, rates market.RateSource) (risk.LotResult, error) {
	deposit, currency := acct.Deposit, acct.Currency
	if d.Deposit > 0 {
		deposit = d.Deposit
	}
	if d.DepositCurrency != "" {
		currency = d.DepositCurrency
	}

	entry := pick(prm.Entry, d.Open)
	stop := pick(prm.StopLoss, d.StopLoss)
	if math.IsNaN(entry) || math.IsNaN(stop) {
		return risk.LotResult{}, risk.ErrNoStop
	}

	inst, err := market.Lookup(d.Pair, currency)
	if err != nil {
		return risk.LotResult{}, err
	}
	rate, err := market.QuoteToDepositRate(ctx, inst, currency, rates)
	if err != nil {
		return risk.LotResult{}, fmt.Errorf("convert %s: %w", inst.Name, err)
	}

	return risk.SizeLots(risk.LotInputs{
		Deposit:        deposit,
		RiskPct:        riskPct,
		Entry:          entry,
		Stop:           stop,
		ContractSize:   inst.ContractSize,
		QuoteToDeposit: rate,
		LotStep:        acct.LotStep,
	})
}

func pick(ps ...*float64) float64 {
	for _, p := range ps {
		if p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0) {
			return *p
		}
	}
	return math.NaN()
}
