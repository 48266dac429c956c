package risk

// EUR/USD on a USD deposit → QuoteToDeposit = 1.0
// USD/JPY on a USD deposit → QuoteToDeposit = 1 / USDJPY

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultLotStep is the smallest lot increment most brokers accept.
const DefaultLotStep = 0.01

var (
	ErrNoDeposit  = errors.New("deposit must be positive")
	ErrNoStop     = errors.New("entry and stop must differ")
	ErrNoRate     = errors.New("quote to deposit rate must be positive")
	ErrNoContract = errors.New("contract size must be positive")
)

type LotInputs struct {
	Deposit        float64 // in deposit currency
	RiskPct        float64 // percent of deposit, e.g. 0.75
	Entry          float64
	Stop           float64
	ContractSize   float64 // units per lot
	QuoteToDeposit float64
	LotStep        float64 // 0 → DefaultLotStep
}

type LotResult struct {
	Lots       float64 `json:"lots"`
	RiskAmount float64 `json:"riskAmount"` // deposit currency
	LossPerLot float64 `json:"lossPerLot"` // deposit currency
	// ActualRisk is the loss at stop after rounding Lots down.
	ActualRisk float64 `json:"actualRisk"`
}

// SizeLots turns an allocated risk percentage into a position size. The lot
// count is floored to the lot step so the realised risk never exceeds the
// allocation.
func SizeLots(in LotInputs) (LotResult, error) {
	if in.Deposit <= 0 {
		return LotResult{}, ErrNoDeposit
	}
	if in.ContractSize <= 0 {
		return LotResult{}, ErrNoContract
	}
	if in.QuoteToDeposit <= 0 || !finiteAll(in.QuoteToDeposit) {
		return LotResult{}, ErrNoRate
	}
	dist := math.Abs(in.Entry - in.Stop)
	if dist == 0 || !finiteAll(dist) {
		return LotResult{}, ErrNoStop
	}

	step := in.LotStep
	if step <= 0 {
		step = DefaultLotStep
	}

	res := LotResult{
		RiskAmount: in.Deposit * math.Max(in.RiskPct, 0) / 100,
		LossPerLot: dist * in.ContractSize * in.QuoteToDeposit,
	}

	// Round away float noise (1.2-1.19 is not 0.01) before flooring.
	raw := decimal.NewFromFloat(res.RiskAmount).Div(decimal.NewFromFloat(res.LossPerLot)).Round(8)
	stepD := decimal.NewFromFloat(step)
	lots := raw.Div(stepD).Floor().Mul(stepD)

	res.Lots = lots.InexactFloat64()
	res.ActualRisk = lots.Mul(decimal.NewFromFloat(res.LossPerLot)).InexactFloat64()
	return res, nil
}
