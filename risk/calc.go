package risk

import (
	"errors"
	"math"
)

// CalcInputs describe a single trade on the quick calculator. Rate converts
// the instrument's quote currency into the deposit currency.
type CalcInputs struct {
	Deposit      float64
	Open         float64
	TakeProfit   float64
	StopLoss     float64
	Lots         float64
	Leverage     float64
	ContractSize float64
	Rate         float64
}

type CalcResult struct {
	Buy          bool    `json:"buy"`
	Profit       float64 `json:"profit"` // deposit currency
	Loss         float64 `json:"loss"`   // deposit currency
	Margin       float64 `json:"margin"` // deposit currency
	ProfitDepPct float64 `json:"profitDepPct"`
	LossDepPct   float64 `json:"lossDepPct"`
	ProfitPosPct float64 `json:"profitPosPct"`
	LossPosPct   float64 `json:"lossPosPct"`
	MaxLots      float64 `json:"maxLots"`
}

// Calculate is the single-trade profit, loss and margin estimate. A take
// profit at or above the open price means a long position.
func Calculate(in CalcInputs) (CalcResult, error) {
	if !finiteAll(in.Deposit, in.Open, in.TakeProfit, in.StopLoss, in.Lots, in.Leverage, in.Rate) {
		return CalcResult{}, errors.New("all calculator fields must be numbers")
	}
	if in.Deposit <= 0 || in.Open <= 0 || in.Leverage <= 0 {
		return CalcResult{}, errors.New("deposit, open price and leverage must be positive")
	}
	if in.ContractSize <= 0 {
		return CalcResult{}, ErrNoContract
	}
	if in.Rate <= 0 {
		return CalcResult{}, ErrNoRate
	}

	size := in.Lots * in.ContractSize
	res := CalcResult{Buy: in.TakeProfit >= in.Open}

	var profitQuote, lossQuote float64
	if res.Buy {
		profitQuote = (in.TakeProfit - in.Open) * size
		lossQuote = (in.Open - in.StopLoss) * size
	} else {
		profitQuote = (in.Open - in.TakeProfit) * size
		lossQuote = (in.StopLoss - in.Open) * size
	}

	res.Profit = math.Abs(profitQuote * in.Rate)
	res.Loss = math.Abs(lossQuote * in.Rate)
	res.Margin = size * in.Open / in.Leverage * in.Rate

	res.ProfitDepPct = res.Profit / in.Deposit * 100
	res.LossDepPct = res.Loss / in.Deposit * 100
	if posCost := in.Open * size; posCost > 0 {
		res.ProfitPosPct = math.Abs(profitQuote) / posCost * 100
		res.LossPosPct = math.Abs(lossQuote) / posCost * 100
	}

	depositInQuote := in.Deposit / in.Rate
	res.MaxLots = depositInQuote * in.Leverage / (in.Open * in.ContractSize)
	return res, nil
}
