package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rustyeddy/riskbudget/market"
	"github.com/rustyeddy/riskbudget/plan"
	"github.com/rustyeddy/riskbudget/risk"
)

// AllocateRequest carries everything needed for a one-off plan; nothing is
// read from or written to the store.
type AllocateRequest struct {
	Deals    []risk.Deal            `json:"deals"`
	Params   map[string]risk.Params `json:"params"`
	Prices   map[string]float64     `json:"prices"`
	Settings SettingsRequest        `json:"settings"`
	Account  AccountRequest         `json:"account"`
}

// SettingsRequest uses pointers so an explicit zero budget is kept.
type SettingsRequest struct {
	TotalRisk       *float64 `json:"totalRisk" default:"2"`
	MaxRisk         *float64 `json:"maxRisk" default:"1"`
	UsefulnessShare *float64 `json:"usefulnessShare" default:"0.8" validate:"gte=0,lte=1"`
}

type AccountRequest struct {
	Deposit  float64 `json:"deposit" default:"10000" validate:"gt=0"`
	Currency string  `json:"currency" default:"USD" validate:"required"`
	LotStep  float64 `json:"lotStep" default:"0.01" validate:"gt=0"`
}

func (s SettingsRequest) settings() risk.Settings {
	return risk.Settings{
		TotalRisk:       *s.TotalRisk,
		MaxRisk:         *s.MaxRisk,
		UsefulnessShare: *s.UsefulnessShare,
	}
}

func (s *Server) health(c echo.Context) error {
	return ok(c, map[string]string{"status": "ok"})
}

func (s *Server) allocate(c echo.Context) error {
	var req AllocateRequest
	if errs := bindRequest(c, &req); errs != nil {
		return badRequest(c, errs)
	}

	p := plan.Compute(c.Request().Context(), plan.Input{
		Deals:    req.Deals,
		Params:   req.Params,
		Prices:   market.NewSnapshot(req.Prices, nil, time.Now()),
		Settings: req.Settings.settings(),
		Account: plan.Account{
			Deposit:  req.Account.Deposit,
			Currency: req.Account.Currency,
			LotStep:  req.Account.LotStep,
		},
	}, s.rates)
	return ok(c, p)
}

func (s *Server) latestPlan(c echo.Context) error {
	if s.planner == nil {
		return notFound(c, "no planner configured")
	}
	p, found := s.planner.Tracker().Latest()
	if !found {
		return notFound(c, "no plan computed yet")
	}
	return ok(c, p)
}

func (s *Server) refreshPlan(c echo.Context) error {
	if s.planner == nil {
		return notFound(c, "no planner configured")
	}
	p, err := s.planner.Run(c.Request().Context())
	if err != nil {
		s.log.Error().Err(err).Msg("plan refresh failed")
		return internalError(c, err)
	}
	return ok(c, p)
}
