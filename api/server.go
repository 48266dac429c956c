package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskbudget/market"
	"github.com/rustyeddy/riskbudget/plan"
)

type Options struct {
	Addr     string
	Planner  *plan.Planner
	Rates    market.RateSource
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

// Server is the HTTP front of the planner.
type Server struct {
	echo    *echo.Echo
	addr    string
	planner *plan.Planner
	rates   market.RateSource
	log     zerolog.Logger
}

func New(opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		addr:    opts.Addr,
		planner: opts.Planner,
		rates:   opts.Rates,
		log:     opts.Logger.With().Str("component", "api").Logger(),
	}

	e.Use(middleware.Recover())
	e.Use(s.requestLogging)

	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	v1 := e.Group("/v1")
	v1.POST("/allocate", s.allocate)
	v1.GET("/plan", s.latestPlan)
	v1.POST("/plan/refresh", s.refreshPlan)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

func (s *Server) requestLogging(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		req := c.Request()
		s.log.Debug().
			Str("method", req.Method).
			Str("uri", req.RequestURI).
			Int("status", c.Response().Status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
