package cmd

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskbudget/config"
	"github.com/rustyeddy/riskbudget/journal"
	"github.com/rustyeddy/riskbudget/market/quotes"
	"github.com/rustyeddy/riskbudget/pkg/logger"
	"github.com/rustyeddy/riskbudget/plan"
	"github.com/rustyeddy/riskbudget/scheduler"
)

var rootCmd = &cobra.Command{
	Use:   "riskbudget",
	Short: "Split a risk budget across a set of planned trades",
	Long: `Riskbudget keeps a journal of planned trades and divides a total risk
budget (a percentage of the deposit) between them.

It provides tools for:
  - Importing, exporting and editing deals
  - Allocating risk by usefulness under a per-trade cap
  - Sizing positions in lots from the allocated risk
  - Fetching live prices for FX, metals, crypto and indices
  - Re-running the plan on a schedule and serving it over HTTP`,
	SilenceUsage: true,
}

var (
	rootConfigPath string
	rootDBPath     string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootConfigPath, "config", "c", "riskbudget.yaml", "config file (missing file uses defaults)")
	rootCmd.PersistentFlags().StringVarP(&rootDBPath, "db", "d", "", "journal database path (overrides config)")
}

// app is what most commands need: config, logger, store and a quote client.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer
	store     *journal.SQLite
	cache     quotes.Cache
	redis     *quotes.RedisCache
	quotes    *quotes.Client
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return nil, err
	}
	if rootDBPath != "" {
		cfg.Store.Path = rootDBPath
	}
	return cfg, nil
}

// openApp loads the config and opens the journal. The store is seeded with
// the configured allocation settings the first time it is used.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, closer, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, logCloser: closer}

	a.store, err = journal.NewSQLite(cfg.Store.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.store.SeedSettings(ctx, cfg.Settings()); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Cache.Backend == "redis" {
		a.redis, err = quotes.NewRedisCache(ctx, quotes.RedisOptions{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
		}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.cache = a.redis
	} else {
		a.cache = quotes.NewMemoryCache()
	}

	timeout, ttl := cfg.Prices.Durations()
	a.quotes = quotes.New(quotes.Options{
		FXURL:     cfg.Prices.FXURL,
		MetalsURL: cfg.Prices.MetalsURL,
		CryptoURL: cfg.Prices.CryptoURL,
		IndexURL:  cfg.Prices.IndexURL,
		ProxyURL:  cfg.Prices.Proxy,
		Timeout:   timeout,
		TTL:       ttl,
		Cache:     a.cache,
		Logger:    log,
	})
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func (a *app) account() plan.Account {
	return plan.Account{
		Deposit:  a.cfg.Account.Deposit,
		Currency: a.cfg.Account.Currency,
		LotStep:  a.cfg.Account.LotStep,
	}
}

// planner wires the store, quotes and an optional observer. Offline planners
// fetch nothing and size lots only where no conversion is needed.
func (a *app) planner(offline bool, obs plan.Observer) *plan.Planner {
	cfg := plan.Config{
		Source:   a.store,
		Account:  a.account(),
		Recorder: a.store,
		Observer: obs,
		Logger:   a.log,
	}
	if !offline {
		cfg.Prices = a.quotes
		cfg.Rates = a.quotes
	}
	return plan.NewPlanner(cfg)
}

// flusher returns the in-memory cache so a scheduled run sees fresh quotes.
// Redis entries expire on their own.
func (a *app) flusher() scheduler.Flusher {
	if m, ok := a.cache.(*quotes.MemoryCache); ok {
		return m
	}
	return nil
}
