package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/riskbudget/risk"
)

// Config is the complete riskbudget configuration.
type Config struct {
	Allocation AllocationConfig `json:"allocation" yaml:"allocation"`
	Account    AccountConfig    `json:"account" yaml:"account"`
	Prices     PricesConfig     `json:"prices" yaml:"prices"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}

// AllocationConfig seeds the settings of a fresh store. Settings saved in
// the store win over these.
type AllocationConfig struct {
	TotalRisk       float64 `json:"total_risk" yaml:"total_risk" default:"2" validate:"gte=0"`
	MaxRisk         float64 `json:"max_risk" yaml:"max_risk" default:"1" validate:"gte=0"`
	UsefulnessShare float64 `json:"usefulness_share" yaml:"usefulness_share" default:"0.8" validate:"gte=0,lte=1"`
}

// AccountConfig is the deposit used for lot sizing.
type AccountConfig struct {
	Deposit  float64 `json:"deposit" yaml:"deposit" default:"10000" validate:"gt=0"`
	Currency string  `json:"currency" yaml:"currency" default:"USD" validate:"required,len=3|len=4"`
	LotStep  float64 `json:"lot_step" yaml:"lot_step" default:"0.01" validate:"gt=0"`
}

// PricesConfig points the quote feeds somewhere. Empty URLs use the public
// endpoints.
type PricesConfig struct {
	FXURL     string `json:"fx_url,omitempty" yaml:"fx_url,omitempty" validate:"omitempty,url"`
	MetalsURL string `json:"metals_url,omitempty" yaml:"metals_url,omitempty" validate:"omitempty,url"`
	CryptoURL string `json:"crypto_url,omitempty" yaml:"crypto_url,omitempty" validate:"omitempty,url"`
	IndexURL  string `json:"index_url,omitempty" yaml:"index_url,omitempty" validate:"omitempty,url"`
	Proxy     string `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Timeout   string `json:"timeout" yaml:"timeout" default:"15s" validate:"duration"`
	TTL       string `json:"ttl" yaml:"ttl" default:"60s" validate:"duration"`
	Refresh   string `json:"refresh" yaml:"refresh" default:"@every 60s" validate:"required"`
}

type CacheConfig struct {
	Backend  string `json:"backend" yaml:"backend" default:"memory" validate:"oneof=memory redis"`
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty" validate:"required_if=Backend redis"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty" validate:"gte=0"`
	Prefix   string `json:"prefix" yaml:"prefix" default:"riskbudget"`
}

type StoreConfig struct {
	Path string `json:"path" yaml:"path" default:"riskbudget.db" validate:"required"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" default:"console" validate:"oneof=console json"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" default:":8080" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	return v
}

// Load reads path if it exists, applies defaults and environment overrides,
// then validates. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if len(data) > 0 {
			if err := unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}
	return finish(cfg)
}

// LoadFromFile is Load for a file that must exist.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := &Config{}
	if err := unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func unmarshal(data []byte, cfg *Config) error {
	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", errors.Join(err, jerr))
		}
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RISKBUDGET_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("RISKBUDGET_REDIS_ADDR"); v != "" {
		c.Cache.Backend = "redis"
		c.Cache.Addr = v
	}
	if v := os.Getenv("RISKBUDGET_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && c.Prices.Proxy == "" {
		c.Prices.Proxy = v
	}
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// SaveToFile writes YAML for .yaml/.yml paths and JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Default returns a configuration filled from the struct defaults.
func Default() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	return cfg
}

// Settings converts the allocation section for the allocator.
func (c *Config) Settings() risk.Settings {
	return risk.NormalizeSettings(risk.Settings{
		TotalRisk:       c.Allocation.TotalRisk,
		MaxRisk:         c.Allocation.MaxRisk,
		UsefulnessShare: c.Allocation.UsefulnessShare,
	})
}

// Durations parses the price timeouts. Validate has already checked them.
func (p PricesConfig) Durations() (timeout, ttl time.Duration) {
	timeout, _ = time.ParseDuration(p.Timeout)
	ttl, _ = time.ParseDuration(p.TTL)
	return timeout, ttl
}
