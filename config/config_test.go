package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskbudget/risk"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, risk.DefaultSettings(), cfg.Settings())
	assert.Equal(t, 10000.0, cfg.Account.Deposit)
	assert.Equal(t, "USD", cfg.Account.Currency)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "riskbudget.db", cfg.Store.Path)
	assert.Equal(t, "@every 60s", cfg.Prices.Refresh)

	timeout, ttl := cfg.Prices.Durations()
	assert.Equal(t, 15*time.Second, timeout)
	assert.Equal(t, time.Minute, ttl)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		body    string
		wantErr bool
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "yaml partial",
			file: "c.yaml",
			body: "allocation:\n  total_risk: 3\n  usefulness_share: 0.6\naccount:\n  currency: EUR\n",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 3.0, c.Allocation.TotalRisk)
				assert.Equal(t, 1.0, c.Allocation.MaxRisk)
				assert.Equal(t, 0.6, c.Allocation.UsefulnessShare)
				assert.Equal(t, "EUR", c.Account.Currency)
				assert.Equal(t, 10000.0, c.Account.Deposit)
			},
		},
		{
			name: "json",
			file: "c.json",
			body: `{"account":{"deposit":2500,"currency":"USDT"},"log":{"level":"debug","format":"json"}}`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 2500.0, c.Account.Deposit)
				assert.Equal(t, "USDT", c.Account.Currency)
				assert.Equal(t, "json", c.Log.Format)
			},
		},
		{name: "share out of range", file: "c.yaml", body: "allocation:\n  usefulness_share: 1.5\n", wantErr: true},
		{name: "bad level", file: "c.yaml", body: "log:\n  level: loud\n", wantErr: true},
		{name: "redis without addr", file: "c.yaml", body: "cache:\n  backend: redis\n", wantErr: true},
		{name: "bad timeout", file: "c.yaml", body: "prices:\n  timeout: soon\n", wantErr: true},
		{name: "bad url", file: "c.yaml", body: "prices:\n  fx_url: not a url\n", wantErr: true},
		{name: "garbage", file: "c.txt", body: "{{{", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			cfg, err := LoadFromFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Account, cfg.Account)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RISKBUDGET_DB", "/tmp/rb.db")
	t.Setenv("RISKBUDGET_REDIS_ADDR", "localhost:6379")
	t.Setenv("RISKBUDGET_LOG_LEVEL", "DEBUG")
	t.Setenv("HTTPS_PROXY", "http://proxy:3128")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/rb.db", cfg.Store.Path)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http://proxy:3128", cfg.Prices.Proxy)
}

func TestSaveToFileRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"out.yaml", "out.json"} {
		cfg := Default()
		cfg.Allocation.TotalRisk = 4
		cfg.Account.Currency = "EUR"
		cfg.Prices.Proxy = "http://proxy.local:3128"

		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, cfg.SaveToFile(path))

		got, err := LoadFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, got, name)
	}
}
