package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoPrice is returned when a feed answered but had nothing usable for the
// requested symbol.
var ErrNoPrice = errors.New("no price")

const (
	DefaultFXURL     = "https://open.er-api.com/v6/latest"
	DefaultMetalsURL = "https://data-asg.goldprice.org/dbXRates/USD"
	DefaultCryptoURL = "https://api.coinbase.com/v2/prices"
	DefaultIndexURL  = "https://stooq.com/q/l/"

	DefaultTimeout = 15 * time.Second
	DefaultTTL     = time.Minute
)

// Options configures the feed endpoints. Empty fields fall back to the
// public defaults.
type Options struct {
	FXURL     string
	MetalsURL string
	CryptoURL string
	IndexURL  string
	ProxyURL  string
	Timeout   time.Duration
	TTL       time.Duration
	Cache     Cache
	Logger    zerolog.Logger
}

// Client fetches prices from the public quote feeds.
type Client struct {
	http  *http.Client
	opts  Options
	cache Cache
	log   zerolog.Logger
}

// New builds a Client. A nil Cache gets an in-memory one.
func New(opts Options) *Client {
	if opts.FXURL == "" {
		opts.FXURL = DefaultFXURL
	}
	if opts.MetalsURL == "" {
		opts.MetalsURL = DefaultMetalsURL
	}
	if opts.CryptoURL == "" {
		opts.CryptoURL = DefaultCryptoURL
	}
	if opts.IndexURL == "" {
		opts.IndexURL = DefaultIndexURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}

	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:  opts,
		cache: opts.Cache,
		log:   opts.Logger.With().Str("component", "quotes").Logger(),
	}
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "riskbudget/1")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", req.URL.Host, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Host, err)
	}
	return nil
}

// cached runs fetch only when key is not in the cache.
func (c *Client) cached(ctx context.Context, key string, fetch func() (float64, error)) (float64, error) {
	if v, ok := c.cache.Get(ctx, key); ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return 0, err
	}
	if err := c.cache.Set(ctx, key, v, c.opts.TTL); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return v, nil
}
