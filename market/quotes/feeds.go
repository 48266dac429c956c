package quotes

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/rustyeddy/riskbudget/market"
)

// metalFields maps a metal symbol to its field in the goldprice payload.
var metalFields = map[string]string{
	"XAUUSD": "xauPrice",
	"XAGUSD": "xagPrice",
}

// indexSymbols maps a cash index to its stooq ticker.
var indexSymbols = map[string]string{
	"GER40":  "^DAX",
	"SPX500": "^SPX",
}

type fxResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

type metalsResponse struct {
	Items []map[string]any `json:"items"`
}

type cryptoResponse struct {
	Data struct {
		Amount string `json:"amount"`
	} `json:"data"`
}

type stooqResponse struct {
	Symbols []struct {
		Symbol string `json:"symbol"`
		Close  any    `json:"close"`
	} `json:"symbols"`
}

// FX returns how many quote units one base unit buys.
func (c *Client) FX(ctx context.Context, base, quote string) (float64, error) {
	base, quote = strings.ToUpper(base), strings.ToUpper(quote)
	if base == "" || quote == "" {
		return 0, fmt.Errorf("fx %s/%s: %w", base, quote, ErrNoPrice)
	}
	if base == quote {
		return 1, nil
	}
	return c.cached(ctx, "fx:"+base+"/"+quote, func() (float64, error) {
		var resp fxResponse
		if err := c.getJSON(ctx, c.opts.FXURL+"/"+url.PathEscape(base), &resp); err != nil {
			return 0, err
		}
		if resp.Result != "success" {
			return 0, fmt.Errorf("fx %s: result %q: %w", base, resp.Result, ErrNoPrice)
		}
		v, ok := resp.Rates[quote]
		if !ok || !usable(v) {
			return 0, fmt.Errorf("fx %s/%s: %w", base, quote, ErrNoPrice)
		}
		return v, nil
	})
}

// Metal prices XAUUSD or XAGUSD.
func (c *Client) Metal(ctx context.Context, pair string) (float64, error) {
	sym := market.Compact(pair)
	field, ok := metalFields[sym]
	if !ok {
		return 0, fmt.Errorf("metal %s: %w", pair, ErrNoPrice)
	}
	return c.cached(ctx, "metal:"+sym, func() (float64, error) {
		var resp metalsResponse
		if err := c.getJSON(ctx, c.opts.MetalsURL, &resp); err != nil {
			return 0, err
		}
		if len(resp.Items) == 0 {
			return 0, fmt.Errorf("metal %s: empty payload: %w", sym, ErrNoPrice)
		}
		v, ok := number(resp.Items[0][field])
		if !ok {
			return 0, fmt.Errorf("metal %s: %w", sym, ErrNoPrice)
		}
		return v, nil
	})
}

// Crypto prices BTC or ETH spot. Stable-coin quotes are asked for in USD.
func (c *Client) Crypto(ctx context.Context, pair string) (float64, error) {
	p, ok := market.ParseCrypto(pair)
	if !ok {
		return 0, fmt.Errorf("crypto %s: %w", pair, ErrNoPrice)
	}
	quote := market.NormalizeCurrency(p.Quote)
	key := p.Base + "-" + quote
	return c.cached(ctx, "crypto:"+key, func() (float64, error) {
		var resp cryptoResponse
		if err := c.getJSON(ctx, c.opts.CryptoURL+"/"+key+"/spot", &resp); err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(resp.Data.Amount, 64)
		if err != nil || !usable(v) {
			return 0, fmt.Errorf("crypto %s: amount %q: %w", key, resp.Data.Amount, ErrNoPrice)
		}
		return v, nil
	})
}

// Index prices GER40 or SPX500 from stooq.
func (c *Client) Index(ctx context.Context, pair string) (float64, error) {
	sym := market.Compact(pair)
	ticker, ok := indexSymbols[sym]
	if !ok {
		return 0, fmt.Errorf("index %s: %w", pair, ErrNoPrice)
	}
	return c.cached(ctx, "index:"+sym, func() (float64, error) {
		q := url.Values{}
		q.Set("s", ticker)
		q.Set("f", "sd2t2ohlcv")
		q.Set("h", "")
		q.Set("e", "json")

		var resp stooqResponse
		if err := c.getJSON(ctx, c.opts.IndexURL+"?"+q.Encode(), &resp); err != nil {
			return 0, err
		}
		if len(resp.Symbols) == 0 {
			return 0, fmt.Errorf("index %s: %w", sym, ErrNoPrice)
		}
		v, ok := number(resp.Symbols[0].Close)
		if !ok {
			return 0, fmt.Errorf("index %s: %w", sym, ErrNoPrice)
		}
		return v, nil
	})
}

// Price routes a symbol to its feed: metals, indices, crypto, then FX.
func (c *Client) Price(ctx context.Context, pair string) (float64, error) {
	sym := market.Compact(pair)
	switch {
	case sym == "":
		return 0, fmt.Errorf("empty symbol: %w", ErrNoPrice)
	case metalFields[sym] != "":
		return c.Metal(ctx, sym)
	case indexSymbols[sym] != "":
		return c.Index(ctx, sym)
	}
	if _, ok := market.ParseCrypto(pair); ok {
		return c.Crypto(ctx, pair)
	}
	if p, ok := market.ParseFX(pair); ok {
		return c.FX(ctx, p.Base, p.Quote)
	}
	return 0, fmt.Errorf("unsupported symbol %s: %w", pair, ErrNoPrice)
}

// Rate makes the FX feed usable as a market.RateSource.
func (c *Client) Rate(ctx context.Context, from, to string) (float64, error) {
	return c.FX(ctx, market.NormalizeCurrency(from), market.NormalizeCurrency(to))
}

// number accepts JSON numbers and numeric strings, including a decimal comma.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.Replace(strings.TrimSpace(n), ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	return f, usable(f)
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
