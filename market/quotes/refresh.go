package quotes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskbudget/market"
)

var (
	_ market.PriceSource = (*Client)(nil)
	_ market.RateSource  = (*Client)(nil)
)

// Refresh prices every distinct pair concurrently and returns a snapshot.
// Failed pairs are logged and listed as missing; Refresh itself never fails.
func Refresh(ctx context.Context, src market.PriceSource, pairs []string, log zerolog.Logger) market.PriceSnapshot {
	uniq := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		if k := market.NormalizePair(p); k != "" {
			uniq[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(uniq))
	for k := range uniq {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		prices  = make(map[string]float64, len(keys))
		missing []string
	)
	for _, k := range keys {
		wg.Add(1)
		go func(pair string) {
			defer wg.Done()
			v, err := src.Price(ctx, pair)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("pair", pair).Msg("price unavailable")
				missing = append(missing, pair)
				return
			}
			prices[pair] = v
		}(k)
	}
	wg.Wait()

	snap := market.NewSnapshot(prices, missing, time.Now())
	log.Info().
		Int("ok", snap.Len()).
		Int("total", len(keys)).
		Strs("missing", snap.Missing()).
		Msg("prices refreshed")
	return snap
}
