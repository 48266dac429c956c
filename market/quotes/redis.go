package quotes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisCache shares fetched prices between processes, e.g. a watcher and
// the API server.
type RedisCache struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisCache connects and pings the server.
func NewRedisCache(ctx context.Context, opts RedisOptions, log zerolog.Logger) (*RedisCache, error) {
	if opts.Prefix == "" {
		opts.Prefix = "riskbudget"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{client: client, prefix: opts.Prefix, log: log}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(k string) string {
	return c.prefix + ":quote:" + k
}

func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool) {
	s, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value float64, ttl time.Duration) error {
	s := strconv.FormatFloat(value, 'g', -1, 64)
	if err := c.client.Set(ctx, c.key(key), s, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
