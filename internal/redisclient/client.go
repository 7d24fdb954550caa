package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "kicon:"

// Client wraps go-redis with the few operations the API needs. Every key is
// namespaced so the limiter can share a redis with other services.
type Client struct {
	rdb    *redis.Client
	prefix string
}

type Config struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix defaults to "kicon:".
	KeyPrefix string
}

func New(cfg Config) *Client {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     20,
	})

	return &Client{rdb: rdb, prefix: prefix}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Hit counts one event against key in a fixed window and returns the count so far
// and how long until the window resets.
func (c *Client) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = c.prefix + key

	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}

	return incr.Val(), remaining, nil
}
