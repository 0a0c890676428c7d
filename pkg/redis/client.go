package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
)

// Client wraps go-redis with the key namespacing used across the app.
type Client struct {
	rdb *redis.Client
}

func NewClient(cfg config.RedisConfig) (*Client, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, errors.Wrap(errors.CodeDependency, err, "parse redis url")
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	return &Client{rdb: redis.NewClient(opts)}, nil
}

// FromRedis wraps an existing go-redis client. Used by tests.
func FromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Redis exposes the underlying client for callers that need raw commands.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "redis ping")
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// CartItemsKey is the hash key holding a session's cart lines.
func CartItemsKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:items", sessionID)
}

// CartCouponKey holds the coupon code applied to a session's cart.
func CartCouponKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:coupon", sessionID)
}
