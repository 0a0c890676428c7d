package cart

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/greenbasket/greenbasket-backend/internal/pricing"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/redis"
)

// Storage persists a browsing session's cart lines and coupon code.
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]pricing.Line, string, error)
	SaveLines(ctx context.Context, sessionID string, lines []pricing.Line) error
	SaveCoupon(ctx context.Context, sessionID, code string) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisStorage keeps carts in Redis under a session-scoped key pair,
// refreshed to the configured TTL on every write.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

var _ Storage = (*RedisStorage)(nil)

func NewRedisStorage(client *redis.Client, ttl time.Duration, log *logger.Logger) (*RedisStorage, error) {
	if client == nil {
		return nil, errors.New(errors.CodeInternal, "cart: redis client is required")
	}
	if log == nil {
		return nil, errors.New(errors.CodeInternal, "cart: logger is required")
	}
	return &RedisStorage{client: client, ttl: ttl, log: log}, nil
}

// Load hydrates the session's cart. A payload that fails to decode is
// discarded and the session starts over with an empty cart.
func (s *RedisStorage) Load(ctx context.Context, sessionID string) ([]pricing.Line, string, error) {
	rdb := s.client.Redis()

	raw, err := rdb.Get(ctx, redis.CartItemsKey(sessionID)).Bytes()
	if err != nil && err != goredis.Nil {
		return nil, "", errors.Wrap(errors.CodeDependency, err, "load cart")
	}

	var lines []pricing.Line
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &lines); err != nil {
			s.log.Warn(s.log.WithCartSession(ctx, sessionID), "discarding corrupt cart payload")
			if err := s.Clear(ctx, sessionID); err != nil {
				return nil, "", err
			}
			return nil, "", nil
		}
	}

	coupon, err := rdb.Get(ctx, redis.CartCouponKey(sessionID)).Result()
	if err != nil && err != goredis.Nil {
		return nil, "", errors.Wrap(errors.CodeDependency, err, "load cart coupon")
	}

	return lines, coupon, nil
}

func (s *RedisStorage) SaveLines(ctx context.Context, sessionID string, lines []pricing.Line) error {
	rdb := s.client.Redis()
	key := redis.CartItemsKey(sessionID)

	if len(lines) == 0 {
		if err := rdb.Del(ctx, key).Err(); err != nil {
			return errors.Wrap(errors.CodeDependency, err, "clear cart lines")
		}
		return nil
	}

	payload, err := json.Marshal(lines)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encode cart lines")
	}
	if err := rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "save cart lines")
	}
	// Keep the coupon from outliving the lines it belongs to.
	rdb.Expire(ctx, redis.CartCouponKey(sessionID), s.ttl)
	return nil
}

func (s *RedisStorage) SaveCoupon(ctx context.Context, sessionID, code string) error {
	rdb := s.client.Redis()
	key := redis.CartCouponKey(sessionID)

	if code == "" {
		if err := rdb.Del(ctx, key).Err(); err != nil {
			return errors.Wrap(errors.CodeDependency, err, "clear cart coupon")
		}
		return nil
	}
	if err := rdb.Set(ctx, key, code, s.ttl).Err(); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "save cart coupon")
	}
	return nil
}

func (s *RedisStorage) Clear(ctx context.Context, sessionID string) error {
	err := s.client.Redis().Del(ctx,
		redis.CartItemsKey(sessionID),
		redis.CartCouponKey(sessionID),
	).Err()
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "clear cart")
	}
	return nil
}
