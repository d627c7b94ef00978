package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// ItemCache is a read-through cache of item GET bodies. A nil *ItemCache is
// valid and caches nothing.
type ItemCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewItemCache(rdb *redis.Client, ttl time.Duration) *ItemCache {
	if rdb == nil {
		return nil
	}
	return &ItemCache{rdb: rdb, ttl: ttl}
}

func ItemKey(entity string, id int64) string {
	return fmt.Sprintf(KeyItem, entity, id)
}

// Get reports a miss as (nil, nil).
func (c *ItemCache) Get(ctx context.Context, entity string, id int64) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, ItemKey(entity, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (c *ItemCache) Set(ctx context.Context, entity string, id int64, body []byte) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, ItemKey(entity, id), body, c.ttl).Err()
}

func (c *ItemCache) Invalidate(ctx context.Context, entity string, id int64) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, ItemKey(entity, id)).Err()
}
