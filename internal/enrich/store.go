// README: Redis-backed lookup cache shared across requests.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const lookupKeyPrefix = "atlas:lookup:"

// RedisLookupCache keeps coordinates and image lookups for ttl.
type RedisLookupCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisLookupCache(client *redis.Client, ttl time.Duration) *RedisLookupCache {
	return &RedisLookupCache{redis: client, ttl: ttl}
}

func (c *RedisLookupCache) Get(ctx context.Context, name string) (*Lookup, bool, error) {
	raw, err := c.redis.Get(ctx, lookupKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var l Lookup
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, false, err
	}
	return &l, true, nil
}

func (c *RedisLookupCache) Put(ctx context.Context, name string, l Lookup) error {
	raw, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, lookupKeyPrefix+name, raw, c.ttl).Err()
}
