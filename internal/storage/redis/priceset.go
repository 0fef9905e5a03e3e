// Package redis caches price sets in Redis in front of the primary store.
package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/mall-pricing/internal/domain/priceset"
	"github.com/xenking/mall-pricing/internal/wire"
)

const keyPrefix = "mallprice:priceset:"

type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ priceset.Repository = (*PriceSetCache)(nil)

// PriceSetCache is a read-through priceset.Repository. Price sets are never
// updated, so entries are only written and expire by TTL. Cache failures are
// logged and served from the underlying repository.
type PriceSetCache struct {
	store cmdable
	next  priceset.Repository
	ttl   time.Duration
}

// NewPriceSetCache wraps next with a cache stored in client. A zero ttl keeps
// entries until Redis evicts them.
func NewPriceSetCache(client *redis.Client, next priceset.Repository, ttl time.Duration) *PriceSetCache {
	return &PriceSetCache{store: client, next: next, ttl: ttl}
}

func cacheKey(sourceProductID string) string {
	return keyPrefix + sourceProductID
}

// ExistsForSource answers from the cache when the set is cached and asks the
// underlying repository otherwise.
func (c *PriceSetCache) ExistsForSource(ctx context.Context, sourceProductID string) (bool, error) {
	n, err := c.store.Exists(ctx, cacheKey(sourceProductID)).Result()
	if err != nil {
		zctx.From(ctx).Warn("Price set cache exists failed",
			zap.String("source_product_id", sourceProductID),
			zap.Error(err),
		)
	} else if n > 0 {
		return true, nil
	}
	return c.next.ExistsForSource(ctx, sourceProductID)
}

// Create stores set in the underlying repository and primes the cache.
func (c *PriceSetCache) Create(ctx context.Context, set *priceset.PriceSet) error {
	if err := c.next.Create(ctx, set); err != nil {
		return err
	}
	c.put(ctx, set)
	return nil
}

// FindBySource returns the cached set or loads and caches it.
func (c *PriceSetCache) FindBySource(ctx context.Context, sourceProductID string) (*priceset.PriceSet, error) {
	key := cacheKey(sourceProductID)
	lg := zctx.From(ctx).With(zap.String("source_product_id", sourceProductID))

	data, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		set, decodeErr := wire.UnmarshalPriceSet(data)
		if decodeErr == nil {
			return set, nil
		}
		lg.Warn("Dropping corrupted price set cache entry", zap.Error(decodeErr))
		_ = c.store.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		lg.Warn("Price set cache read failed", zap.Error(err))
	}

	set, err := c.next.FindBySource(ctx, sourceProductID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, set)
	return set, nil
}

func (c *PriceSetCache) put(ctx context.Context, set *priceset.PriceSet) {
	if err := c.store.Set(ctx, cacheKey(set.SourceProductID), wire.MarshalPriceSet(set), c.ttl).Err(); err != nil {
		zctx.From(ctx).Warn("Price set cache write failed",
			zap.String("source_product_id", set.SourceProductID),
			zap.Error(err),
		)
	}
}
