package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/titorm/shop-wise-sub000/internal/domain"
	"github.com/titorm/shop-wise-sub000/internal/logger"
)

// DefaultCacheTTL bounds how long a cached catalog entry is served.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "catalog:product:"

// RedisClient is the subset of *redis.Client used by RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache is a read-through cache in front of a Store. Entries never change
// once created, so only positive lookups are cached. Redis failures are logged
// and the call falls through to the wrapped store.
type RedisCache struct {
	next   Store
	client RedisClient
	ttl    time.Duration
}

// NewRedisCache wraps next with a Redis lookup cache.
func NewRedisCache(next Store, client RedisClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{next: next, client: client, ttl: ttl}
}

// NewRedisClient builds a client from a redis:// URL.
func NewRedisClient(redisURL, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("NewRedisClient: parse url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	return redis.NewClient(opts), nil
}

func (c *RedisCache) FindByBarcode(ctx context.Context, key string) (*domain.ProductCatalogEntry, error) {
	log := logger.FromContext(ctx)

	data, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	switch {
	case err == nil:
		var entry domain.ProductCatalogEntry
		if jsonErr := json.Unmarshal(data, &entry); jsonErr == nil {
			return &entry, nil
		}
		log.Warn().Str("barcode", key).Msg("Discarding undecodable cached catalog entry")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("barcode", key).Msg("Catalog cache read failed")
	}

	entry, err := c.next.FindByBarcode(ctx, key)
	if err != nil || entry == nil {
		return entry, err
	}
	c.put(ctx, entry)
	return entry, nil
}

func (c *RedisCache) Create(ctx context.Context, entry *domain.ProductCatalogEntry) error {
	if err := c.next.Create(ctx, entry); err != nil {
		return err
	}
	c.put(ctx, entry)
	return nil
}

func (c *RedisCache) put(ctx context.Context, entry *domain.ProductCatalogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+entry.ID, data, c.ttl).Err(); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("barcode", entry.ID).Msg("Catalog cache write failed")
	}
}
