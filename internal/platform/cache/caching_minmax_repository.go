// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"marketdata_backend/internal/feature/marketdata/domain/entity"
	"marketdata_backend/internal/feature/marketdata/usecase"
)

// CachingMinMaxRepository decorates a MinMaxRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository.
type CachingMinMaxRepository struct {
	inner     usecase.MinMaxRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingMinMaxRepository decorates a MinMaxRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "minmax".
func NewCachingMinMaxRepository(rdb *redis.Client, ttl time.Duration, inner usecase.MinMaxRepository, namespace string) *CachingMinMaxRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "minmax"
	}
	return &CachingMinMaxRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindDailyExtremes retrieves daily extremes, checking cache first then
// falling back to the store. Entries expire by TTL; the hour table is
// append-only, so stale entries only miss the newest candles.
func (c *CachingMinMaxRepository) FindDailyExtremes(ctx context.Context, symbol string) ([]entity.DailyExtreme, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindDailyExtremes(ctx, symbol)
	}

	key := c.cacheKey(symbol)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.DailyExtreme
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the store
	out, err := c.inner.FindDailyExtremes(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for a specific symbol.
func (c *CachingMinMaxRepository) cacheKey(symbol string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(symbol))
}

// safe strips characters that would break key patterns.
func safe(s string) string {
	return strings.NewReplacer(":", "_", "*", "_", "?", "_").Replace(s)
}
