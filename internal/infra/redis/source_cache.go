// Package redis holds the Redis-backed caches and the Redis progress
// store.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"gatebank/internal/bank"
	"gatebank/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SourceCache caches raw question sources in Redis and falls back to a
// loader on miss, so multiple app instances share one scrape of the
// backing files.
type SourceCache struct {
	client *redis.Client
	loader bank.Loader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewSourceCache(client *redis.Client, loader bank.Loader, ttl time.Duration) *SourceCache {
	return &SourceCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *SourceCache) LoadSource(ctx context.Context, name string) ([]domain.RawQuestion, error) {
	key := sourceKey(name)

	if questions, ok := c.fetch(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(name, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if questions, ok := c.fetch(ctx, key); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadSource(ctx, name)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.RawQuestion), nil
}

// Invalidate drops one cached source.
func (c *SourceCache) Invalidate(ctx context.Context, name string) error {
	return c.client.Del(ctx, sourceKey(name)).Err()
}

func (c *SourceCache) fetch(ctx context.Context, key string) ([]domain.RawQuestion, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.RawQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func sourceKey(name string) string {
	return "bank:source:" + name
}

func (c *SourceCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
