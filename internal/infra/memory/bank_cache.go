// Package memory holds in-process implementations of the storage
// interfaces: a TTL question-source cache and a progress store.
package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"gatebank/internal/bank"
	"gatebank/internal/domain"
	"golang.org/x/sync/singleflight"
)

// SourceCache caches raw question sources with TTL so repeated bank
// rebuilds do not re-read the backing store.
type SourceCache struct {
	loader bank.Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSource
}

type cachedSource struct {
	questions []domain.RawQuestion
	expiresAt time.Time
}

func NewSourceCache(loader bank.Loader, ttl time.Duration) *SourceCache {
	return &SourceCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSource),
	}
}

func (c *SourceCache) LoadSource(ctx context.Context, name string) ([]domain.RawQuestion, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[name]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(name, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[name]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.loader.LoadSource(ctx, name)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[name] = cachedSource{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.RawQuestion), nil
}

// Invalidate drops one cached source, forcing a reload on next access.
func (c *SourceCache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.cache, name)
	c.mu.Unlock()
}

// StaticLoader serves sources from an in-memory map (tests, demos).
type StaticLoader struct {
	sources map[string][]domain.RawQuestion
}

func NewStaticLoader(sources map[string][]domain.RawQuestion) *StaticLoader {
	return &StaticLoader{sources: sources}
}

func (l *StaticLoader) LoadSource(_ context.Context, name string) ([]domain.RawQuestion, error) {
	if questions, ok := l.sources[name]; ok {
		return questions, nil
	}
	return nil, domain.ErrNoSource
}

func (c *SourceCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
