package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gatebank/internal/domain"
	"gatebank/internal/taxonomy"
	"github.com/redis/go-redis/v9"
)

// CanonCache stores normalized question sets under content-addressed
// keys. The key embeds the taxonomy schema version and a hash of the
// raw source, so a taxonomy change or a re-scrape can never serve a
// stale normalization; old entries simply age out.
type CanonCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCanonCache(client *redis.Client, ttl time.Duration) *CanonCache {
	return &CanonCache{client: client, ttl: ttl}
}

// Key derives the cache key for a raw source payload.
func Key(sourceData []byte) string {
	sum := sha1.Sum(sourceData)
	return fmt.Sprintf("bank:canon:v%d:%s", taxonomy.SchemaVersion, hex.EncodeToString(sum[:]))
}

// Get returns the cached normalization for a key, if present.
func (c *CanonCache) Get(ctx context.Context, key string) ([]domain.CanonicalQuestion, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("canon cache get: %w", err)
	}
	var questions []domain.CanonicalQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		// A corrupt entry is a miss, not a failure.
		return nil, false, nil
	}
	return questions, true, nil
}

// Set stores a normalization under its content key.
func (c *CanonCache) Set(ctx context.Context, key string, questions []domain.CanonicalQuestion) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("canon cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("canon cache set: %w", err)
	}
	return nil
}

// Invalidate drops one entry. Rarely needed given content addressing;
// kept for the pipeline's precompute stage.
func (c *CanonCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
