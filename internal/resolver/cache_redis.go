package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"haulpass/internal/domain"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
)

const (
	documentKeyPrefix = "did:doc:"

	// Documents are immutable, but a bounded TTL keeps an abandoned
	// deployment from pinning stale data forever.
	defaultDocumentTTL = 24 * time.Hour
)

// RedisCache is a Redis-backed document cache for deployments where multiple
// instances share resolution state.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisCacheOption func(*RedisCache)

func WithDocumentTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) { c.ttl = ttl }
}

func NewRedisCache(client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	cache := &RedisCache{
		client: client,
		ttl:    defaultDocumentTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cache)
		}
	}
	return cache
}

func (c *RedisCache) Get(ctx context.Context, did id.DID) (domain.Document, bool, error) {
	raw, err := c.client.Get(ctx, documentKeyPrefix+did.String()).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Document{}, false, nil
	}
	if err != nil {
		return domain.Document{}, false, dErrors.Wrap(err, dErrors.CodeStorage, "read cached document")
	}

	var doc domain.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domain.Document{}, false, dErrors.Wrap(err, dErrors.CodeStorage, "decode cached document")
	}
	return doc, true, nil
}

func (c *RedisCache) Set(ctx context.Context, did id.DID, doc domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "encode document for cache")
	}
	if err := c.client.Set(ctx, documentKeyPrefix+did.String(), raw, c.ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "write cached document")
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
