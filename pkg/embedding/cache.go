package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"braincells-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache stores vectors by key. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, values []float32) error
}

// CachedProvider memoizes a provider. Embeddings are deterministic for a
// given model and text, so the key is a hash of both.
type CachedProvider struct {
	next      EmbeddingProvider
	cache     Cache
	namespace string
	log       logger.ILogger
}

var _ EmbeddingProvider = (*CachedProvider)(nil)

func NewCachedProvider(next EmbeddingProvider, c Cache, namespace string, log logger.ILogger) *CachedProvider {
	return &CachedProvider{
		next:      next,
		cache:     c,
		namespace: namespace,
		log:       log,
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	key := p.key(text)

	values, found, err := p.cache.Get(ctx, key)
	if err != nil {
		p.log.Warn("EmbeddingCache", "cache read failed", map[string]interface{}{"error": err.Error()})
	} else if found {
		return values, nil
	}

	values, err = p.next.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, values); err != nil {
		p.log.Warn("EmbeddingCache", "cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return values, nil
}

func (p *CachedProvider) key(text string) string {
	sum := sha256.Sum256([]byte(p.namespace + "\x00" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}

// MemoryCache keeps vectors in process with a TTL.
type MemoryCache struct {
	cache *cache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{cache: cache.New(ttl, 10*time.Minute)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	if x, found := c.cache.Get(key); found {
		return x.([]float32), true, nil
	}
	return nil, false, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, values []float32) error {
	c.cache.Set(key, values, cache.DefaultExpiration)
	return nil
}

// RedisCache shares vectors between instances.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var values []float32
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false, err
	}
	return values, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, values []float32) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}
