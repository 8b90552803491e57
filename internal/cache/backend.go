package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Backend is the byte-level key/value store behind RecipientCache.
type Backend interface {
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)
	SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type redisBackend struct{ client *redis.Client }

// NewRedisBackend shares cached profiles across instances.
func NewRedisBackend(client *redis.Client) Backend { return &redisBackend{client: client} }

func (b *redisBackend) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	vals, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[keys[i]] = []byte(str)
		}
	}
	return out, nil
}

func (b *redisBackend) SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}
	pipe := b.client.Pipeline()
	for k, v := range values {
		pipe.Set(ctx, k, v, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (b *redisBackend) Delete(ctx context.Context, keys ...string) error {
	return b.client.Del(ctx, keys...).Err()
}

type memoryBackend struct{ c *gocache.Cache }

// NewMemoryBackend keeps profiles in process memory.
func NewMemoryBackend(defaultTTL, cleanupInterval time.Duration) Backend {
	return &memoryBackend{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (b *memoryBackend) GetMany(_ context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := b.c.Get(k); ok {
			out[k] = v.([]byte)
		}
	}
	return out, nil
}

func (b *memoryBackend) SetMany(_ context.Context, values map[string][]byte, ttl time.Duration) error {
	for k, v := range values {
		b.c.Set(k, v, ttl)
	}
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		b.c.Delete(k)
	}
	return nil
}
