package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/infrastructure/redis"
)

// KVClient is the part of the redis client the backend uses.
// Get must return redis.ErrNotFound for a missing key.
type KVClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisBackend stores each collection as one string key
type RedisBackend struct {
	client KVClient
	prefix string
}

// NewRedisBackend wraps a connected redis client. prefix namespaces the keys.
func NewRedisBackend(client KVClient, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return []byte(data), nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	// no TTL: rosters persist indefinitely
	if err := r.client.Set(ctx, r.prefix+key, string(value), 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
