package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "roachagram:"

// RedisStorage keeps values in Redis under a key prefix.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage connects to addr.
func NewRedisStorage(addr string) *RedisStorage {
	return NewRedisStorageFromClient(redis.NewClient(&redis.Options{Addr: addr}))
}

// NewRedisStorageFromClient wraps an existing client.
func NewRedisStorageFromClient(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client, prefix: defaultRedisPrefix}
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
