// Package kv is the key-value storage layer behind the report store. Values
// are opaque strings with a per-write TTL. The Redis implementation backs
// production; the in-memory one backs dev mode and tests.
package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	// Get returns the value at key. The second return is false when the key
	// is absent or expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes value at key, replacing any prior value and resetting the
	// expiry to ttl from now.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}
