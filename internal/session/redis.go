// internal/session/redis.go
//
// Redis-backed Store.
//
// Layout: one hash per session at `<prefix>:<id>`, one field per key.
// Every write refreshes the hash TTL, so an active session never expires
// mid-use and an abandoned one disappears after TTL.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces session hashes in a shared Redis.
const DefaultPrefix = "coursehost:session"

// RedisStore implements Store on a go-redis client.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis parses url, pings the server, and returns a ready store.
func DialRedis(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("session: parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: redis ping failed: %w", err)
	}
	return NewRedisStore(client, prefix, ttl), nil
}

func (s *RedisStore) key(id string) string { return s.prefix + ":" + id }

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id, key string) (string, error) {
	v, err := s.client.HGet(ctx, s.key(id), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session: redis hget: %w", err)
	}
	return v, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, id, key, value string) error {
	k := s.key(id)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: redis hset: %w", err)
	}
	return nil
}

// Delete implements Store.  Missing keys are ignored.
func (s *RedisStore) Delete(ctx context.Context, id string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key(id), keys...).Err(); err != nil {
		return fmt.Errorf("session: redis hdel: %w", err)
	}
	return nil
}

// Destroy implements Store.
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }
