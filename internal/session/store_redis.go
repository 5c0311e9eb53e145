// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/askly/internal/platform/constants"
	redisclient "github.com/taibuivan/askly/internal/platform/redis"
)

// RedisStore implements [Store] on Redis. Keys never expire: the record is durable
// until the session manager deletes it.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix selects [constants.RedisPrefixSession].
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = constants.RedisPrefixSession
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Get implements [Store].
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return value, true, nil
}

// Set implements [Store].
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

// Delete implements [Store]. A single DEL removes all keys atomically.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.prefix + key
	}

	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}

// Ping implements [Store].
func (s *RedisStore) Ping(ctx context.Context) error {
	return redisclient.Ping(ctx, s.client)
}

// Close implements [Store].
func (s *RedisStore) Close() error {
	return s.client.Close()
}
