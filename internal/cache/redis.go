// SPDX-License-Identifier: AGPL-3.0-only
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

// RedisStore keeps entries as JSON documents in Redis. Entries carry their
// own timestamp and expiration instead of a Redis TTL so that expired data
// stays around for stale-serving.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client}
}

var _ Store = (*RedisStore)(nil)

func redisKey(key string) string {
	return "metrics:" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Result()
	if err == redis.Nil {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Entry{}, fmt.Errorf("unmarshal cache entry %s: %w", key, err)
	}
	return entry, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, data *model.SocialMediaData, expiration time.Duration) (Entry, error) {
	entry := Entry{
		Key:        key,
		Data:       data,
		Timestamp:  time.Now(),
		Expiration: expiration,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal cache entry %s: %w", key, err)
	}

	if err := s.client.Set(ctx, redisKey(key), raw, 0).Err(); err != nil {
		return Entry{}, fmt.Errorf("redis set %s: %w", key, err)
	}
	return entry, nil
}

// Ping verifies the Redis connection at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
