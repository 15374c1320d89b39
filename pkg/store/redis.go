// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTTL keeps an idle learner's snapshots for 30 days.
	DefaultTTL = 30 * 24 * time.Hour
	// DefaultNamespace prefixes every key written by this service.
	DefaultNamespace = "gamification"

	clearScanCount = 100
)

// RedisStore implements Store on Redis. Keys are written as
// "<namespace>:<key>" with a sliding TTL refreshed on every write.
type RedisStore struct {
	client redis.UniversalClient
	cfg    RedisStoreConfig
}

type RedisStoreConfig struct {
	Namespace string
	// TTL of zero means DefaultTTL; a negative TTL disables expiry.
	TTL time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.UniversalClient, cfg RedisStoreConfig) *RedisStore {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	return &RedisStore{client: client, cfg: cfg}
}

func (r *RedisStore) makeKey(key string) string {
	return fmt.Sprintf("%s:%s", r.cfg.Namespace, key)
}

func (r *RedisStore) ttl() time.Duration {
	if r.cfg.TTL < 0 {
		return 0
	}
	return r.cfg.TTL
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.makeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.makeKey(key), value, r.ttl()).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	logrus.Debugf("stored %s (%d bytes, ttl %v)", key, len(value), r.ttl())
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.makeKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Clear deletes the namespace. Keys are collected over the whole SCAN before
// any are deleted, since deleting mid-iteration can move keys past the cursor.
func (r *RedisStore) Clear(ctx context.Context) error {
	pattern := r.cfg.Namespace + ":*"
	var cursor uint64
	var keys []string

	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, clearScanCount).Result()
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	for start := 0; start < len(keys); start += clearScanCount {
		end := min(start+clearScanCount, len(keys))
		if err := r.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("failed to clear %s: %w", pattern, err)
		}
	}

	logrus.Infof("cleared %d keys in namespace %s", len(keys), r.cfg.Namespace)
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
