package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store wraps the shared Redis client. A Store built on a nil client
// behaves as an always-empty cache.
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// --- Token revocation ---

// BlacklistToken revokes a token id until ttl elapses.
func (s *Store) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if !s.Enabled() || ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, fmt.Sprintf("blacklist:%s", tokenID), "revoked", ttl).Err()
}

func (s *Store) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, fmt.Sprintf("blacklist:%s", tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Rate limiting ---

// IncrementRateLimit bumps key and starts its window on first use.
func (s *Store) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if !s.Enabled() {
		return 0, 0, errors.New("redis not configured")
	}
	pipe := s.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	remaining := ttl.Val()
	if remaining < 0 {
		if err := s.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		remaining = window
	}
	return incr.Val(), remaining, nil
}

func (s *Store) ResetRateLimit(ctx context.Context, key string) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Del(ctx, key).Err()
}

// --- Generic values ---

func (s *Store) get(ctx context.Context, key string) ([]byte, bool) {
	if !s.Enabled() {
		return nil, false
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *Store) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *Store) del(ctx context.Context, keys ...string) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// deletePattern removes every key matching pattern using SCAN.
func (s *Store) deletePattern(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}
