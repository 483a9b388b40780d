package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker is stored under a key between Reserve and Complete
const pendingMarker = "pending"

// RedisResponseStore implements ResponseStore on Redis so every instance
// behind a load balancer sees the same keys.
type RedisResponseStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisResponseStore connects to Redis and verifies the connection
func NewRedisResponseStore(ctx context.Context, cfg RedisConfig) (*RedisResponseStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisResponseStoreWithClient(client, ""), nil
}

// NewRedisResponseStoreWithClient wraps an existing client
func NewRedisResponseStoreWithClient(client *redis.Client, keyPrefix string) *RedisResponseStore {
	if keyPrefix == "" {
		keyPrefix = "condo:idempotency:"
	}
	return &RedisResponseStore{client: client, keyPrefix: keyPrefix}
}

// Reserve implements ResponseStore with SETNX
func (s *RedisResponseStore) Reserve(ctx context.Context, key string, ttl time.Duration) (*StoredResponse, bool, error) {
	k := s.keyPrefix + key
	ok, err := s.client.SetNX(ctx, k, pendingMarker, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return nil, true, nil
	}

	raw, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return s.Reserve(ctx, key, ttl)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if raw == pendingMarker {
		return nil, false, nil
	}

	var resp StoredResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, false, fmt.Errorf("failed to decode stored response: %w", err)
	}
	return &resp, false, nil
}

// Complete implements ResponseStore. SET XX keeps a released or expired
// reservation from being resurrected.
func (s *RedisResponseStore) Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	ok, err := s.client.SetXX(ctx, s.keyPrefix+key, raw, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	if !ok {
		return ErrNotReserved
	}
	return nil
}

// Release implements ResponseStore
func (s *RedisResponseStore) Release(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	if n == 0 {
		return ErrNotReserved
	}
	return nil
}

// Close closes the Redis client
func (s *RedisResponseStore) Close() error {
	return s.client.Close()
}

var _ ResponseStore = (*RedisResponseStore)(nil)
