package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// RedisBlacklistStore keeps revoked tokens in Redis so revocation survives
// restarts and is shared across instances. Expiry is delegated to Redis TTLs.
type RedisBlacklistStore struct {
	client *redis.Client
}

// NewRedisBlacklistStore wraps an existing Redis client.
func NewRedisBlacklistStore(client *redis.Client) *RedisBlacklistStore {
	return &RedisBlacklistStore{client: client}
}

// NewRedisBlacklistStoreFromEnv connects using REDIS_ADDR and REDIS_PASSWORD
// and verifies the connection before returning.
func NewRedisBlacklistStoreFromEnv() (*RedisBlacklistStore, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisBlacklistStore{client: client}, nil
}

// IsBlacklisted reports whether the token was revoked.
func (s *RedisBlacklistStore) IsBlacklisted(token string) (bool, error) {
	n, err := s.client.Exists(context.Background(), blacklistKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddToBlacklist revokes a token until exp. Tokens already past expiry are
// not stored at all.
func (s *RedisBlacklistStore) AddToBlacklist(token string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(context.Background(), blacklistKeyPrefix+token, 1, ttl).Err()
}

// Close releases the underlying Redis connection.
func (s *RedisBlacklistStore) Close() error {
	return s.client.Close()
}
