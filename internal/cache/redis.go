package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"el-diego/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisStore implements the Store interface using Redis.
type redisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewClient creates a Redis client from the configuration and verifies
// connectivity with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// NewRedisStore creates a Redis-backed cache store.
func NewRedisStore(client *redis.Client, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		logger: logger.With().Str("cache", "redis").Logger(),
	}
}

// Get retrieves the value at key, or an empty string when absent.
func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("redis get failed")
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

// SetWithTTL stores a value at key with the given expiry.
func (s *redisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("redis set failed")
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes the key.
func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("redis delete failed")
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
