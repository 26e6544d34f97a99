package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "partyrooms:"

// RedisConfig holds configuration for the Redis-backed store.
type RedisConfig struct {
	// Redis client
	RedisClient *redis.Client
}

// Redis implements Store on a Redis key per snapshot.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed store and verifies the connection.
func NewRedis(cfg *RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: cfg.RedisClient}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return value, nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	// Snapshots never expire; rooms are removed from the snapshot itself
	// when their last player disconnects.
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	return nil
}
