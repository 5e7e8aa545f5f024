package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "seo-strategist:"

// RedisBackend stores each key as a Redis string. Used when several
// operators share one workspace store.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(redisURL string) (*RedisBackend, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBackend{client: client}, nil
}

func (backend *RedisBackend) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := backend.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (backend *RedisBackend) Write(ctx context.Context, key string, data []byte) error {
	return backend.client.Set(ctx, redisKeyPrefix+key, data, 0).Err()
}

func (backend *RedisBackend) Close() error {
	return backend.client.Close()
}
