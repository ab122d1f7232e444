package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/dmitrijs2005/hlsync/internal/common"
)

const redisKeyPrefix = "hlsync:settings:"

// RedisStore keeps each setting under its own prefixed Redis key.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %w", common.ErrorStoreAccess, key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %w", common.ErrorStoreAccess, key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
