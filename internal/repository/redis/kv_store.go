package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/qorix-chat/internal/domain"
)

const kvPrefix = "kv:"

// KVStore implements domain.KVStore with plain Redis strings (no TTL)
type KVStore struct {
	client *Client
}

// NewKVStore creates a key/value store on the client
func NewKVStore(client *Client) *KVStore {
	return &KVStore{client: client}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.rdb.Get(ctx, s.client.key(kvPrefix, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.rdb.Set(ctx, s.client.key(kvPrefix, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.rdb.Del(ctx, s.client.key(kvPrefix, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *KVStore) Close() error {
	return s.client.Close()
}
