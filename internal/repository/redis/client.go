package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/qorix-chat/internal/config"
)

// Client wraps the Redis client
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient creates a new Redis client
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, prefix: cfg.KeyPrefix}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) key(parts ...string) string {
	k := c.prefix
	for _, p := range parts {
		k += p
	}
	return k
}
