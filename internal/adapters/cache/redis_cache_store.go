package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/najmulislamnajim/odms-cache/internal/config"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

// RedisCacheStore is a Redis-backed implementation of the CacheStore port.
type RedisCacheStore struct {
	Client *redis.Client
}

func NewRedisCacheStore(client *redis.Client) *RedisCacheStore {
	return &RedisCacheStore{Client: client}
}

// Store value under key with no expiry, overwriting any previous value.
func (s *RedisCacheStore) Set(ctx context.Context, key string, value []byte) error {
	if s.Client == nil {
		return errors.New("redis cache: client is nil")
	}
	if key == "" {
		return errors.New("redis cache set: key must not be empty")
	}

	if err := s.Client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis cache set key=%q: %w", key, err)
	}
	return nil
}

// Flush removes every key in the configured database.
func (s *RedisCacheStore) Flush(ctx context.Context) error {
	if s.Client == nil {
		return errors.New("redis cache: client is nil")
	}

	if err := s.Client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("redis cache flush: %w", err)
	}
	return nil
}

func (s *RedisCacheStore) Close() error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}

// RedisConnector opens one Redis client per Connect call. Each client keeps a
// single pooled connection.
type RedisConnector struct {
	Options redis.Options
}

func NewRedisConnector(cfg config.CacheConfig) *RedisConnector {
	return &RedisConnector{Options: redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 1,
	}}
}

func (c *RedisConnector) Connect(ctx context.Context) (ports.CacheStore, error) {
	opts := c.Options
	client := redis.NewClient(&opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis addr=%s db=%d: %w", opts.Addr, opts.DB, err)
	}
	return NewRedisCacheStore(client), nil
}
