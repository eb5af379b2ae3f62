package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/valkey-io/valkey-glide/go/api"

	"github.com/najmulislamnajim/odms-cache/internal/config"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

// glideClient is the subset of the Glide standalone client this store uses.
type glideClient interface {
	Set(key string, value string) (string, error)
	CustomCommand(args []string) (interface{}, error)
	Close()
}

// ValkeyCacheStore is a Valkey GLIDE implementation of the CacheStore port.
// GLIDE calls are not context aware; ctx is only checked before each call.
type ValkeyCacheStore struct {
	client glideClient
}

func (s *ValkeyCacheStore) Set(ctx context.Context, key string, value []byte) error {
	if s.client == nil {
		return errors.New("valkey cache: client is nil")
	}
	if key == "" {
		return errors.New("valkey cache set: key must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("valkey cache set key=%q: %w", key, err)
	}

	if _, err := s.client.Set(key, string(value)); err != nil {
		return fmt.Errorf("valkey cache set key=%q: %w", key, err)
	}
	return nil
}

func (s *ValkeyCacheStore) Flush(ctx context.Context) error {
	if s.client == nil {
		return errors.New("valkey cache: client is nil")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("valkey cache flush: %w", err)
	}

	if _, err := s.client.CustomCommand([]string{"FLUSHDB"}); err != nil {
		return fmt.Errorf("valkey cache flush: %w", err)
	}
	return nil
}

func (s *ValkeyCacheStore) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

// ValkeyConnector opens one GLIDE standalone client per Connect call.
type ValkeyConnector struct {
	Config config.CacheConfig
}

func NewValkeyConnector(cfg config.CacheConfig) *ValkeyConnector {
	return &ValkeyConnector{Config: cfg}
}

func (c *ValkeyConnector) Connect(ctx context.Context) (ports.CacheStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect valkey: %w", err)
	}

	cfg := api.NewGlideClientConfiguration().
		WithAddress(&api.NodeAddress{Host: c.Config.Host, Port: c.Config.Port}).
		WithDatabaseId(c.Config.DB)
	if c.Config.Password != "" {
		cfg = cfg.WithCredentials(api.NewServerCredentialsWithDefaultUsername(c.Config.Password))
	}

	client, err := api.NewGlideClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect valkey addr=%s:%d db=%d: %w", c.Config.Host, c.Config.Port, c.Config.DB, err)
	}
	return &ValkeyCacheStore{client: client}, nil
}
