package cache

import (
	"fmt"

	"github.com/najmulislamnajim/odms-cache/internal/config"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

// NewConnector selects the cache backend named in cfg.
func NewConnector(cfg config.CacheConfig) (ports.CacheConnector, error) {
	switch cfg.Backend {
	case "redis", "":
		return NewRedisConnector(cfg), nil
	case "valkey":
		return NewValkeyConnector(cfg), nil
	}
	return nil, fmt.Errorf("new cache connector: unsupported backend %q", cfg.Backend)
}
