package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

// Flush clears every entry from the cache database.
func Flush(ctx context.Context, connector ports.CacheConnector, log *zap.Logger) error {
	store, err := connector.Connect(ctx)
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	defer closeLogged(log, "cache", store.Close)

	if err := store.Flush(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	log.Info("cache flushed")
	return nil
}
