// Package cli wires configuration, logging and adapters into the odmscache
// commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/najmulislamnajim/odms-cache/internal/adapters/cache"
	"github.com/najmulislamnajim/odms-cache/internal/adapters/source"
	"github.com/najmulislamnajim/odms-cache/internal/config"
	"github.com/najmulislamnajim/odms-cache/internal/platform/obs"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

// NewRootCommand builds the odmscache command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "odmscache",
		Short:         "Materialize daily delivery info into the cache",
		Long:          "odmscache extracts per-agent delivery info from the ODMS store and writes it to Redis or Valkey for the delivery app.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newPopulateCmd())
	root.AddCommand(newRefreshCmd())
	root.AddCommand(newFlushCmd())
	root.AddCommand(newSeedCmd())
	return root
}

// Execute runs the command named by os.Args and exits non-zero on failure.
// SIGINT and SIGTERM cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	source *source.SQLConnector
	cache  ports.CacheConnector
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	src, err := source.NewSQLConnector(cfg.Source)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewConnector(cfg.Cache)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, source: src, cache: store}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}
