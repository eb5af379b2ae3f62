package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/najmulislamnajim/odms-cache/internal/adapters/source"
	"github.com/najmulislamnajim/odms-cache/internal/config"
	"github.com/najmulislamnajim/odms-cache/internal/platform/db"
)

const defaultSeedPath = "data/seeds/delivery.json"

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [json-path]",
		Short: "Create and seed a local SQLite source store",
		Long: `Create the ODMS source tables in the SQLite file named by DB_NAME and
load rows from a JSON seed file. Only valid with DB_DRIVER=sqlite.

The path defaults to SEED_PATH, then ` + defaultSeedPath + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Source.Driver != "sqlite" {
				return fmt.Errorf("seed: DB_DRIVER is %q, seeding only supports sqlite", a.cfg.Source.Driver)
			}

			seedPath := config.Get("SEED_PATH", defaultSeedPath)
			if len(args) == 1 {
				seedPath = args[0]
			}

			ctx := cmd.Context()
			handle, err := db.Open(ctx, a.source.Dialect.DriverName, a.source.Dialect.DSN)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer handle.Close()

			a.log.Info("initializing schema", zap.String("db", a.cfg.Source.Name))
			if err := source.InitSchema(ctx, handle); err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			a.log.Info("seeding", zap.String("path", seedPath))
			if err := source.SeedFromJSON(ctx, handle, seedPath); err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			a.log.Info("seeding complete")
			return nil
		},
	}
}
