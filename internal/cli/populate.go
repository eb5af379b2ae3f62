package cli

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/najmulislamnajim/odms-cache/internal/services"
)

func newPopulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "populate",
		Short: "Cache delivery info for every agent billed today",
		Long: `Enumerate today's (billing date, agent code) pairs, split them across
up to WORKERS workers and write one cache entry per pair.

Exits non-zero when the source store is unreachable or any unit fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			a.log.Info("populate configured",
				zap.String("source", a.cfg.Source.Driver),
				zap.String("cache", a.cfg.Cache.Backend),
				zap.Int("max_workers", a.cfg.Workers),
			)

			o := services.NewOrchestrator(a.source, a.cache, a.cfg.Workers, a.log, clockwork.NewRealClock())
			summary, err := o.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d units, %d written, %d empty, %d failed in %s\n",
				summary.RunID, summary.Units, summary.Written, summary.Empty, summary.Failed, summary.Duration.Round(time.Millisecond))

			if !summary.OK() {
				return fmt.Errorf("populate: %d of %d units failed", summary.Failed, summary.Units)
			}
			return nil
		},
	}
}
