package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/najmulislamnajim/odms-cache/internal/services"
)

func newFlushCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Delete every entry in the configured cache database",
		Long: `Run FLUSHDB against CACHE_DB on the configured backend.

Takes no arguments. The --yes flag is required so that a stray invocation
cannot empty the cache the delivery app reads from.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("flush: refusing to clear the cache without --yes")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := services.Flush(cmd.Context(), a.cache, a.log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flushed %s db %d\n", a.cfg.Cache.Backend, a.cfg.Cache.DB)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing the cache database")
	return cmd
}
