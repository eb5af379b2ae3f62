package cli

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/najmulislamnajim/odms-cache/internal/services"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <agent_code> <billing_date|1>",
		Short: "Rebuild the cache entry for one agent and date",
		Long: `Re-extract and overwrite a single cache entry. The date is YYYY-MM-DD,
or 1 for today.`,
		Example: "  odmscache refresh D004 1\n  odmscache refresh D004 2024-03-05",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			r := services.NewRefresher(a.source, a.cache, a.log, clockwork.NewRealClock())
			outcome, err := r.Refresh(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d rows)\n", outcome.Key, outcome.Rows)
			return nil
		},
	}
}
