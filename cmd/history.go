// File: cmd/history.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nullpath9/droidforge/internal/history"
	"github.com/nullpath9/droidforge/internal/observability"
)

// newHistoryCmd creates and configures the `history` command.
func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Lists recent diagnosis runs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled; enable history.enabled and set history.url or DROIDFORGE_HISTORY_URL")
			}

			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 1 {
				return fmt.Errorf("limit must be at least 1")
			}

			pool, err := history.Connect(ctx, cfg.History.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to history database: %w", err)
			}
			defer pool.Close()

			store, err := history.New(ctx, pool, logger)
			if err != nil {
				return err
			}

			runs, err := store.RecentRuns(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No recorded runs.")
				return nil
			}
			for _, run := range runs {
				fmt.Fprintf(out, "%s  %-32s  %3d incident(s)  %s\n",
					run.CreatedAt.Local().Format("2006-01-02 15:04:05"), run.LogPath, run.IncidentCount, run.ID)
			}

			counts, err := store.TopCategories(ctx, 5)
			if err != nil {
				return err
			}
			if len(counts) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, "Most frequent categories:")
				for _, c := range counts {
					fmt.Fprintf(out, "  %5d  %s\n", c.Total, c.Category)
				}
			}
			return nil
		},
	}

	historyCmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to list")
	return historyCmd
}
