// File: cmd/watch.go
package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nullpath9/droidforge/internal/diagnosis"
	"github.com/nullpath9/droidforge/internal/observability"
	"github.com/nullpath9/droidforge/internal/output"
	"github.com/nullpath9/droidforge/internal/watch"
)

// newWatchCmd creates and configures the `watch` command.
func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch [log]",
		Short: "Follows a build log as it is written and flags incidents live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("poll") {
				cfg.Watch.Poll, _ = flags.GetBool("poll")
			}
			if flags.Changed("print-rate") {
				cfg.Watch.PrintRate, _ = flags.GetFloat64("print-rate")
			}
			if cfg.Watch.PrintRate <= 0 {
				return fmt.Errorf("print-rate must be positive")
			}

			consoleOpts := []output.ConsoleOption{output.WithWriter(cmd.OutOrStdout())}
			if noColor, _ := flags.GetBool("no-color"); noColor {
				consoleOpts = append(consoleOpts, output.WithNoColor())
			}
			console := output.NewConsole(consoleOpts...)

			logPath := args[0]
			watcher := watch.New(logPath, diagnosis.DefaultTable(), cfg.Watch, logger, func(ci diagnosis.ClassifiedIncident) {
				if err := console.WriteIncident(ci); err != nil {
					logger.Warn("Failed to print incident", zap.Error(err))
				}
			})

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", logPath)
			incidents, err := watcher.Run(ctx)
			if err != nil {
				return err
			}

			// Watching never writes the failure marker; a live view is
			// not a finished build.
			report := &diagnosis.Report{
				RunID:     uuid.NewString(),
				LogPath:   logPath,
				Incidents: incidents,
			}
			return console.WriteSummary(report)
		},
	}

	watchCmd.Flags().Bool("poll", false, "Poll the log file instead of using inotify. (Overrides config)")
	watchCmd.Flags().Float64("print-rate", 0, "Maximum live incident prints per second. (Overrides config)")
	watchCmd.Flags().Bool("no-color", false, "Disable colored console output.")

	return watchCmd
}
