// File: cmd/diagnose.go
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nullpath9/droidforge/internal/config"
	"github.com/nullpath9/droidforge/internal/diagnosis"
	"github.com/nullpath9/droidforge/internal/history"
	"github.com/nullpath9/droidforge/internal/observability"
	"github.com/nullpath9/droidforge/internal/output"
)

// IncidentsFoundError reports a diagnosis that completed and found build
// failures. Execute maps it to exit code 1 so CI pipelines can branch on
// "build broken" without parsing output.
type IncidentsFoundError struct {
	Count int
}

func (e *IncidentsFoundError) Error() string {
	if e.Count == 1 {
		return "diagnosis found 1 incident"
	}
	return fmt.Sprintf("diagnosis found %d incidents", e.Count)
}

// newDiagnoseCmd creates and configures the `diagnose` command.
func newDiagnoseCmd() *cobra.Command {
	diagnoseCmd := &cobra.Command{
		Use:   "diagnose [logs...]",
		Short: "Scans finished build logs and reports every failure incident",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			applyDiagnoseFlags(cmd, &cfg.Diagnose)

			format, err := output.ParseFormat(cfg.Diagnose.Format)
			if err != nil {
				return err
			}
			if cfg.Diagnose.Jobs < 1 {
				return fmt.Errorf("jobs must be at least 1")
			}

			engine := diagnosis.New(diagnosis.DefaultTable(), cfg.Diagnose.MarkerPath, logger)

			sink, err := buildReportSink(cmd, cfg, format)
			if err != nil {
				return err
			}
			defer func() {
				if err := sink.Close(); err != nil {
					logger.Error("Failed to close report sink", zap.Error(err))
				}
			}()

			recorder := openHistory(ctx, cfg, logger)
			defer recorder.Close()

			logger.Info("Diagnosing build logs.",
				zap.Int("count", len(args)),
				zap.Int("jobs", cfg.Diagnose.Jobs),
			)

			reports := make([]*diagnosis.Report, len(args))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(cfg.Diagnose.Jobs)
			for i, logPath := range args {
				i, logPath := i, logPath
				g.Go(func() error {
					report, err := engine.Diagnose(gctx, logPath)
					if err != nil {
						return err
					}
					reports[i] = report
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			// Reports render in argument order regardless of which
			// diagnosis finished first.
			total := 0
			for _, report := range reports {
				if err := sink.Write(ctx, report); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				total += report.Count()
				recorder.Record(ctx, report)
			}

			if total > 0 {
				return &IncidentsFoundError{Count: total}
			}
			return nil
		},
	}

	diagnoseCmd.Flags().StringP("format", "f", "", "Report file format: text, json or junit. (Overrides config)")
	diagnoseCmd.Flags().StringP("output", "o", "", "Report file path. If unset, console only.")
	diagnoseCmd.Flags().IntP("jobs", "j", 0, "Number of logs to diagnose concurrently. (Overrides config)")
	diagnoseCmd.Flags().String("marker", "", "Failure marker path. (Overrides config)")
	diagnoseCmd.Flags().Bool("no-color", false, "Disable colored console output.")

	return diagnoseCmd
}

// applyDiagnoseFlags lets explicitly set flags override the loaded config.
// Each run builds its own viper instance, so overrides go straight onto
// the config struct instead of through viper bindings.
func applyDiagnoseFlags(cmd *cobra.Command, cfg *config.DiagnoseConfig) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("marker") {
		cfg.MarkerPath, _ = flags.GetString("marker")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
}

// buildReportSink assembles the console reporter plus an optional file
// sink behind one fan-out.
func buildReportSink(cmd *cobra.Command, cfg *config.Config, format output.Format) (output.Reporter, error) {
	consoleOpts := []output.ConsoleOption{output.WithWriter(cmd.OutOrStdout())}
	if cfg.Diagnose.NoColor {
		consoleOpts = append(consoleOpts, output.WithNoColor())
	}
	reporters := []output.Reporter{output.NewConsole(consoleOpts...)}

	if cfg.Diagnose.Output != "" {
		fileSink, err := output.New(format, cfg.Diagnose.Output)
		if err != nil {
			return nil, err
		}
		reporters = append(reporters, fileSink)
	}
	return output.NewMulti(reporters...), nil
}

// historyRecorder wraps the optional history store. A nil recorder is
// valid and records nothing, which keeps the diagnose path flat.
type historyRecorder struct {
	store  *history.Store
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// openHistory connects to the history database when enabled. Any failure
// downgrades to a warning: history must never change a diagnosis result.
func openHistory(ctx context.Context, cfg *config.Config, logger *zap.Logger) *historyRecorder {
	if !cfg.History.Enabled {
		return nil
	}

	pool, err := history.Connect(ctx, cfg.History.URL)
	if err != nil {
		logger.Warn("History disabled for this run: connection failed", zap.Error(err))
		return nil
	}
	store, err := history.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		logger.Warn("History disabled for this run: ping failed", zap.Error(err))
		return nil
	}
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		logger.Warn("History disabled for this run: schema setup failed", zap.Error(err))
		return nil
	}
	return &historyRecorder{store: store, pool: pool, logger: logger}
}

func (h *historyRecorder) Record(ctx context.Context, report *diagnosis.Report) {
	if h == nil || report.LogMissing {
		return
	}
	if err := h.store.RecordRun(ctx, report); err != nil {
		h.logger.Warn("Failed to record run in history", zap.Error(err))
	}
}

func (h *historyRecorder) Close() {
	if h == nil {
		return
	}
	h.pool.Close()
}
