// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nullpath9/droidforge/internal/config"
	"github.com/nullpath9/droidforge/internal/observability"
)

var (
	cfgFile string
	// osExit is swapped out in tests.
	osExit = os.Exit
)

// contextKey scopes values stored on the command context.
type contextKey string

// configKey is where the validated configuration lives on the context.
const configKey contextKey = "config"

var rootCmd = newRootCmd()

// newRootCmd builds the root command and attaches every subcommand. Each
// run owns its viper instance, so consecutive executions never share
// configuration state.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "droidforge",
		Short:        "Droidforge diagnoses Android kernel build logs from CI.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(v); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				// Fall back to a basic logger so the failure is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "droidforge"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			logger := observability.GetLogger()
			logger.Info("Starting droidforge", zap.String("version", Version))

			// Subcommands read the validated config from the context.
			ctx := context.WithValue(cmd.Context(), configKey, cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./droidforge.yaml)")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.AddCommand(newDiagnoseCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// initializeConfig points v at the config file and environment.
func initializeConfig(v *viper.Viper) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("droidforge")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("DROIDFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env cover everything.
	}
	return nil
}

// configFromContext returns the configuration stored by the root command.
func configFromContext(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration missing from command context")
	}
	return cfg, nil
}

// Execute runs the root command and maps the outcome to an exit code:
// 0 for a clean log, 1 when incidents were found, 2 for operational
// failures.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	observability.Sync()
	if err == nil {
		return
	}

	var incidentsErr *IncidentsFoundError
	if errors.As(err, &incidentsErr) {
		osExit(1)
		return
	}

	observability.GetLogger().Error("Command execution failed", zap.Error(err))
	osExit(2)
}
