// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullpath9/droidforge/internal/config"
	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// newTestConfig creates a fully populated, default configuration struct
// for use in tests. It mirrors config.SetDefaults without going through
// viper, with polling and a quiet logger as the only test-friendly edits.
func newTestConfig() *config.Config {
	return &config.Config{
		Logger: config.LoggerConfig{
			Level:       "fatal",
			Format:      "console",
			ServiceName: "droidforge-test",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      14,
			Compress:    true,
			Colors: config.ColorConfig{
				Debug:  "cyan",
				Info:   "green",
				Warn:   "yellow",
				Error:  "red",
				DPanic: "magenta",
				Panic:  "magenta",
				Fatal:  "magenta",
			},
		},
		Diagnose: config.DiagnoseConfig{
			Format:     "text",
			MarkerPath: diagnosis.DefaultMarkerPath,
			Jobs:       4,
			NoColor:    true,
		},
		History: config.HistoryConfig{},
		Watch:   config.WatchConfig{Poll: true, PrintRate: 100},
	}
}

// contextWithConfig stores cfg where configFromContext expects it, for
// executing subcommands standalone.
func contextWithConfig(cfg *config.Config) context.Context {
	return context.WithValue(context.Background(), configKey, cfg)
}

// executeCommand runs the full root command with args, capturing output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetForTest(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// executeCommandNoPreRun is for testing argument and flag validation
// without triggering config loading in PersistentPreRunE.
func executeCommandNoPreRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetForTest(t)

	buf := new(bytes.Buffer)
	rootCmd.PersistentPreRunE = nil
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// createTempConfig writes a YAML config file into a temp dir.
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "droidforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeLog drops build log content into a temp file and returns its path.
func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
