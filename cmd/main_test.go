// File: cmd/main_test.go
package cmd

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"github.com/nullpath9/droidforge/internal/config"
	"github.com/nullpath9/droidforge/internal/observability"
)

// resetForTest provides the single source of truth for resetting test state.
func resetForTest(t *testing.T) {
	t.Helper()

	// Each run builds its own viper instance; the global is reset anyway
	// in case a dependency touched it.
	viper.Reset()

	// Neutralize ambient environment that would leak into config loading.
	t.Setenv("DROIDFORGE_HISTORY_URL", "")
	t.Setenv("DROIDFORGE_HISTORY_ENABLED", "")

	// Reset package-level variables from root.go.
	cfgFile = ""
	osExit = os.Exit

	// Reset the logger to a silent state. The logger initializes once, so
	// this also keeps the commands under test from reconfiguring it.
	observability.ResetForTest()
	observability.InitializeLogger(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"})

	// Re-initialize the root command to its pristine state. This prevents
	// state leakage within Cobra itself.
	rootCmd = newRootCmd()
}
