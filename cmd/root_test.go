// File: cmd/root_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHelpListsCommands(t *testing.T) {
	out, err := executeCommandNoPreRun(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "diagnose")
	assert.Contains(t, out, "watch")
	assert.Contains(t, out, "history")
	assert.Contains(t, out, "version")
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "droidforge "+Version)
}

func TestVersionFlag(t *testing.T) {
	out, err := executeCommandNoPreRun(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestRootRejectsInvalidConfigValues(t *testing.T) {
	cfgPath := createTempConfig(t, "diagnose:\n  format: yaml\n")

	_, err := executeCommand(t, "--config", cfgPath, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load or validate config")
	assert.Contains(t, err.Error(), "diagnose.format")
}

func TestRootMissingExplicitConfigFile(t *testing.T) {
	_, err := executeCommand(t, "--config", "/nonexistent/droidforge.yaml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize configuration")
}

func TestEnvOverridesAreValidated(t *testing.T) {
	t.Setenv("DROIDFORGE_DIAGNOSE_FORMAT", "yaml")

	_, err := executeCommand(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diagnose.format")
}
