// File: cmd/history_test.go
package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCommandRequiresConfiguration(t *testing.T) {
	_, err := executeCommand(t, "history")
	require.Error(t, err, "history without a database must refuse to run")
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestHistoryCommandRejectsBadLimit(t *testing.T) {
	resetForTest(t)

	cfg := newTestConfig()
	cfg.History.Enabled = true
	cfg.History.URL = "postgres://localhost:5432/droidforge"

	cmd := newHistoryCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--limit", "0"})

	err := cmd.ExecuteContext(contextWithConfig(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}
