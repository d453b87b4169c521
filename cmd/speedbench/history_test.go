package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCommand_ListsRecordedSweeps(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	t.Chdir(dir)
	withFakeExecutor(t, &fakeExecutor{})

	dbPath := filepath.Join(dir, "history.db")
	cfg := "history:\n  type: sqlite\n  dsn: " + dbPath + "\nprogress: false\nprocs: 1\nimage_format: png\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	output, err := executeCommand(rootCmd, "--config", cfgPath)
	require.NoError(t, err, output)
	assert.Contains(t, output, "History id: 1")

	output, err = executeCommand(rootCmd, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, output, "PROCS")
	assert.Contains(t, output, "prog1_data_")
}

func TestHistoryCommand_NoBackend(t *testing.T) {
	resetConfig(t)
	t.Chdir(t.TempDir())

	_, err := executeCommand(rootCmd, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no history backend configured")
}

func TestHistoryCommand_Empty(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SPEEDBENCH_HISTORY_TYPE", "sqlite")
	t.Setenv("SPEEDBENCH_HISTORY_DSN", filepath.Join(dir, "empty.db"))

	output, err := executeCommand(rootCmd, "history")
	require.NoError(t, err)
	assert.Contains(t, output, "No sweeps recorded.")
}
