package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFlagsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlp.toml")
	require.NoError(t, os.WriteFile(path, []byte("debug = 3\nscan_only = true\nsummary_dir = \"sum\"\n"), 0644))

	configPath = path
	defer func() { configPath = "" }()
	cfg, err := loadConfig(runCmd)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Debug)
	require.True(t, cfg.ScanOnly)
	require.Equal(t, "sum", cfg.SummaryDir)

	require.NoError(t, runCmd.Flags().Set("summary-dir", "other"))
	cfg, err = loadConfig(runCmd)
	require.NoError(t, err)
	require.Equal(t, "other", cfg.SummaryDir)
}

func TestLoadConfigMissingFile(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "nope.toml")
	defer func() { configPath = "" }()
	_, err := loadConfig(scanCmd)
	require.Error(t, err)
}
