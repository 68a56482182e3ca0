package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PRICESYNC_CONFIG", "")

	c, err := Load()
	require.NoError(t, err)
	require.Contains(t, c.Database.Path, filepath.Join("pricesync", "pricesync.db"))
	require.Empty(t, c.Import.DefaultSupplier)
	require.InDelta(t, 0.60, c.Import.FuzzyThreshold, 0.0001)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/tmp/custom.db"

[import]
default_supplier = "TechSupply"
fuzzy_threshold = 0.75
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	t.Setenv("PRICESYNC_CONFIG", cfgPath)

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.db", c.Database.Path)
	require.Equal(t, "TechSupply", c.Import.DefaultSupplier)
	require.InDelta(t, 0.75, c.Import.FuzzyThreshold, 0.0001)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PRICESYNC_CONFIG", "")
	t.Setenv("PRICESYNC_DATABASE_PATH", "/tmp/env.db")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/env.db", c.Database.Path)
}
