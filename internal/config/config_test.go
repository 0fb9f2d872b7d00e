package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/treecp/internal/config"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Verify)
	assert.Nil(t, cfg.Defaults.Limit)
	assert.Nil(t, cfg.Theme.Success)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	writeConfig(t, filepath.Join(dir, "treecp"), "config.toml", `
[defaults]
limit = 64
overwrite = true
preserve_timestamps = true
continue_on_error = false
dereference = true
verify = true
hash = "xxhash"
bwlimit = "100M"

[theme]
success = "cyan"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	d := cfg.Defaults
	require.NotNil(t, d.Limit)
	assert.Equal(t, 64, *d.Limit)
	require.NotNil(t, d.Overwrite)
	assert.True(t, *d.Overwrite)
	require.NotNil(t, d.PreserveTimestamps)
	assert.True(t, *d.PreserveTimestamps)
	require.NotNil(t, d.ContinueOnError)
	assert.False(t, *d.ContinueOnError)
	require.NotNil(t, d.Dereference)
	assert.True(t, *d.Dereference)
	require.NotNil(t, d.Verify)
	assert.True(t, *d.Verify)
	require.NotNil(t, d.Hash)
	assert.Equal(t, "xxhash", *d.Hash)
	require.NotNil(t, d.BWLimit)
	assert.Equal(t, "100M", *d.BWLimit)

	require.NotNil(t, cfg.Theme.Success)
	assert.Equal(t, "cyan", *cfg.Theme.Success)

	// Unset fields should remain nil.
	assert.Nil(t, cfg.Theme.Failure)
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	writeConfig(t, filepath.Join(dir, "treecp"), "config.toml", `
[theme]
failure = "magenta"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	// Defaults section entirely absent.
	assert.Nil(t, cfg.Defaults.Verify)
	assert.Nil(t, cfg.Defaults.Limit)

	require.NotNil(t, cfg.Theme.Failure)
	assert.Equal(t, "magenta", *cfg.Theme.Failure)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	writeConfig(t, filepath.Join(dir, "treecp"), "config.toml", "invalid [[[")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadFile_YAML(t *testing.T) {
	for _, name := range []string{"treecp.yaml", "treecp.yml"} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), name, `
defaults:
  limit: 8
  overwrite: true
  hash: blake3
theme:
  success: green
`)
			cfg, err := config.LoadFile(path)
			require.NoError(t, err)
			require.NotNil(t, cfg.Defaults.Limit)
			assert.Equal(t, 8, *cfg.Defaults.Limit)
			require.NotNil(t, cfg.Defaults.Overwrite)
			assert.True(t, *cfg.Defaults.Overwrite)
			require.NotNil(t, cfg.Defaults.Hash)
			assert.Equal(t, "blake3", *cfg.Defaults.Hash)
			assert.Nil(t, cfg.Defaults.Verify)
			require.NotNil(t, cfg.Theme.Success)
			assert.Equal(t, "green", *cfg.Theme.Success)
		})
	}
}

func TestLoadFile_YAMLUnknownKey(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "c.yaml", "defaults:\n  workers: 4\n")
	_, err := config.LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_EmptyYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "c.yml", "")
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Limit)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "c.json", "{}")
	_, err := config.LoadFile(path)
	assert.ErrorContains(t, err, "unsupported format")
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/treecp/config.toml", config.Path())
}
