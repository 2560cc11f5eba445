package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureConfigDir(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("ENTITYDECK_HOME", "")
	t.Setenv("HOME", tmpHome)
	t.Setenv("USERPROFILE", tmpHome) // Windows uses USERPROFILE

	require.NoError(t, EnsureConfigDir())

	stat, err := os.Stat(filepath.Join(tmpHome, ".entitydeck"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpHome, ".entitydeck", "config.yaml"), path)
}

func TestEnsureLogDir(t *testing.T) {
	t.Cleanup(ResetGlobalConfigForTest)
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Logging.File = filepath.Join(tmpDir, "logs", "subdir", "test.log")
	SetGlobalConfig(cfg)

	require.NoError(t, EnsureLogDir())
	stat, err := os.Stat(filepath.Join(tmpDir, "logs", "subdir"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())

	cfg.Logging.File = ""
	assert.NoError(t, EnsureLogDir(), "no file means nothing to create")
}

func TestEnsureLogDirError(t *testing.T) {
	t.Cleanup(ResetGlobalConfigForTest)

	// A regular file where the directory should go.
	blocker := filepath.Join(t.TempDir(), "test-file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	cfg := Default()
	cfg.Logging.File = filepath.Join(blocker, "subdir", "test.log")
	SetGlobalConfig(cfg)

	assert.Error(t, EnsureLogDir())
}
