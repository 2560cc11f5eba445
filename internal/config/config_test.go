package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Setenv("ENTITYDECK_HOME", t.TempDir())
	cfg := Default()

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, 20, cfg.Paging.PageSize)
	assert.InDelta(t, 0.9, cfg.Paging.NearEndFraction, 1e-9)
	assert.Equal(t, 200*time.Millisecond, cfg.Debounce())
	assert.Equal(t, PolicyKeepFirst, cfg.Paging.DuplicatePolicy)
	assert.Equal(t, SourceMock, cfg.Source.Kind)
	assert.Equal(t, 300*time.Millisecond, cfg.PageLatency())
	assert.Equal(t, 1500*time.Millisecond, cfg.DetailLatency())
	assert.False(t, cfg.View.ShareDetailCache)
	assert.False(t, cfg.DetailCache.Enabled)
	assert.True(t, cfg.DetailCache.Compress)
	assert.Equal(t, time.Hour, cfg.CacheTTL())
	assert.NoError(t, cfg.Validate())
}

func TestNew_ReadsFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ENTITYDECK_HOME", home)
	t.Setenv("ENTITYDECK_DEBOUNCE_MS", "50")
	t.Setenv("ENTITYDECK_LOG_LEVEL", "debug")

	content := "version: 1.2.0\npaging:\n  page_size: 40\nview:\n  initial_panels: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0o600))

	cfg := New()
	assert.Equal(t, "1.2.0", cfg.Version)
	assert.Equal(t, 40, cfg.Paging.PageSize)
	assert.InDelta(t, 0.9, cfg.Paging.NearEndFraction, 1e-9, "unset keys keep defaults")
	assert.Equal(t, 3, cfg.View.InitialPanels)
	assert.Equal(t, 50, cfg.Paging.DebounceMS)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.Path())
}

func TestNew_IgnoresBrokenFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ENTITYDECK_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("paging: [oops"), 0o600))

	cfg := New()
	assert.Equal(t, 20, cfg.Paging.PageSize)
}

func TestLoadAndSave(t *testing.T) {
	t.Setenv("ENTITYDECK_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Paging.DuplicatePolicy = PolicyAllow
	cfg.Source.Kind = SourceSQLite
	cfg.Source.SQLitePath = "/tmp/entities.db"
	cfg.SetPath(path)
	require.NoError(t, cfg.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, PolicyAllow, loaded.Paging.DuplicatePolicy)
	assert.Equal(t, SourceSQLite, loaded.Source.Kind)
	assert.Equal(t, "/tmp/entities.db", loaded.Source.SQLitePath)
	assert.Equal(t, path, loaded.Path())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: [1"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)

	var unsaved Config
	require.Error(t, unsaved.Save())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "zero page size", mutate: func(c *Config) { c.Paging.PageSize = 0 }, wantErr: ErrInvalidPageSize},
		{name: "fraction of one", mutate: func(c *Config) { c.Paging.NearEndFraction = 1 }, wantErr: ErrInvalidNearEndFraction},
		{name: "negative debounce", mutate: func(c *Config) { c.Paging.DebounceMS = -1 }, wantErr: ErrInvalidDebounce},
		{name: "unknown policy", mutate: func(c *Config) { c.Paging.DuplicatePolicy = "merge" }, wantErr: ErrInvalidPolicy},
		{name: "no panels", mutate: func(c *Config) { c.View.InitialPanels = 0 }, wantErr: ErrInvalidPanels},
		{name: "unknown source", mutate: func(c *Config) { c.Source.Kind = "http" }, wantErr: ErrInvalidSource},
		{name: "sqlite without path", mutate: func(c *Config) { c.Source.Kind = SourceSQLite }, wantErr: ErrMissingSQLitePath},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Source.Kind = SourcePostgres }, wantErr: ErrMissingPostgresDSN},
		{name: "future version", mutate: func(c *Config) { c.Version = "2.1.0" }, wantErr: ErrUnsupportedVersion},
		{name: "garbage version", mutate: func(c *Config) { c.Version = "latest" }, wantErr: ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENTITYDECK_HOME", t.TempDir())
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_CacheTTL(t *testing.T) {
	t.Setenv("ENTITYDECK_HOME", t.TempDir())
	cfg := Default()
	cfg.DetailCache.Enabled = true
	cfg.DetailCache.TTL = "5s"
	require.Error(t, cfg.Validate())
	assert.Equal(t, time.Hour, cfg.CacheTTL())

	cfg.DetailCache.TTL = "30m"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL())
}

func TestGlobalConfig(t *testing.T) {
	t.Setenv("ENTITYDECK_HOME", t.TempDir())
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	first := GetGlobalConfig()
	require.NotNil(t, first)
	assert.Same(t, first, GetGlobalConfig())

	replacement := Default()
	replacement.Logging.Level = "warn"
	SetGlobalConfig(replacement)
	assert.Equal(t, "warn", GetLoggingConfig().Level)
}

func TestGetConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ENTITYDECK_HOME", home)

	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, home, dir)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml"), path)

	require.NoError(t, EnsureConfigDir())
}

func TestToLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "json", File: "/tmp/e.log"}
	out := lc.ToLoggingConfig()
	assert.Equal(t, "file", out.Output)
	assert.Equal(t, "/tmp/e.log", out.File)

	lc.File = ""
	assert.Equal(t, "stderr", lc.ToLoggingConfig().Output)
}
