package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, 30, cfg.Storage.TimeoutSeconds)
	assert.Equal(t, 3, cfg.Storage.MaxRetries)
	assert.False(t, cfg.Storage.UseSSL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "static", cfg.Sync.StaticRoot)
	assert.Equal(t, "media", cfg.Sync.MediaContainer)
	assert.Equal(t, 1, cfg.Sync.Workers)
	assert.Empty(t, cfg.Sync.Exclude)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SYNC_STATIC_ROOT", "/srv/collected")
	t.Setenv("SYNC_STATIC_PREFIX", "assets/")
	t.Setenv("SYNC_WORKERS", "8")
	t.Setenv("SYNC_EXCLUDE", "**/*.map,.cache/**")
	t.Setenv("STORAGE_USE_SSL", "true")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/srv/collected", cfg.Sync.StaticRoot)
	assert.Equal(t, "assets/", cfg.Sync.StaticPrefix)
	assert.Equal(t, 8, cfg.Sync.Workers)
	assert.Equal(t, []string{"**/*.map", ".cache/**"}, cfg.Sync.Exclude)
	assert.True(t, cfg.Storage.UseSSL)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SYNC_MEDIA_CONTAINER=uploads\nLOG_LEVEL=debug\n"), 0o600))
	// Registers cleanup for the variables the .env file sets.
	t.Setenv("SYNC_MEDIA_CONTAINER", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "uploads", cfg.Sync.MediaContainer)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestBindValues(t *testing.T) {
	v := viper.New()
	bindValues(v, Config{}, "")

	assert.Equal(t, "media", v.Get("sync.media_root"))
	assert.Equal(t, "3", v.Get("storage.max_retries"))
	assert.True(t, v.IsSet("server.api_key"))
}
