package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Server.Listen)
	assert.Equal(t, "data/imgsearch.db", cfg.Server.Database)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	data := `{"google":{"key":"gkey","cx":"engine"},"bing":{"key":"bkey"},"debug":{"pretty_json":true}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0o644))
	t.Setenv("IMGSEARCH_BING_KEY", "from-env")

	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "gkey", cfg.Google.Key)
	assert.Equal(t, "engine", cfg.Google.Cx)
	assert.Equal(t, "from-env", cfg.Bing.Key)
	assert.True(t, cfg.Debug.PrettyJson)
}

func TestLoadConfigSyntaxError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"bing":`), 0o644))
	_, err := loadConfig(dir)
	assert.Error(t, err)
}
