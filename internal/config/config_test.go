package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8787, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.Session.DefaultProvider)
	assert.Equal(t, "ask", cfg.Session.DefaultPermissionMode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opencowork.yaml")
	contents := "server:\n  host: 127.0.0.1\n  port: 9090\nsession:\n  default_provider: openai\n  max_tool_iterations: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Session.DefaultProvider)
	assert.EqualValues(t, 5, cfg.Session.MaxToolIterations)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8787, cfg.Server.Port)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("OPEN_COWORK_HOST", "10.0.0.5")
	t.Setenv("OPEN_COWORK_PORT", "1234")

	path := filepath.Join(t.TempDir(), "opencowork.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  host: 127.0.0.1\n  port: 9090\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Server.Host)
	assert.Equal(t, 1234, cfg.Server.Port)
}
