package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func withConfigDirs(t *testing.T, home, wd string) {
	t.Helper()
	origHome := osUserHomeDir
	origWd := osGetwd
	osUserHomeDir = func() (string, error) { return home, nil }
	osGetwd = func() (string, error) { return wd, nil }
	t.Cleanup(func() {
		osUserHomeDir = origHome
		osGetwd = origWd
	})
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	withConfigDirs(t, t.TempDir(), t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultAIModel, cfg.AI.Model)
	assert.Equal(t, DefaultAIEndpoint, cfg.AI.Endpoint)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.AI.APIKeyEnv)
	assert.Equal(t, int64(DefaultLogTailLines), cfg.Logs.TailLines)
	assert.True(t, cfg.Logs.FollowEnabled())
	assert.Equal(t, "info", cfg.GlobalSettings.LogLevel)
}

func TestLoadConfig_UserOverlay(t *testing.T) {
	home := t.TempDir()
	withConfigDirs(t, home, t.TempDir())

	writeConfigFile(t, home, ".config/podscope/config.yaml", `
ai:
  model: test-model
logs:
  tailLines: 50
  follow: false
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-model", cfg.AI.Model)
	assert.Equal(t, DefaultAIEndpoint, cfg.AI.Endpoint) // untouched
	assert.Equal(t, int64(50), cfg.Logs.TailLines)
	assert.False(t, cfg.Logs.FollowEnabled())
}

func TestLoadConfig_ProjectOverridesUser(t *testing.T) {
	home := t.TempDir()
	wd := t.TempDir()
	withConfigDirs(t, home, wd)

	writeConfigFile(t, home, ".config/podscope/config.yaml", `
ai:
  model: user-model
  maxTokens: 2048
`)
	writeConfigFile(t, wd, ".podscope/config.yaml", `
ai:
  model: project-model
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "project-model", cfg.AI.Model)
	assert.Equal(t, 2048, cfg.AI.MaxTokens) // user layer survives
}

func TestLoadConfig_InvalidYAMLFails(t *testing.T) {
	home := t.TempDir()
	withConfigDirs(t, home, t.TempDir())

	writeConfigFile(t, home, ".config/podscope/config.yaml", "ai: [not a map")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestFollowEnabled_Default(t *testing.T) {
	var l LogsConfig
	assert.True(t, l.FollowEnabled())

	f := false
	l.Follow = &f
	assert.False(t, l.FollowEnabled())
}
