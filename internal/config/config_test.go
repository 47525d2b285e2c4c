package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, raw string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sitewright.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "source: ./content\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./content", cfg.Source)
	assert.Equal(t, "./dist", cfg.Dest)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.LiveReload)
	assert.NotEmpty(t, cfg.Rules)
	assert.NotEmpty(t, cfg.Bindings)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOrDefault_MissingFileFallsBack(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "./src", cfg.Source)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SW_DEST", "/tmp/out")
	path := writeConfig(t, "dest: ${SW_DEST}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.Dest)
}

func TestLoad_ScheduleDuration(t *testing.T) {
	path := writeConfig(t, "schedule:\n  rebuild_interval: 30s\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.Schedule.RebuildInterval))
}

func TestValidate_RejectsBadRule(t *testing.T) {
	path := writeConfig(t, "rules:\n  - glob: \"**/*.md\"\n    transform: pdf\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transform kind")
}

func TestValidate_RejectsEmptyBindingTask(t *testing.T) {
	path := writeConfig(t, "watch:\n  - glob: \"**/*.md\"\n    task: \"\"\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitewright.yaml")

	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./src", cfg.Source)
}

func TestEventsSubjectDefault(t *testing.T) {
	path := writeConfig(t, "events:\n  url: nats://127.0.0.1:4222\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sitewright.builds", cfg.Events.Subject)
}
