package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/locator/config"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yaml"), []byte(`
app:
  name: demo
services:
  mailer: "*demo.Mailer"
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.live.yaml"), []byte(`
reload:
  enabled: true
  pollInterval: 50ms
`), 0o600))

	cfg, mgr, err := loadConfig(dir, "")
	require.NoError(t, err)
	mgr.Close()
	assert.Equal(t, "demo", cfg.App.Name)
	assert.Equal(t, "*demo.Mailer", cfg.Services["mailer"])
	assert.False(t, cfg.Reload.Enabled)

	cfg, mgr, err = loadConfig(dir, "live")
	require.NoError(t, err)
	defer mgr.Close()
	assert.True(t, cfg.Reload.Enabled)
	assert.Equal(t, 50*time.Millisecond, cfg.Reload.PollInterval)
}

func TestLoadConfig_MissingDir(t *testing.T) {
	_, _, err := loadConfig(filepath.Join(t.TempDir(), "absent"), "")
	assert.Error(t, err)
}

func TestLoadConfig_ReturnsSnapshot(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yaml"),
			[]byte("app:\n  name: "+name+"\n"), 0o600))
	}
	write("before")

	cfg, mgr, err := loadConfig(dir, "")
	require.NoError(t, err)
	defer mgr.Close()

	write("after")
	require.NoError(t, mgr.Reload(context.Background()))
	assert.Equal(t, "before", cfg.App.Name)

	var current config.Root
	require.NoError(t, mgr.Snapshot(&current))
	assert.Equal(t, "after", current.App.Name)
}
