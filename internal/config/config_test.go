package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, FormatJSON, cfg.Storage.Format)
	assert.Equal(t, filepath.Join(root, "tasks.json"), cfg.Storage.TasksFile)
	assert.Equal(t, filepath.Join(root, "templates.json"), cfg.Storage.TemplatesFile)
	assert.Equal(t, filepath.Join(root, "exports"), cfg.Export.Dir)
	assert.Equal(t, 5, cfg.Digest.Limit)
	assert.True(t, cfg.Display.Color)
}

func TestLoad_File(t *testing.T) {
	root := t.TempDir()
	body := "storage:\n  format: yml\nexport:\n  dir: /tmp/out\ndigest:\n  limit: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte(body), 0o600))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Storage.Format)
	assert.Equal(t, filepath.Join(root, "tasks.yaml"), cfg.Storage.TasksFile)
	assert.Equal(t, "/tmp/out", cfg.Export.Dir)
	assert.Equal(t, 3, cfg.Digest.Limit)
}

func TestLoad_Env(t *testing.T) {
	root := t.TempDir()
	t.Setenv("TASKLIST_STORAGE_FORMAT", "yaml")
	t.Setenv("TASKLIST_LOG_LEVEL", "debug")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Storage.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_BadFormat(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte("storage:\n  format: xml\n"), 0o600))

	_, err := Load(root)
	assert.Error(t, err)
}

func TestDefaultRoot_Env(t *testing.T) {
	t.Setenv("TASKLIST_ROOT", "/srv/tasks")
	assert.Equal(t, "/srv/tasks", DefaultRoot())
}
