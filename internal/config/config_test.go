package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "nope.yaml"), map[string]string{})
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Database.Path, cfg.Database.Path)
	assert.Equal(t, "UTC", cfg.Timesheets.DefaultTimezone)
	assert.False(t, cfg.Log.Enabled)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
database:
  path: /tmp/from-file.db
owner:
  email: file@example.com
timesheets:
  default_timezone: Europe/Berlin
  export_dir: /tmp/sheets
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := LoadWithEnv(path, map[string]string{
		"TALLYSHEET_OWNER": "env@example.com",
		"TALLYSHEET_LOG":   "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-file.db", cfg.Database.Path)
	assert.Equal(t, "env@example.com", cfg.Owner.Email)
	assert.Equal(t, "Europe/Berlin", cfg.Timesheets.DefaultTimezone)
	assert.Equal(t, "/tmp/sheets", cfg.Timesheets.ExportDir)
	assert.True(t, cfg.Log.Enabled)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("database: [unclosed"), 0o600))
	_, err := LoadWithEnv(bad, map[string]string{})
	assert.Error(t, err)

	_, err = LoadWithEnv(filepath.Join(dir, "none.yaml"), map[string]string{"TALLYSHEET_TIMEZONE": "Mars/Olympus"})
	assert.ErrorContains(t, err, "default_timezone")

	_, err = LoadWithEnv(filepath.Join(dir, "none.yaml"), map[string]string{"TALLYSHEET_TIMEZONE": "Local"})
	assert.ErrorContains(t, err, "default_timezone")

	_, err = LoadWithEnv(filepath.Join(dir, "none.yaml"), map[string]string{"TALLYSHEET_LOG": "sometimes"})
	assert.ErrorContains(t, err, "parse env")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Owner.Email = "me@example.com"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadWithEnv(path, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
