// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o640))
}

// TestLoadConfig_MissingFileUsesDefaults verifies defaults when no
// config exists.
func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "default", cfg.DefaultCategory)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Ignore)
}

// TestLoadConfig_ParsesFullFile covers every field.
func TestLoadConfig_ParsesFullFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
store:
  backend: badger
  path: .state/index.db
default_category: media
ignore:
  - /data/keep
  - relative/keep
log:
  level: debug
  dir: /var/log/pathindex
  json: true
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "badger", cfg.Store.Backend)
	assert.Equal(t, ".state/index.db", cfg.Store.Path)
	assert.Equal(t, "media", cfg.DefaultCategory)
	assert.Equal(t, []string{"/data/keep", "relative/keep"}, cfg.Ignore)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/pathindex", cfg.Log.Dir)
	assert.True(t, cfg.Log.JSON)
}

// TestLoadConfig_PartialFileBackfillsDefaults verifies unset fields
// keep their defaults.
func TestLoadConfig_PartialFileBackfillsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "default_category: docs\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.DefaultCategory)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
}

// TestLoadConfig_Invalid covers validation and parse failures.
func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "store:\n  backend: sqlite\n")
		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})

	t.Run("unknown log level", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "log:\n  level: trace\n")
		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "store: [backend\n")
		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})
}
