// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseLevel maps strings to levels, defaulting to Info.
func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseLevel(tc.in), "input %q", tc.in)
	}
}

// TestExporter_ReceivesEntries verifies entries at or above the level
// reach the exporter with their attributes.
func TestExporter_ReceivesEntries(t *testing.T) {
	exp := NewBufferedExporter()
	l := New(Config{
		Level:    LevelInfo,
		Service:  "test",
		Quiet:    true,
		Exporter: exp,
	})
	defer l.Close()

	l.Debug("below threshold")
	l.Info("something happened", "path", "/data/a.txt", "count", 3)
	l.Error("something failed")

	entries := exp.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "something happened", entries[0].Message)
	assert.Equal(t, LevelInfo, entries[0].Level)
	assert.Equal(t, "test", entries[0].Service)
	assert.Equal(t, "/data/a.txt", entries[0].Attrs["path"])
	assert.Equal(t, LevelError, entries[1].Level)
}

// TestFileLogging_WritesJSON verifies the file destination produces
// parseable JSON lines named after the service.
func TestFileLogging_WritesJSON(t *testing.T) {
	dir := t.TempDir()
	l := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "test",
		Quiet:   true,
	})
	l.Info("persisted line", "key", "value")
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "persisted line", record["msg"])
	assert.Equal(t, "value", record["key"])
	assert.Equal(t, "test", record["service"])
}

// TestWith_ChildSharesExporter verifies derived loggers keep exporting.
func TestWith_ChildSharesExporter(t *testing.T) {
	exp := NewBufferedExporter()
	l := New(Config{Level: LevelInfo, Quiet: true, Exporter: exp})
	defer l.Close()

	child := l.With("component", "store")
	child.Info("from child")

	entries := exp.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "from child", entries[0].Message)
}

// TestClose_Idempotent verifies Close can be called twice.
func TestClose_Idempotent(t *testing.T) {
	l := New(Config{Level: LevelInfo, LogDir: t.TempDir(), Quiet: true})
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}
