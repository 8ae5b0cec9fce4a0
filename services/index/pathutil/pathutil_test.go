// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package pathutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolve_NormalizesPaths covers cleaning and absolutization.
func TestResolve_NormalizesPaths(t *testing.T) {
	got, err := Resolve("/data/project/../project/./src")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/data/project/src"), got)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	got, err = Resolve("relative/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "relative", "file.txt"), got)

	_, err = Resolve("")
	assert.Error(t, err)
}

// TestIsSubpath covers strict containment, including the prefix-sibling
// trap (/a/bc is not under /a/b).
func TestIsSubpath(t *testing.T) {
	cases := []struct {
		name string
		path string
		root string
		want bool
	}{
		{"direct child", "/a/b/c.txt", "/a/b", true},
		{"deep descendant", "/a/b/c/d/e", "/a/b", true},
		{"self", "/a/b", "/a/b", false},
		{"parent", "/a", "/a/b", false},
		{"sibling", "/a/c", "/a/b", false},
		{"prefix sibling", "/a/bc", "/a/b", false},
		{"prefix sibling file", "/a/bc.txt", "/a/b", false},
		{"unrelated", "/x/y", "/a/b", false},
		{"root contains all", "/a/b", "/", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSubpath(tc.path, tc.root))
		})
	}
}

// TestDetectKind stats real files.
func TestDetectKind(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	isDir, err := DetectKind(dir)
	require.NoError(t, err)
	assert.True(t, isDir)

	isDir, err = DetectKind(file)
	require.NoError(t, err)
	assert.False(t, isDir)

	_, err = DetectKind(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

// TestWalk_SkipsRootAndVisitsAll verifies enumeration order and the
// root exclusion.
func TestWalk_SkipsRootAndVisitsAll(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), nil, 0o600))

	var visited []string
	err := Walk(root, func(path string, isDir bool) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		visited = append(visited, rel)
		return nil
	})
	require.NoError(t, err)

	sort.Strings(visited)
	assert.Equal(t, []string{
		"a.txt",
		"sub",
		filepath.Join("sub", "b.txt"),
		filepath.Join("sub", "deep"),
	}, visited)
}

// TestWalk_StopsOnError verifies fn errors abort the walk.
func TestWalk_StopsOnError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), nil, 0o600))

	wantErr := assert.AnError
	err := Walk(root, func(path string, isDir bool) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}
