// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathindex/pathindex/services/index/registry"
	"github.com/pathindex/pathindex/services/index/store"
)

func newFileBackedIndex(t *testing.T, dir string) *Index {
	t.Helper()
	st, err := store.NewFileStore(filepath.Join(dir, store.DefaultFileName), nil)
	require.NoError(t, err)
	idx, err := Open(context.Background(), dir, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

// TestOpen_FreshIndex verifies an empty store yields a usable empty
// registry.
func TestOpen_FreshIndex(t *testing.T) {
	dir := t.TempDir()
	idx := newFileBackedIndex(t, dir)

	assert.Equal(t, dir, idx.Registry().Root())
	assert.Empty(t, idx.Registry().Entries())
	_, err := idx.Registry().Members(registry.DefaultCategory)
	assert.NoError(t, err)
}

// TestCommit_PersistsAndReloads verifies committed state survives a
// close and reopen through the store.
func TestCommit_PersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx := newFileBackedIndex(t, dir)
	_, err := idx.Registry().Register(filepath.Join(dir, "a.txt"), registry.DefaultCategory, false, "note")
	require.NoError(t, err)
	_, err = idx.Registry().RegisterCategory("docs", "")
	require.NoError(t, err)
	require.NoError(t, idx.Commit(ctx))
	before := idx.Registry().Snapshot()
	require.NoError(t, idx.Close())

	reopened := newFileBackedIndex(t, dir)
	assert.True(t, before.Equal(reopened.Registry().Snapshot()))

	got, err := reopened.Registry().Lookup(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "note", got.Info)
}

// TestCommit_NothingStagedStillSaves verifies init-style commits write
// the snapshot file.
func TestCommit_NothingStagedStillSaves(t *testing.T) {
	dir := t.TempDir()
	idx := newFileBackedIndex(t, dir)
	require.NoError(t, idx.Commit(context.Background()))

	_, err := os.Stat(filepath.Join(dir, store.DefaultFileName))
	assert.NoError(t, err)
}

// TestCommit_ReplayFailureDoesNotPersist verifies the store is not
// touched when the registry rejects the transaction.
func TestCommit_ReplayFailureDoesNotPersist(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx := newFileBackedIndex(t, dir)
	_, err := idx.Registry().Register(filepath.Join(dir, "a.txt"), registry.DefaultCategory, false, "")
	require.NoError(t, err)
	require.NoError(t, idx.Commit(ctx))

	// Stage an operation, then cancel the context so Commit fails
	// before persisting.
	_, err = idx.Registry().Register(filepath.Join(dir, "b.txt"), registry.DefaultCategory, false, "")
	require.NoError(t, err)
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	require.Error(t, idx.Commit(canceled))
	require.NoError(t, idx.Close())

	reopened := newFileBackedIndex(t, dir)
	_, err = reopened.Registry().Lookup(filepath.Join(dir, "b.txt"))
	assert.ErrorIs(t, err, registry.ErrUnknownPath)
}

// TestRollback_DiscardsWithoutPersisting verifies rollback leaves the
// stored snapshot alone.
func TestRollback_DiscardsWithoutPersisting(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx := newFileBackedIndex(t, dir)
	require.NoError(t, idx.Commit(ctx))

	_, err := idx.Registry().Register(filepath.Join(dir, "a.txt"), registry.DefaultCategory, false, "")
	require.NoError(t, err)
	idx.Rollback()
	assert.Equal(t, 0, idx.Registry().Pending())
	require.NoError(t, idx.Close())

	reopened := newFileBackedIndex(t, dir)
	assert.Empty(t, reopened.Registry().Entries())
}

// TestOpen_CorruptSnapshot verifies a damaged index file fails the open
// instead of silently starting fresh.
func TestOpen_CorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, store.DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0o640))

	st, err := store.NewFileStore(path, nil)
	require.NoError(t, err)
	defer st.Close()

	_, err = Open(context.Background(), dir, st, nil)
	assert.Error(t, err)
}

// TestOpen_BadgerBacked runs the persistence cycle against the badger
// backend.
func TestOpen_BadgerBacked(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	open := func() *Index {
		st, err := store.NewBadgerStore(store.BadgerConfig{
			Path:       filepath.Join(dir, ".pathindex.db"),
			MaxHistory: 5,
		})
		require.NoError(t, err)
		idx, err := Open(ctx, dir, st, nil)
		require.NoError(t, err)
		return idx
	}

	idx := open()
	_, err := idx.Registry().Register(filepath.Join(dir, "a.txt"), registry.DefaultCategory, false, "")
	require.NoError(t, err)
	require.NoError(t, idx.Commit(ctx))
	require.NoError(t, idx.Close())

	reopened := open()
	defer reopened.Close()
	_, err = reopened.Registry().Lookup(filepath.Join(dir, "a.txt"))
	assert.NoError(t, err)
}
