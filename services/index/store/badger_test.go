// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerStore(t *testing.T, cfg BadgerConfig) *BadgerStore {
	t.Helper()
	s, err := NewBadgerStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// TestBadgerStore_SaveLoad verifies the basic persistence cycle against
// an in-memory database.
func TestBadgerStore_SaveLoad(t *testing.T) {
	s := newTestBadgerStore(t, InMemoryBadgerConfig())
	ctx := context.Background()

	doc := testDocument()
	require.NoError(t, s.Save(ctx, doc))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

// TestBadgerStore_LoadEmpty verifies the empty-store sentinel.
func TestBadgerStore_LoadEmpty(t *testing.T) {
	s := newTestBadgerStore(t, InMemoryBadgerConfig())

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

// TestBadgerStore_History verifies archived snapshots come back newest
// first with increasing sequence numbers.
func TestBadgerStore_History(t *testing.T) {
	s := newTestBadgerStore(t, InMemoryBadgerConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		doc := testDocument()
		doc.Root = fmt.Sprintf("/data/project%d", i)
		require.NoError(t, s.Save(ctx, doc))
	}

	records, err := s.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, uint64(3), records[0].Seq)
	assert.Equal(t, "/data/project2", records[0].Document.Root)
	assert.Equal(t, uint64(1), records[2].Seq)
	assert.Equal(t, "/data/project0", records[2].Document.Root)

	limited, err := s.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, uint64(3), limited[0].Seq)
}

// TestBadgerStore_HistoryPruned verifies MaxHistory bounds the retained
// records.
func TestBadgerStore_HistoryPruned(t *testing.T) {
	cfg := InMemoryBadgerConfig()
	cfg.MaxHistory = 2
	s := newTestBadgerStore(t, cfg)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(ctx, testDocument()))
	}

	records, err := s.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(5), records[0].Seq)
	assert.Equal(t, uint64(4), records[1].Seq)
}

// TestBadgerStore_HistoryDisabled verifies MaxHistory zero records
// nothing while the current snapshot still loads.
func TestBadgerStore_HistoryDisabled(t *testing.T) {
	cfg := InMemoryBadgerConfig()
	cfg.MaxHistory = 0
	s := newTestBadgerStore(t, cfg)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testDocument()))

	records, err := s.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = s.Load(ctx)
	assert.NoError(t, err)
}

// TestBadgerStore_PersistsAcrossReopen verifies a disk-backed store
// survives close and reopen.
func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := BadgerConfig{Path: dir, MaxHistory: 10}
	ctx := context.Background()

	s, err := NewBadgerStore(cfg)
	require.NoError(t, err)
	doc := testDocument()
	require.NoError(t, s.Save(ctx, doc))
	require.NoError(t, s.Close())

	s2, err := NewBadgerStore(cfg)
	require.NoError(t, err)
	defer s2.Close()

	loaded, err := s2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	// The sequence counter survives too: the next save continues it.
	require.NoError(t, s2.Save(ctx, doc))
	records, err := s2.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint64(2), records[0].Seq)
}

// TestNewBadgerStore_RequiresPath rejects a persistent store without a
// directory.
func TestNewBadgerStore_RequiresPath(t *testing.T) {
	_, err := NewBadgerStore(BadgerConfig{})
	assert.Error(t, err)
}
