// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package registry

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPopulatedRegistry commits a small mixed tree for snapshot tests.
func buildPopulatedRegistry(t *testing.T) *Registry {
	t.Helper()
	r := newTestRegistry(t)
	_, err := r.RegisterCategory("docs", "documentation")
	require.NoError(t, err)
	_, err = r.Register("/data/project/src", DefaultCategory, true, "sources")
	require.NoError(t, err)
	_, err = r.Register("/data/project/src/main.go", DefaultCategory, false, "")
	require.NoError(t, err)
	_, err = r.Register("/data/project/readme.md", "docs", false, "")
	require.NoError(t, err)
	require.NoError(t, r.Tag("/data/project/readme.md", DefaultCategory))
	commitAll(t, r)
	return r
}

// TestSnapshot_RoundTrip verifies a registry rebuilt from its own
// snapshot produces an equal snapshot.
func TestSnapshot_RoundTrip(t *testing.T) {
	r := buildPopulatedRegistry(t)
	snap := r.Snapshot()

	loaded, err := NewFromSnapshot(snap)
	require.NoError(t, err)

	assert.True(t, snap.Equal(loaded.Snapshot()))
	assert.Equal(t, r.Root(), loaded.Root())
	assert.True(t, r.CreatedAt().Equal(loaded.CreatedAt()))
}

// TestSnapshot_ExcludesStagedOperations verifies a snapshot reflects
// committed state only.
func TestSnapshot_ExcludesStagedOperations(t *testing.T) {
	r := buildPopulatedRegistry(t)
	before := r.Snapshot()

	_, err := r.Register("/data/project/staged.txt", DefaultCategory, false, "")
	require.NoError(t, err)

	assert.True(t, before.Equal(r.Snapshot()), "staged entry must not appear")
}

// TestSnapshot_IsDeepCopy verifies mutating a snapshot cannot reach
// registry state.
func TestSnapshot_IsDeepCopy(t *testing.T) {
	r := buildPopulatedRegistry(t)
	snap := r.Snapshot()
	snap.Entries[0].Info = "mutated"
	snap.Categories[0].Members = nil

	fresh := r.Snapshot()
	assert.NotEqual(t, "mutated", fresh.Entries[0].Info)
	assert.NotEmpty(t, fresh.Categories[0].Members)
}

// TestNewFromSnapshot_RebuildsMemberIndex verifies member sets in the
// snapshot are derived state, overridden by the entries.
func TestNewFromSnapshot_RebuildsMemberIndex(t *testing.T) {
	snap := &Snapshot{
		Root:      "/data/project",
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Categories: []Category{
			// Members deliberately wrong: they must be recomputed.
			{Name: DefaultCategory, Members: []string{"/data/bogus"}},
		},
		Entries: []Entry{
			{
				ID:           uuid.New(),
				Path:         "/data/project/a.txt",
				Kind:         KindFile,
				Categories:   []string{DefaultCategory},
				RegisteredAt: time.Date(2025, 6, 1, 0, 0, 1, 0, time.UTC),
			},
		},
	}

	r, err := NewFromSnapshot(snap)
	require.NoError(t, err)
	members, err := r.Members(DefaultCategory)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/project/a.txt"}, members)
}

// TestNewFromSnapshot_Invalid covers the referential checks done on
// load.
func TestNewFromSnapshot_Invalid(t *testing.T) {
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	entry := func(path string, cats ...string) Entry {
		return Entry{
			ID:           uuid.New(),
			Path:         path,
			Kind:         KindFile,
			Categories:   cats,
			RegisteredAt: created,
		}
	}

	t.Run("duplicate path", func(t *testing.T) {
		snap := &Snapshot{
			Root:       "/data/project",
			CreatedAt:  created,
			Categories: []Category{{Name: DefaultCategory}},
			Entries: []Entry{
				entry("/data/project/a.txt", DefaultCategory),
				entry("/data/project/a.txt", DefaultCategory),
			},
		}
		_, err := NewFromSnapshot(snap)
		assert.ErrorIs(t, err, ErrDuplicatePath)
	})

	t.Run("duplicate category", func(t *testing.T) {
		snap := &Snapshot{
			Root:      "/data/project",
			CreatedAt: created,
			Categories: []Category{
				{Name: "docs"},
				{Name: "docs"},
			},
		}
		_, err := NewFromSnapshot(snap)
		assert.ErrorIs(t, err, ErrDuplicateCategory)
	})

	t.Run("entry references missing category", func(t *testing.T) {
		snap := &Snapshot{
			Root:       "/data/project",
			CreatedAt:  created,
			Categories: []Category{{Name: DefaultCategory}},
			Entries:    []Entry{entry("/data/project/a.txt", "missing")},
		}
		_, err := NewFromSnapshot(snap)
		assert.ErrorIs(t, err, ErrUnknownCategory)
	})

	t.Run("entry fails validation", func(t *testing.T) {
		bad := entry("/data/project/a.txt", DefaultCategory)
		bad.Kind = "socket"
		snap := &Snapshot{
			Root:       "/data/project",
			CreatedAt:  created,
			Categories: []Category{{Name: DefaultCategory}},
			Entries:    []Entry{bad},
		}
		_, err := NewFromSnapshot(snap)
		assert.Error(t, err)
	})
}
