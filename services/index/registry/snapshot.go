// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pathindex/pathindex/services/index/txn"
)

// Snapshot is a deep, order-normalized copy of committed registry
// state. It is the unit the serializer works on: entries sorted by
// path, categories sorted by name, member sets sorted.
type Snapshot struct {
	// Root is the indexed directory.
	Root string

	// CreatedAt is when the index was first created.
	CreatedAt time.Time

	// Categories, sorted by name, with sorted member paths.
	Categories []Category

	// Entries, sorted by path.
	Entries []Entry
}

// Snapshot captures committed state.
//
// Description:
//
//	Returns a deep copy; staged operations are not included. The copy
//	is safe to hand to the serializer or to tests regardless of what
//	the registry does afterwards.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := &Snapshot{
		Root:      r.root,
		CreatedAt: r.createdAt,
	}

	names := make([]string, 0, len(r.committed.categories))
	for n := range r.committed.categories {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := *r.committed.categories[n].clone()
		c.Members = setToSorted(r.committed.members[n])
		snap.Categories = append(snap.Categories, c)
	}

	for _, p := range sortedEntryPaths(r.committed) {
		snap.Entries = append(snap.Entries, *r.committed.entries[p].clone())
	}
	return snap
}

// NewFromSnapshot reconstructs a registry from a snapshot.
//
// Description:
//
//	Validates the snapshot's referential invariants while loading:
//	entry paths must be unique, every entry category must exist, and
//	every entry must pass Validate. The category index is rebuilt from
//	the loaded entries, discarding whatever member sets the snapshot
//	carried (back-references are derived, never authoritative).
//
// Outputs:
//
//	*Registry - Registry with the snapshot as committed state.
//	error - ErrDuplicatePath or ErrUnknownCategory on invariant
//	        violations, or a validation error.
func NewFromSnapshot(snap *Snapshot, opts ...Option) (*Registry, error) {
	options := Options{Now: time.Now}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	options.Logger = options.Logger.With("component", "registry")

	committed := newState()
	for i := range snap.Categories {
		c := snap.Categories[i]
		if _, exists := committed.categories[c.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, c.Name)
		}
		committed.categories[c.Name] = &Category{Name: c.Name, Info: c.Info}
	}
	for i := range snap.Entries {
		e := snap.Entries[i]
		if _, exists := committed.entries[e.Path]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, e.Path)
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		for _, c := range e.Categories {
			if _, exists := committed.categories[c]; !exists {
				return nil, fmt.Errorf("%w: %s (entry %s)", ErrUnknownCategory, c, e.Path)
			}
		}
		committed.entries[e.Path] = e.clone()
	}
	committed.rebuildIndex()

	r := &Registry{
		root:      snap.Root,
		createdAt: snap.CreatedAt,
		committed: committed,
		staged:    committed.clone(),
		log:       txn.NewLog(),
		options:   options,
	}
	return r, nil
}

// Equal reports structural equality with another snapshot, independent
// of the iteration order the snapshots were produced in (both are
// order-normalized on construction).
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s.Root != other.Root || !s.CreatedAt.Equal(other.CreatedAt) {
		return false
	}
	if len(s.Categories) != len(other.Categories) || len(s.Entries) != len(other.Entries) {
		return false
	}
	for i := range s.Categories {
		a, b := s.Categories[i], other.Categories[i]
		if a.Name != b.Name || a.Info != b.Info || !equalStrings(a.Members, b.Members) {
			return false
		}
	}
	for i := range s.Entries {
		a, b := s.Entries[i], other.Entries[i]
		if a.ID != b.ID || a.Path != b.Path || a.Kind != b.Kind ||
			a.Info != b.Info || !a.RegisteredAt.Equal(b.RegisteredAt) ||
			!equalStrings(a.Categories, b.Categories) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
