// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// EntryKind distinguishes files from directories.
type EntryKind string

const (
	// KindFile marks an entry that tracks a regular file.
	KindFile EntryKind = "file"

	// KindDirectory marks an entry that tracks a directory. Directory
	// entries participate in recursive deletes: descendant paths are
	// resolved against them.
	KindDirectory EntryKind = "directory"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	return k == KindFile || k == KindDirectory
}

// Entry represents one registered filesystem path.
//
// Description:
//
//	An Entry is the unit of registration. The path is the unique key
//	within a registry; the ID is stable across serialization and is
//	assigned once at registration time.
//
// Ownership:
//
//	Entries returned from the registry are deep copies. Mutating them
//	does not affect registry state.
type Entry struct {
	// ID uniquely identifies the entry, assigned at registration.
	ID uuid.UUID

	// Path is the absolute, cleaned filesystem path. Unique key.
	Path string

	// Kind is file or directory.
	Kind EntryKind

	// Categories is the sorted set of category names the entry belongs
	// to. Every name must exist in the registry.
	Categories []string

	// Info is an optional free-form note.
	Info string

	// RegisteredAt is when the entry was first staged for registration.
	RegisteredAt time.Time
}

// Validate checks entry invariants that do not require registry state.
func (e *Entry) Validate() error {
	if e.Path == "" {
		return fmt.Errorf("entry path is empty")
	}
	if !filepath.IsAbs(e.Path) {
		return fmt.Errorf("entry path is not absolute: %s", e.Path)
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("entry kind is invalid: %q", e.Kind)
	}
	if len(e.Categories) == 0 {
		return fmt.Errorf("entry has no categories: %s", e.Path)
	}
	return nil
}

// HasCategory reports whether the entry belongs to the named category.
func (e *Entry) HasCategory(name string) bool {
	for _, c := range e.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// addCategory inserts name into the sorted category set. No-op if present.
func (e *Entry) addCategory(name string) {
	if e.HasCategory(name) {
		return
	}
	e.Categories = append(e.Categories, name)
	sort.Strings(e.Categories)
}

// clone returns a deep copy of the entry.
func (e *Entry) clone() *Entry {
	cp := *e
	cp.Categories = append([]string(nil), e.Categories...)
	return &cp
}

// Category is a named, user-defined grouping of entries.
//
// The registry owns the member set; Category values handed to callers
// carry a snapshot copy of the member paths.
type Category struct {
	// Name is the unique key.
	Name string

	// Info is an optional description.
	Info string

	// Members holds the sorted paths of member entries. Maintained by
	// the registry's category index; never authoritative for existence.
	Members []string
}

// clone returns a deep copy of the category.
func (c *Category) clone() *Category {
	cp := *c
	cp.Members = append([]string(nil), c.Members...)
	return &cp
}
