// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Package codec converts registry snapshots to and from the persisted
// JSON document format.
//
// Encoding and decoding are explicit per-entity functions rather than a
// declarative schema layer, so the on-disk field set is visible in one
// place. The contract is the round-trip invariant: decoding an encoded
// snapshot reproduces an equal snapshot, independent of map iteration
// order (snapshots are order-normalized on both sides).
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pathindex/pathindex/services/index/registry"
)

// ErrSerialization is wrapped by every encode/decode failure.
var ErrSerialization = errors.New("serialization failed")

// FormatVersion identifies the document layout. Bumped on incompatible
// field changes; Decode rejects versions it does not know.
const FormatVersion = 1

// Document is the persisted record format for one index.
type Document struct {
	// Version is the document format version.
	Version int `json:"version"`

	// Root is the indexed directory.
	Root string `json:"root"`

	// CreatedAt is when the index was first created, RFC 3339.
	CreatedAt time.Time `json:"created_at"`

	// Categories sorted by name.
	Categories []CategoryRecord `json:"categories"`

	// Entries sorted by path.
	Entries []EntryRecord `json:"entries"`
}

// CategoryRecord is the persisted form of a category. Member paths are
// not stored: the category index is derived state, rebuilt from the
// entries at load time.
type CategoryRecord struct {
	Name string `json:"name"`
	Info string `json:"info,omitempty"`
}

// EntryRecord is the persisted form of an entry.
type EntryRecord struct {
	ID           string    `json:"id"`
	Path         string    `json:"path"`
	Kind         string    `json:"kind"`
	Categories   []string  `json:"categories"`
	Info         string    `json:"info,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Encode converts a snapshot into a document.
//
// Description:
//
//	Pure transformation; never fails for snapshots produced by the
//	registry. Ordering is inherited from the snapshot, which is
//	order-normalized on construction.
func Encode(snap *registry.Snapshot) *Document {
	doc := &Document{
		Version:    FormatVersion,
		Root:       snap.Root,
		CreatedAt:  snap.CreatedAt,
		Categories: make([]CategoryRecord, 0, len(snap.Categories)),
		Entries:    make([]EntryRecord, 0, len(snap.Entries)),
	}
	for _, c := range snap.Categories {
		doc.Categories = append(doc.Categories, CategoryRecord{
			Name: c.Name,
			Info: c.Info,
		})
	}
	for _, e := range snap.Entries {
		doc.Entries = append(doc.Entries, EntryRecord{
			ID:           e.ID.String(),
			Path:         e.Path,
			Kind:         string(e.Kind),
			Categories:   append([]string(nil), e.Categories...),
			Info:         e.Info,
			RegisteredAt: e.RegisteredAt,
		})
	}
	return doc
}

// Decode converts a document back into a snapshot.
//
// Description:
//
//	Validates the version, entry IDs, and entry kinds. Referential
//	invariants (path uniqueness, category existence) are checked by
//	registry.NewFromSnapshot, which is where decoded snapshots go.
//
// Outputs:
//
//	*registry.Snapshot - Decoded snapshot.
//	error - Wraps ErrSerialization on any invalid field.
func Decode(doc *Document) (*registry.Snapshot, error) {
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrSerialization, doc.Version)
	}

	snap := &registry.Snapshot{
		Root:      doc.Root,
		CreatedAt: doc.CreatedAt,
	}
	for _, c := range doc.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: category with empty name", ErrSerialization)
		}
		snap.Categories = append(snap.Categories, registry.Category{
			Name: c.Name,
			Info: c.Info,
		})
	}
	for _, rec := range doc.Entries {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s has invalid id %q: %v",
				ErrSerialization, rec.Path, rec.ID, err)
		}
		kind := registry.EntryKind(rec.Kind)
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: entry %s has invalid kind %q",
				ErrSerialization, rec.Path, rec.Kind)
		}
		snap.Entries = append(snap.Entries, registry.Entry{
			ID:           id,
			Path:         rec.Path,
			Kind:         kind,
			Categories:   append([]string(nil), rec.Categories...),
			Info:         rec.Info,
			RegisteredAt: rec.RegisteredAt,
		})
	}

	// Member back-references are not persisted; rebuild them so a
	// decoded snapshot equals the one that was encoded.
	members := make(map[string][]string, len(snap.Categories))
	for _, e := range snap.Entries {
		for _, c := range e.Categories {
			members[c] = append(members[c], e.Path)
		}
	}
	for i := range snap.Categories {
		ms := members[snap.Categories[i].Name]
		sort.Strings(ms)
		snap.Categories[i].Members = ms
	}
	return snap, nil
}

// Marshal serializes a document to indented JSON.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return append(data, '\n'), nil
}

// Unmarshal parses a JSON document.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return &doc, nil
}
