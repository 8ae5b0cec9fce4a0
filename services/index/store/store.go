// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Package store persists committed index documents.
//
// Two backends are provided. FileStore keeps the document as a single
// JSON file written atomically, matching how a per-directory index is
// expected to live next to the data it describes. BadgerStore keeps
// the document in an embedded BadgerDB with a bounded history of prior
// snapshots, for indexes that are committed frequently.
//
// A store holds opaque documents; all validation happens in codec and
// registry. The only contract is that Load returns the last document
// passed to Save, or ErrNoSnapshot if Save was never called.
package store

import (
	"context"
	"errors"

	"github.com/pathindex/pathindex/services/index/codec"
)

// ErrNoSnapshot is returned by Load when the store holds no document
// yet. Callers start with a fresh registry in that case.
var ErrNoSnapshot = errors.New("no snapshot in store")

// Store persists and retrieves index documents.
type Store interface {
	// Save persists doc as the current snapshot.
	Save(ctx context.Context, doc *codec.Document) error

	// Load returns the current snapshot, or ErrNoSnapshot.
	Load(ctx context.Context) (*codec.Document, error)

	// Close releases backend resources. Safe to call once.
	Close() error
}
