// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Package index ties the registry, serializer, and store together into
// the library surface the CLI (or any embedder) consumes.
//
// An Index owns one Registry and one Store. Opening an index loads the
// persisted snapshot when one exists; Commit applies staged operations
// to the registry and, only if that succeeds, persists the new
// committed snapshot.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pathindex/pathindex/services/index/codec"
	"github.com/pathindex/pathindex/services/index/registry"
	"github.com/pathindex/pathindex/services/index/store"
)

// Index is one opened path index.
type Index struct {
	registry *registry.Registry
	store    store.Store
	logger   *slog.Logger
}

// Open loads the index persisted in st, or creates a fresh one rooted
// at root when the store is empty.
//
// Description:
//
//	A fresh index starts with the default category registered and
//	nothing staged. A loaded index is validated on the way in: decode
//	failures and referential violations surface here, before any
//	mutation is possible.
//
// Inputs:
//
//	ctx - For cancellation of the initial load.
//	root - Absolute path of the indexed directory.
//	st - Backing store. The index takes ownership; Close closes it.
//	logger - Diagnostics. Nil falls back to slog.Default().
//
// Outputs:
//
//	*Index - The opened index.
//	error - Load, decode, or validation failure.
func Open(ctx context.Context, root string, st store.Store, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		logger.Info("no snapshot found, starting fresh index", "root", root)
		return &Index{
			registry: registry.New(root, registry.WithLogger(logger)),
			store:    st,
			logger:   logger,
		}, nil
	case err != nil:
		return nil, fmt.Errorf("open index: %w", err)
	}

	snap, err := codec.Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	reg, err := registry.NewFromSnapshot(snap, registry.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	logger.Info("loaded index",
		"root", reg.Root(),
		"entries", len(snap.Entries),
		"categories", len(snap.Categories))
	return &Index{registry: reg, store: st, logger: logger}, nil
}

// Registry exposes the underlying registry for staging mutations and
// reading state.
func (i *Index) Registry() *registry.Registry {
	return i.registry
}

// Commit applies all staged operations and persists the new snapshot.
//
// Description:
//
//	Registry commit and persistence are sequenced so that a replay
//	failure leaves both registry and store untouched. A persistence
//	failure after a successful registry commit is returned to the
//	caller; the in-memory state is already committed, so retrying
//	Commit (with nothing staged) retries only the save.
//
// Outputs:
//
//	error - Replay validation failure or store failure.
func (i *Index) Commit(ctx context.Context) error {
	if err := i.registry.Commit(ctx); err != nil {
		return err
	}
	doc := codec.Encode(i.registry.Snapshot())
	if err := i.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Rollback discards staged operations.
func (i *Index) Rollback() {
	i.registry.Rollback()
}

// Close closes the backing store.
func (i *Index) Close() error {
	return i.store.Close()
}
