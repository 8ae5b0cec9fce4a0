// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pathindex/pathindex/services/index"
	"github.com/pathindex/pathindex/services/index/fsops"
	"github.com/pathindex/pathindex/services/index/pathutil"
	"github.com/pathindex/pathindex/services/index/store"
)

// DefaultBadgerDir is the badger store directory inside the index root.
const DefaultBadgerDir = ".pathindex.db"

// indexRoot resolves the directory the index covers: the current
// working directory, the way the tool is meant to be invoked.
func indexRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return pathutil.Resolve(cwd)
}

// openStore builds the configured persistence backend for root.
func openStore(root string) (store.Store, error) {
	path := config.Store.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	switch config.Store.Backend {
	case "badger":
		if path == "" {
			path = filepath.Join(root, DefaultBadgerDir)
		}
		cfg := store.DefaultBadgerConfig()
		cfg.Path = path
		cfg.Logger = logger.Slog()
		return store.NewBadgerStore(cfg)
	default:
		if path == "" {
			path = filepath.Join(root, store.DefaultFileName)
		}
		return store.NewFileStore(path, logger.Slog())
	}
}

// openIndex opens the index for the current directory. The caller must
// Close the returned index.
func openIndex(ctx context.Context) (*index.Index, error) {
	root, err := indexRoot()
	if err != nil {
		return nil, err
	}
	st, err := openStore(root)
	if err != nil {
		return nil, err
	}
	idx, err := index.Open(ctx, root, st, logger.Slog())
	if err != nil {
		st.Close()
		return nil, err
	}
	return idx, nil
}

// buildFsops creates the filesystem-deletion helper with the configured
// ignore list. The index root and store locations are always protected.
func buildFsops(idx *index.Index) (*fsops.Ops, error) {
	reg := idx.Registry()
	protected := append([]string(nil), config.Ignore...)
	protected = append(protected,
		filepath.Join(reg.Root(), store.DefaultFileName),
		filepath.Join(reg.Root(), DefaultBadgerDir),
		filepath.Join(reg.Root(), ConfigFileName),
	)
	ignore, err := fsops.NewIgnoreList(protected...)
	if err != nil {
		return nil, err
	}
	return fsops.New(reg, ignore, logger.Slog()), nil
}

// categoryOrDefault resolves the --category flag against the config.
func categoryOrDefault() string {
	if flagCategory != "" {
		return flagCategory
	}
	return config.DefaultCategory
}
