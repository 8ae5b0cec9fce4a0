// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Package fsops performs the destructive filesystem side of delete
// commands: removing files and directories that the registry (or the
// user) no longer wants on disk.
//
// The registry only ever mutates its own state; everything that
// touches the real filesystem lives here, behind an ignore list of
// protected paths. Operations skip ignored paths with a warning rather
// than failing, matching the tool's CLI contract.
package fsops

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pathindex/pathindex/services/index/pathutil"
	"github.com/pathindex/pathindex/services/index/registry"
)

// IgnoreList is a set of protected absolute paths. Delete operations
// never remove an ignored path or anything that would take one with it.
type IgnoreList map[string]struct{}

// NewIgnoreList normalizes and collects the given paths.
func NewIgnoreList(paths ...string) (IgnoreList, error) {
	list := make(IgnoreList, len(paths))
	for _, p := range paths {
		abs, err := pathutil.Resolve(p)
		if err != nil {
			return nil, err
		}
		list[abs] = struct{}{}
	}
	return list, nil
}

// Contains reports whether path itself is protected.
func (l IgnoreList) Contains(path string) bool {
	_, ok := l[path]
	return ok
}

// Shelters reports whether path is protected or holds a protected path
// somewhere beneath it. A directory sheltering an ignored path cannot
// be removed wholesale.
func (l IgnoreList) Shelters(path string) bool {
	if l.Contains(path) {
		return true
	}
	for p := range l {
		if pathutil.IsSubpath(p, path) {
			return true
		}
	}
	return false
}

// Ops executes filesystem deletions against an indexed directory.
type Ops struct {
	reg    *registry.Registry
	ignore IgnoreList
	logger *slog.Logger
}

// New creates an Ops bound to a registry and ignore list.
func New(reg *registry.Registry, ignore IgnoreList, logger *slog.Logger) *Ops {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ops{
		reg:    reg,
		ignore: ignore,
		logger: logger.With("component", "fsops"),
	}
}

// DeletePath removes path from disk, recursively for directories.
//
// Description:
//
//	Ignored paths are skipped with a warning. A directory sheltering an
//	ignored path is descended into instead of removed wholesale, so the
//	protected path and its ancestors survive. Missing paths are not an
//	error; the intent is "make it gone".
func (o *Ops) DeletePath(path string) error {
	if o.ignore.Contains(path) {
		o.logger.Warn("refusing to delete ignored path", "path", path)
		return nil
	}

	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
		return nil
	}

	if !o.ignore.Shelters(path) {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
		return nil
	}

	// The subtree holds protected paths: remove children selectively
	// and keep the directory chain above them.
	if err := o.deleteContents(path); err != nil {
		return err
	}
	if empty, err := isEmptyDir(path); err == nil && empty {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

// DeleteRegistered removes every committed entry's path from disk.
// Entries stay registered; pair with a staged unregister when the
// registry should forget them too.
func (o *Ops) DeleteRegistered() error {
	for _, e := range o.reg.Entries() {
		if err := o.DeletePath(e.Path); err != nil {
			return err
		}
	}
	return nil
}

// DeleteUnregistered removes paths under the index root that are not
// registered.
//
// Description:
//
//	Walks the root's direct children. Unregistered paths are removed;
//	registered directories are left alone unless deep is set, in which
//	case the sweep recurses into them.
func (o *Ops) DeleteUnregistered(deep bool) error {
	return o.deleteUnregisteredIn(o.reg.Root(), deep)
}

func (o *Ops) deleteUnregisteredIn(dir string, deep bool) error {
	items, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}
	for _, item := range items {
		path := filepath.Join(dir, item.Name())
		if _, err := o.reg.Lookup(path); err == nil {
			if deep && item.IsDir() {
				if err := o.deleteUnregisteredIn(path, deep); err != nil {
					return err
				}
			}
			continue
		}
		if err := o.DeletePath(path); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll removes the entire contents of the index root, honoring
// the ignore list. The root directory itself survives.
func (o *Ops) DeleteAll() error {
	return o.deleteContents(o.reg.Root())
}

func (o *Ops) deleteContents(dir string) error {
	items, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}
	for _, item := range items {
		if err := o.DeletePath(filepath.Join(dir, item.Name())); err != nil {
			return err
		}
	}
	return nil
}

func isEmptyDir(dir string) (bool, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(items) == 0, nil
}
