// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Package pathutil provides path normalization and containment tests
// shared by the registry, fsops, and the CLI.
//
// All registry keys are absolute, cleaned paths produced by Resolve.
// Containment tests operate on those normalized forms only; no
// filesystem access is performed except where documented.
package pathutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Resolve converts path to its absolute, cleaned form.
//
// Description:
//
//	Resolves relative paths against the current working directory and
//	cleans the result. Symlinks are not followed; the registry tracks
//	paths as given, the way the rest of the tool refers to them.
//
// Inputs:
//
//	path - Path to normalize. Must be non-empty.
//
// Outputs:
//
//	string - Absolute cleaned path.
//	error - Non-nil if the path is empty or cannot be made absolute.
func Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// IsSubpath reports whether path lies strictly under root.
//
// A path is never a subpath of itself. Both arguments must already be
// normalized (see Resolve); no filesystem access is performed.
func IsSubpath(path, root string) bool {
	if path == root {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// DetectKind determines whether path is a directory.
//
// Description:
//
//	Stats the path. When the path does not exist the caller must supply
//	the kind explicitly, mirroring the registration rules: an entry for
//	a missing path can only be created with an explicit kind.
//
// Outputs:
//
//	bool - True if the path is a directory.
//	error - Non-nil if the path does not exist or cannot be statted.
func DetectKind(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("detect kind of %s: %w", path, err)
	}
	return info.IsDir(), nil
}

// Walk enumerates every path under root in lexical order, invoking fn
// for each descendant (root itself is skipped).
//
// Description:
//
//	Thin wrapper over filepath.WalkDir used by recursive registration
//	and the unregistered-path sweep. Walk stops at the first error
//	returned by fn.
//
// Inputs:
//
//	root - Directory to walk. Must exist.
//	fn - Called with the normalized path and whether it is a directory.
func Walk(root string, fn func(path string, isDir bool) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		return fn(filepath.Clean(path), d.IsDir())
	})
}
