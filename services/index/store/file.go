// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pathindex/pathindex/services/index/codec"
)

// DefaultFileName is the index file created in the index root when no
// explicit path is configured.
const DefaultFileName = ".pathindex.json"

// FileStore persists the document as one JSON file.
//
// Writes are atomic: the document is written to a temp file in the same
// directory, fsynced, then renamed over the target. On crash either the
// old or the new complete file exists, never a partial one.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the JSON file at path.
//
// The file does not have to exist yet; Load returns ErrNoSnapshot until
// the first Save.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger.With("component", "filestore"),
	}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the document atomically.
func (s *FileStore) Save(ctx context.Context, doc *codec.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := codec.Marshal(doc)
	if err != nil {
		return err
	}
	if err := atomicWrite(s.path, data, 0640); err != nil {
		return fmt.Errorf("save index file %s: %w", s.path, err)
	}
	s.logger.Debug("saved index file", "path", s.path, "bytes", len(data))
	return nil
}

// Load reads and parses the document, or ErrNoSnapshot if the file does
// not exist.
func (s *FileStore) Load(ctx context.Context) (*codec.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("load index file %s: %w", s.path, err)
	}
	return codec.Unmarshal(data)
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}

// atomicWrite writes data via temp file + fsync + rename in the target
// directory, so the rename stays on one filesystem.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".pathindex-tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	ok = true
	return nil
}
