// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Package archive snapshots an indexed directory into a compressed
// tarball: copy the tree (skipping files above a size cap), compress
// the copy, and optionally drop the uncompressed staging copy.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures an archive run.
type Options struct {
	// MaxFileSize is the largest file copied into the archive, in
	// bytes. Zero means no limit.
	MaxFileSize int64

	// KeepCopy retains the uncompressed staging copy next to the
	// archive instead of deleting it.
	KeepCopy bool

	// Logger receives per-file skip diagnostics.
	Logger *slog.Logger
}

// Archiver copies and compresses directory trees.
type Archiver struct {
	opts Options
}

// New creates an archiver.
func New(opts Options) *Archiver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Logger = opts.Logger.With("component", "archive")
	return &Archiver{opts: opts}
}

// Run copies src into dest and produces dest.tar.gz.
//
// Description:
//
//	dest must not exist; the archiver refuses to merge into an
//	existing tree. Files larger than MaxFileSize are skipped with a
//	warning. Unless KeepCopy is set, the staging copy is removed after
//	the tarball is written.
//
// Outputs:
//
//	string - Path of the written archive.
//	error - First copy or compression failure.
func (a *Archiver) Run(src, dest string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("source %s: %w", src, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %s is not a directory", src)
	}
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("destination %s already exists", dest)
	}

	if err := a.copyTree(src, dest); err != nil {
		return "", err
	}

	archivePath := dest + ".tar.gz"
	if err := a.compress(dest, archivePath); err != nil {
		return "", err
	}

	if !a.opts.KeepCopy {
		if err := os.RemoveAll(dest); err != nil {
			return "", fmt.Errorf("remove staging copy %s: %w", dest, err)
		}
	}
	return archivePath, nil
}

// copyTree copies src into dest iteratively, skipping oversized files.
func (a *Archiver) copyTree(src, dest string) error {
	if err := os.MkdirAll(dest, 0750); err != nil {
		return fmt.Errorf("create destination %s: %w", dest, err)
	}

	type pair struct{ from, to string }
	stack := []pair{{src, dest}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		items, err := os.ReadDir(cur.from)
		if err != nil {
			return fmt.Errorf("read directory %s: %w", cur.from, err)
		}
		for _, item := range items {
			from := filepath.Join(cur.from, item.Name())
			to := filepath.Join(cur.to, item.Name())

			if item.IsDir() {
				if err := os.MkdirAll(to, 0750); err != nil {
					return fmt.Errorf("create directory %s: %w", to, err)
				}
				stack = append(stack, pair{from, to})
				continue
			}
			if !item.Type().IsRegular() {
				a.opts.Logger.Debug("skipping irregular file", "path", from)
				continue
			}

			info, err := item.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", from, err)
			}
			if a.opts.MaxFileSize > 0 && info.Size() > a.opts.MaxFileSize {
				a.opts.Logger.Warn("skipping oversized file",
					"path", from,
					"size", info.Size(),
					"max", a.opts.MaxFileSize)
				continue
			}
			if err := copyFile(from, to, info.Mode()); err != nil {
				return err
			}
		}
	}
	return nil
}

// compress writes dir into a gzip-compressed tarball at archivePath.
func (a *Archiver) compress(dir, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", archivePath, err)
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	tw := tar.NewWriter(gw)

	base := filepath.Dir(dir)
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("write archive %s: %w", archivePath, err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar writer: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return out.Sync()
}

func copyFile(from, to string, mode os.FileMode) error {
	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("open %s: %w", from, err)
	}
	defer in.Close()

	out, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", to, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", from, err)
	}
	return nil
}
