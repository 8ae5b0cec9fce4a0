// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pathindex/pathindex/pkg/ux"
	"github.com/pathindex/pathindex/services/index/archive"
	"github.com/pathindex/pathindex/services/index/pathutil"
)

func runArchive(cmd *cobra.Command, args []string) error {
	src, err := pathutil.Resolve(args[0])
	if err != nil {
		return err
	}
	dest, err := pathutil.Resolve(args[1])
	if err != nil {
		return err
	}

	a := archive.New(archive.Options{
		MaxFileSize: flagMaxSize,
		KeepCopy:    flagKeepCopy,
		Logger:      logger.Slog(),
	})
	tarball, err := a.Run(src, dest)
	if err != nil {
		return err
	}
	ux.Successf("Archived %s to %s", src, tarball)
	return nil
}
