// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathindex/pathindex/pkg/ux"
	"github.com/pathindex/pathindex/services/index/pathutil"
	"github.com/pathindex/pathindex/services/index/store"
)

// runInit creates an empty index for the current directory by opening
// it and persisting the fresh snapshot. Running init in an already
// initialized directory rewrites the same snapshot and is harmless.
func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Commit(ctx); err != nil {
		return err
	}
	ux.Successf("Initialized index at %s", idx.Registry().Root())
	if config.Store.Backend == "file" && config.Store.Path == "" {
		logger.Info("index file created", "file", store.DefaultFileName)
	}
	return nil
}

// registerOne stages and commits a single path registration.
func registerOne(cmd *cobra.Command, path string, directory bool) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	entry, err := idx.Registry().Register(path, categoryOrDefault(), directory, flagInfo)
	if err != nil {
		return err
	}
	if err := idx.Commit(ctx); err != nil {
		return err
	}
	ux.Successf("Registered %s %s in category %q", entry.Kind, entry.Path, entry.Categories[0])
	return nil
}

func runRegisterPath(cmd *cobra.Command, args []string) error {
	path, err := pathutil.Resolve(args[0])
	if err != nil {
		return err
	}

	var directory bool
	switch flagPathType {
	case "":
		directory, err = pathutil.DetectKind(path)
		if err != nil {
			return fmt.Errorf("detect path type (pass --type to skip detection): %w", err)
		}
	case "file":
		directory = false
	case "directory", "dir":
		directory = true
	default:
		return fmt.Errorf("unknown path type %q: want file or directory", flagPathType)
	}
	return registerOne(cmd, path, directory)
}

func runRegisterFile(cmd *cobra.Command, args []string) error {
	path, err := pathutil.Resolve(args[0])
	if err != nil {
		return err
	}
	return registerOne(cmd, path, false)
}

func runRegisterDirectory(cmd *cobra.Command, args []string) error {
	path, err := pathutil.Resolve(args[0])
	if err != nil {
		return err
	}
	return registerOne(cmd, path, true)
}

func runRegisterCategory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	cat, err := idx.Registry().RegisterCategory(args[0], flagInfo)
	if err != nil {
		return err
	}
	if err := idx.Commit(ctx); err != nil {
		return err
	}
	ux.Successf("Registered category %q", cat.Name)
	return nil
}

func runTag(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	path, err := pathutil.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := idx.Registry().Tag(path, args[1]); err != nil {
		return err
	}
	if err := idx.Commit(ctx); err != nil {
		return err
	}
	ux.Successf("Tagged %s with category %q", path, args[1])
	return nil
}
