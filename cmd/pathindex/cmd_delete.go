// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pathindex/pathindex/pkg/ux"
	"github.com/pathindex/pathindex/services/index/pathutil"
	"github.com/pathindex/pathindex/services/index/registry"
)

func runDeletePath(cmd *cobra.Command, args []string) error {
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
	opts := registry.DeleteOptions{Recursive: !flagNonRecursive}
	if err := idx.Registry().DeletePath(path, opts); err != nil {
		return err
	}
	if err := idx.Commit(ctx); err != nil {
		return err
	}
	if flagPurge {
		ops, err := buildFsops(idx)
		if err != nil {
			return err
		}
		if err := ops.DeletePath(path); err != nil {
			return err
		}
		ux.Successf("Deleted %s from the index and from disk", path)
		return nil
	}
	ux.Successf("Deleted %s from the index", path)
	return nil
}

func runDeleteCategory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	name := args[0]

	// Member paths are captured before the category goes away so a
	// purge still knows what to remove.
	var members []string
	if flagPurge {
		members, err = idx.Registry().Members(name)
		if err != nil {
			return err
		}
	}

	opts := registry.DeleteOptions{Unregister: flagUnregister}
	if err := idx.Registry().DeleteCategory(name, opts); err != nil {
		return err
	}
	if err := idx.Commit(ctx); err != nil {
		return err
	}

	if flagPurge {
		ops, err := buildFsops(idx)
		if err != nil {
			return err
		}
		for _, path := range members {
			if err := ops.DeletePath(path); err != nil {
				return err
			}
		}
		ux.Successf("Deleted category %q and purged %d member path(s)", name, len(members))
		return nil
	}
	ux.Successf("Deleted category %q", name)
	return nil
}

func runDeleteRegistered(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	ops, err := buildFsops(idx)
	if err != nil {
		return err
	}
	if err := ops.DeleteRegistered(); err != nil {
		return err
	}

	if flagUnregister {
		reg := idx.Registry()
		for _, entry := range reg.Entries() {
			if err := reg.Unregister(entry.Path, false); err != nil {
				reg.Rollback()
				return err
			}
		}
		if err := idx.Commit(ctx); err != nil {
			return err
		}
	}
	ux.Warnf("Removed all registered paths from disk")
	return nil
}

func runDeleteUnregistered(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	ops, err := buildFsops(idx)
	if err != nil {
		return err
	}
	if err := ops.DeleteUnregistered(flagDeep); err != nil {
		return err
	}
	ux.Warnf("Removed unregistered paths under %s", idx.Registry().Root())
	return nil
}

func runDeleteAll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	ops, err := buildFsops(idx)
	if err != nil {
		return err
	}
	if err := ops.DeleteAll(); err != nil {
		return err
	}

	reg := idx.Registry()
	for _, entry := range reg.Entries() {
		if err := reg.Unregister(entry.Path, false); err != nil {
			reg.Rollback()
			return err
		}
	}
	if err := idx.Commit(ctx); err != nil {
		return err
	}
	ux.Warnf("Removed everything under %s", reg.Root())
	return nil
}
