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

func runUnregisterPath(cmd *cobra.Command, args []string) error {
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
	if err := idx.Registry().Unregister(path, !flagNonRecursive); err != nil {
		return err
	}
	if err := idx.Commit(ctx); err != nil {
		return err
	}
	ux.Successf("Unregistered %s", path)
	return nil
}

func runUnregisterCategory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	name := args[0]
	err = idx.Registry().DeleteCategory(name, registry.DeleteOptions{
		Unregister: flagWithMembers,
		Recursive:  !flagNonRecursive,
	})
	if err != nil {
		return err
	}
	if err := idx.Commit(ctx); err != nil {
		return err
	}
	if flagWithMembers {
		ux.Successf("Unregistered category %q and its members", name)
	} else {
		ux.Successf("Unregistered category %q", name)
	}
	return nil
}
