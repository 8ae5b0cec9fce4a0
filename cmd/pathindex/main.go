// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

// Command pathindex is a directory/file indexing utility.
//
// It tracks registered filesystem paths grouped into named categories.
// Mutations are staged and committed atomically to a persisted
// snapshot; a delete family of commands cleans either the registry,
// the disk, or both.
package main

import (
	"os"

	"github.com/pathindex/pathindex/pkg/ux"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		ux.Errorf("%v", err)
		os.Exit(1)
	}
}
