// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package registry

import "errors"

// Registry errors.
var (
	// ErrDuplicatePath is returned when registering a path that is already
	// registered in the staged view of the registry.
	ErrDuplicatePath = errors.New("path already registered")

	// ErrUnknownPath is returned when an operation references a path that
	// is not registered.
	ErrUnknownPath = errors.New("path not registered")

	// ErrDuplicateCategory is returned when registering a category whose
	// name is already taken.
	ErrDuplicateCategory = errors.New("category already registered")

	// ErrUnknownCategory is returned when an operation references a
	// category that does not exist.
	ErrUnknownCategory = errors.New("category not registered")

	// ErrCategoryNotEmpty is returned when deleting a category whose
	// member entries have not been unregistered.
	ErrCategoryNotEmpty = errors.New("category is not empty")
)
