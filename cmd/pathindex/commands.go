// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pathindex/pathindex/pkg/logging"
	"github.com/pathindex/pathindex/pkg/ux"
)

// --- Global Command Variables ---
var (
	config Config
	logger *logging.Logger

	// Shared flags
	flagCategory     string
	flagInfo         string
	flagPathType     string
	flagNonRecursive bool
	flagWithMembers  bool
	flagUnregister   bool
	flagPurge        bool
	flagDeep         bool
	flagHistoryN     int
	flagMaxSize      int64
	flagKeepCopy     bool
	flagNoColor      bool

	rootCmd = &cobra.Command{
		Use:   "pathindex",
		Short: "A directory and file indexing utility",
		Long: `pathindex tracks filesystem paths and groups them into named
categories. Changes are staged and committed atomically to a persisted
index next to the data it describes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			root, err := indexRoot()
			if err != nil {
				return err
			}
			config, err = LoadConfig(root)
			if err != nil {
				return err
			}
			logger = logging.New(logging.Config{
				Level:   logging.ParseLevel(config.Log.Level),
				LogDir:  config.Log.Dir,
				Service: "pathindex",
				JSON:    config.Log.JSON,
			})
			if flagNoColor {
				ux.SetColorEnabled(false)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Close()
			}
		},
	}

	// --- Init ---
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create an index rooted at the current directory",
		RunE:  runInit, // Defined in cmd_register.go
	}

	// --- Register ---
	registerCmd = &cobra.Command{
		Use:   "register",
		Short: "Register a path or category in the index",
	}
	registerPathCmd = &cobra.Command{
		Use:   "path <path>",
		Short: "Register a path (type detected, or forced with --type)",
		Args:  cobra.ExactArgs(1),
		RunE:  runRegisterPath,
	}
	registerFileCmd = &cobra.Command{
		Use:   "file <path>",
		Short: "Register a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRegisterFile,
	}
	registerDirectoryCmd = &cobra.Command{
		Use:     "directory <path>",
		Aliases: []string{"dir", "folder"},
		Short:   "Register a directory",
		Args:    cobra.ExactArgs(1),
		RunE:    runRegisterDirectory,
	}
	registerCategoryCmd = &cobra.Command{
		Use:   "category <name>",
		Short: "Register a category",
		Args:  cobra.ExactArgs(1),
		RunE:  runRegisterCategory,
	}

	// --- Tag ---
	tagCmd = &cobra.Command{
		Use:   "tag <path> <category>",
		Short: "Add a registered path to an additional category",
		Args:  cobra.ExactArgs(2),
		RunE:  runTag, // Defined in cmd_register.go
	}

	// --- Unregister ---
	unregisterCmd = &cobra.Command{
		Use:   "unregister",
		Short: "Remove a path or category from the index",
	}
	unregisterPathCmd = &cobra.Command{
		Use:   "path <path>",
		Short: "Unregister a path (and registered descendants, unless --non-recursive)",
		Args:  cobra.ExactArgs(1),
		RunE:  runUnregisterPath,
	}
	unregisterCategoryCmd = &cobra.Command{
		Use:   "category <name>",
		Short: "Unregister a category (must be empty, unless --with-members)",
		Args:  cobra.ExactArgs(1),
		RunE:  runUnregisterCategory,
	}

	// --- Delete ---
	deleteCmd = &cobra.Command{
		Use:   "delete",
		Short: "Delete index entries, and with --purge their files",
	}
	deletePathCmd = &cobra.Command{
		Use:   "path <path>",
		Short: "Delete a path entry; --purge also removes it from disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeletePath,
	}
	deleteCategoryCmd = &cobra.Command{
		Use:   "category <name>",
		Short: "Delete a category; --unregister removes its members too",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCategory,
	}
	deleteRegisteredCmd = &cobra.Command{
		Use:   "registered",
		Short: "DANGER: remove every registered path from disk",
		RunE:  runDeleteRegistered,
	}
	deleteUnregisteredCmd = &cobra.Command{
		Use:   "unregistered",
		Short: "DANGER: remove unregistered paths under the index root from disk",
		RunE:  runDeleteUnregistered,
	}
	deleteAllCmd = &cobra.Command{
		Use:   "all",
		Short: "DANGER: remove the entire index root contents from disk",
		RunE:  runDeleteAll,
	}

	// --- Inspection ---
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered entries",
		RunE:  runList, // Defined in cmd_list.go
	}
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show index summary",
		RunE:  runStatus, // Defined in cmd_list.go
	}
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show archived snapshots (badger backend only)",
		RunE:  runHistory, // Defined in cmd_list.go
	}

	// --- Archive ---
	archiveCmd = &cobra.Command{
		Use:   "archive <source-dir> <destination>",
		Short: "Copy a directory (capped file size) and compress it to a tarball",
		Args:  cobra.ExactArgs(2),
		RunE:  runArchive, // Defined in cmd_archive.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable styled output")

	registerPathCmd.Flags().StringVarP(&flagPathType, "type", "t", "", "Path type: file or directory")
	for _, cmd := range []*cobra.Command{registerPathCmd, registerFileCmd, registerDirectoryCmd} {
		cmd.Flags().StringVarP(&flagCategory, "category", "c", "", "Category to register under")
		cmd.Flags().StringVarP(&flagInfo, "info", "i", "", "Optional note")
	}
	registerCategoryCmd.Flags().StringVarP(&flagInfo, "info", "i", "", "Optional description")
	registerCmd.AddCommand(registerPathCmd, registerFileCmd, registerDirectoryCmd, registerCategoryCmd)

	unregisterPathCmd.Flags().BoolVar(&flagNonRecursive, "non-recursive", false, "Keep registered descendants")
	unregisterCategoryCmd.Flags().BoolVar(&flagWithMembers, "with-members", false, "Unregister remaining members")
	unregisterCategoryCmd.Flags().BoolVar(&flagNonRecursive, "non-recursive", false, "Keep registered descendants of members")
	unregisterCmd.AddCommand(unregisterPathCmd, unregisterCategoryCmd)

	deletePathCmd.Flags().BoolVar(&flagPurge, "purge", false, "Also remove the path from disk")
	deletePathCmd.Flags().BoolVar(&flagNonRecursive, "non-recursive", false, "Keep registered descendants")
	deleteCategoryCmd.Flags().BoolVarP(&flagUnregister, "unregister", "u", false, "Unregister members instead of failing")
	deleteCategoryCmd.Flags().BoolVar(&flagPurge, "purge", false, "Also remove member paths from disk")
	deleteRegisteredCmd.Flags().BoolVarP(&flagUnregister, "unregister", "u", false, "Also unregister the deleted paths")
	deleteUnregisteredCmd.Flags().BoolVarP(&flagDeep, "deep", "d", false, "Descend into registered directories")
	deleteCmd.AddCommand(deletePathCmd, deleteCategoryCmd, deleteRegisteredCmd, deleteUnregisteredCmd, deleteAllCmd)

	listCmd.Flags().StringVarP(&flagCategory, "category", "c", "", "Only entries in this category")
	historyCmd.Flags().IntVarP(&flagHistoryN, "count", "n", 10, "Snapshots to show")

	archiveCmd.Flags().Int64Var(&flagMaxSize, "max-size", 0, "Skip files larger than this many bytes")
	archiveCmd.Flags().BoolVar(&flagKeepCopy, "keep-copy", false, "Keep the uncompressed staging copy")

	rootCmd.AddCommand(initCmd, registerCmd, tagCmd, unregisterCmd, deleteCmd,
		listCmd, statusCmd, historyCmd, archiveCmd)
}
