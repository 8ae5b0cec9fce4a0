// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pathindex/pathindex/pkg/ux"
	"github.com/pathindex/pathindex/services/index/registry"
	"github.com/pathindex/pathindex/services/index/store"
)

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	reg := idx.Registry()
	entries := reg.Entries()
	if flagCategory != "" {
		// Resolve the category first so an unknown name errors
		// instead of listing nothing.
		if _, err := reg.Members(flagCategory); err != nil {
			return err
		}
		kept := entries[:0]
		for _, e := range entries {
			if e.HasCategory(flagCategory) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	if len(entries) == 0 {
		ux.Warnf("No entries registered")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Path,
			string(e.Kind),
			strings.Join(e.Categories, ", "),
			e.Info,
		})
	}
	fmt.Print(ux.Table([]string{"PATH", "KIND", "CATEGORIES", "INFO"}, rows))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	reg := idx.Registry()
	stats := reg.Stats()

	ux.Titlef("Index %s", reg.Root())
	pairs := [][2]string{
		{"Backend", config.Store.Backend},
		{"Created", reg.CreatedAt().Format("2006-01-02 15:04:05")},
		{"Entries", strconv.Itoa(stats.Entries)},
		{"Files", strconv.Itoa(stats.ByKind[registry.KindFile])},
		{"Directories", strconv.Itoa(stats.ByKind[registry.KindDirectory])},
		{"Categories", strconv.Itoa(stats.Categories)},
	}
	fmt.Print(ux.KeyValue(pairs))

	cats := reg.Categories()
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c.Name, strconv.Itoa(len(c.Members)), c.Info})
	}
	fmt.Println()
	fmt.Print(ux.Table([]string{"CATEGORY", "MEMBERS", "INFO"}, rows))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if config.Store.Backend != "badger" {
		return fmt.Errorf("history requires the badger backend, config has %q", config.Store.Backend)
	}

	root, err := indexRoot()
	if err != nil {
		return err
	}
	st, err := openStore(root)
	if err != nil {
		return err
	}
	defer st.Close()

	bs, ok := st.(*store.BadgerStore)
	if !ok {
		return fmt.Errorf("history requires the badger backend")
	}
	records, err := bs.History(cmd.Context(), flagHistoryN)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ux.Warnf("No snapshots archived yet")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.FormatUint(rec.Seq, 10),
			rec.Document.CreatedAt.Format("2006-01-02 15:04:05"),
			strconv.Itoa(len(rec.Document.Entries)),
			strconv.Itoa(len(rec.Document.Categories)),
		})
	}
	fmt.Print(ux.Table([]string{"SEQ", "CREATED", "ENTRIES", "CATEGORIES"}, rows))
	return nil
}
