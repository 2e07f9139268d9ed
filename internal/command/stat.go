// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/urfave/cli/v3"

	"github.com/staranto/respcache/internal/cacheutil"
	"github.com/staranto/respcache/internal/meta"
)

// StatCacheCommandAction prints one row per category directory holding cache
// files.
func StatCacheCommandAction(ctx context.Context, cmd *cli.Command) error {
	store, err := OpenStore(cmd)
	if err != nil {
		return err
	}

	stats, err := cacheutil.Stats(store.Root())
	if err != nil {
		return err
	}

	if category := cmd.String("category"); category != "" && category != allCategories {
		dir, err := store.Dir(category)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(store.Root(), dir)
		stats = filterStats(stats, filepath.ToSlash(rel))
	}

	w := Out(cmd)
	if len(stats) == 0 {
		fmt.Fprintf(w, "No cache entries in %q\n", store.Root())
		return nil
	}

	var (
		entries int
		bytes   int64
		rows    [][]string
	)
	for _, st := range stats {
		name := st.Category
		if name == "" {
			name = "(root)"
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(st.Entries),
			humanize.Bytes(uint64(st.Bytes)),
			humanize.Time(st.Oldest),
			humanize.Time(st.Newest),
		})
		entries += st.Entries
		bytes += st.Bytes
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Align(lipgloss.Left)
	cellStyle := lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
	if cmd.Bool("color") {
		headerStyle = headerStyle.Foreground(lipgloss.Color("#f6be00"))
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = headerStyle
			}
			if col > 0 {
				style = style.PaddingLeft(2)
			}
			return style
		}).
		Headers("CATEGORY", "ENTRIES", "SIZE", "OLDEST", "NEWEST").
		Rows(rows...)

	fmt.Fprintln(w, t)
	fmt.Fprintf(w, "%s, %s in %q\n",
		english.Plural(entries, "entry", "entries"),
		humanize.Bytes(uint64(bytes)),
		store.Root())
	return nil
}

// filterStats keeps the stats for category and anything nested beneath it.
func filterStats(stats []cacheutil.DirStat, category string) []cacheutil.DirStat {
	var out []cacheutil.DirStat
	for _, st := range stats {
		if st.Category == category || strings.HasPrefix(st.Category, category+"/") {
			out = append(out, st)
		}
	}
	return out
}

// StatCommandBuilder constructs the "stat" command and its "cache"
// subcommand.
func StatCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "show cache statistics",
		UsageText: "respcache stat cache [--category=<name>]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			{
				Name:      "cache",
				Usage:     "list entry counts and sizes per category",
				UsageText: "respcache stat cache [--category=<name>]",
				Metadata: map[string]any{
					"meta": meta,
				},
				Flags: []cli.Flag{
					NewCategoryFlag("only show this category and those nested below it"),
				},
				Action: StatCacheCommandAction,
			},
		},
	}
}
