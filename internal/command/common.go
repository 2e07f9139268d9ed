// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/urfave/cli/v3"

	"github.com/staranto/respcache/internal/cache"
	"github.com/staranto/respcache/internal/meta"
)

// allCategories is the --category value that opts in to touching the whole
// cache.
const allCategories = "*"

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// OpenStore builds the cache store from the --dir and --expires flags.
func OpenStore(cmd *cli.Command) (*cache.Store, error) {
	store, err := cache.New(cache.Config{
		Root:    cmd.String("dir"),
		Expires: cmd.String("expires"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return store, nil
}

// Out returns the writer command output should go to.
func Out(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// Warn writes msg, highlighted when --color is in effect.
func Warn(cmd *cli.Command, msg string) {
	if cmd.Bool("color") {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("#f6be00")).Render(msg)
	}
	fmt.Fprintln(Out(cmd), msg)
}

// Summarize renders a ClearResult for humans, e.g. `in "/c/users" (2 files, 84 B)`.
func Summarize(res cache.ClearResult) string {
	return fmt.Sprintf("in %q (%s, %s)",
		res.Dir,
		english.Plural(res.Files, "file", "files"),
		humanize.Bytes(uint64(res.Bytes)))
}
