// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/respcache/internal/cache"
	"github.com/staranto/respcache/internal/meta"
)

// PurgeCacheCommandAction removes entries older than --older-than. Without the
// flag it falls back to cache.clean (hours) from the config file; a missing
// or non-positive value disables purging.
func PurgeCacheCommandAction(ctx context.Context, cmd *cli.Command) error {
	store, err := OpenStore(cmd)
	if err != nil {
		return err
	}

	var maxAge time.Duration
	if expr := cmd.String("older-than"); expr != "" {
		maxAge, _ = cache.ParseExpires(expr)
	} else {
		cleanHours, _ := GetMeta(cmd).Config.GetInt("cache.clean")
		maxAge = time.Duration(cleanHours) * time.Hour
	}

	if maxAge <= 0 {
		log.Debug("cache cleaning disabled")
		fmt.Fprintln(Out(cmd), "Nothing to purge: set --older-than or cache.clean")
		return nil
	}

	category := cmd.String("category")
	if category == allCategories {
		category = ""
	}

	res, err := store.Purge(category, maxAge)
	if res.Files > 0 || err == nil {
		fmt.Fprintf(Out(cmd), "Purged entries older than %s %s\n", maxAge, Summarize(res))
	}
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// PurgeCommandBuilder constructs the "purge" command and its "cache"
// subcommand.
func PurgeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "purge",
		Usage:     "remove stale cached data",
		UsageText: "respcache purge cache --older-than=<expr> [--category=<name>]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			{
				Name:      "cache",
				Usage:     "remove entries last written longer ago than --older-than",
				UsageText: "respcache purge cache --older-than=<expr> [--category=<name>]",
				Metadata: map[string]any{
					"meta": meta,
				},
				Flags: []cli.Flag{
					NewCategoryFlag("only purge this category, * or empty for all"),
					NewOlderThanFlag("purge", meta.Config.Source),
				},
				Action: PurgeCacheCommandAction,
			},
		},
	}
}
