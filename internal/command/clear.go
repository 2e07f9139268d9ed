// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/respcache/internal/cache"
	"github.com/staranto/respcache/internal/meta"
)

// ClearCacheCommandAction removes cached entries. Without --category it only
// prints a warning: wiping the whole cache needs an explicit --category=*.
func ClearCacheCommandAction(ctx context.Context, cmd *cli.Command) error {
	store, err := OpenStore(cmd)
	if err != nil {
		return err
	}

	category := cmd.String("category")
	if !cmd.IsSet("category") || category == "" {
		log.Debugf("refusing unscoped clear of %s", store.Root())
		Warn(cmd, fmt.Sprintf(
			"Clearing every cache directory is forbidden for safety in %q. You can force with --category=%s",
			store.Root(), allCategories))
		return nil
	}

	var res cache.ClearResult
	if category == allCategories {
		res, err = store.ClearAll()
	} else {
		res, err = store.Clear(category)
	}

	if errors.Is(err, cache.ErrUnscopedClear) {
		Warn(cmd, fmt.Sprintf(
			"Category %q resolves to the cache root %q. Use --category=%s to clear everything",
			category, store.Root(), allCategories))
		return nil
	}

	if res.Files > 0 || err == nil {
		fmt.Fprintf(Out(cmd), "Cache has been purged %s\n", Summarize(res))
	}
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// ClearCommandBuilder constructs the "clear" command and its "cache"
// subcommand.
func ClearCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "clear cached data",
		UsageText: "respcache clear cache [--category=<name>|--category=*]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			{
				Name:      "cache",
				Usage:     "remove cached entries for one category, or all of them with --category=*",
				UsageText: "respcache clear cache [--category=<name>|--category=*]",
				Metadata: map[string]any{
					"meta": meta,
				},
				Flags: []cli.Flag{
					NewCategoryFlag("category (subdirectory) to purge, * for every category"),
				},
				Action: ClearCacheCommandAction,
			},
		},
	}
}
