// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/respcache/internal/cacheutil"
	"github.com/staranto/respcache/internal/config"
	"github.com/staranto/respcache/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the respcache
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Debug("running without a config file")
	}
	cfg.Namespace = ns

	defaultDir, _ := cacheutil.Dir()

	meta := meta.Meta{
		Args:            args,
		Config:          cfg,
		Context:         ctx,
		StartingDir:     sd,
		DefaultCacheDir: defaultDir,
	}

	app := &cli.Command{
		Name:   "respcache",
		Usage:  "inspect and clear the on-disk response cache",
		Flags:  NewGlobalFlags(meta),
		Writer: os.Stdout,
	}

	app.Commands = append(app.Commands,
		ClearCommandBuilder(app, meta),
		StatCommandBuilder(app, meta),
		PurgeCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	sortFlags(app)

	return app, nil
}

func sortFlags(cmd *cli.Command) {
	sort.Slice(cmd.Flags, func(i, j int) bool {
		return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
	})
	for _, sub := range cmd.Commands {
		sortFlags(sub)
	}
}
