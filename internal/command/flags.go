// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/respcache/internal/cacheutil"
	"github.com/staranto/respcache/internal/meta"
)

// NewGlobalFlags returns the flags shared by every command. Defaults come
// from the config file's cache section; the environment overrides them.
func NewGlobalFlags(meta meta.Meta) (flags []cli.Flag) {
	cc := meta.Config.CacheConfig(meta.DefaultCacheDir)

	color := &cli.BoolWithInverseFlag{
		Name:    "color",
		Aliases: []string{"c"},
		Usage:   "enable colored text output",
		Value:   term.IsTerminal(int(os.Stdout.Fd())),
	}
	if meta.Config.Source != "" {
		color.Sources = cli.NewValueSourceChain(
			yaml.YAML("color", altsrc.StringSourcer(meta.Config.Source)),
		)
	}

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "cache root directory",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar(cacheutil.EnvCacheDir),
			),
			Value: cc.Root,
		},
		&cli.StringFlag{
			Name:    "expires",
			Aliases: []string{"e"},
			Usage:   "default entry TTL, such as 60s, 10m, 2h or 1d",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("RESPCACHE_EXPIRES"),
			),
			Value: cc.Expires,
			Validator: func(value string) error {
				return FlagValidators(value, ExpiresValidator)
			},
		},
		color,
	}

	return
}

// NewCategoryFlag constructs the --category flag. "*" addresses every
// category at once.
func NewCategoryFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "category",
		Aliases: []string{"cat"},
		Usage:   usage,
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator, CategoryValidator)
		},
	}
}

// NewOlderThanFlag constructs the --older-than flag for purge, optionally
// sourced from <ns>.older-than or older-than in the config file.
func NewOlderThanFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "older-than",
		Aliases: []string{"o"},
		Usage:   "remove entries last written longer ago than this (30m, 12h, 7d)",
		Sources: cli.NewValueSourceChain(),
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator, ExpiresValidator)
		},
	}

	if len(params) == 2 && params[1] != "" {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
