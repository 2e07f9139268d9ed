// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/respcache/internal/meta"
)

const bashCompletionScript = `# bash completion for respcache
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_respcache()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "clear stat purge completion --dir --expires --color --no-color --help" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--dir -d --expires -e --color -c --no-color"

    if [[ ${COMP_CWORD} -eq 2 && "$cmd" != "completion" ]]; then
        COMPREPLY=( $(compgen -W "cache" -- "$cur") )
        return 0
    fi

    case "$cmd" in
        clear)
            local opts="$common --category --cat"
            ;;
        stat)
            local opts="$common --category --cat"
            ;;
        purge)
            local opts="$common --category --cat --older-than -o"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--dir" || "$prev" == "-d" ]]; then
        COMPREPLY=( $(compgen -o dirnames -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _respcache respcache
`

const zshCompletionScript = `#compdef respcache

_respcache() {
  local -a cmds
  cmds=(
    'clear:clear cached data'
    'stat:show cache statistics'
    'purge:remove stale cached data'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-d --dir)'{-d,--dir}'[cache root directory]:dir:_directories'
  '(-e --expires)'{-e,--expires}'[default entry TTL]:expires'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '--no-color[disable colored text]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'respcache commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    clear|stat)
      _arguments -C \
        $common \
        '(--cat --category)'{--cat,--category}'[category]:category' \
        '1: :(cache)'
      ;;
    purge)
      _arguments -C \
        $common \
        '(--cat --category)'{--cat,--category}'[category]:category' \
        '(-o --older-than)'{-o,--older-than}'[max entry age]:age' \
        '1: :(cache)'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _respcache respcache
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	w := Out(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: respcache completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "respcache completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
