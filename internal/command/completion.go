// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/memogo/internal/meta"
)

const bashCompletionScript = `# bash completion for memo
_memo()
{
    local cur prev cmd opts
    COMPREPLY=()
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "inspect policy purge selftest completion --debug --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--store -s --debug -d"

    case "$cmd" in
        inspect)
            opts="$common --func --query -q --color -c --filter -f --output -o --titles -t"
            ;;
        purge)
            opts="$common --all --expired -x --func --older-than"
            ;;
        policy)
            opts="--color -c --output -o --titles -t --debug -d"
            ;;
        selftest)
            opts="--codec --keep --debug -d"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --codec)
            COMPREPLY=( $(compgen -W "json yaml" -- "$cur") )
            return 0
            ;;
        --store|-s)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _memo memo
`

const zshCompletionScript = `#compdef memo

_memo() {
  local -a cmds
  cmds=(
    'inspect:list the entries of a store'
    'policy:show the configured default caching policy'
    'purge:remove entries from a store'
    'selftest:check memoization end to end'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
    '(-s --store)'{-s,--store}'[store file]:store:_files'
    '(-d --debug)'{-d,--debug}'[debug logging]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'memo commands' cmds
    return
  fi

  case $words[2] in
    inspect)
      _arguments -C \
        $common \
        '--func[function name]:func' \
        '(-q --query)'{-q,--query}'[gjson path]:query' \
        '(-c --color)'{-c,--color}'[enable colored text]' \
        '(-f --filter)'{-f,--filter}'[filters to apply]:filters' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '(-t --titles)'{-t,--titles}'[show titles]'
      ;;
    purge)
      _arguments -C \
        $common \
        '--all[remove every entry]' \
        '(-x --expired)'{-x,--expired}'[remove expired entries]' \
        '--func[function name]:func' \
        '--older-than[age]:age'
      ;;
    policy)
      _arguments -C \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '(-t --titles)'{-t,--titles}'[show titles]'
      ;;
    selftest)
      _arguments -C \
        '--codec[result encoding]:codec:(json yaml)' \
        '--keep[keep the selftest store]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _memo memo
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("usage: memo completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "memo completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
