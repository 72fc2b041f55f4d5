// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/towerctl/towerctl/internal/meta"
)

const bashCompletionScript = `# bash completion for towerctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_towerctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "smtp outputs workspaces provision completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --output -o --padding --sort -s --titles -t --tldr"

    case "$cmd" in
        smtp)
      local opts="$common --schema --access-key-id --secret-access-key --secret-arn --store --region -r --profile"
            ;;
        outputs)
      local opts="$common --schema --region -r --profile"
            ;;
        workspaces)
      local opts="$common --schema --host --org --token --region -r --profile"
            ;;
        provision)
      local opts="$common --schema --dry-run --teams --delay --vpc-stack --host --org --token --region -r --profile"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  # Offer flags once the current token starts with '-'
  if [[ "$cur" == -* ]]; then
    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
  fi

  # provision and outputs take a positional argument
  case "$cmd" in
    provision)
      COMPREPLY=( $(compgen -o dirnames -- "$cur") )
      ;;
    outputs)
      COMPREPLY=()
      ;;
    *)
      COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
      ;;
  esac
  return 0
}

complete -F _towerctl towerctl
`

const zshCompletionScript = `#compdef towerctl

_towerctl() {
  local -a cmds
  cmds=(
    'smtp:derive SES SMTP credentials'
    'outputs:CloudFormation stack output query'
    'workspaces:Tower workspace query'
    'provision:reconcile Tower against project configs'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '--padding[spacing between columns]:padding'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'towerctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    smtp)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--access-key-id[IAM access key ID]:key' \
        '--secret-access-key[IAM secret access key]:key' \
        '--secret-arn[secret holding the key pair]:arn' \
        '--store[secret to write the login to]:arn' \
        '(-r --region)'{-r,--region}'[AWS region]:region' \
        '--profile[AWS profile]:profile'
      ;;
    outputs)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-r --region)'{-r,--region}'[AWS region]:region' \
        '--profile[AWS profile]:profile' \
        '1:stack name:'
      ;;
    workspaces)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--host[Tower hostname]:host' \
        '--org[Tower organization]:org' \
        '--token[Tower API token]:token' \
        '(-r --region)'{-r,--region}'[AWS region]:region' \
        '--profile[AWS profile]:profile'
      ;;
    provision)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--dry-run[list discovered projects only]' \
        '--teams[use per-group teams]' \
        '--delay[pause between workspaces]:duration' \
        '--vpc-stack[VPC stack name]:stack' \
        '--host[Tower hostname]:host' \
        '--org[Tower organization]:org' \
        '--token[Tower API token]:token' \
        '(-r --region)'{-r,--region}'[AWS region]:region' \
        '--profile[AWS profile]:profile' \
        '1:projects directory:_directories'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _towerctl towerctl towerctl
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: towerctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "towerctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
