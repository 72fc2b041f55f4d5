// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command defines the CLI command set for towerctl. It wires flags,
// validators, actions, and shell completion for subcommands.
package command
