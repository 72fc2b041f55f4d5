// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/towerctl/towerctl/internal/config"
	"github.com/towerctl/towerctl/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// Save the CWD at startup so relative paths in actions resolve from where
	// the user invoked us.
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the towerctl
	// subcommand and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to be
	// a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// allow short if-style local cfg; no actual outer cfg
	cfg2, _ := config.Load(ns) //nolint
	meta := meta.Meta{
		Args:        args,
		Config:      cfg2,
		Context:     ctx,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "towerctl",
		Usage: "Nextflow Tower Control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "towerctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		smtpCommandBuilder(meta),
		outputsCommandBuilder(meta),
		workspacesCommandBuilder(meta),
		provisionCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
