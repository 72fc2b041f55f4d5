// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/towerctl/towerctl/internal/config"
	"github.com/towerctl/towerctl/internal/meta"
	"github.com/towerctl/towerctl/internal/project"
	"github.com/towerctl/towerctl/internal/provision"
)

// ProjectSummary is the row emitted for each discovered project config.
type ProjectSummary struct {
	StackName string `json:"stackName"`
	Path      string `json:"path"`
	Users     int    `json:"users"`
	CanLaunch bool   `json:"canLaunch"`
}

// provisionDefaultAttrs specifies the default attributes displayed for the
// provisioning summary.
var provisionDefaultAttrs = []string{".stackName", ".users", ".canLaunch"}

// defaultWorkspaceDelay paces workspace reconciliation so Tower can finish
// tearing down deleted compute environments before new ones are created.
const defaultWorkspaceDelay = 30 * time.Second

// provisionCommandAction is the action handler for the "provision"
// subcommand. It reconciles the Tower organization, workspaces, participants,
// credentials, and compute environments against the project configs found
// under the given directory.
func provisionCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "provision") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(ProjectSummary{})) {
		return nil
	}

	config.Config.Namespace = "provision"

	dir := cmd.Args().First()
	if dir == "" {
		dir = "."
	}

	configs, err := project.Discover(dir)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		return fmt.Errorf("no *-project.yaml configs found under %s", dir)
	}

	if cmd.Bool("dry-run") {
		rows := make([]ProjectSummary, 0, len(configs))
		for _, cfg := range configs {
			users := cfg.Users()
			rows = append(rows, ProjectSummary{
				StackName: cfg.StackName,
				Path:      cfg.Path,
				Users:     len(users.List()),
				CanLaunch: users.HasLaunchers(),
			})
		}
		cmd.Metadata["header"] = fmt.Sprintf("\nProjects under %s (dry run)", dir)
		al := BuildAttrs(cmd, provisionDefaultAttrs...)
		return EmitJSONSlice(rows, al, cmd)
	}

	orgName := cmd.String("org")
	if orgName == "" {
		return fmt.Errorf("no Tower organization configured (set TOWERCTL_ORG or --org)")
	}

	clients, err := NewAWSClients(ctx, cmd)
	if err != nil {
		return err
	}

	tc, err := NewTowerClient(ctx, cmd, clients.Stacks)
	if err != nil {
		return err
	}

	p := &provision.Provisioner{
		Tower:   tc,
		Stacks:  clients.Stacks,
		Secrets: clients.Secrets,
		Opts: provision.Options{
			OrgName:      orgName,
			VPCStackName: cmd.String("vpc-stack"),
			Region:       cmd.String("region"),
			UseTeams:     cmd.Bool("teams"),
			Delay:        cmd.Duration("delay"),
		},
	}

	if err := p.Run(ctx, configs); err != nil {
		return err
	}
	log.Infof("provisioning complete: projects=%d", len(configs))
	return nil
}

// provisionCommandBuilder constructs the cli.Command for "provision".
func provisionCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "provision",
		Usage:     "reconcile Tower against Sceptre project configs",
		UsageText: "towerctl provision <projects-dir> [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "list the discovered project configs without provisioning",
			},
			&cli.BoolFlag{
				Name:  "teams",
				Usage: "attach workspace roles through per-group teams",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "pause between workspaces",
				Value: defaultWorkspaceDelay,
			},
			&cli.StringFlag{
				Name:  "vpc-stack",
				Usage: "CloudFormation stack exporting the VPC and subnets",
				Value: "nextflow-vpc",
			},
			NewHostFlag("provision", meta.Config.Source),
			NewOrgFlag("provision", meta.Config.Source),
			NewTokenFlag(),
			NewProfileFlag("provision", meta.Config.Source),
			NewRegionFlag("provision", meta.Config.Source),
		},
		Action: provisionCommandAction,
		Meta:   meta,
	}).Build()
}
