// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/towerctl/towerctl/internal/aws"
	"github.com/towerctl/towerctl/internal/config"
	"github.com/towerctl/towerctl/internal/meta"
	"github.com/towerctl/towerctl/internal/tower"
)

// workspacesDefaultAttrs specifies the default attributes displayed for
// workspaces.
var workspacesDefaultAttrs = []string{".id", ".name", ".fullName"}

// workspacesCommandAction is the action handler for the "workspaces"
// subcommand. It lists the workspaces under the selected organization.
func workspacesCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "workspaces"

	fn := func(ctx context.Context, cmd *cli.Command) ([]tower.Workspace, error) {
		orgName := cmd.String("org")
		if orgName == "" {
			return nil, fmt.Errorf("no Tower organization configured (set TOWERCTL_ORG or --org)")
		}

		// Host inference needs CloudFormation. Only reach for AWS when the
		// host is not configured anywhere else.
		var stacks aws.StacksAPI
		if cmd.String("host") == "" {
			clients, err := NewAWSClients(ctx, cmd)
			if err != nil {
				return nil, err
			}
			stacks = clients.Stacks
		}

		client, err := NewTowerClient(ctx, cmd, stacks)
		if err != nil {
			return nil, err
		}

		orgs, err := client.ListOrganizations(ctx)
		if err != nil {
			return nil, tower.Friendly(err, tower.ErrorContext{Org: orgName, Operation: "list organizations"})
		}
		for _, org := range orgs {
			if org.FullName == orgName || org.Name == orgName {
				workspaces, err := client.ListWorkspaces(ctx, org.ID)
				if err != nil {
					return nil, tower.Friendly(err, tower.ErrorContext{Org: orgName, Operation: "list workspaces"})
				}
				return workspaces, nil
			}
		}
		return nil, fmt.Errorf("organization %q not found: %w", orgName, tower.ErrNotFound)
	}

	return NewQueryActionRunner(
		"workspaces",
		reflect.TypeOf(tower.Workspace{}),
		workspacesDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// workspacesCommandBuilder constructs the cli.Command for "workspaces".
func workspacesCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "workspaces",
		Usage:     "Tower workspace query",
		UsageText: "towerctl workspaces [options]",
		Flags: []cli.Flag{
			NewHostFlag("workspaces", meta.Config.Source),
			NewOrgFlag("workspaces", meta.Config.Source),
			NewTokenFlag(),
			NewProfileFlag("workspaces", meta.Config.Source),
			NewRegionFlag("workspaces", meta.Config.Source),
		},
		Action: workspacesCommandAction,
		Meta:   meta,
	}).Build()
}
