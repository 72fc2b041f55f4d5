// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/towerctl/towerctl/internal/aws"
	"github.com/towerctl/towerctl/internal/log"
	"github.com/towerctl/towerctl/internal/project"
	"github.com/towerctl/towerctl/internal/tower"
)

// VPC stack output keys consumed by Batch Forge.
const (
	vpcOutputID = "VPCId"
)

var vpcOutputSubnets = []string{
	"PrivateSubnet",
	"PrivateSubnet1",
	"PrivateSubnet2",
	"PrivateSubnet3",
}

// Project stack output keys consumed when wiring credentials and compute
// environments.
const (
	outputForgeSecretArn   = "TowerForgeServiceUserAccessKeySecretArn"
	outputForgeServiceRole = "TowerForgeServiceRoleArn"
	outputForgeWorkJobRole = "TowerForgeBatchWorkJobRoleArn"
	outputForgeHeadJobRole = "TowerForgeBatchHeadJobRoleArn"
	outputForgeExecRole    = "TowerForgeBatchExecutionRoleArn"
	outputScratchBucket    = "TowerScratch"
)

// Options controls a provisioning run.
type Options struct {
	// OrgName is the Tower organization full name.
	OrgName string
	// VPCStackName is the CloudFormation stack exporting the VPC and subnets.
	VPCStackName string
	// Region is the AWS region compute environments run in.
	Region string
	// UseTeams attaches workspace roles through per-group teams instead of
	// individual participants.
	UseTeams bool
	// Delay is the pause between workspaces, giving Tower time to tear down
	// deleted compute environments before new ones count against the AWS
	// per-account limit.
	Delay time.Duration
}

// Provisioner reconciles Tower organizations, workspaces, and compute
// environments against a set of project configs.
type Provisioner struct {
	Tower   *tower.Client
	Stacks  aws.StacksAPI
	Secrets aws.SecretsAPI
	Opts    Options
}

// Run provisions every project config in order. The VPC stack and the
// organization are resolved once; each project then gets a workspace with
// reconciled participants, Forge credentials, resource labels, and compute
// environments.
func (p *Provisioner) Run(ctx context.Context, configs []project.Config) error {
	vpc, err := aws.StackOutputs(ctx, p.Stacks, p.Opts.VPCStackName)
	if err != nil {
		return fmt.Errorf("failed to resolve VPC stack %q: %w", p.Opts.VPCStackName, err)
	}

	org, err := p.Tower.EnsureOrganization(ctx, p.Opts.OrgName)
	if err != nil {
		return tower.Friendly(err, tower.ErrorContext{Org: p.Opts.OrgName, Operation: "ensure organization"})
	}

	for i, cfg := range configs {
		if i > 0 && p.Opts.Delay > 0 {
			log.Debugf("waiting between workspaces: delay=%s", p.Opts.Delay)
			select {
			case <-time.After(p.Opts.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := p.provisionProject(ctx, org, vpc, cfg); err != nil {
			return fmt.Errorf("failed to provision project %q: %w", cfg.StackName, err)
		}
	}
	return nil
}

func (p *Provisioner) provisionProject(ctx context.Context, org tower.Organization,
	vpc map[string]string, cfg project.Config) error {

	users := cfg.Users()
	log.Infof("provisioning project: stack=%s, users=%d", cfg.StackName, len(users.List()))

	members, err := p.ensureMembers(ctx, org.ID, users)
	if err != nil {
		return err
	}

	var teams map[int64]string
	if p.Opts.UseTeams {
		if teams, err = p.reconcileTeams(ctx, org.ID, cfg.StackName, users); err != nil {
			return err
		}
	}

	stack, err := aws.StackOutputs(ctx, p.Stacks, cfg.StackName)
	if err != nil {
		return err
	}

	ws, err := p.Tower.EnsureWorkspace(ctx, org.ID, tower.ValidName(cfg.StackName), cfg.StackName)
	if err != nil {
		return tower.Friendly(err, tower.ErrorContext{
			Org: org.FullName, Workspace: cfg.StackName, Operation: "ensure workspace"})
	}

	if p.Opts.UseTeams {
		err = p.attachTeams(ctx, org.ID, ws.ID, teams)
	} else {
		err = p.reconcileParticipants(ctx, org.ID, ws.ID, users, members)
	}
	if err != nil {
		return err
	}

	if err := p.cleanupComputeEnvs(ctx, ws, users.HasLaunchers()); err != nil {
		return err
	}

	if users.HasLaunchers() {
		if err := p.ensureComputeEnvs(ctx, ws, cfg, stack, vpc); err != nil {
			return err
		}
	}
	return nil
}

// ensureMembers adds every project user to the organization and returns the
// email-to-member-ID mapping.
func (p *Provisioner) ensureMembers(ctx context.Context, orgID int64, users project.Users) (map[string]int64, error) {
	members := map[string]int64{}
	for _, a := range users.List() {
		if _, ok := members[a.Email]; ok {
			continue
		}
		memberID, err := p.Tower.EnsureMember(ctx, orgID, a.Email)
		if err != nil {
			return nil, tower.Friendly(err, tower.ErrorContext{Operation: "add member " + a.Email})
		}
		members[a.Email] = memberID
	}
	return members, nil
}

// reconcileTeams creates a "<project>-<group>" team per user group, syncs its
// membership, and returns team IDs mapped to their workspace role.
func (p *Provisioner) reconcileTeams(ctx context.Context, orgID int64, stackName string,
	users project.Users) (map[int64]string, error) {

	prefix := strings.TrimSuffix(stackName, "-project")
	teams := map[int64]string{}
	for _, team := range users.Teams() {
		teamID, err := p.Tower.EnsureTeam(ctx, orgID, fmt.Sprintf("%s-%s", prefix, team.Group))
		if err != nil {
			return nil, err
		}
		teams[teamID] = team.Role

		expected := map[int64]struct{}{}
		for _, email := range team.Emails {
			memberID, err := p.Tower.AddTeamMember(ctx, orgID, teamID, email)
			if err != nil {
				return nil, err
			}
			expected[memberID] = struct{}{}
		}

		// Remove unexpected team members
		current, err := p.Tower.TeamMemberIDs(ctx, orgID, teamID)
		if err != nil {
			return nil, err
		}
		for _, memberID := range current {
			if _, ok := expected[memberID]; !ok {
				if err := p.Tower.RemoveTeamMember(ctx, orgID, teamID, memberID); err != nil {
					return nil, err
				}
				log.Infof("removed stale team member: team=%d, member=%d", teamID, memberID)
			}
		}
	}
	return teams, nil
}

// attachTeams adds each team as a workspace participant with its role.
func (p *Provisioner) attachTeams(ctx context.Context, orgID, wsID int64, teams map[int64]string) error {
	for teamID, role := range teams {
		participant, err := p.Tower.EnsureParticipant(ctx, orgID, wsID, 0, teamID)
		if err != nil {
			return err
		}
		if err := p.Tower.SetParticipantRole(ctx, orgID, wsID, participant.ID, role); err != nil {
			return err
		}
	}
	return nil
}

// reconcileParticipants adds every expected user with their role and removes
// participants that are neither expected nor workspace owners. Owners are
// preserved because the workspace creator is an implicit owner.
func (p *Provisioner) reconcileParticipants(ctx context.Context, orgID, wsID int64,
	users project.Users, members map[string]int64) error {

	current, err := p.Tower.ListParticipants(ctx, orgID, wsID)
	if err != nil {
		return err
	}

	verified := map[int64]struct{}{}
	for _, participant := range current {
		if participant.Role == project.RoleOwner {
			verified[participant.ID] = struct{}{}
		}
	}

	for _, a := range users.List() {
		participant, err := p.Tower.EnsureParticipant(ctx, orgID, wsID, members[a.Email], 0)
		if err != nil {
			return err
		}
		if err := p.Tower.SetParticipantRole(ctx, orgID, wsID, participant.ID, a.Role); err != nil {
			return err
		}
		verified[participant.ID] = struct{}{}
	}

	// Refresh after additions so newly added IDs are seen.
	current, err = p.Tower.ListParticipants(ctx, orgID, wsID)
	if err != nil {
		return err
	}
	for _, participant := range current {
		if _, ok := verified[participant.ID]; !ok {
			if err := p.Tower.RemoveParticipant(ctx, orgID, wsID, participant.ID); err != nil {
				return err
			}
			log.Infof("removed stale participant: ws=%d, participant=%d", wsID, participant.ID)
		}
	}
	return nil
}

// cleanupComputeEnvs deletes compute environments that are not the current
// recipe version, or all of them when nobody can launch. AWS caps Batch
// compute environments at 50 per account, so stale ones cannot be left
// behind.
func (p *Provisioner) cleanupComputeEnvs(ctx context.Context, ws tower.Workspace, hasLaunchers bool) error {
	envs, err := p.Tower.ListComputeEnvs(ctx, ws.ID)
	if err != nil {
		return err
	}

	for _, env := range envs {
		if strings.HasSuffix(env.Name, ceVersion) && hasLaunchers {
			continue
		}
		skipped, err := p.Tower.DeleteComputeEnv(ctx, ws.ID, env.ID)
		if err != nil {
			return err
		}
		if skipped {
			log.Warnf("skipping the deletion of the '%s/%s' compute environment due to active jobs",
				ws.Name, env.Name)
		}
	}
	return nil
}

// ensureComputeEnvs makes sure the project has a SPOT and an on-demand
// compute environment for the current recipe version, creating missing ones.
// The SPOT environment is marked primary when created.
func (p *Provisioner) ensureComputeEnvs(ctx context.Context, ws tower.Workspace,
	cfg project.Config, stack, vpc map[string]string) error {

	spotName := fmt.Sprintf("%s-spot-%s", cfg.StackName, ceVersion)
	ondemandName := fmt.Sprintf("%s-ondemand-%s", cfg.StackName, ceVersion)

	existing := map[string]string{}
	envs, err := p.Tower.ListComputeEnvs(ctx, ws.ID)
	if err != nil {
		return err
	}
	for _, env := range envs {
		if env.Platform != "aws-batch" || (env.Status != "AVAILABLE" && env.Status != "CREATING") {
			continue
		}
		if env.Name == spotName || env.Name == ondemandName {
			existing[env.Name] = env.ID
		}
	}
	if len(existing) == 2 {
		return nil
	}

	credentialsID, err := p.Tower.EnsureForgeCredentials(ctx, ws.ID, cfg.StackName,
		func(ctx context.Context) (tower.ForgeKeys, error) {
			return p.forgeKeys(ctx, stack)
		})
	if err != nil {
		return err
	}

	labelIDs, err := p.ensureLabels(ctx, ws.ID, cfg.Tags())
	if err != nil {
		return err
	}

	if _, ok := existing[spotName]; !ok {
		req := buildComputeEnv(spotName, ModelSpot, credentialsID, labelIDs, stack, vpc, p.Opts.Region)
		id, err := p.Tower.CreateComputeEnv(ctx, ws.ID, req)
		if err != nil {
			return err
		}
		if err := p.Tower.SetPrimaryComputeEnv(ctx, ws.ID, id); err != nil {
			return err
		}
	}
	if _, ok := existing[ondemandName]; !ok {
		req := buildComputeEnv(ondemandName, ModelOnDemand, credentialsID, labelIDs, stack, vpc, p.Opts.Region)
		if _, err := p.Tower.CreateComputeEnv(ctx, ws.ID, req); err != nil {
			return err
		}
	}
	return nil
}

// forgeKeys pulls the Forge service user's access key pair from the secret
// exported by the project stack.
func (p *Provisioner) forgeKeys(ctx context.Context, stack map[string]string) (tower.ForgeKeys, error) {
	secretArn, ok := stack[outputForgeSecretArn]
	if !ok {
		return tower.ForgeKeys{}, fmt.Errorf("stack %q has no %s output", stack["stack_name"], outputForgeSecretArn)
	}

	secret, err := aws.SecretJSON(ctx, p.Secrets, secretArn)
	if err != nil {
		return tower.ForgeKeys{}, err
	}
	return tower.ForgeKeys{
		AccessKey:     secret["aws_access_key_id"],
		SecretKey:     secret["aws_secret_access_key"],
		AssumeRoleArn: stack[outputForgeServiceRole],
	}, nil
}

func (p *Provisioner) ensureLabels(ctx context.Context, wsID int64, tags map[string]string) ([]int64, error) {
	labelIDs := make([]int64, 0, len(tags))
	for name, value := range tags {
		id, err := p.Tower.EnsureResourceLabel(ctx, wsID, name, value)
		if err != nil {
			return nil, err
		}
		labelIDs = append(labelIDs, id)
	}
	return labelIDs, nil
}
