// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"regexp"

	"github.com/towerctl/towerctl/internal/log"
)

// Role names as Tower expects them, in decreasing privilege order.
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleMaintain = "maintain"
	RoleLaunch   = "launch"
	RoleView     = "view"
)

// Users groups a project's users (as emails) by their Tower workspace role.
type Users struct {
	Owners      []string
	Admins      []string
	Maintainers []string
	Launchers   []string
	Viewers     []string
}

// Assignment pairs a user email with a user group and Tower role.
type Assignment struct {
	Email string
	Group string
	Role  string
}

// Team is a user group destined to become a Tower team with a shared role.
type Team struct {
	Group  string
	Role   string
	Emails []string
}

// List returns every user with their group and Tower role, in privilege
// order.
func (u Users) List() []Assignment {
	groups := []struct {
		name   string
		role   string
		emails []string
	}{
		{"owners", RoleOwner, u.Owners},
		{"admins", RoleAdmin, u.Admins},
		{"maintainers", RoleMaintain, u.Maintainers},
		{"launchers", RoleLaunch, u.Launchers},
		{"viewers", RoleView, u.Viewers},
	}

	var assignments []Assignment
	for _, g := range groups {
		for _, email := range g.emails {
			assignments = append(assignments, Assignment{Email: email, Group: g.name, Role: g.role})
		}
	}
	return assignments
}

// Teams returns the non-empty user groups as teams.
func (u Users) Teams() []Team {
	grouped := map[string]*Team{}
	var order []string
	for _, a := range u.List() {
		team, ok := grouped[a.Group]
		if !ok {
			team = &Team{Group: a.Group, Role: a.Role}
			grouped[a.Group] = team
			order = append(order, a.Group)
		}
		team.Emails = append(team.Emails, a.Email)
	}

	teams := make([]Team, 0, len(order))
	for _, group := range order {
		teams = append(teams, *grouped[group])
	}
	return teams
}

// HasLaunchers reports whether at least one user can launch a workflow,
// which is the trigger for provisioning compute environments.
func (u Users) HasLaunchers() bool {
	return len(u.Owners)+len(u.Admins)+len(u.Maintainers)+len(u.Launchers) > 0
}

// roleSessionRegex matches assumed-role ARNs whose role session name is an
// email, e.g. arn:aws:sts::123:assumed-role/AWSReservedSSO_X/jane@sagebase.org.
var roleSessionRegex = regexp.MustCompile(
	`.*/(?P<session_name>[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})$`)

// ExtractEmails pulls role session emails out of assumed-role ARNs. ARNs
// without an email session name are logged and skipped; duplicates are
// dropped.
func ExtractEmails(arns []string) []string {
	seen := map[string]struct{}{}
	var emails []string
	for _, arn := range arns {
		match := roleSessionRegex.FindStringSubmatch(arn)
		if match == nil {
			log.Warnf("listed ARN (%s) doesn't follow expected format: "+
				"'arn:aws:sts::<account_id>:<role_name>:<email>'", arn)
			continue
		}
		email := match[1]
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}
	return emails
}
