// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package tower

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/towerctl/towerctl/internal/log"
)

// EnsureMember adds a user (by email) to the organization if they are not a
// member yet and returns their member ID.
func (c *Client) EnsureMember(ctx context.Context, orgID int64, email string) (int64, error) {
	endpoint := fmt.Sprintf("/orgs/%d/members", orgID)

	params := url.Values{}
	params.Set("search", email)
	matches, err := c.Paged(ctx, endpoint, params, "members")
	if err != nil {
		return 0, err
	}
	if len(matches) == 1 && matches[0].Get("email").String() == email {
		return matches[0].Get("memberId").Int(), nil
	}

	raw, err := c.Request(ctx, http.MethodPut, endpoint+"/add", nil, map[string]any{"user": email})
	if err != nil {
		return 0, err
	}
	// Adding an existing member yields a 2xx response with a message like
	// "User '<username>' is already a member"; the member ID then has to be
	// looked up by username since the add response carries no member record.
	if msg := gjson.GetBytes(raw, "message").String(); strings.Contains(msg, "already a member") {
		username := usernameFromMessage(msg)
		return c.memberIDByUsername(ctx, orgID, username)
	}

	memberID := gjson.GetBytes(raw, "member.memberId").Int()
	log.Infof("added member: org=%d, email=%s, id=%d", orgID, email, memberID)
	return memberID, nil
}

// EnsureTeam creates a team under the organization if it does not exist and
// returns its ID.
func (c *Client) EnsureTeam(ctx context.Context, orgID int64, name string) (int64, error) {
	endpoint := fmt.Sprintf("/orgs/%d/teams", orgID)
	teams, err := c.Paged(ctx, endpoint, nil, "teams")
	if err != nil {
		return 0, err
	}
	for _, team := range teams {
		if team.Get("name").String() == name {
			return team.Get("teamId").Int(), nil
		}
	}

	body := map[string]any{
		"team": map[string]any{"name": name, "description": nil, "avatar": nil},
	}
	raw, err := c.Request(ctx, http.MethodPost, endpoint, nil, body)
	if err != nil {
		return 0, err
	}
	teamID := gjson.GetBytes(raw, "team.teamId").Int()
	log.Infof("created team: org=%d, name=%s, id=%d", orgID, name, teamID)
	return teamID, nil
}

// AddTeamMember adds a user to a team and returns their member ID. Adding an
// existing team member is not an error.
func (c *Client) AddTeamMember(ctx context.Context, orgID, teamID int64, email string) (int64, error) {
	endpoint := fmt.Sprintf("/orgs/%d/teams/%d/members", orgID, teamID)
	raw, err := c.Request(ctx, http.MethodPost, endpoint, nil, map[string]any{"userNameOrEmail": email})
	if err != nil {
		return 0, err
	}
	if msg := gjson.GetBytes(raw, "message").String(); strings.Contains(msg, "already") {
		return c.EnsureMember(ctx, orgID, email)
	}
	return gjson.GetBytes(raw, "member.memberId").Int(), nil
}

// RemoveTeamMember removes a member from a team.
func (c *Client) RemoveTeamMember(ctx context.Context, orgID, teamID, memberID int64) error {
	endpoint := fmt.Sprintf("/orgs/%d/teams/%d/members/%d/delete", orgID, teamID, memberID)
	_, err := c.Request(ctx, http.MethodDelete, endpoint, nil, nil)
	return err
}

// TeamMemberIDs returns the member IDs currently on a team.
func (c *Client) TeamMemberIDs(ctx context.Context, orgID, teamID int64) ([]int64, error) {
	endpoint := fmt.Sprintf("/orgs/%d/teams/%d/members", orgID, teamID)
	members, err := c.Paged(ctx, endpoint, nil, "members")
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.Get("memberId").Int())
	}
	return ids, nil
}

func (c *Client) memberIDByUsername(ctx context.Context, orgID int64, username string) (int64, error) {
	endpoint := fmt.Sprintf("/orgs/%d/members", orgID)
	members, err := c.Paged(ctx, endpoint, nil, "members")
	if err != nil {
		return 0, err
	}
	for _, member := range members {
		if member.Get("userName").String() == username {
			return member.Get("memberId").Int(), nil
		}
	}
	return 0, fmt.Errorf("member %q: %w", username, ErrNotFound)
}

// usernameFromMessage pulls the quoted username out of the "already a member"
// message.
func usernameFromMessage(msg string) string {
	parts := strings.Split(msg, "'")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
