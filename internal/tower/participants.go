// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package tower

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/towerctl/towerctl/internal/log"
)

// Participant is a user or team attached to a workspace. Exactly one of
// MemberID and TeamID is non-zero.
type Participant struct {
	ID       int64  `json:"participantId"`
	MemberID int64  `json:"memberId"`
	TeamID   int64  `json:"teamId"`
	Role     string `json:"wspRole"`
}

// ListParticipants returns the participants of a workspace.
func (c *Client) ListParticipants(ctx context.Context, orgID, wsID int64) ([]Participant, error) {
	endpoint := fmt.Sprintf("/orgs/%d/workspaces/%d/participants", orgID, wsID)
	items, err := c.Paged(ctx, endpoint, nil, "participants")
	if err != nil {
		return nil, err
	}

	participants := make([]Participant, 0, len(items))
	for _, item := range items {
		participants = append(participants, participantFromJSON(item))
	}
	return participants, nil
}

// EnsureParticipant adds a member or a team to a workspace if not already a
// participant. Exactly one of memberID and teamID must be non-zero.
func (c *Client) EnsureParticipant(ctx context.Context, orgID, wsID, memberID, teamID int64) (Participant, error) {
	if (memberID == 0) == (teamID == 0) {
		return Participant{}, ErrAmbiguousRef
	}

	participants, err := c.ListParticipants(ctx, orgID, wsID)
	if err != nil {
		return Participant{}, err
	}
	for _, p := range participants {
		if (memberID != 0 && p.MemberID == memberID) || (teamID != 0 && p.TeamID == teamID) {
			return p, nil
		}
	}

	body := map[string]any{"memberId": nil, "teamId": nil, "userNameOrEmail": nil}
	if memberID != 0 {
		body["memberId"] = memberID
	} else {
		body["teamId"] = teamID
	}

	endpoint := fmt.Sprintf("/orgs/%d/workspaces/%d/participants/add", orgID, wsID)
	raw, err := c.Request(ctx, http.MethodPut, endpoint, nil, body)
	if err != nil {
		return Participant{}, err
	}

	p := participantFromJSON(gjson.GetBytes(raw, "participant"))
	log.Infof("added participant: ws=%d, member=%d, team=%d, id=%d", wsID, memberID, teamID, p.ID)
	return p, nil
}

// SetParticipantRole updates a participant's workspace role. Role must be one
// of owner, admin, maintain, launch, or view.
func (c *Client) SetParticipantRole(ctx context.Context, orgID, wsID, participantID int64, role string) error {
	endpoint := fmt.Sprintf("/orgs/%d/workspaces/%d/participants/%d/role", orgID, wsID, participantID)
	_, err := c.Request(ctx, http.MethodPut, endpoint, nil, map[string]any{"role": role})
	return err
}

// RemoveParticipant detaches a participant from a workspace.
func (c *Client) RemoveParticipant(ctx context.Context, orgID, wsID, participantID int64) error {
	endpoint := fmt.Sprintf("/orgs/%d/workspaces/%d/participants/%d", orgID, wsID, participantID)
	_, err := c.Request(ctx, http.MethodDelete, endpoint, nil, nil)
	return err
}

func participantFromJSON(item gjson.Result) Participant {
	return Participant{
		ID:       item.Get("participantId").Int(),
		MemberID: item.Get("memberId").Int(),
		TeamID:   item.Get("teamId").Int(),
		Role:     item.Get("wspRole").String(),
	}
}
