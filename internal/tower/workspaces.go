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

// Workspace is the subset of the Tower workspace record consumed here.
type Workspace struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
}

// ListWorkspaces returns the workspaces under an organization.
func (c *Client) ListWorkspaces(ctx context.Context, orgID int64) ([]Workspace, error) {
	endpoint := fmt.Sprintf("/orgs/%d/workspaces", orgID)
	raw, err := c.Request(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	// Array() maps a null or missing list to empty.
	var workspaces []Workspace
	for _, ws := range gjson.GetBytes(raw, "workspaces").Array() {
		workspaces = append(workspaces, Workspace{
			ID:       ws.Get("id").Int(),
			Name:     ws.Get("name").String(),
			FullName: ws.Get("fullName").String(),
		})
	}
	return workspaces, nil
}

// EnsureWorkspace returns the workspace with the given name under the
// organization, creating a PRIVATE one when absent. The name must already be
// Tower-valid; fullName is free-form.
func (c *Client) EnsureWorkspace(ctx context.Context, orgID int64, name, fullName string) (Workspace, error) {
	workspaces, err := c.ListWorkspaces(ctx, orgID)
	if err != nil {
		return Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.Name == name {
			log.Debugf("workspace exists: id=%d, name=%s", ws.ID, ws.Name)
			return ws, nil
		}
	}

	endpoint := fmt.Sprintf("/orgs/%d/workspaces", orgID)
	body := map[string]any{
		"workspace": map[string]any{
			"name":        name,
			"fullName":    fullName,
			"description": nil,
			"visibility":  "PRIVATE",
		},
	}
	raw, err := c.Request(ctx, http.MethodPost, endpoint, nil, body)
	if err != nil {
		return Workspace{}, err
	}

	ws := gjson.GetBytes(raw, "workspace")
	created := Workspace{
		ID:       ws.Get("id").Int(),
		Name:     ws.Get("name").String(),
		FullName: ws.Get("fullName").String(),
	}
	log.Infof("created workspace: id=%d, name=%s", created.ID, created.Name)
	return created, nil
}
