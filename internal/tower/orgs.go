// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package tower

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/towerctl/towerctl/internal/log"
)

// Organization is the subset of the Tower organization record consumed here.
type Organization struct {
	ID       int64  `json:"orgId"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
}

// ListOrganizations returns the organizations visible to the token.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	raw, err := c.Request(ctx, http.MethodGet, "/orgs", nil, nil)
	if err != nil {
		return nil, err
	}

	// Array() maps a null or missing list to empty.
	var orgs []Organization
	for _, org := range gjson.GetBytes(raw, "organizations").Array() {
		orgs = append(orgs, Organization{
			ID:       org.Get("orgId").Int(),
			Name:     org.Get("name").String(),
			FullName: org.Get("fullName").String(),
		})
	}
	return orgs, nil
}

// EnsureOrganization returns the organization with the given full name,
// creating it when absent. The short name is the sanitized full name.
func (c *Client) EnsureOrganization(ctx context.Context, fullName string) (Organization, error) {
	orgs, err := c.ListOrganizations(ctx)
	if err != nil {
		return Organization{}, err
	}
	for _, org := range orgs {
		if org.FullName == fullName {
			log.Debugf("organization exists: id=%d, name=%s", org.ID, org.Name)
			return org, nil
		}
	}

	name := ValidName(fullName)
	body := map[string]any{
		"organization": map[string]any{
			"name":        name,
			"fullName":    fullName,
			"description": nil,
			"location":    nil,
			"website":     nil,
			"logo":        nil,
		},
		"logoId": nil,
	}
	raw, err := c.Request(ctx, http.MethodPost, "/orgs", nil, body)
	if err != nil {
		return Organization{}, err
	}

	org := gjson.GetBytes(raw, "organization")
	created := Organization{
		ID:       org.Get("orgId").Int(),
		Name:     org.Get("name").String(),
		FullName: org.Get("fullName").String(),
	}
	log.Infof("created organization: id=%d, name=%s", created.ID, created.Name)
	return created, nil
}
