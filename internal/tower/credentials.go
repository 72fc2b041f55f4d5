// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package tower

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/towerctl/towerctl/internal/log"
)

// ForgeKeys is the AWS key material behind a Tower Forge credentials entry.
type ForgeKeys struct {
	AccessKey     string
	SecretKey     string
	AssumeRoleArn string
}

// EnsureForgeCredentials returns the ID of the AWS credentials entry with the
// given name in the workspace, creating it when absent. The key material is
// fetched lazily via keys so that secrets are only pulled when an entry
// actually has to be created.
func (c *Client) EnsureForgeCredentials(ctx context.Context, wsID int64, name string,
	keys func(context.Context) (ForgeKeys, error)) (string, error) {

	params := url.Values{}
	params.Set("workspaceId", strconv.FormatInt(wsID, 10))

	raw, err := c.Request(ctx, http.MethodGet, "/credentials", params, nil)
	if err != nil {
		return "", err
	}

	// Array() maps a null or missing list to empty.
	var found string
	var stale bool
	for _, cred := range gjson.GetBytes(raw, "credentials").Array() {
		if cred.Get("name").String() != name {
			continue
		}
		if cred.Get("provider").String() != "aws" || cred.Get("deleted").Exists() && cred.Get("deleted").Type != gjson.Null {
			stale = true
			break
		}
		found = cred.Get("id").String()
		break
	}
	if stale {
		return "", fmt.Errorf("credentials %q in workspace %d exist but are deleted or not AWS-backed", name, wsID)
	}
	if found != "" {
		log.Debugf("credentials exist: ws=%d, name=%s, id=%s", wsID, name, found)
		return found, nil
	}

	k, err := keys(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch Forge key material: %w", err)
	}

	body := map[string]any{
		"credentials": map[string]any{
			"name":     name,
			"provider": "aws",
			"keys": map[string]any{
				"accessKey":     k.AccessKey,
				"secretKey":     k.SecretKey,
				"assumeRoleArn": k.AssumeRoleArn,
			},
			"description": fmt.Sprintf("Credentials for %s", name),
		},
	}
	raw, err = c.Request(ctx, http.MethodPost, "/credentials", params, body)
	if err != nil {
		return "", err
	}

	id := gjson.GetBytes(raw, "credentialsId").String()
	log.Infof("created credentials: ws=%d, name=%s, id=%s", wsID, name, id)
	return id, nil
}
