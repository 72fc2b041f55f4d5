// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package tower

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/towerctl/towerctl/internal/log"
)

// EnsureResourceLabel returns the ID of the resource label with the given
// name/value pair in the workspace, creating it when absent. Resource labels
// are propagated by Forge to the AWS resources it provisions, which is how
// cost-center tags reach Batch instances.
func (c *Client) EnsureResourceLabel(ctx context.Context, wsID int64, name, value string) (int64, error) {
	params := url.Values{}
	params.Set("workspaceId", strconv.FormatInt(wsID, 10))
	params.Set("type", "resource")

	labels, err := c.Paged(ctx, "/labels", params, "labels")
	if err != nil {
		return 0, err
	}
	for _, label := range labels {
		if label.Get("name").String() == name && label.Get("value").String() == value {
			return label.Get("id").Int(), nil
		}
	}

	body := map[string]any{"name": name, "value": value, "resource": true}
	raw, err := c.Request(ctx, http.MethodPost, "/labels", wsParams(wsID), body)
	if err != nil {
		return 0, err
	}

	id := gjson.GetBytes(raw, "id").Int()
	log.Debugf("created resource label: ws=%d, %s=%s, id=%d", wsID, name, value, id)
	return id, nil
}
