// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package tower

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/towerctl/towerctl/internal/log"
)

// ComputeEnv is the subset of a Tower compute environment record consumed
// here.
type ComputeEnv struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Status   string `json:"status"`
}

// ComputeEnvRequest models the POST /compute-envs payload for an AWS Batch
// Forge environment. It mirrors the request the Tower web client makes, so
// null-vs-absent distinctions matter and optional fields are pointers.
type ComputeEnvRequest struct {
	LabelIDs   []int64        `json:"labelIds"`
	ComputeEnv ComputeEnvSpec `json:"computeEnv"`
}

// ComputeEnvSpec is the environment definition inside a ComputeEnvRequest.
type ComputeEnvSpec struct {
	Name          string        `json:"name"`
	Platform      string        `json:"platform"`
	CredentialsID string        `json:"credentialsId"`
	Config        ComputeConfig `json:"config"`
}

// ComputeConfig is the Batch Forge configuration block.
type ComputeConfig struct {
	CLIPath          *string     `json:"cliPath"`
	ComputeJobRole   string      `json:"computeJobRole"`
	ConfigMode       string      `json:"configMode"`
	Credentials      *string     `json:"credentials"`
	Environment      *string     `json:"environment"`
	ExecutionRole    string      `json:"executionRole"`
	Fusion2Enabled   bool        `json:"fusion2Enabled"`
	HeadJobCPUs      int         `json:"headJobCpus"`
	HeadJobMemoryMB  int         `json:"headJobMemoryMb"`
	HeadJobRole      string      `json:"headJobRole"`
	LogGroup         *string     `json:"logGroup"`
	NVNMEStorage     bool        `json:"nvnmeStorageEnabled"`
	PostRunScript    *string     `json:"postRunScript"`
	PreRunScript     *string     `json:"preRunScript"`
	Region           string      `json:"region"`
	ResourceLabelIDs []int64     `json:"resourceLabelIds"`
	WaveEnabled      bool        `json:"waveEnabled"`
	WorkDir          string      `json:"workDir"`
	Forge            ForgeConfig `json:"forge"`
}

// ForgeConfig is the forge block inside a ComputeConfig.
type ForgeConfig struct {
	AllocStrategy     string    `json:"allocStrategy"`
	AllowBuckets      []string  `json:"allowBuckets"`
	ContainerRegIDs   *[]string `json:"containerRegIds"`
	DisposeOnDeletion bool      `json:"disposeOnDeletion"`
	DragenEnabled     *bool     `json:"dragenEnabled"`
	EBSAutoScale      bool      `json:"ebsAutoScale"`
	EBSBlockSize      int       `json:"ebsBlockSize"`
	EBSBootSize       int       `json:"ebsBootSize"`
	EC2KeyPair        *string   `json:"ec2KeyPair"`
	ECSConfig         string    `json:"ecsConfig"`
	EFSCreate         bool      `json:"efsCreate"`
	GPUEnabled        bool      `json:"gpuEnabled"`
	ImageID           *string   `json:"imageId"`
	InstanceTypes     []string  `json:"instanceTypes"`
	MaxCPUs           int       `json:"maxCpus"`
	MinCPUs           int       `json:"minCpus"`
	SecurityGroups    []string  `json:"securityGroups"`
	Subnets           []string  `json:"subnets"`
	Type              string    `json:"type"`
	VPCID             string    `json:"vpcId"`
}

// ListComputeEnvs returns the compute environments in a workspace.
func (c *Client) ListComputeEnvs(ctx context.Context, wsID int64) ([]ComputeEnv, error) {
	raw, err := c.Request(ctx, http.MethodGet, "/compute-envs", wsParams(wsID), nil)
	if err != nil {
		return nil, err
	}

	// Array() maps a null or missing list to empty, which Tower returns for
	// workspaces with no compute environments.
	var envs []ComputeEnv
	for _, env := range gjson.GetBytes(raw, "computeEnvs").Array() {
		envs = append(envs, ComputeEnv{
			ID:       env.Get("id").String(),
			Name:     env.Get("name").String(),
			Platform: env.Get("platform").String(),
			Status:   env.Get("status").String(),
		})
	}
	return envs, nil
}

// CreateComputeEnv creates a compute environment and returns its ID.
func (c *Client) CreateComputeEnv(ctx context.Context, wsID int64, req ComputeEnvRequest) (string, error) {
	raw, err := c.Request(ctx, http.MethodPost, "/compute-envs", wsParams(wsID), req)
	if err != nil {
		return "", err
	}

	id := gjson.GetBytes(raw, "computeEnvId").String()
	log.Infof("created compute env: ws=%d, name=%s, id=%s", wsID, req.ComputeEnv.Name, id)
	return id, nil
}

// DeleteComputeEnv deletes a compute environment. Tower refuses to delete an
// environment with active jobs via a 2xx response carrying a message; that
// case returns skipped=true and no error.
func (c *Client) DeleteComputeEnv(ctx context.Context, wsID int64, id string) (skipped bool, err error) {
	raw, err := c.Request(ctx, http.MethodDelete, "/compute-envs/"+id, wsParams(wsID), nil)
	if err != nil {
		return false, err
	}
	if msg := gjson.GetBytes(raw, "message").String(); strings.Contains(msg, "has active jobs") {
		return true, nil
	}
	return false, nil
}

// SetPrimaryComputeEnv marks the compute environment as the workspace
// default.
func (c *Client) SetPrimaryComputeEnv(ctx context.Context, wsID int64, id string) error {
	endpoint := fmt.Sprintf("/compute-envs/%s/primary", id)
	_, err := c.Request(ctx, http.MethodPost, endpoint, wsParams(wsID), map[string]any{})
	return err
}

func wsParams(wsID int64) url.Values {
	params := url.Values{}
	params.Set("workspaceId", strconv.FormatInt(wsID, 10))
	return params
}
