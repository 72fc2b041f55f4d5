// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/towerctl/towerctl/internal/attrs"
	"github.com/towerctl/towerctl/internal/aws"
	"github.com/towerctl/towerctl/internal/meta"
	"github.com/towerctl/towerctl/internal/output"
	"github.com/towerctl/towerctl/internal/tower"
)

// r53StackName is the CloudFormation stack whose Route53RecordSet output names
// the Tower host. Used when no host is configured anywhere else.
const r53StackName = "nextflow-r53-alias-record"

// r53OutputRecordSet is the output key holding the alias record name.
const r53OutputRecordSet = "Route53RecordSet"

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// DumpSchemaIfRequested writes the attribute schema for the provided type to
// stdout when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t, nil)
		return true
	}
	return false
}

// EmitJSONSlice marshals a slice as JSON and passes it to the common output
// routine.
func EmitJSONSlice(results any, al attrs.AttrList, cmd *cli.Command) error {
	var raw bytes.Buffer
	if err := json.NewEncoder(&raw).Encode(results); err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	output.SliceDiceSpit(raw, al, cmd, "", os.Stdout, nil)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr towerctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "towerctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// AWSClients bundles the AWS service clients the commands share.
type AWSClients struct {
	Stacks  aws.StacksAPI
	Secrets aws.SecretsAPI
}

// NewAWSClients loads AWS config honoring the --profile and --region flags and
// returns the CloudFormation and Secrets Manager clients.
func NewAWSClients(ctx context.Context, cmd *cli.Command) (AWSClients, error) {
	var opts []aws.Option
	if profile := cmd.String("profile"); profile != "" {
		opts = append(opts, aws.WithProfile(profile))
	}
	if region := cmd.String("region"); region != "" {
		opts = append(opts, aws.WithRegion(region))
	}

	cfg, err := aws.LoadAWSConfig(ctx, opts...)
	if err != nil {
		return AWSClients{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return AWSClients{
		Stacks:  aws.NewCloudFormation(cfg),
		Secrets: aws.NewSecretsManager(cfg),
	}, nil
}

// ResolveHost returns the Tower hostname. The --host flag chain (flag, env,
// config file) wins; when all of those are empty the host is inferred from
// the Route53 alias record stack.
func ResolveHost(ctx context.Context, cmd *cli.Command, stacks aws.StacksAPI) (string, error) {
	if host := cmd.String("host"); host != "" {
		return host, nil
	}

	outputs, err := aws.StackOutputs(ctx, stacks, r53StackName)
	if err != nil {
		return "", fmt.Errorf("no Tower host configured and inference from stack %q failed: %w",
			r53StackName, err)
	}
	host := outputs[r53OutputRecordSet]
	if host == "" {
		return "", fmt.Errorf("stack %q has no %s output", r53StackName, r53OutputRecordSet)
	}
	return host, nil
}

// NewTowerClient resolves the host and token and returns an authenticated
// Tower client. stacks may be nil when host inference is not wanted.
func NewTowerClient(ctx context.Context, cmd *cli.Command, stacks aws.StacksAPI) (*tower.Client, error) {
	var host string
	var err error
	if stacks != nil {
		host, err = ResolveHost(ctx, cmd, stacks)
	} else {
		host = cmd.String("host")
	}
	if err != nil {
		return nil, err
	}

	token, err := tower.ResolveToken(cmd.String("token"))
	if err != nil {
		return nil, err
	}
	return tower.NewClient(host, token)
}
