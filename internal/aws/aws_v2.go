// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	cfnv2 "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	smv2 "github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/towerctl/towerctl/internal/log"
)

// options holds optional overrides for AWS config loading.
type options struct {
	profile string
	region  string
	retryer func() awsv2.Retryer
}

// Option customizes how AWS config is loaded.
// Default behavior (no options) inherits the shell environment and shared
// config chain (AWS_PROFILE, ~/.aws/config, ~/.aws/credentials, IMDS, etc.).
type Option func(*options)

// LoadAWSConfig loads AWS SDK v2 config. By default it inherits the shell's
// AWS setup (AWS_PROFILE, shared config, env, IMDS). Options can override
// profile, region, and retryer without changing callers.
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log.Debugf("opts applied: profile=%s, region=%s", o.profile, o.region)

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.retryer != nil {
		loadOpts = append(loadOpts, config.WithRetryer(o.retryer))
	}
	log.Debugf("loadOpts built: len=%d", len(loadOpts))

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.Debugf("config load err: err=%v", err)
		return awsv2.Config{}, err
	}
	log.Debugf("config loaded")
	return cfg, nil
}

// NewCloudFormation constructs a v2 CloudFormation client from the provided
// config. Additional service options can be supplied via optFns.
func NewCloudFormation(cfg awsv2.Config, optFns ...func(*cfnv2.Options)) *cfnv2.Client {
	client := cfnv2.NewFromConfig(cfg, optFns...)
	log.Debugf("cloudformation client created")
	return client
}

// NewSecretsManager constructs a v2 Secrets Manager client from the provided
// config. Additional service options can be supplied via optFns.
func NewSecretsManager(cfg awsv2.Config, optFns ...func(*smv2.Options)) *smv2.Client {
	client := smv2.NewFromConfig(cfg, optFns...)
	log.Debugf("secretsmanager client created")
	return client
}

// WithProfile sets the shared config profile. Defaults to AWS_PROFILE/env chain.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override. Defaults to env/profile/metadata chain.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithRetryer injects a custom retryer; if not set, SDK defaults are used.
func WithRetryer(newRetryer func() awsv2.Retryer) Option {
	return func(o *options) { o.retryer = newRetryer }
}

// StacksAPI is the slice of the CloudFormation client used by StackOutputs.
type StacksAPI interface {
	DescribeStacks(ctx context.Context, params *cfnv2.DescribeStacksInput,
		optFns ...func(*cfnv2.Options)) (*cfnv2.DescribeStacksOutput, error)
}

// SecretsAPI is the slice of the Secrets Manager client used by the secret
// helpers.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *smv2.GetSecretValueInput,
		optFns ...func(*smv2.Options)) (*smv2.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *smv2.PutSecretValueInput,
		optFns ...func(*smv2.Options)) (*smv2.PutSecretValueOutput, error)
}

// StackOutputs returns the output key/value pairs of a CloudFormation stack,
// plus a "stack_name" entry for the stack itself.
func StackOutputs(ctx context.Context, client StacksAPI, stackName string) (map[string]string, error) {
	resp, err := client.DescribeStacks(ctx, &cfnv2.DescribeStacksInput{
		StackName: awsv2.String(stackName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe stack %q: %w", stackName, err)
	}
	if len(resp.Stacks) == 0 {
		return nil, fmt.Errorf("stack %q not found", stackName)
	}

	stack := resp.Stacks[0]
	outputs := make(map[string]string, len(stack.Outputs)+1)
	for _, o := range stack.Outputs {
		outputs[awsv2.ToString(o.OutputKey)] = awsv2.ToString(o.OutputValue)
	}
	outputs["stack_name"] = stackName
	log.Debugf("stack outputs fetched: stack=%s, count=%d", stackName, len(outputs))
	return outputs, nil
}

// SecretJSON fetches a Secrets Manager secret and decodes its SecretString
// as a flat JSON object.
func SecretJSON(ctx context.Context, client SecretsAPI, secretID string) (map[string]string, error) {
	resp, err := client.GetSecretValue(ctx, &smv2.GetSecretValueInput{
		SecretId: awsv2.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %q: %w", secretID, err)
	}

	var value map[string]string
	if err := json.Unmarshal([]byte(awsv2.ToString(resp.SecretString)), &value); err != nil {
		return nil, fmt.Errorf("failed to decode secret %q as JSON: %w", secretID, err)
	}
	return value, nil
}

// PutSecretJSON encodes the given map as JSON and stores it as a new version
// of the secret.
func PutSecretJSON(ctx context.Context, client SecretsAPI, secretID string, value map[string]string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode secret value: %w", err)
	}
	if _, err := client.PutSecretValue(ctx, &smv2.PutSecretValueInput{
		SecretId:     awsv2.String(secretID),
		SecretString: awsv2.String(string(raw)),
	}); err != nil {
		return fmt.Errorf("failed to put secret %q: %w", secretID, err)
	}
	log.Debugf("secret updated: id=%s", secretID)
	return nil
}
