// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws wraps the AWS SDK v2 plumbing shared by commands: config
// loading, CloudFormation stack output lookups, and Secrets Manager access.
package aws
