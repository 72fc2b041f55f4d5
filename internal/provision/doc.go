// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package provision reconciles Nextflow Tower state (organization, members,
// workspaces, participants, credentials, compute environments) against the
// Tower project stacks deployed in AWS.
package provision
