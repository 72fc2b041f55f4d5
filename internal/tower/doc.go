// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package tower is a client for the subset of the Nextflow Tower REST API
// that towerctl drives: organizations, workspaces, members, teams,
// participants, credentials, resource labels, and Batch Forge compute
// environments. All mutating operations are get-or-create so repeated runs
// converge instead of erroring.
package tower
