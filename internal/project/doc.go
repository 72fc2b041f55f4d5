// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package project loads Tower project stack configs (Sceptre
// <stack>-project.yaml files) and derives the workspace users, roles, and
// resource-label tags encoded in them.
package project
