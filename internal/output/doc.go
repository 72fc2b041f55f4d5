// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output provides sorting, filtering, and emission utilities used by
// commands to present results in various formats.
package output
