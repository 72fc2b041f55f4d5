// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller traverses JSON documents to extract
// useful views for commands that need deeper inspection.
package driller
