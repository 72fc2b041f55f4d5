// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package smtpcred derives SES SMTP passwords from IAM secret access keys.
package smtpcred
