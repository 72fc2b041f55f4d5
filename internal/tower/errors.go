// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package tower

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for validation and unsupported cases. These enable callers
// to detect specific conditions via errors.Is/As while keeping messages
// consistent.
var (
	ErrHostNotSet   = errors.New("host is not set")
	ErrTokenNotSet  = errors.New("token is not set")
	ErrOrgNotSet    = errors.New("organization is not set")
	ErrNotFound     = errors.New("resource not found")
	ErrAmbiguousRef = errors.New("exactly one of member or team must be given")
)

// ErrorContext carries input context for improving API error messages.
type ErrorContext struct {
	Host      string
	Org       string
	Workspace string
	Operation string // e.g., "list workspaces", "add member"
}

// Friendly wraps a Tower API error with a contextual, user-friendly message
// while preserving the original error for inspection via errors.Is/As.
func Friendly(err error, ctx ErrorContext) error {
	if err == nil {
		return nil
	}

	host := nonEmpty(ctx.Host, "<unknown>")
	op := nonEmpty(ctx.Operation, "request")

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%s on %s: authentication failed (401). Set NXF_TOWER_TOKEN or TOWER_ACCESS_TOKEN: %w",
				op, host, err)
		case http.StatusForbidden:
			return fmt.Errorf("%s on %s: access denied (403) for org=%q workspace=%q: %w",
				op, host, ctx.Org, ctx.Workspace, err)
		case http.StatusNotFound:
			if ctx.Workspace != "" {
				return fmt.Errorf("%s: workspace %q not found in organization %q on %s (404): %w",
					op, ctx.Workspace, nonEmpty(ctx.Org, "<unknown>"), host, err)
			}
			return fmt.Errorf("%s: organization %q not found on %s (404): %w",
				op, nonEmpty(ctx.Org, "<unknown>"), host, err)
		}
	}

	// Unknown error: provide generic context and wrap
	return fmt.Errorf("%s on %s for org=%q workspace=%q: %w",
		op, host, ctx.Org, ctx.Workspace, err)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
