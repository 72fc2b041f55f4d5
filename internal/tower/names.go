// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package tower

import "regexp"

var invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// ValidName converts a display name into a name Tower accepts for orgs,
// workspaces, and teams. Tower only allows letters, digits, dashes, and
// underscores; everything else becomes a dash.
func ValidName(name string) string {
	return invalidNameChars.ReplaceAllString(name, "-")
}
