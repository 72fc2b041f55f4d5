// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"regexp"
	"strings"
)

var invalidTagChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Tags returns the stack tags destined to become Tower resource labels. The
// project name is always present under TowerProject, the CostCenter tag is
// trimmed to its trailing program code, and keys and values are sanitized to
// the character set Tower labels accept.
func (c *Config) Tags() map[string]string {
	tags := make(map[string]string, len(c.StackTags)+1)
	for k, v := range c.StackTags {
		tags[k] = v
	}
	tags["TowerProject"] = c.StackName

	// Only keep the program code for the cost center
	if cc, ok := tags["CostCenter"]; ok {
		if idx := strings.LastIndex(cc, "/"); idx != -1 {
			cc = cc[idx+1:]
		}
		tags["CostCenter"] = strings.TrimSpace(cc)
	}

	sanitized := make(map[string]string, len(tags))
	for k, v := range tags {
		sanitized[invalidTagChars.ReplaceAllString(k, "_")] = invalidTagChars.ReplaceAllString(v, "_")
	}
	return sanitized
}
