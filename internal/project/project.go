// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/towerctl/towerctl/internal/log"
)

// templatePath is the Sceptre template every Tower project stack must use.
const templatePath = "tower-project.j2"

// Config is a parsed Tower project stack config (a Sceptre stack file named
// <stack>-project.yaml).
type Config struct {
	Path       string
	StackName  string
	Template   string
	Parameters map[string]any
	StackTags  map[string]string
}

// InvalidProjectError reports a project config that does not match the Tower
// project contract.
type InvalidProjectError struct {
	Path   string
	Reason string
}

func (e *InvalidProjectError) Error() string {
	return fmt.Sprintf("invalid Tower project config %s: %s", e.Path, e.Reason)
}

// Discover walks dir and loads every "*-project.yaml" file as a project
// config, validating each. Any invalid config aborts the walk.
func Discover(dir string) ([]Config, error) {
	var configs []Config
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), "-project.yaml") {
			return nil
		}

		cfg, err := Load(path)
		if err != nil {
			return err
		}
		configs = append(configs, cfg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover projects under %s: %w", dir, err)
	}

	log.Debugf("projects discovered: dir=%s, count=%d", dir, len(configs))
	return configs, nil
}

// Load parses and validates a single project config file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data, err := decodeSceptre(raw)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg := Config{
		Path:       path,
		StackName:  stringAt(data, "stack_name"),
		Parameters: mapAt(data, "parameters"),
		StackTags:  stringMapAt(data, "stack_tags"),
	}
	if tmpl, ok := data["template"].(map[string]any); ok {
		cfg.Template = fmt.Sprint(tmpl["path"])
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate enforces the Tower project contract: a stack name, the
// tower-project.j2 template, and at least one of the S3 access ARN lists.
func (c *Config) validate() error {
	if c.StackName == "" {
		return &InvalidProjectError{Path: c.Path, Reason: "missing stack_name"}
	}
	if c.Template != templatePath {
		return &InvalidProjectError{
			Path:   c.Path,
			Reason: fmt.Sprintf("template path is %q, want %q", c.Template, templatePath),
		}
	}
	if c.Parameters == nil {
		return &InvalidProjectError{Path: c.Path, Reason: "missing parameters"}
	}
	_, hasRW := c.Parameters["S3ReadWriteAccessArns"]
	_, hasRO := c.Parameters["S3ReadOnlyAccessArns"]
	if !hasRW && !hasRO {
		return &InvalidProjectError{
			Path:   c.Path,
			Reason: "parameters define neither S3ReadWriteAccessArns nor S3ReadOnlyAccessArns",
		}
	}
	return nil
}

// Users derives the workspace user roles from the project's S3 access ARNs:
// read-write principals maintain, read-only principals view.
func (c *Config) Users() Users {
	return Users{
		Maintainers: ExtractEmails(arnList(c.Parameters["S3ReadWriteAccessArns"])),
		Viewers:     ExtractEmails(arnList(c.Parameters["S3ReadOnlyAccessArns"])),
	}
}

// decodeSceptre unmarshals Sceptre YAML into plain maps. Sceptre configs use
// resolver tags like !stack_output that yaml.v3 refuses to decode into
// interface values, so unknown-tagged nodes are resolved to null; the
// resolved values only matter to Sceptre itself.
func decodeSceptre(raw []byte) (map[string]any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return map[string]any{}, nil
	}

	value := resolveNode(root.Content[0])
	data, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level YAML value is %T, want a mapping", value)
	}
	return data, nil
}

func resolveNode(n *yaml.Node) any {
	switch n.Kind {
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			m[n.Content[i].Value] = resolveNode(n.Content[i+1])
		}
		return m
	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			s = append(s, resolveNode(item))
		}
		return s
	case yaml.ScalarNode:
		if strings.HasPrefix(n.Tag, "!!") || n.Tag == "" {
			var v any
			if err := n.Decode(&v); err != nil {
				return n.Value
			}
			return v
		}
		// Sceptre resolver tag (e.g. !stack_output_external).
		return nil
	case yaml.AliasNode:
		return resolveNode(n.Alias)
	default:
		return nil
	}
}

func stringAt(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func mapAt(data map[string]any, key string) map[string]any {
	if v, ok := data[key].(map[string]any); ok {
		return v
	}
	return nil
}

func stringMapAt(data map[string]any, key string) map[string]string {
	raw, ok := data[key].(map[string]any)
	if !ok {
		return nil
	}
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		m[k] = fmt.Sprint(v)
	}
	return m
}

func arnList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	arns := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			arns = append(arns, s)
		}
	}
	return arns
}
