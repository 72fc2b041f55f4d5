// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for towerctl's user
// configuration. The configuration is expected to be a YAML document located
// in the user's configuration directory, typically:
//   - Linux/macOS: $XDG_CONFIG_HOME/towerctl.yaml or $HOME/.config/towerctl.yaml
//   - Windows: %APPDATA%/towerctl/towerctl.yaml
//
// Actual resolution relies on os.UserConfigDir which follows platform
// conventions.
package config
