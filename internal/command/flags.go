// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var (
	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the schema",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show local timestamps",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.IntFlag{
			Name:  "padding",
			Usage: "spacing between text output columns",
			Value: 2,
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewHostFlag constructs a cli.StringFlag for the "host" flag, optionally
// namespaced to a command and config file. params[1] is the config file. An
// empty value means the host gets inferred from the Route53 alias stack.
func NewHostFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "host",
		Usage: "Tower hostname. Inferred from the Route53 alias stack when unset",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TOWERCTL_HOST"),
			cli.EnvVar("NXF_TOWER_HOST"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewOrgFlag constructs a cli.StringFlag for the "org" flag, optionally
// namespaced to a command and config file. params[1] is the config file.
func NewOrgFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "org",
		Usage: "Tower organization full name",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TOWERCTL_ORG"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewTokenFlag constructs a cli.StringFlag for the "token" flag. The flag is
// only the first stop; tower.ResolveToken falls back to NXF_TOWER_TOKEN,
// TOWER_ACCESS_TOKEN, the config file, and finally an interactive prompt.
func NewTokenFlag() (flag *cli.StringFlag) {
	return &cli.StringFlag{
		Name:  "token",
		Usage: "Tower API token. Falls back to NXF_TOWER_TOKEN/TOWER_ACCESS_TOKEN",
	}
}

// NewProfileFlag constructs a cli.StringFlag for the AWS "profile" flag,
// optionally namespaced to a command and config file.
func NewProfileFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "profile",
		Usage: "AWS shared config profile. Defaults to the ambient AWS setup",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TOWERCTL_PROFILE"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewRegionFlag constructs a cli.StringFlag for the "region" flag, optionally
// namespaced to a command and config file.
func NewRegionFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "region",
		Aliases: []string{"r"},
		Usage:   "AWS region",
		Value:   "us-east-1",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TOWERCTL_REGION"),
			cli.EnvVar("AWS_REGION"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the given executable exists on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
