// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/towerctl/towerctl/internal/cacheutil"
	"github.com/towerctl/towerctl/internal/command"
	"github.com/towerctl/towerctl/internal/config"
	"github.com/towerctl/towerctl/internal/log"
	"github.com/towerctl/towerctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	switch {
	case len(args) > 1 && args[1] == "completion":
		// Short-circuit completion: pass args directly.
		return args
	default:
		args = processSetOnly(args)
		log.Debugf("args after set processing: args=%v", args)

		// A @set can re-introduce a flag the user gave explicitly. Keep the
		// last occurrence so the command line wins over the set.
		args = deduplicateFlags(args)
		return args
	}
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	// Pre-create cache directory when caching is enabled.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil && ok {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("cache ensure err: err=%v", err)
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}

// processSetOnly handles the @set logic for all commands, expanding set arguments at the @set position.
func processSetOnly(args []string) []string {
	// Look for an explicit @set argument starting from index 2.
	idx := 2
	set := "defaults"
	removeIdx := -1
	for i, a := range args[idx:] {
		if strings.HasPrefix(a, "@") {
			set = a[1:]
			removeIdx = idx + i
			break
		}
	}
	if removeIdx != -1 {
		// Remove the @set argument.
		args = append(args[:removeIdx], args[removeIdx+1:]...)
		// Expand the set arguments at the removeIdx position.
		setArgs, _ := config.GetStringSlice(args[1] + "." + set)
		for _, arg := range setArgs {
			parts := strings.Fields(arg)
			args = append(args[:removeIdx], append(parts, args[removeIdx:]...)...)
			removeIdx += len(parts)
		}
	}
	return args
}

// booleanFlags lists the flags that never take a value. They must not absorb
// a following positional argument as if it were their value.
var booleanFlags = map[string]bool{
	"--color": true, "-c": true,
	"--local": true, "-l": true,
	"--titles": true, "-t": true,
	"--version": true, "-v": true,
	"--help": true, "-h": true,
	"--dry-run": true,
	"--teams":   true,
	"--schema":  true,
	"--tldr":    true,
	"--debug":   true,
}

// deduplicateFlags removes earlier occurrences of repeated flags, keeping the
// last one at its position. Positional arguments are preserved. A value-taking
// flag token followed by a non-flag token is treated as a flag/value pair
// unless the flag used = syntax.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type group struct {
		name   string // empty for positionals
		tokens []string
	}

	var groups []group
	for i := 2; i < len(args); i++ {
		tok := args[i]
		if !strings.HasPrefix(tok, "-") {
			groups = append(groups, group{tokens: []string{tok}})
			continue
		}

		name := tok
		if eq := strings.Index(tok, "="); eq != -1 {
			name = tok[:eq]
		}
		g := group{name: name, tokens: []string{tok}}
		if !booleanFlags[name] && !strings.Contains(tok, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			g.tokens = append(g.tokens, args[i+1])
			i++
		}
		groups = append(groups, g)
	}

	last := map[string]int{}
	for i, g := range groups {
		if g.name != "" {
			last[g.name] = i
		}
	}

	result := make([]string, 0, len(args))
	result = append(result, args[:2]...)
	for i, g := range groups {
		if g.name != "" && last[g.name] != i {
			continue
		}
		result = append(result, g.tokens...)
	}
	return result
}
