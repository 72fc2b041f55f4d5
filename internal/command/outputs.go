// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/towerctl/towerctl/internal/aws"
	"github.com/towerctl/towerctl/internal/cacheutil"
	"github.com/towerctl/towerctl/internal/config"
	"github.com/towerctl/towerctl/internal/meta"
)

// StackOutput is one CloudFormation output row.
type StackOutput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// outputsDefaultAttrs specifies the default attributes displayed for stack
// outputs.
var outputsDefaultAttrs = []string{".key", ".value"}

// defaultCacheHours is how long cached stack outputs stay fresh. Stack
// outputs only change on deploys, so a day is conservative.
const defaultCacheHours = 24

// outputsCommandAction is the action handler for the "outputs" subcommand. It
// shows the output key/value pairs of a CloudFormation stack, serving them
// from the on-disk cache when fresh.
func outputsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "outputs") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(StackOutput{})) {
		return nil
	}

	config.Config.Namespace = "outputs"

	stackName := cmd.Args().First()
	if stackName == "" {
		return fmt.Errorf("usage: towerctl outputs <stack-name>")
	}

	region := cmd.String("region")
	hours, _ := config.GetInt("cache_hours", defaultCacheHours)

	outputs, cachedAt, err := stackOutputsCached(ctx, cmd, region, stackName, hours)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("\nOutputs for stack %s", stackName)
	if !cachedAt.IsZero() {
		header += fmt.Sprintf(" (cached %s)", humanize.Time(cachedAt))
	}
	cmd.Metadata["header"] = header

	rows := make([]StackOutput, 0, len(outputs))
	for key, value := range outputs {
		if key == "stack_name" {
			continue
		}
		rows = append(rows, StackOutput{Key: key, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	al := BuildAttrs(cmd, outputsDefaultAttrs...)
	return EmitJSONSlice(rows, al, cmd)
}

// stackOutputsCached returns the stack outputs, preferring a fresh cache
// entry. The returned time is the cache entry's age marker; zero means the
// outputs came straight from CloudFormation.
func stackOutputsCached(ctx context.Context, cmd *cli.Command, region, stackName string,
	hours int) (map[string]string, time.Time, error) {

	subdirs := []string{"outputs", region}

	// Purge first so a stale entry cannot be served.
	if err := cacheutil.Purge(hours); err != nil {
		log.WithError(err).Warn("cache purge failed")
	}

	if entry, ok := cacheutil.Read(subdirs, stackName); ok {
		var outputs map[string]string
		if err := json.Unmarshal(entry.Data, &outputs); err == nil {
			cachedAt := time.Now()
			if info, err := os.Stat(entry.Path); err == nil {
				cachedAt = info.ModTime()
			}
			return outputs, cachedAt, nil
		}
		log.Debugf("cache entry unreadable, refetching: key=%s", stackName)
	}

	clients, err := NewAWSClients(ctx, cmd)
	if err != nil {
		return nil, time.Time{}, err
	}
	outputs, err := aws.StackOutputs(ctx, clients.Stacks, stackName)
	if err != nil {
		return nil, time.Time{}, err
	}

	if data, err := json.Marshal(outputs); err == nil {
		if err := cacheutil.Write(subdirs, stackName, data); err != nil {
			log.WithError(err).Warn("cache write failed")
		}
	}
	return outputs, time.Time{}, nil
}

// outputsCommandBuilder constructs the cli.Command for "outputs".
func outputsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "outputs",
		Usage:     "CloudFormation stack output query",
		UsageText: "towerctl outputs <stack-name> [options]",
		Flags: []cli.Flag{
			NewRegionFlag("outputs", meta.Config.Source),
			NewProfileFlag("outputs", meta.Config.Source),
		},
		Action: outputsCommandAction,
		Meta:   meta,
	}).Build()
}
