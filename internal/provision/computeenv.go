// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"fmt"
	"strings"

	"github.com/towerctl/towerctl/internal/tower"
)

// ceVersion tags compute environment names. Increment it when changing the
// recipe below; cleanupComputeEnvs retires environments carrying older tags.
const ceVersion = "v12"

// Provisioning models for Batch Forge.
const (
	ModelSpot     = "SPOT"
	ModelOnDemand = "EC2"
)

// Listing all x86-64 (no Graviton) C/M/R-family (no GPU) instance types.
// Limiting to 32 vCPUs (8xlarge) for incremental scaling (max $2/hr).
// Avoiding costly subtypes (e.g., r5b, r5n, r5d) until we benchmark them.
var instanceTypes = []string{
	// large instance (2 vCPUs)
	"c6a.large", "c5a.large", "c6i.large", "m5a.large", "m6a.large",
	"m6i.large", "r5a.large", "r6a.large", "r6i.large",
	// xlarge instance (4 vCPUs)
	"c6a.xlarge", "c5a.xlarge", "c6i.xlarge", "m5a.xlarge", "m6a.xlarge",
	"m6i.xlarge", "r5a.xlarge", "r6a.xlarge", "r6i.xlarge",
	// 2xlarge instance (8 vCPUs)
	"c6a.2xlarge", "c5a.2xlarge", "c6i.2xlarge", "m5a.2xlarge", "m6a.2xlarge",
	"m6i.2xlarge", "r5a.2xlarge", "r6a.2xlarge", "r6i.2xlarge",
	// 4xlarge instance (16 vCPUs)
	"c6a.4xlarge", "c5a.4xlarge", "c6i.4xlarge", "m5a.4xlarge", "m6a.4xlarge",
	"m6i.4xlarge", "r5a.4xlarge", "r6a.4xlarge", "r6i.4xlarge",
	// 8xlarge instance (32 vCPUs)
	"c6a.8xlarge", "c5a.8xlarge", "c6i.8xlarge", "m5a.8xlarge", "m6a.8xlarge",
	"m6i.8xlarge", "r5a.8xlarge", "r6a.8xlarge", "r6i.8xlarge",
}

// Longer ECS timeouts than the defaults; large genomics containers can take
// a while to pull and start.
var ecsConfig = strings.Join([]string{
	"ECS_CONTAINER_STOP_TIMEOUT=10m",
	"ECS_CONTAINER_START_TIMEOUT=10m",
	"ECS_CONTAINER_CREATE_TIMEOUT=10m",
}, "\n")

// buildComputeEnv renders the Batch Forge compute environment request for a
// project. The shape is modeled after a request made by the Tower web
// client.
func buildComputeEnv(name, model, credentialsID string, labelIDs []int64,
	stack, vpc map[string]string, region string) tower.ComputeEnvRequest {

	// 'BEST_FIT' ensures that smaller instances are used, which limits the
	// number of jobs per instance. It also ensures that the head job is
	// isolated. For SPOT, "instance types that are less likely to be
	// interrupted are preferred" according to the AWS docs.
	allocStrategy := "BEST_FIT"
	if model == ModelSpot {
		allocStrategy = "SPOT_CAPACITY_OPTIMIZED"
	}

	subnets := make([]string, 0, len(vpcOutputSubnets))
	for _, key := range vpcOutputSubnets {
		if subnet, ok := vpc[key]; ok {
			subnets = append(subnets, subnet)
		}
	}

	cliPath := "/home/ec2-user/miniconda/bin/aws"
	preRunScript := "NXF_OPTS='-Xms7g -Xmx14g'"

	return tower.ComputeEnvRequest{
		LabelIDs: labelIDs,
		ComputeEnv: tower.ComputeEnvSpec{
			Name:          name,
			Platform:      "aws-batch",
			CredentialsID: credentialsID,
			Config: tower.ComputeConfig{
				CLIPath:          &cliPath,
				ComputeJobRole:   stack[outputForgeWorkJobRole],
				ConfigMode:       "Batch Forge",
				ExecutionRole:    stack[outputForgeExecRole],
				Fusion2Enabled:   false,
				HeadJobCPUs:      8,
				HeadJobMemoryMB:  15000,
				HeadJobRole:      stack[outputForgeHeadJobRole],
				PreRunScript:     &preRunScript,
				Region:           region,
				ResourceLabelIDs: labelIDs,
				WaveEnabled:      true,
				WorkDir:          fmt.Sprintf("s3://%s/work", stack[outputScratchBucket]),
				Forge: tower.ForgeConfig{
					AllocStrategy:     allocStrategy,
					AllowBuckets:      []string{},
					DisposeOnDeletion: true,
					EBSAutoScale:      true,
					EBSBlockSize:      1000,
					EBSBootSize:       1000,
					ECSConfig:         ecsConfig,
					EFSCreate:         false,
					GPUEnabled:        false,
					InstanceTypes:     instanceTypes,
					MaxCPUs:           1000,
					MinCPUs:           0,
					SecurityGroups:    []string{},
					Subnets:           subnets,
					Type:              model,
					VPCID:             vpc[vpcOutputID],
				},
			},
		},
	}
}
