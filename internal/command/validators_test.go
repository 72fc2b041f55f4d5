// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerctl/towerctl/internal/smtpcred"
)

func TestOutputValidator_ValidValues(t *testing.T) {
	for _, v := range []string{"text", "json", "raw", "yaml"} {
		assert.NoError(t, OutputValidator(v), v)
	}
}

func TestOutputValidator_InvalidValues(t *testing.T) {
	for _, v := range []string{"xml", "table", "TEXT", ""} {
		assert.Error(t, OutputValidator(v), v)
	}
}

func TestSESRegionValidator_Supported(t *testing.T) {
	for _, region := range []string{"us-east-1", "us-west-2", "eu-west-1", "us-gov-west-1"} {
		assert.NoError(t, SESRegionValidator(region), region)
	}
}

func TestSESRegionValidator_Unsupported(t *testing.T) {
	err := SESRegionValidator("eu-north-1")
	require.Error(t, err)

	var unsupported *smtpcred.UnsupportedRegionError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "eu-north-1", unsupported.Region)
	assert.Contains(t, err.Error(), "eu-north-1")
}

func TestSESRegionValidator_NonString(t *testing.T) {
	assert.Error(t, SESRegionValidator(42))
}

func TestFlagValidators_Empty(t *testing.T) {
	assert.NoError(t, FlagValidators("anything"))
}

func TestFlagValidators_AllPass(t *testing.T) {
	pass := func(any) error { return nil }
	assert.NoError(t, FlagValidators("json", pass, OutputValidator))
}

func TestFlagValidators_FirstErrorWins(t *testing.T) {
	first := func(any) error { return fmt.Errorf("first") }
	second := func(any) error { return fmt.Errorf("second") }

	err := FlagValidators("value", first, second)
	require.Error(t, err)
	assert.Equal(t, "first", err.Error())
}
