// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)

	c, err = ParseConfig("split_threshold=1_024, split_min_divisor=8,split_min_heuristic=0.5,cache=false")
	require.NoError(t, err)
	assert.Equal(t, 1024, c.ReduceSplitThreshold)
	assert.Equal(t, 8, c.SplitMinDivisor)
	assert.Equal(t, 256, c.SplitDivisorBase)
	assert.Equal(t, 0.5, c.SplitMinHeuristic)
	assert.False(t, c.Cache)

	for _, bad := range []string{"split_threshold", "foo=1", "split_threshold=-3", "split_divisor_base=x", "cache=maybe"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseConfig(bad)
			require.Error(t, err)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvReduceSplitThreshold, "64")
	t.Setenv(EnvCache, "0")
	c, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 64, c.ReduceSplitThreshold)
	assert.False(t, c.Cache)

	t.Setenv(EnvSplitMinHeuristic, "not-a-number")
	_, err = ConfigFromEnv()
	require.ErrorContains(t, err, EnvSplitMinHeuristic)
}
