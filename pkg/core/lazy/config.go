// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Config holds the tuning parameters of the lazy graph.
//
// The reduce splitting parameters only change the shape of the generated kernels, never their results.
type Config struct {
	// ReduceSplitThreshold is the minimum reduction ratio (input size / output size) for a reduction
	// to be considered for splitting in two stages.
	ReduceSplitThreshold int

	// SplitDivisorBase is the number whose divisors are tried as split factors of the reduced axis.
	SplitDivisorBase int

	// SplitMinDivisor is the smallest split factor accepted.
	SplitMinDivisor int

	// SplitMinHeuristic is the minimum score (divisor / stride of the axis) accepted.
	SplitMinHeuristic float64

	// Cache enables the structural interning of nodes.
	Cache bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ReduceSplitThreshold: 32768,
		SplitDivisorBase:     256,
		SplitMinDivisor:      16,
		SplitMinHeuristic:    0.1,
		Cache:                true,
	}
}

// Environment variables read by ConfigFromEnv.
const (
	EnvReduceSplitThreshold = "LAZYGRAPH_REDUCEOP_SPLIT_THRESHOLD"
	EnvSplitDivisorBase     = "LAZYGRAPH_SPLIT_DIVISOR_BASE"
	EnvSplitMinDivisor      = "LAZYGRAPH_SPLIT_MIN_DIVISOR"
	EnvSplitMinHeuristic    = "LAZYGRAPH_SPLIT_MIN_HEURISTIC"
	EnvCache                = "LAZYGRAPH_CACHE"
)

type configParam struct {
	key, env string
	set      func(c *Config, value string) error
}

func parseInt(target *int) func(string) error {
	return func(value string) error {
		v, err := strconv.Atoi(strings.ReplaceAll(value, "_", ""))
		if err != nil {
			return err
		}
		if v <= 0 {
			return errors.Errorf("value must be positive, got %d", v)
		}
		*target = v
		return nil
	}
}

var configParams = []configParam{
	{"split_threshold", EnvReduceSplitThreshold, func(c *Config, value string) error {
		return parseInt(&c.ReduceSplitThreshold)(value)
	}},
	{"split_divisor_base", EnvSplitDivisorBase, func(c *Config, value string) error {
		return parseInt(&c.SplitDivisorBase)(value)
	}},
	{"split_min_divisor", EnvSplitMinDivisor, func(c *Config, value string) error {
		return parseInt(&c.SplitMinDivisor)(value)
	}},
	{"split_min_heuristic", EnvSplitMinHeuristic, func(c *Config, value string) (err error) {
		c.SplitMinHeuristic, err = strconv.ParseFloat(value, 64)
		return
	}},
	{"cache", EnvCache, func(c *Config, value string) error {
		if value == "0" || value == "1" {
			c.Cache = value == "1"
			return nil
		}
		v, err := strconv.ParseBool(value)
		c.Cache = v
		return err
	}},
}

// ConfigFromEnv returns the DefaultConfig overwritten by the LAZYGRAPH_* environment variables that are set.
func ConfigFromEnv() (Config, error) {
	c := DefaultConfig()
	for _, p := range configParams {
		value, found := os.LookupEnv(p.env)
		if !found {
			continue
		}
		if err := p.set(&c, value); err != nil {
			return c, errors.Wrapf(err, "failed to parse environment variable %s=%q", p.env, value)
		}
	}
	return c, nil
}

// ParseConfig parses a configuration string formatted as "key1=value1,key2=value2,..." on top of the
// DefaultConfig. Valid keys are "split_threshold", "split_divisor_base", "split_min_divisor",
// "split_min_heuristic" and "cache".
func ParseConfig(config string) (Config, error) {
	return DefaultConfig().Parse(config)
}

// Parse applies a configuration string (see ParseConfig) on top of c.
func (c Config) Parse(config string) (Config, error) {
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return c, errors.Errorf("invalid lazy graph configuration %q: expected key=value, got %q", config, part)
		}
		key = strings.TrimSpace(key)
		idx := -1
		for ii, p := range configParams {
			if p.key == key {
				idx = ii
				break
			}
		}
		if idx < 0 {
			return c, errors.Errorf("unknown lazy graph configuration key %q in %q", key, config)
		}
		if err := configParams[idx].set(&c, strings.TrimSpace(value)); err != nil {
			return c, errors.Wrapf(err, "failed to parse value %q for configuration key %q", value, key)
		}
	}
	return c, nil
}
