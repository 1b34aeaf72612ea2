// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"slices"

	"github.com/gomlx/lazygraph/pkg/core/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/lazy"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// demoGraph builds a few outputs on a graph, to be scheduled together.
type demoGraph struct {
	description string
	build       func(g *lazy.Graph) []*lazy.Buffer
}

func iotaFloat32(g *lazy.Graph, shape ...int) *lazy.Buffer {
	flat := make([]float32, xslices.Prod(shape))
	for ii := range flat {
		flat[ii] = float32(ii)
	}
	return must.M1(g.FromFlat("CPU", flat, shape...))
}

var demoGraphs = map[string]demoGraph{
	"chain": {
		description: "elementwise chain fused into a reduction and a cast",
		build: func(g *lazy.Graph) []*lazy.Buffer {
			a := must.M1(g.FromFlat("CPU", []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 4, 3))
			sum := a.E(ops.OpTypeAdd, nil, a.Const(1)).R(ops.OpTypeReduceSum, 1, 3)
			return []*lazy.Buffer{sum.Cast(dtypes.Float32, false)}
		},
	},
	"pad": {
		description: "padding of a node computed with an operation unsafe under padding",
		build: func(g *lazy.Graph) []*lazy.Buffer {
			x := iotaFloat32(g, 4)
			recip := x.E(ops.OpTypeAdd, nil, x.Const(1)).E(ops.OpTypeRecip, nil)
			return []*lazy.Buffer{recip.Pad([2]int{1, 1}).E(ops.OpTypeNeg, nil)}
		},
	},
	"split": {
		description: "large reduction split in two stages",
		build: func(g *lazy.Graph) []*lazy.Buffer {
			return []*lazy.Buffer{iotaFloat32(g, 1<<16).R(ops.OpTypeReduceMax, 1)}
		},
	},
	"copy": {
		description: "computation copied to another device",
		build: func(g *lazy.Graph) []*lazy.Buffer {
			x := iotaFloat32(g, 2, 3)
			return []*lazy.Buffer{x.Permute(1, 0).E(ops.OpTypeNeg, nil).CopyToDevice("GPU")}
		},
	},
	"fanout": {
		description: "reduction consumed by two outputs",
		build: func(g *lazy.Graph) []*lazy.Buffer {
			x := iotaFloat32(g, 8, 4)
			m := x.R(ops.OpTypeReduceSum, 8, 1).Expand(8, 4)
			centered := x.E(ops.OpTypeSub, nil, m)
			return []*lazy.Buffer{centered, centered.E(ops.OpTypeMul, nil, centered).R(ops.OpTypeReduceMax, 1, 4)}
		},
	},
}

// demoNames returns the sorted names of the demo graphs.
func demoNames() []string {
	names := maps.Keys(demoGraphs)
	slices.Sort(names)
	return names
}

// selectDemos parses the value of -graph.
func selectDemos(flagValue string) ([]string, error) {
	if flagValue == "all" {
		return demoNames(), nil
	}
	if _, found := demoGraphs[flagValue]; !found {
		return nil, errors.Errorf("unknown graph %q, valid values are \"all\" or one of %v", flagValue, demoNames())
	}
	return []string{flagValue}, nil
}
