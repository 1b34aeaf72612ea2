// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"testing"

	"github.com/gomlx/lazygraph/pkg/core/device"
	"github.com/gomlx/lazygraph/pkg/core/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// iotaInput returns a realized float32 node on "CPU" with values 0, 1, 2, ...
func iotaInput(g *Graph, shape ...int) *Buffer {
	flat := make([]float32, xslices.Prod(shape))
	for ii := range flat {
		flat[ii] = float32(ii)
	}
	return must.M1(g.FromFlat("CPU", flat, shape...))
}

func TestCacheIdentity(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4, 4)
	y := iotaInput(g, 4, 4)

	t.Run("cached", func(t *testing.T) {
		assert.Same(t, x.E(ops.OpTypeAdd, nil, y), x.E(ops.OpTypeAdd, nil, y))
		assert.NotSame(t, x.E(ops.OpTypeAdd, nil, y), y.E(ops.OpTypeAdd, nil, x))
		assert.NotSame(t, x.E(ops.OpTypeAdd, nil, y), x.E(ops.OpTypeMul, nil, y))
		assert.Same(t, x.Permute(1, 0), x.Permute(1, 0))
		assert.NotSame(t, x.Permute(1, 0), y.Permute(1, 0))
		assert.Same(t, x.R(ops.OpTypeReduceSum, 4, 1), x.R(ops.OpTypeReduceSum, 4, 1))
		assert.NotSame(t, x.R(ops.OpTypeReduceSum, 4, 1), x.R(ops.OpTypeReduceMax, 4, 1))
		assert.Same(t, x.Cast(dtypes.Int32, false), x.Cast(dtypes.Int32, false))
		assert.NotSame(t, x.Cast(dtypes.Int32, false), x.Cast(dtypes.Int32, true))
	})

	t.Run("not cached", func(t *testing.T) {
		assert.NotSame(t, g.Empty("CPU", dtypes.Float32, 2), g.Empty("CPU", dtypes.Float32, 2))
		assert.NotSame(t, g.Scalar("CPU", dtypes.Float32, 1), g.Scalar("CPU", dtypes.Float32, 1))
		fn := func(out *device.Buffer, inputs []*device.Buffer) error { return nil }
		assert.NotSame(t, g.Custom("CPU", dtypes.Float32, []int{2}, fn, x), g.Custom("CPU", dtypes.Float32, []int{2}, fn, x))
		assert.NotSame(t, x.CopyToDevice("GPU"), x.CopyToDevice("GPU"))
	})

	t.Run("disabled", func(t *testing.T) {
		g := NewGraphWithConfig(must.M1(ParseConfig("cache=false")))
		x := iotaInput(g, 4)
		assert.NotSame(t, x.E(ops.OpTypeNeg, nil), x.E(ops.OpTypeNeg, nil))
	})
}

func TestZeroSizedCollapsesToConst(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4, 3)
	empty := x.Shrink([2]int{1, 1}, [2]int{0, 3})
	assert.False(t, empty.IsView())
	assert.Equal(t, ops.OpTypeLoadConst, empty.Op())
	assert.Equal(t, []int{0, 3}, empty.Shape())
	assert.True(t, empty.IsUnrealizedContiguousConst())
	assert.Empty(t, empty.Schedule(nil))
}

func TestSweep(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4)
	neg := x.E(ops.OpTypeNeg, nil)
	exp := neg.E(ops.OpTypeExp2, nil)
	dropped := x.E(ops.OpTypeSin, nil).E(ops.OpTypeSqrt, nil)
	require.Equal(t, 5, g.NumNodes())

	assert.Equal(t, 2, g.Sweep(exp))
	assert.Equal(t, 3, g.NumNodes())
	assert.Same(t, neg, g.Node(neg.ID()))
	assert.Nil(t, g.Node(dropped.ID()))
	assert.Nil(t, g.Node(NodeID(100)))

	// Swept nodes are not interned anymore, while live ones still are.
	sin := x.E(ops.OpTypeSin, nil)
	assert.Greater(t, sin.ID(), dropped.ID())
	assert.Same(t, neg, x.E(ops.OpTypeNeg, nil))
}

func TestFromFlat(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := must.M1(g.FromFlat("CPU", []int32{1, 2, 3, 4, 5, 6}, 2, 3))
	assert.Equal(t, dtypes.Int32, x.DType())
	assert.Equal(t, ops.OpTypeLoadEmpty, x.Op())
	require.NotNil(t, x.Realized())
	assert.Equal(t, 6, x.Realized().Size())
	assert.Empty(t, x.Schedule(nil))

	_, err := g.FromFlat("CPU", []int32{1, 2, 3}, 2, 2)
	require.Error(t, err)
	_, err = g.FromFlat("CPU", []string{"x"}, 1)
	require.Error(t, err)
}

func TestChildrenIndex(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4, 4)
	a := x.E(ops.OpTypeAdd, nil, x.Permute(1, 0))
	b := x.Permute(1, 0).E(ops.OpTypeNeg, nil)
	children := g.childrenIndex()
	assert.Equal(t, []*Buffer{a, b}, children[x])
	assert.Empty(t, children[a])
}
