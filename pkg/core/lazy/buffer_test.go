// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"testing"

	"github.com/gomlx/lazygraph/pkg/core/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/ir"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyRoundTrip(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	for _, otherDevice := range []string{"GPU", "DISK", "REMOTE:1"} {
		t.Run(otherDevice, func(t *testing.T) {
			x := iotaInput(g, 3, 2)
			there := x.CopyToDevice(otherDevice)
			assert.Equal(t, otherDevice, there.Device())
			assert.Equal(t, ops.OpTypeLoadCopy, there.Op())
			assert.Same(t, x, there.CopyToDevice("CPU"))

			// Unrealized nodes also come back unchanged, and are realized only once.
			neg := x.E(ops.OpTypeNeg, nil)
			assert.Same(t, neg, neg.CopyToDevice(otherDevice).CopyToDevice("CPU"))
			items := neg.Schedule(nil)
			require.Len(t, items, 1)
			assert.Same(t, neg, items[0].Out)

			// A non-contiguous view is made contiguous first, and that is what comes back.
			permuted := x.Permute(1, 0)
			back := permuted.CopyToDevice(otherDevice).CopyToDevice("CPU")
			assert.Equal(t, ops.OpTypeLoadContiguous, back.Op())
			assert.Equal(t, []int{2, 3}, back.Shape())
			for _, item := range back.Schedule(nil) {
				assert.NotEqual(t, ops.OpTypeLoadCopy, item.AST.Type)
			}
		})
	}
}

func TestCopySchedule(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4)
	neg := x.E(ops.OpTypeNeg, nil)
	there := neg.CopyToDevice("GPU")
	assert.True(t, neg.ForcedRealize())
	items := there.Schedule(nil)
	require.Len(t, items, 2)
	assert.Same(t, neg, items[0].Out)
	assert.Equal(t, ops.OpTypeBufferStore, items[0].AST.Type)
	assert.Same(t, there, items[1].Out)
	assert.Equal(t, ops.OpTypeLoadCopy, items[1].AST.Type)
	assert.Same(t, neg, items[1].AST.Arg)
	assert.Equal(t, []*Buffer{neg}, items[1].Inputs)
}

func TestContiguous(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4, 3)
	assert.Same(t, x, x.Contiguous())
	assert.True(t, x.ForcedRealize())

	// Shrinking changes the size, and makes a copy.
	shrunk := x.Shrink([2]int{0, 2}, [2]int{0, 3})
	assert.Equal(t, ops.OpTypeLoadContiguous, shrunk.Contiguous().Op())

	// Constants are never realized in place.
	c := x.Const(3)
	assert.True(t, c.IsUnrealizedConst())
	assert.Equal(t, ops.OpTypeLoadContiguous, c.Contiguous().Op())
}

func TestContiguousChildSubstitution(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4, 3).E(ops.OpTypeNeg, nil)
	transposed := x.Permute(1, 0).Contiguous()
	require.Equal(t, ops.OpTypeLoadContiguous, transposed.Op())

	// x is now read from its transposed copy.
	y := x.E(ops.OpTypeExp2, nil)
	src := y.Srcs()[0]
	require.True(t, src.IsView())
	assert.Same(t, transposed, src.Base())
	assert.Equal(t, []int{4, 3}, src.Shape())

	// Not invertible views are left alone.
	z := iotaInput(g, 4, 3).E(ops.OpTypeNeg, nil)
	z.Shrink([2]int{0, 2}, [2]int{0, 3}).Contiguous()
	assert.Same(t, z, z.E(ops.OpTypeExp2, nil).Srcs()[0])

	// Nor views of contiguous children that were swept.
	w := iotaInput(g, 4, 3).E(ops.OpTypeNeg, nil)
	w.Permute(1, 0).Contiguous()
	g.Sweep(w)
	assert.Same(t, w, w.E(ops.OpTypeExp2, nil).Srcs()[0])
}

func TestConst(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 2, 5)
	c := x.Const(7)
	assert.Equal(t, []int{2, 5}, c.Shape())
	assert.True(t, c.IsUnrealizedConst())
	assert.False(t, c.IsUnrealizedContiguousConst())
	assert.Equal(t, ops.OpTypeLoadConst, c.Base().Op())
	assert.Empty(t, c.Base().Shape())
	assert.Equal(t, 7.0, c.Base().Arg())
	assert.Equal(t, x.DType(), c.DType())
}

func TestCastAndE(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 3)
	assert.Same(t, x, x.Cast(dtypes.Float32, false))
	asInt := x.Cast(dtypes.Int32, true)
	assert.Equal(t, ops.OpTypeCast, asInt.Op())
	assert.Equal(t, ir.CastArg{DType: dtypes.Int32, Bitcast: true}, asInt.Arg())
	assert.Equal(t, dtypes.Int32, asInt.DType())

	// E promotes to the widest type.
	sum := asInt.E(ops.OpTypeAdd, nil, x.Cast(dtypes.Float64, false))
	assert.Equal(t, dtypes.Float64, sum.DType())
	assert.Equal(t, []int{3}, sum.Shape())
	where := asInt.Cast(dtypes.Bool, false).E(ops.OpTypeWhere, nil, asInt, asInt)
	assert.Equal(t, dtypes.Int32, where.DType())

	require.Panics(t, func() { x.E(ops.OpTypeAdd, nil, iotaInput(g, 4)) })
	require.Panics(t, func() { x.E(ops.OpTypeAdd, nil, NewGraph().Scalar("CPU", dtypes.Float32, 1).Reshape(1).Expand(3)) })
}

func TestString(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 3)
	neg := x.E(ops.OpTypeNeg, nil)
	assert.Equal(t, "<LB #1 CPU [3] contig:true Neg <nil>>", neg.String())
	assert.Contains(t, x.String(), "<LB #0 CPU [3] contig:true LoadEmpty Buffer(CPU,")
	assert.Contains(t, neg.Stride(-1).String(), "View(#1)")
}
