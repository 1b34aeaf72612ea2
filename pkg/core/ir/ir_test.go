// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"testing"

	"github.com/gomlx/lazygraph/pkg/core/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(idx int, st views.Tracker) *Op {
	return New(ops.OpTypeBufferLoad, &MemBuffer{Idx: idx, DType: dtypes.Float32, View: st})
}

func sampleKernel() *Op {
	st := views.FromShape(4)
	sum := New(ops.OpTypeReduceSum, []int{1},
		New(ops.OpTypeMul, nil, load(1, st), New(ops.OpTypeBufferConst, &ConstBuffer{Value: 2, DType: dtypes.Float32, View: st})))
	return New(ops.OpTypeBufferStore, &MemBuffer{Idx: 0, DType: dtypes.Float32, View: views.FromShape(1)}, sum)
}

func TestWalk(t *testing.T) {
	var visited []ops.OpType
	sampleKernel().Walk(func(node *Op) bool {
		visited = append(visited, node.Type)
		return true
	})
	assert.Equal(t, []ops.OpType{ops.OpTypeBufferStore, ops.OpTypeReduceSum, ops.OpTypeMul,
		ops.OpTypeBufferLoad, ops.OpTypeBufferConst}, visited)

	leaves := sampleKernel().Leaves()
	require.Len(t, leaves, 2)
	assert.Equal(t, 1, leaves[0].Arg.(*MemBuffer).Idx)
	assert.Len(t, sampleKernel().ReduceOps(), 1)
}

func TestVars(t *testing.T) {
	k := sampleKernel()
	assert.Empty(t, k.Vars())
	st := views.FromShape(4, 2).WithVars(views.AxisBindings{"n": views.Unbound, "b": views.Unbound})
	k = New(ops.OpTypeBufferStore, &MemBuffer{View: st}, load(1, st))
	assert.Equal(t, []string{"b", "n"}, k.Vars())
}

func TestEqual(t *testing.T) {
	assert.True(t, sampleKernel().Equal(sampleKernel()))
	other := sampleKernel()
	other.Sources[0].Arg = []int{2}
	assert.False(t, sampleKernel().Equal(other))
	other = sampleKernel()
	other.Sources[0].Sources[0].Sources[0].Arg.(*MemBuffer).View = views.FromShape(2, 2).Reshape(4).Permute(0)
	assert.True(t, sampleKernel().Equal(other), "the reshape of a contiguous view is still the same view")
	other.Sources[0].Sources[0].Sources[0].Arg.(*MemBuffer).Idx = 2
	assert.False(t, sampleKernel().Equal(other))
}

func TestString(t *testing.T) {
	s := sampleKernel().String()
	assert.Contains(t, s, "Store MemBuffer(idx=0")
	assert.Contains(t, s, "\n  ReduceSum [1]")
	assert.Contains(t, s, "\n      Load MemBuffer(idx=1")
	assert.Equal(t, dtypes.Float32.String(), CastArg{DType: dtypes.Float32}.String())
	assert.Equal(t, "bitcast("+dtypes.Int32.String()+")", CastArg{DType: dtypes.Int32, Bitcast: true}.String())
}
