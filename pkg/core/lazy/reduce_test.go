// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"testing"

	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4, 3)
	assert.Same(t, x, x.R(ops.OpTypeReduceSum, 4, 3))
	r := x.R(ops.OpTypeReduceMax, 1, 3)
	assert.Equal(t, ops.OpTypeReduceMax, r.Op())
	assert.Equal(t, []int{1, 3}, r.Shape())
	assert.Equal(t, []int{1, 3}, r.Arg())
	assert.Equal(t, []*Buffer{x}, r.Srcs())

	require.Panics(t, func() { x.R(ops.OpTypeAdd, 1, 3) })
	require.Panics(t, func() { x.R(ops.OpTypeReduceSum, 3) })
	require.Panics(t, func() { x.R(ops.OpTypeReduceSum, 2, 3) })
}

func TestReduceSplit(t *testing.T) {
	g := NewGraphWithConfig(must.M1(ParseConfig("split_threshold=64")))

	t.Run("split", func(t *testing.T) {
		x := iotaInput(g, 4096)
		r := x.R(ops.OpTypeReduceSum, 1)
		assert.Equal(t, []int{1}, r.Shape())
		require.Equal(t, ops.OpTypeReduceSum, r.Op())

		// Second stage reduces the 16 partial sums.
		partials := r.Srcs()[0]
		assert.Equal(t, []int{16}, partials.Shape())
		first := partials.Base()
		assert.Equal(t, ops.OpTypeReduceSum, first.Op())
		assert.Equal(t, []int{16, 1}, first.Shape())
		assert.Equal(t, []int{16, 256}, first.Srcs()[0].Shape())
		assert.Same(t, x, first.Srcs()[0].Base())
	})

	t.Run("largest divisor", func(t *testing.T) {
		// Axis 1 has the larger divisor of 256 (64 vs 32) and the smaller stride.
		x := iotaInput(g, 96, 64)
		r := x.R(ops.OpTypeReduceSum, 1, 1)
		first := r.Srcs()[0].Base()
		assert.Equal(t, []int{96, 1, 1}, first.Shape())
		assert.Equal(t, []int{96, 1, 64}, first.Srcs()[0].Shape())
	})

	t.Run("small divisor", func(t *testing.T) {
		x := iotaInput(g, 4100)
		r := x.R(ops.OpTypeReduceSum, 1)
		assert.Same(t, x, r.Srcs()[0])
	})

	t.Run("below threshold", func(t *testing.T) {
		x := iotaInput(g, 64, 4)
		r := x.R(ops.OpTypeReduceSum, 64, 1)
		assert.Same(t, x, r.Srcs()[0])
	})

	t.Run("broadcast axis", func(t *testing.T) {
		// The reduced axis has stride 0: the heuristic is 0.
		x := iotaInput(g, 1).Expand(4096)
		r := x.R(ops.OpTypeReduceSum, 1)
		assert.Same(t, x, r.Srcs()[0])
	})

	t.Run("symbolic", func(t *testing.T) {
		x := iotaInput(g, 4096).Bind("n", 0)
		r := x.R(ops.OpTypeReduceSum, 1)
		assert.Same(t, x, r.Srcs()[0])
	})
}
