// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"fmt"
	"testing"

	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewIdempotence(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	for _, shape := range [][]int{{7}, {4, 4}, {2, 3, 4}, {1, 5, 1}} {
		t.Run(fmt.Sprintf("%v", shape), func(t *testing.T) {
			x := iotaInput(g, shape...).E(ops.OpTypeNeg, nil)
			assert.Same(t, x, x.Reshape(shape...))

			assert.Same(t, x, x.Reshape(xslices.Prod(shape)).Reshape(shape...))

			perm := make([]int, len(shape))
			for ii := range perm {
				perm[ii] = len(shape) - 1 - ii
			}
			permuted := x.Permute(perm...)
			assert.Same(t, x, permuted.Permute(perm...))

			padding := make([][2]int, len(shape))
			limits := make([][2]int, len(shape))
			for axis, dim := range shape {
				padding[axis] = [2]int{1, 2}
				limits[axis] = [2]int{1, dim + 1}
			}
			padded := x.Pad(padding...)
			assert.True(t, padded.IsView())
			assert.Same(t, x, padded.Shrink(limits...))
		})
	}
}

func TestViews(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4, 4)
	p := x.Permute(1, 0)
	require.True(t, p.IsView())
	assert.Same(t, x, p.Base())
	assert.Equal(t, ops.OpTypeInvalid, p.Op())
	assert.Same(t, x.Realized(), p.Realized())

	// Views of views point to the same base.
	s := p.Shrink([2]int{0, 2}, [2]int{0, 4}).Stride(1, -1)
	assert.Same(t, x, s.Base())
	assert.Equal(t, []int{2, 4}, s.Shape())

	e := x.Reshape(4, 1, 4).Expand(4, 3, 4)
	assert.Same(t, x, e.Base())
	assert.Equal(t, []int{4, 3, 4}, e.Shape())

	require.Panics(t, func() { x.Expand(4, 5) })
	require.Panics(t, func() { x.Reshape(3, 5) })
}

func TestBind(t *testing.T) {
	g := NewGraphWithConfig(DefaultConfig())
	x := iotaInput(g, 4, 3)
	xs := x.Bind("n", 0)
	require.True(t, xs.IsView(), "binding a variable is not the identity view")
	assert.Equal(t, 4, xs.Tracker().VarVals()["n"])
	neg := xs.E(ops.OpTypeNeg, nil)
	assert.Equal(t, 4, neg.Tracker().VarVals()["n"])
}
