// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromShape(t *testing.T) {
	st := FromShape(2, 3)
	assert.True(t, st.Contiguous())
	assert.Equal(t, []int{2, 3}, st.Shape())
	assert.Equal(t, []int{3, 1}, st.Views[0].Strides)
	assert.Equal(t, 6, st.Size())

	// 1-sized axes get stride 0.
	assert.Equal(t, []int{0, 1}, FromShape(1, 5).Views[0].Strides)
}

func TestPermuteAndReshape(t *testing.T) {
	st := FromShape(2, 3).Permute(1, 0)
	assert.False(t, st.Contiguous())
	assert.Equal(t, []int{3, 2}, st.Shape())
	idx, valid := st.Index([]int{1, 0})
	require.True(t, valid)
	assert.Equal(t, 1, idx)
	idx, _ = st.Index([]int{0, 1})
	assert.Equal(t, 3, idx)

	// Reshaping a permuted view needs a second view.
	flat := st.Reshape(6)
	require.Len(t, flat.Views, 2)
	idx, _ = flat.Index([]int{1})
	assert.Equal(t, 3, idx)

	// Reshaping a contiguous view stays contiguous.
	assert.True(t, FromShape(2, 3).Reshape(3, 2).Contiguous())

	// Adding and removing 1-sized axes keeps a single view.
	padded := FromShape(2).Pad([2]int{1, 1}).Reshape(1, 4, 1)
	require.Len(t, padded.Views, 1)
	assert.Equal(t, [][2]int{{0, 1}, {1, 3}, {0, 1}}, padded.Views[0].Mask)

	require.Panics(t, func() { FromShape(2, 3).Reshape(5) })
	require.Panics(t, func() { FromShape(2, 3).Permute(0, 0) })
}

func TestExpand(t *testing.T) {
	st := FromShape(1, 3).Expand(4, 3)
	assert.Equal(t, []int{4, 3}, st.Shape())
	assert.Equal(t, []int{0, 1}, st.Views[0].Strides)
	assert.Equal(t, 3, st.Size())
	idx, _ := st.Index([]int{3, 2})
	assert.Equal(t, 2, idx)
	require.Panics(t, func() { FromShape(2, 3).Expand(4, 3) })
}

func TestPadAndShrink(t *testing.T) {
	st := FromShape(2).Pad([2]int{1, 1})
	assert.Equal(t, []int{4}, st.Shape())
	assert.Equal(t, [][2]int{{1, 3}}, st.Views[0].Mask)
	assert.Equal(t, 2, st.Views[0].MaskedSize())
	assert.Equal(t, 2, st.Size())
	_, valid := st.Index([]int{0})
	assert.False(t, valid)
	idx, valid := st.Index([]int{2})
	assert.True(t, valid)
	assert.Equal(t, 1, idx)

	// Shrinking back the padding gives the original contiguous view.
	assert.True(t, st.Shrink([2]int{1, 3}).Contiguous())

	sh := FromShape(4, 4).Shrink([2]int{1, 3}, [2]int{0, 2})
	assert.Equal(t, []int{2, 2}, sh.Shape())
	idx, _ = sh.Index([]int{0, 0})
	assert.Equal(t, 4, idx)
	idx, _ = sh.Index([]int{1, 1})
	assert.Equal(t, 9, idx)
}

func TestStride(t *testing.T) {
	flip := FromShape(4).Stride(-1)
	idx, _ := flip.Index([]int{0})
	assert.Equal(t, 3, idx)
	idx, _ = flip.Index([]int{3})
	assert.Equal(t, 0, idx)

	half := FromShape(5).Stride(2)
	assert.Equal(t, []int{3}, half.Shape())
	idx, _ = half.Index([]int{2})
	assert.Equal(t, 4, idx)
}

func TestInvert(t *testing.T) {
	st := FromShape(2, 3).Permute(1, 0)
	inv, ok := st.Invert([]int{2, 3})
	require.True(t, ok)
	assert.Equal(t, []int{2, 3}, inv.Shape())
	// Composing a view with its inverse gives back the identity.
	for i := range 2 {
		for j := range 3 {
			flat, valid := inv.Index([]int{i, j})
			require.True(t, valid)
			orig, _ := st.Index(Unravel(flat, st.Shape()))
			assert.Equal(t, i*3+j, orig)
		}
	}

	_, ok = FromShape(1, 3).Expand(4, 3).Invert([]int{1, 3})
	assert.False(t, ok)
	_, ok = FromShape(4).Shrink([2]int{1, 3}).Invert([]int{4})
	assert.False(t, ok)

	// Padding is inverted by shrinking it back.
	unpad, ok := FromShape(2).Pad([2]int{1, 0}).Invert([]int{2})
	require.True(t, ok)
	idx, _ := unpad.Index([]int{0})
	assert.Equal(t, 1, idx)
}

func TestCompose(t *testing.T) {
	permuted := FromShape(2, 3).Permute(1, 0)
	assert.True(t, permuted.Compose(FromShape(3, 2)).Equal(permuted))

	composed := FromShape(6).Compose(FromShape(6).Reshape(2, 3))
	assert.True(t, composed.Contiguous())
	assert.Equal(t, []int{2, 3}, composed.Shape())

	// Expanded view composed on a permuted one can't be merged.
	stacked := permuted.Compose(FromShape(3, 2).Reshape(6).Reshape(1, 6).Expand(2, 6))
	assert.Len(t, stacked.Views, 2)
	idx, _ := stacked.Index([]int{1, 1})
	assert.Equal(t, 3, idx)
}

func TestStridesQueries(t *testing.T) {
	assert.Equal(t, []int{1}, FromShape(2, 4).UnitStrideAxes())
	assert.Equal(t, []int{0}, FromShape(2, 4).Permute(1, 0).UnitStrideAxes())
	assert.Equal(t, []int{0, 1}, FromShape(2, 4).Pad([2]int{1, 0}, [2]int{0, 0}).RealStrides())

	// A permuted view stacked over a plain one merges into a single view.
	stacked := Tracker{Views: []View{
		NewView([]int{8}, nil, 0, nil),
		NewView([]int{2, 4}, nil, 0, nil).Permute([]int{1, 0}),
	}}
	assert.Equal(t, []int{1, 4}, stacked.RealStrides())
	assert.Equal(t, []int{0}, stacked.UnitStrideAxes())

	// Views that can't be merged report no real strides.
	permuted := FromShape(2, 3).Permute(1, 0)
	unmerged := permuted.Compose(FromShape(3, 2).Reshape(6).Reshape(1, 6).Expand(2, 6))
	require.Len(t, unmerged.Views, 2)
	assert.Equal(t, []int{0, 0}, unmerged.RealStrides())
}

func TestVars(t *testing.T) {
	st := FromShape(4, 2).WithVars(AxisBindings{"n": 4})
	assert.True(t, st.Symbolic())
	unbound, vals := st.Unbind()
	assert.Equal(t, AxisBindings{"n": Unbound}, unbound.Vars)
	assert.Equal(t, AxisBindings{"n": 4}, vals)
	assert.Equal(t, AxisBindings{}, unbound.VarVals())
	assert.NotEqual(t, st.Key(), FromShape(4, 2).Key())

	ab := AxisBindings{"n": 4}
	require.NoError(t, ab.Merge(AxisBindings{"n": Unbound, "m": 2}))
	assert.Equal(t, "m=2,n=4", ab.Key())
	require.Error(t, ab.Merge(AxisBindings{"n": 5}))
}

func TestBind(t *testing.T) {
	st := FromShape(3, 5).Bind("batch", 0)
	assert.Equal(t, AxisBindings{"batch": 3}, st.VarVals())
	require.Panics(t, func() { st.Bind("batch", 1) })
	require.Panics(t, func() { st.Bind("x", 2) })
}
