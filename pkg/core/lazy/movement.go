// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"slices"

	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
)

// view returns a view of b's base with the tracker st, or the base itself if st is its identity.
func (b *Buffer) view(st views.Tracker) *Buffer {
	base := b.Base()
	if st.Contiguous() && slices.Equal(base.Shape(), st.Shape()) && base.st.Vars.Key() == st.Vars.Key() {
		return base
	}
	return b.graph.create(b.device, st, b.dtype, ops.OpTypeInvalid, nil, nil, base)
}

// Reshape b to newShape, which must have the same number of elements.
func (b *Buffer) Reshape(newShape ...int) *Buffer { return b.view(b.st.Reshape(newShape...)) }

// Pad each axis with padding[axis] = (before, after) zeros.
func (b *Buffer) Pad(padding ...[2]int) *Buffer { return b.view(b.st.Pad(padding...)) }

// Expand (broadcast) the 1-sized axes of b to newShape.
func (b *Buffer) Expand(newShape ...int) *Buffer { return b.view(b.st.Expand(newShape...)) }

// Permute the axes of b.
func (b *Buffer) Permute(permutation ...int) *Buffer { return b.view(b.st.Permute(permutation...)) }

// Shrink each axis to the range limits[axis] = [begin, end).
func (b *Buffer) Shrink(limits ...[2]int) *Buffer { return b.view(b.st.Shrink(limits...)) }

// Stride takes every strides[axis] element of each axis, negative strides flip the axis.
func (b *Buffer) Stride(strides ...int) *Buffer { return b.view(b.st.Stride(strides...)) }
