// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazygraph/pkg/core/device"
	"github.com/gomlx/lazygraph/pkg/core/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/ir"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
	"github.com/gomlx/lazygraph/pkg/support/sets"
)

// Buffer is a node of the lazy graph: a deferred tensor.
//
// A Buffer is either a base node, holding an operation (op, arg and srcs) that computes its values,
// or a view of a base node (a different views.Tracker over the same memory).
// Only base nodes are ever realized.
type Buffer struct {
	graph  *Graph
	id     NodeID
	device string
	st     views.Tracker
	dtype  dtypes.ElementType

	// op is ops.OpTypeInvalid for views.
	op   ops.OpType
	arg  any
	srcs []*Buffer

	// base is nil for base nodes.
	base *Buffer

	realized        *device.Buffer
	outputBuffer    *device.Buffer
	forcedRealize   bool
	contiguousChild *contiguousChild
}

// contiguousChild records the CONTIGUOUS node made from a view (st) of a base.
type contiguousChild struct {
	ref *Buffer
	st  views.Tracker
}

// ID of the node within its Graph.
func (b *Buffer) ID() NodeID { return b.id }

// Graph that owns the node.
func (b *Buffer) Graph() *Graph { return b.graph }

// Device where the node lives.
func (b *Buffer) Device() string { return b.device }

// Tracker returns the view of the node over its base's memory.
func (b *Buffer) Tracker() views.Tracker { return b.st }

// Shape of the node. It must not be modified.
func (b *Buffer) Shape() []int { return b.st.Shape() }

// DType of the node's elements.
func (b *Buffer) DType() dtypes.ElementType { return b.dtype }

// Op returns the operation of the node, ops.OpTypeInvalid for views.
func (b *Buffer) Op() ops.OpType { return b.op }

// Arg returns the argument of the operation.
func (b *Buffer) Arg() any { return b.arg }

// Srcs returns the sources of the operation. It must not be modified.
func (b *Buffer) Srcs() []*Buffer { return b.srcs }

// Base returns the base node, b itself if it is not a view.
func (b *Buffer) Base() *Buffer {
	if b.base == nil {
		return b
	}
	return b.base
}

// IsView returns whether b is a view of another node.
func (b *Buffer) IsView() bool { return b.base != nil }

// Realized returns the device memory holding the values of the node's base, or nil if it was not
// realized yet.
func (b *Buffer) Realized() *device.Buffer { return b.Base().realized }

// SetRealized attaches the device memory with the computed values of the node's base.
func (b *Buffer) SetRealized(buf *device.Buffer) {
	b.Base().realized = buf
}

// OutputBuffer is a preassigned device buffer where the node's kernel should write its results.
// The scheduler may reset it if the kernel reads the same memory in a non-contiguous way.
func (b *Buffer) OutputBuffer() *device.Buffer { return b.outputBuffer }

// SetOutputBuffer preassigns the device buffer where the node's kernel should write its results.
func (b *Buffer) SetOutputBuffer(buf *device.Buffer) { b.outputBuffer = buf }

// ForcedRealize returns whether the node was marked to be materialized on its own.
func (b *Buffer) ForcedRealize() bool { return b.forcedRealize }

// IsUnrealizedConst returns whether b is a view of a constant not yet materialized.
func (b *Buffer) IsUnrealizedConst() bool {
	return b.Realized() == nil && b.Base().op == ops.OpTypeLoadConst
}

// IsUnrealizedContiguousConst returns whether b is itself an unrealized constant node.
func (b *Buffer) IsUnrealizedContiguousConst() bool {
	return b.Realized() == nil && b.op == ops.OpTypeLoadConst
}

// String implements fmt.Stringer.
func (b *Buffer) String() string {
	if b == nil {
		return "<LB nil>"
	}
	realized := "<nil>"
	if r := b.Realized(); r != nil {
		realized = r.String()
	}
	op := b.op.String()
	if b.base != nil {
		op = fmt.Sprintf("View(#%d)", b.base.id)
	}
	return fmt.Sprintf("<LB #%d %s %v contig:%t %s %s>", b.id, b.device, b.Shape(), b.st.Contiguous(), op, realized)
}

// fromShape returns a contiguous tracker of b's shape, keeping its variables.
func (b *Buffer) fromShape() views.Tracker {
	return views.FromShape(b.Shape()...).WithVars(b.st.Vars)
}

// Const returns a node with the shape of b filled with value: a scalar constant broadcast to the shape.
func (b *Buffer) Const(value float64) *Buffer {
	scalar := b.graph.Scalar(b.device, b.dtype, value).WithVars(b.st.Vars)
	ones := slices.Repeat([]int{1}, b.st.Rank())
	return scalar.Reshape(ones...).Expand(b.Shape()...)
}

// WithVars returns the view of b whose tracker also carries the given variable bindings.
func (b *Buffer) WithVars(vars views.AxisBindings) *Buffer {
	return b.view(b.st.WithVars(vars))
}

// Bind marks the dimension of axis as the symbolic variable name.
func (b *Buffer) Bind(name string, axis int) *Buffer {
	return b.view(b.st.Bind(name, axis))
}

// Contiguous returns a node with the values of b laid out contiguously in memory.
//
// If b is already a contiguous view covering its whole base (and not an unrealized constant), the
// base is marked to be realized, and b is returned.
func (b *Buffer) Contiguous() *Buffer {
	base := b.Base()
	if !b.st.Contiguous() || b.st.Size() != base.st.Size() || b.IsUnrealizedConst() {
		ret := b.E(ops.OpTypeLoadContiguous, nil)
		base.contiguousChild = &contiguousChild{ref: ret, st: b.st}
		return ret
	}
	base.forcedRealize = true
	return b
}

// Cast converts b to dtype. If bitcast is true the bits are reinterpreted instead.
func (b *Buffer) Cast(dtype dtypes.ElementType, bitcast bool) *Buffer {
	if b.dtype == dtype {
		return b
	}
	return b.graph.create(b.device, b.fromShape(), dtype, ops.OpTypeCast, ir.CastArg{DType: dtype, Bitcast: bitcast},
		[]*Buffer{b}, nil)
}

// E creates an element-wise (or contiguous) operation over b and the other sources, all of b's shape.
// The result has the widest dtype of all the operands.
//
// Sources that were made contiguous are replaced by the corresponding view of their contiguous
// version, if the view is invertible.
func (b *Buffer) E(op ops.OpType, arg any, srcs ...*Buffer) *Buffer {
	all := make([]*Buffer, 0, len(srcs)+1)
	all = append(all, b)
	all = append(all, srcs...)
	for ii, src := range all {
		if !slices.Equal(src.Shape(), b.Shape()) {
			exceptions.Panicf("lazy.E(%s): source #%d has shape %v, expected %v", op, ii, src.Shape(), b.Shape())
		}
		if cc := src.contiguousChild; cc != nil && b.graph.isLive(cc.ref) {
			if inverse, ok := cc.st.Invert(src.Shape()); ok {
				all[ii] = cc.ref.view(inverse.WithVars(src.st.Vars))
			}
		}
	}
	dtype := all[0].dtype
	for _, src := range all[1:] {
		dtype = dtypes.Max(dtype, src.dtype)
	}
	return b.graph.create(b.device, b.fromShape(), dtype, op, arg, all, nil)
}

// CopyToDevice returns a node with b's values on the target device.
//
// Copying back a copy returns the original node.
func (b *Buffer) CopyToDevice(deviceName string) *Buffer {
	if b.Realized() == nil && b.op == ops.OpTypeLoadCopy && b.srcs[0].device == deviceName {
		return b.srcs[0]
	}
	out := b.Contiguous()
	return b.graph.create(deviceName, out.st, out.dtype, ops.OpTypeLoadCopy, nil, []*Buffer{out}, nil)
}

// Schedule returns the kernels needed to realize b, skipping those already in seen.
// If seen is nil a new set is used.
func (b *Buffer) Schedule(seen sets.Set[*Buffer]) []*Item {
	return CreateSchedule([]*Buffer{b}, seen)
}
