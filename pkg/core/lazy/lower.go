// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazygraph/pkg/core/ir"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
)

// lowering converts the fused nodes of one kernel into an ir.Op tree.
type lowering struct {
	s *scheduler

	// inputs of the kernel, in the order their loads are first found (left to right, depth-first).
	inputs  []*Buffer
	varVals views.AxisBindings
}

// loweringTask lowers buf, indexed through st, into *slot.
type loweringTask struct {
	buf   *Buffer
	st    views.Tracker
	first bool
	slot  **ir.Op
}

func (l *lowering) inputIdx(buf *Buffer) int {
	idx := slices.Index(l.inputs, buf)
	if idx < 0 {
		idx = len(l.inputs)
		l.inputs = append(l.inputs, buf)
	}
	return idx + 1
}

func unbound(st views.Tracker) views.Tracker {
	st, _ = st.Simplify().Unbind()
	return st
}

// lower out (the kernel output node) indexed by st.
func (l *lowering) lower(out *Buffer, st views.Tracker) *ir.Op {
	var root *ir.Op
	stack := []loweringTask{{buf: out, st: st, first: true, slot: &root}}
	for len(stack) > 0 {
		var task loweringTask
		task, stack = xslices.Pop(stack)
		buf, st := task.buf, task.st
		if buf.base != nil {
			if err := l.varVals.Merge(buf.st.VarVals()); err != nil {
				panic(err)
			}
			st = buf.st.Compose(st)
			buf = buf.base
		}
		if buf.op == ops.OpTypeInvalid {
			exceptions.Panicf("lazy: base node %s has no operation", buf)
		}

		// Constants are always fused.
		if buf.op == ops.OpTypeLoadConst {
			*task.slot = ir.New(ops.OpTypeBufferConst, &ir.ConstBuffer{Value: constValue(buf.arg), DType: buf.dtype, View: unbound(st)})
			continue
		}

		// Nodes not fused are loaded from the kernel inputs.
		if buf.Realized() != nil || (l.s.realizes.Has(buf) && !task.first) {
			*task.slot = ir.New(ops.OpTypeBufferLoad, &ir.MemBuffer{Idx: l.inputIdx(buf), DType: buf.dtype, View: unbound(st)})
			continue
		}

		// A CONTIGUOUS that made it here is just skipped.
		if buf.op == ops.OpTypeLoadContiguous {
			stack = append(stack, loweringTask{buf: buf.srcs[0], st: st, slot: task.slot})
			continue
		}

		if buf.op.IsReduce() {
			if !st.Contiguous() {
				exceptions.Panicf("lazy: late fusion of reduction %s must be contiguous, got %s", buf, st)
			}
			st = unbound(buf.srcs[0].fromShape())
		}
		op := ir.New(buf.op, buf.arg)
		op.Sources = make([]*ir.Op, len(buf.srcs))
		*task.slot = op
		for ii := len(buf.srcs) - 1; ii >= 0; ii-- {
			stack = append(stack, loweringTask{buf: buf.srcs[ii], st: st, slot: &op.Sources[ii]})
		}
	}
	return root
}

func constValue(arg any) float64 {
	switch v := arg.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	}
	exceptions.Panicf("lazy: invalid constant value %v (%T)", arg, arg)
	return 0
}
