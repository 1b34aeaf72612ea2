// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/lazygraph/pkg/core/ir"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
	"github.com/gomlx/lazygraph/pkg/support/sets"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"k8s.io/klog/v2"
)

// Item is one kernel of a schedule: AST computes Out from Inputs.
//
// For compute kernels AST is rooted on an ops.OpTypeBufferStore, and its loads refer to Inputs[idx-1].
// Copy kernels (ops.OpTypeLoadCopy) copy Inputs[0] to Out, custom kernels (ops.OpTypeLoadCustom) call
// the CustomFunc in AST.Arg, and empty kernels (ops.OpTypeLoadEmpty) only allocate Out.
type Item struct {
	AST     *ir.Op
	Out     *Buffer
	Inputs  []*Buffer
	VarVals views.AxisBindings
}

// String implements fmt.Stringer.
func (item *Item) String() string {
	var sb strings.Builder
	memory := uint64(xslices.Prod(item.Out.Shape())) * uint64(item.Out.dtype.Memory())
	fmt.Fprintf(&sb, "Item(out=%s, %s, inputs=[", item.Out, humanize.Bytes(memory))
	for ii, input := range item.Inputs {
		if ii > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "#%d", input.id)
	}
	sb.WriteString("]")
	if len(item.VarVals) > 0 {
		fmt.Fprintf(&sb, ", vars=%s", item.VarVals.Key())
	}
	sb.WriteString(")")
	return sb.String()
}

// CreateSchedule returns the kernels that realize outs, in dependency order: the inputs of each kernel
// are either already realized or the output of an earlier kernel.
//
// Nodes in seen are assumed to be scheduled already, and the newly scheduled ones are added to it, so
// the same set can be shared by consecutive calls. If seen is nil a new set is used.
//
// All outs must belong to the same Graph.
func CreateSchedule(outs []*Buffer, seen sets.Set[*Buffer]) []*Item {
	if len(outs) == 0 {
		return nil
	}
	if seen == nil {
		seen = sets.Make[*Buffer]()
	}
	s := newScheduler(outs[0].graph)
	for _, out := range outs {
		if out.Realized() == nil {
			s.realizes.Insert(out.Base())
		}
	}
	for _, out := range outs {
		s.findRealizes(out.Base())
	}
	s.checkSimplePads()
	s.pairReduces()

	var items []*Item
	for _, out := range outs {
		items = s.schedule(out.Base(), seen, items)
	}
	klog.V(1).Infof("lazy.CreateSchedule: %d outputs, %d nodes visited, %d kernels", len(outs), s.allBufs.Len(), len(items))
	return items
}

// scheduleFrame is an item waiting for the schedules of its inputs.
type scheduleFrame struct {
	item      *Item
	nextInput int
}

// schedule appends to items the kernels needed for out, inputs first.
func (s *scheduler) schedule(out *Buffer, seen sets.Set[*Buffer], items []*Item) []*Item {
	var stack []*scheduleFrame
	if item := s.buildItem(out, seen); item != nil {
		stack = append(stack, &scheduleFrame{item: item})
	}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		if frame.nextInput < len(frame.item.Inputs) {
			input := frame.item.Inputs[frame.nextInput].Base()
			frame.nextInput++
			if item := s.buildItem(input, seen); item != nil {
				stack = append(stack, &scheduleFrame{item: item})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		klog.V(2).Infof("lazy: kernel #%d %s", len(items), frame.item)
		items = append(items, frame.item)
	}
	return items
}

// buildItem creates the kernel of out, or returns nil if out doesn't need one.
func (s *scheduler) buildItem(out *Buffer, seen sets.Set[*Buffer]) *Item {
	if seen.Has(out) || out.Realized() != nil || out.op == ops.OpTypeLoadConst {
		return nil
	}
	seen.Insert(out)

	item := &Item{Out: out}
	varVals := out.st.VarVals()
	switch out.op {
	case ops.OpTypeLoadCopy:
		src := out.srcs[0].Base()
		item.AST = ir.New(ops.OpTypeLoadCopy, src)
		item.Inputs = []*Buffer{src}
	case ops.OpTypeLoadCustom:
		item.AST = ir.New(ops.OpTypeLoadCustom, out.arg)
		item.Inputs = append(item.Inputs, out.srcs...)
	case ops.OpTypeLoadEmpty:
		item.AST = ir.New(ops.OpTypeLoadEmpty, nil)
	default:
		outputShape := out.Shape()
		if r, found := s.reduceFor[out]; found {
			outputShape = r.Shape()
		}
		outputST := views.FromShape(outputShape...).WithVars(out.st.Vars)
		l := &lowering{s: s, varVals: varVals}
		root := l.lower(out, outputST)
		item.AST = ir.New(ops.OpTypeBufferStore, &ir.MemBuffer{Idx: 0, DType: out.dtype, View: unbound(outputST)}, root)
		item.Inputs = l.inputs
	}

	// The output buffer can't alias an input read through a non-contiguous view.
	if out.outputBuffer != nil {
	inputsLoop:
		for ii, input := range item.Inputs {
			if input.Realized() != out.outputBuffer {
				continue
			}
			for _, leaf := range item.AST.Leaves() {
				mem, ok := leaf.Arg.(*ir.MemBuffer)
				if ok && leaf.Type == ops.OpTypeBufferLoad && mem.Idx == ii+1 && !mem.View.Contiguous() {
					klog.V(2).Infof("lazy: dropping output buffer of %s, it is read non-contiguously", out)
					out.outputBuffer = nil
					break inputsLoop
				}
			}
		}
	}

	item.VarVals = make(views.AxisBindings)
	for _, name := range item.AST.Vars() {
		if value, found := varVals[name]; found {
			item.VarVals[name] = value
		}
	}
	return item
}
