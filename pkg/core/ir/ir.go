// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ir defines the tree of operations of one kernel, the output of the scheduler.
//
// A compute kernel is rooted on a Store operation writing to MemBuffer 0. Its leaves are either
// memory loads (Load with a MemBuffer argument, indexing the kernel inputs starting at 1) or constants
// (Const with a ConstBuffer argument). Each leaf carries the views.Tracker used to index it.
package ir

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/gomlx/lazygraph/pkg/core/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
)

// Op is one node of the kernel tree.
//
// Arg depends on Type: *MemBuffer for Load and Store, *ConstBuffer for Const, the output shape
// ([]int) for reductions, CastArg for casts. Other operations may carry an opaque argument.
type Op struct {
	Type    ops.OpType
	Sources []*Op
	Arg     any
}

// MemBuffer is a memory operand of the kernel: Idx 0 is the output, inputs start at 1.
type MemBuffer struct {
	Idx   int
	DType dtypes.ElementType
	View  views.Tracker
}

// ConstBuffer is a constant operand broadcast through View.
type ConstBuffer struct {
	Value float64
	DType dtypes.ElementType
	View  views.Tracker
}

// CastArg is the argument of a Cast operation.
type CastArg struct {
	DType   dtypes.ElementType
	Bitcast bool
}

// String implements fmt.Stringer.
func (m *MemBuffer) String() string {
	return fmt.Sprintf("MemBuffer(idx=%d, %s, %v)", m.Idx, m.DType, m.View)
}

// String implements fmt.Stringer.
func (c *ConstBuffer) String() string {
	return fmt.Sprintf("ConstBuffer(%g, %s, %v)", c.Value, c.DType, c.View)
}

// String implements fmt.Stringer.
func (c CastArg) String() string {
	if c.Bitcast {
		return fmt.Sprintf("bitcast(%s)", c.DType)
	}
	return c.DType.String()
}

// New creates an Op.
func New(opType ops.OpType, arg any, sources ...*Op) *Op {
	return &Op{Type: opType, Sources: sources, Arg: arg}
}

// Walk visits the tree in preorder, left to right. If fn returns false the sub-tree of that node is
// not visited.
func (op *Op) Walk(fn func(node *Op) bool) {
	stack := []*Op{op}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(node) {
			continue
		}
		for ii := len(node.Sources) - 1; ii >= 0; ii-- {
			stack = append(stack, node.Sources[ii])
		}
	}
}

// Leaves returns the Load and Const leaves of the tree, in preorder.
func (op *Op) Leaves() []*Op {
	var leaves []*Op
	op.Walk(func(node *Op) bool {
		if node.Type == ops.OpTypeBufferLoad || node.Type == ops.OpTypeBufferConst {
			leaves = append(leaves, node)
		}
		return true
	})
	return leaves
}

// View returns the tracker of a Load, Const or Store node.
func (op *Op) View() (views.Tracker, bool) {
	switch arg := op.Arg.(type) {
	case *MemBuffer:
		return arg.View, true
	case *ConstBuffer:
		return arg.View, true
	}
	return views.Tracker{}, false
}

// Vars returns the sorted names of the symbolic variables referenced by the views of the tree.
func (op *Op) Vars() []string {
	var names []string
	op.Walk(func(node *Op) bool {
		if st, ok := node.View(); ok {
			for name := range st.Vars {
				if !slices.Contains(names, name) {
					names = append(names, name)
				}
			}
		}
		return true
	})
	slices.Sort(names)
	return names
}

// ReduceOps returns the reduction nodes of the tree.
func (op *Op) ReduceOps() []*Op {
	var reduces []*Op
	op.Walk(func(node *Op) bool {
		if node.Type.IsReduce() {
			reduces = append(reduces, node)
		}
		return true
	})
	return reduces
}

// Equal returns whether both trees are structurally the same.
func (op *Op) Equal(other *Op) bool {
	if op == other {
		return true
	}
	if op == nil || other == nil || op.Type != other.Type || len(op.Sources) != len(other.Sources) {
		return false
	}
	if !argEqual(op.Arg, other.Arg) {
		return false
	}
	for ii, src := range op.Sources {
		if !src.Equal(other.Sources[ii]) {
			return false
		}
	}
	return true
}

func argEqual(a, b any) bool {
	switch aT := a.(type) {
	case *MemBuffer:
		bT, ok := b.(*MemBuffer)
		return ok && aT.Idx == bT.Idx && aT.DType == bT.DType && aT.View.Equal(bT.View)
	case *ConstBuffer:
		bT, ok := b.(*ConstBuffer)
		return ok && aT.Value == bT.Value && aT.DType == bT.DType && aT.View.Equal(bT.View)
	}
	if a == nil || b == nil {
		return a == b
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// String pretty-prints the tree, one operation per line, indented by depth.
func (op *Op) String() string {
	var sb strings.Builder
	op.format(&sb, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func (op *Op) format(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(op.Type.String())
	if op.Arg != nil {
		fmt.Fprintf(sb, " %v", op.Arg)
	}
	sb.WriteString("\n")
	for _, src := range op.Sources {
		src.format(sb, depth+1)
	}
}
