// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"k8s.io/klog/v2"
)

func (b *Buffer) reduceOp(op ops.OpType, newShape []int) *Buffer {
	if slices.Equal(b.Shape(), newShape) {
		return b
	}
	st := views.FromShape(newShape...).WithVars(b.st.Vars)
	return b.graph.create(b.device, st, b.dtype, op, slices.Clone(newShape), []*Buffer{b}, nil)
}

// R reduces b to newShape with op (ops.OpTypeReduceSum or ops.OpTypeReduceMax). The reduced axes
// have dimension 1 in newShape, the others are kept.
//
// Large reductions are split in two stages, so that each stage reduces a smaller number of elements,
// see Config for the parameters.
func (b *Buffer) R(op ops.OpType, newShape ...int) *Buffer {
	shape := b.Shape()
	if !op.IsReduce() {
		exceptions.Panicf("lazy.R: %s is not a reduce operation", op)
	}
	if len(newShape) != len(shape) {
		exceptions.Panicf("lazy.R(%s): new shape %v must have the rank of %v", op, newShape, shape)
	}
	for axis, dim := range newShape {
		if dim != shape[axis] && dim != 1 {
			exceptions.Panicf("lazy.R(%s): can't reduce shape %v to %v", op, shape, newShape)
		}
	}
	config := b.graph.config
	if b.st.Symbolic() || slices.Contains(shape, 0) ||
		xslices.Prod(shape)/xslices.Prod(newShape) < config.ReduceSplitThreshold {
		return b.reduceOp(op, newShape)
	}

	// Choose the axis to split: largest divisor of SplitDivisorBase, penalizing large strides.
	strides := b.st.RealStrides()
	axis, divisor, heuristic := -1, 0, 0.0
	for ii, dim := range shape {
		if dim == newShape[ii] {
			continue
		}
		d := gcd(config.SplitDivisorBase, dim)
		h := 0.0
		if strides[ii] != 0 {
			h = float64(d) / float64(strides[ii])
		}
		if axis < 0 || h > heuristic || (h == heuristic && d >= divisor) {
			axis, divisor, heuristic = ii, d, h
		}
	}
	if axis < 0 || divisor < config.SplitMinDivisor || heuristic < config.SplitMinHeuristic {
		return b.reduceOp(op, newShape)
	}
	split := func(inner ...int) []int {
		s := slices.Clone(shape[:axis])
		s = append(s, shape[axis]/divisor)
		s = append(s, inner...)
		return append(s, shape[axis+1:]...)
	}
	klog.V(3).Infof("lazy.R(%s): splitting axis %d of %v by %d", op, axis, shape, divisor)
	return b.Reshape(split(divisor)...).reduceOp(op, split(1)).Reshape(split()...).reduceOp(op, newShape)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
