// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazygraph/pkg/core/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/support/sets"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"k8s.io/klog/v2"
)

// scheduler holds the state of one CreateSchedule request.
type scheduler struct {
	// realizes are the base nodes that will be materialized in their own kernel.
	realizes sets.Set[*Buffer]

	// allBufs are the unrealized base nodes reachable from the outputs, in visiting order.
	allBufs *sets.Ordered[*Buffer]

	// simplePads are bases padded by a single mask covering exactly their elements: they are only
	// realized if padding them isn't safe.
	simplePads *sets.Ordered[*Buffer]

	// reduceFor maps the node that stores a kernel output to the reduction fused in it.
	reduceFor map[*Buffer]*Buffer

	children map[*Buffer][]*Buffer
}

func newScheduler(g *Graph) *scheduler {
	return &scheduler{
		realizes:   sets.Make[*Buffer](),
		allBufs:    sets.MakeOrdered[*Buffer](),
		simplePads: sets.MakeOrdered[*Buffer](),
		reduceFor:  make(map[*Buffer]*Buffer),
		children:   g.childrenIndex(),
	}
}

// findRealizes walks the graph from root (depth-first, sources in order) collecting the nodes that
// need to be materialized.
func (s *scheduler) findRealizes(root *Buffer) {
	stack := []*Buffer{root}
	for len(stack) > 0 {
		var buf *Buffer
		buf, stack = xslices.Pop(stack)
		if s.allBufs.Has(buf) || buf.Realized() != nil {
			continue
		}
		if buf.dtype.IsImage() && !imageLayoutFits(buf) {
			klog.V(3).Infof("lazy: forcing image %s with shape %v to float32", buf.dtype, buf.Shape())
			buf.dtype = dtypes.Float32
		}
		if buf.forcedRealize {
			s.realizes.Insert(buf)
		}
		if buf.base != nil {
			base := buf.base
			// Realize all places where the buffer is expanded.
			expanded := xslices.Prod(base.Shape()) < xslices.Prod(buf.Shape())
			switch {
			case expanded && s.isSimplePad(buf):
				s.simplePads.Insert(base)
			case expanded:
				s.realizes.Insert(base)
			case buf.st.Masked():
				// Padding that doesn't grow the buffer (e.g. a shrink followed by a pad) still reads
				// zeros through the fused computation.
				s.simplePads.Insert(base)
			}
			stack = append(stack, base)
			continue
		}
		s.allBufs.Insert(buf)
		if buf.op.IsLoad() {
			s.realizes.Insert(buf)
		}
		if buf.op == ops.OpTypeLoadCopy {
			src := buf.srcs[0]
			if !src.st.Contiguous() || src.st.Size() != src.Base().st.Size() {
				exceptions.Panicf("lazy: the source of a copy must be contiguous, got %s", src)
			}
			s.realizes.Insert(src.Base())
		}
		for ii := len(buf.srcs) - 1; ii >= 0; ii-- {
			stack = append(stack, buf.srcs[ii])
		}
	}
}

// imageLayoutFits checks that an image typed node covers the image exactly, and that some unit stride
// axis can be packed in groups of dtypes.ImagePackingFactor.
func imageLayoutFits(buf *Buffer) bool {
	if xslices.Prod(buf.Shape()) != buf.dtype.ImageSize() {
		return false
	}
	shape := buf.Shape()
	return slices.ContainsFunc(buf.st.UnitStrideAxes(), func(axis int) bool {
		return shape[axis]%dtypes.ImagePackingFactor == 0
	})
}

// isSimplePad returns whether the view is a single masked view whose valid region holds exactly the
// elements of its base.
func (s *scheduler) isSimplePad(buf *Buffer) bool {
	if len(buf.st.Views) != 1 {
		return false
	}
	v := buf.st.Views[0]
	return v.Mask != nil && v.MaskedSize() == xslices.Prod(buf.base.Shape())
}

// isPaddingOkay returns whether the node can be computed over a padded region without being
// materialized first: none of the operations fused into it may turn the padding zeros into
// something else.
func (s *scheduler) isPaddingOkay(buf *Buffer) bool {
	visited := sets.Make[*Buffer]()
	stack := []*Buffer{buf}
	for len(stack) > 0 {
		var node *Buffer
		node, stack = xslices.Pop(stack)
		if visited.Has(node) {
			continue
		}
		visited.Insert(node)
		if s.realizes.Has(node) || node.Realized() != nil {
			continue
		}
		if node.op.UnsafeUnderPadding() {
			return false
		}
		for _, src := range node.srcs {
			stack = append(stack, src.Base())
		}
	}
	return true
}

// checkSimplePads realizes the simple pads that are not safe to fuse.
func (s *scheduler) checkSimplePads() {
	for pad := range s.simplePads.All() {
		if !s.isPaddingOkay(pad) {
			klog.V(3).Infof("lazy: realizing padded %s", pad)
			s.realizes.Insert(pad)
		}
	}
}
