// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazygraph/pkg/core/views"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"k8s.io/klog/v2"
)

// trackedNodes is an insertion ordered map of nodes to the view through which a reduction reaches them.
type trackedNodes struct {
	nodes []*Buffer
	st    map[*Buffer]views.Tracker
}

func newTrackedNodes() *trackedNodes {
	return &trackedNodes{st: make(map[*Buffer]views.Tracker)}
}

// set the tracker of node. A node already present keeps its position.
func (t *trackedNodes) set(node *Buffer, st views.Tracker) {
	if _, found := t.st[node]; !found {
		t.nodes = append(t.nodes, node)
	}
	t.st[node] = st
}

func (t *trackedNodes) len() int { return len(t.nodes) }

// srcsWithBase returns the distinct sources of node that are views of base (or base itself).
func srcsWithBase(node, base *Buffer) []*Buffer {
	var matching []*Buffer
	for _, src := range node.srcs {
		if src.Base() == base {
			matching = append(matching, src)
		}
	}
	return xslices.Dedup(matching)
}

// pairReduces assigns each reduction to the kernel it will be fused in: it follows the reduction
// down its consumers until they reach a realized node, which becomes the kernel output. If that is not
// possible (more than one output, non-contiguous access, a second reduction), the reduction is
// realized on its own, or with the chain of single consumers that can be fused after it.
func (s *scheduler) pairReduces() {
	for r := range s.allBufs.All() {
		if r.base != nil || !r.op.IsReduce() || s.realizes.Has(r) {
			continue
		}

		// Follow the reduce down.
		childSet := newTrackedNodes()
		childSet.set(r, r.st)
		realizedChildren := newTrackedNodes()
		forcedRealize, canChase := false, true
		for !forcedRealize && childSet.len() > 0 {
			nextChildSet := newTrackedNodes()
		childLoop:
			for _, tr := range childSet.nodes {
				st := childSet.st[tr]
				if s.realizes.Has(tr) {
					realizedChildren.set(tr, st)
					// One output buffer per kernel, the reduction must be read contiguously, and at most one
					// reduction per kernel.
					other, claimed := s.reduceFor[tr]
					claimed = claimed && other != r
					if realizedChildren.len() > 1 || !st.Contiguous() || st.Size() != r.st.Size() || claimed {
						canChase = !claimed
						forcedRealize = true
						break childLoop
					}
					continue
				}
				for _, next := range s.children[tr] {
					if next.Realized() != nil {
						continue
					}
					if next.op.IsReduce() {
						forcedRealize = true
						break
					}
					stChildren := srcsWithBase(next, tr)
					if len(stChildren) > 1 {
						forcedRealize = true
						break
					}
					nextChildSet.set(next, st.Compose(stChildren[0].st))
				}
			}
			childSet = nextChildSet
		}

		if !forcedRealize {
			if realizedChildren.len() != 1 {
				exceptions.Panicf("lazy: reduction %s reached %d outputs, expected exactly one", r, realizedChildren.len())
			}
			s.reduceFor[realizedChildren.nodes[0]] = r
			continue
		}
		tr := r
		if canChase {
			// Chase the reduction down to contiguous single consumers.
			st := tr.st
			for len(s.children[tr]) == 1 {
				next := s.children[tr][0]
				stChildren := srcsWithBase(next, tr)
				if len(stChildren) > 1 || st.Size() != stChildren[0].st.Size() {
					break
				}
				st = st.Compose(stChildren[0].st)
				if !st.Contiguous() || next.op.IsReduce() {
					break
				}
				tr = next
			}
			s.reduceFor[tr] = r
		}
		klog.V(3).Infof("lazy: reduction %s forced to realize at %s", r, tr)
		s.realizes.Insert(tr)
	}
}
