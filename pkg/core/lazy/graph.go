// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package lazy implements deferred buffers: a graph of unevaluated operations over tensors, and the
// scheduler that compiles the graph into an ordered list of kernels (Item).
//
// Building the graph never computes anything. Element-wise operations (E), reductions (R), casts and
// copies create nodes; movement operations (Reshape, Pad, Expand, Permute, Shrink, Stride) create views
// sharing the memory of their base node. Later CreateSchedule decides which nodes must be materialized
// (realized) and fuses everything else into the kernels that produce them.
//
// Nodes are owned by a Graph, that interns structurally equal nodes. A Graph is not safe for
// concurrent use.
package lazy

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazygraph/pkg/core/device"
	"github.com/gomlx/lazygraph/pkg/core/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// NodeID is the unique identifier of a Buffer within its Graph. They are never reused.
type NodeID int

// Graph is the arena of lazy buffers.
type Graph struct {
	config Config

	// nodes is indexed by NodeID. Swept nodes are set to nil.
	nodes []*Buffer

	// cache interns structurally equal nodes.
	cache map[cacheKey]*Buffer
}

// NewGraph creates a Graph configured with ConfigFromEnv.
//
// It panics if the environment holds an invalid configuration.
func NewGraph() *Graph {
	config, err := ConfigFromEnv()
	if err != nil {
		panic(err)
	}
	return NewGraphWithConfig(config)
}

// NewGraphWithConfig creates a Graph with the given configuration.
func NewGraphWithConfig(config Config) *Graph {
	return &Graph{
		config: config,
		cache:  make(map[cacheKey]*Buffer),
	}
}

// Config returns the graph configuration.
func (g *Graph) Config() Config { return g.config }

// NumNodes returns the number of live nodes.
func (g *Graph) NumNodes() int {
	count := 0
	for _, node := range g.nodes {
		if node != nil {
			count++
		}
	}
	return count
}

// Node returns the live node with the given id, or nil if it was swept.
func (g *Graph) Node(id NodeID) *Buffer {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

func (g *Graph) isLive(b *Buffer) bool {
	return b != nil && b.graph == g && g.Node(b.id) == b
}

// create a node, or return the interned one with the same structure.
//
// Any shape with a zero dimension collapses the node into a constant 0.
func (g *Graph) create(deviceName string, st views.Tracker, dtype dtypes.ElementType, op ops.OpType, arg any,
	srcs []*Buffer, base *Buffer) *Buffer {
	if slices.Contains(st.Shape(), 0) {
		st = views.FromShape(st.Shape()...)
		op, arg, srcs, base = ops.OpTypeLoadConst, 0.0, nil, nil
	}
	if base != nil && base.base != nil {
		exceptions.Panicf("lazy: the base of a view must be a base node, got %s", base)
	}
	if base != nil && len(srcs) > 0 {
		exceptions.Panicf("lazy: a view can't have sources")
	}
	for _, src := range srcs {
		if src.graph != g {
			exceptions.Panicf("lazy: source %s belongs to a different graph", src)
		}
	}

	cacheable := g.config.Cache && op != ops.OpTypeLoadEmpty && op != ops.OpTypeLoadCustom &&
		op != ops.OpTypeLoadConst && op != ops.OpTypeLoadCopy
	var key cacheKey
	if cacheable {
		key = makeCacheKey(deviceName, st, dtype, op, arg, srcs, base)
		if node, found := g.cache[key]; found {
			return node
		}
	}
	node := &Buffer{
		graph:  g,
		id:     NodeID(len(g.nodes)),
		device: deviceName,
		st:     st,
		dtype:  dtype,
		op:     op,
		arg:    arg,
		srcs:   srcs,
		base:   base,
	}
	g.nodes = append(g.nodes, node)
	if cacheable {
		g.cache[key] = node
	}
	return node
}

// New creates a contiguous node of the given shape.
func (g *Graph) New(deviceName string, shape []int, dtype dtypes.ElementType, op ops.OpType, arg any) *Buffer {
	return g.create(deviceName, views.FromShape(shape...), dtype, op, arg, nil, nil)
}

// Empty creates an uninitialized node: scheduling it allocates its memory.
func (g *Graph) Empty(deviceName string, dtype dtypes.ElementType, shape ...int) *Buffer {
	return g.New(deviceName, shape, dtype, ops.OpTypeLoadEmpty, nil)
}

// Scalar creates a constant node of shape [].
func (g *Graph) Scalar(deviceName string, dtype dtypes.ElementType, value float64) *Buffer {
	return g.New(deviceName, nil, dtype, ops.OpTypeLoadConst, value)
}

// FromFlat creates an already realized node backed by the given flat slice of values, which is
// owned by the node from then on. The size of flat must match the shape.
func (g *Graph) FromFlat(deviceName string, flat any, shape ...int) (*Buffer, error) {
	buf, err := device.FromFlat(deviceName, flat)
	if err != nil {
		return nil, err
	}
	if buf.Size() != xslices.Prod(shape) {
		return nil, errors.Errorf("lazy.FromFlat: flat has %d elements, shape %v requires %d", buf.Size(), shape, xslices.Prod(shape))
	}
	node := g.create(deviceName, views.FromShape(shape...), dtypes.Of(buf.DType()), ops.OpTypeLoadEmpty, nil, nil, nil)
	node.realized = buf
	return node, nil
}

// CustomFunc computes the contents of out given the realized inputs of a custom node.
type CustomFunc func(out *device.Buffer, inputs []*device.Buffer) error

// Custom creates a node computed by fn over the realized srcs.
func (g *Graph) Custom(deviceName string, dtype dtypes.ElementType, shape []int, fn CustomFunc, srcs ...*Buffer) *Buffer {
	return g.create(deviceName, views.FromShape(shape...), dtype, ops.OpTypeLoadCustom, fn, slices.Clone(srcs), nil)
}

// Sweep removes every node not reachable from the live nodes (through sources and bases) from the
// graph and its intern table. It returns the number of nodes removed.
//
// Swept nodes must not be used anymore. Realized nodes that are still needed must be in live.
func (g *Graph) Sweep(live ...*Buffer) int {
	reachable := make([]bool, len(g.nodes))
	stack := slices.Clone(live)
	for len(stack) > 0 {
		var node *Buffer
		node, stack = xslices.Pop(stack)
		if node == nil || !g.isLive(node) || reachable[node.id] {
			continue
		}
		reachable[node.id] = true
		stack = append(stack, node.srcs...)
		if node.base != nil {
			stack = append(stack, node.base)
		}
	}
	removed := 0
	for id, node := range g.nodes {
		if node != nil && !reachable[id] {
			g.nodes[id] = nil
			removed++
		}
	}
	for key, node := range g.cache {
		if g.nodes[node.id] == nil {
			delete(g.cache, key)
		}
	}
	klog.V(2).Infof("lazy.Graph.Sweep: removed %d nodes, %d live nodes left", removed, g.NumNodes())
	return removed
}

// childrenIndex returns the reverse adjacency of the base nodes: for each base, the nodes that use it
// (or a view of it) as a source. Children are ordered by NodeID.
func (g *Graph) childrenIndex() map[*Buffer][]*Buffer {
	children := make(map[*Buffer][]*Buffer)
	for _, node := range g.nodes {
		if node == nil {
			continue
		}
		for _, src := range node.srcs {
			srcBase := src.Base()
			list := children[srcBase]
			if len(list) > 0 && list[len(list)-1] == node {
				continue
			}
			children[srcBase] = append(list, node)
		}
	}
	return children
}
