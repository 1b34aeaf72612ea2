// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package views implements the view algebra used by the lazy graph: a Tracker is a stack of Views
// that reinterprets the memory of a buffer (reshape, pad, expand, permute, shrink and stride) without
// copying it.
//
// The first View of a Tracker indexes the underlying buffer; every other View indexes the row-major
// flat positions of the View before it. Most operations only touch the last View, a new one is
// stacked only when a reshape can't be expressed otherwise.
//
// Symbolic dimensions are represented by AxisBindings carried by the Tracker: the dimensions are
// always the bound (concrete) values, and the bindings name the variables they came from.
package views

import (
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
)

// Tracker is a stack of Views, the last one defines the shape.
//
// Trackers are values: every operation returns a new Tracker and never modifies the receiver.
type Tracker struct {
	Views []View
	Vars  AxisBindings
}

// FromShape returns a contiguous Tracker for the given shape.
func FromShape(shape ...int) Tracker {
	return Tracker{Views: []View{NewView(shape, nil, 0, nil)}}
}

// Shape returns the shape of the Tracker (the shape of its last View).
// The returned slice must not be modified.
func (t Tracker) Shape() []int {
	return t.last().Shape
}

// Rank returns the number of axes.
func (t Tracker) Rank() int { return len(t.Shape()) }

func (t Tracker) last() View {
	if len(t.Views) == 0 {
		exceptions.Panicf("views.Tracker has no views, it was not properly created")
	}
	return t.Views[len(t.Views)-1]
}

// withLast returns a copy of t with the last view replaced.
func (t Tracker) withLast(v View) Tracker {
	newViews := slices.Clone(t.Views)
	newViews[len(newViews)-1] = v
	return Tracker{Views: newViews, Vars: t.Vars}
}

// Contiguous returns whether the tracker is a single contiguous view: the identity mapping of a
// row-major buffer.
func (t Tracker) Contiguous() bool {
	return len(t.Views) == 1 && t.Views[0].Contiguous
}

// Size returns the number of elements of the underlying buffer addressed by the tracker: one past the
// largest flat index. For an expanded tracker it is smaller than the product of the shape.
func (t Tracker) Size() int {
	return t.Views[0].maxIndex()
}

// Masked returns whether any of the views hides positions behind a padding mask.
func (t Tracker) Masked() bool {
	return slices.ContainsFunc(t.Views, func(v View) bool { return v.Mask != nil })
}

// Symbolic returns whether any dimension is bound to a variable.
func (t Tracker) Symbolic() bool { return len(t.Vars) > 0 }

// WithVars returns a copy of the tracker with the given variable bindings merged in.
// It panics on conflicting bindings.
func (t Tracker) WithVars(vars AxisBindings) Tracker {
	if len(vars) == 0 {
		return t
	}
	merged := t.Vars.Clone()
	if merged == nil {
		merged = make(AxisBindings, len(vars))
	}
	if err := merged.Merge(vars); err != nil {
		panic(err)
	}
	return Tracker{Views: t.Views, Vars: merged}
}

// Bind marks axis as the symbolic dimension name, currently bound to its dimension.
// It panics if the name is already bound to a different value.
func (t Tracker) Bind(name string, axis int) Tracker {
	if axis < 0 || axis >= t.Rank() {
		exceptions.Panicf("views.Bind(%q, %d): axis out of range for shape %v", name, axis, t.Shape())
	}
	return t.WithVars(AxisBindings{name: t.Shape()[axis]})
}

// VarVals returns a copy of the bound values of the variables used by the tracker.
func (t Tracker) VarVals() AxisBindings {
	vals := make(AxisBindings, len(t.Vars))
	for name, value := range t.Vars {
		if value != Unbound {
			vals[name] = value
		}
	}
	return vals
}

// Unbind returns the tracker with its variables kept by name only, and their former bound values.
func (t Tracker) Unbind() (Tracker, AxisBindings) {
	if len(t.Vars) == 0 {
		return t, nil
	}
	unbound := make(AxisBindings, len(t.Vars))
	for name := range t.Vars {
		unbound[name] = Unbound
	}
	return Tracker{Views: t.Views, Vars: unbound}, t.VarVals()
}

// Reshape the tracker. It stacks a new View if the last one can't be reshaped.
func (t Tracker) Reshape(newShape ...int) Tracker {
	if v, ok := t.last().Reshape(newShape); ok {
		return t.withLast(v)
	}
	views := append(slices.Clone(t.Views), NewView(newShape, nil, 0, nil))
	return Tracker{Views: views, Vars: t.Vars}
}

// Pad each axis with arg[axis] = (before, after) zeros.
func (t Tracker) Pad(arg ...[2]int) Tracker { return t.withLast(t.last().Pad(arg)) }

// Shrink each axis to arg[axis] = [begin, end).
func (t Tracker) Shrink(arg ...[2]int) Tracker { return t.withLast(t.last().Shrink(arg)) }

// Expand (broadcast) 1-sized axes to newShape.
func (t Tracker) Expand(newShape ...int) Tracker { return t.withLast(t.last().Expand(newShape)) }

// Permute the axes.
func (t Tracker) Permute(permutation ...int) Tracker {
	return t.withLast(t.last().Permute(permutation))
}

// Stride subsamples each axis by mul[axis]. Negative values flip the axis.
func (t Tracker) Stride(mul ...int) Tracker { return t.withLast(t.last().Stride(mul)) }

// mergeViews merges vm1 applied on top of vm2 into a single view, if possible.
func mergeViews(vm2, vm1 View) (View, bool) {
	if vm2.Contiguous {
		return vm1, true
	}
	if vm1.Contiguous && slices.Equal(vm1.Shape, vm2.Shape) {
		return vm2, true
	}
	if vm1.Contiguous && vm1.Size() == vm2.Size() {
		if merged, ok := vm2.Reshape(vm1.Shape); ok {
			return merged, true
		}
	}
	return View{}, false
}

// Simplify merges trailing views where possible.
func (t Tracker) Simplify() Tracker {
	views := slices.Clone(t.Views)
	for len(views) >= 2 {
		merged, ok := mergeViews(views[len(views)-2], views[len(views)-1])
		if !ok {
			break
		}
		views = append(views[:len(views)-2], merged)
	}
	return Tracker{Views: views, Vars: t.Vars}
}

// Compose returns the tracker that first applies t and then other on top of it: other indexes the
// shape of t. This is how the view of a node is accumulated while walking from a consumer towards
// the node's base.
func (t Tracker) Compose(other Tracker) Tracker {
	if other.Views[0].maxIndex() > xslices.Prod(t.Shape()) {
		exceptions.Panicf("views.Compose: view %s addresses positions beyond shape %v", other.Views[0], t.Shape())
	}
	ret := Tracker{Views: slices.Clone(t.Views), Vars: t.Vars.Clone()}
	for _, v := range other.Views {
		ret.Views = append(ret.Views, v)
		ret = ret.Simplify()
	}
	if len(other.Vars) > 0 {
		ret = ret.WithVars(other.Vars)
	}
	return ret
}

// Invert returns the tracker that maps t's shape back onto outShape, the shape t was built from.
// It only succeeds if t is built of permutations, flips, reshapes and pads: expands and shrinks
// lose information and are not invertible.
func (t Tracker) Invert(outShape []int) (Tracker, bool) {
	inverted := make([]View, 0, len(t.Views))
	for vi := len(t.Views) - 1; vi >= 0; vi-- {
		target := outShape
		if vi > 0 {
			target = t.Views[vi-1].Shape
		}
		v, ok := t.Views[vi].invert(xslices.Prod(target))
		if !ok {
			return Tracker{}, false
		}
		inverted = append(inverted, v)
	}
	return Tracker{Views: inverted}.Reshape(outShape...), true
}

// RealStrides returns the strides of each axis into the underlying buffer, with 0 for axes that are
// broadcast, padded or whose stride can't be expressed directly.
//
// Mergeable views are merged first. If more than one view remains, all strides are reported as 0.
func (t Tracker) RealStrides() []int {
	t = t.Simplify()
	v := t.last()
	strides := make([]int, len(v.Shape))
	if len(t.Views) > 1 {
		return strides
	}
	for axis, stride := range v.Strides {
		if v.Mask != nil && v.Mask[axis] != [2]int{0, v.Shape[axis]} {
			continue
		}
		strides[axis] = stride
	}
	return strides
}

// UnitStrideAxes returns the axes with real stride 1.
func (t Tracker) UnitStrideAxes() []int {
	var axes []int
	for axis, stride := range t.RealStrides() {
		if stride == 1 {
			axes = append(axes, axis)
		}
	}
	return axes
}

// Index returns the flat index into the underlying buffer of the element at idx, and whether it is
// valid (not padding).
func (t Tracker) Index(idx []int) (int, bool) {
	for vi := len(t.Views) - 1; vi >= 0; vi-- {
		flat, valid := t.Views[vi].index(idx)
		if !valid {
			return 0, false
		}
		if vi == 0 {
			return flat, true
		}
		idx = Unravel(flat, t.Views[vi-1].Shape)
	}
	return 0, false
}

// Unravel converts a row-major flat position into indices of shape.
func Unravel(flat int, shape []int) []int {
	idx := make([]int, len(shape))
	for axis := len(shape) - 1; axis >= 0; axis-- {
		if shape[axis] == 0 {
			continue
		}
		idx[axis] = flat % shape[axis]
		flat /= shape[axis]
	}
	return idx
}

// Equal returns whether both trackers have the same views and variables.
func (t Tracker) Equal(t2 Tracker) bool {
	return slices.EqualFunc(t.Views, t2.Views, View.Equal) && t.Vars.Key() == t2.Vars.Key()
}

// Key returns a canonical string usable as a map key.
func (t Tracker) Key() string {
	parts := xslices.Map(t.Views, View.String)
	if len(t.Vars) > 0 {
		parts = append(parts, "vars="+t.Vars.Key())
	}
	return strings.Join(parts, ";")
}

// String implements fmt.Stringer.
func (t Tracker) String() string {
	return "Tracker(" + t.Key() + ")"
}
