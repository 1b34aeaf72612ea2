// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
)

// View maps indices of Shape onto a flat index: Offset + Σ idx[i]*Strides[i].
//
// Mask, if not nil, holds for each axis the half-open range [begin, end) of valid indices; positions
// outside of it read as zero (padding).
type View struct {
	Shape      []int
	Strides    []int
	Offset     int
	Mask       [][2]int
	Contiguous bool
}

// StridesForShape returns the row-major strides for shape. Axes of dimension 1 get stride 0.
func StridesForShape(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for axis := len(shape) - 1; axis >= 0; axis-- {
		if shape[axis] != 1 {
			strides[axis] = acc
		}
		acc *= shape[axis]
	}
	return strides
}

// NewView creates a canonical View: strides of 1-sized axes are zeroed, masks covering the whole
// shape are dropped and the Contiguous flag is computed.
//
// If strides is nil, row-major strides are used.
func NewView(shape, strides []int, offset int, mask [][2]int) View {
	shape = slices.Clone(shape)
	canonical := StridesForShape(shape)
	if strides == nil {
		strides = canonical
	} else {
		strides = slices.Clone(strides)
		for axis, dim := range shape {
			if dim == 1 {
				strides[axis] = 0
			}
		}
	}
	if mask != nil {
		full := true
		for axis, m := range mask {
			if m[0] != 0 || m[1] != shape[axis] {
				full = false
				break
			}
		}
		if full {
			mask = nil
		} else {
			mask = slices.Clone(mask)
		}
	}
	return View{
		Shape:      shape,
		Strides:    strides,
		Offset:     offset,
		Mask:       mask,
		Contiguous: offset == 0 && mask == nil && slices.Equal(strides, canonical),
	}
}

// Size returns the number of positions addressed by the view, the product of its shape.
func (v View) Size() int { return xslices.Prod(v.Shape) }

// MaskedSize returns the number of valid (not masked) positions.
func (v View) MaskedSize() int {
	if v.Mask == nil {
		return v.Size()
	}
	size := 1
	for _, m := range v.Mask {
		size *= max(m[1]-m[0], 0)
	}
	return size
}

// Equal returns whether both views are exactly the same.
func (v View) Equal(v2 View) bool {
	return v.Offset == v2.Offset && slices.Equal(v.Shape, v2.Shape) && slices.Equal(v.Strides, v2.Strides) &&
		slices.Equal(v.Mask, v2.Mask)
}

// String implements fmt.Stringer.
func (v View) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "View(shape=%v, strides=%v, offset=%d", v.Shape, v.Strides, v.Offset)
	if v.Mask != nil {
		fmt.Fprintf(&sb, ", mask=%v", v.Mask)
	}
	sb.WriteString(")")
	return sb.String()
}

// index returns the flat index of idx and whether it is inside the mask.
func (v View) index(idx []int) (int, bool) {
	flat := v.Offset
	for axis, i := range idx {
		if v.Mask != nil && (i < v.Mask[axis][0] || i >= v.Mask[axis][1]) {
			return 0, false
		}
		flat += i * v.Strides[axis]
	}
	return flat, true
}

// resize implements shrink and pad: arg holds the new [begin, end) of each axis, which may extend
// beyond the current shape for padding, in which case mask is given.
func (v View) resize(arg [][2]int, mask [][2]int) View {
	offset := v.Offset
	for axis, a := range arg {
		offset += a[0] * v.Strides[axis]
	}
	if v.Mask != nil {
		newMask := make([][2]int, len(arg))
		for axis, a := range arg {
			m := v.Mask[axis]
			newMask[axis] = [2]int{max(m[0]-a[0], 0), min(m[1]-a[0], a[1]-a[0])}
		}
		if mask == nil {
			mask = newMask
		} else {
			for axis := range mask {
				mask[axis] = [2]int{max(mask[axis][0], newMask[axis][0]), min(mask[axis][1], newMask[axis][1])}
			}
		}
	}
	shape := xslices.Map(arg, func(a [2]int) int { return a[1] - a[0] })
	return NewView(shape, v.Strides, offset, mask)
}

func (v View) checkRank(op string, rank int) {
	if rank != len(v.Shape) {
		exceptions.Panicf("views.%s: argument has rank %d, but view has rank %d (shape %v)", op, rank, len(v.Shape), v.Shape)
	}
}

// Pad the view with arg[axis] = (before, after) zero positions.
func (v View) Pad(arg [][2]int) View {
	v.checkRank("Pad", len(arg))
	padded := false
	for _, a := range arg {
		if a[0] < 0 || a[1] < 0 {
			exceptions.Panicf("views.Pad: negative padding %v", arg)
		}
		padded = padded || a[0] != 0 || a[1] != 0
	}
	if !padded {
		return v
	}
	resize := make([][2]int, len(arg))
	mask := make([][2]int, len(arg))
	for axis, a := range arg {
		resize[axis] = [2]int{-a[0], v.Shape[axis] + a[1]}
		mask[axis] = [2]int{a[0], v.Shape[axis] + a[0]}
	}
	return v.resize(resize, mask)
}

// Shrink the view to arg[axis] = [begin, end) of each axis.
func (v View) Shrink(arg [][2]int) View {
	v.checkRank("Shrink", len(arg))
	for axis, a := range arg {
		if a[0] < 0 || a[0] > a[1] || a[1] > v.Shape[axis] {
			exceptions.Panicf("views.Shrink: invalid range %v for axis %d of shape %v", a, axis, v.Shape)
		}
	}
	return v.resize(slices.Clone(arg), nil)
}

// Expand (broadcast) 1-sized axes to newShape.
func (v View) Expand(newShape []int) View {
	v.checkRank("Expand", len(newShape))
	var mask [][2]int
	if v.Mask != nil {
		mask = make([][2]int, len(newShape))
	}
	for axis, dim := range v.Shape {
		newDim := newShape[axis]
		if dim != newDim && dim != 1 {
			exceptions.Panicf("views.Expand: cannot expand shape %v to %v", v.Shape, newShape)
		}
		if mask == nil {
			continue
		}
		m := v.Mask[axis]
		switch {
		case dim == newDim:
			mask[axis] = m
		case m == [2]int{0, 1}:
			mask[axis] = [2]int{0, newDim}
		default:
			mask[axis] = [2]int{0, 0}
		}
	}
	return NewView(newShape, v.Strides, v.Offset, mask)
}

// Permute the axes of the view: axis i of the result is axis permutation[i] of v.
func (v View) Permute(permutation []int) View {
	v.checkRank("Permute", len(permutation))
	sorted := slices.Clone(permutation)
	slices.Sort(sorted)
	if !slices.Equal(sorted, xslices.Iota(0, len(permutation))) {
		exceptions.Panicf("views.Permute: %v is not a permutation", permutation)
	}
	shape := make([]int, len(permutation))
	strides := make([]int, len(permutation))
	var mask [][2]int
	if v.Mask != nil {
		mask = make([][2]int, len(permutation))
	}
	for ii, axis := range permutation {
		shape[ii] = v.Shape[axis]
		strides[ii] = v.Strides[axis]
		if mask != nil {
			mask[ii] = v.Mask[axis]
		}
	}
	return NewView(shape, strides, v.Offset, mask)
}

// Stride takes every mul[axis] element of each axis. Negative values flip the axis.
func (v View) Stride(mul []int) View {
	v.checkRank("Stride", len(mul))
	shape := make([]int, len(mul))
	strides := make([]int, len(mul))
	offset := v.Offset
	for axis, m := range mul {
		if m == 0 {
			exceptions.Panicf("views.Stride: stride 0 for axis %d is not valid", axis)
		}
		am := m
		if am < 0 {
			am = -am
			offset += (v.Shape[axis] - 1) * v.Strides[axis]
		}
		shape[axis] = (v.Shape[axis] + am - 1) / am
		strides[axis] = v.Strides[axis] * m
	}
	var mask [][2]int
	if v.Mask != nil {
		mask = make([][2]int, len(mul))
		for axis, m := range mul {
			mx, my, s := v.Mask[axis][0], v.Mask[axis][1], v.Shape[axis]
			am := max(m, -m)
			if m > 0 {
				mask[axis] = [2]int{(mx + am - 1) / am, (my + am - 1) / am}
			} else {
				mask[axis] = [2]int{(s - my + am - 1) / am, (s - mx + am - 1) / am}
			}
		}
	}
	return NewView(shape, strides, offset, mask)
}

func nonOnes(shape []int) []int {
	out := make([]int, 0, len(shape))
	for _, dim := range shape {
		if dim != 1 {
			out = append(out, dim)
		}
	}
	return out
}

// Reshape tries to express the reshape as a single view. It returns false if that is not possible,
// in which case the caller needs to stack a new view.
func (v View) Reshape(newShape []int) (View, bool) {
	if slices.Equal(v.Shape, newShape) {
		return v, true
	}
	if xslices.Prod(v.Shape) != xslices.Prod(newShape) {
		exceptions.Panicf("views.Reshape: cannot reshape %v to %v, sizes differ", v.Shape, newShape)
	}
	if v.Contiguous {
		return NewView(newShape, nil, 0, nil), true
	}
	if !slices.Equal(nonOnes(v.Shape), nonOnes(newShape)) {
		if v.Mask == nil && !slices.ContainsFunc(v.Strides, func(s int) bool { return s != 0 }) {
			return NewView(newShape, make([]int, len(newShape)), v.Offset, nil), true
		}
		return View{}, false
	}

	// Only 1-sized axes are inserted or removed.
	var keptStrides []int
	var keptMask [][2]int
	for axis, dim := range v.Shape {
		if dim == 1 {
			if v.Mask != nil && v.Mask[axis] != [2]int{0, 1} {
				return View{}, false
			}
			continue
		}
		keptStrides = append(keptStrides, v.Strides[axis])
		if v.Mask != nil {
			keptMask = append(keptMask, v.Mask[axis])
		}
	}
	strides := make([]int, len(newShape))
	var mask [][2]int
	if v.Mask != nil {
		mask = make([][2]int, len(newShape))
	}
	next := 0
	for axis, dim := range newShape {
		if dim == 1 {
			if mask != nil {
				mask[axis] = [2]int{0, 1}
			}
			continue
		}
		strides[axis] = keptStrides[next]
		if mask != nil {
			mask[axis] = keptMask[next]
		}
		next++
	}
	return NewView(newShape, strides, v.Offset, mask), true
}

// invert returns the view that maps v's output back onto its input, if v is only a permutation
// or flip of a buffer of size outSize.
func (v View) invert(outSize int) (View, bool) {
	ret := NewView(v.Shape, nil, 0, nil)
	if v.Mask != nil {
		ret = ret.Shrink(v.Mask)
	}
	flips := xslices.Map(v.Strides, func(s int) int {
		if s < 0 {
			return -1
		}
		return 1
	})
	ret = ret.Stride(flips)
	keys := xslices.Map(v.Strides, func(s int) int {
		if s > 0 {
			return -s
		}
		return s
	})
	ret = ret.Permute(xslices.Argsort(keys))
	if ret.Size() != outSize {
		return View{}, false
	}
	return ret, true
}

// maxIndex returns one past the largest flat index addressed by the valid positions of the view,
// or 0 if no position is valid.
func (v View) maxIndex() int {
	if slices.Contains(v.Shape, 0) {
		return 0
	}
	flat := v.Offset
	for axis, dim := range v.Shape {
		lo, hi := 0, dim
		if v.Mask != nil {
			lo, hi = v.Mask[axis][0], v.Mask[axis][1]
		}
		if lo >= hi {
			return 0
		}
		flat += max(lo*v.Strides[axis], (hi-1)*v.Strides[axis])
	}
	return flat + 1
}
