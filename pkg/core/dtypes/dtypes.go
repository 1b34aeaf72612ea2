// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dtypes defines the ElementType of lazy buffers: a github.com/gomlx/gopjrt/dtypes DType,
// optionally laid out as an image (a 2D texture of 4 packed channels), plus the promotion order
// used when combining operands of different types.
package dtypes

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
)

// ImagePackingFactor is the number of channels packed on each image texel.
const ImagePackingFactor = 4

// ElementType is the type of each element of a lazy buffer.
//
// It is comparable, and can be used as part of map keys.
type ElementType struct {
	DType dtypes.DType

	// ImageShape is set for image layouts: (height, width, ImagePackingFactor).
	ImageShape [3]int
}

// Commonly used element types.
var (
	Bool    = Of(dtypes.Bool)
	Int32   = Of(dtypes.Int32)
	Int64   = Of(dtypes.Int64)
	Uint8   = Of(dtypes.Uint8)
	Float16 = Of(dtypes.Float16)
	Float32 = Of(dtypes.Float32)
	Float64 = Of(dtypes.Float64)
)

// Of returns the plain ElementType for dtype.
func Of(dtype dtypes.DType) ElementType {
	return ElementType{DType: dtype}
}

// Image returns an image ElementType of height x width texels, each holding ImagePackingFactor
// values of dtype (usually Float16 or Float32).
func Image(dtype dtypes.DType, height, width int) ElementType {
	return ElementType{DType: dtype, ImageShape: [3]int{height, width, ImagePackingFactor}}
}

// IsImage returns whether the type is an image layout.
func (t ElementType) IsImage() bool { return t.ImageShape[2] != 0 }

// ImageSize returns the number of values held by an image layout, or 0 for plain types.
func (t ElementType) ImageSize() int {
	return t.ImageShape[0] * t.ImageShape[1] * t.ImageShape[2]
}

// priorities of the plain dtypes for promotion: the larger wins.
var priorities = map[dtypes.DType]int{
	dtypes.Bool:     0,
	dtypes.Int8:     1,
	dtypes.Uint8:    2,
	dtypes.Int16:    3,
	dtypes.Uint16:   4,
	dtypes.Int32:    5,
	dtypes.Uint32:   6,
	dtypes.Int64:    7,
	dtypes.Uint64:   8,
	dtypes.Float16:  9,
	dtypes.BFloat16: 10,
	dtypes.Float32:  11,
	dtypes.Float64:  12,
}

// imagePriority is above every plain type: an operation touching an image keeps the image layout.
const imagePriority = 100

// Priority used by Max to promote operands.
func (t ElementType) Priority() int {
	if t.IsImage() {
		return imagePriority
	}
	if p, found := priorities[t.DType]; found {
		return p
	}
	return -1
}

// Max returns the widest of the given types. Ties are resolved in favor of the first one.
func Max(first ElementType, others ...ElementType) ElementType {
	widest := first
	for _, t := range others {
		if t.Priority() > widest.Priority() {
			widest = t
		}
	}
	return widest
}

// Memory returns the number of bytes used by one element.
func (t ElementType) Memory() uintptr {
	return t.DType.Memory()
}

// String implements fmt.Stringer.
func (t ElementType) String() string {
	if t.IsImage() {
		return fmt.Sprintf("image<%s>%v", t.DType, t.ImageShape)
	}
	return t.DType.String()
}
