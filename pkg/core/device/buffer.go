// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package device implements the real (materialized) buffers that back realized lazy buffers.
//
// Buffers live on a named device, but storage is always a Go flat slice of the buffer's DType: the
// scheduler only cares about their identity, and the reference interpreter reads and writes them.
package device

import (
	"fmt"
	"math"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Buffer is a materialized array of values on a device.
//
// Buffers are handles: two Buffer pointers refer to the same memory iff they are the same pointer.
type Buffer struct {
	id     uuid.UUID
	device string
	dtype  dtypes.DType

	// flat is always a slice of dtype.GoType().
	flat any
}

// New allocates a zero initialized buffer of size elements.
func New(device string, dtype dtypes.DType, size int) *Buffer {
	if size < 0 {
		exceptions.Panicf("device.New(%q, %s, %d): negative size", device, dtype, size)
	}
	if !supported(dtype) {
		exceptions.Panicf("device.New(%q, %s, %d): dtype not supported", device, dtype, size)
	}
	return &Buffer{
		id:     uuid.New(),
		device: device,
		dtype:  dtype,
		flat:   reflect.MakeSlice(reflect.SliceOf(dtype.GoType()), size, size).Interface(),
	}
}

// FromFlat creates a buffer that owns flat, which must be a slice of one of the supported Go types.
func FromFlat(device string, flat any) (*Buffer, error) {
	flatV := reflect.ValueOf(flat)
	if flatV.Kind() != reflect.Slice {
		return nil, errors.Errorf("device.FromFlat: expected a slice, got %T", flat)
	}
	dtype := dtypes.FromGoType(flatV.Type().Elem())
	if !supported(dtype) {
		return nil, errors.Errorf("device.FromFlat: unsupported element type %s", flatV.Type().Elem())
	}
	return &Buffer{id: uuid.New(), device: device, dtype: dtype, flat: flat}, nil
}

func supported(dtype dtypes.DType) bool {
	switch dtype {
	case dtypes.Bool, dtypes.Int8, dtypes.Int16, dtypes.Int32, dtypes.Int64,
		dtypes.Uint8, dtypes.Uint16, dtypes.Uint32, dtypes.Uint64,
		dtypes.Float16, dtypes.Float32, dtypes.Float64:
		return true
	}
	return false
}

// ID uniquely identifies the buffer.
func (b *Buffer) ID() uuid.UUID { return b.id }

// Device where the buffer lives.
func (b *Buffer) Device() string { return b.device }

// DType of the elements.
func (b *Buffer) DType() dtypes.DType { return b.dtype }

// Size is the number of elements.
func (b *Buffer) Size() int { return reflect.ValueOf(b.flat).Len() }

// Memory used by the buffer, in bytes.
func (b *Buffer) Memory() uintptr { return b.dtype.Memory() * uintptr(b.Size()) }

// Flat returns the underlying slice. It is not a copy.
func (b *Buffer) Flat() any { return b.flat }

// Get the element at position i converted to float64. Booleans are 0 or 1.
func (b *Buffer) Get(i int) float64 {
	switch flat := b.flat.(type) {
	case []bool:
		if flat[i] {
			return 1
		}
		return 0
	case []int8:
		return float64(flat[i])
	case []int16:
		return float64(flat[i])
	case []int32:
		return float64(flat[i])
	case []int64:
		return float64(flat[i])
	case []uint8:
		return float64(flat[i])
	case []uint16:
		return float64(flat[i])
	case []uint32:
		return float64(flat[i])
	case []uint64:
		return float64(flat[i])
	case []float16.Float16:
		return float64(flat[i].Float32())
	case []float32:
		return float64(flat[i])
	case []float64:
		return flat[i]
	}
	exceptions.Panicf("device.Buffer.Get: unsupported flat type %T", b.flat)
	return 0
}

// Set the element at position i, converting value to the buffer's dtype.
//
// Integer dtypes truncate toward zero and wrap around their width, see IntegerValue.
func (b *Buffer) Set(i int, value float64) {
	switch flat := b.flat.(type) {
	case []bool:
		flat[i] = value != 0
	case []int8:
		flat[i] = int8(truncInt(value))
	case []int16:
		flat[i] = int16(truncInt(value))
	case []int32:
		flat[i] = int32(truncInt(value))
	case []int64:
		flat[i] = truncInt(value)
	case []uint8:
		flat[i] = uint8(truncInt(value))
	case []uint16:
		flat[i] = uint16(truncInt(value))
	case []uint32:
		flat[i] = uint32(truncInt(value))
	case []uint64:
		flat[i] = truncUint(value)
	case []float16.Float16:
		flat[i] = float16.Fromfloat32(float32(value))
	case []float32:
		flat[i] = float32(value)
	case []float64:
		flat[i] = value
	default:
		exceptions.Panicf("device.Buffer.Set: unsupported flat type %T", b.flat)
	}
}

// truncInt truncates value toward zero. NaN becomes 0 and values out of the int64 range saturate.
func truncInt(value float64) int64 {
	switch {
	case math.IsNaN(value):
		return 0
	case value <= math.MinInt64:
		return math.MinInt64
	case value >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(value)
}

// truncUint is truncInt for uint64, which also covers [2^63, 2^64).
func truncUint(value float64) uint64 {
	switch {
	case value >= 1<<64:
		return math.MaxUint64
	case value >= 1<<63:
		return uint64(value)
	}
	return uint64(truncInt(value))
}

// IntegerValue returns value as stored in a buffer of the integer dtype: truncated toward zero and
// wrapped around the width of the type (so -1 is 255 for Uint8). NaN converts to 0.
func IntegerValue(dtype dtypes.DType, value float64) float64 {
	switch dtype {
	case dtypes.Int8:
		return float64(int8(truncInt(value)))
	case dtypes.Int16:
		return float64(int16(truncInt(value)))
	case dtypes.Int32:
		return float64(int32(truncInt(value)))
	case dtypes.Int64:
		return float64(truncInt(value))
	case dtypes.Uint8:
		return float64(uint8(truncInt(value)))
	case dtypes.Uint16:
		return float64(uint16(truncInt(value)))
	case dtypes.Uint32:
		return float64(uint32(truncInt(value)))
	case dtypes.Uint64:
		return float64(truncUint(value))
	}
	exceptions.Panicf("device.IntegerValue: %s is not an integer dtype", dtype)
	return 0
}

// CopyFrom copies the contents of src into b. Both buffers must have the same dtype and size.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if src.dtype != b.dtype || src.Size() != b.Size() {
		return errors.Errorf("device.Buffer.CopyFrom: cannot copy %s into %s", src, b)
	}
	reflect.Copy(reflect.ValueOf(b.flat), reflect.ValueOf(src.flat))
	return nil
}

// String implements fmt.Stringer.
func (b *Buffer) String() string {
	if b == nil {
		return "<nil device buffer>"
	}
	return fmt.Sprintf("Buffer(%s, %s[%d], %s, id=%s)", b.device, b.dtype, b.Size(),
		humanize.Bytes(uint64(b.Memory())), b.id.String()[:8])
}
