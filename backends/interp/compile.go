// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package interp

import (
	"math"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/device"
	"github.com/gomlx/lazygraph/pkg/core/ir"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// evalFn computes the value of a node at the given index of its iteration space.
// It must not modify idx.
type evalFn func(idx []int) float64

// compile converts the op tree into a tree of closures.
func compile(node *ir.Op, inputs []*device.Buffer) (evalFn, error) {
	switch node.Type {
	case ops.OpTypeBufferLoad:
		mem, ok := node.Arg.(*ir.MemBuffer)
		if !ok || mem.Idx < 1 || mem.Idx > len(inputs) {
			return nil, errors.Errorf("invalid load argument %v for %d inputs", node.Arg, len(inputs))
		}
		buf, st := inputs[mem.Idx-1], mem.View
		return func(idx []int) float64 {
			if flat, valid := st.Index(idx); valid {
				return buf.Get(flat)
			}
			return 0
		}, nil

	case ops.OpTypeBufferConst:
		c, ok := node.Arg.(*ir.ConstBuffer)
		if !ok {
			return nil, errors.Errorf("invalid const argument %v", node.Arg)
		}
		value, st := c.Value, c.View
		return func(idx []int) float64 {
			if _, valid := st.Index(idx); valid {
				return value
			}
			return 0
		}, nil
	}

	if node.Type.IsReduce() {
		return compileReduce(node, inputs)
	}

	numOperands := node.Type.NumOperands()
	if numOperands < 0 {
		return nil, errors.Errorf("operation %s not supported", node.Type)
	}
	if len(node.Sources) != numOperands {
		return nil, errors.Errorf("operation %s takes %d operands, got %d", node.Type, numOperands, len(node.Sources))
	}
	srcs := make([]evalFn, numOperands)
	for ii, src := range node.Sources {
		var err error
		srcs[ii], err = compile(src, inputs)
		if err != nil {
			return nil, err
		}
	}

	if node.Type == ops.OpTypeCast {
		return compileCast(node, srcs[0])
	}
	switch numOperands {
	case 1:
		fn := unaryOps[node.Type]
		if fn == nil {
			return nil, errors.Errorf("unary operation %s not supported", node.Type)
		}
		a := srcs[0]
		return func(idx []int) float64 { return fn(a(idx)) }, nil
	case 2:
		fn := binaryOps[node.Type]
		if fn == nil {
			return nil, errors.Errorf("binary operation %s not supported", node.Type)
		}
		a, b := srcs[0], srcs[1]
		return func(idx []int) float64 { return fn(a(idx), b(idx)) }, nil
	}
	a, b, c := srcs[0], srcs[1], srcs[2]
	if node.Type == ops.OpTypeWhere {
		return func(idx []int) float64 {
			if a(idx) != 0 {
				return b(idx)
			}
			return c(idx)
		}, nil
	}
	return func(idx []int) float64 { return a(idx)*b(idx) + c(idx) }, nil
}

// compileReduce evaluates each output element by iterating over the reduced axes of the input shape,
// the shape of the views of the leaves under the reduction.
func compileReduce(node *ir.Op, inputs []*device.Buffer) (evalFn, error) {
	newShape, ok := node.Arg.([]int)
	if !ok || len(node.Sources) != 1 {
		return nil, errors.Errorf("invalid reduction %s with argument %v", node.Type, node.Arg)
	}
	leaves := node.Sources[0].Leaves()
	if len(leaves) == 0 {
		return nil, errors.Errorf("reduction %s without leaves", node.Type)
	}
	st, _ := leaves[0].View()
	srcShape := st.Shape()
	if len(srcShape) != len(newShape) {
		return nil, errors.Errorf("reduction %s from %v to %v: ranks differ", node.Type, srcShape, newShape)
	}
	src, err := compile(node.Sources[0], inputs)
	if err != nil {
		return nil, err
	}

	var reducedAxes []int
	for axis, dim := range newShape {
		if dim != srcShape[axis] {
			reducedAxes = append(reducedAxes, axis)
		}
	}
	reducedShape := xslices.Map(reducedAxes, func(axis int) int { return srcShape[axis] })
	numReduced := xslices.Prod(reducedShape)

	init, combine := 0.0, func(acc, v float64) float64 { return acc + v }
	if node.Type == ops.OpTypeReduceMax {
		init, combine = math.Inf(-1), math.Max
	}
	return func(idx []int) float64 {
		srcIdx := make([]int, len(srcShape))
		copy(srcIdx, idx)
		acc := init
		for pos := range numReduced {
			rem := pos
			for ii := len(reducedAxes) - 1; ii >= 0; ii-- {
				srcIdx[reducedAxes[ii]] = rem % reducedShape[ii]
				rem /= reducedShape[ii]
			}
			acc = combine(acc, src(srcIdx))
		}
		return acc
	}, nil
}

var unaryOps = map[ops.OpType]func(float64) float64{
	ops.OpTypeNeg:   func(a float64) float64 { return -a },
	ops.OpTypeExp2:  math.Exp2,
	ops.OpTypeLog2:  math.Log2,
	ops.OpTypeSin:   math.Sin,
	ops.OpTypeSqrt:  math.Sqrt,
	ops.OpTypeRecip: func(a float64) float64 { return 1 / a },
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var binaryOps = map[ops.OpType]func(float64, float64) float64{
	ops.OpTypeAdd:   func(a, b float64) float64 { return a + b },
	ops.OpTypeSub:   func(a, b float64) float64 { return a - b },
	ops.OpTypeMul:   func(a, b float64) float64 { return a * b },
	ops.OpTypeDiv:   func(a, b float64) float64 { return a / b },
	ops.OpTypeMax:   math.Max,
	ops.OpTypeMod:   math.Mod,
	ops.OpTypeCmpLt: func(a, b float64) float64 { return boolToFloat(a < b) },
	ops.OpTypeCmpEq: func(a, b float64) float64 { return boolToFloat(a == b) },
	ops.OpTypeXor:   func(a, b float64) float64 { return float64(int64(a) ^ int64(b)) },
}

// compileCast converts values to the value set of the target dtype. Bitcasts reinterpret the bits of
// a leaf of the same width.
func compileCast(node *ir.Op, src evalFn) (evalFn, error) {
	arg, ok := node.Arg.(ir.CastArg)
	if !ok {
		return nil, errors.Errorf("invalid cast argument %v", node.Arg)
	}
	to := arg.DType.DType
	if !arg.Bitcast {
		convert := convertTo(to)
		return func(idx []int) float64 { return convert(src(idx)) }, nil
	}

	var from dtypes.DType
	switch leafArg := node.Sources[0].Arg.(type) {
	case *ir.MemBuffer:
		from = leafArg.DType.DType
	case *ir.ConstBuffer:
		from = leafArg.DType.DType
	default:
		return nil, errors.Errorf("bitcast to %s is only supported directly over loads and constants", to)
	}
	bitcast, err := bitcastFn(from, to)
	if err != nil {
		return nil, err
	}
	return func(idx []int) float64 { return bitcast(src(idx)) }, nil
}

func convertTo(dtype dtypes.DType) func(float64) float64 {
	switch dtype {
	case dtypes.Bool:
		return func(v float64) float64 { return boolToFloat(v != 0) }
	case dtypes.Int8, dtypes.Int16, dtypes.Int32, dtypes.Int64,
		dtypes.Uint8, dtypes.Uint16, dtypes.Uint32, dtypes.Uint64:
		return func(v float64) float64 { return device.IntegerValue(dtype, v) }
	case dtypes.Float16:
		return func(v float64) float64 { return float64(float16.Fromfloat32(float32(v)).Float32()) }
	case dtypes.Float32:
		return func(v float64) float64 { return float64(float32(v)) }
	}
	return func(v float64) float64 { return v }
}

func bitcastFn(from, to dtypes.DType) (func(float64) float64, error) {
	switch {
	case from == dtypes.Float32 && (to == dtypes.Int32 || to == dtypes.Uint32):
		signed := to == dtypes.Int32
		return func(v float64) float64 {
			bits := math.Float32bits(float32(v))
			if signed {
				return float64(int32(bits))
			}
			return float64(bits)
		}, nil
	case (from == dtypes.Int32 || from == dtypes.Uint32) && to == dtypes.Float32:
		return func(v float64) float64 { return float64(math.Float32frombits(uint32(int64(v)))) }, nil
	case from == dtypes.Float16 && (to == dtypes.Int16 || to == dtypes.Uint16):
		signed := to == dtypes.Int16
		return func(v float64) float64 {
			bits := float16.Fromfloat32(float32(v)).Bits()
			if signed {
				return float64(int16(bits))
			}
			return float64(bits)
		}, nil
	case (from == dtypes.Int16 || from == dtypes.Uint16) && to == dtypes.Float16:
		return func(v float64) float64 { return float64(float16.Frombits(uint16(int64(v))).Float32()) }, nil
	case from == to:
		return func(v float64) float64 { return v }, nil
	}
	return nil, errors.Errorf("bitcast from %s to %s not supported", from, to)
}
