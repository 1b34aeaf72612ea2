// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ops defines the OpType enum of the operations that a lazy buffer can defer, and the IR
// can express, grouped in classes (load, unary, binary, ternary, reduce and buffer ops).
//
// The scheduler is agnostic to the numeric meaning of the operations, except for the set of operations
// that are unsafe to evaluate over padded (zero) regions, see OpType.UnsafeUnderPadding.
package ops

// OpType is an enum of all the operations known to the lazy graph and the IR.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpTypeBuffer,OpType -output=gen_optype_enumer.go optype.go

const (
	// OpTypeInvalid is the "no operation" of pure views.
	OpTypeInvalid OpType = iota

	// Load class: they introduce graph roots.
	OpTypeLoadEmpty
	OpTypeLoadConst
	OpTypeLoadCopy
	OpTypeLoadContiguous
	OpTypeLoadCustom

	// Unary class.
	OpTypeNeg
	OpTypeExp2
	OpTypeLog2
	OpTypeCast
	OpTypeSin
	OpTypeSqrt
	OpTypeRecip

	// Binary class.
	OpTypeAdd
	OpTypeSub
	OpTypeMul
	OpTypeDiv
	OpTypeMax
	OpTypeMod
	OpTypeCmpLt
	OpTypeCmpEq
	OpTypeXor

	// Ternary class.
	OpTypeMulAcc
	OpTypeWhere

	// Reduce class.
	OpTypeReduceSum
	OpTypeReduceMax

	// Buffer class: only used in the IR, as leaves and roots of kernels.
	OpTypeBufferLoad
	OpTypeBufferConst
	OpTypeBufferStore

	// OpTypeLast should always be kept the last, it is used as a counter/marker for OpType.
	OpTypeLast
)

// Class of operations.
type Class int

const (
	ClassNone Class = iota
	ClassLoad
	ClassUnary
	ClassBinary
	ClassTernary
	ClassReduce
	ClassBuffer
)

// Class returns the class of the operation.
func (op OpType) Class() Class {
	switch {
	case op >= OpTypeLoadEmpty && op <= OpTypeLoadCustom:
		return ClassLoad
	case op >= OpTypeNeg && op <= OpTypeRecip:
		return ClassUnary
	case op >= OpTypeAdd && op <= OpTypeXor:
		return ClassBinary
	case op >= OpTypeMulAcc && op <= OpTypeWhere:
		return ClassTernary
	case op >= OpTypeReduceSum && op <= OpTypeReduceMax:
		return ClassReduce
	case op >= OpTypeBufferLoad && op <= OpTypeBufferStore:
		return ClassBuffer
	}
	return ClassNone
}

// IsLoad returns whether op introduces a graph root (empty, const, copy, contiguous, custom).
func (op OpType) IsLoad() bool { return op.Class() == ClassLoad }

// IsReduce returns whether op is a reduction.
func (op OpType) IsReduce() bool { return op.Class() == ClassReduce }

// NumOperands returns the number of sources of an element-wise operation, or -1 for the other classes.
func (op OpType) NumOperands() int {
	switch op.Class() {
	case ClassUnary:
		return 1
	case ClassBinary:
		return 2
	case ClassTernary:
		return 3
	}
	return -1
}

// UnsafeUnderPadding returns whether op maps a padded zero to something other than zero (or to an
// undefined value), which makes it unsafe to fuse with padding.
func (op OpType) UnsafeUnderPadding() bool {
	switch op {
	case OpTypeDiv, OpTypeCmpLt, OpTypeLog2, OpTypeExp2, OpTypeRecip:
		return true
	}
	return false
}
