// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClasses(t *testing.T) {
	testCases := []struct {
		op    OpType
		class Class
	}{
		{OpTypeInvalid, ClassNone},
		{OpTypeLoadEmpty, ClassLoad},
		{OpTypeLoadCustom, ClassLoad},
		{OpTypeCast, ClassUnary},
		{OpTypeCmpLt, ClassBinary},
		{OpTypeWhere, ClassTernary},
		{OpTypeReduceMax, ClassReduce},
		{OpTypeBufferStore, ClassBuffer},
	}
	for _, tc := range testCases {
		t.Run(tc.op.String(), func(t *testing.T) {
			assert.Equal(t, tc.class, tc.op.Class())
		})
	}
	assert.True(t, OpTypeLoadContiguous.IsLoad())
	assert.True(t, OpTypeReduceSum.IsReduce())
	assert.False(t, OpTypeAdd.IsReduce())
	assert.Equal(t, 3, OpTypeMulAcc.NumOperands())
	assert.Equal(t, -1, OpTypeReduceSum.NumOperands())
}

func TestUnsafeUnderPadding(t *testing.T) {
	var unsafe []OpType
	for op := OpTypeInvalid; op < OpTypeLast; op++ {
		if op.UnsafeUnderPadding() {
			unsafe = append(unsafe, op)
		}
	}
	assert.ElementsMatch(t, []OpType{OpTypeDiv, OpTypeCmpLt, OpTypeLog2, OpTypeExp2, OpTypeRecip}, unsafe)
}

func TestOpTypeString(t *testing.T) {
	for _, name := range OpTypeStrings() {
		op, err := OpTypeString(name)
		require.NoError(t, err)
		assert.Equal(t, name, op.String())
	}
	_, err := OpTypeString("Conv")
	require.Error(t, err)
	assert.Equal(t, "OpType(99)", OpType(99).String())

	// Buffer ops drop their class prefix.
	assert.Equal(t, "Load", OpTypeBufferLoad.String())
	assert.Equal(t, "Const", OpTypeBufferConst.String())
	assert.Equal(t, "Store", OpTypeBufferStore.String())
	assert.Equal(t, "LoadConst", OpTypeLoadConst.String())
	op, err := OpTypeString("store")
	require.NoError(t, err)
	assert.Equal(t, OpTypeBufferStore, op)
	assert.True(t, OpTypeReduceMax.IsAOpType())
	assert.Len(t, OpTypeValues(), int(OpTypeLast)+1)
}
