// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package lazy

import (
	"fmt"
	"strings"

	"github.com/gomlx/lazygraph/pkg/core/dtypes"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
)

// cacheKey identifies the structure of a node: two nodes with the same key compute the same values.
// Sources and base are identified by their NodeID.
type cacheKey struct {
	device string
	st     string
	dtype  dtypes.ElementType
	op     ops.OpType
	arg    string
	srcs   string
	base   NodeID
}

func makeCacheKey(deviceName string, st views.Tracker, dtype dtypes.ElementType, op ops.OpType, arg any,
	srcs []*Buffer, base *Buffer) cacheKey {
	key := cacheKey{
		device: deviceName,
		st:     st.Key(),
		dtype:  dtype,
		op:     op,
		arg:    argKey(arg),
		base:   -1,
	}
	if base != nil {
		key.base = base.id
	}
	if len(srcs) > 0 {
		var sb strings.Builder
		for ii, src := range srcs {
			if ii > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", src.id)
		}
		key.srcs = sb.String()
	}
	return key
}

// argKey converts an operation argument to a string that differs for different arguments.
func argKey(arg any) string {
	if arg == nil {
		return ""
	}
	return fmt.Sprintf("%T:%v", arg, arg)
}
