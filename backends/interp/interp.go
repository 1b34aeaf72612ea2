// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package interp implements a simple, and not very fast, reference interpreter for lazy schedules.
//
// It executes the kernels of a schedule in order, evaluating the op tree of each compute kernel once
// per output element, in float64. The elements of one kernel are computed in parallel.
// It exists to check the numerical results of schedules, not to be fast.
package interp

import (
	"runtime"

	"github.com/gomlx/lazygraph/pkg/core/device"
	"github.com/gomlx/lazygraph/pkg/core/lazy"
	"github.com/gomlx/lazygraph/pkg/core/ops"
	"github.com/gomlx/lazygraph/pkg/core/views"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Interpreter executes schedules created by lazy.CreateSchedule.
type Interpreter struct {
	maxParallelism int

	// chunkSize is the minimum number of output elements computed by each goroutine.
	chunkSize int
}

// New creates an Interpreter that uses up to runtime.NumCPU() goroutines per kernel.
func New() *Interpreter {
	return &Interpreter{maxParallelism: runtime.NumCPU(), chunkSize: 256}
}

// WithParallelism sets the maximum number of goroutines used per kernel. If <= 1 kernels are executed
// sequentially.
func (in *Interpreter) WithParallelism(n int) *Interpreter {
	in.maxParallelism = max(n, 1)
	return in
}

// Realize schedules and executes the kernels needed to realize outs.
func (in *Interpreter) Realize(outs ...*lazy.Buffer) error {
	return in.Run(lazy.CreateSchedule(outs, nil))
}

// Run executes the kernels in order, attaching the results to the output of each kernel with
// lazy.Buffer.SetRealized.
func (in *Interpreter) Run(items []*lazy.Item) error {
	for ii, item := range items {
		inputs := make([]*device.Buffer, len(item.Inputs))
		for jj, input := range item.Inputs {
			inputs[jj] = input.Realized()
			if inputs[jj] == nil {
				return errors.Errorf("interp.Run: kernel #%d input #%d %s is not realized", ii, jj, input)
			}
		}
		result, err := in.execute(item, inputs)
		if err != nil {
			return errors.WithMessagef(err, "while executing kernel #%d (%s)", ii, item.AST.Type)
		}
		item.Out.SetRealized(result)
		klog.V(2).Infof("interp: kernel #%d realized %s", ii, item.Out)
	}
	return nil
}

func (in *Interpreter) execute(item *lazy.Item, inputs []*device.Buffer) (*device.Buffer, error) {
	out := item.Out
	size := xslices.Prod(out.Shape())
	switch item.AST.Type {
	case ops.OpTypeLoadEmpty:
		return device.New(out.Device(), out.DType().DType, size), nil

	case ops.OpTypeLoadCopy:
		src := inputs[0]
		dst := device.New(out.Device(), src.DType(), src.Size())
		if err := dst.CopyFrom(src); err != nil {
			return nil, err
		}
		return dst, nil

	case ops.OpTypeLoadCustom:
		fn, ok := item.AST.Arg.(lazy.CustomFunc)
		if !ok {
			return nil, errors.Errorf("custom kernel has argument of type %T, expected lazy.CustomFunc", item.AST.Arg)
		}
		dst := device.New(out.Device(), out.DType().DType, size)
		if err := fn(dst, inputs); err != nil {
			return nil, errors.WithMessagef(err, "custom function for %s", out)
		}
		return dst, nil

	case ops.OpTypeBufferStore:
		return in.executeStore(item, inputs, size)
	}
	return nil, errors.Errorf("kernel of type %s not supported", item.AST.Type)
}

// executeStore evaluates a compute kernel.
func (in *Interpreter) executeStore(item *lazy.Item, inputs []*device.Buffer, size int) (*device.Buffer, error) {
	out := item.Out
	storeView, _ := item.AST.View()
	fn, err := compile(item.AST.Sources[0], inputs)
	if err != nil {
		return nil, err
	}

	// Results are always computed in a new buffer: the output buffer may be one of the inputs.
	dst := device.New(out.Device(), out.DType().DType, size)
	shape := storeView.Shape()
	numPositions := xslices.Prod(shape)
	evalRange := func(from, to int) {
		for pos := from; pos < to; pos++ {
			idx := views.Unravel(pos, shape)
			if flat, valid := storeView.Index(idx); valid {
				dst.Set(flat, fn(idx))
			}
		}
	}

	if in.maxParallelism <= 1 || numPositions <= in.chunkSize {
		evalRange(0, numPositions)
	} else {
		var g errgroup.Group
		g.SetLimit(in.maxParallelism)
		chunk := max(in.chunkSize, (numPositions+in.maxParallelism-1)/in.maxParallelism)
		for from := 0; from < numPositions; from += chunk {
			to := min(from+chunk, numPositions)
			g.Go(func() error {
				evalRange(from, to)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	if outputBuffer := out.OutputBuffer(); outputBuffer != nil {
		if err := outputBuffer.CopyFrom(dst); err != nil {
			return nil, errors.WithMessagef(err, "writing to the output buffer of %s", out)
		}
		return outputBuffer, nil
	}
	return dst, nil
}

// Values returns the values of a realized node, read through its view, in row-major order.
func Values(b *lazy.Buffer) ([]float64, error) {
	realized := b.Realized()
	if realized == nil {
		return nil, errors.Errorf("interp.Values: %s is not realized", b)
	}
	shape := b.Shape()
	st := b.Tracker()
	values := make([]float64, xslices.Prod(shape))
	for pos := range values {
		if flat, valid := st.Index(views.Unravel(pos, shape)); valid {
			values[pos] = realized.Get(flat)
		}
	}
	return values, nil
}
