// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/gomlx/lazygraph/pkg/core/lazy"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// kernelBytes returns the number of bytes written by the kernel.
func kernelBytes(item *lazy.Item) uint64 {
	return uint64(item.Out.DType().Memory()) * uint64(xslices.Prod(item.Out.Shape()))
}

// plotKernels saves a bar chart with the bytes written by each kernel. The format is taken from the
// extension of filePath (png, svg, pdf, ...).
func plotKernels(title string, items []*lazy.Item, filePath string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "bytes written"
	values := make(plotter.Values, len(items))
	names := make([]string, len(items))
	for ii, item := range items {
		values[ii] = float64(kernelBytes(item))
		names[ii] = fmt.Sprintf("#%d %s", ii, item.AST.Type)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return errors.Wrapf(err, "creating bar chart for %q", title)
	}
	p.Add(bars)
	p.NominalX(names...)
	width := max(4*vg.Inch, vg.Length(len(items))*vg.Inch)
	if err := p.Save(width, 4*vg.Inch, filePath); err != nil {
		return errors.Wrapf(err, "saving plot to %q", filePath)
	}
	return nil
}
