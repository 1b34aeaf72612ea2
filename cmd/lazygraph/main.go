// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// lazygraph builds a few demo lazy graphs, prints their kernel schedules and optionally executes them
// with the reference interpreter.
//
// Example:
//
//	lazygraph -graph=split -run -config=split_threshold=1024
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/lazygraph/backends/interp"
	"github.com/gomlx/lazygraph/pkg/core/lazy"
	"github.com/gomlx/lazygraph/pkg/support/xslices"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

var (
	flagGraph  = flag.String("graph", "all", fmt.Sprintf("Graph to schedule: \"all\" or one of %v.", demoNames()))
	flagRun    = flag.Bool("run", false, "Execute the schedule with the reference interpreter and print the results.")
	flagAST    = flag.Bool("ast", false, "Print the operation tree of each compute kernel.")
	flagColor  = flag.String("color", "auto", "Use colors in the output: auto, always or never.")
	flagConfig = flag.String("config", "", "Overrides to the scheduler configuration, e.g. "+
		"\"split_threshold=1024,cache=false\". It is applied on top of the LAZYGRAPH_* environment variables.")
	flagProgress  = flag.Bool("progress", false, "Display a progress bar while executing kernels, with -run.")
	flagMaxValues = flag.Int("max_values", 8, "Maximum number of values printed per output, with -run.")
	flagPlot      = flag.String("plot", "", "If set, saves a bar chart of the bytes written per kernel to "+
		"<graph>_<plot>, e.g. -plot=kernels.png. The format is given by the extension.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if len(flag.Args()) > 0 {
		klog.Errorf("Unexpected arguments %q. See 'lazygraph -help'.", flag.Args())
		os.Exit(1)
	}
	if err := setColorProfile(*flagColor); err != nil {
		klog.Errorf("%+v", err)
		os.Exit(1)
	}
	config, err := lazy.ConfigFromEnv()
	if err == nil && *flagConfig != "" {
		config, err = config.Parse(*flagConfig)
	}
	if err != nil {
		klog.Errorf("Invalid configuration: %+v", err)
		os.Exit(1)
	}
	names, err := selectDemos(*flagGraph)
	if err != nil {
		klog.Errorf("%+v", err)
		os.Exit(1)
	}
	opts := reportOptions{run: *flagRun, ast: *flagAST, progress: *flagProgress, maxValues: *flagMaxValues,
		plotSuffix: *flagPlot}
	for _, name := range names {
		if err := report(os.Stdout, name, config, opts); err != nil {
			klog.Errorf("Failed graph %q: %+v", name, err)
			os.Exit(1)
		}
	}
}

type reportOptions struct {
	run, ast, progress bool
	maxValues          int

	// plotSuffix, if set, is appended to the graph name to form the file name of the kernels chart.
	plotSuffix string
}

// report schedules the named demo graph and prints the kernels, and optionally executes them.
func report(w io.Writer, name string, config lazy.Config, opts reportOptions) error {
	demo := demoGraphs[name]
	g := lazy.NewGraphWithConfig(config)
	outs := demo.build(g)
	items := lazy.CreateSchedule(outs, nil)

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Graph %q", name)))
	fmt.Fprintln(w, descStyle.Render(demo.description))
	table := newPlainTable(lipgloss.Right, lipgloss.Left)
	table.Headers("#", "Kernel", "Output", "Shape", "DType", "Inputs", "Bytes")
	var totalBytes uint64
	for ii, item := range items {
		out := item.Out
		bytes := kernelBytes(item)
		totalBytes += bytes
		inputs := xslices.Map(item.Inputs, func(input *lazy.Buffer) string { return fmt.Sprintf("#%d", input.ID()) })
		table.Row(humanize.Comma(int64(ii)), item.AST.Type.String(), fmt.Sprintf("#%d", out.ID()),
			fmt.Sprintf("%v", out.Shape()), out.DType().String(), strings.Join(inputs, " "), humanize.Bytes(bytes))
	}
	fmt.Fprintln(w, table.Render())
	fmt.Fprintf(w, "%s kernels, %s nodes, %s written\n",
		humanize.Comma(int64(len(items))), humanize.Comma(int64(g.NumNodes())), humanize.Bytes(totalBytes))

	if opts.plotSuffix != "" {
		if err := plotKernels(demo.description, items, name+"_"+opts.plotSuffix); err != nil {
			return err
		}
	}
	if opts.ast {
		for ii, item := range items {
			fmt.Fprintf(w, "\nKernel #%d:\n%s\n", ii, item.AST)
		}
	}
	if !opts.run {
		return nil
	}

	runner := interp.New()
	var bar *progressbar.ProgressBar
	if opts.progress {
		bar = progressbar.NewOptions(len(items),
			progressbar.OptionSetDescription("Kernels"),
			progressbar.OptionSetWriter(w),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.ThemeASCII))
	}
	for ii := range items {
		if err := runner.Run(items[ii : ii+1]); err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(w)
	}

	results := newPlainTable(lipgloss.Right, lipgloss.Left)
	results.Headers("Output", "Device", "Values")
	for _, out := range outs {
		values, err := interp.Values(out)
		if err != nil {
			return errors.WithMessagef(err, "reading results of graph %q", name)
		}
		results.Row(fmt.Sprintf("#%d", out.ID()), out.Device(), formatValues(values, opts.maxValues))
	}
	fmt.Fprintln(w, results.Render())
	return nil
}

func formatValues(values []float64, maxValues int) string {
	parts := make([]string, 0, min(len(values), maxValues)+1)
	for ii, v := range values {
		if ii >= maxValues {
			parts = append(parts, fmt.Sprintf("... (%s more)", humanize.Comma(int64(len(values)-maxValues))))
			break
		}
		parts = append(parts, humanize.Ftoa(v))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
