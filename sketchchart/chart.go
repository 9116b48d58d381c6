// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sketchchart draws bar charts of reduced sketch benchmark
// results.
package sketchchart

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/sketchbench/sketchperf/sketchproc"
)

var shortNames = map[string]string{
	"SpaceSaving":       "SS",
	"SpaceSaving-RAP":   "SS-RAP",
	"NitroCuckoo-SMALL": "NC-SMALL",
}

// ShortName returns the bar label for data structure ds.
func ShortName(ds string) string {
	if s, ok := shortNames[ds]; ok {
		return s
	}
	return ds
}

const defaultColor = "cyan"

var algColors = map[string]string{
	"SpaceSaving":       "black",
	"SpaceSaving-RAP":   "red",
	"CMS":               "green",
	"NitroCMS":          "blue",
	"HASH":              "orange",
	"NitroHash":         "purple",
	"Cuckoo":            "grey",
	"NitroCuckoo":       "pink",
	"NitroCuckoo-SMALL": "olive",
	"CMS-NOMI":          "brown",
}

// ColorName returns the name of the colour of data structure ds's
// bar. Unregistered data structures use their own name, so a data
// structure may be named after a colour.
func ColorName(ds string) string {
	if c, ok := algColors[ds]; ok {
		return c
	}
	return ds
}

// Color resolves ColorName(ds) to a colour. Names that are not SVG
// colour names fall back to cyan.
func Color(ds string) color.Color {
	if c, ok := colornames.Map[strings.ToLower(ColorName(ds))]; ok {
		return c
	}
	return colornames.Map[defaultColor]
}

var yLabels = map[string]string{
	"SPACE":                     "Space (Bytes)",
	"MEMORY":                    "Memory (Bytes)",
	"ITEMS":                     "Items",
	sketchproc.MetricThroughput: "Throughput (items/sec)",
}

// YLabel returns the y axis label for metric.
func YLabel(metric string) string {
	if l, ok := yLabels[metric]; ok {
		return l
	}
	return metric
}

// FileName returns the name of the chart file for g. Throughput
// charts are additionally keyed by operation.
func FileName(prefix string, g *sketchproc.Group) string {
	if g.Metric == sketchproc.MetricThroughput {
		return prefix + g.Trace + "-" + g.Metric + "-" + g.Operation + ".png"
	}
	return prefix + g.Trace + "-" + g.Metric + ".png"
}

// errorPoints places one error bar at the top of each bar.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

const (
	barWidthInches = 1.8
	heightInches   = 6
	dpi            = 100
)

// Plot builds the chart for g: one bar per data structure at its
// mean, with an error bar of one standard deviation either side.
func Plot(g *sketchproc.Group) (*plot.Plot, error) {
	if len(g.Bars) == 0 {
		return nil, fmt.Errorf("%s-%s: no bars", g.Trace, g.Metric)
	}
	pl := plot.New()
	pl.X.Label.Text = "Algorithm"
	pl.X.Label.TextStyle.Font.Size = 20
	pl.Y.Label.Text = YLabel(g.Metric)
	pl.Y.Label.TextStyle.Font.Size = 20
	pl.X.Tick.Label.Font.Size = 18
	pl.Y.Tick.Label.Font.Size = 18

	w := vg.Points(0.6 * barWidthInches * 72)
	names := make([]string, len(g.Bars))
	pts := errorPoints{
		XYs:     make(plotter.XYs, len(g.Bars)),
		YErrors: make(plotter.YErrors, len(g.Bars)),
	}
	for i, b := range g.Bars {
		bar, err := plotter.NewBarChart(plotter.Values{b.Summary.Mean}, w)
		if err != nil {
			return nil, fmt.Errorf("%s-%s %s: %w", g.Trace, g.Metric, b.Name, err)
		}
		bar.XMin = float64(i)
		bar.Color = Color(b.Name)
		bar.LineStyle.Width = 0
		pl.Add(bar)

		names[i] = ShortName(b.Name)
		pts.XYs[i].X = float64(i)
		pts.XYs[i].Y = b.Summary.Mean
		pts.YErrors[i].Low = b.Summary.StdDev
		pts.YErrors[i].High = b.Summary.StdDev
	}

	errBars, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return nil, fmt.Errorf("%s-%s: %w", g.Trace, g.Metric, err)
	}
	errBars.LineStyle.Color = color.NRGBA{0xFF, 0, 0, 0xFF}
	errBars.CapWidth = vg.Points(20)
	pl.Add(errBars)
	pl.NominalX(names...)
	return pl, nil
}

// Chart draws the chart for g as a PNG image to w.
func Chart(w io.Writer, g *sketchproc.Group) error {
	pl, err := Plot(g)
	if err != nil {
		return err
	}
	width := vg.Length(barWidthInches*float64(len(g.Bars))) * vg.Inch
	can := vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, heightInches*vg.Inch),
		vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}
	pl.Draw(draw.New(can))
	_, err = can.WriteTo(w)
	return err
}

// Write draws every group to a file named by FileName in dir. It
// returns the paths written.
//
// A group that cannot be drawn leaves no file behind and does not stop
// the others; Write returns the first such error after trying every
// group. If warn is non-nil, it is called for each group whose file
// name was already written earlier in the same call, since the later
// chart replaces the earlier one.
func Write(dir, prefix string, groups []*sketchproc.Group, warn func(format string, args ...interface{})) ([]string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return nil, err
		}
	}
	var paths []string
	var firstErr error
	seen := make(map[string]*sketchproc.Group)
	for _, g := range groups {
		path := filepath.Join(dir, FileName(prefix, g))
		if prev, ok := seen[path]; ok && warn != nil {
			warn("%s: chart for operation %s replaces operation %s", path, g.Operation, prev.Operation)
		}
		if err := writeFile(path, g); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if _, ok := seen[path]; ok {
				// The earlier chart was truncated.
				delete(seen, path)
				paths = removePath(paths, path)
			}
			continue
		}
		if _, ok := seen[path]; !ok {
			paths = append(paths, path)
		}
		seen[path] = g
	}
	return paths, firstErr
}

func removePath(paths []string, path string) []string {
	out := paths[:0]
	for _, p := range paths {
		if p != path {
			out = append(out, p)
		}
	}
	return out
}

func writeFile(path string, g *sketchproc.Group) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Chart(f, g); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Summarize writes the one-line text form of g: its means and
// standard deviations in bar order.
func Summarize(w io.Writer, g *sketchproc.Group) error {
	avgs := make([]string, len(g.Bars))
	errs := make([]string, len(g.Bars))
	for i, b := range g.Bars {
		avgs[i] = fmt.Sprint(b.Summary.Mean)
		errs[i] = fmt.Sprint(b.Summary.StdDev)
	}
	_, err := fmt.Fprintf(w, "%s-%s avgs: %s errs: %s\n", g.Trace, g.Metric, strings.Join(avgs, " "), strings.Join(errs, " "))
	return err
}
