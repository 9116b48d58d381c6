// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sketchproc filters and reduces tables of sketch benchmark
// samples into per-group summaries.
package sketchproc

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/sketchbench/sketchperf/sketchfmt"
	"github.com/sketchbench/sketchperf/sketchmath"
	"github.com/sketchbench/sketchperf/sketchtab"
)

// MetricThroughput is the metric that timing samples are reported
// under once converted to items per second.
const MetricThroughput = "Throughput"

// Reduced maps trace, operation, metric and data structure to a
// summary.
type Reduced map[string]map[string]map[string]map[string]sketchmath.Summary

// ReduceOptions configures Reduce.
type ReduceOptions struct {
	// Allow restricts the data structures that are reduced. If nil,
	// all are.
	Allow *AllowList

	// Length returns the sequence length token used to convert
	// timing samples of a trace to throughput. If nil, the length
	// is 1.
	Length func(trace string) string
}

// ErrNotFinite is the error a CoerceError wraps when a sample, or the
// throughput computed from it, is infinite or NaN.
var ErrNotFinite = errors.New("value is not finite")

// A CoerceError reports a sample token that is not a finite number.
type CoerceError struct {
	Trace, Operation, DataStructure, Metric string
	Value                                   string
	Err                                     error
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("%s/%s/%s %s: bad value %q: %v", e.Trace, e.Operation, e.DataStructure, e.Metric, e.Value, e.Err)
}

func (e *CoerceError) Unwrap() error {
	return e.Err
}

// Reduce computes the mean and standard deviation of every sample
// sequence in t that passes opts.Allow. Timing samples are converted
// to throughput and reported under MetricThroughput. Empty sequences
// produce no summary.
//
// Reduce stops at the first sample that is not a finite number. A zero
// timing is rejected the same way, since its throughput is infinite.
func Reduce(t sketchtab.Table, opts ReduceOptions) (Reduced, error) {
	out := make(Reduced)
	for _, trace := range t.Traces() {
		ops := t[trace]
		for _, op := range ops.Names() {
			dss := ops[op]
			for _, ds := range dss.Names() {
				if !opts.Allow.Allows(ds) {
					continue
				}
				ms := dss[ds]
				for _, metric := range ms.Names() {
					values, err := coerce(ms[metric])
					if err != nil {
						return nil, &CoerceError{trace, op, ds, metric, err.Num, err.Err}
					}
					name := metric
					if metric == sketchfmt.MetricTime {
						length, err := lengthOf(opts, trace)
						if err != nil {
							return nil, &CoerceError{trace, op, ds, "LENGTH", err.Num, err.Err}
						}
						for i, v := range values {
							values[i] = sketchmath.Throughput(v, length)
							if !finite(values[i]) {
								return nil, &CoerceError{trace, op, ds, metric, ms[metric][i], ErrNotFinite}
							}
						}
						name = MetricThroughput
					}
					sum, ok := sketchmath.NewSample(values).Summary()
					if !ok {
						continue
					}
					out.set(trace, op, name, ds, sum)
				}
			}
		}
	}
	return out, nil
}

func coerce(tokens []string) ([]float64, *strconv.NumError) {
	values := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, err.(*strconv.NumError)
		}
		if !finite(v) {
			return nil, &strconv.NumError{Func: "ParseFloat", Num: tok, Err: ErrNotFinite}
		}
		values[i] = v
	}
	return values, nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func lengthOf(opts ReduceOptions, trace string) (float64, *strconv.NumError) {
	if opts.Length == nil {
		return 1, nil
	}
	tok := opts.Length(trace)
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, err.(*strconv.NumError)
	}
	if !finite(v) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: tok, Err: ErrNotFinite}
	}
	return v, nil
}

func (r Reduced) set(trace, op, metric, ds string, sum sketchmath.Summary) {
	ops := r[trace]
	if ops == nil {
		ops = make(map[string]map[string]map[string]sketchmath.Summary)
		r[trace] = ops
	}
	metrics := ops[op]
	if metrics == nil {
		metrics = make(map[string]map[string]sketchmath.Summary)
		ops[op] = metrics
	}
	dss := metrics[metric]
	if dss == nil {
		dss = make(map[string]sketchmath.Summary)
		metrics[metric] = dss
	}
	dss[ds] = sum
}

// A Group is the set of summaries drawn in one chart: one metric of
// one operation on one trace.
type Group struct {
	Trace, Operation, Metric string
	Bars                     []Bar
}

// A Bar is one data structure's summary within a Group.
type Bar struct {
	Name    string
	Summary sketchmath.Summary
}

// Groups flattens r into groups sorted by trace, operation and
// metric, with bars sorted by data structure name.
func (r Reduced) Groups() []*Group {
	var groups []*Group
	for trace, ops := range r {
		for op, metrics := range ops {
			for metric, dss := range metrics {
				g := &Group{Trace: trace, Operation: op, Metric: metric}
				for ds, sum := range dss {
					g.Bars = append(g.Bars, Bar{ds, sum})
				}
				sort.Slice(g.Bars, func(i, j int) bool { return g.Bars[i].Name < g.Bars[j].Name })
				groups = append(groups, g)
			}
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Trace != b.Trace {
			return a.Trace < b.Trace
		}
		if a.Operation != b.Operation {
			return a.Operation < b.Operation
		}
		return a.Metric < b.Metric
	})
	return groups
}
