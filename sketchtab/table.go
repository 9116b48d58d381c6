// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketchtab

import "sort"

// A Table holds raw samples keyed by trace, operation, data structure
// and metric. Samples are kept as the decimal tokens read from the
// log; they are parsed only when the table is reduced.
type Table map[string]Operations

// Operations maps an operation (test) name to its data structures.
type Operations map[string]DataStructures

// DataStructures maps a data structure name to its metrics.
type DataStructures map[string]Metrics

// Metrics maps a metric name to its samples, in input order.
type Metrics map[string][]string

// ensure returns the metrics for (trace, op, ds), creating every
// missing level on the way.
func (t Table) ensure(trace, op, ds string) Metrics {
	ops := t.ensureTrace(trace)
	dss := ops.ensure(op)
	return dss.ensure(ds)
}

func (t Table) ensureTrace(trace string) Operations {
	ops := t[trace]
	if ops == nil {
		ops = make(Operations)
		t[trace] = ops
	}
	return ops
}

func (o Operations) ensure(op string) DataStructures {
	dss := o[op]
	if dss == nil {
		dss = make(DataStructures)
		o[op] = dss
	}
	return dss
}

func (d DataStructures) ensure(ds string) Metrics {
	ms := d[ds]
	if ms == nil {
		ms = make(Metrics)
		d[ds] = ms
	}
	return ms
}

// Samples returns the samples recorded for the given key path, or nil
// if there are none.
func (t Table) Samples(trace, op, ds, metric string) []string {
	return t[trace][op][ds][metric]
}

// Traces returns the trace names in t, sorted.
func (t Table) Traces() []string {
	return sortedKeys(t)
}

// Names returns the operation names in o, sorted.
func (o Operations) Names() []string {
	return sortedKeys(o)
}

// Names returns the data structure names in d, sorted.
func (d DataStructures) Names() []string {
	return sortedKeys(d)
}

// Names returns the metric names in m, sorted.
func (m Metrics) Names() []string {
	return sortedKeys(m)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
