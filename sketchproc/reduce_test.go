// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketchproc

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/sketchbench/sketchperf/sketchtab"
)

func parse(t *testing.T, input string) *sketchtab.State {
	t.Helper()
	s := sketchtab.NewState()
	for _, line := range strings.Split(input, "\n") {
		if err := s.Process(line); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-4*math.Max(1, math.Abs(b))
}

func TestReduce(t *testing.T) {
	s := parse(t, `TRACE zipf.txt
LENGTH 1000
TEST hh
DSTYPE CMS
Flow MSRE 1
Flow MSRE 2
Flow MSRE 3
TIMEms 2.0
DSTYPE NitroCMS
Flow MSRE 10`)

	red, err := Reduce(s.Results, ReduceOptions{Length: func(trace string) string { return s.LengthFor(trace, false) }})
	if err != nil {
		t.Fatal(err)
	}

	sum := red["zipf"]["hh"]["FLOW-MSRE"]["CMS"]
	if !near(sum.Mean, 2) || !near(sum.StdDev, 0.8165) || sum.N != 3 {
		t.Errorf("CMS FLOW-MSRE = %v", sum)
	}
	sum = red["zipf"]["hh"]["FLOW-MSRE"]["NitroCMS"]
	if sum.Mean != 10 || sum.StdDev != 0 {
		t.Errorf("NitroCMS FLOW-MSRE = %v", sum)
	}

	// Timing is reported as throughput.
	if _, ok := red["zipf"]["hh"]["TIME(ms)"]; ok {
		t.Errorf("TIME(ms) was not renamed")
	}
	sum = red["zipf"]["hh"][MetricThroughput]["CMS"]
	if sum.Mean != 5.0e8 {
		t.Errorf("throughput = %v, want 5e8", sum.Mean)
	}
}

func TestReduceAllow(t *testing.T) {
	s := parse(t, `TRACE t
TEST op
DSTYPE CMS
Total memory: 1
DSTYPE NitroCMS
Total memory: 2
DSTYPE Cuckoo
Total memory: 3`)
	red, err := Reduce(s.Results, ReduceOptions{Allow: NewAllowList("X", "CMS", "NitroCMS")})
	if err != nil {
		t.Fatal(err)
	}
	mem := red["t"]["op"]["MEMORY"]
	if len(mem) != 2 {
		t.Errorf("got %d data structures, want 2: %v", len(mem), mem)
	}
	if _, ok := mem["Cuckoo"]; ok {
		t.Errorf("Cuckoo was not filtered out")
	}

	// Everything filtered out leaves no group at all.
	red, err = Reduce(s.Results, ReduceOptions{Allow: NewAllowList("Y", "HASH")})
	if err != nil {
		t.Fatal(err)
	}
	if len(red) != 0 {
		t.Errorf("got %v, want empty", red)
	}
	if g := red.Groups(); len(g) != 0 {
		t.Errorf("got groups %v", g)
	}
}

func TestReduceEmpty(t *testing.T) {
	tab := sketchtab.Table{"t": {"op": {"CMS": {"MEMORY": nil, "SPACE": {"4"}}}}}
	red, err := Reduce(tab, ReduceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := red["t"]["op"]["MEMORY"]; ok {
		t.Errorf("empty sequence was reduced")
	}
	if red["t"]["op"]["SPACE"]["CMS"].Mean != 4 {
		t.Errorf("got %v", red)
	}

	// Context-only tables reduce to nothing.
	red, err = Reduce(parse(t, "TRACE a\nTEST b\nDSTYPE c").Results, ReduceOptions{})
	if err != nil || len(red) != 0 {
		t.Errorf("got %v, %v", red, err)
	}
}

func TestReduceCoerceError(t *testing.T) {
	s := parse(t, "TRACE t\nTEST op\nDSTYPE CMS\nPMW MSRE abc")
	_, err := Reduce(s.Results, ReduceOptions{})
	var ce *CoerceError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want *CoerceError", err)
	}
	if ce.Value != "abc" || ce.Metric != "PMW-MSRE" || ce.DataStructure != "CMS" {
		t.Errorf("got %+v", ce)
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Errorf("error does not wrap strconv.ErrSyntax: %v", err)
	}

	// A bad length only matters for timing samples.
	s = parse(t, "LENGTH lots\nTotal memory: 5")
	length := func(string) string { return s.Length }
	if _, err := Reduce(s.Results, ReduceOptions{Length: length}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	s.Process("TIMEms 4")
	if _, err := Reduce(s.Results, ReduceOptions{Length: length}); !errors.As(err, &ce) || ce.Metric != "LENGTH" {
		t.Errorf("got %v, want LENGTH CoerceError", err)
	}
}

func TestReduceNotFinite(t *testing.T) {
	check := func(input, metric, value string) {
		t.Helper()
		s := parse(t, input)
		_, err := Reduce(s.Results, ReduceOptions{Length: func(string) string { return s.Length }})
		var ce *CoerceError
		if !errors.As(err, &ce) {
			t.Fatalf("%q: got %v, want *CoerceError", input, err)
		}
		if ce.Metric != metric || ce.Value != value {
			t.Errorf("%q: got %+v", input, ce)
		}
		if !errors.Is(err, ErrNotFinite) {
			t.Errorf("%q: error does not wrap ErrNotFinite: %v", input, err)
		}
	}
	check("DSTYPE CMS\nPMW MSRE nan", "PMW-MSRE", "nan")
	check("DSTYPE CMS\nTotal memory: +Inf", "MEMORY", "+Inf")
	check("TRACE a.txt\nTEST op\nDSTYPE CMS\nTIMEms 0", "TIME(ms)", "0")
	check("LENGTH 1e308\nTIMEms 1e-300", "TIME(ms)", "1e-300")
}

func TestReduceLengthLeak(t *testing.T) {
	// The run-wide length is the last one read, even for traces
	// that declared their own.
	s := parse(t, `TRACE a
LENGTH 10
TIMEms 1
TRACE b
LENGTH 20
TIMEms 1`)
	global, err := Reduce(s.Results, ReduceOptions{Length: func(tr string) string { return s.LengthFor(tr, false) }})
	if err != nil {
		t.Fatal(err)
	}
	perTrace, err := Reduce(s.Results, ReduceOptions{Length: func(tr string) string { return s.LengthFor(tr, true) }})
	if err != nil {
		t.Fatal(err)
	}
	get := func(r Reduced, trace string) float64 {
		return r[trace][sketchtab.Unknown][MetricThroughput][sketchtab.Unknown].Mean
	}
	if got := get(global, "a"); got != 2e7 {
		t.Errorf("global a = %v, want 2e7", got)
	}
	if got := get(perTrace, "a"); got != 1e7 {
		t.Errorf("per-trace a = %v, want 1e7", got)
	}
	if got := get(perTrace, "b"); got != 2e7 {
		t.Errorf("per-trace b = %v, want 2e7", got)
	}
}

func TestGroups(t *testing.T) {
	s := parse(t, `TRACE b
TEST op
DSTYPE Z
Total memory: 1
DSTYPE A
Total memory: 2
TIMEms 1
TRACE a
TEST op
DSTYPE M
Total memory: 3`)
	red, err := Reduce(s.Results, ReduceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, g := range red.Groups() {
		var names []string
		for _, b := range g.Bars {
			names = append(names, b.Name)
		}
		got = append(got, g.Trace+"/"+g.Operation+"/"+g.Metric+"="+strings.Join(names, ","))
	}
	want := "a/op/MEMORY=M b/op/MEMORY=A,Z b/op/Throughput=A"
	if strings.Join(got, " ") != want {
		t.Errorf("got %q, want %q", strings.Join(got, " "), want)
	}
}
