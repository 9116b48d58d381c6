// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sketchtab attributes the samples of a sketch benchmark log
// to the context they were measured in.
//
// Context lines (TRACE, TEST, DSTYPE, LENGTH) set the current trace,
// operation, data structure and sequence length. Each sample line is
// appended to the Table under whatever context is current when it is
// read. Context persists until a line of the same kind replaces it;
// nothing is reset between traces.
package sketchtab

import (
	"fmt"
	"strings"

	"github.com/sketchbench/sketchperf/sketchfmt"
)

// Unknown is the initial trace, operation and data structure. Samples
// read before the corresponding context line are filed under it.
const Unknown = "unknown"

// A State is the parsing context of a run together with the table it
// is filling. The zero State is not usable; call NewState.
//
// A State must be fed lines in input order and from one goroutine.
type State struct {
	Trace         string
	Operation     string
	DataStructure string

	// Length is the most recent LENGTH token, across all traces.
	// It is kept as text and parsed at reduction time.
	Length string

	// TraceLengths records the most recent LENGTH token seen while
	// each trace was current.
	TraceLengths map[string]string

	Results Table

	// Debug, if non-nil, is called with a trace of every line the
	// State handles.
	Debug func(format string, args ...interface{})
}

// NewState returns a State with the initial context and an empty
// table.
func NewState() *State {
	return &State{
		Trace:         Unknown,
		Operation:     Unknown,
		DataStructure: Unknown,
		Length:        "1",
		TraceLengths:  make(map[string]string),
		Results:       make(Table),
	}
}

// A LineError reports a line that was classified but could not be
// applied. A LineError never invalidates the State; the caller may
// report it and continue with the next line.
type LineError struct {
	FileName string
	Line     int
	Text     string
	Msg      string
}

func (e *LineError) Error() string {
	if e.FileName == "" {
		return fmt.Sprintf("%s: %q", e.Msg, e.Text)
	}
	return fmt.Sprintf("%s:%d: %s: %q", e.FileName, e.Line, e.Msg, e.Text)
}

// Process classifies line and applies it to s.
func (s *State) Process(line string) error {
	return s.Add(&sketchfmt.Line{Text: line, Kind: sketchfmt.Classify(line)})
}

// Add applies a classified line to s. Context lines update the
// context; sample lines append to the table under the current
// context. Lines of kind None and End leave s unchanged.
//
// If Add returns an error, s is unchanged. A line that could not be
// read (l.Err != nil) is returned as its error.
func (s *State) Add(l *sketchfmt.Line) error {
	if l.Err != nil {
		return l.Err
	}
	if l.Kind.IsContext() {
		s.setContext(l)
		return nil
	}

	switch l.Kind {
	case sketchfmt.None, sketchfmt.End:
		s.debug("NOP: %s", l.Text)

	case sketchfmt.Items:
		// Number of items: <count> <word> <space> ...
		f := strings.Fields(l.Text)
		if len(f) < 6 {
			return s.lineError(l, fmt.Sprintf("want at least 6 fields, have %d", len(f)))
		}
		s.appendSample(sketchfmt.MetricItems, f[3])
		s.appendSample(sketchfmt.MetricSpace, f[5])

	default:
		metric := l.Kind.Metric()
		if metric == "" {
			return s.lineError(l, "unhandled line kind "+l.Kind.String())
		}
		s.appendSample(metric, lastField(l.Text))
	}
	return nil
}

func (s *State) setContext(l *sketchfmt.Line) {
	switch l.Kind {
	case sketchfmt.Trace:
		s.Trace = traceName(lastField(l.Text))
		s.debug("Trace: %s", s.Trace)
		s.Results.ensureTrace(s.Trace)

	case sketchfmt.Test:
		s.Operation = lastField(l.Text)
		s.debug("Test: %s", s.Operation)
		s.Results.ensureTrace(s.Trace).ensure(s.Operation)

	case sketchfmt.DSType:
		s.DataStructure = lastField(l.Text)
		s.debug("DataStructure: %s", s.DataStructure)
		s.Results.ensure(s.Trace, s.Operation, s.DataStructure)

	case sketchfmt.Length:
		s.Length = lastField(l.Text)
		s.TraceLengths[s.Trace] = s.Length
		s.debug("Length: %s", s.Length)
	}
}

func (s *State) appendSample(metric, value string) {
	ms := s.Results.ensure(s.Trace, s.Operation, s.DataStructure)
	ms[metric] = append(ms[metric], value)
	s.debug("%s: %s", metric, value)
}

// LengthFor returns the sequence length to use when reducing trace.
// By default this is the last length seen in the whole run. If
// perTrace is set, it is the last length seen while trace was
// current, falling back to the run-wide length if trace never set one.
func (s *State) LengthFor(trace string, perTrace bool) string {
	if perTrace {
		if l, ok := s.TraceLengths[trace]; ok {
			return l
		}
	}
	return s.Length
}

func (s *State) lineError(l *sketchfmt.Line, msg string) *LineError {
	name, line := l.Pos()
	return &LineError{FileName: name, Line: line, Text: l.Text, Msg: msg}
}

func (s *State) debug(format string, args ...interface{}) {
	if s.Debug != nil {
		s.Debug(format, args...)
	}
}

// lastField returns the last whitespace-separated field of line.
func lastField(line string) string {
	f := strings.Fields(line)
	if len(f) == 0 {
		return ""
	}
	return f[len(f)-1]
}

// traceName returns the stem of a trace path: the base name with
// everything from its first '.' removed. Both slash and backslash
// separate directories, since harness logs come from either platform.
func traceName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[:i]
	}
	return path
}
