// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketchfmt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReader(t *testing.T) {
	input := "TRACE a.txt\n\nnoise\nTIMEms 3\n"
	r := NewReader(strings.NewReader(input), "in.log")

	type want struct {
		text string
		kind Kind
		line int
	}
	wants := []want{
		{"TRACE a.txt", Trace, 1},
		{"", None, 2},
		{"noise", None, 3},
		{"TIMEms 3", Time, 4},
	}
	for r.Scan() {
		l := r.Line()
		if len(wants) == 0 {
			t.Fatalf("unexpected line %v", l)
		}
		w := wants[0]
		wants = wants[1:]
		if l.Text != w.text || l.Kind != w.kind || l.Line != w.line || l.FileName != "in.log" {
			t.Errorf("got %+v, want %+v", *l, w)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if len(wants) != 0 {
		t.Errorf("missing lines %v", wants)
	}
}

func TestReaderNoFileName(t *testing.T) {
	r := NewReader(strings.NewReader("x\n"), "")
	if !r.Scan() {
		t.Fatal("expected a line")
	}
	if name, line := r.Line().Pos(); name != "<unknown>" || line != 1 {
		t.Errorf("got position %s:%d", name, line)
	}
}

func TestReaderLongLine(t *testing.T) {
	long := strings.Repeat("x", maxLineSize+1)
	exact := "TIMEms " + strings.Repeat("9", maxLineSize-len("TIMEms "))
	input := long + "\nTIMEms 3\n" + exact + "\n" + long
	r := NewReader(strings.NewReader(input), "b.bin")

	type want struct {
		text string
		kind Kind
		bad  bool
	}
	wants := []want{
		{"", None, true},
		{"TIMEms 3", Time, false},
		{exact, Time, false},
		{"", None, true},
	}
	n := 0
	for r.Scan() {
		l := r.Line()
		n++
		if n > len(wants) {
			t.Fatalf("unexpected line %d", l.Line)
		}
		w := wants[n-1]
		if l.Line != n || l.Text != w.text || l.Kind != w.kind || (l.Err != nil) != w.bad {
			t.Errorf("line %d: got text of %d bytes, kind %v, err %v", n, len(l.Text), l.Kind, l.Err)
		}
		if l.Err != nil && (l.Err.FileName != "b.bin" || l.Err.Line != n) {
			t.Errorf("line %d: error at %s:%d", n, l.Err.FileName, l.Err.Line)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if n != len(wants) {
		t.Errorf("got %d lines, want %d", n, len(wants))
	}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0666); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestFilesDir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.log":   "TEST two\n",
		"a.txt":   "TEST one\nDSTYPE CMS\n",
		"c.bin":   "TEST three",
		"ignored": "",
	})
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "d.txt"), []byte("TEST nested\n"), 0666); err != nil {
		t.Fatal(err)
	}

	f := &Files{Dir: dir}
	var got []string
	for f.Scan() {
		l := f.Line()
		got = append(got, filepath.Base(l.FileName)+" "+l.Text)
	}
	if err := f.Err(); err != nil {
		t.Fatal(err)
	}
	want := []string{"a.txt TEST one", "a.txt DSTYPE CMS", "b.log TEST two", "c.bin TEST three"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFilesPaths(t *testing.T) {
	dir := writeFiles(t, map[string]string{"x": "LENGTH 1\n", "y": "LENGTH 2\n"})
	f := &Files{Paths: []string{filepath.Join(dir, "y"), filepath.Join(dir, "x")}, Dir: "/nonexistent"}
	var got []string
	for f.Scan() {
		got = append(got, f.Line().Text)
	}
	if err := f.Err(); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "LENGTH 2,LENGTH 1" {
		t.Errorf("got %q", got)
	}
}

func TestFilesErrors(t *testing.T) {
	f := &Files{Dir: filepath.Join(t.TempDir(), "missing")}
	if f.Scan() {
		t.Fatal("Scan succeeded on a missing directory")
	}
	if f.Err() == nil {
		t.Fatal("want error for missing directory")
	}

	dir := writeFiles(t, map[string]string{"a": "TEST a\n"})
	f = &Files{Paths: []string{filepath.Join(dir, "a"), filepath.Join(dir, "b")}}
	n := 0
	for f.Scan() {
		n++
	}
	if n != 1 {
		t.Errorf("got %d lines before error, want 1", n)
	}
	if !os.IsNotExist(f.Err()) {
		t.Errorf("got error %v, want not-exist", f.Err())
	}
}

func TestFilesLongLine(t *testing.T) {
	// An over-long line is reported in place and reading continues.
	dir := writeFiles(t, map[string]string{
		"a.log": "Total memory: 5\n",
		"b.bin": strings.Repeat("\x00", 2<<20),
		"c.log": "Total memory: 6\n",
	})
	f := &Files{Dir: dir}
	var got []string
	for f.Scan() {
		l := f.Line()
		if l.Err != nil {
			got = append(got, filepath.Base(l.FileName)+" error")
			continue
		}
		got = append(got, filepath.Base(l.FileName)+" "+l.Text)
	}
	if err := f.Err(); err != nil {
		t.Fatal(err)
	}
	want := []string{"a.log Total memory: 5", "b.bin error", "c.log Total memory: 6"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFilesEmptyDir(t *testing.T) {
	f := &Files{Dir: t.TempDir()}
	if f.Scan() {
		t.Fatal("Scan succeeded on an empty directory")
	}
	if err := f.Err(); err != nil {
		t.Fatal(err)
	}
}
