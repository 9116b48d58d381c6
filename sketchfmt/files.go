// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketchfmt

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// A Files reads lines from a sequence of input files as if they were
// one concatenated stream.
//
// If Paths is empty, the inputs are every regular file directly in
// Dir, in name order. Subdirectories are not descended into and file
// extensions are ignored: every file is read as text.
type Files struct {
	// Paths is the list of file names to read in.
	Paths []string

	// Dir is scanned for inputs when Paths is empty.
	Dir string

	// inputs is the sequence of remaining inputs, or nil if this
	// Files has not started yet.
	inputs []string

	reader Reader
	file   *os.File
	err    error
}

// init does first-use initialization of f.
func (f *Files) init() {
	f.inputs = []string{}
	if len(f.Paths) > 0 {
		f.inputs = append(f.inputs, f.Paths...)
		return
	}
	paths, err := DirFiles(f.Dir)
	if err != nil {
		f.err = err
		return
	}
	f.inputs = append(f.inputs, paths...)
}

// DirFiles returns the regular files directly in dir, sorted by name.
func DirFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", filepath.Join(dir, e.Name()), err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Scan advances to the next line in the sequence of files and reports
// whether a line was read. If Scan reaches the end of the file
// sequence, or if an I/O error occurs, it returns false. In this case,
// the caller should use the Err method to check for errors.
func (f *Files) Scan() bool {
	if f.inputs == nil {
		f.init()
	}
	if f.err != nil {
		return false
	}

	for {
		if f.file == nil {
			if len(f.inputs) == 0 {
				return false
			}
			path := f.inputs[0]
			f.inputs = f.inputs[1:]
			file, err := os.Open(path)
			if err != nil {
				f.err = err
				return false
			}
			f.file = file
			f.reader.Reset(f.file, path)
		}

		if f.reader.Scan() {
			return true
		}
		err := f.reader.Err()
		// Only one file is open at a time.
		f.file.Close()
		f.file = nil
		if err != nil {
			f.err = err
			return false
		}
	}
}

// Line returns the line that was just read by Scan.
// See Reader.Line.
func (f *Files) Line() *Line {
	return f.reader.Line()
}

// Err returns the error that stopped Scan, if any.
func (f *Files) Err() error {
	return f.err
}
