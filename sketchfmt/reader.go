// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sketchfmt reads the text logs written by the sketch
// benchmarking harness.
//
// A log is a sequence of lines. A handful of keywords mark context
// lines (TRACE, TEST, DSTYPE, LENGTH) and sample lines (error rates,
// memory, timing, item and space counts); everything else is noise.
// This package only classifies lines. Attributing samples to their
// context is the job of package sketchtab.
package sketchfmt

import (
	"bufio"
	"fmt"
	"io"
)

// A Line is a single classified line of input.
type Line struct {
	// Text is the line, without its trailing newline.
	Text string

	// Kind is the classification of Text.
	Kind Kind

	// FileName and Line give the position of this line. They are
	// purely diagnostic.
	FileName string
	Line     int

	// Err is non-nil if the line could not be read as text. Text is
	// then empty and Kind is None.
	Err *SyntaxError
}

// A SyntaxError is a line of input that could not be read. It is
// reported in place of the line; reading continues with the next one.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// Pos returns the position of this line as a file name and a 1-based
// line number within that file.
func (l *Line) Pos() (fileName string, line int) {
	return l.FileName, l.Line
}

func (l *Line) String() string {
	return fmt.Sprintf("%s:%d: %s", l.FileName, l.Line, l.Text)
}

// A Reader reads classified lines from a single input.
//
// Its API is modeled on bufio.Scanner. Every line is returned,
// including lines of kind None, so callers can trace what they skip.
type Reader struct {
	br   *bufio.Reader
	buf  []byte
	err  error
	line Line
}

// maxLineSize bounds a single input line. Longer lines are returned
// with a SyntaxError instead of their text.
const maxLineSize = 1 << 20

// NewReader constructs a reader of the sketch log format from r.
// fileName is used in positions and error messages.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	if r.br == nil {
		r.br = bufio.NewReader(ior)
	} else {
		r.br.Reset(ior)
	}
	r.err = nil
	r.line = Line{FileName: fileName}
}

// Scan advances the reader to the next line and reports whether a
// line was read. If Scan reaches EOF or an I/O error occurs, it
// returns false, in which case the caller should use the Err method
// to check for errors.
//
// A line that is too long is still returned, with Line().Err set.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	r.buf = r.buf[:0]
	started, tooLong := false, false
	for {
		frag, more, err := r.br.ReadLine()
		if err != nil {
			if err != io.EOF {
				r.err = fmt.Errorf("%s:%d: %w", r.line.FileName, r.line.Line+1, err)
				return false
			}
			if !started {
				return false
			}
			break
		}
		started = true
		if tooLong || len(r.buf)+len(frag) > maxLineSize {
			// Drain the rest of the line.
			tooLong = true
		} else {
			r.buf = append(r.buf, frag...)
		}
		if !more {
			break
		}
	}

	r.line.Line++
	if tooLong {
		r.line.Text = ""
		r.line.Kind = None
		r.line.Err = &SyntaxError{r.line.FileName, r.line.Line, fmt.Sprintf("line longer than %d bytes", maxLineSize)}
		return true
	}
	r.line.Text = string(r.buf)
	r.line.Kind = Classify(r.line.Text)
	r.line.Err = nil
	return true
}

// Line returns the line that was just read by Scan. The caller should
// not retain the returned Line, as it is overwritten by the next call
// to Scan.
func (r *Reader) Line() *Line {
	return &r.line
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}
