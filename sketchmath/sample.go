// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sketchmath computes summary statistics over repeated
// measurements of a sketch benchmark.
package sketchmath

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// A Sample is a set of repeated measurements of one metric of one
// data structure.
type Sample struct {
	Values []float64
}

// NewSample constructs a Sample from a set of measurements.
func NewSample(values []float64) *Sample {
	return &Sample{values}
}

// A Summary summarizes a Sample by its mean and population standard
// deviation.
type Summary struct {
	Mean   float64
	StdDev float64

	// N is the number of measurements summarized.
	N int
}

// Summary returns the mean and population standard deviation of s.
// An empty sample has no summary; ok is false in that case.
func (s *Sample) Summary() (sum Summary, ok bool) {
	n := len(s.Values)
	if n == 0 {
		return Summary{}, false
	}
	mean := stats.Mean(s.Values)
	// stats.Variance is the unbiased sample variance; rescale
	// it to the population variance.
	v := stats.Variance(s.Values) * float64(n-1) / float64(n)
	return Summary{Mean: mean, StdDev: math.Sqrt(v), N: n}, true
}

func (s Summary) String() string {
	return fmt.Sprintf("%g ± %g (n=%d)", s.Mean, s.StdDev, s.N)
}

// Throughput converts a run time in milliseconds over a sequence of
// length items into items per second.
func Throughput(ms, length float64) float64 {
	return 1000000.0 * length / ms
}
