// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketchfmt

import "regexp"

// A Kind classifies a single line of a sketch benchmark log.
type Kind int

const (
	// None is the kind of any line that matches no pattern.
	None Kind = iota

	// Context lines.
	Trace
	DSType
	Test
	Length

	// Sample lines.
	OAMSRE
	OAAvgErr
	OAAvgRelErr
	FlowMSRE
	FlowAvgErr
	FlowAvgRelErr
	PMWMSRE
	PMWAvgErr
	PMWAvgRelErr
	TotalMemory
	Items
	Time

	// End is recognized but has no effect.
	End
)

// Metric names. These are the keys of the innermost level of a
// results table.
const (
	MetricOAMSRE        = "OA-MSRE"
	MetricOAAvgErr      = "OA-AVGERR"
	MetricOAAvgRelErr   = "OA-AVGRELERR"
	MetricFlowMSRE      = "FLOW-MSRE"
	MetricFlowAvgErr    = "FLOW-AVGERR"
	MetricFlowAvgRelErr = "FLOW-AVGRELERR"
	MetricPMWMSRE       = "PMW-MSRE"
	MetricPMWAvgErr     = "PMW-AVGERR"
	MetricPMWAvgRelErr  = "PMW-AVGRELERR"
	MetricMemory        = "MEMORY"
	MetricTime          = "TIME(ms)"
	MetricItems         = "ITEMS"
	MetricSpace         = "SPACE"
)

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// patterns is searched in order; the first match wins.
var patterns = []pattern{
	{Trace, regexp.MustCompile(`TRACE .*`)},
	{DSType, regexp.MustCompile(`DSTYPE .*`)},
	{Test, regexp.MustCompile(`TEST .*`)},
	{Length, regexp.MustCompile(`LENGTH .*`)},
	{OAMSRE, regexp.MustCompile(`On-Arrival MSRE .*`)},
	{OAAvgErr, regexp.MustCompile(`On-Arrival AVGERR .*`)},
	{OAAvgRelErr, regexp.MustCompile(`On-Arrival AVGRELERR .*`)},
	{FlowMSRE, regexp.MustCompile(`Flow MSRE .*`)},
	{FlowAvgErr, regexp.MustCompile(`Flow AVGERR .*`)},
	{FlowAvgRelErr, regexp.MustCompile(`Flow AVGRELERR .*`)},
	{PMWMSRE, regexp.MustCompile(`PMW MSRE .*`)},
	{PMWAvgErr, regexp.MustCompile(`PMW AVGERR .*`)},
	{PMWAvgRelErr, regexp.MustCompile(`PMW AVGRELERR .*`)},
	{TotalMemory, regexp.MustCompile(`Total memory: .*`)},
	{Items, regexp.MustCompile(`Number of items: .*`)},
	{Time, regexp.MustCompile(`TIMEms .*`)},
	{End, regexp.MustCompile(`END .*`)},
}

// Classify returns the kind of the first pattern that matches
// anywhere in line, or None if no pattern matches.
func Classify(line string) Kind {
	for _, p := range patterns {
		if p.re.MatchString(line) {
			return p.kind
		}
	}
	return None
}

var kindNames = [...]string{
	None:          "NONE",
	Trace:         "TRACE",
	DSType:        "DSTYPE",
	Test:          "TEST",
	Length:        "LENGTH",
	OAMSRE:        "On-Arrival MSRE",
	OAAvgErr:      "On-Arrival AVGERR",
	OAAvgRelErr:   "On-Arrival AVGRELERR",
	FlowMSRE:      "Flow MSRE",
	FlowAvgErr:    "Flow AVGERR",
	FlowAvgRelErr: "Flow AVGRELERR",
	PMWMSRE:       "PMW MSRE",
	PMWAvgErr:     "PMW AVGERR",
	PMWAvgRelErr:  "PMW AVGRELERR",
	TotalMemory:   "Total memory",
	Items:         "Number of items",
	Time:          "TIMEms",
	End:           "END",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

var kindMetrics = map[Kind]string{
	OAMSRE:        MetricOAMSRE,
	OAAvgErr:      MetricOAAvgErr,
	OAAvgRelErr:   MetricOAAvgRelErr,
	FlowMSRE:      MetricFlowMSRE,
	FlowAvgErr:    MetricFlowAvgErr,
	FlowAvgRelErr: MetricFlowAvgRelErr,
	PMWMSRE:       MetricPMWMSRE,
	PMWAvgErr:     MetricPMWAvgErr,
	PMWAvgRelErr:  MetricPMWAvgRelErr,
	TotalMemory:   MetricMemory,
	Time:          MetricTime,
}

// Metric returns the metric name that a single-valued sample line of
// kind k is filed under. It returns "" for context lines, Items (which
// carries two metrics), End, and None.
func (k Kind) Metric() string {
	return kindMetrics[k]
}

// IsContext reports whether k updates the parsing context rather
// than carrying a sample.
func (k Kind) IsContext() bool {
	return k == Trace || k == DSType || k == Test || k == Length
}
