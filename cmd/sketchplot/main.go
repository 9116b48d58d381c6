// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Sketchplot charts the results of sketch benchmark runs.
//
// Usage:
//
//	sketchplot [flags] [inputs...]
//
// Sketchplot reads the logs written by the sketch benchmarking
// harness, either the files named on the command line or, if there
// are none, every regular file in the -path directory. It attributes
// each measurement to the trace, test and data structure declared
// before it, and for every (trace, test, metric) draws a bar chart of
// the mean of each data structure with an error bar of one standard
// deviation. Timing measurements are charted as throughput in items
// per second, using the sequence length declared by LENGTH.
//
// Charts are written to the -png directory as
//
//	[RESTRICT-]trace-metric.png
//	[RESTRICT-]trace-Throughput-test.png
//
// where RESTRICT is the -restrict selector unless it is BASIC. A one
// line text summary of each chart is printed to standard output.
//
// The -restrict flag selects which data structures are charted:
// BASIC, OPTS-FULL, OPTS, NOMI or NITRO, or a set loaded with
// -restricts from a YAML file mapping names to lists of data
// structures. An unknown selector charts every data structure.
//
// Lines that cannot be applied are reported and skipped; they never
// stop the run. Malformed or non-finite numbers, including a zero
// timing, stop the run before any chart is written. Charts of
// different tests that share a file name replace one another; a
// warning is printed when that happens.
//
// With -html, sketchplot also writes a report table of every chart's
// values. With -db, it stores them in a SQL database (-driver sqlite3
// or mysql).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sketchbench/sketchperf/sketchchart"
	"github.com/sketchbench/sketchperf/sketchfmt"
	"github.com/sketchbench/sketchperf/sketchproc"
	"github.com/sketchbench/sketchperf/sketchtab"
	"github.com/sketchbench/sketchperf/storage/db"
	_ "github.com/sketchbench/sketchperf/storage/db/sqlite3"
)

func main() {
	log.SetPrefix("sketchplot: ")
	log.SetFlags(0)
	if err := sketchplot(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err != flag.ErrHelp {
			log.Print(err)
		}
		os.Exit(1)
	}
}

func sketchplot(stdout, stderr io.Writer, args []string) error {
	flags := flag.NewFlagSet("sketchplot", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: sketchplot [flags] [inputs...]\n\n")
		flags.PrintDefaults()
	}
	var (
		flagPath      = flags.String("path", "results", "read every file in `dir` when no inputs are given")
		flagRestrict  = flags.String("restrict", sketchproc.DefaultRestrict, "chart only the data structures in allow list `name`")
		flagRestricts = flags.String("restricts", "", "load additional allow lists from YAML `file`")
		flagPNG       = flags.String("png", ".", "write charts into `dir`")
		flagPerTrace  = flags.Bool("per-trace-length", false, "convert timings with each trace's own LENGTH instead of the last one read")
		flagHTML      = flags.String("html", "", "write an HTML report to `file`")
		flagDB        = flags.String("db", "", "store summaries in the database at `dsn`")
		flagDriver    = flags.String("driver", "sqlite3", "SQL `driver` for -db: sqlite3 or mysql")
		flagVerbose   = flags.Bool("v", false, "trace every input line")
		flagLog       = flags.String("log", "", "write the -v trace to `file` instead of standard error")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	warn := log.New(stderr, "sketchplot: ", 0)

	restricts := sketchproc.BuiltinRestricts()
	if *flagRestricts != "" {
		if err := loadRestricts(restricts, *flagRestricts); err != nil {
			return err
		}
	}
	allow, ok := restricts.Lookup(*flagRestrict)
	if !ok {
		warn.Printf("unknown restrict parameter %s; using all algorithms", *flagRestrict)
	}

	state := sketchtab.NewState()
	if *flagVerbose || *flagLog != "" {
		w := stderr
		if *flagLog != "" {
			f, err := os.Create(*flagLog)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		state.Debug = log.New(w, "", log.LstdFlags).Printf
	}

	// Read the inputs.
	files := &sketchfmt.Files{Paths: flags.Args(), Dir: *flagPath}
	for files.Scan() {
		if err := state.Add(files.Line()); err != nil {
			// Non-fatal. Report and keep going.
			warn.Print(err)
		}
	}
	if err := files.Err(); err != nil {
		return err
	}

	reduced, err := sketchproc.Reduce(state.Results, sketchproc.ReduceOptions{
		Allow: allow,
		Length: func(trace string) string {
			return state.LengthFor(trace, *flagPerTrace)
		},
	})
	if err != nil {
		return err
	}
	groups := reduced.Groups()

	for _, g := range groups {
		if err := sketchchart.Summarize(stdout, g); err != nil {
			return err
		}
	}
	if _, err := sketchchart.Write(*flagPNG, sketchproc.FilePrefix(*flagRestrict), groups, warn.Printf); err != nil {
		return fmt.Errorf("writing charts: %w", err)
	}

	if *flagHTML != "" {
		if err := writeHTMLFile(*flagHTML, *flagRestrict, allow, groups); err != nil {
			return fmt.Errorf("writing HTML report: %w", err)
		}
	}

	if *flagDB != "" {
		if err := store(context.Background(), *flagDriver, *flagDB, *flagRestrict, groups); err != nil {
			return fmt.Errorf("storing summaries: %w", err)
		}
	}
	return nil
}

func loadRestricts(r sketchproc.Restricts, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func store(ctx context.Context, driver, dsn, selector string, groups []*sketchproc.Group) error {
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		return err
	}
	defer d.Close()
	run, err := d.NewRun(ctx, selector)
	if err != nil {
		return err
	}
	return run.InsertGroups(ctx, groups)
}
