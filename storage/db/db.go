// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores reduced sketch benchmark summaries in a SQL
// database.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"

	"github.com/sketchbench/sketchperf/sketchmath"
	"github.com/sketchbench/sketchperf/sketchproc"
)

// DB is a high-level interface to a database of summaries. It's safe
// for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun     *sql.Stmt
	insertSummary *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Selector VARCHAR(255)
);
CREATE TABLE IF NOT EXISTS Summaries (
	RunID BIGINT UNSIGNED,
	Trace VARCHAR(128),
	Operation VARCHAR(128),
	Metric VARCHAR(64),
	DataStructure VARCHAR(128),
	Mean DOUBLE,
	StdDev DOUBLE,
	N INTEGER,
	PRIMARY KEY (RunID, Trace, Operation, Metric, DataStructure),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Selector) VALUES (?)")
	if err != nil {
		return err
	}
	db.insertSummary, err = db.sql.Prepare("INSERT INTO Summaries(RunID, Trace, Operation, Metric, DataStructure, Mean, StdDev, N) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// A Run is one invocation's worth of summaries.
type Run struct {
	// ID is the primary key of the run.
	ID int64

	db *DB
}

// NewRun records a new run reduced under the allow list selector.
func (db *DB) NewRun(ctx context.Context, selector string) (*Run, error) {
	res, err := db.insertRun.ExecContext(ctx, selector)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Run{ID: id, db: db}, nil
}

// InsertGroups stores every bar of groups in the run, in a single
// transaction.
func (r *Run) InsertGroups(ctx context.Context, groups []*sketchproc.Group) (err error) {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	stmt := tx.StmtContext(ctx, r.db.insertSummary)
	for _, g := range groups {
		for _, b := range g.Bars {
			s := b.Summary
			if _, err = stmt.ExecContext(ctx, r.ID, g.Trace, g.Operation, g.Metric, b.Name, s.Mean, s.StdDev, s.N); err != nil {
				return fmt.Errorf("inserting %s/%s/%s/%s: %w", g.Trace, g.Operation, g.Metric, b.Name, err)
			}
		}
	}
	return nil
}

// Groups reads back the summaries of run id, grouped and sorted as
// sketchproc.Reduced.Groups sorts them.
func (db *DB) Groups(ctx context.Context, id int64) ([]*sketchproc.Group, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Trace, Operation, Metric, DataStructure, Mean, StdDev, N FROM Summaries WHERE RunID = ? ORDER BY Trace, Operation, Metric, DataStructure", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*sketchproc.Group
	var g *sketchproc.Group
	for rows.Next() {
		var trace, op, metric, ds string
		var s sketchmath.Summary
		if err := rows.Scan(&trace, &op, &metric, &ds, &s.Mean, &s.StdDev, &s.N); err != nil {
			return nil, err
		}
		if g == nil || g.Trace != trace || g.Operation != op || g.Metric != metric {
			g = &sketchproc.Group{Trace: trace, Operation: op, Metric: metric}
			groups = append(groups, g)
		}
		g.Bars = append(g.Bars, sketchproc.Bar{Name: ds, Summary: s})
	}
	return groups, rows.Err()
}

// CountRuns returns the number of runs stored in the database.
func (db *DB) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertSummary.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
