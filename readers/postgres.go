//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of TablePrep.
//
// TablePrep is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// TablePrep is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with TablePrep. If not, see https://www.gnu.org/licenses/.

package readers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/aaronlmathis/tableprep/core"
)

// Package readers provides implementations of TableSource for loading tables
// from various sources.
//
// This file implements a configurable PostgreSQL reader: one SQL query, the
// whole result set materialized as an in-memory table, column order taken from
// the query's select list.

// PostgresReaderError provides structured error information for Postgres reader operations.
type PostgresReaderError struct {
	Op  string // Operation that failed (e.g., "connect", "query", "scan")
	Err error  // Underlying error
}

func (e *PostgresReaderError) Error() string {
	return fmt.Sprintf("postgres reader %s: %v", e.Op, e.Err)
}

func (e *PostgresReaderError) Unwrap() error {
	return e.Err
}

// PostgresReaderStats holds statistics about the Postgres reader's work.
type PostgresReaderStats struct {
	RowsRead        int64
	QueryDuration   time.Duration
	ConnectionTime  time.Duration
	NullValueCounts map[string]int64
}

// PostgresReaderOptions configures the Postgres reader.
type PostgresReaderOptions struct {
	DSN             string        // Database connection string
	Query           string        // SQL query to execute
	Params          []interface{} // Optional query parameters
	QueryTimeout    time.Duration // Query execution timeout (0 = none)
	ConnMaxLifetime time.Duration // Maximum connection lifetime
	MaxOpenConns    int           // Maximum open connections
	MaxIdleConns    int           // Maximum idle connections
}

// PostgresReaderOption represents a configuration function for PostgresReaderOptions.
type PostgresReaderOption func(*PostgresReaderOptions)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) { opts.DSN = dsn }
}

// WithPostgresQuery sets the SQL query and optional parameters.
func WithPostgresQuery(query string, params ...interface{}) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) {
		opts.Query = query
		opts.Params = append([]interface{}(nil), params...)
	}
}

// WithPostgresQueryTimeout sets the query execution timeout.
func WithPostgresQueryTimeout(timeout time.Duration) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) { opts.QueryTimeout = timeout }
}

// WithPostgresConnectionPool configures the connection pool.
func WithPostgresConnectionPool(maxOpen, maxIdle int) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) {
		opts.MaxOpenConns = maxOpen
		opts.MaxIdleConns = maxIdle
	}
}

// WithPostgresConnMaxLifetime sets the maximum connection lifetime.
func WithPostgresConnMaxLifetime(lifetime time.Duration) PostgresReaderOption {
	return func(opts *PostgresReaderOptions) { opts.ConnMaxLifetime = lifetime }
}

// PostgresReader implements TableSource for PostgreSQL databases.
type PostgresReader struct {
	db    *sql.DB
	opts  PostgresReaderOptions
	stats PostgresReaderStats
}

// NewPostgresReader creates a new Postgres reader and verifies connectivity.
func NewPostgresReader(options ...PostgresReaderOption) (*PostgresReader, error) {
	opts := PostgresReaderOptions{}
	for _, option := range options {
		option(&opts)
	}

	if opts.DSN == "" {
		return nil, &PostgresReaderError{Op: "validate_options", Err: fmt.Errorf("DSN is required")}
	}
	if opts.Query == "" {
		return nil, &PostgresReaderError{Op: "validate_options", Err: fmt.Errorf("query is required")}
	}

	start := time.Now()
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, &PostgresReaderError{Op: "connect", Err: err}
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &PostgresReaderError{Op: "ping", Err: err}
	}

	return &PostgresReader{
		db:   db,
		opts: opts,
		stats: PostgresReaderStats{
			ConnectionTime:  time.Since(start),
			NullValueCounts: make(map[string]int64),
		},
	}, nil
}

// Read implements the TableSource interface. The query result is materialized
// whole; the select list defines the column order.
func (p *PostgresReader) Read(ctx context.Context) (*core.Table, error) {
	if p.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := p.db.QueryContext(ctx, p.opts.Query, p.opts.Params...)
	if err != nil {
		return nil, &PostgresReaderError{Op: "query", Err: err}
	}
	defer rows.Close()
	p.stats.QueryDuration = time.Since(start)

	columns, err := rows.Columns()
	if err != nil {
		return nil, &PostgresReaderError{Op: "columns", Err: err}
	}

	table := core.NewTable(columns...)
	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, &PostgresReaderError{Op: "scan", Err: err}
		}
		row := make([]interface{}, len(columns))
		for i, v := range values {
			switch cell := v.(type) {
			case nil:
				p.stats.NullValueCounts[columns[i]]++
				row[i] = nil
			case []byte:
				row[i] = string(cell)
			default:
				row[i] = cell
			}
		}
		table.Rows = append(table.Rows, row)
		p.stats.RowsRead++
	}
	if err := rows.Err(); err != nil {
		return nil, &PostgresReaderError{Op: "read_rows", Err: err}
	}

	return table, nil
}

// Close implements the TableSource interface.
func (p *PostgresReader) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Stats returns Postgres reader statistics.
func (p *PostgresReader) Stats() PostgresReaderStats {
	return p.stats
}
