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

package writers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/aaronlmathis/tableprep/core"
)

// PostgresWriterError provides structured error information for Postgres writer operations.
type PostgresWriterError struct {
	Op  string // Operation that failed (e.g., "connect", "begin", "copy", "commit")
	Err error  // Underlying error
}

func (e *PostgresWriterError) Error() string {
	return fmt.Sprintf("postgres writer %s: %v", e.Op, e.Err)
}

func (e *PostgresWriterError) Unwrap() error {
	return e.Err
}

// PostgresWriterStats holds Postgres write statistics.
type PostgresWriterStats struct {
	RowsWritten   int64
	WriteDuration time.Duration
}

// PostgresWriterOptions configures the Postgres writer.
type PostgresWriterOptions struct {
	DSN         string // Database connection string
	Table       string // Destination table name
	Truncate    bool   // Truncate the destination table before loading
	CreateTable bool   // Create the destination table (all columns as text) if absent
}

// PostgresWriterOption represents a configuration function for PostgresWriterOptions.
type PostgresWriterOption func(*PostgresWriterOptions)

// WithPostgresWriterDSN sets the PostgreSQL connection string.
func WithPostgresWriterDSN(dsn string) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.DSN = dsn }
}

// WithPostgresWriterTable sets the destination table name.
func WithPostgresWriterTable(table string) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.Table = table }
}

// WithPostgresTruncate truncates the destination table before loading.
func WithPostgresTruncate(truncate bool) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.Truncate = truncate }
}

// WithPostgresCreateTable creates the destination table (text columns) when absent.
func WithPostgresCreateTable(create bool) PostgresWriterOption {
	return func(opts *PostgresWriterOptions) { opts.CreateTable = create }
}

// PostgresWriter implements TableSink for PostgreSQL using COPY bulk loading.
// The whole table is loaded inside one transaction; a failure rolls back and
// leaves the destination untouched.
type PostgresWriter struct {
	db    *sql.DB
	opts  PostgresWriterOptions
	stats PostgresWriterStats
}

// NewPostgresWriter creates a new Postgres writer and verifies connectivity.
func NewPostgresWriter(options ...PostgresWriterOption) (*PostgresWriter, error) {
	opts := PostgresWriterOptions{}
	for _, option := range options {
		option(&opts)
	}

	if opts.DSN == "" {
		return nil, &PostgresWriterError{Op: "validate_options", Err: fmt.Errorf("DSN is required")}
	}
	if opts.Table == "" {
		return nil, &PostgresWriterError{Op: "validate_options", Err: fmt.Errorf("table is required")}
	}

	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, &PostgresWriterError{Op: "connect", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &PostgresWriterError{Op: "ping", Err: err}
	}

	return &PostgresWriter{db: db, opts: opts}, nil
}

// Write implements the TableSink interface.
func (p *PostgresWriter) Write(ctx context.Context, table *core.Table) error {
	start := time.Now()

	if p.opts.CreateTable {
		if err := p.createTable(ctx, table); err != nil {
			return err
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return &PostgresWriterError{Op: "begin", Err: err}
	}

	if p.opts.Truncate {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", pq.QuoteIdentifier(p.opts.Table))); err != nil {
			tx.Rollback()
			return &PostgresWriterError{Op: "truncate", Err: err}
		}
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(p.opts.Table, table.Columns...))
	if err != nil {
		tx.Rollback()
		return &PostgresWriterError{Op: "copy_prepare", Err: err}
	}

	for _, row := range table.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			stmt.Close()
			tx.Rollback()
			return &PostgresWriterError{Op: "copy_row", Err: err}
		}
		p.stats.RowsWritten++
	}

	// Final Exec flushes the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		tx.Rollback()
		return &PostgresWriterError{Op: "copy_flush", Err: err}
	}
	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return &PostgresWriterError{Op: "copy_close", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &PostgresWriterError{Op: "commit", Err: err}
	}

	p.stats.WriteDuration += time.Since(start)
	return nil
}

// createTable issues CREATE TABLE IF NOT EXISTS with every column typed text.
func (p *PostgresWriter) createTable(ctx context.Context, table *core.Table) error {
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = fmt.Sprintf("%s text", pq.QuoteIdentifier(c))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pq.QuoteIdentifier(p.opts.Table), strings.Join(cols, ", "))
	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return &PostgresWriterError{Op: "create_table", Err: err}
	}
	return nil
}

// Close implements the TableSink interface.
func (p *PostgresWriter) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Stats returns write statistics.
func (p *PostgresWriter) Stats() PostgresWriterStats {
	return p.stats
}
