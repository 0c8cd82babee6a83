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
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aaronlmathis/tableprep/core"
)

// Package writers provides implementations of TableSink for exporting tables
// to various destinations.
//
// This file implements the delimited text sink, the standard export format:
// one line per row, values joined by a semicolon, header row first, trailing
// newline per row.

// DelimitedWriterError wraps delimited-text write errors with context.
type DelimitedWriterError struct {
	Op  string
	Err error
}

func (e *DelimitedWriterError) Error() string {
	return fmt.Sprintf("delimited writer %s: %v", e.Op, e.Err)
}

func (e *DelimitedWriterError) Unwrap() error {
	return e.Err
}

// DelimitedWriterStats holds delimited-text write statistics.
type DelimitedWriterStats struct {
	RowsWritten   int64
	WriteDuration time.Duration
	QuotedValues  int64 // Values that needed quoting to stay unambiguous
}

// DelimitedWriterOptions configures the delimited text output.
type DelimitedWriterOptions struct {
	Delimiter   rune // Field delimiter; default semicolon
	UseCRLF     bool
	WriteHeader bool // Emit the column names as the first line
	// RawValues disables quoting for byte-exact legacy output. A value
	// containing the delimiter or a newline is then an error rather than a
	// silently ambiguous line.
	RawValues bool
}

// WriterOptionDelimited is a functional option.
type WriterOptionDelimited func(*DelimitedWriterOptions)

func WithDelimiter(delimiter rune) WriterOptionDelimited {
	return func(opts *DelimitedWriterOptions) { opts.Delimiter = delimiter }
}

func WithWriteHeader(write bool) WriterOptionDelimited {
	return func(opts *DelimitedWriterOptions) { opts.WriteHeader = write }
}

func WithUseCRLF(useCRLF bool) WriterOptionDelimited {
	return func(opts *DelimitedWriterOptions) { opts.UseCRLF = useCRLF }
}

func WithRawValues(raw bool) WriterOptionDelimited {
	return func(opts *DelimitedWriterOptions) { opts.RawValues = raw }
}

// DelimitedWriter implements TableSink for delimited text output.
type DelimitedWriter struct {
	dest   io.Writer
	closer io.Closer
	opts   DelimitedWriterOptions
	stats  DelimitedWriterStats
}

// NewDelimitedWriter creates a delimited text writer. Defaults: semicolon
// delimiter, header row written, minimal quoting of values that embed the
// delimiter or a newline.
func NewDelimitedWriter(w io.WriteCloser, options ...WriterOptionDelimited) *DelimitedWriter {
	opts := DelimitedWriterOptions{
		Delimiter:   ';',
		WriteHeader: true,
	}
	for _, option := range options {
		option(&opts)
	}
	return &DelimitedWriter{dest: w, closer: w, opts: opts}
}

// Write implements the TableSink interface. The whole table is written in one
// call: header first, then one line per row, each line ending in a newline.
func (d *DelimitedWriter) Write(ctx context.Context, table *core.Table) error {
	start := time.Now()

	select {
	case <-ctx.Done():
		return &DelimitedWriterError{Op: "write", Err: ctx.Err()}
	default:
	}

	if d.opts.RawValues {
		return d.writeRaw(table, start)
	}

	cw := csv.NewWriter(d.dest)
	cw.Comma = d.opts.Delimiter
	cw.UseCRLF = d.opts.UseCRLF

	if d.opts.WriteHeader {
		if err := cw.Write(table.Columns); err != nil {
			return &DelimitedWriterError{Op: "write_header", Err: err}
		}
	}

	delim := string(d.opts.Delimiter)
	for _, row := range table.Rows {
		line := make([]string, len(row))
		for i, cell := range row {
			line[i] = core.CellString(cell)
			if strings.ContainsAny(line[i], delim+"\"\n") {
				d.stats.QuotedValues++
			}
		}
		if err := cw.Write(line); err != nil {
			return &DelimitedWriterError{Op: "write_row", Err: err}
		}
		d.stats.RowsWritten++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return &DelimitedWriterError{Op: "flush", Err: err}
	}

	d.stats.WriteDuration += time.Since(start)
	return nil
}

// writeRaw emits lines without quoting and refuses values that would make the
// output ambiguous.
func (d *DelimitedWriter) writeRaw(table *core.Table, start time.Time) error {
	delim := string(d.opts.Delimiter)
	eol := "\n"
	if d.opts.UseCRLF {
		eol = "\r\n"
	}

	writeLine := func(fields []string) error {
		for _, f := range fields {
			if strings.Contains(f, delim) || strings.ContainsAny(f, "\r\n") {
				return &DelimitedWriterError{
					Op:  "write_row",
					Err: fmt.Errorf("value %q contains the delimiter or a newline; raw output would be ambiguous", f),
				}
			}
		}
		if _, err := io.WriteString(d.dest, strings.Join(fields, delim)+eol); err != nil {
			return &DelimitedWriterError{Op: "write_row", Err: err}
		}
		return nil
	}

	if d.opts.WriteHeader {
		if err := writeLine(table.Columns); err != nil {
			return err
		}
	}
	for _, row := range table.Rows {
		line := make([]string, len(row))
		for i, cell := range row {
			line[i] = core.CellString(cell)
		}
		if err := writeLine(line); err != nil {
			return err
		}
		d.stats.RowsWritten++
	}

	d.stats.WriteDuration += time.Since(start)
	return nil
}

// Close implements the TableSink interface.
func (d *DelimitedWriter) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// Stats returns write statistics.
func (d *DelimitedWriter) Stats() DelimitedWriterStats {
	return d.stats
}
