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
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aaronlmathis/tableprep/core"
)

// Package readers provides implementations of TableSource for loading tables
// from various sources.
//
// This file implements the CSV/TXT reader: delimited text with the first row
// as header, optional delimiter detection, and optional cell type inference.

// CSVReaderError wraps structured error information for the CSV reader.
type CSVReaderError struct {
	Op  string
	Err error
}

func (e *CSVReaderError) Error() string {
	return fmt.Sprintf("csv reader %s: %v", e.Op, e.Err)
}

func (e *CSVReaderError) Unwrap() error {
	return e.Err
}

// CSVReaderStats holds statistics about the CSV reader's work.
type CSVReaderStats struct {
	RowsRead        int64
	ReadDuration    time.Duration
	NullValueCounts map[string]int64
	Delimiter       rune // Delimiter actually used, after detection
}

// CSVReaderOptions configures the CSV reader.
type CSVReaderOptions struct {
	Comma           rune // Field delimiter; 0 means detect from a sample
	Comment         rune
	LazyQuotes      bool
	HasHeaders      bool // First row is the header row
	InferTypes      bool // Parse cells into int/float/bool where possible
	DetectDelimiter bool // Sniff the delimiter from the first line
}

// ReaderOptionCSV allows functional customization of CSVReader.
type ReaderOptionCSV func(*CSVReaderOptions)

func WithCSVComma(r rune) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.Comma = r }
}

func WithCSVHasHeaders(hasHeaders bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.HasHeaders = hasHeaders }
}

func WithCSVInferTypes(infer bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.InferTypes = infer }
}

func WithCSVDetectDelimiter(detect bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.DetectDelimiter = detect }
}

func WithCSVLazyQuotes(lazy bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.LazyQuotes = lazy }
}

// CSVReader implements TableSource for delimited text files.
type CSVReader struct {
	source io.ReadCloser
	opts   CSVReaderOptions
	stats  CSVReaderStats
}

// NewCSVReader creates a CSVReader with default or overridden options.
// Defaults: comma delimiter, header row present, type inference on.
func NewCSVReader(r io.ReadCloser, options ...ReaderOptionCSV) *CSVReader {
	opts := CSVReaderOptions{
		Comma:      ',',
		HasHeaders: true,
		InferTypes: true,
	}
	for _, opt := range options {
		opt(&opts)
	}
	return &CSVReader{
		source: r,
		opts:   opts,
		stats:  CSVReaderStats{NullValueCounts: make(map[string]int64)},
	}
}

// Read implements the TableSource interface. The whole input is loaded into
// one in-memory table; the first row becomes the column list when HasHeaders
// is set, otherwise columns are named col_0, col_1, ...
func (c *CSVReader) Read(ctx context.Context) (*core.Table, error) {
	start := time.Now()

	select {
	case <-ctx.Done():
		return nil, &CSVReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	buffered := bufio.NewReader(c.source)

	delim := c.opts.Comma
	if c.opts.DetectDelimiter || delim == 0 {
		sample, _ := buffered.Peek(4096)
		delim = DetectDelimiter(sample, delim)
	}
	c.stats.Delimiter = delim

	reader := csv.NewReader(buffered)
	reader.Comma = delim
	reader.Comment = c.opts.Comment
	reader.LazyQuotes = c.opts.LazyQuotes
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = false

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &CSVReaderError{Op: "read_rows", Err: err}
	}
	if len(rows) == 0 {
		return core.NewTable(), nil
	}

	var headers []string
	if c.opts.HasHeaders {
		headers = rows[0]
		rows = rows[1:]
	} else {
		headers = make([]string, len(rows[0]))
		for i := range headers {
			headers[i] = "col_" + strconv.Itoa(i)
		}
	}

	table := core.NewTable(headers...)
	for _, raw := range rows {
		row := make([]interface{}, len(headers))
		for i := range headers {
			var val string
			if i < len(raw) {
				val = raw[i]
			}
			if strings.TrimSpace(val) == "" {
				c.stats.NullValueCounts[headers[i]]++
				row[i] = nil
				continue
			}
			if c.opts.InferTypes {
				row[i] = parseValue(val)
			} else {
				row[i] = val
			}
		}
		table.Rows = append(table.Rows, row)
		c.stats.RowsRead++
	}

	c.stats.ReadDuration += time.Since(start)
	return table, nil
}

// Close implements the TableSource interface.
func (c *CSVReader) Close() error {
	if c.source != nil {
		return c.source.Close()
	}
	return nil
}

// Stats returns CSV reader statistics.
func (c *CSVReader) Stats() CSVReaderStats {
	return c.stats
}

// DetectDelimiter picks the most frequent candidate delimiter in the sample's
// first line. Candidates are tried in order: semicolon, comma, tab, pipe.
// fallback is returned when the sample contains none of them.
func DetectDelimiter(sample []byte, fallback rune) rune {
	if fallback == 0 {
		fallback = ','
	}
	line := string(sample)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best := fallback
	bestCount := 0
	for _, cand := range []rune{';', ',', '\t', '|'} {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

// parseValue attempts to infer int, float, bool, or fallback to string.
func parseValue(value string) interface{} {
	trimmed := strings.TrimSpace(value)

	// Try parsing in common order
	if i, err := strconv.Atoi(trimmed); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(trimmed); err == nil {
		return b
	}
	return value
}
