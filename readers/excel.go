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
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/aaronlmathis/tableprep/core"
)

// ExcelReaderError wraps structured error information for the Excel reader.
type ExcelReaderError struct {
	Op  string
	Err error
}

func (e *ExcelReaderError) Error() string {
	return fmt.Sprintf("excel reader %s: %v", e.Op, e.Err)
}

func (e *ExcelReaderError) Unwrap() error {
	return e.Err
}

// ExcelReaderStats holds statistics about the Excel reader's work.
type ExcelReaderStats struct {
	RowsRead     int64
	ReadDuration time.Duration
	Sheet        string // Sheet actually read
}

// ExcelReaderOptions configures the Excel reader.
type ExcelReaderOptions struct {
	Sheet      string // Sheet to read; empty means the workbook's first sheet
	HasHeaders bool   // First row is the header row
	InferTypes bool   // Parse cells into int/float/bool where possible
}

// ReaderOptionExcel allows functional customization of ExcelReader.
type ReaderOptionExcel func(*ExcelReaderOptions)

func WithExcelSheet(sheet string) ReaderOptionExcel {
	return func(o *ExcelReaderOptions) { o.Sheet = sheet }
}

func WithExcelHasHeaders(hasHeaders bool) ReaderOptionExcel {
	return func(o *ExcelReaderOptions) { o.HasHeaders = hasHeaders }
}

func WithExcelInferTypes(infer bool) ReaderOptionExcel {
	return func(o *ExcelReaderOptions) { o.InferTypes = infer }
}

// ExcelReader implements TableSource for xlsx workbooks. Only OOXML workbooks
// are supported; legacy BIFF .xls files are rejected at open time.
type ExcelReader struct {
	file  *excelize.File
	opts  ExcelReaderOptions
	stats ExcelReaderStats
}

// NewExcelReader opens the workbook at path.
func NewExcelReader(path string, options ...ReaderOptionExcel) (*ExcelReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ExcelReaderError{Op: "open", Err: err}
	}
	return newExcelReader(f, options), nil
}

// NewExcelReaderFrom opens a workbook from a stream.
func NewExcelReaderFrom(r io.Reader, options ...ReaderOptionExcel) (*ExcelReader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ExcelReaderError{Op: "open", Err: err}
	}
	return newExcelReader(f, options), nil
}

func newExcelReader(f *excelize.File, options []ReaderOptionExcel) *ExcelReader {
	opts := ExcelReaderOptions{
		HasHeaders: true,
		InferTypes: true,
	}
	for _, opt := range options {
		opt(&opts)
	}
	return &ExcelReader{file: f, opts: opts}
}

// Read implements the TableSource interface. The selected sheet (first sheet
// by default) is loaded whole, first row as header.
func (e *ExcelReader) Read(ctx context.Context) (*core.Table, error) {
	start := time.Now()

	select {
	case <-ctx.Done():
		return nil, &ExcelReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	sheet := e.opts.Sheet
	if sheet == "" {
		sheets := e.file.GetSheetList()
		if len(sheets) == 0 {
			return nil, &ExcelReaderError{Op: "read", Err: fmt.Errorf("workbook has no sheets")}
		}
		sheet = sheets[0]
	}
	e.stats.Sheet = sheet

	rows, err := e.file.GetRows(sheet)
	if err != nil {
		return nil, &ExcelReaderError{Op: "read_rows", Err: err}
	}
	if len(rows) == 0 {
		return core.NewTable(), nil
	}

	var headers []string
	if e.opts.HasHeaders {
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
				row[i] = nil
				continue
			}
			if e.opts.InferTypes {
				row[i] = parseValue(val)
			} else {
				row[i] = val
			}
		}
		table.Rows = append(table.Rows, row)
		e.stats.RowsRead++
	}

	e.stats.ReadDuration += time.Since(start)
	return table, nil
}

// Close implements the TableSource interface.
func (e *ExcelReader) Close() error {
	if e.file != nil {
		return e.file.Close()
	}
	return nil
}

// Stats returns Excel reader statistics.
func (e *ExcelReader) Stats() ExcelReaderStats {
	return e.stats
}
