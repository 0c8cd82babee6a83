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
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/aaronlmathis/tableprep/core"
)

// ExcelWriterError wraps Excel-specific write errors with context.
type ExcelWriterError struct {
	Op  string
	Err error
}

func (e *ExcelWriterError) Error() string {
	return fmt.Sprintf("excel writer %s: %v", e.Op, e.Err)
}

func (e *ExcelWriterError) Unwrap() error {
	return e.Err
}

// ExcelWriterOptions configures the Excel output.
type ExcelWriterOptions struct {
	Sheet       string // Sheet name; default "Sheet1"
	WriteHeader bool   // Emit the column names as the first row
}

// WriterOptionExcel is a functional option.
type WriterOptionExcel func(*ExcelWriterOptions)

func WithExcelWriterSheet(sheet string) WriterOptionExcel {
	return func(opts *ExcelWriterOptions) { opts.Sheet = sheet }
}

func WithExcelWriteHeader(write bool) WriterOptionExcel {
	return func(opts *ExcelWriterOptions) { opts.WriteHeader = write }
}

// ExcelWriter implements TableSink for xlsx workbook output.
type ExcelWriter struct {
	path string
	dest io.Writer
	opts ExcelWriterOptions
}

// NewExcelWriter creates a writer that saves the workbook to path.
func NewExcelWriter(path string, options ...WriterOptionExcel) *ExcelWriter {
	return &ExcelWriter{path: path, opts: excelWriterOptions(options)}
}

// NewExcelWriterTo creates a writer that streams the workbook to w.
func NewExcelWriterTo(w io.Writer, options ...WriterOptionExcel) *ExcelWriter {
	return &ExcelWriter{dest: w, opts: excelWriterOptions(options)}
}

func excelWriterOptions(options []WriterOptionExcel) ExcelWriterOptions {
	opts := ExcelWriterOptions{
		Sheet:       "Sheet1",
		WriteHeader: true,
	}
	for _, option := range options {
		option(&opts)
	}
	return opts
}

// Write implements the TableSink interface.
func (e *ExcelWriter) Write(ctx context.Context, table *core.Table) error {
	select {
	case <-ctx.Done():
		return &ExcelWriterError{Op: "write", Err: ctx.Err()}
	default:
	}

	f := excelize.NewFile()
	defer f.Close()

	if e.opts.Sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", e.opts.Sheet); err != nil {
			return &ExcelWriterError{Op: "rename_sheet", Err: err}
		}
	}

	rowNum := 1
	if e.opts.WriteHeader {
		header := make([]interface{}, len(table.Columns))
		for i, c := range table.Columns {
			header[i] = c
		}
		if err := e.setRow(f, rowNum, header); err != nil {
			return err
		}
		rowNum++
	}

	for _, row := range table.Rows {
		if err := e.setRow(f, rowNum, row); err != nil {
			return err
		}
		rowNum++
	}

	if e.path != "" {
		if err := f.SaveAs(e.path); err != nil {
			return &ExcelWriterError{Op: "save", Err: err}
		}
		return nil
	}
	if err := f.Write(e.dest); err != nil {
		return &ExcelWriterError{Op: "write_stream", Err: err}
	}
	return nil
}

func (e *ExcelWriter) setRow(f *excelize.File, rowNum int, row []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return &ExcelWriterError{Op: "cell_name", Err: err}
	}
	if err := f.SetSheetRow(e.opts.Sheet, cell, &row); err != nil {
		return &ExcelWriterError{Op: "set_row", Err: err}
	}
	return nil
}

// Close implements the TableSink interface.
func (e *ExcelWriter) Close() error {
	return nil
}
