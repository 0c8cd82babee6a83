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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aaronlmathis/tableprep"
)

// UnsupportedFormatError reports a file extension no reader handles.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q for %s", e.Ext, e.Path)
}

// OpenOptions configures Open's format dispatch.
type OpenOptions struct {
	Delimiter  rune   // Delimiter for .csv/.txt; 0 means comma for .csv, detected for .txt
	InferTypes bool   // Parse cells into int/float/bool where possible
	Sheet      string // Sheet name for workbooks; empty means first sheet
}

// OpenOption allows functional customization of Open.
type OpenOption func(*OpenOptions)

func WithOpenDelimiter(delimiter rune) OpenOption {
	return func(o *OpenOptions) { o.Delimiter = delimiter }
}

func WithOpenInferTypes(infer bool) OpenOption {
	return func(o *OpenOptions) { o.InferTypes = infer }
}

func WithOpenSheet(sheet string) OpenOption {
	return func(o *OpenOptions) { o.Sheet = sheet }
}

// Open returns a TableSource for the file at path, dispatching on its
// extension: .csv and .txt/.tsv as delimited text (the delimiter of a .txt is
// detected when not fixed), .xlsx as a workbook, .jsonl/.ndjson as
// line-delimited JSON. Legacy BIFF .xls workbooks are not supported.
func Open(path string, options ...OpenOption) (tableprep.TableSource, error) {
	opts := OpenOptions{InferTypes: true}
	for _, option := range options {
		option(&opts)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		delim := opts.Delimiter
		if delim == 0 {
			delim = ','
		}
		return NewCSVReader(f, WithCSVComma(delim), WithCSVInferTypes(opts.InferTypes)), nil
	case ".txt", ".tsv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return NewCSVReader(f,
			WithCSVComma(opts.Delimiter),
			WithCSVDetectDelimiter(opts.Delimiter == 0),
			WithCSVInferTypes(opts.InferTypes)), nil
	case ".xlsx", ".xlsm":
		return NewExcelReader(path,
			WithExcelSheet(opts.Sheet),
			WithExcelInferTypes(opts.InferTypes))
	case ".xls":
		// excelize reads OOXML only; the old BIFF container needs a converter.
		return nil, &UnsupportedFormatError{Path: path, Ext: ext}
	case ".jsonl", ".ndjson":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return NewJSONLReader(f), nil
	default:
		return nil, &UnsupportedFormatError{Path: path, Ext: ext}
	}
}
