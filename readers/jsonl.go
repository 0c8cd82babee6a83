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
	"encoding/json"
	"io"
	"sort"

	"github.com/aaronlmathis/tableprep/core"
)

// JSONLReader implements TableSource for line-delimited JSON files.
//
// JSON objects carry no field order, so the column order comes from the
// columns passed to NewJSONLReader when given, otherwise from the sorted keys
// of the first line. First-column-keyed stages downstream usually want an
// explicit order.
type JSONLReader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	columns []string
}

// NewJSONLReader creates a new reader for line-delimited JSON.
func NewJSONLReader(r io.ReadCloser, columns ...string) *JSONLReader {
	return &JSONLReader{
		scanner: bufio.NewScanner(r),
		closer:  r,
		columns: columns,
	}
}

// Read implements the TableSource interface.
func (j *JSONLReader) Read(ctx context.Context) (*core.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var table *core.Table
	for j.scanner.Scan() {
		line := j.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record map[string]interface{}
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, err
		}

		if table == nil {
			columns := j.columns
			if len(columns) == 0 {
				for k := range record {
					columns = append(columns, k)
				}
				sort.Strings(columns)
			}
			table = core.NewTable(columns...)
		}

		row := make([]interface{}, len(table.Columns))
		for i, col := range table.Columns {
			row[i] = record[col]
		}
		table.Rows = append(table.Rows, row)
	}
	if err := j.scanner.Err(); err != nil {
		return nil, err
	}

	if table == nil {
		table = core.NewTable(j.columns...)
	}
	return table, nil
}

// Close implements the TableSource interface.
func (j *JSONLReader) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
