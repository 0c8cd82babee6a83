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
	"encoding/json"
	"fmt"
	"io"

	"github.com/aaronlmathis/tableprep/core"
)

// JSONLWriter implements TableSink for line-delimited JSON output.
// Each row becomes one JSON object keyed by column name.
type JSONLWriter struct {
	writer io.Writer
	closer io.Closer
}

// NewJSONLWriter creates a new writer for line-delimited JSON output.
func NewJSONLWriter(w io.WriteCloser) *JSONLWriter {
	return &JSONLWriter{writer: w, closer: w}
}

// Write implements the TableSink interface.
func (j *JSONLWriter) Write(ctx context.Context, table *core.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	enc := json.NewEncoder(j.writer)
	for _, row := range table.Rows {
		record := make(map[string]interface{}, len(table.Columns))
		for i, col := range table.Columns {
			record[col] = row[i]
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to encode row to JSON: %w", err)
		}
	}
	return nil
}

// Close implements the TableSink interface.
func (j *JSONLWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
