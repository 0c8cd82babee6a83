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

package core

import (
	"fmt"
)

// Package core defines the in-memory table model for the TablePrep library.
//
// TablePrep is an interface-driven data preparation library for Go: tabular data is
// imported from delimited text, spreadsheets, or databases, cleaned, filtered,
// deduplicated, and exported again.
//
// This file contains the Table type, the pipeline's sole data currency.

// Table is an ordered set of rows aligned to a shared, insertion-ordered list of
// column names. Cells are heterogeneous: string, int, int64, float64, bool,
// time.Time, or nil for a missing value. Only string cells are subject to text
// cleaning; everything else passes through transformations untouched.
type Table struct {
	Columns []string
	Rows    [][]interface{}
}

// NewTable creates an empty Table with the given column names.
func NewTable(columns ...string) *Table {
	return &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]interface{}, 0),
	}
}

// AppendRow adds a row to the table. The row must have exactly one cell per column.
func (t *Table) AppendRow(row ...interface{}) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("%w: row has %d cells, table has %d columns", ErrInvalidInput, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumCols returns the number of columns in the table.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the table. Rows are copied cell by cell so the
// result can be mutated without touching the receiver.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]interface{}, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]interface{}(nil), row...)
	}
	return out
}

// Project returns a new table containing only the named columns, in the order
// given. Naming a column not present in the table is an ErrInvalidConfiguration.
// An empty column list returns a clone of the full table.
func (t *Table) Project(columns []string) (*Table, error) {
	if len(columns) == 0 {
		return t.Clone(), nil
	}

	indices := make([]int, len(columns))
	for i, name := range columns {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: column %q not present in table", ErrInvalidConfiguration, name)
		}
		indices[i] = idx
	}

	out := NewTable(columns...)
	out.Rows = make([][]interface{}, len(t.Rows))
	for r, row := range t.Rows {
		projected := make([]interface{}, len(indices))
		for c, idx := range indices {
			projected[c] = row[idx]
		}
		out.Rows[r] = projected
	}
	return out, nil
}

// Key returns the string form of the row's first-column value, the key used for
// length filtering and deduplication. A nil cell is the empty string.
func (t *Table) Key(row []interface{}) string {
	if len(row) == 0 {
		return ""
	}
	return CellString(row[0])
}

// CellString converts a single cell to its string representation.
// nil becomes "", strings are returned verbatim, everything else is formatted
// with the fmt default verb.
func CellString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprintf("%v", c)
	}
}
