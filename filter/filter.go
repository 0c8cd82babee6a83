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

package filter

import (
	"fmt"
	"unicode/utf8"

	"github.com/aaronlmathis/tableprep/core"
)

// Package filter provides the row-filtering stage for TablePrep pipelines.
//
// Filtering keys on the table's first column: rows whose first-column value does
// not reach the configured minimum length are dropped. The stage is pure and
// preserves the relative order of surviving rows and the full column list.

// Config controls the filtering stage.
type Config struct {
	// MinLength is the minimum number of characters (runes) the first-column
	// value must have for the row to survive. Zero keeps every row.
	MinLength int
	// DropEmpty additionally removes rows whose first-column value is nil or
	// empty even when MinLength is zero.
	DropEmpty bool
}

// DefaultConfig returns a filter configuration that keeps every row.
func DefaultConfig() Config {
	return Config{}
}

// Stats instruments a filtering run.
type Stats struct {
	RowsRemoved   int64 // Rows dropped by the filter
	RowsRemaining int64 // Rows surviving the filter
	MinLength     int   // Threshold applied
}

// ByMinLength returns a new table containing only rows whose first-column
// value, converted to its string form, has at least cfg.MinLength characters.
// A nil or missing first-column value counts as length zero.
//
// A negative MinLength is an ErrInvalidConfiguration; a table with zero columns
// has no first column and is an ErrInvalidInput.
func ByMinLength(t *core.Table, cfg Config) (*core.Table, Stats, error) {
	if cfg.MinLength < 0 {
		return nil, Stats{}, fmt.Errorf("%w: minimum length must be non-negative, got %d", core.ErrInvalidConfiguration, cfg.MinLength)
	}
	if t.NumCols() == 0 {
		return nil, Stats{}, fmt.Errorf("%w: table has no columns, first column required", core.ErrInvalidInput)
	}

	out := core.NewTable(t.Columns...)
	for _, row := range t.Rows {
		key := t.Key(row)
		if cfg.DropEmpty && key == "" {
			continue
		}
		if utf8.RuneCountInString(key) < cfg.MinLength {
			continue
		}
		out.Rows = append(out.Rows, append([]interface{}(nil), row...))
	}

	stats := Stats{
		RowsRemoved:   int64(t.NumRows() - out.NumRows()),
		RowsRemaining: int64(out.NumRows()),
		MinLength:     cfg.MinLength,
	}
	return out, stats, nil
}
