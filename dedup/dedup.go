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

package dedup

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/aaronlmathis/tableprep/core"
)

// Package dedup provides the deduplication stage for TablePrep pipelines.
//
// Deduplication keys on the table's first column. With the default KeepFirst
// strategy, the first row that introduced each distinct key survives and later
// repeats are dropped; order of surviving rows matches the original. An empty
// or nil first-column value is its own key, so at most one such row survives.

// Keep selects which occurrence of a duplicated key survives.
type Keep int

const (
	// KeepFirst retains the earliest row for each key.
	KeepFirst Keep = iota
	// KeepLast retains the latest row for each key.
	KeepLast
)

// Config controls the deduplication stage.
type Config struct {
	Keep             Keep // Which occurrence survives
	CaseInsensitive  bool // Compare keys after lowercasing
	NormalizeUnicode bool // Compare keys after Unicode NFKC normalization
}

// DefaultConfig returns the standard deduplication configuration: keep the
// first occurrence, exact case-sensitive comparison.
func DefaultConfig() Config {
	return Config{Keep: KeepFirst}
}

// Stats instruments a deduplication run.
type Stats struct {
	DuplicatesRemoved int64 // Rows dropped as repeats
	RowsRemaining     int64 // Rows surviving
}

// ByFirstColumn returns a new table with duplicate first-column keys removed.
// Keys are compared by exact string equality after the optional case and
// Unicode transforms; upstream cleaning is assumed to have already removed
// incidental whitespace differences.
//
// A table with zero columns has no first column and is an ErrInvalidInput.
func ByFirstColumn(t *core.Table, cfg Config) (*core.Table, Stats, error) {
	if t.NumCols() == 0 {
		return nil, Stats{}, fmt.Errorf("%w: table has no columns, first column required", core.ErrInvalidInput)
	}

	keys := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		keys[i] = cfg.normalizeKey(t.Key(row))
	}

	keep := make([]bool, len(t.Rows))
	switch cfg.Keep {
	case KeepLast:
		last := make(map[string]int, len(t.Rows))
		for i, key := range keys {
			last[key] = i
		}
		for i, key := range keys {
			keep[i] = last[key] == i
		}
	default:
		seen := make(map[string]struct{}, len(t.Rows))
		for i, key := range keys {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keep[i] = true
		}
	}

	out := core.NewTable(t.Columns...)
	for i, row := range t.Rows {
		if keep[i] {
			out.Rows = append(out.Rows, append([]interface{}(nil), row...))
		}
	}

	stats := Stats{
		DuplicatesRemoved: int64(t.NumRows() - out.NumRows()),
		RowsRemaining:     int64(out.NumRows()),
	}
	return out, stats, nil
}

// normalizeKey applies the configured key transforms before comparison.
func (cfg Config) normalizeKey(key string) string {
	if cfg.CaseInsensitive {
		key = strings.ToLower(key)
	}
	if cfg.NormalizeUnicode {
		key = norm.NFKC.String(key)
	}
	return key
}
