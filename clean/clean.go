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

package clean

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/aaronlmathis/tableprep/core"
)

// Package clean provides the text-cleaning stage for TablePrep pipelines.
//
// Cleaning operates on string cells only; numeric, boolean, time, and nil cells
// pass through untouched. The transformation is pure: the input table is never
// modified and the output table has identical shape (same rows, same columns).
// Whitespace handling is Unicode-aware, matching unicode.IsSpace.

// Case selects an optional case transform applied after whitespace handling.
type Case int

const (
	// CaseNone leaves letter case untouched.
	CaseNone Case = iota
	// CaseLower lowercases cleaned string cells.
	CaseLower
	// CaseUpper uppercases cleaned string cells.
	CaseUpper
)

// Config controls the cleaning stage.
type Config struct {
	Strip              bool // Remove leading/trailing whitespace
	CollapseWhitespace bool // Collapse internal whitespace runs to a single ASCII space
	NormalizeUnicode   bool // Apply Unicode NFKC normalization after whitespace handling
	Case               Case // Optional case transform
	EmptyToNil         bool // Convert cells that clean down to "" into nil
}

// DefaultConfig returns the standard cleaning configuration: trim and collapse
// whitespace, leave Unicode form, case, and empty cells alone.
func DefaultConfig() Config {
	return Config{
		Strip:              true,
		CollapseWhitespace: true,
	}
}

// Stats instruments a cleaning run.
type Stats struct {
	WhitespaceRemoved          int64            // Whitespace code points removed across all cells
	PerColumnWhitespaceRemoved map[string]int64 // Whitespace code points removed per column
	CellsModified              int64            // Cells whose value changed
	EmptiesNulled              int64            // Cells converted from "" to nil
	ColumnsProcessed           []string         // Columns the cleaner visited
}

// Apply cleans every column of the table with the given configuration.
func Apply(t *core.Table, cfg Config) (*core.Table, Stats) {
	return Columns(t, nil, cfg)
}

// Columns cleans the named columns of the table. A nil or empty name list means
// all columns. Names not present in the table are skipped silently; the caller
// decides whether that deserves a warning.
func Columns(t *core.Table, names []string, cfg Config) (*core.Table, Stats) {
	if len(names) == 0 {
		names = t.Columns
	}

	stats := Stats{
		PerColumnWhitespaceRemoved: make(map[string]int64),
		ColumnsProcessed:           make([]string, 0, len(names)),
	}

	indices := make([]int, 0, len(names))
	for _, name := range names {
		if idx := t.ColumnIndex(name); idx >= 0 {
			indices = append(indices, idx)
			stats.ColumnsProcessed = append(stats.ColumnsProcessed, name)
		}
	}

	out := t.Clone()
	for _, idx := range indices {
		col := t.Columns[idx]
		for _, row := range out.Rows {
			str, ok := row[idx].(string)
			if !ok {
				continue
			}

			cleaned := normalizeSpace(str, cfg.Strip, cfg.CollapseWhitespace)
			removed := countSpaces(str) - countSpaces(cleaned)
			if removed > 0 {
				stats.PerColumnWhitespaceRemoved[col] += int64(removed)
				stats.WhitespaceRemoved += int64(removed)
			}

			if cfg.NormalizeUnicode {
				cleaned = norm.NFKC.String(cleaned)
			}
			switch cfg.Case {
			case CaseLower:
				cleaned = strings.ToLower(cleaned)
			case CaseUpper:
				cleaned = strings.ToUpper(cleaned)
			}

			if cfg.EmptyToNil && cleaned == "" {
				stats.EmptiesNulled++
				stats.CellsModified++
				row[idx] = nil
				continue
			}
			if cleaned != str {
				stats.CellsModified++
			}
			row[idx] = cleaned
		}
	}

	return out, stats
}

// normalizeSpace applies the whitespace-focused transforms. Collapsing replaces
// each run of Unicode whitespace with one ASCII space; stripping removes leading
// and trailing whitespace entirely.
func normalizeSpace(s string, strip, collapse bool) string {
	if collapse {
		collapsed := strings.Join(strings.Fields(s), " ")
		if strip {
			return collapsed
		}
		if collapsed == "" {
			if s != "" {
				return " "
			}
			return s
		}
		if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
			collapsed = " " + collapsed
		}
		if r, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(r) {
			collapsed += " "
		}
		return collapsed
	}
	if strip {
		return strings.TrimFunc(s, unicode.IsSpace)
	}
	return s
}

// countSpaces counts Unicode whitespace code points in s.
func countSpaces(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
