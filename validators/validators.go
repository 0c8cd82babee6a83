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

// validators.go - Table quality checks run before the preparation pipeline
package validators

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aaronlmathis/tableprep/core"
)

// TableValidator performs quality checks on an imported table. It satisfies
// the pipeline's Validator interface and is meant to run before any stage
// mutates the data.
type TableValidator struct {
	MinRows          int                               // Minimum number of rows required
	MaxRows          int                               // Maximum number of rows allowed (0 = unlimited)
	MaxNullRate      float64                           // Maximum allowed null rate per column (0.0-1.0)
	RequiredColumns  []string                          // Column names that must be present
	ColumnPatterns   map[string]*regexp.Regexp         // Per-column regex rules for string cells
	CustomValidators []func(*core.Table) (bool, error) // Custom validation functions
}

// TableValidatorOption is a functional option for configuring TableValidator.
type TableValidatorOption func(*TableValidator)

// WithMaxRows sets the maximum row count.
func WithMaxRows(max int) TableValidatorOption {
	return func(tv *TableValidator) {
		tv.MaxRows = max
	}
}

// WithMaxNullRate sets the maximum fraction of nil cells allowed per column.
func WithMaxNullRate(rate float64) TableValidatorOption {
	return func(tv *TableValidator) {
		tv.MaxNullRate = rate
	}
}

// WithColumnPattern adds a regex rule for string cells of a column.
func WithColumnPattern(column string, pattern *regexp.Regexp) TableValidatorOption {
	return func(tv *TableValidator) {
		if tv.ColumnPatterns == nil {
			tv.ColumnPatterns = make(map[string]*regexp.Regexp)
		}
		tv.ColumnPatterns[column] = pattern
	}
}

// WithCustomValidator adds a custom validation function.
func WithCustomValidator(validator func(*core.Table) (bool, error)) TableValidatorOption {
	return func(tv *TableValidator) {
		tv.CustomValidators = append(tv.CustomValidators, validator)
	}
}

// NewTableValidator creates a validator with the given floor and required columns.
func NewTableValidator(minRows int, requiredColumns []string, options ...TableValidatorOption) *TableValidator {
	tv := &TableValidator{
		MinRows:         minRows,
		RequiredColumns: requiredColumns,
		ColumnPatterns:  make(map[string]*regexp.Regexp),
	}
	for _, option := range options {
		option(tv)
	}
	return tv
}

// Validate runs all configured checks against the table.
func (tv *TableValidator) Validate(ctx context.Context, table *core.Table) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	rowCount := table.NumRows()
	if rowCount < tv.MinRows {
		return fmt.Errorf("insufficient rows: got %d, need at least %d", rowCount, tv.MinRows)
	}
	if tv.MaxRows > 0 && rowCount > tv.MaxRows {
		return fmt.Errorf("too many rows: got %d, maximum allowed %d", rowCount, tv.MaxRows)
	}

	if err := tv.validateColumnPresence(table); err != nil {
		return err
	}

	if rowCount == 0 {
		return nil
	}

	if err := tv.validateNullRates(table); err != nil {
		return err
	}
	if err := tv.validatePatterns(table); err != nil {
		return err
	}

	for i, validator := range tv.CustomValidators {
		valid, err := validator(table)
		if err != nil {
			return fmt.Errorf("custom validator %d failed: %w", i, err)
		}
		if !valid {
			return fmt.Errorf("custom validator %d failed validation", i)
		}
	}

	return nil
}

// validateColumnPresence checks that every required column exists.
func (tv *TableValidator) validateColumnPresence(table *core.Table) error {
	for _, column := range tv.RequiredColumns {
		if table.ColumnIndex(column) < 0 {
			return fmt.Errorf("missing required column: %s", column)
		}
	}
	return nil
}

// validateNullRates checks nil cell rates per column.
func (tv *TableValidator) validateNullRates(table *core.Table) error {
	if tv.MaxNullRate <= 0 {
		return nil
	}

	for i, column := range table.Columns {
		nullCount := 0
		for _, row := range table.Rows {
			if row[i] == nil {
				nullCount++
			}
		}
		nullRate := float64(nullCount) / float64(table.NumRows())
		if nullRate > tv.MaxNullRate {
			return fmt.Errorf("column %s has null rate %.2f, exceeds maximum %.2f",
				column, nullRate, tv.MaxNullRate)
		}
	}

	return nil
}

// validatePatterns applies per-column regex rules to string cells. Non-string
// and nil cells are skipped.
func (tv *TableValidator) validatePatterns(table *core.Table) error {
	if len(tv.ColumnPatterns) == 0 {
		return nil
	}

	for column, pattern := range tv.ColumnPatterns {
		idx := table.ColumnIndex(column)
		if idx < 0 {
			continue // Presence is handled by required column validation
		}
		for rowIdx, row := range table.Rows {
			str, ok := row[idx].(string)
			if !ok {
				continue
			}
			if !pattern.MatchString(str) {
				return fmt.Errorf("row %d column %s value %q does not match pattern",
					rowIdx, column, str)
			}
		}
	}

	return nil
}

// supportedImportExts lists the file suffixes the readers can open.
var supportedImportExts = map[string]bool{
	".csv":    true,
	".txt":    true,
	".tsv":    true,
	".xlsx":   true,
	".xlsm":   true,
	".jsonl":  true,
	".ndjson": true,
}

// ValidateFilename checks that a path names an importable file. An empty path
// is invalid input; a path with a missing or unsupported extension is an
// import failure, the same classification readers.Open would report.
func ValidateFilename(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path is empty", core.ErrInvalidInput)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return fmt.Errorf("%w: path %q has no file extension", core.ErrImportFailure, path)
	}
	if !supportedImportExts[ext] {
		return fmt.Errorf("%w: unsupported file extension %q", core.ErrImportFailure, ext)
	}
	return nil
}

// ValidateMinLength checks a filter length threshold before it reaches the
// pipeline.
func ValidateMinLength(minLength int) error {
	if minLength < 0 {
		return fmt.Errorf("%w: minimum length must be non-negative, got %d",
			core.ErrInvalidConfiguration, minLength)
	}
	return nil
}

// ValidateColumnSelection checks that every requested column exists in the
// table. An empty selection is valid and means all columns.
func ValidateColumnSelection(table *core.Table, columns []string) error {
	for _, column := range columns {
		if table.ColumnIndex(column) < 0 {
			return fmt.Errorf("%w: unknown column %q", core.ErrInvalidConfiguration, column)
		}
	}
	return nil
}
