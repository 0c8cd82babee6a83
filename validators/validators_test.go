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

package validators

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/tableprep/core"
)

func newTable(t *testing.T, rows ...[]interface{}) *core.Table {
	t.Helper()
	table := core.NewTable("name", "email")
	for _, row := range rows {
		require.NoError(t, table.AppendRow(row...))
	}
	return table
}

func TestTableValidator_MinRows(t *testing.T) {
	table := newTable(t, []interface{}{"alice", "a@example.com"})
	v := NewTableValidator(2, nil)

	err := v.Validate(context.Background(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient rows")

	require.NoError(t, table.AppendRow("bob", "b@example.com"))
	assert.NoError(t, v.Validate(context.Background(), table))
}

func TestTableValidator_MaxRows(t *testing.T) {
	table := newTable(t,
		[]interface{}{"alice", "a@example.com"},
		[]interface{}{"bob", "b@example.com"},
	)
	v := NewTableValidator(0, nil, WithMaxRows(1))

	err := v.Validate(context.Background(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many rows")
}

func TestTableValidator_RequiredColumns(t *testing.T) {
	table := newTable(t, []interface{}{"alice", "a@example.com"})

	v := NewTableValidator(0, []string{"name", "email"})
	assert.NoError(t, v.Validate(context.Background(), table))

	v = NewTableValidator(0, []string{"phone"})
	err := v.Validate(context.Background(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestTableValidator_NullRate(t *testing.T) {
	table := newTable(t,
		[]interface{}{"alice", nil},
		[]interface{}{"bob", nil},
		[]interface{}{"carol", "c@example.com"},
	)

	v := NewTableValidator(0, nil, WithMaxNullRate(0.5))
	err := v.Validate(context.Background(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null rate")

	v = NewTableValidator(0, nil, WithMaxNullRate(0.7))
	assert.NoError(t, v.Validate(context.Background(), table))
}

func TestTableValidator_ColumnPattern(t *testing.T) {
	table := newTable(t,
		[]interface{}{"alice", "a@example.com"},
		[]interface{}{"bob", "not-an-email"},
	)

	v := NewTableValidator(0, nil,
		WithColumnPattern("email", regexp.MustCompile(`@`)))

	err := v.Validate(context.Background(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match pattern")
}

func TestTableValidator_PatternSkipsNonStrings(t *testing.T) {
	table := newTable(t,
		[]interface{}{"alice", nil},
		[]interface{}{"bob", 42},
	)

	v := NewTableValidator(0, nil,
		WithColumnPattern("email", regexp.MustCompile(`@`)))

	assert.NoError(t, v.Validate(context.Background(), table))
}

func TestTableValidator_CustomValidator(t *testing.T) {
	table := newTable(t, []interface{}{"alice", "a@example.com"})

	v := NewTableValidator(0, nil,
		WithCustomValidator(func(tbl *core.Table) (bool, error) {
			return tbl.NumCols() > 5, nil
		}))

	err := v.Validate(context.Background(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom validator")
}

func TestTableValidator_EmptyTablePassesContentChecks(t *testing.T) {
	table := core.NewTable("name", "email")

	v := NewTableValidator(0, []string{"name"},
		WithMaxNullRate(0.1),
		WithColumnPattern("email", regexp.MustCompile(`@`)))

	assert.NoError(t, v.Validate(context.Background(), table))
}

func TestValidateFilename(t *testing.T) {
	assert.NoError(t, ValidateFilename("data.csv"))
	assert.NoError(t, ValidateFilename("/tmp/export.xlsx"))
	assert.NoError(t, ValidateFilename("records.jsonl"))

	for _, path := range []string{"", "   "} {
		err := ValidateFilename(path)
		require.Error(t, err, "path %q", path)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	}

	for _, path := range []string{"noext", "legacy.xls", "image.png"} {
		err := ValidateFilename(path)
		require.Error(t, err, "path %q", path)
		assert.ErrorIs(t, err, core.ErrImportFailure)
	}
}

func TestValidateMinLength(t *testing.T) {
	assert.NoError(t, ValidateMinLength(0))
	assert.NoError(t, ValidateMinLength(10))

	err := ValidateMinLength(-1)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestValidateColumnSelection(t *testing.T) {
	table := newTable(t)

	assert.NoError(t, ValidateColumnSelection(table, nil))
	assert.NoError(t, ValidateColumnSelection(table, []string{"email", "name"}))

	err := ValidateColumnSelection(table, []string{"name", "phone"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}
