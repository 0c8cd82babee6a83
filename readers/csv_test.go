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
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func TestCSVReader_BasicRead(t *testing.T) {
	input := "name,age,active\nalice,30,true\nbob,25,false\n"
	r := NewCSVReader(reader(input))

	table, err := r.Read(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.Equal(t, []string{"name", "age", "active"}, table.Columns)
	require.Equal(t, 2, table.NumRows())
	assert.Equal(t, []interface{}{"alice", 30, true}, table.Rows[0])
	assert.Equal(t, []interface{}{"bob", 25, false}, table.Rows[1])
	assert.Equal(t, int64(2), r.Stats().RowsRead)
}

func TestCSVReader_NoTypeInference(t *testing.T) {
	input := "a,b\n1,true\n"
	r := NewCSVReader(reader(input), WithCSVInferTypes(false))

	table, err := r.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"1", "true"}, table.Rows[0])
}

func TestCSVReader_FloatInference(t *testing.T) {
	input := "v\n3.14\n"
	r := NewCSVReader(reader(input))

	table, err := r.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3.14, table.Rows[0][0])
}

func TestCSVReader_EmptyCellsBecomeNil(t *testing.T) {
	input := "a,b\n,x\ny,\n"
	r := NewCSVReader(reader(input))

	table, err := r.Read(context.Background())
	require.NoError(t, err)

	assert.Nil(t, table.Rows[0][0])
	assert.Nil(t, table.Rows[1][1])
	assert.Equal(t, int64(1), r.Stats().NullValueCounts["a"])
	assert.Equal(t, int64(1), r.Stats().NullValueCounts["b"])
}

func TestCSVReader_NoHeaders(t *testing.T) {
	input := "x,y\nz,w\n"
	r := NewCSVReader(reader(input), WithCSVHasHeaders(false), WithCSVInferTypes(false))

	table, err := r.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"col_0", "col_1"}, table.Columns)
	assert.Equal(t, 2, table.NumRows())
}

func TestCSVReader_SemicolonDelimiter(t *testing.T) {
	input := "a;b\n1;2\n"
	r := NewCSVReader(reader(input), WithCSVComma(';'))

	table, err := r.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, table.Columns)
	assert.Equal(t, []interface{}{1, 2}, table.Rows[0])
}

func TestCSVReader_DetectDelimiter(t *testing.T) {
	input := "a;b;c\nx;y;z\n"
	r := NewCSVReader(reader(input), WithCSVComma(0), WithCSVDetectDelimiter(true))

	table, err := r.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, table.Columns)
	assert.Equal(t, ';', r.Stats().Delimiter)
}

func TestCSVReader_EmptyInput(t *testing.T) {
	r := NewCSVReader(reader(""))

	table, err := r.Read(context.Background())
	require.NoError(t, err)

	assert.Zero(t, table.NumRows())
	assert.Zero(t, table.NumCols())
}

func TestCSVReader_RaggedRowsPadded(t *testing.T) {
	input := "a,b,c\n1,2\n"
	r := NewCSVReader(reader(input))

	table, err := r.Read(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, table.NumRows())
	assert.Equal(t, []interface{}{1, 2, nil}, table.Rows[0])
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		sample   string
		fallback rune
		want     rune
	}{
		{"semicolons", "a;b;c\n1;2;3", 0, ';'},
		{"commas", "a,b,c", 0, ','},
		{"tabs", "a\tb\tc", 0, '\t'},
		{"pipes", "a|b|c", 0, '|'},
		{"none falls back", "abc", ';', ';'},
		{"zero fallback is comma", "abc", 0, ','},
		{"only first line counts", "a\n1;2;3", 0, ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter([]byte(tt.sample), tt.fallback))
		})
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 42, parseValue("42"))
	assert.Equal(t, -3, parseValue("-3"))
	assert.Equal(t, 2.5, parseValue("2.5"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "hello", parseValue("hello"))
	assert.Equal(t, " spaced ", parseValue(" spaced "), "non-numeric values keep their whitespace")
}
