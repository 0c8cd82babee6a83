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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aaronlmathis/tableprep/readers"
)

func TestExcelWriter_BasicOutput(t *testing.T) {
	table := newTable(t, []string{"name", "city"},
		[]interface{}{"alice", "berlin"},
		[]interface{}{"bob", "rome"},
	)

	var buf bytes.Buffer
	writer := NewExcelWriterTo(&buf)

	require.NoError(t, writer.Write(context.Background(), table))
	require.NoError(t, writer.Close())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "city"}, rows[0])
	assert.Equal(t, []string{"alice", "berlin"}, rows[1])
	assert.Equal(t, []string{"bob", "rome"}, rows[2])
}

func TestExcelWriter_SheetAndNoHeader(t *testing.T) {
	table := newTable(t, []string{"k"},
		[]interface{}{"a"},
	)

	var buf bytes.Buffer
	writer := NewExcelWriterTo(&buf,
		WithExcelWriterSheet("Data"),
		WithExcelWriteHeader(false),
	)
	require.NoError(t, writer.Write(context.Background(), table))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Data"}, f.GetSheetList())

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a"}, rows[0])
}

func TestExcelWriter_RoundTripThroughReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	table := newTable(t, []string{"id", "name", "score"},
		[]interface{}{1, "alice", 95.5},
		[]interface{}{2, "bob", nil},
	)

	writer := NewExcelWriter(path)
	require.NoError(t, writer.Write(context.Background(), table))
	require.NoError(t, writer.Close())

	reader, err := readers.NewExcelReader(path)
	require.NoError(t, err)
	defer reader.Close()

	got, err := reader.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "score"}, got.Columns)
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, []interface{}{1, "alice", 95.5}, got.Rows[0])
	assert.Equal(t, []interface{}{2, "bob", nil}, got.Rows[1])
}

func TestExcelWriter_SaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.xlsx")

	writer := NewExcelWriter(path)
	require.NoError(t, writer.Write(context.Background(), newTable(t, []string{"k"}, []interface{}{"a"})))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExcelWriter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	writer := NewExcelWriterTo(&buf)
	err := writer.Write(ctx, newTable(t, []string{"k"}, []interface{}{"a"}))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
