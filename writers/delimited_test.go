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
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/tableprep/core"
)

// Mock write closer for delimited testing
type mockWriteCloser struct {
	*strings.Builder
	closed    bool
	failWrite bool
}

func (m *mockWriteCloser) Write(p []byte) (int, error) {
	if m.failWrite {
		return 0, io.ErrUnexpectedEOF
	}
	return m.Builder.Write(p)
}

// WriteString routes io.WriteString through the mock's Write so failWrite is
// honored; otherwise the promoted strings.Builder.WriteString bypasses it.
func (m *mockWriteCloser) WriteString(s string) (int, error) {
	return m.Write([]byte(s))
}

func (m *mockWriteCloser) Close() error {
	m.closed = true
	return nil
}

func newMockWriteCloser() *mockWriteCloser {
	return &mockWriteCloser{Builder: &strings.Builder{}}
}

func newTable(t *testing.T, columns []string, rows ...[]interface{}) *core.Table {
	t.Helper()
	table := core.NewTable(columns...)
	for _, row := range rows {
		require.NoError(t, table.AppendRow(row...))
	}
	return table
}

func TestDelimitedWriter_BasicOutput(t *testing.T) {
	table := newTable(t, []string{"k", "v"},
		[]interface{}{"ab", "x"},
	)

	mock := newMockWriteCloser()
	writer := NewDelimitedWriter(mock)

	require.NoError(t, writer.Write(context.Background(), table))
	require.NoError(t, writer.Close())

	assert.Equal(t, "k;v\nab;x\n", mock.String())
	assert.True(t, mock.closed)
	assert.Equal(t, int64(1), writer.Stats().RowsWritten)
}

func TestDelimitedWriter_EmptyTable(t *testing.T) {
	table := newTable(t, []string{"k", "v"})

	mock := newMockWriteCloser()
	writer := NewDelimitedWriter(mock)

	require.NoError(t, writer.Write(context.Background(), table))

	assert.Equal(t, "k;v\n", mock.String(), "header only for an empty table")
}

func TestDelimitedWriter_NoHeader(t *testing.T) {
	table := newTable(t, []string{"k", "v"},
		[]interface{}{"a", "b"},
	)

	mock := newMockWriteCloser()
	writer := NewDelimitedWriter(mock, WithWriteHeader(false))

	require.NoError(t, writer.Write(context.Background(), table))

	assert.Equal(t, "a;b\n", mock.String())
}

func TestDelimitedWriter_CustomDelimiter(t *testing.T) {
	table := newTable(t, []string{"k", "v"},
		[]interface{}{"a", "b"},
	)

	mock := newMockWriteCloser()
	writer := NewDelimitedWriter(mock, WithDelimiter('\t'))

	require.NoError(t, writer.Write(context.Background(), table))

	assert.Equal(t, "k\tv\na\tb\n", mock.String())
}

func TestDelimitedWriter_CellConversion(t *testing.T) {
	table := newTable(t, []string{"s", "i", "f", "b", "n"},
		[]interface{}{"text", 42, 3.14, true, nil},
	)

	mock := newMockWriteCloser()
	writer := NewDelimitedWriter(mock)

	require.NoError(t, writer.Write(context.Background(), table))

	assert.Equal(t, "s;i;f;b;n\ntext;42;3.14;true;\n", mock.String())
}

func TestDelimitedWriter_QuotesEmbeddedDelimiter(t *testing.T) {
	table := newTable(t, []string{"k", "v"},
		[]interface{}{"a;b", "plain"},
	)

	mock := newMockWriteCloser()
	writer := NewDelimitedWriter(mock)

	require.NoError(t, writer.Write(context.Background(), table))

	assert.Equal(t, "k;v\n\"a;b\";plain\n", mock.String())
	assert.Equal(t, int64(1), writer.Stats().QuotedValues)
}

func TestDelimitedWriter_RawValuesRefusesAmbiguity(t *testing.T) {
	mock := newMockWriteCloser()
	writer := NewDelimitedWriter(mock, WithRawValues(true))

	ok := newTable(t, []string{"k"}, []interface{}{"plain"})
	require.NoError(t, writer.Write(context.Background(), ok))
	assert.Equal(t, "k\nplain\n", mock.String())

	bad := newTable(t, []string{"k"}, []interface{}{"a;b"})
	err := writer.Write(context.Background(), bad)
	require.Error(t, err)

	var writerErr *DelimitedWriterError
	require.ErrorAs(t, err, &writerErr)
	assert.Equal(t, "write_row", writerErr.Op)
}

func TestDelimitedWriter_RawValuesWriteFailure(t *testing.T) {
	mock := newMockWriteCloser()
	mock.failWrite = true
	writer := NewDelimitedWriter(mock, WithRawValues(true))

	table := newTable(t, []string{"k"}, []interface{}{"plain"})
	err := writer.Write(context.Background(), table)
	require.Error(t, err)

	var writerErr *DelimitedWriterError
	require.ErrorAs(t, err, &writerErr)
	assert.Equal(t, "write_row", writerErr.Op)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDelimitedWriter_CRLF(t *testing.T) {
	table := newTable(t, []string{"k"}, []interface{}{"a"})

	mock := newMockWriteCloser()
	writer := NewDelimitedWriter(mock, WithUseCRLF(true))

	require.NoError(t, writer.Write(context.Background(), table))

	assert.Equal(t, "k\r\na\r\n", mock.String())
}

func TestDelimitedWriter_CanceledContext(t *testing.T) {
	table := newTable(t, []string{"k"}, []interface{}{"a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	writer := NewDelimitedWriter(newMockWriteCloser())
	err := writer.Write(ctx, table)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
