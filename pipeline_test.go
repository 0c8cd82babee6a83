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

package tableprep

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/tableprep/core"
	"github.com/aaronlmathis/tableprep/dedup"
)

func newTable(t *testing.T, columns []string, rows ...[]interface{}) *core.Table {
	t.Helper()
	table := core.NewTable(columns...)
	for _, row := range rows {
		require.NoError(t, table.AppendRow(row...))
	}
	return table
}

// Mock source and sink for Execute testing
type mockSource struct {
	table   *core.Table
	readErr error
	closed  bool
}

func (m *mockSource) Read(ctx context.Context) (*core.Table, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.table, nil
}

func (m *mockSource) Close() error {
	m.closed = true
	return nil
}

type mockSink struct {
	table    *core.Table
	writeErr error
	closed   bool
}

func (m *mockSink) Write(ctx context.Context, table *core.Table) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.table = table
	return nil
}

func (m *mockSink) Close() error {
	m.closed = true
	return nil
}

func TestPipeline_Run_FullFlow(t *testing.T) {
	// Raw customer data with padding, a too-short key, and a duplicate.
	table := newTable(t, []string{"name", "city"},
		[]interface{}{"  alice  ", "berlin"},
		[]interface{}{"x", "madrid"},
		[]interface{}{"alice", "paris"},
		[]interface{}{"bob", "rome"},
	)

	pipeline := NewPipeline().WithMinLength(2).Build()
	result, err := pipeline.Run(context.Background(), table)
	require.NoError(t, err)

	// "x" fails the length check, the cleaned "  alice  " collides with "alice".
	require.Equal(t, 2, result.Table.NumRows())
	assert.Equal(t, "alice", result.Table.Rows[0][0])
	assert.Equal(t, "berlin", result.Table.Rows[0][1])
	assert.Equal(t, "bob", result.Table.Rows[1][0])

	assert.Equal(t, 4, result.Metrics.InitialRows)
	assert.Equal(t, 2, result.Metrics.FinalRows)
	assert.Equal(t, 2, result.Metrics.TotalRemoved)
	assert.InDelta(t, 50.0, result.Metrics.ReductionPercent, 0.01)
	assert.Equal(t, int64(1), result.Metrics.Filtering.RowsRemoved)
	assert.Equal(t, int64(1), result.Metrics.Deduplication.DuplicatesRemoved)
}

func TestPipeline_Run_EmptyTable(t *testing.T) {
	table := core.NewTable("name", "city")

	pipeline := NewPipeline().WithMinLength(5).Build()
	result, err := pipeline.Run(context.Background(), table)
	require.NoError(t, err)

	assert.Zero(t, result.Table.NumRows())
	assert.Equal(t, []string{"name", "city"}, result.Table.Columns)
	assert.Zero(t, result.Metrics.TotalRemoved)
	assert.Zero(t, result.Metrics.ReductionPercent)
}

func TestPipeline_Run_NegativeMinLength(t *testing.T) {
	table := newTable(t, []string{"name"}, []interface{}{"alice"})

	pipeline := NewPipeline().WithMinLength(-1).Build()
	_, err := pipeline.Run(context.Background(), table)

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	var stageErr *core.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "filter", stageErr.Stage)
}

func TestPipeline_Run_UnknownProjectionColumn(t *testing.T) {
	table := newTable(t, []string{"name"}, []interface{}{"alice"})

	pipeline := NewPipeline().SelectColumns("phone").Build()
	_, err := pipeline.Run(context.Background(), table)

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	var stageErr *core.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "project", stageErr.Stage)
}

func TestPipeline_Run_RowCountNeverGrows(t *testing.T) {
	table := newTable(t, []string{"k", "v"},
		[]interface{}{"aa", 1},
		[]interface{}{"aa", 2},
		[]interface{}{"b", 3},
		[]interface{}{nil, 4},
		[]interface{}{"  cc  ", 5},
	)

	for _, minLength := range []int{0, 1, 2, 10} {
		pipeline := NewPipeline().WithMinLength(minLength).Build()
		result, err := pipeline.Run(context.Background(), table)
		require.NoError(t, err)
		assert.LessOrEqual(t, result.Table.NumRows(), table.NumRows(),
			"minLength=%d", minLength)
	}
}

func TestPipeline_Run_ColumnsPreserved(t *testing.T) {
	table := newTable(t, []string{"a", "b", "c"},
		[]interface{}{"key", 1, true},
		[]interface{}{"key", 2, false},
	)

	pipeline := NewPipeline().Build()
	result, err := pipeline.Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, result.Table.Columns)
	// Surviving rows keep every cell, not just the key.
	assert.Equal(t, []interface{}{"key", 1, true}, result.Table.Rows[0])
}

func TestPipeline_Run_InputNotMutated(t *testing.T) {
	table := newTable(t, []string{"name"}, []interface{}{"  alice  "})

	pipeline := NewPipeline().Build()
	_, err := pipeline.Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, "  alice  ", table.Rows[0][0])
}

func TestPipeline_Run_SelectColumnsReorders(t *testing.T) {
	table := newTable(t, []string{"id", "name", "email"},
		[]interface{}{"1", "alice", "a@example.com"},
	)

	pipeline := NewPipeline().SelectColumns("email", "name").Build()
	result, err := pipeline.Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, []string{"email", "name"}, result.Table.Columns)
	assert.Equal(t, []interface{}{"a@example.com", "alice"}, result.Table.Rows[0])
}

func TestPipeline_Run_KeepLast(t *testing.T) {
	table := newTable(t, []string{"k", "v"},
		[]interface{}{"dup", "old"},
		[]interface{}{"dup", "new"},
	)

	cfg := dedup.DefaultConfig()
	cfg.Keep = dedup.KeepLast
	pipeline := NewPipeline().WithDeduplication(cfg).Build()

	result, err := pipeline.Run(context.Background(), table)
	require.NoError(t, err)

	require.Equal(t, 1, result.Table.NumRows())
	assert.Equal(t, "new", result.Table.Rows[0][1])
}

func TestPipeline_Run_CanceledContext(t *testing.T) {
	table := newTable(t, []string{"k"}, []interface{}{"a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipeline := NewPipeline().Build()
	_, err := pipeline.Run(ctx, table)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Run_CustomStage(t *testing.T) {
	table := newTable(t, []string{"name", "city"},
		[]interface{}{"alice", "berlin"},
		[]interface{}{"alice", "paris"},
	)

	// The stage sees the deduplicated table before projection drops "city".
	tagCity := StageFunc(func(ctx context.Context, in *core.Table) (*core.Table, error) {
		out := in.Clone()
		idx := out.ColumnIndex("city")
		for _, row := range out.Rows {
			if s, ok := row[idx].(string); ok {
				row[idx] = s + "!"
			}
		}
		return out, nil
	})

	pipeline := NewPipeline().WithStage(tagCity).SelectColumns("city").Build()
	result, err := pipeline.Run(context.Background(), table)
	require.NoError(t, err)

	require.Equal(t, 1, result.Table.NumRows())
	assert.Equal(t, []string{"city"}, result.Table.Columns)
	assert.Equal(t, "berlin!", result.Table.Rows[0][0])
}

func TestPipeline_Run_CustomStageFailure(t *testing.T) {
	table := newTable(t, []string{"k"}, []interface{}{"a"})

	boom := StageFunc(func(ctx context.Context, in *core.Table) (*core.Table, error) {
		return nil, errors.New("stage blew up")
	})

	pipeline := NewPipeline().WithStage(boom).Build()
	_, err := pipeline.Run(context.Background(), table)

	require.Error(t, err)
	var stageErr *core.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "custom[0]", stageErr.Stage)
}

type rejectAllValidator struct{}

func (rejectAllValidator) Validate(ctx context.Context, table *core.Table) error {
	return errors.New("nothing is ever good enough")
}

func TestPipeline_Run_ValidatorFailureAbortsRun(t *testing.T) {
	table := newTable(t, []string{"k"}, []interface{}{"a"})

	pipeline := NewPipeline().WithValidator(rejectAllValidator{}).Build()
	_, err := pipeline.Run(context.Background(), table)

	require.Error(t, err)
	var stageErr *core.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "validate", stageErr.Stage)
}

func TestPipelineBuilder_BuildCopiesConfig(t *testing.T) {
	builder := NewPipeline().SelectColumns("a")
	pipeline := builder.Build()

	builder.SelectColumns("b", "c")

	assert.Equal(t, []string{"a"}, pipeline.Config().Columns)
}

func TestPipeline_Execute(t *testing.T) {
	source := &mockSource{table: newTable(t, []string{"k", "v"},
		[]interface{}{" a1 ", 1},
		[]interface{}{"a1", 2},
	)}
	sink := &mockSink{}

	pipeline := NewPipeline().Build()
	result, err := pipeline.Execute(context.Background(), source, sink)
	require.NoError(t, err)

	require.NotNil(t, sink.table)
	assert.Equal(t, 1, sink.table.NumRows())
	assert.Equal(t, result.Table, sink.table)
	assert.True(t, source.closed, "source must be closed")
	assert.True(t, sink.closed, "sink must be closed")
}

func TestPipeline_Execute_ImportFailure(t *testing.T) {
	source := &mockSource{readErr: io.ErrUnexpectedEOF}
	sink := &mockSink{}

	pipeline := NewPipeline().Build()
	result, err := pipeline.Execute(context.Background(), source, sink)

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrImportFailure)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Nil(t, result)
	assert.Nil(t, sink.table, "sink must not be written on import failure")
}

func TestPipeline_Execute_ExportFailureKeepsResult(t *testing.T) {
	source := &mockSource{table: newTable(t, []string{"k"}, []interface{}{"a"})}
	sink := &mockSink{writeErr: io.ErrShortWrite}

	pipeline := NewPipeline().Build()
	result, err := pipeline.Execute(context.Background(), source, sink)

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExportFailure)

	// The prepared table survives the failed export so the caller can retry
	// without re-running the pipeline.
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Table.NumRows())

	retry := &mockSink{}
	require.NoError(t, retry.Write(context.Background(), result.Table))
	assert.Equal(t, result.Table, retry.table)
}
