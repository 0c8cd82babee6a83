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
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aaronlmathis/tableprep/core"
)

// ParquetWriterError provides structured error information for Parquet writer operations.
type ParquetWriterError struct {
	Op  string // Operation that failed (e.g., "schema", "append_value", "write", "close")
	Err error  // Underlying error
}

func (e *ParquetWriterError) Error() string {
	return fmt.Sprintf("parquet writer %s: %v", e.Op, e.Err)
}

func (e *ParquetWriterError) Unwrap() error {
	return e.Err
}

// ParquetWriterStats holds Parquet write statistics.
type ParquetWriterStats struct {
	RowsWritten     int64
	WriteDuration   time.Duration
	NullValueCounts map[string]int64
}

// ParquetWriterOptions configures the Parquet output.
type ParquetWriterOptions struct {
	Compression  compress.Compression // Column compression; default Snappy
	RowGroupSize int64                // Maximum rows per row group (0 = library default)
}

// WriterOptionParquet is a functional option.
type WriterOptionParquet func(*ParquetWriterOptions)

func WithParquetCompression(c compress.Compression) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) { opts.Compression = c }
}

func WithParquetRowGroupSize(size int64) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) { opts.RowGroupSize = size }
}

// ParquetWriter implements TableSink for Parquet file output. The Arrow schema
// is inferred from the table: each column takes the type of its first non-nil
// cell, all columns nullable; a column with no non-nil cells is string.
type ParquetWriter struct {
	path      string
	opts      ParquetWriterOptions
	allocator memory.Allocator
	stats     ParquetWriterStats
}

// NewParquetWriter creates a Parquet writer that saves to path.
func NewParquetWriter(path string, options ...WriterOptionParquet) *ParquetWriter {
	opts := ParquetWriterOptions{
		Compression: compress.Codecs.Snappy,
	}
	for _, option := range options {
		option(&opts)
	}
	return &ParquetWriter{
		path:      path,
		opts:      opts,
		allocator: memory.NewGoAllocator(),
		stats:     ParquetWriterStats{NullValueCounts: make(map[string]int64)},
	}
}

// Write implements the TableSink interface. The whole table is written as a
// single Arrow record.
func (p *ParquetWriter) Write(ctx context.Context, table *core.Table) error {
	start := time.Now()

	select {
	case <-ctx.Done():
		return &ParquetWriterError{Op: "write", Err: ctx.Err()}
	default:
	}

	schema, err := p.buildSchema(table)
	if err != nil {
		return err
	}

	file, err := os.Create(p.path)
	if err != nil {
		return &ParquetWriterError{Op: "create_file", Err: err}
	}

	props := parquet.NewWriterProperties(parquet.WithCompression(p.opts.Compression))
	if p.opts.RowGroupSize > 0 {
		props = parquet.NewWriterProperties(
			parquet.WithCompression(p.opts.Compression),
			parquet.WithMaxRowGroupLength(p.opts.RowGroupSize),
		)
	}

	writer, err := pqarrow.NewFileWriter(schema, file, props, pqarrow.DefaultWriterProps())
	if err != nil {
		file.Close()
		return &ParquetWriterError{Op: "create_writer", Err: err}
	}

	record, err := p.buildRecord(schema, table)
	if err != nil {
		writer.Close()
		return err
	}
	defer record.Release()

	if err := writer.Write(record); err != nil {
		writer.Close()
		return &ParquetWriterError{Op: "write_record", Err: err}
	}
	if err := writer.Close(); err != nil {
		return &ParquetWriterError{Op: "close", Err: err}
	}

	p.stats.RowsWritten += int64(table.NumRows())
	p.stats.WriteDuration += time.Since(start)
	return nil
}

// buildSchema infers an Arrow schema from the table's cells.
func (p *ParquetWriter) buildSchema(table *core.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(table.Columns))
	for i, name := range table.Columns {
		dataType := arrow.DataType(arrow.BinaryTypes.String)
		for _, row := range table.Rows {
			if row[i] == nil {
				continue
			}
			inferred, err := inferArrowType(row[i])
			if err != nil {
				return nil, &ParquetWriterError{
					Op:  "schema",
					Err: fmt.Errorf("failed to infer arrow type for column %s: %w", name, err),
				}
			}
			dataType = inferred
			break
		}
		fields[i] = arrow.Field{Name: name, Type: dataType, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

// buildRecord converts the table into one Arrow record matching the schema.
func (p *ParquetWriter) buildRecord(schema *arrow.Schema, table *core.Table) (arrow.Record, error) {
	builders := make([]array.Builder, len(table.Columns))
	for i, field := range schema.Fields() {
		builders[i] = array.NewBuilder(p.allocator, field.Type)
	}
	defer func() {
		for _, b := range builders {
			b.Release()
		}
	}()

	for _, row := range table.Rows {
		for i, cell := range row {
			if cell == nil {
				builders[i].AppendNull()
				p.stats.NullValueCounts[table.Columns[i]]++
				continue
			}
			if err := appendValueToBuilder(builders[i], cell); err != nil {
				return nil, &ParquetWriterError{
					Op:  "append_value",
					Err: fmt.Errorf("column %s: %w", table.Columns[i], err),
				}
			}
		}
	}

	arrays := make([]arrow.Array, len(builders))
	for i, builder := range builders {
		arrays[i] = builder.NewArray()
		defer arrays[i].Release()
	}

	return array.NewRecord(schema, arrays, int64(table.NumRows())), nil
}

// inferArrowType maps a table cell onto an Arrow data type.
func inferArrowType(value interface{}) (arrow.DataType, error) {
	switch value.(type) {
	case bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case int, int64:
		return arrow.PrimitiveTypes.Int64, nil
	case int32:
		return arrow.PrimitiveTypes.Int32, nil
	case float32:
		return arrow.PrimitiveTypes.Float32, nil
	case float64:
		return arrow.PrimitiveTypes.Float64, nil
	case string:
		return arrow.BinaryTypes.String, nil
	case time.Time:
		return arrow.FixedWidthTypes.Timestamp_us, nil
	default:
		return nil, fmt.Errorf("unsupported cell type %T", value)
	}
}

// appendValueToBuilder appends a cell to the matching Arrow array builder.
// A cell whose type does not match the builder falls back to null.
func appendValueToBuilder(builder array.Builder, value interface{}) error {
	switch b := builder.(type) {
	case *array.BooleanBuilder:
		if v, ok := value.(bool); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	case *array.Int32Builder:
		if v, ok := value.(int32); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	case *array.Int64Builder:
		switch v := value.(type) {
		case int:
			b.Append(int64(v))
		case int64:
			b.Append(v)
		default:
			b.AppendNull()
		}
	case *array.Float32Builder:
		if v, ok := value.(float32); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	case *array.Float64Builder:
		if v, ok := value.(float64); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}
	case *array.StringBuilder:
		b.Append(core.CellString(value))
	case *array.TimestampBuilder:
		if v, ok := value.(time.Time); ok {
			b.Append(arrow.Timestamp(v.UnixMicro()))
		} else {
			b.AppendNull()
		}
	default:
		return fmt.Errorf("unsupported builder type %T", builder)
	}
	return nil
}

// Close implements the TableSink interface.
func (p *ParquetWriter) Close() error {
	return nil
}

// Stats returns write statistics.
func (p *ParquetWriter) Stats() ParquetWriterStats {
	return p.stats
}
