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

	"github.com/aaronlmathis/tableprep/core"
)

// Package tableprep defines the core interfaces and the pipeline for the
// TablePrep library.
//
// TablePrep is an interface-driven data preparation library for Go: tabular
// data is imported into an in-memory table, run through a fixed cleaning →
// filtering → deduplication pipeline, and exported as delimited text or one of
// the other supported sink formats.
//
// This file contains the primary interfaces for table sources, sinks, stages,
// and validation.

// TableSource defines the interface for table import.
// Implementations load a whole table from a source (e.g., CSV, Excel, PostgreSQL, S3).
type TableSource interface {
	// Read loads the source into an in-memory table.
	Read(ctx context.Context) (*core.Table, error)
	// Close releases any resources held by the table source.
	Close() error
}

// TableSink defines the interface for table export.
// Implementations write a whole table to a destination (e.g., delimited text, Excel, Parquet).
type TableSink interface {
	// Write outputs the table to the sink.
	Write(ctx context.Context, table *core.Table) error
	// Close releases any resources held by the table sink.
	Close() error
}

// Stage defines the interface for a table transformation step.
// Stages are pure: they return a fresh table and never mutate their input.
type Stage interface {
	// Apply transforms the table and returns the result.
	Apply(ctx context.Context, table *core.Table) (*core.Table, error)
}

// StageFunc is a function adapter for the Stage interface.
// Allows ordinary functions to be used as Stages.
type StageFunc func(ctx context.Context, table *core.Table) (*core.Table, error)

// Apply implements the Stage interface for StageFunc.
func (f StageFunc) Apply(ctx context.Context, table *core.Table) (*core.Table, error) {
	return f(ctx, table)
}

// Validator defines the interface for pre-pipeline table validation.
// A validation failure aborts the run before any stage executes.
type Validator interface {
	// Validate inspects the table and returns an error if it is unfit for processing.
	Validate(ctx context.Context, table *core.Table) error
}
