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

package core

import (
	"errors"
	"fmt"
)

// Package core defines the error taxonomy for the TablePrep library.
//
// This file contains sentinel error kinds and the stage error wrapper. Pipeline
// callers classify failures with errors.Is against the sentinels regardless of
// how many layers wrapped them.

var (
	// ErrInvalidInput marks a malformed source table, e.g. a table with zero
	// columns handed to a stage that requires a first column.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration marks bad run parameters, e.g. a negative minimum
	// length or a selected column name not present in the table.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrImportFailure marks a boundary failure while loading a source file:
	// unreadable or corrupt data, or an unsupported extension. The pipeline is
	// never invoked after an import failure.
	ErrImportFailure = errors.New("import failure")

	// ErrExportFailure marks a boundary failure while writing the result, e.g.
	// an unwritable destination. The prepared table stays in memory so the
	// caller may retry the export without re-running the pipeline.
	ErrExportFailure = errors.New("export failure")
)

// StageError wraps an error from a named pipeline stage. The first failing
// stage's error propagates unchanged to the caller; no stage is retried and no
// partial output is emitted.
type StageError struct {
	Stage string // Stage that failed (e.g., "clean", "filter", "dedup", "project")
	Err   error  // Underlying error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
