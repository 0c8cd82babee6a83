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

package session

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aaronlmathis/tableprep"
	"github.com/aaronlmathis/tableprep/config"
	"github.com/aaronlmathis/tableprep/core"
	"github.com/aaronlmathis/tableprep/readers"
	"github.com/aaronlmathis/tableprep/types"
	"github.com/aaronlmathis/tableprep/validators"
)

// Package session holds the state of one interactive preparation run: the
// loaded table, the working configuration, and the last pipeline result.
// A Session is not safe for concurrent use.

// FilePicker supplies an input path, typically from a UI dialog or prompt.
type FilePicker interface {
	Pick(ctx context.Context) (string, error)
}

// ColumnEditor lets a front-end adjust the output column selection. It
// receives the table's columns and returns the selection to keep.
type ColumnEditor interface {
	Edit(ctx context.Context, columns []string) ([]string, error)
}

// Session drives load, configure, run, and export as separate steps so a
// front-end can interleave user interaction between them.
type Session struct {
	cfg        config.AppConfig
	sourcePath string
	table      *core.Table
	result     *tableprep.Result
}

// New creates a session with the given configuration.
func New(cfg config.AppConfig) *Session {
	return &Session{cfg: cfg}
}

// Config returns the session's working configuration.
func (s *Session) Config() config.AppConfig {
	return s.cfg
}

// SetConfig replaces the working configuration. The loaded table and any
// previous result are kept; Run picks up the new settings.
func (s *Session) SetConfig(cfg config.AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	s.result = nil
	return nil
}

// LoadFile imports the file at path into the session, replacing any
// previously loaded table and discarding any previous result.
func (s *Session) LoadFile(ctx context.Context, path string) error {
	if err := validators.ValidateFilename(path); err != nil {
		return err
	}

	// Missing files fall through to Open so they report an import failure.
	if max := s.cfg.Import.MaxFileSizeMB; max > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > int64(max)<<20 {
			return fmt.Errorf("%w: file %s is %d bytes, limit is %d MB",
				core.ErrInvalidInput, path, info.Size(), max)
		}
	}

	opts := []readers.OpenOption{
		readers.WithOpenInferTypes(s.cfg.Import.InferTypes),
	}
	if d := s.cfg.ImportDelimiter(); d != 0 {
		opts = append(opts, readers.WithOpenDelimiter(d))
	}
	if s.cfg.Import.Sheet != "" {
		opts = append(opts, readers.WithOpenSheet(s.cfg.Import.Sheet))
	}

	source, err := readers.Open(path, opts...)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrImportFailure, err)
	}
	defer source.Close()

	table, err := source.Read(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrImportFailure, err)
	}

	s.sourcePath = path
	s.table = table
	s.result = nil
	return nil
}

// LoadFrom imports via a FilePicker.
func (s *Session) LoadFrom(ctx context.Context, picker FilePicker) error {
	path, err := picker.Pick(ctx)
	if err != nil {
		return err
	}
	return s.LoadFile(ctx, path)
}

// SourcePath returns the path of the loaded file, or "" when nothing is
// loaded.
func (s *Session) SourcePath() string {
	return s.sourcePath
}

// Table returns the loaded table, or nil when nothing is loaded.
func (s *Session) Table() *core.Table {
	return s.table
}

// Columns returns the loaded table's column names.
func (s *Session) Columns() ([]string, error) {
	if s.table == nil {
		return nil, fmt.Errorf("%w: no table loaded", core.ErrInvalidInput)
	}
	return append([]string(nil), s.table.Columns...), nil
}

// SetColumns sets the output column selection. Every name must exist in the
// loaded table; an empty selection means all columns.
func (s *Session) SetColumns(columns []string) error {
	if s.table == nil {
		return fmt.Errorf("%w: no table loaded", core.ErrInvalidInput)
	}
	if err := validators.ValidateColumnSelection(s.table, columns); err != nil {
		return err
	}
	s.cfg.Columns = append([]string(nil), columns...)
	s.result = nil
	return nil
}

// EditColumns runs a ColumnEditor over the table's columns and applies the
// returned selection.
func (s *Session) EditColumns(ctx context.Context, editor ColumnEditor) error {
	columns, err := s.Columns()
	if err != nil {
		return err
	}
	selected, err := editor.Edit(ctx, columns)
	if err != nil {
		return err
	}
	return s.SetColumns(selected)
}

// SetMinLength sets the filter stage's first-column length threshold.
func (s *Session) SetMinLength(minLength int) error {
	if err := validators.ValidateMinLength(minLength); err != nil {
		return err
	}
	s.cfg.Filtering.MinLength = minLength
	s.result = nil
	return nil
}

// Run executes the pipeline over the loaded table and stores the result.
func (s *Session) Run(ctx context.Context) (*tableprep.Result, error) {
	if s.table == nil {
		return nil, fmt.Errorf("%w: no table loaded", core.ErrInvalidInput)
	}

	pipelineCfg, err := s.cfg.PipelineConfig()
	if err != nil {
		return nil, err
	}

	pipeline := tableprep.NewPipeline().WithConfig(pipelineCfg).Build()
	result, err := pipeline.Run(ctx, s.table)
	if err != nil {
		return nil, err
	}

	s.result = result
	return result, nil
}

// Result returns the last pipeline result, or nil when Run has not succeeded
// since the last change.
func (s *Session) Result() *tableprep.Result {
	return s.result
}

// Export writes the last result to the file at path. The format is chosen by
// the path's suffix; unknown suffixes produce delimited text with the
// configured delimiter. Export may be retried after a failure without
// re-running the pipeline.
func (s *Session) Export(ctx context.Context, path string) error {
	location := types.FileLocation{Path: path, Delimiter: s.cfg.ExportDelimiter()}
	sink, err := location.NewSink(types.FormatForPath(path))
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrExportFailure, err)
	}
	return s.ExportTo(ctx, sink)
}

// ExportTo writes the last result to the sink. The sink is closed when
// ExportTo returns.
func (s *Session) ExportTo(ctx context.Context, sink tableprep.TableSink) error {
	defer sink.Close()

	if s.result == nil {
		return fmt.Errorf("%w: no result to export, run the pipeline first", core.ErrInvalidInput)
	}
	if err := sink.Write(ctx, s.result.Table); err != nil {
		return fmt.Errorf("%w: %w", core.ErrExportFailure, err)
	}
	return nil
}

// Summary renders the last run's metrics for display.
func (s *Session) Summary() string {
	if s.result == nil {
		return "no run yet"
	}
	m := s.result.Metrics
	var b strings.Builder
	fmt.Fprintf(&b, "rows: %d -> %d (removed %d, %.1f%%)\n",
		m.InitialRows, m.FinalRows, m.TotalRemoved, m.ReductionPercent)
	fmt.Fprintf(&b, "  filtered: %d, duplicates: %d\n",
		m.Filtering.RowsRemoved, m.Deduplication.DuplicatesRemoved)
	fmt.Fprintf(&b, "  cells cleaned: %d, whitespace removed: %d\n",
		m.Cleaning.CellsModified, m.Cleaning.WhitespaceRemoved)
	fmt.Fprintf(&b, "  duration: %s", m.Duration.Round(time.Millisecond))
	return b.String()
}

// Reset discards the loaded table, result, and source path. The configuration
// is kept.
func (s *Session) Reset() {
	s.sourcePath = ""
	s.table = nil
	s.result = nil
}
