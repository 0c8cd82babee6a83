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
	"fmt"
	"time"

	"github.com/aaronlmathis/tableprep/clean"
	"github.com/aaronlmathis/tableprep/core"
	"github.com/aaronlmathis/tableprep/dedup"
	"github.com/aaronlmathis/tableprep/filter"
)

// Package tableprep provides the fixed data preparation pipeline.
//
// The Pipeline composes cleaning, minimum-length filtering, first-column
// deduplication, and a final column projection, in that order. The order is
// significant and not configurable: cleaning must precede filtering so length
// checks operate on trimmed values, and must precede deduplication so equality
// checks ignore incidental whitespace differences.
//
// Example usage:
//
//	pipeline := tableprep.NewPipeline().
//	    WithMinLength(3).
//	    SelectColumns("name", "email").
//	    Build()
//	result, err := pipeline.Run(ctx, table)
//	if err != nil { log.Fatal(err) }
//
// The pipeline is pure given its input table and configuration: I/O is
// delegated to TableSource and TableSink collaborators (see Execute).

// Config holds the run parameters for one pipeline invocation. It is treated
// as immutable for the duration of the run.
type Config struct {
	Cleaning      clean.Config  // Cleaning stage configuration
	CleanColumns  []string      // Columns to clean; nil means all columns
	Filtering     filter.Config // Filtering stage configuration
	Deduplication dedup.Config  // Deduplication stage configuration
	Columns       []string      // Output column selection/order; nil means all, original order
}

// DefaultConfig returns the standard pipeline configuration: trim/collapse
// whitespace, no length threshold, keep-first deduplication, all columns.
func DefaultConfig() Config {
	return Config{
		Cleaning:      clean.DefaultConfig(),
		Filtering:     filter.DefaultConfig(),
		Deduplication: dedup.DefaultConfig(),
	}
}

// Metrics summarizes one pipeline run.
type Metrics struct {
	InitialRows      int           // Rows in the input table
	FinalRows        int           // Rows in the output table
	TotalRemoved     int           // Rows removed across all stages
	ReductionPercent float64       // TotalRemoved as a percentage of InitialRows
	Duration         time.Duration // Wall-clock time of the run
	Cleaning         clean.Stats   // Cleaning stage instrumentation
	Filtering        filter.Stats  // Filtering stage instrumentation
	Deduplication    dedup.Stats   // Deduplication stage instrumentation
}

// Result carries the prepared table and the run metrics.
type Result struct {
	Table   *core.Table
	Metrics Metrics
}

// PipelineBuilder provides a fluent API for constructing pipelines.
// Use NewPipeline() to create a builder, then chain configuration methods.
type PipelineBuilder struct {
	config    Config
	stages    []Stage
	validator Validator
}

// NewPipeline creates a new PipelineBuilder with the default configuration.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{config: DefaultConfig()}
}

// WithConfig replaces the whole pipeline configuration.
func (pb *PipelineBuilder) WithConfig(cfg Config) *PipelineBuilder {
	pb.config = cfg
	return pb
}

// WithCleaning sets the cleaning stage configuration.
func (pb *PipelineBuilder) WithCleaning(cfg clean.Config) *PipelineBuilder {
	pb.config.Cleaning = cfg
	return pb
}

// CleanColumns restricts cleaning to the named columns.
func (pb *PipelineBuilder) CleanColumns(columns ...string) *PipelineBuilder {
	pb.config.CleanColumns = append([]string(nil), columns...)
	return pb
}

// WithFiltering sets the filtering stage configuration.
func (pb *PipelineBuilder) WithFiltering(cfg filter.Config) *PipelineBuilder {
	pb.config.Filtering = cfg
	return pb
}

// WithMinLength sets the minimum first-column length threshold.
func (pb *PipelineBuilder) WithMinLength(m int) *PipelineBuilder {
	pb.config.Filtering.MinLength = m
	return pb
}

// WithDeduplication sets the deduplication stage configuration.
func (pb *PipelineBuilder) WithDeduplication(cfg dedup.Config) *PipelineBuilder {
	pb.config.Deduplication = cfg
	return pb
}

// SelectColumns sets the output column selection and order. The selection is
// applied as the pipeline's final step, after deduplication.
func (pb *PipelineBuilder) SelectColumns(columns ...string) *PipelineBuilder {
	pb.config.Columns = append([]string(nil), columns...)
	return pb
}

// WithStage appends a custom transformation stage. Custom stages run after
// deduplication and before the final column projection, in the order added.
func (pb *PipelineBuilder) WithStage(stages ...Stage) *PipelineBuilder {
	pb.stages = append(pb.stages, stages...)
	return pb
}

// WithValidator sets a pre-pipeline table validator.
func (pb *PipelineBuilder) WithValidator(v Validator) *PipelineBuilder {
	pb.validator = v
	return pb
}

// Build constructs the Pipeline from the builder. The configuration is copied;
// later builder changes do not affect the built pipeline.
func (pb *PipelineBuilder) Build() *Pipeline {
	cfg := pb.config
	cfg.CleanColumns = append([]string(nil), pb.config.CleanColumns...)
	cfg.Columns = append([]string(nil), pb.config.Columns...)
	return &Pipeline{
		config:    cfg,
		stages:    append([]Stage(nil), pb.stages...),
		validator: pb.validator,
	}
}

// Pipeline is the fixed composition of cleaning, filtering, deduplication,
// optional custom stages, and column projection over one in-memory table.
type Pipeline struct {
	config    Config
	stages    []Stage
	validator Validator
}

// Config returns a copy of the pipeline's configuration.
func (p *Pipeline) Config() Config {
	cfg := p.config
	cfg.CleanColumns = append([]string(nil), p.config.CleanColumns...)
	cfg.Columns = append([]string(nil), p.config.Columns...)
	return cfg
}

// Run applies the pipeline to the table and returns the prepared result.
//
// The input table is never mutated. The first stage error propagates to the
// caller wrapped in a core.StageError naming the stage; no stage is retried
// and no partial output is produced.
func (p *Pipeline) Run(ctx context.Context, t *core.Table) (*Result, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.validator != nil {
		if err := p.validator.Validate(ctx, t); err != nil {
			// A rejected table is invalid input unless the validator already
			// classified the failure.
			if !errors.Is(err, core.ErrInvalidInput) && !errors.Is(err, core.ErrInvalidConfiguration) {
				err = fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
			}
			return nil, &core.StageError{Stage: "validate", Err: err}
		}
	}

	cleaned, cleanStats := clean.Columns(t, p.config.CleanColumns, p.config.Cleaning)

	filtered, filterStats, err := filter.ByMinLength(cleaned, p.config.Filtering)
	if err != nil {
		return nil, &core.StageError{Stage: "filter", Err: err}
	}

	deduped, dedupStats, err := dedup.ByFirstColumn(filtered, p.config.Deduplication)
	if err != nil {
		return nil, &core.StageError{Stage: "dedup", Err: err}
	}

	for i, stage := range p.stages {
		deduped, err = stage.Apply(ctx, deduped)
		if err != nil {
			return nil, &core.StageError{Stage: fmt.Sprintf("custom[%d]", i), Err: err}
		}
	}

	final, err := deduped.Project(p.config.Columns)
	if err != nil {
		return nil, &core.StageError{Stage: "project", Err: err}
	}

	metrics := Metrics{
		InitialRows:   t.NumRows(),
		FinalRows:     final.NumRows(),
		TotalRemoved:  t.NumRows() - final.NumRows(),
		Duration:      time.Since(start),
		Cleaning:      cleanStats,
		Filtering:     filterStats,
		Deduplication: dedupStats,
	}
	if metrics.InitialRows > 0 {
		metrics.ReductionPercent = float64(metrics.TotalRemoved) / float64(metrics.InitialRows) * 100
	}

	return &Result{Table: final, Metrics: metrics}, nil
}

// Execute loads a table from the source, runs the pipeline, and writes the
// result to the sink. Source and sink are closed when Execute returns.
//
// A source failure is reported as core.ErrImportFailure and the pipeline is
// not invoked. A sink failure after a successful run is reported as
// core.ErrExportFailure together with the non-nil Result, so the caller may
// retry the export without re-running the pipeline.
func (p *Pipeline) Execute(ctx context.Context, source TableSource, sink TableSink) (*Result, error) {
	defer func() {
		if source != nil {
			source.Close()
		}
		if sink != nil {
			sink.Close()
		}
	}()

	table, err := source.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrImportFailure, err)
	}

	result, err := p.Run(ctx, table)
	if err != nil {
		return nil, err
	}

	if err := sink.Write(ctx, result.Table); err != nil {
		return result, fmt.Errorf("%w: %w", core.ErrExportFailure, err)
	}

	return result, nil
}
