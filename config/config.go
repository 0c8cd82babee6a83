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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/aaronlmathis/tableprep"
	"github.com/aaronlmathis/tableprep/clean"
	"github.com/aaronlmathis/tableprep/core"
	"github.com/aaronlmathis/tableprep/dedup"
	"github.com/aaronlmathis/tableprep/filter"
)

// Package config provides a JSON-serializable view of the pipeline
// configuration plus import/export settings, with named presets for common
// preparation tasks. The JSON form uses strings for enum-like settings
// ("lower", "keep_last") so saved files stay readable and diffable.

// CleaningConfig is the JSON form of the cleaning stage settings.
type CleaningConfig struct {
	Strip              bool     `json:"strip"`
	CollapseWhitespace bool     `json:"collapse_whitespace"`
	NormalizeUnicode   bool     `json:"normalize_unicode"`
	Case               string   `json:"case,omitempty"` // "", "lower", or "upper"
	EmptyToNil         bool     `json:"empty_to_nil"`
	Columns            []string `json:"columns,omitempty"` // Columns to clean; empty means all
}

// FilteringConfig is the JSON form of the filtering stage settings.
type FilteringConfig struct {
	MinLength int  `json:"min_length"`
	DropEmpty bool `json:"drop_empty"`
}

// DeduplicationConfig is the JSON form of the deduplication stage settings.
type DeduplicationConfig struct {
	Keep             string `json:"keep,omitempty"` // "", "first", or "last"
	CaseInsensitive  bool   `json:"case_insensitive"`
	NormalizeUnicode bool   `json:"normalize_unicode"`
}

// ImportConfig holds settings applied when loading files.
type ImportConfig struct {
	Delimiter     string `json:"delimiter,omitempty"` // Single character; empty means detect
	InferTypes    bool   `json:"infer_types"`
	Sheet         string `json:"sheet,omitempty"`            // Workbook sheet; empty means first
	MaxFileSizeMB int    `json:"max_file_size_mb,omitempty"` // 0 = unlimited
}

// ExportConfig holds settings applied when writing output.
type ExportConfig struct {
	Delimiter   string `json:"delimiter,omitempty"` // Single character; empty means ';'
	WriteHeader bool   `json:"write_header"`
}

// AppConfig is the complete persisted configuration.
type AppConfig struct {
	Cleaning      CleaningConfig      `json:"cleaning"`
	Filtering     FilteringConfig     `json:"filtering"`
	Deduplication DeduplicationConfig `json:"deduplication"`
	Columns       []string            `json:"columns,omitempty"` // Output column selection
	Import        ImportConfig        `json:"import"`
	Export        ExportConfig        `json:"export"`
}

// Default returns the standard configuration: trim and collapse whitespace,
// no length threshold, keep-first deduplication, type inference on import,
// semicolon-delimited export with header.
func Default() AppConfig {
	return AppConfig{
		Cleaning: CleaningConfig{
			Strip:              true,
			CollapseWhitespace: true,
		},
		Import: ImportConfig{
			InferTypes: true,
		},
		Export: ExportConfig{
			Delimiter:   ";",
			WriteHeader: true,
		},
	}
}

// presets maps preset names to ready-made configurations.
var presets = map[string]func() AppConfig{
	"customer_data": func() AppConfig {
		cfg := Default()
		cfg.Cleaning.NormalizeUnicode = true
		cfg.Cleaning.EmptyToNil = true
		cfg.Filtering.MinLength = 2
		cfg.Filtering.DropEmpty = true
		cfg.Deduplication.CaseInsensitive = true
		return cfg
	},
	"product_catalog": func() AppConfig {
		cfg := Default()
		cfg.Cleaning.Case = "upper"
		cfg.Filtering.MinLength = 3
		cfg.Deduplication.Keep = "last"
		return cfg
	},
	"minimal": func() AppConfig {
		cfg := Default()
		cfg.Cleaning.CollapseWhitespace = false
		return cfg
	},
}

// Preset returns a named preset configuration.
func Preset(name string) (AppConfig, error) {
	factory, ok := presets[name]
	if !ok {
		return AppConfig{}, fmt.Errorf("%w: unknown preset %q (available: %v)",
			core.ErrInvalidConfiguration, name, PresetNames())
	}
	return factory(), nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads an AppConfig from a JSON file.
func Load(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}
	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("%w: parse config %s: %v",
			core.ErrInvalidConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Save writes the AppConfig to a JSON file, indented for hand editing.
func (c AppConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the pipeline would reject.
func (c AppConfig) Validate() error {
	if c.Filtering.MinLength < 0 {
		return fmt.Errorf("%w: minimum length must be non-negative, got %d",
			core.ErrInvalidConfiguration, c.Filtering.MinLength)
	}
	switch c.Cleaning.Case {
	case "", "lower", "upper":
	default:
		return fmt.Errorf("%w: case must be \"lower\" or \"upper\", got %q",
			core.ErrInvalidConfiguration, c.Cleaning.Case)
	}
	switch c.Deduplication.Keep {
	case "", "first", "last":
	default:
		return fmt.Errorf("%w: keep must be \"first\" or \"last\", got %q",
			core.ErrInvalidConfiguration, c.Deduplication.Keep)
	}
	if c.Import.MaxFileSizeMB < 0 {
		return fmt.Errorf("%w: max file size must be non-negative, got %d",
			core.ErrInvalidConfiguration, c.Import.MaxFileSizeMB)
	}
	if c.Import.Delimiter != "" && utf8.RuneCountInString(c.Import.Delimiter) != 1 {
		return fmt.Errorf("%w: import delimiter must be a single character, got %q",
			core.ErrInvalidConfiguration, c.Import.Delimiter)
	}
	if c.Export.Delimiter != "" && utf8.RuneCountInString(c.Export.Delimiter) != 1 {
		return fmt.Errorf("%w: export delimiter must be a single character, got %q",
			core.ErrInvalidConfiguration, c.Export.Delimiter)
	}
	return nil
}

// PipelineConfig converts the persisted form into the pipeline's Config.
func (c AppConfig) PipelineConfig() (tableprep.Config, error) {
	if err := c.Validate(); err != nil {
		return tableprep.Config{}, err
	}

	cleanCase := clean.CaseNone
	switch c.Cleaning.Case {
	case "lower":
		cleanCase = clean.CaseLower
	case "upper":
		cleanCase = clean.CaseUpper
	}

	keep := dedup.KeepFirst
	if c.Deduplication.Keep == "last" {
		keep = dedup.KeepLast
	}

	return tableprep.Config{
		Cleaning: clean.Config{
			Strip:              c.Cleaning.Strip,
			CollapseWhitespace: c.Cleaning.CollapseWhitespace,
			NormalizeUnicode:   c.Cleaning.NormalizeUnicode,
			Case:               cleanCase,
			EmptyToNil:         c.Cleaning.EmptyToNil,
		},
		CleanColumns: append([]string(nil), c.Cleaning.Columns...),
		Filtering: filter.Config{
			MinLength: c.Filtering.MinLength,
			DropEmpty: c.Filtering.DropEmpty,
		},
		Deduplication: dedup.Config{
			Keep:             keep,
			CaseInsensitive:  c.Deduplication.CaseInsensitive,
			NormalizeUnicode: c.Deduplication.NormalizeUnicode,
		},
		Columns: append([]string(nil), c.Columns...),
	}, nil
}

// ImportDelimiter returns the configured import delimiter rune, or 0 when the
// delimiter should be detected.
func (c AppConfig) ImportDelimiter() rune {
	if c.Import.Delimiter == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(c.Import.Delimiter)
	return r
}

// ExportDelimiter returns the configured export delimiter rune, defaulting
// to ';'.
func (c AppConfig) ExportDelimiter() rune {
	if c.Export.Delimiter == "" {
		return ';'
	}
	r, _ := utf8.DecodeRuneInString(c.Export.Delimiter)
	return r
}
