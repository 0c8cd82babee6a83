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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/tableprep/clean"
	"github.com/aaronlmathis/tableprep/core"
	"github.com/aaronlmathis/tableprep/dedup"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.Cleaning.Strip)
	assert.True(t, cfg.Cleaning.CollapseWhitespace)
	assert.Zero(t, cfg.Filtering.MinLength)
	assert.True(t, cfg.Import.InferTypes)
	assert.Equal(t, ";", cfg.Export.Delimiter)
	assert.NoError(t, cfg.Validate())
}

func TestPreset(t *testing.T) {
	t.Run("customer_data", func(t *testing.T) {
		cfg, err := Preset("customer_data")
		require.NoError(t, err)
		assert.True(t, cfg.Cleaning.NormalizeUnicode)
		assert.Equal(t, 2, cfg.Filtering.MinLength)
		assert.True(t, cfg.Deduplication.CaseInsensitive)
	})

	t.Run("product_catalog", func(t *testing.T) {
		cfg, err := Preset("product_catalog")
		require.NoError(t, err)
		assert.Equal(t, "upper", cfg.Cleaning.Case)
		assert.Equal(t, "last", cfg.Deduplication.Keep)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Preset("does_not_exist")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
	})
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	assert.Equal(t, []string{"customer_data", "minimal", "product_catalog"}, names)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"negative min length", func(c *AppConfig) { c.Filtering.MinLength = -3 }},
		{"bad case", func(c *AppConfig) { c.Cleaning.Case = "title" }},
		{"bad keep", func(c *AppConfig) { c.Deduplication.Keep = "middle" }},
		{"long import delimiter", func(c *AppConfig) { c.Import.Delimiter = ";;" }},
		{"long export delimiter", func(c *AppConfig) { c.Export.Delimiter = "--" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	cfg := Default()
	cfg.Cleaning.Case = "lower"
	cfg.Deduplication.Keep = "last"
	cfg.Filtering.MinLength = 4
	cfg.Columns = []string{"name"}

	pcfg, err := cfg.PipelineConfig()
	require.NoError(t, err)

	assert.Equal(t, clean.CaseLower, pcfg.Cleaning.Case)
	assert.Equal(t, dedup.KeepLast, pcfg.Deduplication.Keep)
	assert.Equal(t, 4, pcfg.Filtering.MinLength)
	assert.Equal(t, []string{"name"}, pcfg.Columns)
}

func TestPipelineConfig_InvalidRejected(t *testing.T) {
	cfg := Default()
	cfg.Filtering.MinLength = -1

	_, err := cfg.PipelineConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	cfg, err := Preset("customer_data")
	require.NoError(t, err)
	cfg.Columns = []string{"name", "email"}

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.json")
		require.NoError(t, os.WriteFile(path,
			[]byte(`{"filtering":{"min_length":-5}}`), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
	})
}

func TestDelimiterAccessors(t *testing.T) {
	cfg := Default()
	assert.Equal(t, rune(0), cfg.ImportDelimiter())
	assert.Equal(t, ';', cfg.ExportDelimiter())

	cfg.Import.Delimiter = "|"
	cfg.Export.Delimiter = "\t"
	assert.Equal(t, '|', cfg.ImportDelimiter())
	assert.Equal(t, '\t', cfg.ExportDelimiter())
}
