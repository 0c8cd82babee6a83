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

package types

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aaronlmathis/tableprep"
	"github.com/aaronlmathis/tableprep/writers"
)

// OutputFormat represents a supported sink format.
type OutputFormat int

const (
	FormatDelimited OutputFormat = iota
	FormatExcel
	FormatJSONL
	FormatParquet
	FormatPostgres
)

// FormatForPath guesses the output format from a file suffix. Unknown
// suffixes default to delimited text.
func FormatForPath(path string) OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatExcel
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".parquet":
		return FormatParquet
	default:
		return FormatDelimited
	}
}

// OutputLocation creates a TableSink for a given format.
type OutputLocation interface {
	NewSink(format OutputFormat) (tableprep.TableSink, error)
}

// FileLocation writes output to a local filesystem path.
type FileLocation struct {
	Path      string
	Delimiter rune // Field delimiter for delimited output (0 = default ';')
}

// NewSink instantiates a writer for the file location.
func (f FileLocation) NewSink(format OutputFormat) (tableprep.TableSink, error) {
	switch format {
	case FormatDelimited:
		file, err := os.Create(f.Path)
		if err != nil {
			return nil, err
		}
		opts := []writers.WriterOptionDelimited{}
		if f.Delimiter != 0 {
			opts = append(opts, writers.WithDelimiter(f.Delimiter))
		}
		return writers.NewDelimitedWriter(file, opts...), nil
	case FormatExcel:
		return writers.NewExcelWriter(f.Path), nil
	case FormatJSONL:
		file, err := os.Create(f.Path)
		if err != nil {
			return nil, err
		}
		return writers.NewJSONLWriter(file), nil
	case FormatParquet:
		return writers.NewParquetWriter(f.Path), nil
	default:
		return nil, fmt.Errorf("unsupported format for FileLocation")
	}
}

// S3Location writes objects to an S3 bucket.
type S3Location struct {
	Bucket string
	Key    string
	Region string
}

// NewSink creates a writer uploading to S3.
func (s S3Location) NewSink(format OutputFormat) (tableprep.TableSink, error) {
	var s3Format writers.S3Format
	switch format {
	case FormatDelimited:
		s3Format = writers.S3FormatDelimited
	case FormatExcel:
		s3Format = writers.S3FormatExcel
	case FormatJSONL:
		s3Format = writers.S3FormatJSONL
	case FormatParquet:
		s3Format = writers.S3FormatParquet
	default:
		return nil, fmt.Errorf("unsupported format for S3Location")
	}
	return writers.NewS3Writer(
		writers.WithS3Bucket(s.Bucket),
		writers.WithS3Key(s.Key),
		writers.WithS3Format(s3Format),
		writers.WithS3Region(s.Region),
	)
}

// PostgresLocation directs output to a PostgreSQL database.
type PostgresLocation struct {
	DSN   string
	Table string
}

// NewSink instantiates a PostgreSQL writer.
func (p PostgresLocation) NewSink(format OutputFormat) (tableprep.TableSink, error) {
	if format != FormatPostgres {
		return nil, fmt.Errorf("unsupported format for PostgresLocation")
	}
	return writers.NewPostgresWriter(
		writers.WithPostgresWriterDSN(p.DSN),
		writers.WithPostgresWriterTable(p.Table),
	)
}
