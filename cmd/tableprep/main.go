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

// Command tableprep imports a tabular file, runs the preparation pipeline
// (clean, filter, deduplicate, select columns), and exports the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aaronlmathis/tableprep/config"
	"github.com/aaronlmathis/tableprep/session"
	"github.com/aaronlmathis/tableprep/types"
)

type flags struct {
	In         string
	Out        string
	Format     string
	MinLength  int
	Columns    string
	Delimiter  string
	Preset     string
	ConfigPath string
	NoInfer    bool
	Sheet      string
}

func parseFlags() (*flags, error) {
	f := &flags{}

	flag.StringVar(&f.In, "in", "", "input file (.csv, .txt, .tsv, .xlsx, .jsonl)")
	flag.StringVar(&f.Out, "out", "", "output file (suffix selects the format; default delimited text)")
	flag.StringVar(&f.Format, "format", "", "output format: delimited, excel, jsonl, parquet (default: by -out suffix)")
	flag.IntVar(&f.MinLength, "min-length", -1, "minimum first-column length; shorter rows are dropped (-1 = keep config value)")
	flag.StringVar(&f.Columns, "columns", "", "comma-separated output columns, in order (empty = all)")
	flag.StringVar(&f.Delimiter, "delimiter", "", "field delimiter for delimited output (default ';')")
	flag.StringVar(&f.Preset, "preset", "", "configuration preset: "+strings.Join(config.PresetNames(), ", "))
	flag.StringVar(&f.ConfigPath, "config", "", "JSON configuration file (overrides -preset)")
	flag.BoolVar(&f.NoInfer, "no-infer", false, "keep all imported cells as strings")
	flag.StringVar(&f.Sheet, "sheet", "", "workbook sheet to import (default: first sheet)")

	flag.Parse()

	if f.In == "" {
		return nil, fmt.Errorf("input file is required, use -in")
	}
	if f.Out == "" {
		return nil, fmt.Errorf("output file is required, use -out")
	}

	return f, nil
}

func parseFormat(name string) (types.OutputFormat, error) {
	switch strings.ToLower(name) {
	case "delimited", "csv", "txt":
		return types.FormatDelimited, nil
	case "excel", "xlsx":
		return types.FormatExcel, nil
	case "jsonl", "ndjson":
		return types.FormatJSONL, nil
	case "parquet":
		return types.FormatParquet, nil
	default:
		return 0, fmt.Errorf("unknown output format %q, use delimited, excel, jsonl, or parquet", name)
	}
}

func buildConfig(f *flags) (config.AppConfig, error) {
	cfg := config.Default()
	var err error

	if f.Preset != "" {
		cfg, err = config.Preset(f.Preset)
		if err != nil {
			return config.AppConfig{}, err
		}
	}
	if f.ConfigPath != "" {
		cfg, err = config.Load(f.ConfigPath)
		if err != nil {
			return config.AppConfig{}, err
		}
	}

	if f.MinLength >= 0 {
		cfg.Filtering.MinLength = f.MinLength
	}
	if f.Delimiter != "" {
		cfg.Export.Delimiter = f.Delimiter
	}
	if f.NoInfer {
		cfg.Import.InferTypes = false
	}
	if f.Sheet != "" {
		cfg.Import.Sheet = f.Sheet
	}
	if err := cfg.Validate(); err != nil {
		return config.AppConfig{}, err
	}
	return cfg, nil
}

func run() error {
	f, err := parseFlags()
	if err != nil {
		return err
	}

	cfg, err := buildConfig(f)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess := session.New(cfg)

	if err := sess.LoadFile(ctx, f.In); err != nil {
		return err
	}

	if f.Columns != "" {
		columns := strings.Split(f.Columns, ",")
		for i := range columns {
			columns[i] = strings.TrimSpace(columns[i])
		}
		if err := sess.SetColumns(columns); err != nil {
			return err
		}
	}

	if _, err := sess.Run(ctx); err != nil {
		return err
	}

	if f.Format != "" {
		format, err := parseFormat(f.Format)
		if err != nil {
			return err
		}
		location := types.FileLocation{Path: f.Out, Delimiter: cfg.ExportDelimiter()}
		sink, err := location.NewSink(format)
		if err != nil {
			return err
		}
		if err := sess.ExportTo(ctx, sink); err != nil {
			return err
		}
	} else if err := sess.Export(ctx, f.Out); err != nil {
		return err
	}

	log.Printf("wrote %s", f.Out)
	log.Println(sess.Summary())
	return nil
}

func main() {
	log.SetFlags(0)
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tableprep: %v\n", err)
		os.Exit(1)
	}
}
