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

package readers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaronlmathis/tableprep/core"
)

// S3ReaderError provides structured error information for S3 reader operations.
type S3ReaderError struct {
	Op  string // Operation that failed (e.g., "get_object", "read", "parse")
	Err error  // Underlying error
}

func (e *S3ReaderError) Error() string {
	return fmt.Sprintf("s3 reader %s: %v", e.Op, e.Err)
}

func (e *S3ReaderError) Unwrap() error {
	return e.Err
}

// S3ReaderStats holds statistics about the S3 reader's work.
type S3ReaderStats struct {
	BytesRead    int64
	RowsRead     int64
	ReadDuration time.Duration
	LastReadTime time.Time
}

// S3ReaderOptions configures the S3 reader.
type S3ReaderOptions struct {
	Bucket         string          // S3 bucket name
	Key            string          // Object key to read
	Region         string          // AWS region
	Profile        string          // AWS profile to use
	Credentials    aws.Credentials // Explicit static credentials
	EndpointURL    string          // Custom S3 endpoint (for S3-compatible services)
	ForcePathStyle bool            // Use path-style addressing
	Delimiter      rune            // Delimiter override for delimited objects (0 = detect)
}

// ReaderOptionS3 represents a configuration function for S3Reader.
type ReaderOptionS3 func(*S3ReaderOptions)

func WithS3Bucket(bucket string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) { opts.Bucket = bucket }
}

func WithS3Key(key string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) { opts.Key = key }
}

func WithS3Region(region string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) { opts.Region = region }
}

func WithS3Profile(profile string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) { opts.Profile = profile }
}

func WithS3Credentials(creds aws.Credentials) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) { opts.Credentials = creds }
}

func WithS3Endpoint(endpoint string) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) { opts.EndpointURL = endpoint }
}

func WithS3PathStyle(pathStyle bool) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) { opts.ForcePathStyle = pathStyle }
}

func WithS3Delimiter(delimiter rune) ReaderOptionS3 {
	return func(opts *S3ReaderOptions) { opts.Delimiter = delimiter }
}

// S3Reader implements TableSource for a single object in Amazon S3. The object
// body is fetched whole and parsed by key suffix: .csv/.txt as delimited text,
// .xlsx as a workbook, .jsonl/.ndjson as line-delimited JSON.
type S3Reader struct {
	client *s3.Client
	opts   S3ReaderOptions
	stats  S3ReaderStats
}

// NewS3Reader creates a new S3 reader with the specified options.
func NewS3Reader(options ...ReaderOptionS3) (*S3Reader, error) {
	opts := S3ReaderOptions{}
	for _, option := range options {
		option(&opts)
	}

	if opts.Bucket == "" {
		return nil, &S3ReaderError{Op: "validate_options", Err: fmt.Errorf("bucket is required")}
	}
	if opts.Key == "" {
		return nil, &S3ReaderError{Op: "validate_options", Err: fmt.Errorf("key is required")}
	}

	cfg, err := createAWSConfig(opts)
	if err != nil {
		return nil, &S3ReaderError{Op: "create_aws_config", Err: err}
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.EndpointURL != "" {
			o.BaseEndpoint = aws.String(opts.EndpointURL)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})

	return &S3Reader{client: client, opts: opts}, nil
}

// Read implements the TableSource interface.
func (s *S3Reader) Read(ctx context.Context) (*core.Table, error) {
	start := time.Now()
	defer func() {
		s.stats.ReadDuration += time.Since(start)
		s.stats.LastReadTime = time.Now()
	}()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.opts.Key),
	})
	if err != nil {
		return nil, &S3ReaderError{Op: "get_object", Err: err}
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &S3ReaderError{Op: "read_body", Err: err}
	}
	s.stats.BytesRead += int64(len(body))

	table, err := s.parseObject(ctx, body)
	if err != nil {
		return nil, err
	}
	s.stats.RowsRead += int64(table.NumRows())
	return table, nil
}

// parseObject dispatches the object body to the parser for its key suffix.
func (s *S3Reader) parseObject(ctx context.Context, body []byte) (*core.Table, error) {
	ext := strings.ToLower(path.Ext(s.opts.Key))
	rc := io.NopCloser(bytes.NewReader(body))

	switch ext {
	case ".csv":
		reader := NewCSVReader(rc, WithCSVComma(s.delimiterOr(',')))
		return reader.Read(ctx)
	case ".txt", ".tsv":
		reader := NewCSVReader(rc, WithCSVComma(s.opts.Delimiter), WithCSVDetectDelimiter(s.opts.Delimiter == 0))
		return reader.Read(ctx)
	case ".xlsx":
		reader, err := NewExcelReaderFrom(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return reader.Read(ctx)
	case ".jsonl", ".ndjson":
		return NewJSONLReader(rc).Read(ctx)
	default:
		return nil, &S3ReaderError{Op: "parse", Err: fmt.Errorf("unsupported object suffix %q", ext)}
	}
}

func (s *S3Reader) delimiterOr(fallback rune) rune {
	if s.opts.Delimiter != 0 {
		return s.opts.Delimiter
	}
	return fallback
}

// Close implements the TableSource interface.
func (s *S3Reader) Close() error {
	return nil
}

// Stats returns S3 reader statistics.
func (s *S3Reader) Stats() S3ReaderStats {
	return s.stats
}

// createAWSConfig creates AWS configuration from options.
func createAWSConfig(opts S3ReaderOptions) (aws.Config, error) {
	configOpts := []func(*awsconfig.LoadOptions) error{}

	if opts.Region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return aws.Config{}, err
	}

	// Override with explicit credentials if provided
	if opts.Credentials.AccessKeyID != "" {
		cfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				opts.Credentials.AccessKeyID,
				opts.Credentials.SecretAccessKey,
				opts.Credentials.SessionToken,
			),
		)
	}

	return cfg, nil
}
