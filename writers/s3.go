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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaronlmathis/tableprep/core"
)

// S3Format selects the object encoding for an S3 upload.
type S3Format int

const (
	S3FormatDelimited S3Format = iota
	S3FormatExcel
	S3FormatJSONL
	S3FormatParquet
)

// S3WriterError provides structured error information for S3 writer operations.
type S3WriterError struct {
	Op  string // Operation that failed (e.g., "encode", "upload")
	Err error  // Underlying error
}

func (e *S3WriterError) Error() string {
	return fmt.Sprintf("s3 writer %s: %v", e.Op, e.Err)
}

func (e *S3WriterError) Unwrap() error {
	return e.Err
}

// S3WriterStats holds statistics about the S3 writer's work.
type S3WriterStats struct {
	BytesUploaded int64
	RowsWritten   int64
	WriteDuration time.Duration
}

// S3WriterOptions configures the S3 writer.
type S3WriterOptions struct {
	Bucket           string                  // Target bucket name
	Key              string                  // Object key to write
	Format           S3Format                // Object encoding
	Region           string                  // AWS region
	Profile          string                  // AWS profile to use
	Credentials      aws.Credentials         // Explicit static credentials
	EndpointURL      string                  // Custom S3 endpoint (for S3-compatible services)
	ForcePathStyle   bool                    // Use path-style addressing
	Uploader         *s3manager.Uploader     // Pre-built uploader override
	DelimitedOptions []WriterOptionDelimited // Passed through for S3FormatDelimited
	ExcelOptions     []WriterOptionExcel     // Passed through for S3FormatExcel
}

// WriterOptionS3 represents a configuration function for S3Writer.
type WriterOptionS3 func(*S3WriterOptions)

func WithS3Bucket(bucket string) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.Bucket = bucket }
}

func WithS3Key(key string) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.Key = key }
}

func WithS3Format(format S3Format) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.Format = format }
}

func WithS3Region(region string) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.Region = region }
}

func WithS3Profile(profile string) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.Profile = profile }
}

func WithS3Credentials(creds aws.Credentials) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.Credentials = creds }
}

func WithS3Endpoint(endpoint string) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.EndpointURL = endpoint }
}

func WithS3PathStyle(pathStyle bool) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.ForcePathStyle = pathStyle }
}

func WithS3Uploader(uploader *s3manager.Uploader) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.Uploader = uploader }
}

func WithS3DelimitedOptions(options ...WriterOptionDelimited) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.DelimitedOptions = options }
}

func WithS3ExcelOptions(options ...WriterOptionExcel) WriterOptionS3 {
	return func(opts *S3WriterOptions) { opts.ExcelOptions = options }
}

// S3Writer implements TableSink for Amazon S3. The table is encoded into an
// in-memory object body and uploaded in a single PutObject through the
// transfer manager. Parquet is staged through a temporary file because the
// encoder needs a seekable target.
type S3Writer struct {
	uploader *s3manager.Uploader
	opts     S3WriterOptions
	stats    S3WriterStats
}

// NewS3Writer creates a new S3 writer with the specified options.
func NewS3Writer(options ...WriterOptionS3) (*S3Writer, error) {
	opts := S3WriterOptions{}
	for _, option := range options {
		option(&opts)
	}

	if opts.Bucket == "" {
		return nil, &S3WriterError{Op: "validate_options", Err: fmt.Errorf("bucket is required")}
	}
	if opts.Key == "" {
		return nil, &S3WriterError{Op: "validate_options", Err: fmt.Errorf("key is required")}
	}

	uploader := opts.Uploader
	if uploader == nil {
		cfg, err := createWriterAWSConfig(opts)
		if err != nil {
			return nil, &S3WriterError{Op: "create_aws_config", Err: err}
		}
		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			if opts.EndpointURL != "" {
				o.BaseEndpoint = aws.String(opts.EndpointURL)
			}
			o.UsePathStyle = opts.ForcePathStyle
		})
		uploader = s3manager.NewUploader(client)
	}

	return &S3Writer{uploader: uploader, opts: opts}, nil
}

// Write implements the TableSink interface.
func (s *S3Writer) Write(ctx context.Context, table *core.Table) error {
	start := time.Now()
	defer func() {
		s.stats.WriteDuration += time.Since(start)
	}()

	body, err := s.encode(ctx, table)
	if err != nil {
		return err
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.opts.Key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return &S3WriterError{Op: "upload", Err: err}
	}

	s.stats.BytesUploaded += int64(len(body))
	s.stats.RowsWritten += int64(table.NumRows())
	return nil
}

// encode renders the table into the object body for the configured format.
func (s *S3Writer) encode(ctx context.Context, table *core.Table) ([]byte, error) {
	switch s.opts.Format {
	case S3FormatDelimited:
		buf := &bytes.Buffer{}
		writer := NewDelimitedWriter(nopWriteCloser{buf}, s.opts.DelimitedOptions...)
		if err := writer.Write(ctx, table); err != nil {
			return nil, &S3WriterError{Op: "encode", Err: err}
		}
		if err := writer.Close(); err != nil {
			return nil, &S3WriterError{Op: "encode", Err: err}
		}
		return buf.Bytes(), nil
	case S3FormatExcel:
		buf := &bytes.Buffer{}
		writer := NewExcelWriterTo(buf, s.opts.ExcelOptions...)
		if err := writer.Write(ctx, table); err != nil {
			return nil, &S3WriterError{Op: "encode", Err: err}
		}
		return buf.Bytes(), nil
	case S3FormatJSONL:
		buf := &bytes.Buffer{}
		writer := NewJSONLWriter(nopWriteCloser{buf})
		if err := writer.Write(ctx, table); err != nil {
			return nil, &S3WriterError{Op: "encode", Err: err}
		}
		return buf.Bytes(), nil
	case S3FormatParquet:
		return s.encodeParquet(ctx, table)
	default:
		return nil, &S3WriterError{Op: "encode", Err: fmt.Errorf("unsupported format %d", s.opts.Format)}
	}
}

func (s *S3Writer) encodeParquet(ctx context.Context, table *core.Table) ([]byte, error) {
	tmp, err := os.CreateTemp("", "tableprep-*.parquet")
	if err != nil {
		return nil, &S3WriterError{Op: "encode", Err: err}
	}
	filename := tmp.Name()
	tmp.Close()
	defer os.Remove(filename)

	writer := NewParquetWriter(filename)
	if err := writer.Write(ctx, table); err != nil {
		return nil, &S3WriterError{Op: "encode", Err: err}
	}
	body, err := os.ReadFile(filename)
	if err != nil {
		return nil, &S3WriterError{Op: "encode", Err: err}
	}
	return body, nil
}

// Close implements the TableSink interface.
func (s *S3Writer) Close() error {
	return nil
}

// Stats returns S3 writer statistics.
func (s *S3Writer) Stats() S3WriterStats {
	return s.stats
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// createWriterAWSConfig creates AWS configuration from options.
func createWriterAWSConfig(opts S3WriterOptions) (aws.Config, error) {
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
