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
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aaronlmathis/tableprep/core"
)

// HTTPReaderError provides structured error information for HTTP reader operations.
type HTTPReaderError struct {
	Op  string // Operation that failed (e.g., "request", "status", "parse")
	Err error  // Underlying error
}

func (e *HTTPReaderError) Error() string {
	return fmt.Sprintf("http reader %s: %v", e.Op, e.Err)
}

func (e *HTTPReaderError) Unwrap() error {
	return e.Err
}

// HTTPReaderOptions configures the HTTP reader.
type HTTPReaderOptions struct {
	URL       string            // Resource to fetch
	Headers   map[string]string // Extra request headers
	Timeout   time.Duration     // Request timeout
	Delimiter rune              // Delimiter override for delimited bodies (0 = detect)
	Client    *http.Client      // Custom HTTP client
}

// ReaderOptionHTTP represents a configuration function for HTTPReader.
type ReaderOptionHTTP func(*HTTPReaderOptions)

func WithHTTPURL(rawURL string) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) { opts.URL = rawURL }
}

func WithHTTPHeader(key, value string) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) {
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}
		opts.Headers[key] = value
	}
}

func WithHTTPTimeout(timeout time.Duration) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) { opts.Timeout = timeout }
}

func WithHTTPDelimiter(delimiter rune) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) { opts.Delimiter = delimiter }
}

func WithHTTPClient(client *http.Client) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) { opts.Client = client }
}

// HTTPReader implements TableSource for tables fetched over HTTP. The response
// body is parsed by content type, falling back to the URL path suffix:
// CSV/delimited text or line-delimited JSON.
type HTTPReader struct {
	opts HTTPReaderOptions
}

// NewHTTPReader creates a new HTTP reader for the given URL.
func NewHTTPReader(options ...ReaderOptionHTTP) (*HTTPReader, error) {
	opts := HTTPReaderOptions{
		Timeout: 30 * time.Second,
	}
	for _, option := range options {
		option(&opts)
	}

	if opts.URL == "" {
		return nil, &HTTPReaderError{Op: "validate_options", Err: fmt.Errorf("URL is required")}
	}
	if _, err := url.Parse(opts.URL); err != nil {
		return nil, &HTTPReaderError{Op: "validate_options", Err: err}
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}

	return &HTTPReader{opts: opts}, nil
}

// Read implements the TableSource interface.
func (h *HTTPReader) Read(ctx context.Context) (*core.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.opts.URL, nil)
	if err != nil {
		return nil, &HTTPReaderError{Op: "request", Err: err}
	}
	for k, v := range h.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.opts.Client.Do(req)
	if err != nil {
		return nil, &HTTPReaderError{Op: "request", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &HTTPReaderError{Op: "status", Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "json"), h.hasSuffix(".jsonl"), h.hasSuffix(".ndjson"):
		return NewJSONLReader(resp.Body).Read(ctx)
	default:
		reader := NewCSVReader(resp.Body,
			WithCSVComma(h.opts.Delimiter),
			WithCSVDetectDelimiter(h.opts.Delimiter == 0))
		return reader.Read(ctx)
	}
}

func (h *HTTPReader) hasSuffix(suffix string) bool {
	u, err := url.Parse(h.opts.URL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(path.Base(u.Path)), suffix)
}

// Close implements the TableSource interface.
func (h *HTTPReader) Close() error {
	return nil
}
