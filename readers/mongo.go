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
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aaronlmathis/tableprep/core"
)

// MongoReaderError provides structured error information for Mongo reader operations.
type MongoReaderError struct {
	Op  string // Operation that failed (e.g., "connect", "find", "decode")
	Err error  // Underlying error
}

func (e *MongoReaderError) Error() string {
	return fmt.Sprintf("mongo reader %s: %v", e.Op, e.Err)
}

func (e *MongoReaderError) Unwrap() error {
	return e.Err
}

// MongoReaderStats holds statistics about the Mongo reader's work.
type MongoReaderStats struct {
	DocumentsRead int64
	ReadDuration  time.Duration
}

// MongoReaderOptions configures the Mongo reader.
type MongoReaderOptions struct {
	URI            string        // MongoDB connection URI
	Database       string        // Database name
	Collection     string        // Collection name
	Filter         bson.M        // Query filter; nil means all documents
	Limit          int64         // Maximum documents to read (0 = unlimited)
	Columns        []string      // Column order; empty means sorted keys of the first document
	ConnectTimeout time.Duration // Connection timeout
	IncludeID      bool          // Include the _id field as a column
}

// MongoReaderOption represents a configuration function for MongoReaderOptions.
type MongoReaderOption func(*MongoReaderOptions)

// WithMongoURI sets the MongoDB connection URI.
func WithMongoURI(uri string) MongoReaderOption {
	return func(opts *MongoReaderOptions) { opts.URI = uri }
}

// WithMongoCollection sets the database and collection to read.
func WithMongoCollection(database, collection string) MongoReaderOption {
	return func(opts *MongoReaderOptions) {
		opts.Database = database
		opts.Collection = collection
	}
}

// WithMongoFilter sets the query filter.
func WithMongoFilter(filter bson.M) MongoReaderOption {
	return func(opts *MongoReaderOptions) { opts.Filter = filter }
}

// WithMongoLimit caps the number of documents read.
func WithMongoLimit(limit int64) MongoReaderOption {
	return func(opts *MongoReaderOptions) { opts.Limit = limit }
}

// WithMongoColumns fixes the table's column order.
func WithMongoColumns(columns ...string) MongoReaderOption {
	return func(opts *MongoReaderOptions) { opts.Columns = append([]string(nil), columns...) }
}

// WithMongoConnectTimeout sets the connection timeout.
func WithMongoConnectTimeout(timeout time.Duration) MongoReaderOption {
	return func(opts *MongoReaderOptions) { opts.ConnectTimeout = timeout }
}

// WithMongoIncludeID includes the _id field as a table column.
func WithMongoIncludeID(include bool) MongoReaderOption {
	return func(opts *MongoReaderOptions) { opts.IncludeID = include }
}

// MongoReader implements TableSource for MongoDB collections. Documents are
// flattened one level: top-level fields become columns, missing fields become
// nil cells.
type MongoReader struct {
	client *mongo.Client
	opts   MongoReaderOptions
	stats  MongoReaderStats
}

// NewMongoReader creates a new Mongo reader and connects to the server.
func NewMongoReader(ctx context.Context, options ...MongoReaderOption) (*MongoReader, error) {
	opts := MongoReaderOptions{
		ConnectTimeout: 10 * time.Second,
	}
	for _, option := range options {
		option(&opts)
	}

	if opts.URI == "" {
		return nil, &MongoReaderError{Op: "validate_options", Err: fmt.Errorf("URI is required")}
	}
	if opts.Database == "" || opts.Collection == "" {
		return nil, &MongoReaderError{Op: "validate_options", Err: fmt.Errorf("database and collection are required")}
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, mongooptions.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, &MongoReaderError{Op: "connect", Err: err}
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, &MongoReaderError{Op: "ping", Err: err}
	}

	return &MongoReader{client: client, opts: opts}, nil
}

// Read implements the TableSource interface.
func (m *MongoReader) Read(ctx context.Context) (*core.Table, error) {
	start := time.Now()

	coll := m.client.Database(m.opts.Database).Collection(m.opts.Collection)

	filter := m.opts.Filter
	if filter == nil {
		filter = bson.M{}
	}
	findOpts := mongooptions.Find()
	if m.opts.Limit > 0 {
		findOpts.SetLimit(m.opts.Limit)
	}

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, &MongoReaderError{Op: "find", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &MongoReaderError{Op: "decode", Err: err}
	}

	columns := m.opts.Columns
	if len(columns) == 0 && len(docs) > 0 {
		for k := range docs[0] {
			if k == "_id" && !m.opts.IncludeID {
				continue
			}
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}

	table := core.NewTable(columns...)
	for _, doc := range docs {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			row[i] = flattenBSONValue(doc[col])
		}
		table.Rows = append(table.Rows, row)
		m.stats.DocumentsRead++
	}

	m.stats.ReadDuration += time.Since(start)
	return table, nil
}

// Close implements the TableSource interface.
func (m *MongoReader) Close() error {
	if m.client != nil {
		return m.client.Disconnect(context.Background())
	}
	return nil
}

// Stats returns Mongo reader statistics.
func (m *MongoReader) Stats() MongoReaderStats {
	return m.stats
}

// flattenBSONValue maps BSON values onto the table cell variants.
func flattenBSONValue(v interface{}) interface{} {
	switch cell := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return cell.Hex()
	case primitive.DateTime:
		return cell.Time()
	case int32:
		return int(cell)
	case primitive.A, bson.M:
		return fmt.Sprintf("%v", cell)
	default:
		return cell
	}
}
