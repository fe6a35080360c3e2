// Copyright The OpenTelemetry Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package batch

import (
	"fmt"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

// ErrSchemaMismatch is returned when an operation (Concatenate) is asked
// to combine batches whose schemas do not share a fingerprint.
var ErrSchemaMismatch = fmt.Errorf("batch: schema mismatch")

// Batch is an immutable, columnar, reference-counted event batch: a
// schema, N rows, one column per field, and an optional import-time. A
// Batch is exclusively owned by its producer until placed on a transport,
// after which only reads are legal (spec.md §3).
type Batch struct {
	schema     schema.Schema
	record     arrow.Record
	importTime *time.Time
}

// New wraps an arrow.Record that was already built against s's Arrow
// projection. The record's reference count is taken over by the Batch;
// call Release when done with it.
func New(s schema.Schema, record arrow.Record, importTime *time.Time) Batch {
	return Batch{schema: s, record: record, importTime: importTime}
}

// Empty returns a zero-row batch that still carries s, legal per spec.md
// §3 ("empty batches are legal and carry signalling semantics").
func Empty(s schema.Schema) Batch {
	pool := memory.NewGoAllocator()
	b := NewBuilder(pool, s)
	rec, err := b.Build()
	if err != nil {
		panic(err) // building zero rows against a valid schema cannot fail
	}
	return New(s, rec, nil)
}

func (b Batch) Schema() schema.Schema { return b.schema }

// NumRows returns the row count; never overflows a 63-bit integer because
// arrow.Record already carries it as int64 (spec.md §3 invariant).
func (b Batch) NumRows() int64 {
	if b.record == nil {
		return 0
	}
	return b.record.NumRows()
}

func (b Batch) ImportTime() *time.Time { return b.importTime }

// Record exposes the backing arrow.Record for operators that need direct
// columnar access (e.g. the expression evaluator).
func (b Batch) Record() arrow.Record { return b.record }

// IsValid reports whether the batch carries a backing record at all (a
// Batch{} zero value is not valid and must never cross a transport).
func (b Batch) IsValid() bool { return b.record != nil }

// Retain increments the reference count of the backing record, needed
// whenever a Batch is handed to more than one reader (e.g. fan-out in the
// load-balance operator).
func (b Batch) Retain() Batch {
	if b.record != nil {
		b.record.Retain()
	}
	return b
}

// Release decrements the reference count of the backing record.
func (b Batch) Release() {
	if b.record != nil {
		b.record.Release()
	}
}

// Slice returns the rows [begin, end) sharing storage with b — true O(1)
// slicing via arrow.Record.NewSlice.
func (b Batch) Slice(begin, end int64) Batch {
	if b.record == nil {
		return b
	}
	return Batch{
		schema:     b.schema,
		record:     b.record.NewSlice(begin, end),
		importTime: b.importTime,
	}
}

// Split returns the first k rows and the remainder; both share storage
// with b. Per spec.md §4.B / invariant 1, Split followed by Concatenate
// reproduces b.
func Split(b Batch, k int64) (Batch, Batch) {
	if k < 0 {
		k = 0
	}
	if k > b.NumRows() {
		k = b.NumRows()
	}
	return b.Slice(0, k), b.Slice(k, b.NumRows())
}

// Row reads the row-th record of b back into the value model. It is used
// by Concatenate/Filter and by operators that need per-row
// access (e.g. group-by bucketing).
func Row(b Batch, row int64) (value.Record, error) {
	fields := make(value.Record, len(b.schema.Fields))
	for i, f := range b.schema.Fields {
		col := b.record.Column(i)
		v, err := readValue(col, int(row), f.Type)
		if err != nil {
			return nil, fmt.Errorf("batch: row %d field %q: %w", row, f.Name, err)
		}
		fields[i] = value.Field{Name: f.Name, Value: v}
	}
	return fields, nil
}
