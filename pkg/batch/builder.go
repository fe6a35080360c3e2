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
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
	"github.com/f5/secflow/pkg/werror"
)

// Builder accumulates value.Record rows sharing one schema and produces an
// immutable Batch. It is the columnar counterpart of the row-oriented
// RecordRepository the teacher uses upstream of Arrow IPC encoding.
type Builder struct {
	pool     memory.Allocator
	schema   schema.Schema
	builders []array.Builder
	rows     int64
}

// NewBuilder starts an empty builder for s. Must be fed with rows whose
// shape matches s exactly; the substrate's upstream operators are
// responsible for ensuring that (the builder itself does not coerce).
func NewBuilder(pool memory.Allocator, s schema.Schema) *Builder {
	if pool == nil {
		pool = memory.NewGoAllocator()
	}
	return &Builder{pool: pool, schema: s, builders: newFieldBuilders(pool, s)}
}

// Append adds one row. Each schema field is looked up in the row by name,
// so the row's field order does not matter; a missing field is treated as
// null and fields not in the schema are ignored.
func (bld *Builder) Append(row value.Record) error {
	for i, f := range bld.schema.Fields {
		v, ok := row.Get(f.Name)
		if !ok {
			v = value.Null{}
		}
		if err := appendValue(bld.builders[i], f.Type, v); err != nil {
			return werror.WrapWithContext(err, map[string]interface{}{"row": bld.rows, "field": f.Name})
		}
	}
	bld.rows++
	return nil
}

// Build finalizes the builder into an arrow.Record. The builder is left usable
// for accumulating a subsequent batch (its internal array.Builders are
// fresh after Build, matching array.Builder.NewArray's reset semantics).
func (bld *Builder) Build() (arrow.Record, error) {
	cols := make([]arrow.Array, len(bld.builders))
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i, b := range bld.builders {
		cols[i] = b.NewArray()
	}
	rows := bld.rows
	bld.rows = 0
	return array.NewRecord(bld.schema.ArrowSchema(), cols, rows), nil
}

// FromRows is a convenience constructor for tests and small fixtures: it
// builds a whole Batch from a slice of rows sharing s.
func FromRows(pool memory.Allocator, s schema.Schema, rows []value.Record) (Batch, error) {
	b := NewBuilder(pool, s)
	for _, r := range rows {
		if err := b.Append(r); err != nil {
			return Batch{}, err
		}
	}
	rec, err := b.Build()
	if err != nil {
		return Batch{}, err
	}
	return New(s, rec, nil), nil
}
