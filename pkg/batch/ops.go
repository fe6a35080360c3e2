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
	"time"

	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

// Concatenate combines batches that all share a fingerprint into one new
// batch. It fails with ErrSchemaMismatch otherwise (spec.md §4.B).
func Concatenate(pool memory.Allocator, batches ...Batch) (Batch, error) {
	if len(batches) == 0 {
		return Batch{}, nil
	}
	s := batches[0].schema
	for _, b := range batches[1:] {
		if !b.schema.Equal(s) {
			return Batch{}, ErrSchemaMismatch
		}
	}
	bld := NewBuilder(pool, s)
	for _, b := range batches {
		for row := int64(0); row < b.NumRows(); row++ {
			r, err := Row(b, row)
			if err != nil {
				return Batch{}, err
			}
			if err := bld.Append(r); err != nil {
				return Batch{}, err
			}
		}
	}
	rec, err := bld.Build()
	if err != nil {
		return Batch{}, err
	}
	var importTime *time.Time
	if batches[0].importTime != nil {
		t := *batches[0].importTime
		importTime = &t
	}
	return New(s, rec, importTime), nil
}

// Filter keeps the rows of b whose predicate value is value.Bool(true).
// A null predicate drops the row and reports warnedNull=true if any null
// was observed (spec.md §4.B).
func Filter(pool memory.Allocator, b Batch, predicate []value.Value) (out Batch, warnedNull bool, err error) {
	bld := NewBuilder(pool, b.schema)
	for row := int64(0); row < b.NumRows(); row++ {
		p := predicate[row]
		if p == nil || p.IsNull() {
			warnedNull = true
			continue
		}
		keep, ok := p.(value.Bool)
		if !ok || !bool(keep) {
			continue
		}
		r, rerr := Row(b, row)
		if rerr != nil {
			return Batch{}, warnedNull, rerr
		}
		if aerr := bld.Append(r); aerr != nil {
			return Batch{}, warnedNull, aerr
		}
	}
	rec, berr := bld.Build()
	if berr != nil {
		return Batch{}, warnedNull, berr
	}
	return New(b.schema, rec, b.importTime), warnedNull, nil
}

// Rewrite is one output column of a Transform: a name, a type, and its
// fully materialized per-row values (length must equal the input batch's
// row count).
type Rewrite struct {
	Name   string
	Type   schema.Type
	Values []value.Value
}

// Transform applies an ordered list of column rewrites, producing a new
// batch and schema whose row count equals the input's (spec.md §4.B). It
// is the primitive the projection operator family (pkg/ops/project)
// builds `put`/`extend`/`replace`/`set` semantics on top of.
func Transform(pool memory.Allocator, rows int64, rewrites []Rewrite) (Batch, error) {
	fields := make([]schema.Field, len(rewrites))
	for i, rw := range rewrites {
		fields[i] = schema.Field{Name: rw.Name, Type: rw.Type}
	}
	s := schema.New("secflow.transform", fields...)
	bld := NewBuilder(pool, s)
	for row := int64(0); row < rows; row++ {
		r := make(value.Record, len(rewrites))
		for i, rw := range rewrites {
			r[i] = value.Field{Name: rw.Name, Value: rw.Values[row]}
		}
		if err := bld.Append(r); err != nil {
			return Batch{}, err
		}
	}
	rec, err := bld.Build()
	if err != nil {
		return Batch{}, err
	}
	return New(s, rec, nil), nil
}
