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

package batch_test

import (
	"testing"

	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

func testSchema() schema.Schema {
	return schema.New("events",
		schema.Field{Name: "id", Type: schema.Scalar(schema.Int64)},
		schema.Field{Name: "name", Type: schema.Scalar(schema.String)},
	)
}

func testRows(n int) []value.Record {
	rows := make([]value.Record, n)
	for i := 0; i < n; i++ {
		rows[i] = value.Record{
			{Name: "id", Value: value.Int64(i)},
			{Name: "name", Value: value.String("row")},
		}
	}
	return rows
}

func TestSplitThenConcatenateReproducesBatch(t *testing.T) {
	pool := memory.NewGoAllocator()
	s := testSchema()
	b, err := batch.FromRows(pool, s, testRows(10))
	require.NoError(t, err)

	left, right := batch.Split(b, 4)
	assert.Equal(t, int64(4), left.NumRows())
	assert.Equal(t, int64(6), right.NumRows())

	rebuilt, err := batch.Concatenate(pool, left, right)
	require.NoError(t, err)
	require.Equal(t, b.NumRows(), rebuilt.NumRows())

	for row := int64(0); row < b.NumRows(); row++ {
		want, err := batch.Row(b, row)
		require.NoError(t, err)
		got, err := batch.Row(rebuilt, row)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "row %d mismatch: want %s got %s", row, want, got)
	}
}

func TestConcatenateRejectsSchemaMismatch(t *testing.T) {
	pool := memory.NewGoAllocator()
	a, err := batch.FromRows(pool, testSchema(), testRows(1))
	require.NoError(t, err)
	otherSchema := schema.New("other", schema.Field{Name: "x", Type: schema.Scalar(schema.Bool)})
	b, err := batch.FromRows(pool, otherSchema, []value.Record{{{Name: "x", Value: value.Bool(true)}}})
	require.NoError(t, err)

	_, err = batch.Concatenate(pool, a, b)
	assert.ErrorIs(t, err, batch.ErrSchemaMismatch)
}

func TestEmptyBatchCarriesSchema(t *testing.T) {
	s := testSchema()
	e := batch.Empty(s)
	assert.Equal(t, int64(0), e.NumRows())
	assert.True(t, e.Schema().Equal(s))
}

func TestFilterDropsNullPredicateAndWarns(t *testing.T) {
	pool := memory.NewGoAllocator()
	s := testSchema()
	b, err := batch.FromRows(pool, s, testRows(3))
	require.NoError(t, err)

	predicate := []value.Value{value.Bool(true), nil, value.Bool(false)}
	out, warned, err := batch.Filter(pool, b, predicate)
	require.NoError(t, err)
	assert.True(t, warned)
	assert.Equal(t, int64(1), out.NumRows())
}
