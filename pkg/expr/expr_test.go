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

package expr_test

import (
	"testing"
	"time"

	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/diag"
	"github.com/f5/secflow/pkg/expr"
	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

func makeBatch(t *testing.T) batch.Batch {
	t.Helper()
	pool := memory.NewGoAllocator()
	s := schema.New("events",
		schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)},
		schema.Field{Name: "b", Type: schema.Scalar(schema.String)},
	)
	rows := []value.Record{
		{{Name: "a", Value: value.Int64(1)}, {Name: "b", Value: value.String("x")}},
		{{Name: "a", Value: value.Int64(2)}, {Name: "b", Value: value.String("y")}},
	}
	b, err := batch.FromRows(pool, s, rows)
	require.NoError(t, err)
	return b
}

func TestEvalLiteral(t *testing.T) {
	b := makeBatch(t)
	ms := expr.Eval(b, expr.Literal{Value: value.Int64(42)}, nil)
	require.Equal(t, int64(2), ms.NumRows())
	assert.Equal(t, value.Int64(42), ms.At(0))
	assert.Equal(t, value.Int64(42), ms.At(1))
}

func TestEvalFieldPath(t *testing.T) {
	b := makeBatch(t)
	ms := expr.Eval(b, expr.FieldPath{Segments: []string{"a"}}, nil)
	assert.Equal(t, value.Int64(1), ms.At(0))
	assert.Equal(t, value.Int64(2), ms.At(1))
}

func TestEvalBinaryArithmetic(t *testing.T) {
	b := makeBatch(t)
	e := expr.Binary{Op: expr.OpAdd, Left: expr.FieldPath{Segments: []string{"a"}}, Right: expr.Literal{Value: value.Int64(10)}}
	ms := expr.Eval(b, e, nil)
	assert.Equal(t, value.Int64(11), ms.At(0))
	assert.Equal(t, value.Int64(12), ms.At(1))
}

func TestEvalComparison(t *testing.T) {
	b := makeBatch(t)
	e := expr.Binary{Op: expr.OpGt, Left: expr.FieldPath{Segments: []string{"a"}}, Right: expr.Literal{Value: value.Int64(1)}}
	ms := expr.Eval(b, e, nil)
	assert.Equal(t, value.Bool(false), ms.At(0))
	assert.Equal(t, value.Bool(true), ms.At(1))
}

func TestEvalMetaAccessors(t *testing.T) {
	b := makeBatch(t)
	ms := expr.Eval(b, expr.Meta{Kind: expr.MetaSchemaName}, nil)
	assert.Equal(t, value.String("events"), ms.At(0))
}

func TestEvalMetaImportTimeNullWhenUnset(t *testing.T) {
	b := makeBatch(t)
	ms := expr.Eval(b, expr.Meta{Kind: expr.MetaImportTime}, nil)
	assert.True(t, ms.At(0).IsNull())
}

func TestEvalMetaImportTimePresent(t *testing.T) {
	pool := memory.NewGoAllocator()
	s := schema.New("e", schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)})
	now := time.Now().UTC()
	b, err := batch.FromRows(pool, s, []value.Record{{{Name: "a", Value: value.Int64(1)}}})
	require.NoError(t, err)
	b = batch.New(s, b.Record(), &now)
	ms := expr.Eval(b, expr.Meta{Kind: expr.MetaImportTime}, nil)
	got, ok := ms.At(0).(value.Time)
	require.True(t, ok)
	assert.True(t, time.Time(got).Equal(now))
}

func TestEvalUnresolvableFieldPathIsNull(t *testing.T) {
	b := makeBatch(t)
	ms := expr.Eval(b, expr.FieldPath{Segments: []string{"missing"}}, nil)
	assert.True(t, ms.At(0).IsNull())
}

func TestEvalTypeErrorEmitsWarningAndNullColumn(t *testing.T) {
	b := makeBatch(t)
	bus := diag.NewBus(nil, nil)
	e := expr.Binary{Op: expr.OpAdd, Left: expr.FieldPath{Segments: []string{"a"}}, Right: expr.FieldPath{Segments: []string{"b"}}}
	ms := expr.Eval(b, e, bus)
	assert.True(t, ms.At(0).IsNull())
	assert.True(t, ms.At(1).IsNull())
	warnings := bus.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, diag.KindTypeClash, warnings[0].Kind)
}

func TestEvalIfExpression(t *testing.T) {
	b := makeBatch(t)
	e := expr.If{
		Cond: expr.Binary{Op: expr.OpEq, Left: expr.FieldPath{Segments: []string{"a"}}, Right: expr.Literal{Value: value.Int64(1)}},
		Then: expr.Literal{Value: value.String("one")},
		Else: expr.Literal{Value: value.String("other")},
	}
	ms := expr.Eval(b, e, nil)
	assert.Equal(t, value.String("one"), ms.At(0))
	assert.Equal(t, value.String("other"), ms.At(1))
}

func TestEvalListAndIndex(t *testing.T) {
	b := makeBatch(t)
	e := expr.Index{
		Base: expr.ListLit{Elems: []expr.Expr{expr.Literal{Value: value.Int64(10)}, expr.Literal{Value: value.Int64(20)}}},
		Key:  expr.Literal{Value: value.Int64(1)},
	}
	ms := expr.Eval(b, e, nil)
	assert.Equal(t, value.Int64(20), ms.At(0))
}

func TestEvalCallBuiltins(t *testing.T) {
	b := makeBatch(t)
	e := expr.Call{Name: "upper", Args: []expr.Expr{expr.FieldPath{Segments: []string{"b"}}}}
	ms := expr.Eval(b, e, nil)
	assert.Equal(t, value.String("X"), ms.At(0))
	assert.Equal(t, value.String("Y"), ms.At(1))
}

func TestEvalCallUnknownFunctionWarns(t *testing.T) {
	b := makeBatch(t)
	bus := diag.NewBus(nil, nil)
	e := expr.Call{Name: "does_not_exist", Args: nil}
	ms := expr.Eval(b, e, bus)
	assert.True(t, ms.At(0).IsNull())
	require.Len(t, bus.Warnings(), 1)
}

func TestAssignWidensIntoNestedRecord(t *testing.T) {
	rec := value.Record{{Name: "a", Value: value.Int64(1)}}
	out := expr.Assign(rec, expr.ParseSelector("nested.x"), value.String("v"))
	nested, ok := out.Get("nested")
	require.True(t, ok)
	nr, ok := nested.(value.Record)
	require.True(t, ok)
	x, ok := nr.Get("x")
	require.True(t, ok)
	assert.Equal(t, value.String("v"), x)
}

func TestAssignReplacesExistingTopLevelField(t *testing.T) {
	rec := value.Record{{Name: "a", Value: value.Int64(1)}}
	out := expr.Assign(rec, expr.ParseSelector("a"), value.Int64(99))
	v, ok := out.Get("a")
	require.True(t, ok)
	assert.Equal(t, value.Int64(99), v)
}

func TestWidenSchemaAddsNewTopLevelField(t *testing.T) {
	base := schema.RecordOf(schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)})
	widened := expr.WidenSchema(base, []string{"b"}, schema.Scalar(schema.String))
	require.Len(t, widened.Fields, 2)
	assert.Equal(t, "b", widened.Fields[1].Name)
}
