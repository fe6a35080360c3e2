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

package project_test

import (
	"testing"

	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/diag"
	"github.com/f5/secflow/pkg/expr"
	"github.com/f5/secflow/pkg/op"
	"github.com/f5/secflow/pkg/ops/project"
	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

func projSchema() schema.Schema {
	return schema.New("rows",
		schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)},
		schema.Field{Name: "b", Type: schema.Scalar(schema.String)},
	)
}

func projBatch(t *testing.T) batch.Batch {
	t.Helper()
	pool := memory.NewGoAllocator()
	b, err := batch.FromRows(pool, projSchema(), []value.Record{
		{{Name: "a", Value: value.Int64(1)}, {Name: "b", Value: value.String("x")}},
		{{Name: "a", Value: value.Int64(2)}, {Name: "b", Value: value.String("y")}},
	})
	require.NoError(t, err)
	return b
}

type fakeInput struct {
	batches []batch.Batch
}

func (f *fakeInput) Recv() (batch.Batch, bool) {
	if len(f.batches) == 0 {
		return batch.Batch{}, false
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, true
}

type fakeControl struct {
	bus *diag.Bus
	c   diag.Counters
}

func (f *fakeControl) Cancelled() bool         { return false }
func (f *fakeControl) Diagnostics() *diag.Bus  { return f.bus }
func (f *fakeControl) Counters() *diag.Counters { return &f.c }

func run(t *testing.T, o *project.Operator, b batch.Batch) (batch.Batch, *diag.Bus) {
	t.Helper()
	in := &fakeInput{batches: []batch.Batch{b}}
	ctrl := &fakeControl{bus: diag.NewBus(zap.NewNop(), nil)}
	inst := o.Instantiate(in, ctrl)
	step, out, err := inst.Next()
	require.NoError(t, err)
	require.Equal(t, op.StepYield, step)
	return out, ctrl.bus
}

func TestPutKeepsOnlyAssignedFieldsInOrder(t *testing.T) {
	o := project.New(project.Put, []project.Assignment{
		{Selector: "c", Expr: expr.FieldPath{Segments: []string{"a"}}},
	})
	out, _ := run(t, o, projBatch(t))
	assert.Equal(t, 1, len(out.Schema().Fields))
	assert.Equal(t, "c", out.Schema().Fields[0].Name)
	row, err := batch.Row(out, 0)
	require.NoError(t, err)
	assert.Equal(t, value.Int64(1), row[0].Value)
}

func TestDefaultOutputSchemaNameIsModeSpecific(t *testing.T) {
	cases := []struct {
		mode project.Mode
		want string
	}{
		{project.Put, "secflow.put"},
		{project.Extend, "secflow.extend"},
		{project.Replace, "secflow.replace"},
		{project.Set, "secflow.set"},
	}
	for _, c := range cases {
		o := project.New(c.mode, []project.Assignment{
			{Selector: "c", Expr: expr.Literal{Value: value.Int64(1)}},
		})
		out, _ := run(t, o, projBatch(t))
		assert.Equal(t, c.want, out.Schema().Name)

		kind, err := o.InferKind(op.Kind{Schema: projSchema()})
		require.NoError(t, err)
		assert.Equal(t, c.want, kind.Schema.Name)
	}
}

func TestExtendAppendsNewFieldWithoutReplacing(t *testing.T) {
	o := project.New(project.Extend, []project.Assignment{
		{Selector: "c", Expr: expr.Literal{Value: value.Int64(9)}},
	})
	out, _ := run(t, o, projBatch(t))
	assert.Equal(t, 3, len(out.Schema().Fields))
}

func TestExtendDuplicateSelectorWarnsAndIgnores(t *testing.T) {
	o := project.New(project.Extend, []project.Assignment{
		{Selector: "a", Expr: expr.Literal{Value: value.Int64(9)}},
	})
	out, bus := run(t, o, projBatch(t))
	assert.Equal(t, 2, len(out.Schema().Fields))
	assert.Equal(t, uint64(1), bus.EmitCount())
}

func TestReplaceMissingSelectorWarnsAndIgnores(t *testing.T) {
	o := project.New(project.Replace, []project.Assignment{
		{Selector: "missing", Expr: expr.Literal{Value: value.Int64(9)}},
	})
	out, bus := run(t, o, projBatch(t))
	assert.Equal(t, 2, len(out.Schema().Fields))
	assert.Equal(t, uint64(1), bus.EmitCount())
}

func TestReplaceExistingSelectorChangesTypeWithoutWarning(t *testing.T) {
	o := project.New(project.Replace, []project.Assignment{
		{Selector: "a", Expr: expr.Literal{Value: value.String("now a string")}},
	})
	out, bus := run(t, o, projBatch(t))
	idx := out.Schema().FieldIndex("a")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, schema.String, out.Schema().Fields[idx].Type.Tag)
	assert.Equal(t, uint64(0), bus.EmitCount())
}

func TestSetExtendsWhenAbsentAndReplacesWhenPresent(t *testing.T) {
	o := project.New(project.Set, []project.Assignment{
		{Selector: "a", Expr: expr.Literal{Value: value.Int64(42)}},
		{Selector: "c", Expr: expr.Literal{Value: value.Int64(7)}},
	})
	out, _ := run(t, o, projBatch(t))
	assert.Equal(t, 3, len(out.Schema().Fields))
	row, err := batch.Row(out, 0)
	require.NoError(t, err)
	assert.Equal(t, value.Int64(42), row[0].Value)
}

func TestSchemaSelectorRenamesOutputSchema(t *testing.T) {
	o := project.New(project.Put, []project.Assignment{
		{Selector: "@schema", Expr: expr.Literal{Value: value.String("renamed")}},
		{Selector: "c", Expr: expr.Literal{Value: value.Int64(1)}},
	})
	out, _ := run(t, o, projBatch(t))
	assert.Equal(t, "renamed", out.Schema().Name)
}

func TestExtendRejectsSchemaSelectorAtInferKind(t *testing.T) {
	o := project.New(project.Extend, []project.Assignment{
		{Selector: "@schema", Expr: expr.Literal{Value: value.String("renamed")}},
	})
	_, err := o.InferKind(op.Kind{Schema: projSchema()})
	assert.Error(t, err)
}

func TestUnresolvableFieldPathAssignsNull(t *testing.T) {
	o := project.New(project.Extend, []project.Assignment{
		{Selector: "c", Expr: expr.FieldPath{Segments: []string{"does_not_exist"}}},
	})
	out, _ := run(t, o, projBatch(t))
	row, err := batch.Row(out, 0)
	require.NoError(t, err)
	idx := out.Schema().FieldIndex("c")
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, row[idx].Value.IsNull())
}
