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

// Package project implements the put/extend/replace/set operator family
// (spec.md §4.H): each assigns a list of expressions into dotted field
// selectors, differing only in how an assignment interacts with fields
// already present on the input row.
package project

import (
	"fmt"

	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/diag"
	"github.com/f5/secflow/pkg/expr"
	"github.com/f5/secflow/pkg/op"
	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

// Mode selects which member of the put/extend/replace/set family an
// Operator behaves as.
type Mode string

const (
	Put     Mode = "put"
	Extend  Mode = "extend"
	Replace Mode = "replace"
	Set     Mode = "set"
)

// Assignment is one "selector = expr" entry of a projection operator's
// configuration, evaluated in order.
type Assignment struct {
	Selector string
	Expr     expr.Expr
}

// schemaSelector is the reserved "@schema" selector that renames the
// operator's output schema instead of assigning a field (spec.md §4.H).
const schemaSelector = "@schema"

// Operator is the put/extend/replace/set configuration. Expr trees are
// not generically wire-serializable through the op.Registry JSON codec
// (they are a tagged-interface AST with no registered envelope of their
// own); Copy below deep-copies in process, which is what pipeline
// execution actually exercises, and is the documented gap for true wire
// Encode/Decode of a configured expression tree.
type Operator struct {
	Mode        Mode
	Assignments []Assignment
}

func New(mode Mode, assignments []Assignment) *Operator {
	return &Operator{Mode: mode, Assignments: assignments}
}

func (o *Operator) Name() string { return "project." + string(o.Mode) }

func (o *Operator) InferKind(input op.Kind) (op.Kind, error) {
	src := input.Schema
	// Absent an explicit @schema assignment, the output schema takes a
	// mode-specific default name rather than carrying forward whatever
	// the input was called (spec.md §4.H S4: put's default is
	// "secflow.put"), matching pkg/ops/aggregate's own default naming.
	name := "secflow." + string(o.Mode)

	var outFields []schema.Field
	if o.Mode != Put {
		outFields = append([]schema.Field{}, src.Fields...)
	}

	for _, a := range o.Assignments {
		if a.Selector == schemaSelector {
			if o.Mode == Extend {
				return op.Kind{}, fmt.Errorf("project: @schema is not valid under extend")
			}
			if lit, ok := a.Expr.(expr.Literal); ok {
				if s, ok := lit.Value.(value.String); ok {
					name = string(s)
				}
			}
			continue
		}
		segs := expr.ParseSelector(a.Selector).Segments
		vt, ok := staticType(a.Expr, src)
		if !ok {
			vt = schema.Scalar(schema.Null)
		}
		switch o.Mode {
		case Extend:
			if fieldExists(outFields, segs) {
				continue
			}
		case Replace:
			if !fieldExists(outFields, segs) {
				continue
			}
		}
		outFields = widenFields(outFields, segs, vt)
	}
	return op.Kind{Schema: schema.New(name, outFields...)}, nil
}

// staticType best-effort infers an expression's output type without
// evaluating any row; it only resolves literals and plain field lookups.
// Anything else (arithmetic, calls, conditionals) is resolved dynamically
// per batch in Next, matching the rest of the evaluator's row-wise typing
// model (pkg/expr/eval.go), so InferKind's schema is advisory for the
// planner rather than a binding static guarantee.
func staticType(e expr.Expr, base schema.Schema) (schema.Type, bool) {
	switch v := e.(type) {
	case expr.Literal:
		t, err := schema.Infer(v.Value)
		if err != nil {
			return schema.Type{}, false
		}
		return t, true
	case expr.FieldPath:
		t := schema.RecordOf(base.Fields...)
		for _, seg := range v.Segments {
			idx := -1
			for i, f := range t.Fields {
				if f.Name == seg {
					idx = i
					break
				}
			}
			if idx < 0 {
				return schema.Type{}, false
			}
			t = t.Fields[idx].Type
		}
		return t, true
	default:
		return schema.Type{}, false
	}
}

func fieldExists(fields []schema.Field, segs []string) bool {
	for i, seg := range segs {
		idx := -1
		for j, f := range fields {
			if f.Name == seg {
				idx = j
				break
			}
		}
		if idx < 0 {
			return false
		}
		if i == len(segs)-1 {
			return true
		}
		fields = fields[idx].Type.Fields
	}
	return false
}

func widenFields(fields []schema.Field, segs []string, vt schema.Type) []schema.Field {
	base := schema.RecordOf(fields...)
	widened := expr.WidenSchema(base, segs, vt)
	return widened.Fields
}

func (o *Operator) Optimize(filter expr.Expr, order op.Order) op.OptimizeResult {
	return op.OptimizeResult{Replacement: o, ResidualFilter: filter, RequiredOrder: order}
}

func (o *Operator) Copy() op.Operator {
	cp := &Operator{Mode: o.Mode, Assignments: make([]Assignment, len(o.Assignments))}
	copy(cp.Assignments, o.Assignments)
	return cp
}

func (o *Operator) Location() op.Location { return op.Anywhere }

func (o *Operator) Internal() bool { return false }

func (o *Operator) Detached() bool { return false }

func (o *Operator) Instantiate(in op.Input, ctrl op.Control) op.Instance {
	inst := &instance{op: o, input: in, ctrl: ctrl}
	return op.InstanceFunc(inst.next)
}

type instance struct {
	op    *Operator
	input op.Input
	ctrl  op.Control
}

func (in *instance) next() (op.Step, batch.Batch, error) {
	b, ok := in.input.Recv()
	if !ok {
		return op.StepFinished, batch.Batch{}, nil
	}

	bus := in.ctrl.Diagnostics()
	inputSchema := b.Schema()
	// See InferKind: the default output schema name is mode-specific,
	// not a carry-forward of the input schema's name.
	outName := "secflow." + string(in.op.Mode)

	type plannedAssignment struct {
		segs   []string
		series expr.MultiSeries
	}
	var planned []plannedAssignment
	skip := make(map[string]bool)

	for _, a := range in.op.Assignments {
		if a.Selector == schemaSelector {
			if in.op.Mode == Extend {
				continue // InferKind already rejects this at plan time
			}
			if lit, ok := a.Expr.(expr.Literal); ok {
				if s, ok := lit.Value.(value.String); ok {
					outName = string(s)
				}
			}
			continue
		}
		segs := expr.ParseSelector(a.Selector).Segments
		switch in.op.Mode {
		case Extend:
			if fieldExists(inputSchema.Fields, segs) || skip[a.Selector] {
				if bus != nil {
					bus.Emit(diag.Warningf(diag.KindLogicError, "extend: selector %q already exists, ignored", a.Selector))
				}
				continue
			}
		case Replace:
			if !fieldExists(inputSchema.Fields, segs) {
				if bus != nil {
					bus.Emit(diag.Warningf(diag.KindLogicError, "replace: selector %q does not exist, ignored", a.Selector))
				}
				continue
			}
		}
		skip[a.Selector] = true
		series := expr.Eval(b, a.Expr, bus)
		planned = append(planned, plannedAssignment{segs: segs, series: series})
	}

	rows := b.NumRows()
	outRows := make([]value.Record, rows)
	for row := int64(0); row < rows; row++ {
		var rec value.Record
		if in.op.Mode != Put {
			r, err := batch.Row(b, row)
			if err != nil {
				return op.StepFinished, batch.Batch{}, err
			}
			rec = r
		}
		for _, pa := range planned {
			rec = expr.Assign(rec, expr.Selector{Segments: pa.segs}, pa.series.At(row))
		}
		outRows[row] = rec
	}

	var baseFields []schema.Field
	if in.op.Mode != Put {
		baseFields = b.Schema().Fields
	}
	for _, pa := range planned {
		vt, err := inferSeriesType(pa.series)
		if err != nil {
			vt = schema.Scalar(schema.Null)
		}
		baseFields = expr.WidenSchema(schema.RecordOf(baseFields...), pa.segs, vt).Fields
	}
	outSchema := schema.New(outName, baseFields...)

	pool := memory.NewGoAllocator()
	out, err := batch.FromRows(pool, outSchema, outRows)
	if err != nil {
		return op.StepFinished, batch.Batch{}, err
	}
	return op.StepYield, out, nil
}

func inferSeriesType(s expr.MultiSeries) (schema.Type, error) {
	for _, v := range s.Flatten() {
		if v != nil && !v.IsNull() {
			return schema.Infer(v)
		}
	}
	return schema.Scalar(schema.Null), nil
}
