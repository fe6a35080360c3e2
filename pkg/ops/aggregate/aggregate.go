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

// Package aggregate implements the group/aggregate operator (spec.md
// §4.I): a group key per row, a structural-hash bucket map, and one
// output row per bucket emitted only once the input is exhausted.
//
// Bucketing trusts the structural hash as the bucket identity, per
// spec.md's own framing ("bucketing via structural-hash map"); a true
// collision between two distinct group keys would merge their rows. The
// rest of the substrate (schema fingerprints, MultiSeries row coverage)
// makes the same trade-off, so this is consistent rather than a
// shortcut unique to this operator.
package aggregate

import (
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/expr"
	"github.com/f5/secflow/pkg/op"
	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

// Func is an aggregation function applied to one column expression.
type Func string

const (
	Sum      Func = "sum"
	Min      Func = "min"
	Max      Func = "max"
	Count    Func = "count"
	CountIf  Func = "count_if"
	Mean     Func = "mean"
	Any      Func = "any"
	All      Func = "all"
	First    Func = "first"
	Last     Func = "last"
	Distinct Func = "distinct"
	Collect  Func = "collect"
)

// GroupKey is one grouping column: Name is its output field name, Expr is
// evaluated per row to produce the value contributing to the bucket key.
type GroupKey struct {
	Name string
	Expr expr.Expr
}

// Aggregation is one output column computed over rows sharing a bucket.
// Arg is nil for Count; every other function reads a value from Arg
// (count_if reads a boolean).
type Aggregation struct {
	Name string
	Func Func
	Arg  expr.Expr
}

// Operator is the group/aggregate configuration. Like pkg/ops/project,
// its Expr-valued fields are not generically wire-serializable through
// the op.Registry JSON codec; Copy below is the in-process deep copy
// pipeline execution actually exercises.
type Operator struct {
	Groups       []GroupKey
	Aggregations []Aggregation
}

func New(groups []GroupKey, aggs []Aggregation) *Operator {
	return &Operator{Groups: groups, Aggregations: aggs}
}

func (o *Operator) Name() string { return "aggregate" }

// InferKind returns an advisory schema: group columns are typed Null
// (their real type depends on the data, resolved dynamically once rows
// are known, same as pkg/ops/project) and aggregation columns are typed
// by each function's identity element. An unrecognized Func is rejected
// here rather than silently degrading to some other function at run time.
func (o *Operator) InferKind(op.Kind) (op.Kind, error) {
	fields := make([]schema.Field, 0, len(o.Groups)+len(o.Aggregations))
	for _, g := range o.Groups {
		fields = append(fields, schema.Field{Name: g.Name, Type: schema.Scalar(schema.Null)})
	}
	for _, a := range o.Aggregations {
		acc, err := newAccumulator(a.Func)
		if err != nil {
			return op.Kind{}, err
		}
		t, err := schema.Infer(acc.Result())
		if err != nil {
			t = schema.Scalar(schema.Null)
		}
		fields = append(fields, schema.Field{Name: a.Name, Type: t})
	}
	return op.Kind{Schema: schema.New("secflow.aggregate", fields...)}, nil
}

func (o *Operator) Optimize(filter expr.Expr, order op.Order) op.OptimizeResult {
	// Group/aggregate cannot absorb a filter on its own output (it hasn't
	// computed it yet) and does not itself require a particular input
	// order, since bucketing is order-independent.
	return op.OptimizeResult{Replacement: o, ResidualFilter: filter, RequiredOrder: order}
}

func (o *Operator) Copy() op.Operator {
	cp := &Operator{Groups: make([]GroupKey, len(o.Groups)), Aggregations: make([]Aggregation, len(o.Aggregations))}
	copy(cp.Groups, o.Groups)
	copy(cp.Aggregations, o.Aggregations)
	return cp
}

func (o *Operator) Location() op.Location { return op.Anywhere }

func (o *Operator) Internal() bool { return false }

func (o *Operator) Detached() bool { return false }

func (o *Operator) Instantiate(in op.Input, ctrl op.Control) op.Instance {
	inst := &instance{op: o, input: in, ctrl: ctrl, buckets: make(map[uint64]*bucket)}
	for _, a := range o.Aggregations {
		if _, err := newAccumulator(a.Func); err != nil {
			inst.initErr = err
			break
		}
	}
	return op.InstanceFunc(inst.next)
}

// bucket is one group's accumulated state.
type bucket struct {
	groupValues []value.Value
	accs        []accumulator
}

type instance struct {
	op      *Operator
	input   op.Input
	ctrl    op.Control
	buckets map[uint64]*bucket
	order   []uint64 // first-seen bucket order, for deterministic emission
	emitted bool

	// initErr is set by Instantiate if any configured Func is
	// unrecognized, so running the operator fails loudly instead of
	// silently substituting a different aggregation.
	initErr error
}

func (in *instance) next() (op.Step, batch.Batch, error) {
	if in.initErr != nil {
		return op.StepFinished, batch.Batch{}, in.initErr
	}
	if in.emitted {
		return op.StepFinished, batch.Batch{}, nil
	}

	b, ok := in.input.Recv()
	if !ok {
		in.emitted = true
		return op.StepYield, in.emit(), nil
	}

	bus := in.ctrl.Diagnostics()
	groupSeries := make([]expr.MultiSeries, len(in.op.Groups))
	for i, g := range in.op.Groups {
		groupSeries[i] = expr.Eval(b, g.Expr, bus)
	}
	argSeries := make([]expr.MultiSeries, len(in.op.Aggregations))
	for i, a := range in.op.Aggregations {
		if a.Arg != nil {
			argSeries[i] = expr.Eval(b, a.Arg, bus)
		}
	}

	rows := b.NumRows()
	for row := int64(0); row < rows; row++ {
		keyVals := make([]value.Value, len(groupSeries))
		for i, s := range groupSeries {
			keyVals[i] = s.At(row)
		}
		h := value.StructuralHash(value.List(keyVals))
		bk, ok := in.buckets[h]
		if !ok {
			bk = &bucket{groupValues: keyVals, accs: make([]accumulator, len(in.op.Aggregations))}
			for i, a := range in.op.Aggregations {
				// err is ignored: Instantiate already rejected any
				// unrecognized Func before this instance ever ran.
				acc, _ := newAccumulator(a.Func)
				bk.accs[i] = acc
			}
			in.buckets[h] = bk
			in.order = append(in.order, h)
		}
		for i, a := range in.op.Aggregations {
			var v value.Value
			if a.Arg != nil {
				v = argSeries[i].At(row)
			}
			bk.accs[i].Update(v)
		}
	}
	return op.StepHeartbeat, batch.Batch{}, nil
}

// emit builds the single output batch: one row per bucket in first-seen
// order, or exactly one row of identity elements if the configuration has
// no group keys and no input row was ever observed (spec.md §4.I).
func (in *instance) emit() batch.Batch {
	var rows []value.Record
	if len(in.order) == 0 && len(in.op.Groups) == 0 {
		rec := make(value.Record, 0, len(in.op.Aggregations))
		for _, a := range in.op.Aggregations {
			// err is ignored: Instantiate already rejected any
			// unrecognized Func before this instance ever ran.
			acc, _ := newAccumulator(a.Func)
			rec = append(rec, value.Field{Name: a.Name, Value: acc.Result()})
		}
		rows = []value.Record{rec}
	} else {
		rows = make([]value.Record, 0, len(in.order))
		for _, h := range in.order {
			bk := in.buckets[h]
			rec := make(value.Record, 0, len(in.op.Groups)+len(in.op.Aggregations))
			for i, g := range in.op.Groups {
				rec = append(rec, value.Field{Name: g.Name, Value: bk.groupValues[i]})
			}
			for i, a := range in.op.Aggregations {
				rec = append(rec, value.Field{Name: a.Name, Value: bk.accs[i].Result()})
			}
			rows = append(rows, rec)
		}
	}

	var fields []schema.Field
	if len(rows) == 0 {
		// No group keys were ever observed (len(in.op.Groups) > 0, so the
		// identity-row branch above did not apply): zero groups means
		// zero output rows, so the schema falls back to each
		// aggregation's identity type.
		kind, _ := in.op.InferKind(op.Kind{})
		fields = kind.Schema.Fields
	} else {
		fields = make([]schema.Field, len(rows[0]))
		for i, f := range rows[0] {
			t, err := schema.Infer(f.Value)
			if err != nil {
				t = schema.Scalar(schema.Null)
			}
			fields[i] = schema.Field{Name: f.Name, Type: t}
		}
	}

	s := schema.New("secflow.aggregate", fields...)
	pool := memory.NewGoAllocator()
	out, err := batch.FromRows(pool, s, rows)
	if err != nil {
		return batch.Empty(s)
	}
	return out
}
