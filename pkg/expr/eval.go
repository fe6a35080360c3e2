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

package expr

import (
	"fmt"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/diag"
	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

// typeErr marks a failure the evaluator treats as "cannot be typed against
// the batch's schema" per spec.md §4.C: it downgrades to a warning and a
// null column rather than aborting the batch.
type typeErr struct{ err error }

func (e typeErr) Error() string { return e.err.Error() }

// Eval evaluates e against every row of b and returns the resulting
// MultiSeries. On a type error, a warning diagnostic is sent to bus (if
// non-nil) and the result is a single null-typed shard covering every row.
func Eval(b batch.Batch, e Expr, bus *diag.Bus) MultiSeries {
	n := b.NumRows()
	values := make([]value.Value, n)
	var evalErr error
	for row := int64(0); row < n; row++ {
		rec, err := batch.Row(b, row)
		if err != nil {
			evalErr = err
			break
		}
		v, err := evalRow(rec, b, e)
		if err != nil {
			evalErr = err
			break
		}
		values[row] = v
	}
	if evalErr != nil {
		if bus != nil {
			bus.Emit(diag.Warningf(diag.KindTypeClash, "expression could not be typed against batch schema: %s", evalErr))
		}
		nulls := make([]value.Value, n)
		for i := range nulls {
			nulls[i] = value.Null{}
		}
		return Single(schema.Scalar(schema.Null), nulls)
	}
	t := inferColumnType(values)
	return Single(t, values)
}

func inferColumnType(values []value.Value) schema.Type {
	for _, v := range values {
		if v == nil || v.IsNull() {
			continue
		}
		if t, err := schema.Infer(v); err == nil {
			return t
		}
	}
	return schema.Scalar(schema.Null)
}

func evalRow(rec value.Record, b batch.Batch, e Expr) (value.Value, error) {
	switch n := e.(type) {
	case Literal:
		return n.Value, nil

	case FieldPath:
		return resolvePath(rec, n.Segments), nil

	case Meta:
		return evalMeta(n, b), nil

	case Call:
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := evalRow(rec, b, a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return callBuiltin(n.Name, args)

	case Binary:
		l, err := evalRow(rec, b, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := evalRow(rec, b, n.Right)
		if err != nil {
			return nil, err
		}
		return evalBinary(n.Op, l, r)

	case Unary:
		v, err := evalRow(rec, b, n.Operand)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.Op, v)

	case ListLit:
		out := make(value.List, len(n.Elems))
		for i, el := range n.Elems {
			v, err := evalRow(rec, b, el)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case RecordLit:
		out := make(value.Record, len(n.Fields))
		for i, f := range n.Fields {
			v, err := evalRow(rec, b, f.Value)
			if err != nil {
				return nil, err
			}
			out[i] = value.Field{Name: f.Name, Value: v}
		}
		return out, nil

	case Index:
		base, err := evalRow(rec, b, n.Base)
		if err != nil {
			return nil, err
		}
		key, err := evalRow(rec, b, n.Key)
		if err != nil {
			return nil, err
		}
		return evalIndex(base, key)

	case If:
		cond, err := evalRow(rec, b, n.Cond)
		if err != nil {
			return nil, err
		}
		c, ok := cond.(value.Bool)
		if !ok || cond == nil || cond.IsNull() {
			return value.Null{}, nil
		}
		if bool(c) {
			return evalRow(rec, b, n.Then)
		}
		return evalRow(rec, b, n.Else)

	default:
		return nil, typeErr{fmt.Errorf("expr: unknown node %T", e)}
	}
}

// resolvePath walks dotted segments through nested Records. An
// unresolvable segment (missing field or non-Record parent) resolves to
// null rather than failing evaluation (spec.md §4.B).
func resolvePath(rec value.Record, segments []string) value.Value {
	cur := value.Value(rec)
	for _, seg := range segments {
		r, ok := cur.(value.Record)
		if !ok {
			return value.Null{}
		}
		v, ok := r.Get(seg)
		if !ok {
			return value.Null{}
		}
		cur = v
	}
	return cur
}

func evalMeta(m Meta, b batch.Batch) value.Value {
	switch m.Kind {
	case MetaSchemaName:
		return value.String(b.Schema().Name)
	case MetaSchemaFingerprint:
		return value.String(fmt.Sprintf("%x", uint64(b.Schema().Fingerprint())))
	case MetaImportTime:
		if it := b.ImportTime(); it != nil {
			return value.Time(*it)
		}
		return value.Null{}
	default:
		return value.Null{}
	}
}

func evalIndex(base, key value.Value) (value.Value, error) {
	switch b := base.(type) {
	case value.List:
		idx, ok := key.(value.Int64)
		if !ok {
			return nil, typeErr{fmt.Errorf("expr: list index must be int64, got %s", kindName(key))}
		}
		i := int64(idx)
		if i < 0 || i >= int64(len(b)) {
			return value.Null{}, nil
		}
		return b[i], nil
	case value.Map:
		for _, e := range b {
			if e.Key.Equal(key) {
				return e.Value, nil
			}
		}
		return value.Null{}, nil
	default:
		return nil, typeErr{fmt.Errorf("expr: cannot index into %s", kindName(base))}
	}
}

func kindName(v value.Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Kind().String()
}
