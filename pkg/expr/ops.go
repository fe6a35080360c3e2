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

	"github.com/f5/secflow/pkg/value"
)

// evalBinary applies op to l and r. Null on either side propagates to
// null for every operator except and/or, which apply three-valued logic
// (spec.md does not require this for arithmetic/comparison operators).
func evalBinary(op BinaryOp, l, r value.Value) (value.Value, error) {
	switch op {
	case OpAnd, OpOr:
		return evalLogical(op, l, r)
	}
	if isNull(l) || isNull(r) {
		return value.Null{}, nil
	}
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return evalArith(op, l, r)
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return evalCompare(op, l, r)
	default:
		return nil, typeErr{fmt.Errorf("expr: unknown binary operator %q", op)}
	}
}

func isNull(v value.Value) bool { return v == nil || v.IsNull() }

func evalLogical(op BinaryOp, l, r value.Value) (value.Value, error) {
	lb, lok := l.(value.Bool)
	rb, rok := r.(value.Bool)
	switch op {
	case OpAnd:
		if lok && !bool(lb) {
			return value.Bool(false), nil
		}
		if rok && !bool(rb) {
			return value.Bool(false), nil
		}
		if lok && rok {
			return value.Bool(lb && rb), nil
		}
		return value.Null{}, nil
	case OpOr:
		if lok && bool(lb) {
			return value.Bool(true), nil
		}
		if rok && bool(rb) {
			return value.Bool(true), nil
		}
		if lok && rok {
			return value.Bool(lb || rb), nil
		}
		return value.Null{}, nil
	default:
		return nil, typeErr{fmt.Errorf("expr: not a logical operator: %q", op)}
	}
}

func evalArith(op BinaryOp, l, r value.Value) (value.Value, error) {
	if l.Kind() != r.Kind() {
		return nil, typeErr{fmt.Errorf("expr: arithmetic operand kinds differ: %s vs %s", l.Kind(), r.Kind())}
	}
	switch lv := l.(type) {
	case value.Int64:
		rv := r.(value.Int64)
		switch op {
		case OpAdd:
			return lv + rv, nil
		case OpSub:
			return lv - rv, nil
		case OpMul:
			return lv * rv, nil
		case OpDiv:
			if rv == 0 {
				return value.Null{}, nil
			}
			return lv / rv, nil
		case OpMod:
			if rv == 0 {
				return value.Null{}, nil
			}
			return lv % rv, nil
		}
	case value.Uint64:
		rv := r.(value.Uint64)
		switch op {
		case OpAdd:
			return lv + rv, nil
		case OpSub:
			return lv - rv, nil
		case OpMul:
			return lv * rv, nil
		case OpDiv:
			if rv == 0 {
				return value.Null{}, nil
			}
			return lv / rv, nil
		case OpMod:
			if rv == 0 {
				return value.Null{}, nil
			}
			return lv % rv, nil
		}
	case value.Float64:
		rv := r.(value.Float64)
		switch op {
		case OpAdd:
			return lv + rv, nil
		case OpSub:
			return lv - rv, nil
		case OpMul:
			return lv * rv, nil
		case OpDiv:
			return lv / rv, nil
		}
	case value.Duration:
		rv := r.(value.Duration)
		switch op {
		case OpAdd:
			return lv + rv, nil
		case OpSub:
			return lv - rv, nil
		}
	case value.String:
		rv := r.(value.String)
		if op == OpAdd {
			return lv + rv, nil
		}
	}
	return nil, typeErr{fmt.Errorf("expr: operator %q not defined for %s", op, l.Kind())}
}

func evalCompare(op BinaryOp, l, r value.Value) (value.Value, error) {
	if l.Kind() != r.Kind() {
		if op == OpEq {
			return value.Bool(false), nil
		}
		if op == OpNe {
			return value.Bool(true), nil
		}
		return nil, typeErr{fmt.Errorf("expr: cannot compare %s with %s", l.Kind(), r.Kind())}
	}
	c := l.Compare(r)
	switch op {
	case OpEq:
		return value.Bool(c == 0), nil
	case OpNe:
		return value.Bool(c != 0), nil
	case OpLt:
		return value.Bool(c < 0), nil
	case OpLe:
		return value.Bool(c <= 0), nil
	case OpGt:
		return value.Bool(c > 0), nil
	case OpGe:
		return value.Bool(c >= 0), nil
	default:
		return nil, typeErr{fmt.Errorf("expr: unknown comparison operator %q", op)}
	}
}

func evalUnary(op UnaryOp, v value.Value) (value.Value, error) {
	if isNull(v) {
		return value.Null{}, nil
	}
	switch op {
	case OpNeg:
		switch vv := v.(type) {
		case value.Int64:
			return -vv, nil
		case value.Float64:
			return -vv, nil
		default:
			return nil, typeErr{fmt.Errorf("expr: unary - not defined for %s", v.Kind())}
		}
	case OpNot:
		vv, ok := v.(value.Bool)
		if !ok {
			return nil, typeErr{fmt.Errorf("expr: unary not not defined for %s", v.Kind())}
		}
		return !vv, nil
	default:
		return nil, typeErr{fmt.Errorf("expr: unknown unary operator %q", op)}
	}
}
