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
	"strings"

	"github.com/f5/secflow/pkg/value"
)

// builtin is one function-call implementation. Every builtin must be total
// over its declared arity; type mismatches become a typeErr, which the
// evaluator downgrades to a warning plus a null column.
type builtin func(args []value.Value) (value.Value, error)

var builtins = map[string]builtin{
	"length":      builtinLength,
	"upper":       builtinUpper,
	"lower":       builtinLower,
	"concat":      builtinConcat,
	"string":      builtinToString,
	"starts_with": builtinStartsWith,
	"ends_with":   builtinEndsWith,
	"has":         builtinHas,
	"coalesce":    builtinCoalesce,
}

func callBuiltin(name string, args []value.Value) (value.Value, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, typeErr{fmt.Errorf("expr: unknown function %q", name)}
	}
	return fn(args)
}

func builtinLength(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, typeErr{fmt.Errorf("expr: length() takes 1 argument")}
	}
	switch v := args[0].(type) {
	case value.String:
		return value.Int64(len([]rune(string(v)))), nil
	case value.Bytes:
		return value.Int64(len(v)), nil
	case value.List:
		return value.Int64(len(v)), nil
	case value.Null:
		return value.Null{}, nil
	default:
		return nil, typeErr{fmt.Errorf("expr: length() not defined for %s", v.Kind())}
	}
}

func builtinUpper(args []value.Value) (value.Value, error) {
	s, err := oneString(args)
	if err != nil {
		return nil, err
	}
	return value.String(strings.ToUpper(string(s))), nil
}

func builtinLower(args []value.Value) (value.Value, error) {
	s, err := oneString(args)
	if err != nil {
		return nil, err
	}
	return value.String(strings.ToLower(string(s))), nil
}

func oneString(args []value.Value) (value.String, error) {
	if len(args) != 1 {
		return "", typeErr{fmt.Errorf("expr: expected 1 string argument")}
	}
	if isNull(args[0]) {
		return "", nil
	}
	s, ok := args[0].(value.String)
	if !ok {
		return "", typeErr{fmt.Errorf("expr: expected string, got %s", args[0].Kind())}
	}
	return s, nil
}

func builtinConcat(args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if isNull(a) {
			continue
		}
		s, ok := a.(value.String)
		if !ok {
			return nil, typeErr{fmt.Errorf("expr: concat() expects string arguments, got %s", a.Kind())}
		}
		b.WriteString(string(s))
	}
	return value.String(b.String()), nil
}

func builtinToString(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, typeErr{fmt.Errorf("expr: string() takes 1 argument")}
	}
	if isNull(args[0]) {
		return value.Null{}, nil
	}
	return value.String(args[0].String()), nil
}

func builtinStartsWith(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, typeErr{fmt.Errorf("expr: starts_with() takes 2 arguments")}
	}
	s, prefix, err := twoStrings(args)
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.HasPrefix(string(s), string(prefix))), nil
}

func builtinEndsWith(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, typeErr{fmt.Errorf("expr: ends_with() takes 2 arguments")}
	}
	s, suffix, err := twoStrings(args)
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.HasSuffix(string(s), string(suffix))), nil
}

func twoStrings(args []value.Value) (value.String, value.String, error) {
	a, ok := args[0].(value.String)
	if !ok {
		return "", "", typeErr{fmt.Errorf("expr: expected string, got %s", args[0].Kind())}
	}
	b, ok := args[1].(value.String)
	if !ok {
		return "", "", typeErr{fmt.Errorf("expr: expected string, got %s", args[1].Kind())}
	}
	return a, b, nil
}

func builtinHas(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, typeErr{fmt.Errorf("expr: has() takes 2 arguments")}
	}
	l, ok := args[0].(value.List)
	if !ok {
		return nil, typeErr{fmt.Errorf("expr: has() expects a list, got %s", args[0].Kind())}
	}
	for _, item := range l {
		if item.Equal(args[1]) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

// coalesce returns the first non-null argument, or null if all are null.
func builtinCoalesce(args []value.Value) (value.Value, error) {
	for _, a := range args {
		if !isNull(a) {
			return a, nil
		}
	}
	return value.Null{}, nil
}
