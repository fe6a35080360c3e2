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

package schema

import (
	"github.com/f5/secflow/pkg/value"
)

// Infer derives the schema Type of a single value. Lists whose elements
// disagree on type return ErrHeterogeneousList. pkg/batch does not call
// Infer; its callers in pkg/expr and pkg/ops fall back to a null column
// type, and none of them builds a multi-column representation.
func Infer(v value.Value) (Type, error) {
	switch vv := v.(type) {
	case value.Null:
		return Scalar(Null), nil
	case value.Bool:
		return Scalar(Bool), nil
	case value.Int64:
		return Scalar(Int64), nil
	case value.Uint64:
		return Scalar(Uint64), nil
	case value.Float64:
		return Scalar(Float64), nil
	case value.Duration:
		return Scalar(Duration), nil
	case value.Time:
		return Scalar(Time), nil
	case value.String:
		return Scalar(String), nil
	case value.Bytes:
		return Scalar(Bytes), nil
	case value.IP:
		return Scalar(IP), nil
	case value.Subnet:
		return Scalar(Subnet), nil
	case value.Enum:
		return EnumOf(vv.Name), nil
	case value.List:
		if len(vv) == 0 {
			return ListOf(Scalar(Null)), nil
		}
		elem, err := Infer(vv[0])
		if err != nil {
			return Type{}, err
		}
		for _, item := range vv[1:] {
			next, err := Infer(item)
			if err != nil {
				return Type{}, err
			}
			if !next.Equal(elem) {
				return Type{}, ErrHeterogeneousList
			}
		}
		return ListOf(elem), nil
	case value.Record:
		fields := make([]Field, len(vv))
		for i, f := range vv {
			ft, err := Infer(f.Value)
			if err != nil {
				return Type{}, err
			}
			fields[i] = Field{Name: f.Name, Type: ft}
		}
		return RecordOf(fields...), nil
	case value.Map:
		if len(vv) == 0 {
			return MapOf(Scalar(Null), Scalar(Null)), nil
		}
		keyType, err := Infer(vv[0].Key)
		if err != nil {
			return Type{}, err
		}
		valType, err := Infer(vv[0].Value)
		if err != nil {
			return Type{}, err
		}
		return MapOf(keyType, valType), nil
	default:
		return Scalar(Null), nil
	}
}

// InferRecordSchema derives a full Schema (with the given name) from a
// value.Record, as used by RecordRepository-style ingestion.
func InferRecordSchema(name string, r value.Record) (Schema, error) {
	t, err := Infer(r)
	if err != nil {
		return Schema{}, err
	}
	return New(name, t.Fields...), nil
}
