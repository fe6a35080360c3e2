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

// Package batch implements the columnar, reference-counted, immutable
// event batch: the rectangular container that crosses every transport in
// the execution substrate.
package batch

import (
	"fmt"
	"net"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

// appendValue writes v (whose schema type is t) into b, which was created
// against t.ArrowType(). Nested List/Record/Map types recurse into the
// child builders array.Builder hands back.
func appendValue(b array.Builder, t schema.Type, v value.Value) error {
	if v == nil || v.IsNull() {
		b.AppendNull()
		return nil
	}
	switch t.Tag {
	case schema.Null:
		b.AppendNull()
	case schema.Bool:
		bb, ok := b.(*array.BooleanBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		bb.Append(bool(v.(value.Bool)))
	case schema.Int64:
		bb, ok := b.(*array.Int64Builder)
		if !ok {
			return typeMismatch(t, b)
		}
		bb.Append(int64(v.(value.Int64)))
	case schema.Uint64:
		bb, ok := b.(*array.Uint64Builder)
		if !ok {
			return typeMismatch(t, b)
		}
		bb.Append(uint64(v.(value.Uint64)))
	case schema.Float64:
		bb, ok := b.(*array.Float64Builder)
		if !ok {
			return typeMismatch(t, b)
		}
		bb.Append(float64(v.(value.Float64)))
	case schema.Duration:
		bb, ok := b.(*array.DurationBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		bb.Append(arrow.Duration(v.(value.Duration)))
	case schema.Time:
		bb, ok := b.(*array.TimestampBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		bb.Append(arrow.Timestamp(time.Time(v.(value.Time)).UnixNano()))
	case schema.String:
		bb, ok := b.(*array.StringBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		bb.Append(string(v.(value.String)))
	case schema.Bytes:
		bb, ok := b.(*array.BinaryBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		bb.Append([]byte(v.(value.Bytes)))
	case schema.IP:
		bb, ok := b.(*array.FixedSizeBinaryBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		ip := net.IP(v.(value.IP)).To16()
		bb.Append(ip)
	case schema.Subnet:
		bb, ok := b.(*array.StructBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		s := v.(value.Subnet)
		bb.Append(true)
		addrB := bb.FieldBuilder(0).(*array.FixedSizeBinaryBuilder)
		addrB.Append(s.Addr.To16())
		prefixB := bb.FieldBuilder(1).(*array.Uint8Builder)
		prefixB.Append(s.Prefix)
	case schema.EnumTag:
		bb, ok := b.(*array.Uint16Builder)
		if !ok {
			return typeMismatch(t, b)
		}
		bb.Append(v.(value.Enum).Index)
	case schema.ListTag:
		lb, ok := b.(*array.ListBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		lst := v.(value.List)
		lb.Append(true)
		inner := lb.ValueBuilder()
		for _, elem := range lst {
			if err := appendValue(inner, *t.Elem, elem); err != nil {
				return err
			}
		}
	case schema.RecordTag:
		sb, ok := b.(*array.StructBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		rec := v.(value.Record)
		sb.Append(true)
		for i, f := range t.Fields {
			fv, ok := rec.Get(f.Name)
			if !ok {
				fv = value.Null{}
			}
			if err := appendValue(sb.FieldBuilder(i), f.Type, fv); err != nil {
				return err
			}
		}
	case schema.MapTag:
		lb, ok := b.(*array.ListBuilder)
		if !ok {
			return typeMismatch(t, b)
		}
		m := v.(value.Map)
		lb.Append(true)
		entryB := lb.ValueBuilder().(*array.StructBuilder)
		for _, e := range m {
			entryB.Append(true)
			if err := appendValue(entryB.FieldBuilder(0), *t.Key, e.Key); err != nil {
				return err
			}
			if err := appendValue(entryB.FieldBuilder(1), *t.Value, e.Value); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("batch: unsupported type tag %s", t.Tag)
	}
	return nil
}

// readValue reads the value at (arr, row) back out, given its schema type.
func readValue(arr arrow.Array, row int, t schema.Type) (value.Value, error) {
	if arr.IsNull(row) {
		return value.Null{}, nil
	}
	switch t.Tag {
	case schema.Null:
		return value.Null{}, nil
	case schema.Bool:
		return value.Bool(arr.(*array.Boolean).Value(row)), nil
	case schema.Int64:
		return value.Int64(arr.(*array.Int64).Value(row)), nil
	case schema.Uint64:
		return value.Uint64(arr.(*array.Uint64).Value(row)), nil
	case schema.Float64:
		return value.Float64(arr.(*array.Float64).Value(row)), nil
	case schema.Duration:
		return value.Duration(arr.(*array.Duration).Value(row)), nil
	case schema.Time:
		ts := arr.(*array.Timestamp).Value(row)
		return value.Time(time.Unix(0, int64(ts))), nil
	case schema.String:
		return value.String(arr.(*array.String).Value(row)), nil
	case schema.Bytes:
		return value.Bytes(arr.(*array.Binary).Value(row)), nil
	case schema.IP:
		b := arr.(*array.FixedSizeBinary).Value(row)
		cp := make([]byte, len(b))
		copy(cp, b)
		return value.NewIP(net.IP(cp)), nil
	case schema.Subnet:
		st := arr.(*array.Struct)
		addr := st.Field(0).(*array.FixedSizeBinary).Value(row)
		cp := make([]byte, len(addr))
		copy(cp, addr)
		prefix := st.Field(1).(*array.Uint8).Value(row)
		return value.Subnet{Addr: net.IP(cp), Prefix: prefix}, nil
	case schema.EnumTag:
		idx := arr.(*array.Uint16).Value(row)
		name := ""
		if int(idx) < len(t.Enum) {
			name = t.Enum[idx]
		}
		return value.Enum{Name: name, Index: idx}, nil
	case schema.ListTag:
		l := arr.(*array.List)
		start := int(l.Offsets()[row])
		end := int(l.Offsets()[row+1])
		values := l.ListValues()
		out := make(value.List, 0, end-start)
		for i := start; i < end; i++ {
			ev, err := readValue(values, i, *t.Elem)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	case schema.RecordTag:
		st := arr.(*array.Struct)
		fields := make(value.Record, len(t.Fields))
		for i, f := range t.Fields {
			fv, err := readValue(st.Field(i), row, f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = value.Field{Name: f.Name, Value: fv}
		}
		return fields, nil
	case schema.MapTag:
		l := arr.(*array.List)
		start := int(l.Offsets()[row])
		end := int(l.Offsets()[row+1])
		entries := l.ListValues().(*array.Struct)
		out := make(value.Map, 0, end-start)
		for i := start; i < end; i++ {
			k, err := readValue(entries.Field(0), i, *t.Key)
			if err != nil {
				return nil, err
			}
			val, err := readValue(entries.Field(1), i, *t.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, value.MapEntry{Key: k, Value: val})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("batch: unsupported type tag %s", t.Tag)
	}
}

func typeMismatch(t schema.Type, b array.Builder) error {
	return fmt.Errorf("batch: builder %T does not match schema type %s", b, t.Tag)
}

// newFieldBuilders returns one builder per top-level field of s, backed by
// pool. Callers must Release() every builder once done.
func newFieldBuilders(pool memory.Allocator, s schema.Schema) []array.Builder {
	builders := make([]array.Builder, len(s.Fields))
	for i, f := range s.Fields {
		builders[i] = array.NewBuilder(pool, f.Type.ArrowType())
	}
	return builders
}
