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

// Package schema implements schema identity: the Type/Field/Schema tree and
// the content-addressable fingerprint that two independently constructed
// schemas share iff they are structurally identical.
package schema

import (
	"github.com/apache/arrow/go/v12/arrow"
)

// Type is one node of a schema's type tree.
type Type struct {
	Tag Tag

	// Enum holds the ordered symbolic names, valid only when Tag == EnumTag.
	Enum []string
	// Elem is the element type, valid only when Tag == ListTag.
	Elem *Type
	// Fields is the field list, valid only when Tag == RecordTag.
	Fields []Field
	// Key/Value describe a Map's domain and range, valid only when Tag == MapTag.
	Key   *Type
	Value *Type
}

// Tag enumerates the schema-level type constructors. It is distinct from
// value.Kind because List/Record/Map carry recursive structure here.
type Tag uint8

const (
	Null Tag = iota
	Bool
	Int64
	Uint64
	Float64
	Duration
	Time
	String
	Bytes
	IP
	Subnet
	EnumTag
	ListTag
	RecordTag
	MapTag
)

func (t Tag) String() string {
	names := [...]string{
		"null", "bool", "int64", "uint64", "double", "duration", "time",
		"string", "bytes", "ip", "subnet", "enum", "list", "record", "map",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// Field is one named, ordered member of a Record type.
type Field struct {
	Name string
	Type Type
}

func Scalar(tag Tag) Type { return Type{Tag: tag} }

func EnumOf(names ...string) Type { return Type{Tag: EnumTag, Enum: names} }

func ListOf(elem Type) Type { return Type{Tag: ListTag, Elem: &elem} }

func RecordOf(fields ...Field) Type { return Type{Tag: RecordTag, Fields: fields} }

func MapOf(key, val Type) Type { return Type{Tag: MapTag, Key: &key, Value: &val} }

// ArrowType returns the Apache Arrow physical representation used by
// pkg/batch to back a column of this type.
func (t Type) ArrowType() arrow.DataType {
	switch t.Tag {
	case Null:
		return arrow.Null
	case Bool:
		return arrow.FixedWidthTypes.Boolean
	case Int64:
		return arrow.PrimitiveTypes.Int64
	case Uint64:
		return arrow.PrimitiveTypes.Uint64
	case Float64:
		return arrow.PrimitiveTypes.Float64
	case Duration:
		return arrow.FixedWidthTypes.Duration_ns
	case Time:
		return arrow.FixedWidthTypes.Timestamp_ns
	case String:
		return arrow.BinaryTypes.String
	case Bytes:
		return arrow.BinaryTypes.Binary
	case IP:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}
	case Subnet:
		return arrow.StructOf(
			arrow.Field{Name: "addr", Type: &arrow.FixedSizeBinaryType{ByteWidth: 16}},
			arrow.Field{Name: "prefix", Type: arrow.PrimitiveTypes.Uint8},
		)
	case EnumTag:
		return arrow.PrimitiveTypes.Uint16
	case ListTag:
		return arrow.ListOf(t.Elem.ArrowType())
	case RecordTag:
		fields := make([]arrow.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = arrow.Field{Name: f.Name, Type: f.Type.ArrowType(), Nullable: true}
		}
		return arrow.StructOf(fields...)
	case MapTag:
		entry := arrow.StructOf(
			arrow.Field{Name: "key", Type: t.Key.ArrowType()},
			arrow.Field{Name: "value", Type: t.Value.ArrowType(), Nullable: true},
		)
		return arrow.ListOf(entry)
	default:
		return arrow.Null
	}
}

// Equal compares two types structurally, ignoring nothing.
func (t Type) Equal(o Type) bool {
	if t.Tag != o.Tag {
		return false
	}
	switch t.Tag {
	case EnumTag:
		if len(t.Enum) != len(o.Enum) {
			return false
		}
		for i := range t.Enum {
			if t.Enum[i] != o.Enum[i] {
				return false
			}
		}
		return true
	case ListTag:
		return t.Elem.Equal(*o.Elem)
	case RecordTag:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
		return true
	case MapTag:
		return t.Key.Equal(*o.Key) && t.Value.Equal(*o.Value)
	default:
		return true
	}
}
