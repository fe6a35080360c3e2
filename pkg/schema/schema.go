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
	"encoding/binary"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/cespare/xxhash/v2"
)

// Fingerprint is the 64-bit content-addressable identifier of a Schema.
// Two schemas built independently compare equal iff their fingerprints
// match (spec.md open question, resolved: canonical field encoding hashed
// with xxhash64).
type Fingerprint uint64

// Schema is a named record type: the unit of typing for every Batch.
type Schema struct {
	Name   string
	Fields []Field

	fp Fingerprint
}

// New builds a Schema and computes its fingerprint immediately, so that
// Fingerprint() is always valid without a separate finalization step.
func New(name string, fields ...Field) Schema {
	s := Schema{Name: name, Fields: fields}
	s.fp = fingerprintOf(s)
	return s
}

// Fingerprint returns the schema's content-addressable identifier.
func (s Schema) Fingerprint() Fingerprint { return s.fp }

// Equal reports whether two schemas are structurally identical. Per
// spec.md §3, this is exactly fingerprint equality.
func (s Schema) Equal(o Schema) bool { return s.fp == o.fp }

// ArrowSchema projects the schema onto an Apache Arrow schema, used by
// pkg/batch to construct the backing arrow.Record.
func (s Schema) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = arrow.Field{Name: f.Name, Type: f.Type.ArrowType(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// FieldIndex returns the position of a top-level field by name, or -1.
func (s Schema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// CanonicalEncode returns the canonical byte encoding a Schema's
// fingerprint is derived from: field name length, name bytes, and a type
// tag, recursing through record/list/map. Exposed so callers (e.g. a
// persisted operator payload) can reproduce or audit the encoding.
func CanonicalEncode(s Schema) []byte {
	var buf []byte
	for _, f := range s.Fields {
		buf = appendField(buf, f)
	}
	return buf
}

func fingerprintOf(s Schema) Fingerprint {
	return Fingerprint(xxhash.Sum64(CanonicalEncode(s)))
}

func appendField(buf []byte, f Field) []byte {
	buf = appendLenPrefixed(buf, f.Name)
	return appendType(buf, f.Type)
}

func appendType(buf []byte, t Type) []byte {
	buf = append(buf, byte(t.Tag))
	switch t.Tag {
	case EnumTag:
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(t.Enum)))
		buf = append(buf, lenBuf[:]...)
		for _, name := range t.Enum {
			buf = appendLenPrefixed(buf, name)
		}
	case ListTag:
		buf = appendType(buf, *t.Elem)
	case RecordTag:
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(t.Fields)))
		buf = append(buf, lenBuf[:]...)
		for _, f := range t.Fields {
			buf = appendField(buf, f)
		}
	case MapTag:
		buf = appendType(buf, *t.Key)
		buf = appendType(buf, *t.Value)
	}
	return buf
}

func appendLenPrefixed(buf []byte, s string) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}
