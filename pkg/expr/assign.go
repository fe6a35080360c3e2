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
	"strings"

	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

// Selector is a parsed dotted assignment target, e.g. "a.b.c".
type Selector struct {
	Segments []string
}

// ParseSelector splits a dotted selector string into its segments.
func ParseSelector(s string) Selector {
	return Selector{Segments: strings.Split(s, ".")}
}

func (s Selector) String() string { return strings.Join(s.Segments, ".") }

// Assign writes v at selector within rec, widening intermediate records as
// needed and allocating any missing ones (spec.md §4.C, used by the
// put/extend/replace/set family in pkg/ops/project). It returns the
// rewritten record; rec itself is not mutated.
func Assign(rec value.Record, selector Selector, v value.Value) value.Record {
	return assignPath(rec, selector.Segments, v)
}

func assignPath(rec value.Record, segments []string, v value.Value) value.Record {
	if len(segments) == 0 {
		return rec
	}
	head, rest := segments[0], segments[1:]
	out := make(value.Record, 0, len(rec)+1)
	replaced := false
	for _, f := range rec {
		if f.Name == head {
			replaced = true
			if len(rest) == 0 {
				out = append(out, value.Field{Name: head, Value: v})
				continue
			}
			child, _ := f.Value.(value.Record)
			out = append(out, value.Field{Name: head, Value: assignPath(child, rest, v)})
			continue
		}
		out = append(out, f)
	}
	if !replaced {
		if len(rest) == 0 {
			out = append(out, value.Field{Name: head, Value: v})
		} else {
			out = append(out, value.Field{Name: head, Value: assignPath(nil, rest, v)})
		}
	}
	return out
}

// WidenSchema returns the schema.Type that results from assigning a value
// of type vt at selector within the record type base, allocating
// intermediate record fields as needed. It mirrors assignPath at the type
// level so the operator's output schema can be derived in lockstep with
// its output rows.
func WidenSchema(base schema.Type, segments []string, vt schema.Type) schema.Type {
	if len(segments) == 0 {
		return vt
	}
	head, rest := segments[0], segments[1:]
	fields := append([]schema.Field{}, base.Fields...)
	for i, f := range fields {
		if f.Name == head {
			if len(rest) == 0 {
				fields[i] = schema.Field{Name: head, Type: vt}
			} else {
				fields[i] = schema.Field{Name: head, Type: WidenSchema(f.Type, rest, vt)}
			}
			return schema.RecordOf(fields...)
		}
	}
	var childType schema.Type
	if len(rest) == 0 {
		childType = vt
	} else {
		childType = WidenSchema(schema.RecordOf(), rest, vt)
	}
	fields = append(fields, schema.Field{Name: head, Type: childType})
	return schema.RecordOf(fields...)
}
