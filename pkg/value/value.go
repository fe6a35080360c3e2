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

package value

import (
	"bytes"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Value is the tagged sum over every scalar and composite type the
// substrate carries in a column. Equality is structural; ordering (Compare)
// is only defined when both operands share a Kind.
type Value interface {
	Kind() Kind
	IsNull() bool
	// Equal reports structural equality.
	Equal(other Value) bool
	// Compare orders two values of the same Kind. Comparing across Kinds
	// panics, except on a Null receiver, which compares equal to any
	// value; callers (expression evaluator, aggregation bucketing) must
	// not mix kinds without an explicit coercion step.
	Compare(other Value) int
	// Hash feeds a stable structural hash, used by group-by bucketing.
	// Schema fingerprinting does not use it (see schema.CanonicalEncode).
	Hash(d *xxhash.Digest)
	String() string
}

// Null is the untyped absence of a value.
type Null struct{}

func (Null) Kind() Kind         { return KindNull }
func (Null) IsNull() bool       { return true }
func (Null) Equal(o Value) bool { return o != nil && o.Kind() == KindNull }
func (Null) Compare(Value) int  { return 0 }
func (Null) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindNull)})
}
func (Null) String() string { return "null" }

type Bool bool

func (Bool) Kind() Kind   { return KindBool }
func (Bool) IsNull() bool { return false }
func (b Bool) Equal(o Value) bool {
	ob, ok := o.(Bool)
	return ok && ob == b
}
func (b Bool) Compare(o Value) int {
	ob := mustKind(o, KindBool).(Bool)
	if b == ob {
		return 0
	}
	if b {
		return 1
	}
	return -1
}
func (b Bool) Hash(d *xxhash.Digest) {
	v := byte(0)
	if b {
		v = 1
	}
	_, _ = d.Write([]byte{byte(KindBool), v})
}
func (b Bool) String() string { return fmt.Sprintf("%t", bool(b)) }

type Int64 int64

func (Int64) Kind() Kind   { return KindInt64 }
func (Int64) IsNull() bool { return false }
func (i Int64) Equal(o Value) bool {
	oi, ok := o.(Int64)
	return ok && oi == i
}
func (i Int64) Compare(o Value) int {
	oi := mustKind(o, KindInt64).(Int64)
	switch {
	case i < oi:
		return -1
	case i > oi:
		return 1
	default:
		return 0
	}
}
func (i Int64) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindInt64)})
	writeUint64(d, uint64(i))
}
func (i Int64) String() string { return fmt.Sprintf("%d", int64(i)) }

type Uint64 uint64

func (Uint64) Kind() Kind   { return KindUint64 }
func (Uint64) IsNull() bool { return false }
func (u Uint64) Equal(o Value) bool {
	ou, ok := o.(Uint64)
	return ok && ou == u
}
func (u Uint64) Compare(o Value) int {
	ou := mustKind(o, KindUint64).(Uint64)
	switch {
	case u < ou:
		return -1
	case u > ou:
		return 1
	default:
		return 0
	}
}
func (u Uint64) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindUint64)})
	writeUint64(d, uint64(u))
}
func (u Uint64) String() string { return fmt.Sprintf("%d", uint64(u)) }

type Float64 float64

func (Float64) Kind() Kind   { return KindFloat64 }
func (Float64) IsNull() bool { return false }
func (f Float64) Equal(o Value) bool {
	of, ok := o.(Float64)
	return ok && of == f
}
func (f Float64) Compare(o Value) int {
	of := mustKind(o, KindFloat64).(Float64)
	switch {
	case f < of:
		return -1
	case f > of:
		return 1
	default:
		return 0
	}
}
func (f Float64) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindFloat64)})
	if f == 0 {
		f = 0 // +0 and -0 are Equal, so they must hash alike
	}
	writeUint64(d, math.Float64bits(float64(f)))
}
func (f Float64) String() string { return fmt.Sprintf("%g", float64(f)) }

// Duration is a nanosecond-resolution duration.
type Duration time.Duration

func (Duration) Kind() Kind   { return KindDuration }
func (Duration) IsNull() bool { return false }
func (d Duration) Equal(o Value) bool {
	od, ok := o.(Duration)
	return ok && od == d
}
func (d Duration) Compare(o Value) int {
	od := mustKind(o, KindDuration).(Duration)
	switch {
	case d < od:
		return -1
	case d > od:
		return 1
	default:
		return 0
	}
}
func (d Duration) Hash(h *xxhash.Digest) {
	_, _ = h.Write([]byte{byte(KindDuration)})
	writeUint64(h, uint64(d))
}
func (d Duration) String() string { return time.Duration(d).String() }

// Time is a nanosecond-resolution time point.
type Time time.Time

func (Time) Kind() Kind   { return KindTime }
func (Time) IsNull() bool { return false }
func (t Time) Equal(o Value) bool {
	ot, ok := o.(Time)
	return ok && time.Time(t).Equal(time.Time(ot))
}
func (t Time) Compare(o Value) int {
	ot := mustKind(o, KindTime).(Time)
	switch {
	case time.Time(t).Before(time.Time(ot)):
		return -1
	case time.Time(t).After(time.Time(ot)):
		return 1
	default:
		return 0
	}
}
func (t Time) Hash(h *xxhash.Digest) {
	_, _ = h.Write([]byte{byte(KindTime)})
	writeUint64(h, uint64(time.Time(t).UnixNano()))
}
func (t Time) String() string { return time.Time(t).Format(time.RFC3339Nano) }

type String string

func (String) Kind() Kind   { return KindString }
func (String) IsNull() bool { return false }
func (s String) Equal(o Value) bool {
	os, ok := o.(String)
	return ok && os == s
}
func (s String) Compare(o Value) int {
	os := mustKind(o, KindString).(String)
	return strings.Compare(string(s), string(os))
}
func (s String) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindString)})
	_, _ = d.WriteString(string(s))
}
func (s String) String() string { return string(s) }

type Bytes []byte

func (Bytes) Kind() Kind   { return KindBytes }
func (Bytes) IsNull() bool { return false }
func (b Bytes) Equal(o Value) bool {
	ob, ok := o.(Bytes)
	return ok && bytes.Equal(b, ob)
}
func (b Bytes) Compare(o Value) int {
	ob := mustKind(o, KindBytes).(Bytes)
	return bytes.Compare(b, ob)
}
func (b Bytes) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindBytes)})
	_, _ = d.Write(b)
}
func (b Bytes) String() string { return fmt.Sprintf("%x", []byte(b)) }

// IP is a 16-byte address, v4-mapped when the source address was shorter.
type IP net.IP

func NewIP(ip net.IP) IP {
	return IP(ip.To16())
}

func (IP) Kind() Kind   { return KindIP }
func (IP) IsNull() bool { return false }
func (ip IP) Equal(o Value) bool {
	oip, ok := o.(IP)
	return ok && net.IP(ip).Equal(net.IP(oip))
}
func (ip IP) Compare(o Value) int {
	oip := mustKind(o, KindIP).(IP)
	return bytes.Compare(net.IP(ip).To16(), net.IP(oip).To16())
}
func (ip IP) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindIP)})
	_, _ = d.Write(net.IP(ip).To16())
}
func (ip IP) String() string { return net.IP(ip).String() }

// Subnet is a CIDR block.
type Subnet struct {
	Addr   net.IP
	Prefix uint8
}

func (Subnet) Kind() Kind   { return KindSubnet }
func (Subnet) IsNull() bool { return false }
func (s Subnet) Equal(o Value) bool {
	os, ok := o.(Subnet)
	return ok && s.Prefix == os.Prefix && s.Addr.Equal(os.Addr)
}
func (s Subnet) Compare(o Value) int {
	os := mustKind(o, KindSubnet).(Subnet)
	if c := bytes.Compare(s.Addr.To16(), os.Addr.To16()); c != 0 {
		return c
	}
	switch {
	case s.Prefix < os.Prefix:
		return -1
	case s.Prefix > os.Prefix:
		return 1
	default:
		return 0
	}
}
func (s Subnet) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindSubnet)})
	_, _ = d.Write(s.Addr.To16())
	_, _ = d.Write([]byte{s.Prefix})
}
func (s Subnet) String() string { return fmt.Sprintf("%s/%d", s.Addr.String(), s.Prefix) }

// Enum is a small integer tagged with its symbolic name.
type Enum struct {
	Name  string
	Index uint16
}

func (Enum) Kind() Kind   { return KindEnum }
func (Enum) IsNull() bool { return false }
func (e Enum) Equal(o Value) bool {
	oe, ok := o.(Enum)
	return ok && oe.Index == e.Index && oe.Name == e.Name
}
func (e Enum) Compare(o Value) int {
	oe := mustKind(o, KindEnum).(Enum)
	switch {
	case e.Index < oe.Index:
		return -1
	case e.Index > oe.Index:
		return 1
	default:
		return 0
	}
}
func (e Enum) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindEnum)})
	_, _ = d.WriteString(e.Name)
}
func (e Enum) String() string { return e.Name }

// List is an ordered homogeneous (or, on mismatch, heterogeneous) sequence.
type List []Value

func (List) Kind() Kind   { return KindList }
func (List) IsNull() bool { return false }
func (l List) Equal(o Value) bool {
	ol, ok := o.(List)
	if !ok || len(ol) != len(l) {
		return false
	}
	for i := range l {
		if !l[i].Equal(ol[i]) {
			return false
		}
	}
	return true
}
func (l List) Compare(o Value) int {
	ol := mustKind(o, KindList).(List)
	for i := 0; i < len(l) && i < len(ol); i++ {
		if c := l[i].Compare(ol[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(l) < len(ol):
		return -1
	case len(l) > len(ol):
		return 1
	default:
		return 0
	}
}
func (l List) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindList)})
	for _, v := range l {
		v.Hash(d)
	}
}
func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Field is one (name, value) pair of a Record, kept in insertion order.
type Field struct {
	Name  string
	Value Value
}

// Record is an insertion-ordered mapping from string keys to values.
type Record []Field

func (r Record) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (Record) Kind() Kind   { return KindRecord }
func (Record) IsNull() bool { return false }
func (r Record) Equal(o Value) bool {
	or, ok := o.(Record)
	if !ok || len(or) != len(r) {
		return false
	}
	for i := range r {
		if r[i].Name != or[i].Name || !r[i].Value.Equal(or[i].Value) {
			return false
		}
	}
	return true
}
func (r Record) Compare(o Value) int {
	or := mustKind(o, KindRecord).(Record)
	for i := 0; i < len(r) && i < len(or); i++ {
		if c := strings.Compare(r[i].Name, or[i].Name); c != 0 {
			return c
		}
		if c := r[i].Value.Compare(or[i].Value); c != 0 {
			return c
		}
	}
	switch {
	case len(r) < len(or):
		return -1
	case len(r) > len(or):
		return 1
	default:
		return 0
	}
}
func (r Record) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindRecord)})
	for _, f := range r {
		_, _ = d.WriteString(f.Name)
		f.Value.Hash(d)
	}
}
func (r Record) String() string {
	parts := make([]string, len(r))
	for i, f := range r {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MapEntry is one (key, value) pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an insertion-ordered mapping from arbitrary values to values.
type Map []MapEntry

func (Map) Kind() Kind   { return KindMap }
func (Map) IsNull() bool { return false }
func (m Map) Equal(o Value) bool {
	om, ok := o.(Map)
	if !ok || len(om) != len(m) {
		return false
	}
	for i := range m {
		if !m[i].Key.Equal(om[i].Key) || !m[i].Value.Equal(om[i].Value) {
			return false
		}
	}
	return true
}
func (m Map) Compare(o Value) int {
	om := mustKind(o, KindMap).(Map)
	switch {
	case len(m) < len(om):
		return -1
	case len(m) > len(om):
		return 1
	default:
		return 0
	}
}
func (m Map) Hash(d *xxhash.Digest) {
	_, _ = d.Write([]byte{byte(KindMap)})
	for _, e := range m {
		e.Key.Hash(d)
		e.Value.Hash(d)
	}
}
func (m Map) String() string {
	parts := make([]string, len(m))
	for i, e := range m {
		parts[i] = fmt.Sprintf("%s: %s", e.Key.String(), e.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func mustKind(v Value, k Kind) Value {
	if v == nil || v.Kind() != k {
		panic(fmt.Sprintf("value: cannot compare %s against %s", k, kindOf(v)))
	}
	return v
}

func kindOf(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Kind().String()
}

func writeUint64(d *xxhash.Digest, v uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	_, _ = d.Write(buf[:])
}

// StructuralHash returns a stable 64-bit hash of v, used by group-by
// bucketing (pkg/ops/aggregate) and anywhere else values need a hashable
// key without committing to a sort order.
func StructuralHash(v Value) uint64 {
	d := xxhash.New()
	v.Hash(d)
	return d.Sum64()
}
