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

package aggregate

import (
	"encoding/binary"
	"fmt"

	"github.com/axiomhq/hyperloglog"

	"github.com/f5/secflow/pkg/value"
)

// accumulator folds one column's values within a bucket. Null inputs are
// skipped by every function except count_if, which inspects the boolean
// itself (spec.md §4.I).
type accumulator interface {
	Update(v value.Value)
	Result() value.Value
}

func newAccumulator(f Func) (accumulator, error) {
	switch f {
	case Sum:
		return &sumAcc{}, nil
	case Min:
		return &extremeAcc{max: false}, nil
	case Max:
		return &extremeAcc{max: true}, nil
	case Count:
		return &countAcc{}, nil
	case CountIf:
		return &countIfAcc{}, nil
	case Mean:
		return &meanAcc{}, nil
	case Any:
		return &boolAcc{any: true}, nil
	case All:
		return &boolAcc{any: false}, nil
	case First:
		return &pickAcc{last: false}, nil
	case Last:
		return &pickAcc{last: true}, nil
	case Distinct:
		return &distinctAcc{sketch: hyperloglog.New16()}, nil
	case Collect:
		return &collectAcc{}, nil
	default:
		return nil, fmt.Errorf("aggregate: unrecognized aggregation function %q", f)
	}
}

// sumAcc sums Int64, Uint64, or Float64 inputs, matching whichever kind
// it first observes; its identity element is Int64(0).
type sumAcc struct {
	seen    bool
	isFloat bool
	isUint  bool
	i       int64
	u       uint64
	f       float64
}

func (a *sumAcc) Update(v value.Value) {
	if v == nil || v.IsNull() {
		return
	}
	if !a.seen {
		a.seen = true
		switch v.(type) {
		case value.Float64:
			a.isFloat = true
		case value.Uint64:
			a.isUint = true
		}
	}
	switch n := v.(type) {
	case value.Int64:
		a.i += int64(n)
	case value.Uint64:
		a.u += uint64(n)
	case value.Float64:
		a.f += float64(n)
	}
}

func (a *sumAcc) Result() value.Value {
	switch {
	case a.isFloat:
		return value.Float64(a.f)
	case a.isUint:
		return value.Uint64(a.u)
	default:
		return value.Int64(a.i)
	}
}

// extremeAcc implements min (max=false) and max (max=true). Its identity
// element is Null, since a min/max over zero rows has no value.
type extremeAcc struct {
	max    bool
	seen   bool
	best   value.Value
}

func (a *extremeAcc) Update(v value.Value) {
	if v == nil || v.IsNull() {
		return
	}
	if !a.seen {
		a.seen = true
		a.best = v
		return
	}
	cmp := v.Compare(a.best)
	if (a.max && cmp > 0) || (!a.max && cmp < 0) {
		a.best = v
	}
}

func (a *extremeAcc) Result() value.Value {
	if !a.seen {
		return value.Null{}
	}
	return a.best
}

// countAcc counts non-null inputs seen (or every row, when Arg is nil).
// Its identity element is Int64(0).
type countAcc struct {
	n int64
}

func (a *countAcc) Update(v value.Value) {
	if v == nil || !v.IsNull() {
		a.n++
	}
}

func (a *countAcc) Result() value.Value { return value.Int64(a.n) }

// countIfAcc counts rows whose boolean argument is true; null or
// non-boolean arguments do not count. Its identity element is Int64(0).
type countIfAcc struct {
	n int64
}

func (a *countIfAcc) Update(v value.Value) {
	if b, ok := v.(value.Bool); ok && bool(b) {
		a.n++
	}
}

func (a *countIfAcc) Result() value.Value { return value.Int64(a.n) }

// pickAcc implements first (last=false) and last (last=true) over
// non-null inputs. Its identity element is Null.
type pickAcc struct {
	last bool
	seen bool
	v    value.Value
}

func (a *pickAcc) Update(v value.Value) {
	if v == nil || v.IsNull() {
		return
	}
	if !a.seen {
		a.seen = true
		a.v = v
		return
	}
	if a.last {
		a.v = v
	}
}

func (a *pickAcc) Result() value.Value {
	if !a.seen {
		return value.Null{}
	}
	return a.v
}

// meanAcc averages Int64, Uint64, or Float64 inputs. Its identity element
// is Null, since a mean over zero observations is undefined.
type meanAcc struct {
	seen bool
	sum  float64
	n    int64
}

func (a *meanAcc) Update(v value.Value) {
	if v == nil || v.IsNull() {
		return
	}
	switch n := v.(type) {
	case value.Int64:
		a.sum += float64(n)
	case value.Uint64:
		a.sum += float64(n)
	case value.Float64:
		a.sum += float64(n)
	default:
		return
	}
	a.seen = true
	a.n++
}

func (a *meanAcc) Result() value.Value {
	if !a.seen {
		return value.Null{}
	}
	return value.Float64(a.sum / float64(a.n))
}

// boolAcc implements any (any=true, the vacuous identity is false) and
// all (any=false, the vacuous identity is true) over Bool inputs.
// Non-boolean and null arguments are ignored.
type boolAcc struct {
	any    bool
	seen   bool
	result bool
}

func (a *boolAcc) Update(v value.Value) {
	b, ok := v.(value.Bool)
	if !ok {
		return
	}
	if !a.seen {
		a.seen = true
		a.result = bool(b)
		return
	}
	if a.any {
		a.result = a.result || bool(b)
	} else {
		a.result = a.result && bool(b)
	}
}

func (a *boolAcc) Result() value.Value {
	if !a.seen {
		return value.Bool(!a.any)
	}
	return value.Bool(a.result)
}

// distinctAcc estimates the number of distinct non-null values seen using
// a HyperLogLog sketch, since exact distinct counting is unbounded memory
// over a large enough bucket. Its identity element is Uint64(0).
type distinctAcc struct {
	sketch *hyperloglog.Sketch
}

func (a *distinctAcc) Update(v value.Value) {
	if v == nil || v.IsNull() {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value.StructuralHash(v))
	a.sketch.Insert(buf[:])
}

func (a *distinctAcc) Result() value.Value { return value.Uint64(a.sketch.Estimate()) }

// collectAcc gathers every non-null value seen into a list, in arrival
// order. Its identity element is an empty value.List.
type collectAcc struct {
	items value.List
}

func (a *collectAcc) Update(v value.Value) {
	if v == nil || v.IsNull() {
		return
	}
	a.items = append(a.items, v)
}

func (a *collectAcc) Result() value.Value {
	if a.items == nil {
		return value.List{}
	}
	return a.items
}
