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
	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

// Shard is one (type, row-range, values) piece of a MultiSeries. Begin/End
// are row offsets into the batch the series was evaluated against.
type Shard struct {
	Type   schema.Type
	Begin  int64
	End    int64
	Values []value.Value
}

// MultiSeries is the evaluator's result: an ordered sequence of shards
// whose ranges are disjoint and jointly cover every input row (spec.md
// §4.C). A homogeneously typed expression always produces exactly one
// shard; operators that fan out across heterogeneous subschemas (none of
// the built-in operator family currently does) would append more.
type MultiSeries struct {
	Shards []Shard
}

// Single wraps one fully homogeneous column as a one-shard MultiSeries.
func Single(t schema.Type, values []value.Value) MultiSeries {
	return MultiSeries{Shards: []Shard{{Type: t, Begin: 0, End: int64(len(values)), Values: values}}}
}

// NumRows sums the row ranges of every shard.
func (m MultiSeries) NumRows() int64 {
	var n int64
	for _, s := range m.Shards {
		n += s.End - s.Begin
	}
	return n
}

// At returns the value at the given absolute row, locating the shard that
// covers it. Panics if row is out of range, which would indicate the
// evaluator produced a MultiSeries violating its row-coverage invariant.
func (m MultiSeries) At(row int64) value.Value {
	for _, s := range m.Shards {
		if row >= s.Begin && row < s.End {
			return s.Values[row-s.Begin]
		}
	}
	panic("expr: row out of range of MultiSeries")
}

// Flatten collapses a MultiSeries back into one ordered value slice,
// convenient for callers (pkg/ops/project) that don't need to track
// per-shard types.
func (m MultiSeries) Flatten() []value.Value {
	out := make([]value.Value, m.NumRows())
	for _, s := range m.Shards {
		copy(out[s.Begin:s.End], s.Values)
	}
	return out
}
