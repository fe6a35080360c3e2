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

package diag

import (
	"sync/atomic"
	"time"
)

// OperatorMetrics is the fixed record every non-internal operator emits at
// a configured interval (spec.md §4.E).
type OperatorMetrics struct {
	OperatorIndex int
	Name          string
	InputRows     int64
	InputBytes    int64
	OutputRows    int64
	OutputBytes   int64
	TimeInGen     time.Duration
	TimeWaiting   time.Duration
	MemoryHeld    int64
}

// MetricID identifies a metric schema/type within a pipeline.
type MetricID string

const OperatorMetricID MetricID = "operator"

// Receiver is the external collaborator metrics are routed to (spec.md
// §6): register once per (operator, metric) pair, then push any number of
// records.
type Receiver interface {
	Register(opIndex int, id MetricID)
	Push(opIndex int, id MetricID, record OperatorMetrics)
}

// ReceiverFunc adapts a function to Receiver for the push side; Register
// is a no-op, which is sufficient for sinks that do not need schema
// negotiation (e.g. a test spy or a sink pipeline that prints records).
type ReceiverFunc func(opIndex int, id MetricID, record OperatorMetrics)

func (f ReceiverFunc) Register(int, MetricID)                  {}
func (f ReceiverFunc) Push(i int, id MetricID, r OperatorMetrics) { f(i, id, r) }

// Counters are the atomically-updated accumulators an execution node
// feeds while running; Snapshot produces the OperatorMetrics record the
// scheduler pushes to the Receiver at each tick.
type Counters struct {
	inputRows   int64
	inputBytes  int64
	outputRows  int64
	outputBytes int64
	timeInGen   int64 // nanoseconds
	timeWaiting int64 // nanoseconds
	memoryHeld  int64
}

func (c *Counters) AddInput(rows, bytes int64)  { atomic.AddInt64(&c.inputRows, rows); atomic.AddInt64(&c.inputBytes, bytes) }
func (c *Counters) AddOutput(rows, bytes int64) { atomic.AddInt64(&c.outputRows, rows); atomic.AddInt64(&c.outputBytes, bytes) }
func (c *Counters) AddTimeInGen(d time.Duration)   { atomic.AddInt64(&c.timeInGen, int64(d)) }
func (c *Counters) AddTimeWaiting(d time.Duration) { atomic.AddInt64(&c.timeWaiting, int64(d)) }
func (c *Counters) SetMemoryHeld(v int64)          { atomic.StoreInt64(&c.memoryHeld, v) }

// Snapshot renders the current counters as an OperatorMetrics record.
func (c *Counters) Snapshot(opIndex int, name string) OperatorMetrics {
	return OperatorMetrics{
		OperatorIndex: opIndex,
		Name:          name,
		InputRows:     atomic.LoadInt64(&c.inputRows),
		InputBytes:    atomic.LoadInt64(&c.inputBytes),
		OutputRows:    atomic.LoadInt64(&c.outputRows),
		OutputBytes:   atomic.LoadInt64(&c.outputBytes),
		TimeInGen:     time.Duration(atomic.LoadInt64(&c.timeInGen)),
		TimeWaiting:   time.Duration(atomic.LoadInt64(&c.timeWaiting)),
		MemoryHeld:    atomic.LoadInt64(&c.memoryHeld),
	}
}
