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

// Package buffer implements the buffer operator (spec.md §4.F): a
// row-capacity-bounded in-memory queue sitting between two pipeline
// stages, with a block or drop admission policy.
package buffer

import (
	"sync/atomic"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/config"
	"github.com/f5/secflow/pkg/diag"
	"github.com/f5/secflow/pkg/expr"
	"github.com/f5/secflow/pkg/op"
)

// State is the buffer's admission/delivery state (spec.md §4.F).
type State uint8

const (
	Idle State = iota
	Filling
	ProducerParked
	ConsumerParked
	Draining
)

func (s State) String() string {
	switch s {
	case Filling:
		return "filling"
	case ProducerParked:
		return "producer_parked"
	case ConsumerParked:
		return "consumer_parked"
	case Draining:
		return "draining"
	default:
		return "idle"
	}
}

// Operator is the buffer's serializable configuration.
type Operator struct {
	Capacity int                 `json:"capacity"`
	Policy   config.BufferPolicy `json:"policy"`
}

func New(capacity int, policy config.BufferPolicy) *Operator {
	return &Operator{Capacity: capacity, Policy: policy}
}

func (o *Operator) Name() string { return "buffer" }

func (o *Operator) InferKind(input op.Kind) (op.Kind, error) { return input, nil }

func (o *Operator) Optimize(filter expr.Expr, order op.Order) op.OptimizeResult {
	return op.OptimizeResult{Replacement: o, ResidualFilter: filter, RequiredOrder: order}
}

func (o *Operator) Copy() op.Operator { cp := *o; return &cp }

func (o *Operator) Location() op.Location { return op.Anywhere }

func (o *Operator) Internal() bool { return false }

func (o *Operator) Detached() bool { return false }

func (o *Operator) Instantiate(in op.Input, ctrl op.Control) op.Instance {
	capacity := int64(o.Capacity)
	if capacity <= 0 {
		capacity = config.DefaultBufferCapacity
	}
	inst := &instance{
		input:    in,
		ctrl:     ctrl,
		capacity: capacity,
		policy:   o.Policy,
	}
	return op.InstanceFunc(inst.next)
}

// instance is the buffer's runtime state, driven one Next() call at a
// time by the execution substrate.
type instance struct {
	input op.Input
	ctrl  op.Control

	capacity int64
	policy   config.BufferPolicy

	queue      []batch.Batch
	queuedRows int64

	remainder    batch.Batch
	hasRemainder bool

	upstreamDone bool

	dropped int64
}

// State reports the buffer's current admission/delivery state (spec.md
// §4.F). ConsumerParked is part of the state enum but never returned here:
// this operator is driven by Next() pulls rather than a blocking read, so
// there is no distinct "consumer waiting" condition to observe — the
// scheduler simply calls Next() again.
func (in *instance) State() State {
	switch {
	case in.hasRemainder:
		return ProducerParked
	case in.upstreamDone && len(in.queue) > 0:
		return Draining
	case len(in.queue) == 0 && in.upstreamDone:
		return Idle
	case len(in.queue) == 0:
		return Idle
	default:
		return Filling
	}
}

// Used reports the currently queued row count (the `used` metric).
func (in *instance) Used() int64 { return in.queuedRows }

// Free reports remaining row capacity (the `free` metric).
func (in *instance) Free() int64 { return in.capacity - in.queuedRows }

// Dropped reports the dropped-row count accumulated since the last
// DropAndReset call (the `dropped` metric). Nothing in the substrate calls
// DropAndReset on a timer, so without an explicit call the count is
// cumulative.
func (in *instance) Dropped() int64 { return atomic.LoadInt64(&in.dropped) }

// DropAndReset returns the dropped-row count accumulated since the last
// call and resets it, matching spec.md §4.F's "dropped (reset per tick)".
func (in *instance) DropAndReset() int64 { return atomic.SwapInt64(&in.dropped, 0) }

func (in *instance) next() (op.Step, batch.Batch, error) {
	if in.ctrl.Cancelled() {
		return op.StepFinished, batch.Batch{}, nil
	}

	// Try to admit more of a parked write first — this is the
	// "resume by enqueueing up to C-queued more rows" half of a
	// block-policy write (spec.md §4.F).
	if in.hasRemainder {
		in.admit(&in.remainder)
		if in.remainder.NumRows() == 0 {
			in.hasRemainder = false
		}
	}

	// Pull upstream batches into the queue until a block-policy write
	// parks or upstream is exhausted. write tracks queuedRows
	// cumulatively across every batch admitted this way, so the
	// capacity/drop/block decision reflects the whole backlog rather
	// than resetting to an empty queue after each read (spec.md §4.F):
	// a run of small batches that individually fit can still overflow
	// capacity once enough of them have queued up.
	for !in.hasRemainder && !in.upstreamDone {
		b, ok := in.input.Recv()
		if !ok {
			in.upstreamDone = true
			break
		}
		in.write(b)
	}

	// Deliver the oldest queued batch if one exists; this is the read
	// operation, and it is what eventually frees room for a parked
	// write to keep draining across subsequent Next calls.
	if len(in.queue) > 0 {
		out := in.queue[0]
		in.queue = in.queue[1:]
		in.queuedRows -= out.NumRows()
		return op.StepYield, out, nil
	}

	if in.upstreamDone {
		return op.StepFinished, batch.Batch{}, nil
	}

	return op.StepHeartbeat, batch.Batch{}, nil
}

// write admits as much of b as fits given current free capacity, applying
// the drop or block policy to any remainder (spec.md §4.F).
func (in *instance) write(b batch.Batch) {
	free := in.capacity - in.queuedRows
	n := b.NumRows()
	if n <= free {
		in.enqueue(b)
		return
	}
	if free > 0 {
		in.enqueue(b.Slice(0, free))
	}
	overflow := n - free
	if overflow <= 0 {
		return
	}
	switch in.policy {
	case config.PolicyDrop:
		atomic.AddInt64(&in.dropped, overflow)
		if in.ctrl.Diagnostics() != nil {
			in.ctrl.Diagnostics().Emit(diag.Warningf(diag.KindLogicError, "buffer: dropped %d rows (capacity exceeded)", overflow))
		}
	default: // PolicyBlock
		in.remainder = b.Slice(free, n)
		in.hasRemainder = true
		if in.ctrl.Diagnostics() != nil {
			in.ctrl.Diagnostics().Emit(diag.Notef("buffer: entering %s, %d rows pending admission", in.State(), in.remainder.NumRows()))
		}
	}
}

// admit retries enqueuing as much of *rem as currently fits.
func (in *instance) admit(rem *batch.Batch) {
	free := in.capacity - in.queuedRows
	if free <= 0 {
		return
	}
	n := rem.NumRows()
	if n <= free {
		in.enqueue(*rem)
		*rem = batch.Batch{}
		return
	}
	in.enqueue(rem.Slice(0, free))
	*rem = rem.Slice(free, n)
}

func (in *instance) enqueue(b batch.Batch) {
	if b.NumRows() == 0 {
		return
	}
	in.queue = append(in.queue, b)
	in.queuedRows += b.NumRows()
}
