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

// Package exec implements the pipeline execution substrate of spec.md
// §4.E: one execution node per operator instance, wired by bounded inboxes,
// driven by a cooperative Scheduler. The spec's single-threaded generator
// model is rendered here the way the teacher renders its own concurrent
// batching shards (concurrentbatchprocessor/batch_processor.go): one
// goroutine per shard, channels for handoff, a WaitGroup for shutdown, and
// a context carrying the pipeline-wide cancellation signal instead of
// hand-rolled coroutines.
package exec

import (
	"context"
	"sync/atomic"

	"github.com/f5/secflow/pkg/diag"
	"github.com/f5/secflow/pkg/op"
)

// State is a Node's position in the lifecycle of spec.md §4.E.
type State int32

const (
	Pending State = iota
	Runnable
	Waiting
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Runnable:
		return "runnable"
	case Waiting:
		return "waiting"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Node owns one operator instance: its inbox, its lifecycle state, its
// metrics/diagnostics handle, and the cancellation context it must observe.
type Node struct {
	Index    int
	Operator op.Operator
	instance op.Instance

	inbox  *transport
	outbox *transport // nil for the terminal node

	counters diag.Counters
	bus      *diag.Bus

	ctx context.Context

	state int32 // atomic State

	// wake is signaled by an external callback (e.g. a detached worker
	// finishing blocking I/O) to clear a StepWaiting park (spec.md §4.E).
	wake chan struct{}
}

func newNode(index int, ctx context.Context, o op.Operator, inbox, outbox *transport, bus *diag.Bus) *Node {
	return &Node{
		Index:    index,
		Operator: o,
		ctx:      ctx,
		inbox:    inbox,
		outbox:   outbox,
		bus:      bus,
		state:    int32(Pending),
		wake:     make(chan struct{}, 1),
	}
}

func (n *Node) State() State { return State(atomic.LoadInt32(&n.state)) }

func (n *Node) setState(s State) { atomic.StoreInt32(&n.state, int32(s)) }

func (n *Node) cancelled() bool {
	select {
	case <-n.ctx.Done():
		return true
	default:
		return false
	}
}

// Wake clears a StepWaiting park set by this node's operator, the
// substrate's equivalent of an external callback firing (spec.md §4.E).
func (n *Node) Wake() {
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Counters exposes the node's metric accumulators, read by the scheduler's
// metrics ticker and written to by the operator instance through Control.
func (n *Node) Counters() *diag.Counters { return &n.counters }
