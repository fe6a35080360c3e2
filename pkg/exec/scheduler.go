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

package exec

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/f5/secflow/pkg/diag"
	"github.com/f5/secflow/pkg/op"
)

// Options configures a Scheduler's instantiation of a pipeline.
type Options struct {
	// InboxCapacity is the bounded FIFO size between adjacent nodes;
	// zero uses DefaultInboxCapacity.
	InboxCapacity int
	// MetricsInterval is how often each non-internal node emits an
	// OperatorMetrics record; zero disables metrics entirely.
	MetricsInterval time.Duration
	Bus             *diag.Bus
	Metrics         diag.Receiver
	Logger          *zap.Logger
}

// Scheduler runs one pipeline: a linear chain of operators wired by
// bounded transports, each driven by its own goroutine (spec.md §4.E).
// Detached operators (Operator.Detached()) still get their own goroutine
// here, same as every other node — the distinction from spec.md is that a
// detached operator is allowed to block synchronously inside Instance.Next
// without starving sibling nodes, which a dedicated goroutine already
// guarantees in Go without a special "worker pool" concept.
type Scheduler struct {
	nodes  []*Node
	opts   Options
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	firstFail error
}

// NewScheduler instantiates ops into a wired pipeline of Nodes. Each
// operator's Instantiate is called with the Input/Control the substrate
// provides; ops[0] is the source, and its Input has no inbox, so Recv
// reports no batch.
func NewScheduler(parent context.Context, ops []op.Operator, opts Options) *Scheduler {
	if opts.InboxCapacity <= 0 {
		opts.InboxCapacity = DefaultInboxCapacity
	}
	if opts.Bus == nil {
		opts.Bus = diag.NewBus(opts.Logger, nil)
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Scheduler{opts: opts, cancel: cancel}

	transports := make([]*transport, len(ops)-1)
	for i := range transports {
		transports[i] = newTransport(opts.InboxCapacity)
	}

	s.nodes = make([]*Node, len(ops))
	for i, o := range ops {
		var inbox, outbox *transport
		if i > 0 {
			inbox = transports[i-1]
		}
		if i < len(ops)-1 {
			outbox = transports[i]
		}
		n := newNode(i, ctx, o, inbox, outbox, opts.Bus)
		n.instance = o.Instantiate(nodeInput{n}, nodeControl{n})
		s.nodes[i] = n
	}
	return s
}

// Run starts every node's goroutine and the metrics ticker, then blocks
// until the pipeline finishes or ctx is cancelled. It returns the first
// fatal error observed by any node, or nil.
func (s *Scheduler) Run(ctx context.Context) error {
	stop := make(chan struct{})
	if s.opts.MetricsInterval > 0 && s.opts.Metrics != nil {
		s.wg.Add(1)
		go s.runMetrics(stop)
	}

	for _, n := range s.nodes {
		s.wg.Add(1)
		go s.runNode(n)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.Cancel()
		<-done
	}
	close(stop)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstFail
}

// Cancel propagates shutdown to every node; generators are expected to
// observe it within a bounded number of Next calls (spec.md §4.E).
func (s *Scheduler) Cancel() { s.cancel() }

func (s *Scheduler) runNode(n *Node) {
	defer s.wg.Done()
	n.setState(Runnable)
	for {
		if n.cancelled() {
			n.setState(Finished)
			if n.outbox != nil {
				n.outbox.close()
			}
			return
		}
		step, out, err := n.instance.Next()
		if err != nil {
			if d, ok := err.(diag.Diagnostic); ok && d.Kind == diag.KindCancelled {
				// Absorbed during shutdown (spec.md §4.E).
			} else {
				n.setState(Failed)
				s.recordFailure(err)
				if n.outbox != nil {
					n.outbox.close()
				}
				return
			}
		}
		switch step {
		case op.StepYield:
			n.counters.AddOutput(out.NumRows(), 0)
			if n.outbox != nil {
				if !n.outbox.send(out, n.ctx.Done()) {
					n.setState(Finished)
					return
				}
			}
		case op.StepHeartbeat:
			// Advance scheduler time; nothing to forward.
		case op.StepWaiting:
			n.setState(Waiting)
			select {
			case <-n.wake:
			case <-n.ctx.Done():
			}
			n.setState(Runnable)
		case op.StepFinished:
			n.setState(Finished)
			if n.outbox != nil {
				n.outbox.close()
			}
			return
		}
	}
}

func (s *Scheduler) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstFail == nil {
		s.firstFail = err
	}
}

func (s *Scheduler) runMetrics(stop <-chan struct{}) {
	defer s.wg.Done()
	for _, n := range s.nodes {
		if !n.Operator.Internal() {
			s.opts.Metrics.Register(n.Index, diag.OperatorMetricID)
		}
	}
	ticker := time.NewTicker(s.opts.MetricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, n := range s.nodes {
				if n.Operator.Internal() {
					continue
				}
				snap := n.counters.Snapshot(n.Index, n.Operator.Name())
				s.opts.Metrics.Push(n.Index, diag.OperatorMetricID, snap)
			}
		case <-stop:
			return
		}
	}
}
