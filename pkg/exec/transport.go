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
	"github.com/f5/secflow/pkg/batch"
)

// DefaultInboxCapacity is the per-pipeline inbox size of spec.md §4.E
// ("default: eight elements").
const DefaultInboxCapacity = 8

// transport is one execution node's inbox: a bounded FIFO of batches. It is
// backed by a Go channel, which already gives us the send-blocks-when-full
// behavior spec.md describes as "the producing node observes its send call
// as suspending"; Len/Cap only report the queue's fill level, since the
// channel itself enforces the backpressure.
type transport struct {
	ch       chan batch.Batch
	capacity int
}

func newTransport(capacity int) *transport {
	if capacity <= 0 {
		capacity = DefaultInboxCapacity
	}
	return &transport{ch: make(chan batch.Batch, capacity), capacity: capacity}
}

// send delivers b to the transport, blocking if full, and returns false if
// cancel fires before delivery.
func (t *transport) send(b batch.Batch, cancel <-chan struct{}) bool {
	select {
	case t.ch <- b:
		return true
	case <-cancel:
		return false
	}
}

// recv returns the next batch; ok is false when the transport has been
// drained and closed (producer finished) or cancellation fired.
func (t *transport) recv(cancel <-chan struct{}) (batch.Batch, bool) {
	select {
	case b, ok := <-t.ch:
		return b, ok
	case <-cancel:
		return batch.Batch{}, false
	}
}

// close signals that no further batches will be sent; it is the
// substrate's equivalent of spec.md §4.E step 4 ("closes the inbox of the
// successor").
func (t *transport) close() {
	close(t.ch)
}

// Len reports the number of batches currently queued. The scheduler does
// not consult it; backpressure comes from the channel alone.
func (t *transport) Len() int { return len(t.ch) }

// Cap reports the configured capacity (the high-water mark).
func (t *transport) Cap() int { return t.capacity }
