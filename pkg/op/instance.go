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

package op

import (
	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/diag"
)

// Input is the consuming side of an execution node's inbox: the generator
// an operator instance pulls batches from (spec.md §4.E).
type Input interface {
	// Recv returns the next available batch. ok is false when the
	// upstream node has finished and drained its last element.
	Recv() (b batch.Batch, ok bool)
}

// Control is the slice of the execution substrate an operator instance is
// allowed to observe: cancellation, diagnostics, and its own counters.
type Control interface {
	// Cancelled reports whether a pipeline-wide shutdown is in progress.
	// Generators must react within a bounded number of yields (spec.md
	// §4.E).
	Cancelled() bool

	// Diagnostics is the Sink operators use to report warnings and
	// non-fatal errors observed while processing.
	Diagnostics() *diag.Bus

	// Counters accumulates this node's metrics between emission ticks.
	Counters() *diag.Counters
}

// Step is one outcome of Instance.Next, mirroring the four generator
// actions of spec.md §4.E.
type Step uint8

const (
	// StepYield carries one output batch forward to the next node.
	StepYield Step = iota
	// StepHeartbeat is an empty batch used to advance scheduler time
	// without producing output.
	StepHeartbeat
	// StepWaiting parks the node until an external callback clears it.
	StepWaiting
	// StepFinished ends the node; no further Next calls are made.
	StepFinished
)

// Instance is the runtime behavior an Operator produces via Instantiate.
// The execution substrate (pkg/exec) drives it by repeatedly calling Next
// until StepFinished or a fatal error.
type Instance interface {
	// Next resumes the operator's generator for one scheduling step.
	Next() (step Step, out batch.Batch, err error)
}

// InstanceFunc adapts a plain function to Instance, convenient for
// operators whose Next has no extra state beyond a closure.
type InstanceFunc func() (Step, batch.Batch, error)

func (f InstanceFunc) Next() (Step, batch.Batch, error) { return f() }
