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
	"github.com/f5/secflow/pkg/diag"
)

// nodeInput adapts a Node's inbox transport to op.Input.
type nodeInput struct {
	n *Node
}

func (ni nodeInput) Recv() (batch.Batch, bool) {
	if ni.n.inbox == nil {
		return batch.Batch{}, false
	}
	return ni.n.inbox.recv(ni.n.ctx.Done())
}

// nodeControl adapts a Node to op.Control.
type nodeControl struct {
	n *Node
}

func (nc nodeControl) Cancelled() bool          { return nc.n.cancelled() }
func (nc nodeControl) Diagnostics() *diag.Bus   { return nc.n.bus }
func (nc nodeControl) Counters() *diag.Counters { return nc.n.Counters() }
