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

package main

import (
	"sync"

	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/expr"
	"github.com/f5/secflow/pkg/op"
	"github.com/f5/secflow/pkg/schema"
	"github.com/f5/secflow/pkg/value"
)

var demoSchema = schema.New("events",
	schema.Field{Name: "category", Type: schema.Scalar(schema.String)},
	schema.Field{Name: "amount", Type: schema.Scalar(schema.Int64)},
)

var demoCategories = []string{"login", "login", "transfer", "transfer", "transfer", "alert"}

// demoSource yields rowsPerBatch-sized synthetic event batches,
// cycling through demoCategories, until it has emitted total rows.
type demoSource struct {
	total        int
	rowsPerBatch int
}

func (s *demoSource) Name() string { return "demo.source" }

func (s *demoSource) InferKind(op.Kind) (op.Kind, error) {
	return op.Kind{Schema: demoSchema}, nil
}

func (s *demoSource) Optimize(f expr.Expr, ord op.Order) op.OptimizeResult {
	return op.OptimizeResult{Replacement: s, ResidualFilter: f, RequiredOrder: ord}
}

func (s *demoSource) Copy() op.Operator     { cp := *s; return &cp }
func (s *demoSource) Location() op.Location { return op.Anywhere }
func (s *demoSource) Internal() bool        { return false }
func (s *demoSource) Detached() bool        { return false }

func (s *demoSource) Instantiate(op.Input, op.Control) op.Instance {
	emitted := 0
	pool := memory.NewGoAllocator()
	return op.InstanceFunc(func() (op.Step, batch.Batch, error) {
		if emitted >= s.total {
			return op.StepFinished, batch.Batch{}, nil
		}
		n := s.rowsPerBatch
		if remaining := s.total - emitted; n > remaining {
			n = remaining
		}
		rows := make([]value.Record, n)
		for i := 0; i < n; i++ {
			cat := demoCategories[(emitted+i)%len(demoCategories)]
			amount := int64((emitted+i)%7 + 1)
			rows[i] = value.Record{
				{Name: "category", Value: value.String(cat)},
				{Name: "amount", Value: value.Int64(amount)},
			}
		}
		emitted += n
		b, err := batch.FromRows(pool, demoSchema, rows)
		if err != nil {
			return op.StepFinished, batch.Batch{}, err
		}
		return op.StepYield, b, nil
	})
}

// demoSink accumulates every batch it receives so the run command can
// print the pipeline's final output once the scheduler finishes.
type demoSink struct {
	mu      sync.Mutex
	batches []batch.Batch
}

func (s *demoSink) Name() string                          { return "demo.sink" }
func (s *demoSink) InferKind(k op.Kind) (op.Kind, error)   { return k, nil }

func (s *demoSink) Optimize(f expr.Expr, ord op.Order) op.OptimizeResult {
	return op.OptimizeResult{Replacement: s, ResidualFilter: f, RequiredOrder: ord}
}

// Copy returns the receiver rather than a clone: the run command reads
// collected() off this exact instance once the scheduler finishes, and
// nothing in this demo pipeline ever calls Copy on it.
func (s *demoSink) Copy() op.Operator     { return s }
func (s *demoSink) Location() op.Location { return op.Anywhere }
func (s *demoSink) Internal() bool        { return false }
func (s *demoSink) Detached() bool        { return false }

func (s *demoSink) Instantiate(in op.Input, ctrl op.Control) op.Instance {
	return op.InstanceFunc(func() (op.Step, batch.Batch, error) {
		b, ok := in.Recv()
		if !ok {
			return op.StepFinished, batch.Batch{}, nil
		}
		if b.NumRows() > 0 {
			s.mu.Lock()
			s.batches = append(s.batches, b)
			s.mu.Unlock()
		}
		return op.StepHeartbeat, batch.Batch{}, nil
	})
}

func (s *demoSink) collected() []batch.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]batch.Batch, len(s.batches))
	copy(out, s.batches)
	return out
}
