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

package op_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/secflow/pkg/batch"
	"github.com/f5/secflow/pkg/expr"
	"github.com/f5/secflow/pkg/op"
)

// renameOp is a minimal test double exercising the Operator contract: it
// renames its output schema and never absorbs a pushed-down filter.
type renameOp struct {
	NewName string `json:"new_name"`
}

func (r *renameOp) Name() string { return "test.rename" }

func (r *renameOp) InferKind(input op.Kind) (op.Kind, error) {
	out := input.Schema
	out.Name = r.NewName
	return op.Kind{Schema: out}, nil
}

func (r *renameOp) Instantiate(in op.Input, ctrl op.Control) op.Instance {
	return op.InstanceFunc(func() (op.Step, batch.Batch, error) {
		return op.StepFinished, batch.Batch{}, nil
	})
}

func (r *renameOp) Optimize(filter expr.Expr, order op.Order) op.OptimizeResult {
	return op.OptimizeResult{Replacement: r, ResidualFilter: filter, RequiredOrder: order}
}

func (r *renameOp) Copy() op.Operator { cp := *r; return &cp }
func (r *renameOp) Location() op.Location { return op.Anywhere }
func (r *renameOp) Internal() bool        { return false }
func (r *renameOp) Detached() bool        { return false }

func TestOptimizeReturnsResidualUnchangedWhenNotAbsorbed(t *testing.T) {
	r := &renameOp{NewName: "renamed"}
	f := expr.Literal{Value: nil}
	result := r.Optimize(f, op.Ordered)
	assert.Same(t, r, result.Replacement)
	assert.Equal(t, f, result.ResidualFilter)
	assert.Equal(t, op.Ordered, result.RequiredOrder)
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "ordered", op.Ordered.String())
	assert.Equal(t, "unordered", op.Unordered.String())
	assert.Equal(t, "schema_ordered", op.SchemaOrdered.String())
}

func TestRegistryEncodeDecodeRoundTrip(t *testing.T) {
	reg := op.NewRegistry()
	reg.Register("test.rename", func() op.Operator { return &renameOp{} })

	original := &renameOp{NewName: "events.v2"}
	data, err := op.Encode(original)
	require.NoError(t, err)

	decoded, err := reg.Decode(data)
	require.NoError(t, err)
	got, ok := decoded.(*renameOp)
	require.True(t, ok)
	assert.Equal(t, "events.v2", got.NewName)
}

func TestCopyRoundTripsThroughRegistry(t *testing.T) {
	reg := op.NewRegistry()
	reg.Register("test.rename", func() op.Operator { return &renameOp{} })

	original := &renameOp{NewName: "events.v3"}
	cp, err := op.Copy(reg, original)
	require.NoError(t, err)
	assert.NotSame(t, original, cp)
	assert.Equal(t, original.Name(), cp.Name())
}

func TestRegistryDecodeUnknownNameFails(t *testing.T) {
	reg := op.NewRegistry()
	_, err := reg.Decode([]byte(`{"name":"nope","payload":{}}`))
	assert.Error(t, err)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	reg := op.NewRegistry()
	reg.Register("dup", func() op.Operator { return &renameOp{} })
	assert.Panics(t, func() {
		reg.Register("dup", func() op.Operator { return &renameOp{} })
	})
}
