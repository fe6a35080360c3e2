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

package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/secflow/pkg/diag"
)

func TestBusAccumulatesWarnings(t *testing.T) {
	b := diag.NewBus(nil, nil)
	b.Emit(diag.Warningf(diag.KindTypeClash, "field %q is null", "x"))
	b.Emit(diag.Warningf(diag.KindSchemaMismatch, "schema drift"))

	got := b.Warnings()
	require.Len(t, got, 2)
	assert.Equal(t, diag.KindTypeClash, got[0].Kind)
	assert.Equal(t, diag.KindSchemaMismatch, got[1].Kind)
	assert.Nil(t, b.FirstError())
}

func TestBusLatchesFirstErrorOnly(t *testing.T) {
	b := diag.NewBus(nil, nil)
	b.Emit(diag.Errorf(diag.KindIOError, "disk full"))
	b.Emit(diag.Errorf(diag.KindTimeout, "deadline exceeded"))

	first := b.FirstError()
	require.NotNil(t, first)
	assert.Equal(t, diag.KindIOError, first.Kind)
}

func TestBusForwardsToSink(t *testing.T) {
	var seen []diag.Diagnostic
	sink := diag.SinkFunc(func(d diag.Diagnostic) { seen = append(seen, d) })
	b := diag.NewBus(nil, sink)

	b.Emit(diag.Notef("starting up"))
	b.Emit(diag.Warningf(diag.KindParseError, "bad token"))

	require.Len(t, seen, 2)
	assert.Equal(t, uint64(2), b.EmitCount())
}

func TestDiagnosticErrorIncludesSourceRange(t *testing.T) {
	d := diag.Errorf(diag.KindParseError, "unexpected token")
	d.Source = &diag.Range{Begin: 3, End: 7}
	assert.Contains(t, d.Error(), "[3:7]")
}

func TestCountersSnapshot(t *testing.T) {
	var c diag.Counters
	c.AddInput(10, 1024)
	c.AddOutput(8, 900)
	c.SetMemoryHeld(4096)

	snap := c.Snapshot(2, "project")
	assert.Equal(t, 2, snap.OperatorIndex)
	assert.Equal(t, "project", snap.Name)
	assert.Equal(t, int64(10), snap.InputRows)
	assert.Equal(t, int64(8), snap.OutputRows)
	assert.Equal(t, int64(4096), snap.MemoryHeld)
}

func TestReceiverFuncPushForwards(t *testing.T) {
	var got diag.OperatorMetrics
	var r diag.Receiver = diag.ReceiverFunc(func(i int, id diag.MetricID, rec diag.OperatorMetrics) {
		got = rec
	})
	r.Register(0, diag.OperatorMetricID)
	r.Push(0, diag.OperatorMetricID, diag.OperatorMetrics{Name: "buffer", InputRows: 5})
	assert.Equal(t, "buffer", got.Name)
	assert.Equal(t, int64(5), got.InputRows)
}
