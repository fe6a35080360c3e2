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
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Bus accumulates warnings, tracks the first error diagnostic observed
// (which becomes the pipeline's exit status per spec.md §7), and forwards
// every diagnostic to an optional external Sink and to a *zap.Logger.
// Emit never blocks: the external sink is invoked synchronously but is
// expected to be non-blocking itself (spec.md §6); Bus does not impose
// its own queue.
type Bus struct {
	logger *zap.Logger
	sink   Sink

	mu        sync.Mutex
	warnings  []Diagnostic
	firstErr  *Diagnostic
	dropped   uint64
	emitCount uint64
}

// NewBus constructs a Bus. logger may be nil (defaults to a no-op
// logger); sink may be nil (no external forwarding).
func NewBus(logger *zap.Logger, sink Sink) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger, sink: sink}
}

// Emit routes d to the logger, the optional external sink, and, for
// warnings, the in-memory accumulator. The first Error diagnostic is
// latched as the pipeline's exit status; subsequent errors are still
// logged and forwarded but do not replace it.
func (b *Bus) Emit(d Diagnostic) {
	atomic.AddUint64(&b.emitCount, 1)
	b.log(d)

	b.mu.Lock()
	switch d.Severity {
	case Warning:
		b.warnings = append(b.warnings, d)
	case Error:
		if b.firstErr == nil {
			cp := d
			b.firstErr = &cp
		}
	}
	b.mu.Unlock()

	if b.sink != nil {
		b.sink.Emit(d)
	}
}

func (b *Bus) log(d Diagnostic) {
	fields := []zap.Field{
		zap.String("kind", string(d.Kind)),
		zap.String("operator", d.Operator),
	}
	if d.Source != nil {
		fields = append(fields, zap.Int("source_begin", d.Source.Begin), zap.Int("source_end", d.Source.End))
	}
	switch d.Severity {
	case Error:
		b.logger.Error(d.Message, fields...)
	case Warning:
		b.logger.Warn(d.Message, fields...)
	default:
		b.logger.Info(d.Message, fields...)
	}
}

// Warnings returns every warning diagnostic observed so far.
func (b *Bus) Warnings() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.warnings))
	copy(out, b.warnings)
	return out
}

// FirstError returns the first error diagnostic observed, or nil.
func (b *Bus) FirstError() *Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.firstErr
}

// EmitCount reports how many diagnostics have been routed through the bus.
func (b *Bus) EmitCount() uint64 { return atomic.LoadUint64(&b.emitCount) }
