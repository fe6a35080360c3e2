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

// Package config implements the substrate's two-phase configuration: a
// mutable Builder assembled through functional options (the teacher's
// pkg/air/config.Option idiom, generalized beyond Arrow IPC knobs to the
// execution substrate's own settings), frozen into an immutable Config.
package config

import (
	"time"

	"github.com/apache/arrow/go/v12/arrow/memory"
	"go.uber.org/zap"

	"github.com/f5/secflow/pkg/diag"
)

// BufferPolicy is the bounded-queue behavior a buffer operator applies
// once its inbox is full (spec.md §4.F).
type BufferPolicy uint8

const (
	// PolicyBlock suspends the producer until space frees up.
	PolicyBlock BufferPolicy = iota
	// PolicyDrop admits the rows that still fit, discards the rest of the
	// incoming batch, and emits a warning.
	PolicyDrop
)

func (p BufferPolicy) String() string {
	if p == PolicyDrop {
		return "drop"
	}
	return "block"
}

const (
	// DefaultInboxCapacity mirrors exec.DefaultInboxCapacity; duplicated
	// here (rather than imported) because pkg/config must not depend on
	// pkg/exec.
	DefaultInboxCapacity = 8

	// DefaultMetricsInterval is how often a node emits its metrics
	// record when a pipeline does not override it (spec.md §4.E).
	DefaultMetricsInterval = time.Second

	// DefaultBufferCapacity is the default capacity of a standalone
	// buffer operator (spec.md §4.F), independent of a transport's
	// inbox capacity.
	DefaultBufferCapacity = 1024
)

// Config is the immutable result of Builder.Build. It is safe to share
// across every node of a pipeline.
type Config struct {
	Pool memory.Allocator

	InboxCapacity   int
	MetricsInterval time.Duration

	BufferCapacity int
	BufferPolicy   BufferPolicy

	Logger *zap.Logger
	Bus    *diag.Bus
}

// Builder accumulates configuration before Build freezes it. The zero
// Builder is not usable; start from NewBuilder.
type Builder struct {
	cfg Config
}

// NewBuilder seeds a Builder with the substrate's defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: Config{
		Pool:            memory.NewGoAllocator(),
		InboxCapacity:   DefaultInboxCapacity,
		MetricsInterval: DefaultMetricsInterval,
		BufferCapacity:  DefaultBufferCapacity,
		BufferPolicy:    PolicyBlock,
		Logger:          zap.NewNop(),
	}}
}

// Option mutates a Builder in place; every With* function below returns
// one, so construction reads as New(WithX(...), WithY(...)).
type Option func(*Builder)

func (b *Builder) apply(opts []Option) *Builder {
	for _, o := range opts {
		o(b)
	}
	return b
}

// WithAllocator overrides the Arrow memory allocator every batch is built
// against.
func WithAllocator(pool memory.Allocator) Option {
	return func(b *Builder) { b.cfg.Pool = pool }
}

// WithInboxCapacity overrides the bounded FIFO size between adjacent
// execution nodes.
func WithInboxCapacity(n int) Option {
	return func(b *Builder) { b.cfg.InboxCapacity = n }
}

// WithMetricsInterval overrides how often nodes emit metrics; zero
// disables metrics.
func WithMetricsInterval(d time.Duration) Option {
	return func(b *Builder) { b.cfg.MetricsInterval = d }
}

// WithBufferCapacity overrides a buffer operator's queue capacity.
func WithBufferCapacity(n int) Option {
	return func(b *Builder) { b.cfg.BufferCapacity = n }
}

// WithBufferPolicy overrides a buffer operator's full-queue behavior.
func WithBufferPolicy(p BufferPolicy) Option {
	return func(b *Builder) { b.cfg.BufferPolicy = p }
}

// WithLogger overrides the zap.Logger the substrate logs through.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		b.cfg.Logger = logger
		if b.cfg.Bus != nil {
			b.cfg.Bus = diag.NewBus(logger, nil)
		}
	}
}

// WithDiagnosticsSink installs sink as the pipeline's external diagnostics
// forwarder.
func WithDiagnosticsSink(sink diag.Sink) Option {
	return func(b *Builder) { b.cfg.Bus = diag.NewBus(b.cfg.Logger, sink) }
}

// New builds a frozen Config directly from a set of options, the common
// case when no further mutation is needed between NewBuilder and Build.
func New(opts ...Option) Config {
	return NewBuilder().apply(opts).Build()
}

// Build freezes the Builder into an immutable Config. Calling Build does
// not invalidate the Builder; each call returns an independent snapshot,
// so mutating one returned Config does not affect the next.
func (b *Builder) Build() Config {
	cfg := b.cfg
	if cfg.Bus == nil {
		cfg.Bus = diag.NewBus(cfg.Logger, nil)
	}
	return cfg
}
