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

// Package op defines the polymorphic operator contract (spec.md §4.D): the
// interface every pipeline stage implements, independent of the execution
// substrate (pkg/exec) that drives it.
package op

import (
	"github.com/f5/secflow/pkg/expr"
	"github.com/f5/secflow/pkg/schema"
)

// Kind is the element schema flowing between operators. Operators reason
// about kinds at construction time, before any batch has been seen.
type Kind struct {
	Schema schema.Schema
}

// Order is the event ordering an operator requires of its input, or
// preserves on its output (spec.md §4.D).
type Order uint8

const (
	Unordered Order = iota
	Ordered
	SchemaOrdered
)

func (o Order) String() string {
	switch o {
	case Ordered:
		return "ordered"
	case SchemaOrdered:
		return "schema_ordered"
	default:
		return "unordered"
	}
}

// Location constrains where an operator instance may be scheduled.
type Location uint8

const (
	Anywhere Location = iota
	Local
)

// OptimizeResult is the outcome of Operator.Optimize: a possibly-rewritten
// operator, the filter the substrate must still apply, and the order the
// operator now requires of its (possibly new) input.
type OptimizeResult struct {
	Replacement    Operator
	ResidualFilter expr.Expr
	RequiredOrder  Order
}

// Operator is the polymorphic unit of pipeline computation (spec.md §4.D).
// Implementations are typically small, serializable configuration structs;
// Instantiate does the actual work against the execution substrate.
type Operator interface {
	// Name is a stable identifier used for serialization and diagnostics.
	Name() string

	// InferKind returns the output element kind for a given input kind,
	// or an error if the input kind is unsupported by this operator.
	InferKind(input Kind) (Kind, error)

	// Instantiate is called by pkg/exec to obtain the operator's runtime
	// behavior; see Instance.
	Instantiate(input Input, ctrl Control) Instance

	// Optimize is the pushdown/reordering hook, iterated right-to-left
	// across a pipeline during planning.
	Optimize(filter expr.Expr, order Order) OptimizeResult

	// Copy returns a clone of the operator. The built-in operators copy
	// their configuration in process; none of them goes through a
	// serialize/deserialize round trip. The package-level op.Copy function
	// does such a round trip through a Registry.
	Copy() Operator

	// Location reports this operator's placement constraint.
	Location() Location

	// Internal reports whether this operator is hidden from user-visible
	// metrics and diagnostics (used by synthetic operators the
	// substrate inserts, e.g. the load-balance feeder and collector).
	Internal() bool

	// Detached reports whether this operator wants a dedicated worker
	// because it may block synchronously (spec.md §4.E).
	Detached() bool
}
