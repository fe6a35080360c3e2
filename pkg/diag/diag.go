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

// Package diag implements the substrate's diagnostics and metrics bus
// (spec.md §4.J): structured, located warnings/errors, and the routing of
// per-operator metric records to a user-supplied receiver.
package diag

import "fmt"

// Severity is the level of a Diagnostic.
type Severity uint8

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Kind enumerates the error kinds of spec.md §7. Only Cancelled and
// LogicError may cross the substrate boundary as Go errors/panics;
// everything else is converted into a Diagnostic by the operator that
// observed it.
type Kind string

const (
	KindParseError     Kind = "ParseError"
	KindTypeClash      Kind = "TypeClash"
	KindSchemaMismatch Kind = "SchemaMismatch"
	KindLogicError     Kind = "LogicError"
	KindIOError        Kind = "IOError"
	KindTimeout        Kind = "Timeout"
	KindCancelled      Kind = "Cancelled"
	KindUnimplemented  Kind = "Unimplemented"
)

// Range is a byte offset range into the original pipeline source text.
type Range struct {
	Begin int
	End   int
}

// Diagnostic is a structured message emitted by an operator.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Source   *Range
	Notes    []string
	Hints    []string
	DocsURL  string

	// Operator identifies the emitting operator when the emitter sets it.
	// The substrate (pkg/exec) does not fill it in, so diagnostics carry
	// no operator attribution unless an operator sets the field itself.
	Operator string
}

func (d Diagnostic) Error() string {
	if d.Source != nil {
		return fmt.Sprintf("%s: %s [%d:%d]", d.Severity, d.Message, d.Source.Begin, d.Source.End)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

func Warningf(kind Kind, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: Warning, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Errorf(kind Kind, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: Error, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Notef(format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: Note, Message: fmt.Sprintf(format, args...)}
}

// Sink accepts diagnostics. Per spec.md §6 it must be non-blocking or
// provide its own backpressure. Bus calls Emit synchronously on the
// emitting goroutine, with no queue in between, so a slow Sink slows the
// emitting operator.
type Sink interface {
	Emit(Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Diagnostic)

func (f SinkFunc) Emit(d Diagnostic) { f(d) }
