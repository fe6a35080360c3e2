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

// Package expr implements the substrate's expression model (spec.md §4.C):
// an AST evaluated row-wise, batch-at-a-time, against a schema-typed batch,
// producing a MultiSeries.
package expr

import "github.com/f5/secflow/pkg/value"

// Expr is any node of the expression AST. Expressions are built once
// (typically by an operator's configuration parser) and evaluated many
// times, once per input batch.
type Expr interface {
	expr()
}

// Literal is a constant value shared by every row of the batch.
type Literal struct {
	Value value.Value
}

// FieldPath is a dotted selector into the current row, e.g. "a.b.c". Each
// segment indexes into a Record; a segment that does not resolve (missing
// field, or indexing into a non-Record) evaluates to null rather than
// failing the whole expression (spec.md §4.B "Error modes").
type FieldPath struct {
	Segments []string
}

// MetaKind enumerates the batch-level constants §4.C exposes as "meta
// accessors".
type MetaKind uint8

const (
	MetaSchemaName MetaKind = iota
	MetaSchemaFingerprint
	MetaImportTime
)

// Meta resolves to a single constant for the whole batch.
type Meta struct {
	Kind MetaKind
}

// Call invokes a named function (pkg/expr/builtins.go) with positional
// arguments, each re-evaluated per row.
type Call struct {
	Name string
	Args []Expr
}

// BinaryOp enumerates arithmetic, comparison, and logical infix operators;
// spec.md's "binary/unary/comparison/logical operators" share one node
// shape here, distinguished only by Op.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpMod BinaryOp = "%"

	OpEq  BinaryOp = "=="
	OpNe  BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLe  BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGe  BinaryOp = ">="

	OpAnd BinaryOp = "and"
	OpOr  BinaryOp = "or"
)

// Binary applies a BinaryOp to two sub-expressions.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// UnaryOp enumerates prefix operators.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "not"
)

// Unary applies a UnaryOp to one sub-expression.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

// ListLit constructs a list value from per-element expressions.
type ListLit struct {
	Elems []Expr
}

// RecordField is one (name, expression) pair of a RecordLit.
type RecordField struct {
	Name  string
	Value Expr
}

// RecordLit constructs a record value from named field expressions.
type RecordLit struct {
	Fields []RecordField
}

// Index evaluates Base then indexes into it with Key: integer indices
// index a List, string-typed keys index a Map.
type Index struct {
	Base Expr
	Key  Expr
}

// If evaluates Cond; if it is a non-null true Bool, the result is Then,
// otherwise Else. A non-Bool or null Cond evaluates to null.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (Literal) expr()   {}
func (FieldPath) expr() {}
func (Meta) expr()      {}
func (Call) expr()      {}
func (Binary) expr()    {}
func (Unary) expr()     {}
func (ListLit) expr()   {}
func (RecordLit) expr() {}
func (Index) expr()     {}
func (If) expr()        {}
