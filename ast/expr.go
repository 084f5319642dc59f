// Copyright 2025 The Vague Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ast

import "github.com/mcclowes/vague-sub002/token"

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Literal is a literal int, decimal, string, boolean, or null value.
type Literal struct {
	Position token.Position
	Kind     token.Token // INT, FLOAT, STRING, TRUE, FALSE, NULL
	Raw      string      // original lexeme, for ints/floats/strings
}

// Identifier is a bare name reference.
type Identifier struct {
	Position token.Position
	Name     string
}

// QualifiedNameExpr wraps a dotted path used in expression position
// (`line_items.amount`, `ns.Schema`).
type QualifiedNameExpr struct {
	Position token.Position
	Parts    []string
}

// BinaryExpression is an arithmetic or comparison expression.
type BinaryExpression struct {
	Position token.Position
	Op       token.Token
	X, Y     Expr
}

// LogicalExpression is `and`/`or` with short-circuit evaluation.
type LogicalExpression struct {
	Position token.Position
	Op       token.Token // AND or OR
	X, Y     Expr
}

// NotExpression negates a boolean expression.
type NotExpression struct {
	Position token.Position
	X        Expr
}

// UnaryExpression is a prefix `-`, `+`, or `^parent` reference.
type UnaryExpression struct {
	Position token.Position
	Op       token.Token
	X        Expr
}

// TernaryExpression is `cond ? then : else`.
type TernaryExpression struct {
	Position          token.Position
	Cond, Then, Else Expr
}

// RangeExpression is `lo..hi`; Max may be nil for an open-ended range.
type RangeExpression struct {
	Position token.Position
	Min      Expr
	Max      Expr // nil => open-ended
}

// WeightedOption is one alternative in a superposition or distribution.
type WeightedOption struct {
	Position token.Position
	Weight   *float64 // nil => unweighted, shares the residual
	Value    Expr
}

// SuperpositionExpression is a weighted choice over alternatives.
type SuperpositionExpression struct {
	Position token.Position
	Options  []*WeightedOption
}

// AnyOfExpression draws a random handle from a referenced collection,
// optionally filtered by a `where` condition.
type AnyOfExpression struct {
	Position  token.Position
	Collection *QualifiedNameExpr
	Where     Expr // nil if unfiltered
}

// ParentReference is `^name`: access to a field on the record owning the
// current perParent collection.
type ParentReference struct {
	Position token.Position
	Path     []string
}

// MatchArm is one `pattern => value` arm of a MatchExpression.
type MatchArm struct {
	Position token.Position
	Pattern  Expr
	Value    Expr
}

// MatchExpression picks the first arm whose pattern equals the subject.
type MatchExpression struct {
	Position token.Position
	Subject  Expr
	Arms     []*MatchArm
}

// CallExpression is a named function/generator invocation.
type CallExpression struct {
	Position token.Position
	Callee   string
	Args     []Expr
}

// OrderedSequence is a literal `[a, b, c]` list.
type OrderedSequence struct {
	Position token.Position
	Elements []Expr
}

func (*Literal) exprNode()                 {}
func (*Identifier) exprNode()              {}
func (*QualifiedNameExpr) exprNode()       {}
func (*BinaryExpression) exprNode()        {}
func (*LogicalExpression) exprNode()       {}
func (*NotExpression) exprNode()           {}
func (*UnaryExpression) exprNode()         {}
func (*TernaryExpression) exprNode()       {}
func (*RangeExpression) exprNode()         {}
func (*SuperpositionExpression) exprNode() {}
func (*AnyOfExpression) exprNode()         {}
func (*ParentReference) exprNode()         {}
func (*MatchExpression) exprNode()         {}
func (*CallExpression) exprNode()          {}
func (*OrderedSequence) exprNode()         {}

func (e *Literal) Pos() token.Position                 { return e.Position }
func (e *Identifier) Pos() token.Position              { return e.Position }
func (e *QualifiedNameExpr) Pos() token.Position       { return e.Position }
func (e *BinaryExpression) Pos() token.Position        { return e.Position }
func (e *LogicalExpression) Pos() token.Position       { return e.Position }
func (e *NotExpression) Pos() token.Position           { return e.Position }
func (e *UnaryExpression) Pos() token.Position         { return e.Position }
func (e *TernaryExpression) Pos() token.Position       { return e.Position }
func (e *RangeExpression) Pos() token.Position         { return e.Position }
func (e *SuperpositionExpression) Pos() token.Position { return e.Position }
func (e *AnyOfExpression) Pos() token.Position         { return e.Position }
func (e *ParentReference) Pos() token.Position         { return e.Position }
func (e *MatchExpression) Pos() token.Position         { return e.Position }
func (e *CallExpression) Pos() token.Position          { return e.Position }
func (e *OrderedSequence) Pos() token.Position         { return e.Position }

func (q *QualifiedNameExpr) String() string {
	s := q.Parts[0]
	for _, p := range q.Parts[1:] {
		s += "." + p
	}
	return s
}
