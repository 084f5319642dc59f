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

// FieldType is implemented by every field type variant.
type FieldType interface {
	Node
	fieldTypeNode()
}

// PrimitiveType is a bare `int`, `decimal`, `string`, `boolean`, or `date`.
type PrimitiveType struct {
	Position token.Position
	Name     string
}

// RangeType is `base in min..max` (int, decimal, or date).
type RangeType struct {
	Position token.Position
	Base     string
	Min      Expr
	Max      Expr // nil => open-ended
}

// CollectionCardinality describes how many elements a CollectionType produces.
type CollectionCardinality struct {
	Min int64
	Max int64 // == Min when not a range
}

// CollectionType is `N of T`, `a..b of T`, `(expr) * T`, or `N per Parent * T`.
type CollectionType struct {
	Position    token.Position
	Static      *CollectionCardinality
	Dynamic     Expr // set instead of Static for `(expr) *`
	PerParent   string
	ElementType FieldType
}

// SuperpositionType is a weighted choice over field-type alternatives.
type SuperpositionType struct {
	Position token.Position
	Options  []*WeightedOption
}

// ReferenceType names another schema to delegate generation to.
type ReferenceType struct {
	Position token.Position
	Name     *QualifiedName
}

// GeneratorType is a named plugin-generator invocation in type position.
type GeneratorType struct {
	Position token.Position
	Name     string
	Args     []Expr
}

// ExpressionType wraps an arbitrary expression used in type position; the
// parser marks the owning field Computed when this expression references
// other fields or aggregate/sequence functions (spec §4.3).
type ExpressionType struct {
	Position token.Position
	Expr     Expr
}

// OrderedSequenceType is a literal `[a, b, c]` used as a field's type.
type OrderedSequenceType struct {
	Position token.Position
	Elements []Expr
}

func (*PrimitiveType) fieldTypeNode()        {}
func (*RangeType) fieldTypeNode()            {}
func (*CollectionType) fieldTypeNode()       {}
func (*SuperpositionType) fieldTypeNode()    {}
func (*ReferenceType) fieldTypeNode()        {}
func (*GeneratorType) fieldTypeNode()        {}
func (*ExpressionType) fieldTypeNode()       {}
func (*OrderedSequenceType) fieldTypeNode()  {}

func (t *PrimitiveType) Pos() token.Position       { return t.Position }
func (t *RangeType) Pos() token.Position           { return t.Position }
func (t *CollectionType) Pos() token.Position      { return t.Position }
func (t *SuperpositionType) Pos() token.Position   { return t.Position }
func (t *ReferenceType) Pos() token.Position       { return t.Position }
func (t *GeneratorType) Pos() token.Position       { return t.Position }
func (t *ExpressionType) Pos() token.Position      { return t.Position }
func (t *OrderedSequenceType) Pos() token.Position { return t.Position }
