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

package parser

import (
	"github.com/mcclowes/vague-sub002/ast"
	"github.com/mcclowes/vague-sub002/token"
)

var primitiveNames = map[token.Token]string{
	token.INT_KW:     "int",
	token.DECIMAL_KW: "decimal",
	token.BOOLEAN_KW: "boolean",
	token.STRING_KW:  "string",
	token.DATE_KW:    "date",
}

// parseFieldType parses a FieldDefinition's type position, resolving the
// cardinality-vs-weight and dynamic-cardinality ambiguities described in
// spec §4.3. fieldName is not used by the parser.
func (p *parser) parseFieldType(fieldName string) ast.FieldType {
	pos := p.pos

	if name, ok := primitiveNames[p.tok]; ok {
		p.next()
		if p.tok == token.IN {
			p.next()
			min := p.parseAdditive()
			p.expect(token.RANGE)
			var max ast.Expr
			if p.startsExpr() {
				max = p.parseAdditive()
			}
			return &ast.RangeType{Position: pos, Base: name, Min: min, Max: max}
		}
		return &ast.PrimitiveType{Position: pos, Name: name}
	}

	if p.tok == token.LBRACK {
		e := p.parseOrderedSequenceExpr().(*ast.OrderedSequence)
		return &ast.OrderedSequenceType{Position: e.Position, Elements: e.Elements}
	}

	if p.tok == token.INT || p.tok == token.FLOAT {
		if p.peekIsColon() {
			return p.parseSuperpositionType()
		}
		if p.numberStartsCardinality() {
			return p.parseCollectionType()
		}
		return &ast.ExpressionType{Position: pos, Expr: p.parseExpr()}
	}

	if p.tok == token.LPAREN && p.parenLooksDynamic() {
		return p.parseDynamicCollectionType()
	}

	e := p.parseExpr()
	switch v := e.(type) {
	case *ast.SuperpositionExpression:
		return &ast.SuperpositionType{Position: v.Position, Options: v.Options}
	case *ast.Identifier:
		return &ast.ReferenceType{Position: v.Position, Name: &ast.QualifiedName{Position: v.Position, Parts: []string{v.Name}}}
	case *ast.QualifiedNameExpr:
		return &ast.ReferenceType{Position: v.Position, Name: &ast.QualifiedName{Position: v.Position, Parts: v.Parts}}
	case *ast.CallExpression:
		if !aggregateNames[v.Callee] {
			return &ast.GeneratorType{Position: v.Position, Name: v.Callee, Args: v.Args}
		}
		return &ast.ExpressionType{Position: v.Position, Expr: v}
	default:
		return &ast.ExpressionType{Position: pos, Expr: e}
	}
}

// numberStartsCardinality peeks past the current NUMBER token to see
// whether it is followed by `..`, `of`, `*`, or `per` (a collection
// cardinality), as opposed to a bare numeric literal field value.
func (p *parser) numberStartsCardinality() bool {
	_, tok, _ := p.peekAfterCurrent()
	switch tok {
	case token.RANGE, token.OF, token.MUL, token.PER:
		return true
	}
	return false
}

func (p *parser) parseSuperpositionType() ast.FieldType {
	pos := p.pos
	var opts []*ast.WeightedOption
	opts = append(opts, p.parseWeightedOption())
	for p.tok == token.PIPE {
		p.next()
		opts = append(opts, p.parseWeightedOption())
	}
	return &ast.SuperpositionType{Position: pos, Options: opts}
}

func (p *parser) parseCollectionType() ast.FieldType {
	pos := p.pos
	card := p.parseCardinality()
	ct := &ast.CollectionType{Position: pos, Static: &ast.CollectionCardinality{Min: card.Min, Max: card.Max}}
	if p.tok == token.PER {
		p.next()
		ct.PerParent = p.parseIdentName()
	}
	p.expectCollectionConnector()
	ct.ElementType = p.parseFieldType("")
	return ct
}

func (p *parser) parseDynamicCollectionType() ast.FieldType {
	pos := p.pos
	p.expect(token.LPAREN)
	dyn := p.parseExpr()
	p.expect(token.RPAREN)
	ct := &ast.CollectionType{Position: pos, Dynamic: dyn}
	if p.tok == token.PER {
		p.next()
		ct.PerParent = p.parseIdentName()
	}
	p.expectCollectionConnector()
	ct.ElementType = p.parseFieldType("")
	return ct
}

func (p *parser) expectCollectionConnector() {
	if p.tok == token.MUL || p.tok == token.OF {
		p.next()
		return
	}
	p.errf(p.pos, "expected 'of' or '*', found %s %q", p.tok, p.lit)
}

// classifyComputed walks e and reports whether it is a "computed"
// expression per spec §4.3: it contains identifier/qualified-name
// references, a binary/logical/ternary/not operator, or a call to a
// known aggregate/sequence/rounding function. A unary minus alone does not
// make an expression computed. It also returns the set of
// top-level dependency base names (the root identifier of each reference),
// used later to build the computed-field dependency graph.
func classifyComputed(e ast.Expr) (computed bool, deps []string) {
	seen := map[string]bool{}
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch v := e.(type) {
		case *ast.Literal:
			// not computed by itself
		case *ast.Identifier:
			computed = true
			if !seen[v.Name] {
				seen[v.Name] = true
				deps = append(deps, v.Name)
			}
		case *ast.QualifiedNameExpr:
			computed = true
			base := v.Parts[0]
			if !seen[base] {
				seen[base] = true
				deps = append(deps, base)
			}
		case *ast.BinaryExpression:
			computed = true
			walk(v.X)
			walk(v.Y)
		case *ast.LogicalExpression:
			computed = true
			walk(v.X)
			walk(v.Y)
		case *ast.NotExpression:
			computed = true
			walk(v.X)
		case *ast.UnaryExpression:
			walk(v.X)
		case *ast.TernaryExpression:
			computed = true
			walk(v.Cond)
			walk(v.Then)
			walk(v.Else)
		case *ast.RangeExpression:
			walk(v.Min)
			if v.Max != nil {
				walk(v.Max)
			}
		case *ast.CallExpression:
			if aggregateNames[v.Callee] {
				computed = true
			}
			for _, a := range v.Args {
				walk(a)
			}
		case *ast.MatchExpression:
			walk(v.Subject)
			for _, arm := range v.Arms {
				walk(arm.Value)
			}
		case *ast.AnyOfExpression, *ast.ParentReference, *ast.OrderedSequence, *ast.SuperpositionExpression:
			// resolved immediately by the evaluator; never deferred
		}
	}
	walk(e)
	return computed, deps
}
