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

import "github.com/mcclowes/vague-sub002/ast"
import "github.com/mcclowes/vague-sub002/token"

// Precedence (low to high): ternary, or, and, not, superposition (|),
// comparison, range, additive, multiplicative, unary, call/property,
// primary. Spec §4.3.

func (p *parser) parseExpr() ast.Expr {
	return p.parseTernary()
}

func (p *parser) parseTernary() ast.Expr {
	cond := p.parseOr()
	if p.tok == token.QUEST {
		pos := p.pos
		p.next()
		then := p.parseTernary()
		p.expect(token.COLON)
		els := p.parseTernary()
		return &ast.TernaryExpression{Position: pos, Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *parser) parseOr() ast.Expr {
	x := p.parseAnd()
	for p.tok == token.OR {
		pos := p.pos
		p.next()
		y := p.parseAnd()
		x = &ast.LogicalExpression{Position: pos, Op: token.OR, X: x, Y: y}
	}
	return x
}

func (p *parser) parseAnd() ast.Expr {
	x := p.parseNot()
	for p.tok == token.AND {
		pos := p.pos
		p.next()
		y := p.parseNot()
		x = &ast.LogicalExpression{Position: pos, Op: token.AND, X: x, Y: y}
	}
	return x
}

func (p *parser) parseNot() ast.Expr {
	if p.tok == token.NOT_KW || p.tok == token.NOT {
		pos := p.pos
		p.next()
		return &ast.NotExpression{Position: pos, X: p.parseNot()}
	}
	return p.parseSuperposition()
}

// parseSuperposition handles the `|` superposition operator at expression
// level (distinct from a SuperpositionType in field-type position, though
// both share ast.WeightedOption).
func (p *parser) parseSuperposition() ast.Expr {
	first := p.parseComparison()
	if p.tok != token.PIPE {
		return first
	}
	pos := p.pos
	opts := []*ast.WeightedOption{{Position: first.Pos(), Value: first}}
	for p.tok == token.PIPE {
		p.next()
		opts = append(opts, p.parseWeightedOption())
	}
	return &ast.SuperpositionExpression{Position: pos, Options: opts}
}

func (p *parser) parseComparison() ast.Expr {
	x := p.parseRange()
	for p.tok == token.EQL || p.tok == token.NEQ || p.tok == token.LSS ||
		p.tok == token.GTR || p.tok == token.LEQ || p.tok == token.GEQ {
		op, pos := p.tok, p.pos
		p.next()
		y := p.parseRange()
		x = &ast.BinaryExpression{Position: pos, Op: op, X: x, Y: y}
	}
	return x
}

func (p *parser) parseRange() ast.Expr {
	x := p.parseAdditive()
	if p.tok == token.RANGE {
		pos := p.pos
		p.next()
		var max ast.Expr
		if p.startsExpr() {
			max = p.parseAdditive()
		}
		return &ast.RangeExpression{Position: pos, Min: x, Max: max}
	}
	return x
}

// startsExpr reports whether the current token can begin an expression, so
// an open-ended range (`18..`) can be distinguished from one followed by a
// max bound.
func (p *parser) startsExpr() bool {
	switch p.tok {
	case token.NEWLINE, token.COMMA, token.RBRACE, token.RBRACK, token.RPAREN,
		token.EOF, token.WHEN, token.TILDE, token.WHERE, token.QUEST, token.PIPE:
		return false
	}
	return true
}

func (p *parser) parseAdditive() ast.Expr {
	x := p.parseMultiplicative()
	for p.tok == token.ADD || p.tok == token.SUB {
		op, pos := p.tok, p.pos
		p.next()
		y := p.parseMultiplicative()
		x = &ast.BinaryExpression{Position: pos, Op: op, X: x, Y: y}
	}
	return x
}

func (p *parser) parseMultiplicative() ast.Expr {
	x := p.parseUnary()
	for p.tok == token.MUL || p.tok == token.QUO || p.tok == token.REM {
		op, pos := p.tok, p.pos
		p.next()
		y := p.parseUnary()
		x = &ast.BinaryExpression{Position: pos, Op: op, X: x, Y: y}
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	switch p.tok {
	case token.SUB, token.ADD:
		op, pos := p.tok, p.pos
		p.next()
		return &ast.UnaryExpression{Position: pos, Op: op, X: p.parseUnary()}
	case token.CARET:
		pos := p.pos
		p.next()
		path := []string{p.parseIdentName()}
		for p.tok == token.PERIOD {
			p.next()
			path = append(path, p.parseIdentName())
		}
		return &ast.ParentReference{Position: pos, Path: path}
	}
	return p.parseCallOrPrimary()
}

func (p *parser) parseCallOrPrimary() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case token.PERIOD:
			p.next()
			name := p.parseIdentName()
			switch v := x.(type) {
			case *ast.Identifier:
				x = &ast.QualifiedNameExpr{Position: v.Position, Parts: []string{v.Name, name}}
			case *ast.QualifiedNameExpr:
				x = &ast.QualifiedNameExpr{Position: v.Position, Parts: append(append([]string{}, v.Parts...), name)}
			default:
				p.errf(p.pos, "cannot select %q on this expression", name)
				return x
			}
		case token.LPAREN:
			var callee string
			var pos token.Position
			switch v := x.(type) {
			case *ast.Identifier:
				callee, pos = v.Name, v.Position
			case *ast.QualifiedNameExpr:
				callee, pos = v.String(), v.Position
			default:
				p.errf(p.pos, "cannot call this expression")
				return x
			}
			args := p.parseArgs()
			x = &ast.CallExpression{Position: pos, Callee: callee, Args: args}
		default:
			return x
		}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	pos := p.pos
	switch p.tok {
	case token.INT, token.FLOAT:
		lit := p.lit
		tok := p.tok
		p.next()
		return &ast.Literal{Position: pos, Kind: tok, Raw: lit}
	case token.STRING:
		lit := p.lit
		p.next()
		return &ast.Literal{Position: pos, Kind: token.STRING, Raw: lit}
	case token.TRUE, token.FALSE, token.NULL:
		tok := p.tok
		p.next()
		return &ast.Literal{Position: pos, Kind: tok}
	case token.LPAREN:
		p.next()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	case token.LBRACK:
		return p.parseOrderedSequenceExpr()
	case token.ANY:
		return p.parseAnyOf()
	case token.MATCH:
		return p.parseMatch()
	case token.IDENT:
		name := p.parseIdentName()
		return &ast.Identifier{Position: pos, Name: name}
	default:
		p.errf(pos, "unexpected token %s %q in expression", p.tok, p.lit)
		p.next()
		return &ast.Literal{Position: pos, Kind: token.NULL}
	}
}

func (p *parser) parseOrderedSequenceExpr() ast.Expr {
	pos := p.expect(token.LBRACK)
	seq := &ast.OrderedSequence{Position: pos}
	p.skipNewlines()
	for p.tok != token.RBRACK && p.tok != token.EOF {
		seq.Elements = append(seq.Elements, p.parseExpr())
		p.endOfListItem(token.RBRACK)
	}
	p.expect(token.RBRACK)
	if len(seq.Elements) == 0 {
		p.errf(pos, "empty ordered sequence")
	}
	return seq
}

func (p *parser) parseAnyOf() ast.Expr {
	pos := p.expect(token.ANY)
	p.expect(token.OF)
	coll := &ast.QualifiedNameExpr{Position: p.pos, Parts: []string{p.parseIdentName()}}
	for p.tok == token.PERIOD {
		p.next()
		coll.Parts = append(coll.Parts, p.parseIdentName())
	}
	expr := &ast.AnyOfExpression{Position: pos, Collection: coll}
	if p.tok == token.WHERE {
		p.next()
		expr.Where = p.parseExpr()
	}
	return expr
}

func (p *parser) parseMatch() ast.Expr {
	pos := p.expect(token.MATCH)
	subj := p.parseExpr()
	p.expect(token.LBRACE)
	p.skipNewlines()
	m := &ast.MatchExpression{Position: pos, Subject: subj}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		armPos := p.pos
		pattern := p.parseExpr()
		p.expect(token.ARROW)
		value := p.parseExpr()
		m.Arms = append(m.Arms, &ast.MatchArm{Position: armPos, Pattern: pattern, Value: value})
		p.endOfListItem(token.RBRACE)
	}
	p.expect(token.RBRACE)
	return m
}

func (p *parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for p.tok != token.RPAREN && p.tok != token.EOF {
		args = append(args, p.parseExpr())
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return args
}
