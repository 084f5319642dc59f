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

// Package parser implements a recursive-descent, precedence-climbing
// parser that turns a Vague token stream into an *ast.Program.
package parser

import (
	"fmt"
	"strconv"

	"github.com/mcclowes/vague-sub002/ast"
	"github.com/mcclowes/vague-sub002/errors"
	"github.com/mcclowes/vague-sub002/scanner"
	"github.com/mcclowes/vague-sub002/token"
)

// Trace is a debug switch, off by default; mirrors the teacher's own parser
// debug switch. No parse production reads it, so setting it produces no
// output.
var Trace = false

// aggregateNames is the set of call names that mark an ExpressionType as
// computed when they appear in a field's type position (spec §4.3).
var aggregateNames = map[string]bool{
	"sum": true, "count": true, "min": true, "max": true, "avg": true,
	"first": true, "last": true, "median": true, "product": true,
	"round": true, "floor": true, "ceil": true,
	"previous": true, "sequence": true, "sequenceInt": true,
}

type parser struct {
	sc   *scanner.Scanner
	errs errors.List

	pos token.Position
	tok token.Token
	lit string

	statementParsers map[token.Token]StatementParser
}

// Parse lexes and parses src into a Program. Registered plugin statement
// parsers (see plugin.go) are consulted for any top-level token that does
// not match a built-in statement form.
func Parse(filename string, src []byte, statementParsers map[token.Token]StatementParser) (*ast.Program, error) {
	return ParseWithKeywords(filename, src, nil, statementParsers)
}

// ParseWithKeywords is Parse plus a plugin-registered dynamic keyword
// table (spec §4.8), wired into the scanner via SetKeyword before lexing
// begins.
func ParseWithKeywords(filename string, src []byte, keywords map[string]token.Token, statementParsers map[token.Token]StatementParser) (*ast.Program, error) {
	sc := scanner.New(filename, src)
	for word, tok := range keywords {
		sc.SetKeyword(word, tok)
	}
	p := &parser{sc: sc, statementParsers: statementParsers}
	p.next()
	prog := p.parseProgram()
	p.errs = append(p.errs, p.sc.Errors()...)
	p.errs.Sort()
	return prog, p.errs.Err()
}

func (p *parser) trace(format string, args ...interface{}) {
	if Trace {
		fmt.Printf(format+"\n", args...)
	}
}

func (p *parser) next() {
	p.pos, p.tok, p.lit = p.sc.Scan()
}

func (p *parser) errf(pos token.Position, format string, args ...interface{}) {
	p.errs = append(p.errs, errors.Parse(pos, format, args...))
}

func (p *parser) expect(tok token.Token) token.Position {
	pos := p.pos
	if p.tok != tok {
		p.errf(p.pos, "expected %s, found %s %q", tok, p.tok, p.lit)
	}
	p.next()
	return pos
}

// skipNewlines consumes any run of NEWLINE tokens; statement separators are
// insignificant everywhere except inside a single statement where a
// specific production expects one.
func (p *parser) skipNewlines() {
	for p.tok == token.NEWLINE {
		p.next()
	}
}

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()
	for p.tok != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.skipNewlines()
	}
	return prog
}

func (p *parser) parseStatement() ast.Stmt {
	switch p.tok {
	case token.IMPORT:
		return p.parseImport()
	case token.LET:
		return p.parseLet()
	case token.SCHEMA:
		return p.parseSchema()
	case token.CONTEXT:
		return p.parseContext()
	case token.DISTRIBUTION:
		return p.parseDistribution()
	case token.DATASET:
		return p.parseDataset()
	default:
		if sp, ok := p.statementParsers[p.tok]; ok {
			return sp(&apiImpl{p})
		}
		p.errf(p.pos, "unexpected token %s %q at top level", p.tok, p.lit)
		p.next()
		return nil
	}
}

func (p *parser) parseImport() ast.Stmt {
	pos := p.expect(token.IMPORT)
	name := p.parseIdentName()
	p.expect(token.FROM)
	path := p.parseStringLit()
	return &ast.ImportStatement{Position: pos, Name: name, Path: path}
}

func (p *parser) parseLet() ast.Stmt {
	pos := p.expect(token.LET)
	name := p.parseIdentName()
	p.expect(token.ASSIGN)
	val := p.parseExpr()
	return &ast.LetStatement{Position: pos, Name: name, Value: val}
}

func (p *parser) parseIdentName() string {
	if p.tok != token.IDENT {
		p.errf(p.pos, "expected identifier, found %s %q", p.tok, p.lit)
		lit := p.lit
		p.next()
		return lit
	}
	lit := p.lit
	p.next()
	return lit
}

func (p *parser) parseStringLit() string {
	if p.tok != token.STRING {
		p.errf(p.pos, "expected string literal, found %s %q", p.tok, p.lit)
		p.next()
		return ""
	}
	lit := p.lit
	p.next()
	return lit
}

func (p *parser) parseQualifiedName() *ast.QualifiedName {
	pos := p.pos
	parts := []string{p.parseIdentName()}
	for p.tok == token.PERIOD {
		p.next()
		parts = append(parts, p.parseIdentName())
	}
	return &ast.QualifiedName{Position: pos, Parts: parts}
}

func (p *parser) parseContextApplications() []string {
	var out []string
	for p.tok == token.WITH {
		p.next()
		out = append(out, p.parseIdentName())
	}
	return out
}

func (p *parser) parseSchema() ast.Stmt {
	pos := p.expect(token.SCHEMA)
	name := p.parseIdentName()

	def := &ast.SchemaDefinition{Position: pos, Name: name}
	if p.tok == token.FROM {
		p.next()
		def.Base = p.parseQualifiedName()
	}
	def.Contexts = p.parseContextApplications()

	p.expect(token.LBRACE)
	p.skipNewlines()
	for p.tok != token.RBRACE && p.tok != token.EOF {
		if p.tok == token.ASSUME {
			def.Assumes = append(def.Assumes, p.parseAssumeClause())
		} else {
			def.Fields = append(def.Fields, p.parseFieldDefinition())
		}
		p.endOfListItem(token.RBRACE)
	}
	p.expect(token.RBRACE)

	for p.tok == token.NEWLINE {
		// allow a blank line between the closing brace and a trailing
		// refine/then block
		save := p.pos
		p.skipNewlines()
		if p.tok != token.REFINE && p.tok != token.THEN {
			p.pos = save
			break
		}
	}
	if p.tok == token.REFINE {
		def.Refine = p.parseRefineBlock()
	}
	if p.tok == token.THEN {
		def.Then = p.parseThenBlock()
	}
	return def
}

func (p *parser) parseAssumeClause() *ast.AssumeClause {
	pos := p.expect(token.ASSUME)
	clause := &ast.AssumeClause{Position: pos}
	if p.tok == token.IF {
		p.next()
		clause.Condition = p.parseExpr()
	}
	if p.tok == token.LBRACE {
		p.next()
		p.skipNewlines()
		for p.tok != token.RBRACE && p.tok != token.EOF {
			clause.Constraints = append(clause.Constraints, p.parseExpr())
			p.endOfListItem(token.RBRACE)
		}
		p.expect(token.RBRACE)
	} else {
		clause.Constraints = append(clause.Constraints, p.parseExpr())
	}
	return clause
}

// endOfListItem consumes the separator between items in a brace- or
// bracket-delimited list: a comma, one or more newlines, or (at the
// closing delimiter) nothing.
func (p *parser) endOfListItem(closing token.Token) {
	if p.tok == closing || p.tok == token.EOF {
		return
	}
	if p.tok == token.COMMA {
		p.next()
		p.skipNewlines()
		return
	}
	if p.tok == token.NEWLINE {
		p.skipNewlines()
		return
	}
	p.errf(p.pos, "expected ',' or newline, found %s %q", p.tok, p.lit)
	p.next()
}

func (p *parser) parseFieldDefinition() *ast.FieldDefinition {
	pos := p.pos
	name := p.parseIdentName()
	p.expect(token.COLON)

	f := &ast.FieldDefinition{Position: pos, Name: name}
	for {
		switch p.tok {
		case token.UNIQUE:
			f.Unique = true
			p.next()
			continue
		case token.PRIVATE:
			f.Private = true
			p.next()
			continue
		}
		break
	}

	f.Type = p.parseFieldType(name)
	if f.Type == nil {
		return f
	}
	if et, ok := f.Type.(*ast.ExpressionType); ok {
		computed, deps := classifyComputed(et.Expr)
		f.Computed = computed
		if computed {
			f.ComputedExpr = et.Expr
		}
		_ = deps // dependency extraction happens again at generation time from the stored expr
	}

	if p.tok == token.QUEST {
		f.Optional = true
		p.next()
	}
	if p.tok == token.WHEN {
		p.next()
		f.When = p.parseExpr()
	}
	if p.tok == token.TILDE {
		p.next()
		f.Distribution = p.parseExpr()
	}
	if p.tok == token.WHERE {
		p.next()
		f.Where = p.parseExpr()
	}
	return f
}

func (p *parser) parseRefineBlock() *ast.RefineBlock {
	pos := p.expect(token.REFINE)
	p.expect(token.LBRACE)
	p.skipNewlines()
	block := &ast.RefineBlock{Position: pos}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		block.Fields = append(block.Fields, p.parseFieldDefinition())
		p.endOfListItem(token.RBRACE)
	}
	p.expect(token.RBRACE)
	return block
}

func (p *parser) parseThenBlock() *ast.ThenBlock {
	pos := p.expect(token.THEN)
	p.expect(token.LBRACE)
	p.skipNewlines()
	block := &ast.ThenBlock{Position: pos}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		block.Mutations = append(block.Mutations, p.parseMutation())
		p.endOfListItem(token.RBRACE)
	}
	p.expect(token.RBRACE)
	return block
}

func (p *parser) parseMutation() *ast.Mutation {
	pos := p.pos
	target := p.parseExpr()
	op := p.tok
	if op != token.ASSIGN && op != token.ADDASG {
		p.errf(p.pos, "expected '=' or '+=', found %s %q", p.tok, p.lit)
	} else {
		p.next()
	}
	value := p.parseExpr()
	return &ast.Mutation{Position: pos, Target: target, Op: op, Value: value}
}

func (p *parser) parseContext() ast.Stmt {
	pos := p.expect(token.CONTEXT)
	name := p.parseIdentName()
	p.expect(token.LBRACE)
	p.skipNewlines()
	def := &ast.ContextDefinition{Position: pos, Name: name}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		def.Fields = append(def.Fields, p.parseFieldDefinition())
		p.endOfListItem(token.RBRACE)
	}
	p.expect(token.RBRACE)
	return def
}

func (p *parser) parseDistribution() ast.Stmt {
	pos := p.expect(token.DISTRIBUTION)
	name := p.parseIdentName()
	p.expect(token.LBRACE)
	p.skipNewlines()
	def := &ast.DistributionDefinition{Position: pos, Name: name}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		def.Buckets = append(def.Buckets, p.parseWeightedOption())
		p.endOfListItem(token.RBRACE)
	}
	p.expect(token.RBRACE)
	return def
}

func (p *parser) parseDataset() ast.Stmt {
	pos := p.expect(token.DATASET)
	name := p.parseIdentName()
	def := &ast.DatasetDefinition{Position: pos, Name: name}
	if p.tok == token.VIOLATING {
		def.Violating = true
		p.next()
	}
	def.Contexts = p.parseContextApplications()
	p.expect(token.LBRACE)
	p.skipNewlines()
	for p.tok != token.RBRACE && p.tok != token.EOF {
		if p.tok == token.VALIDATE {
			def.Validation = p.parseValidationBlock()
		} else {
			def.Collections = append(def.Collections, p.parseCollectionDefinition())
		}
		p.endOfListItem(token.RBRACE)
	}
	p.expect(token.RBRACE)
	return def
}

func (p *parser) parseValidationBlock() *ast.ValidationBlock {
	pos := p.expect(token.VALIDATE)
	p.expect(token.LBRACE)
	depth := 1
	for depth > 0 && p.tok != token.EOF {
		switch p.tok {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				p.next()
				return &ast.ValidationBlock{Position: pos}
			}
		}
		p.next()
	}
	return &ast.ValidationBlock{Position: pos}
}

func (p *parser) parseCollectionDefinition() *ast.CollectionDefinition {
	pos := p.pos
	name := p.parseIdentName()
	p.expect(token.COLON)

	def := &ast.CollectionDefinition{Position: pos, Name: name}
	if p.tok == token.LPAREN && p.parenLooksDynamic() {
		def.DynamicCard = p.parseParenExpr()
	} else {
		def.Cardinality = p.parseCardinality()
	}
	if p.tok == token.PER {
		p.next()
		def.PerParent = p.parseIdentName()
	}
	if p.tok == token.OF || p.tok == token.MUL {
		p.next()
	} else {
		p.errf(p.pos, "expected 'of' or '*', found %s %q", p.tok, p.lit)
	}
	def.Schema = p.parseQualifiedName()

	if p.tok == token.WITH {
		p.next()
		p.expect(token.LBRACE)
		p.skipNewlines()
		for p.tok != token.RBRACE && p.tok != token.EOF {
			def.FieldOverrides = append(def.FieldOverrides, p.parseFieldDefinition())
			p.endOfListItem(token.RBRACE)
		}
		p.expect(token.RBRACE)
	}
	return def
}

func (p *parser) parseCardinality() *ast.Cardinality {
	min := p.parseIntLit()
	max := min
	if p.tok == token.RANGE {
		p.next()
		max = p.parseIntLit()
	}
	return &ast.Cardinality{Min: min, Max: max}
}

func (p *parser) parseIntLit() int64 {
	if p.tok != token.INT {
		p.errf(p.pos, "expected integer, found %s %q", p.tok, p.lit)
		p.next()
		return 0
	}
	v, err := strconv.ParseInt(p.lit, 10, 64)
	if err != nil {
		p.errf(p.pos, "invalid integer %q", p.lit)
	}
	p.next()
	return v
}

func (p *parser) parseWeightedOption() *ast.WeightedOption {
	pos := p.pos
	var weight *float64
	if (p.tok == token.INT || p.tok == token.FLOAT) && p.peekIsColon() {
		f := p.parseNumberLit()
		weight = &f
		p.expect(token.COLON)
	}
	val := p.parseTernary()
	return &ast.WeightedOption{Position: pos, Weight: weight, Value: val}
}

func (p *parser) parseNumberLit() float64 {
	f, err := strconv.ParseFloat(p.lit, 64)
	if err != nil {
		p.errf(p.pos, "invalid number %q", p.lit)
	}
	p.next()
	return f
}

// peekIsColon reports whether the token immediately following the current
// NUMBER token is a COLON, by scanning ahead in a cloned scanner. This is
// the parser's two-token lookahead for the cardinality-vs-weight ambiguity
// (spec §4.3).
func (p *parser) peekIsColon() bool {
	_, tok, _ := p.peekAfterCurrent()
	return tok == token.COLON
}

func (p *parser) peekAfterCurrent() (token.Position, token.Token, string) {
	clone := *p.sc
	return clone.Scan()
}

// parenLooksDynamic reports whether a '(' at the current position opens a
// balanced expression that is followed by '*' (dynamic cardinality), as
// opposed to a plain parenthesized expression (spec §4.3).
func (p *parser) parenLooksDynamic() bool {
	clone := *p.sc
	depth := 1 // the current token, LPAREN, was already consumed by the scanner
	for {
		_, tok, _ := clone.Scan()
		switch tok {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				_, next, _ := clone.Scan()
				return next == token.MUL
			}
		case token.EOF:
			return false
		}
	}
}

func (p *parser) parseParenExpr() ast.Expr {
	p.expect(token.LPAREN)
	e := p.parseExpr()
	p.expect(token.RPAREN)
	return e
}
