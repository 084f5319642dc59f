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

// ParserAPI is the small interface the core exposes to a plugin-registered
// statement parser (spec §4.8): peek/advance/match/consume a token, read
// the current token, invoke the core's own expression parser, and raise a
// positioned parser error.
type ParserAPI interface {
	Token() (token.Position, token.Token, string)
	Next()
	Match(tok token.Token) bool
	Consume(tok token.Token) token.Position
	ParseExpr() ast.Expr
	Errorf(pos token.Position, format string, args ...interface{})
}

// StatementParser consumes tokens from the given ParserAPI and returns the
// top-level statement it parsed.
type StatementParser func(ParserAPI) ast.Stmt

type apiImpl struct{ p *parser }

func (a *apiImpl) Token() (token.Position, token.Token, string) { return a.p.pos, a.p.tok, a.p.lit }

func (a *apiImpl) Next() { a.p.next() }

func (a *apiImpl) Match(tok token.Token) bool {
	if a.p.tok == tok {
		a.p.next()
		return true
	}
	return false
}

func (a *apiImpl) Consume(tok token.Token) token.Position { return a.p.expect(tok) }

func (a *apiImpl) ParseExpr() ast.Expr { return a.p.parseExpr() }

func (a *apiImpl) Errorf(pos token.Position, format string, args ...interface{}) {
	a.p.errf(pos, format, args...)
}
