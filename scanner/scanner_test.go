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

package scanner

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/mcclowes/vague-sub002/token"
)

type tokenLit struct {
	tok token.Token
	lit string
}

func scanAll(t *testing.T, src string) []tokenLit {
	t.Helper()
	s := New("test.vg", []byte(src))
	var out []tokenLit
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		out = append(out, tokenLit{tok, lit})
	}
	return out
}

func TestKeywordsAndIdents(t *testing.T) {
	got := scanAll(t, "schema Foo unique private when then")
	want := []tokenLit{
		{token.SCHEMA, "schema"},
		{token.IDENT, "Foo"},
		{token.UNIQUE, "unique"},
		{token.PRIVATE, "private"},
		{token.WHEN, "when"},
		{token.THEN, "then"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestNumbers(t *testing.T) {
	got := scanAll(t, "10 3.14 1_000 18..")
	want := []tokenLit{
		{token.INT, "10"},
		{token.FLOAT, "3.14"},
		{token.INT, "1000"},
		{token.INT, "18"},
		{token.RANGE, ".."},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestOperators(t *testing.T) {
	got := scanAll(t, ".. => == += <= >= != | ~")
	want := []tokenLit{
		{token.RANGE, ".."},
		{token.ARROW, "=>"},
		{token.EQL, "=="},
		{token.ADDASG, "+="},
		{token.LEQ, "<="},
		{token.GEQ, ">="},
		{token.NEQ, "!="},
		{token.PIPE, "|"},
		{token.TILDE, "~"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestStringEscapes(t *testing.T) {
	s := New("test.vg", []byte(`"a\nb\tc\\d\"e"`))
	_, tok, lit := s.Scan()
	qt.Assert(t, qt.Equals(tok, token.STRING))
	qt.Assert(t, qt.Equals(lit, "a\nb\tc\\d\"e"))
}

func TestUnterminatedString(t *testing.T) {
	s := New("test.vg", []byte(`"abc`))
	s.Scan()
	qt.Assert(t, qt.Equals(s.ErrorCount, 1))
}

func TestLineComment(t *testing.T) {
	got := scanAll(t, "schema // comment\nFoo")
	want := []tokenLit{
		{token.SCHEMA, "schema"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "Foo"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestUnexpectedCharacter(t *testing.T) {
	s := New("test.vg", []byte("@"))
	_, tok, _ := s.Scan()
	qt.Assert(t, qt.Equals(tok, token.ILLEGAL))
	qt.Assert(t, qt.Equals(s.ErrorCount, 1))
}

func TestDynamicKeyword(t *testing.T) {
	s := New("test.vg", []byte("frobnicate"))
	ok := s.SetKeyword("frobnicate", token.IDENT+1000)
	qt.Assert(t, qt.IsTrue(ok))
	_, tok, _ := s.Scan()
	qt.Assert(t, qt.Equals(tok, token.IDENT+1000))
}

func TestDynamicKeywordCannotShadowBuiltin(t *testing.T) {
	s := New("test.vg", []byte("schema"))
	ok := s.SetKeyword("schema", token.IDENT+1000)
	qt.Assert(t, qt.IsFalse(ok))
}

func TestPositions(t *testing.T) {
	s := New("test.vg", []byte("a\nb"))
	pos1, _, _ := s.Scan()
	s.Scan() // newline
	pos2, _, _ := s.Scan()
	qt.Assert(t, qt.Equals(pos1.Line, 1))
	qt.Assert(t, qt.Equals(pos1.Column, 1))
	qt.Assert(t, qt.Equals(pos2.Line, 2))
	qt.Assert(t, qt.Equals(pos2.Column, 1))
}
